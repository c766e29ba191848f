// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package driver

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// CIME script names.
const (
	binCreateNewcase = "create_newcase"
	binCreateClone   = "create_clone"
	binCaseSetup     = "./case.setup"
	binCaseBuild     = "./case.build"
	binCaseSubmit    = "./case.submit"
	binXMLChange     = "./xmlchange"
	binXMLQuery      = "./xmlquery"
)

// ExecBackend drives the CIME case toolchain through its command-line
// scripts: create_newcase and create_clone from the scripts
// directory, and the per-case scripts inside each case root.
type ExecBackend struct {
	// ScriptsDir holds create_newcase and create_clone.
	ScriptsDir string
	// Log receives one entry per executed command.
	Log *zap.Logger
}

// NewExecBackend returns a Backend running CIME scripts from
// scriptsDir.
func NewExecBackend(scriptsDir string, log *zap.Logger) *ExecBackend {
	return &ExecBackend{ScriptsDir: scriptsDir, Log: log}
}

// run executes one script, capturing combined output for diagnostics.
func (b *ExecBackend) run(ctx context.Context, dir, name string, arg ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, arg...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	b.Log.Debug("running case script",
		zap.String("script", name),
		zap.Strings("args", arg),
		zap.String("dir", dir))
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("%s: %w: %s", name, err, tail(out.String()))
	}
	return out.String(), nil
}

// tail keeps the last few lines of script output for error messages.
func tail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}

func (b *ExecBackend) Create(ctx context.Context, spec CreateSpec) error {
	args := []string{
		"--case", spec.CaseRoot,
		"--compset", spec.Compset,
		"--res", spec.Grid,
		"--machine", spec.Machine,
	}
	if spec.Project != "" {
		args = append(args, "--project", spec.Project)
	}
	if spec.RunUnsupported {
		args = append(args, "--run-unsupported")
	}
	script := filepath.Join(b.ScriptsDir, binCreateNewcase)
	if _, err := b.run(ctx, "", script, args...); err != nil {
		return backendErr("create", spec.CaseRoot, err)
	}
	return nil
}

func (b *ExecBackend) Clone(ctx context.Context, baseRoot, cloneRoot string, keepExe bool) error {
	args := []string{"--case", cloneRoot, "--clone", baseRoot}
	if keepExe {
		args = append(args, "--keepexe")
	}
	script := filepath.Join(b.ScriptsDir, binCreateClone)
	if _, err := b.run(ctx, "", script, args...); err != nil {
		return backendErr("clone", cloneRoot, err)
	}
	return nil
}

func (b *ExecBackend) Setup(ctx context.Context, caseRoot string) error {
	if _, err := b.run(ctx, caseRoot, binCaseSetup); err != nil {
		return backendErr("setup", caseRoot, err)
	}
	return nil
}

func (b *ExecBackend) BuildCase(ctx context.Context, caseRoot string) error {
	if _, err := b.run(ctx, caseRoot, binCaseBuild); err != nil {
		return backendErr("build", caseRoot, err)
	}
	return nil
}

func (b *ExecBackend) Submit(ctx context.Context, caseRoot string) error {
	if _, err := b.run(ctx, caseRoot, binCaseSubmit); err != nil {
		return backendErr("submit", caseRoot, err)
	}
	return nil
}

func (b *ExecBackend) SetValue(ctx context.Context, caseRoot, key, value string) error {
	if _, err := b.run(ctx, caseRoot, binXMLChange, key+"="+value); err != nil {
		return backendErr("set "+key, caseRoot, err)
	}
	return nil
}

func (b *ExecBackend) GetValue(ctx context.Context, caseRoot, key string) (string, error) {
	out, err := b.run(ctx, caseRoot, binXMLQuery, "--value", key)
	if err != nil {
		return "", backendErr("get "+key, caseRoot, err)
	}
	return strings.TrimSpace(out), nil
}
