// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package driver orchestrates ensemble case derivation: it builds the
// base case once, then clones it per member and layers each member's
// namelist fragments on top, delegating the physical case operations
// to a Backend.
package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/ensemble-tinker/pkg/ensemble"
	"github.com/mesh-intelligence/ensemble-tinker/pkg/namelist"
)

// camConfigKey is the build-options value extended with the member's
// chemistry-mechanism file.
const camConfigKey = "CAM_CONFIG_OPTS"

// Driver coordinates base and member case construction. Members are
// built strictly one at a time: each clone mutates shared
// case-registry state in the backend.
type Driver struct {
	cfg     Config
	backend Backend
	log     *zap.Logger
}

// New returns a Driver over a validated configuration.
func New(cfg Config, backend Backend, log *zap.Logger) *Driver {
	return &Driver{cfg: cfg, backend: backend, log: log}
}

// MemberCase is the case directory of a member.
func (d *Driver) MemberCase(index int) string {
	return fmt.Sprintf("%s.%03d", d.cfg.PPE.ClonePrefix, index)
}

// BuildBase creates, configures, and builds the base case. An
// existing base case is reused untouched unless Overwrite is set, in
// which case it is removed and rebuilt.
func (d *Driver) BuildBase(ctx context.Context) error {
	base := d.cfg.PPE.BaseCase
	if _, err := os.Stat(base); err == nil {
		if !d.cfg.PPE.Overwrite {
			d.log.Info("reusing existing base case", zap.String("case", base))
			return nil
		}
		d.log.Info("removing existing base case", zap.String("case", base))
		if err := os.RemoveAll(base); err != nil {
			return fmt.Errorf("removing base case: %w", err)
		}
	}

	d.log.Info("creating base case", zap.String("case", base))
	err := d.backend.Create(ctx, CreateSpec{
		CaseRoot:       base,
		Compset:        d.cfg.CreateCase.Compset,
		Grid:           d.cfg.CreateCase.Grid,
		Machine:        d.cfg.CreateCase.Machine,
		Project:        d.cfg.CreateCase.Project,
		RunUnsupported: d.cfg.CreateCase.RunUnsupported,
	})
	if err != nil {
		return err
	}

	d.applySettings(ctx, base, "env_pe", d.cfg.EnvPE)
	if err := d.backend.Setup(ctx, base); err != nil {
		return err
	}
	d.applySettings(ctx, base, "env_run", d.cfg.EnvRun)
	d.applySettings(ctx, base, "env_build", d.cfg.EnvBuild)

	for _, cg := range d.cfg.Namelists.Components {
		text := namelist.Build(cg.Component, cg.Groups)
		if err := appendUserNL(base, cg.Component, text); err != nil {
			return err
		}
		d.log.Info("wrote base namelist fragment",
			zap.String("case", base),
			zap.String("component", cg.Component))
	}

	if err := d.backend.BuildCase(ctx, base); err != nil {
		return err
	}
	d.log.Info("base case built", zap.String("case", base))
	return nil
}

// CloneMember derives one member case from the base case and returns
// its directory.
func (d *Driver) CloneMember(ctx context.Context, m *ensemble.Member) (string, error) {
	clone := d.MemberCase(m.Index)
	d.log.Info("cloning member case",
		zap.Int("member", m.Index),
		zap.String("case", clone))
	if err := d.backend.Clone(ctx, d.cfg.PPE.BaseCase, clone, d.cfg.PPE.KeepExe); err != nil {
		return "", err
	}

	for _, cg := range m.Components {
		entries := make([]namelist.Entry, len(cg.Entries))
		for i, e := range cg.Entries {
			entries[i] = namelist.Entry{Key: e.Variable, Value: e.Value}
		}
		if err := appendUserNL(clone, cg.Component, namelist.Lines(entries)); err != nil {
			return "", err
		}
	}

	if m.ChemMech != "" {
		if err := d.installChemMech(ctx, clone, m.ChemMech); err != nil {
			return "", err
		}
	}

	if err := d.backend.Setup(ctx, clone); err != nil {
		return "", err
	}
	if !d.cfg.PPE.KeepExe {
		if err := d.backend.BuildCase(ctx, clone); err != nil {
			return "", err
		}
	}
	return clone, nil
}

// installChemMech copies the member's mechanism file into the case
// and points the build options at it.
func (d *Driver) installChemMech(ctx context.Context, caseRoot, mechFile string) error {
	dst := filepath.Join(caseRoot, filepath.Base(mechFile))
	if err := copyFile(mechFile, dst); err != nil {
		return fmt.Errorf("copying mechanism file into %s: %w", caseRoot, err)
	}
	opts, err := d.backend.GetValue(ctx, caseRoot, camConfigKey)
	if err != nil {
		return err
	}
	newOpts := fmt.Sprintf("%s --usr_mech_infile %s", opts, dst)
	if err := d.backend.SetValue(ctx, caseRoot, camConfigKey, newOpts); err != nil {
		return err
	}
	d.log.Info("installed chemistry mechanism",
		zap.String("case", caseRoot),
		zap.String("file", dst))
	return nil
}

// MemberFailure records one member that could not be built.
type MemberFailure struct {
	Member   int
	CaseRoot string
	Err      error
}

// Report aggregates a BuildEnsemble run.
type Report struct {
	Succeeded []int
	Failed    []MemberFailure
}

// Ok reports whether every member succeeded.
func (r *Report) Ok() bool { return len(r.Failed) == 0 }

// BuildEnsemble builds the base case and clones every member,
// sequentially. A failing member is recorded and the run continues to
// the next; cancellation is honored between members, never
// mid-member.
func (d *Driver) BuildEnsemble(ctx context.Context, members []ensemble.Member) (*Report, error) {
	if err := d.BuildBase(ctx); err != nil {
		return nil, err
	}
	report := &Report{}
	for i := range members {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		m := &members[i]
		caseRoot, err := d.CloneMember(ctx, m)
		if err != nil {
			d.log.Error("member case failed",
				zap.Int("member", m.Index),
				zap.String("case", d.MemberCase(m.Index)),
				zap.Error(err))
			report.Failed = append(report.Failed, MemberFailure{
				Member:   m.Index,
				CaseRoot: d.MemberCase(m.Index),
				Err:      err,
			})
			continue
		}
		d.log.Info("member case ready",
			zap.Int("member", m.Index),
			zap.String("case", caseRoot))
		report.Succeeded = append(report.Succeeded, m.Index)
	}
	return report, nil
}

// applySettings sets case environment values best-effort: a rejected
// key is logged and skipped, since optional keys vary by machine and
// backend version.
func (d *Driver) applySettings(ctx context.Context, caseRoot, group string, settings map[string]string) {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := d.backend.SetValue(ctx, caseRoot, k, settings[k]); err != nil {
			d.log.Warn("skipping case setting",
				zap.String("group", group),
				zap.String("key", k),
				zap.Error(err))
			continue
		}
		d.log.Debug("applied case setting",
			zap.String("group", group),
			zap.String("key", k),
			zap.String("value", settings[k]))
	}
}

// appendUserNL appends a namelist fragment to the component's user_nl
// file in one open-write-close step.
func appendUserNL(caseRoot, component, text string) error {
	if text == "" {
		return nil
	}
	path := filepath.Join(caseRoot, "user_nl_"+component)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
