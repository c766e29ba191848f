// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package logging constructs the zap loggers handed to every component.
// There is no package-level logger: callers receive an explicit handle
// and thread it through, so verbosity is configuration, not global state.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity selects how much the tool reports. The four historical
// levels map onto zap as WARNING->Warn, INFO->Info and both
// DETAILED and DEBUG->Debug (zap has no level between Info and Debug;
// DETAILED additionally keeps caller annotations off).
type Verbosity int

const (
	Warning Verbosity = iota
	Info
	Detailed
	Debug
)

// FromCount converts a counted -v flag into a Verbosity, clamping at Debug.
func FromCount(n int) Verbosity {
	if n < 0 {
		return Warning
	}
	if n > int(Debug) {
		return Debug
	}
	return Verbosity(n)
}

func (v Verbosity) String() string {
	switch v {
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Detailed:
		return "detailed"
	case Debug:
		return "debug"
	}
	return fmt.Sprintf("verbosity(%d)", int(v))
}

func (v Verbosity) zapLevel() zapcore.Level {
	switch v {
	case Warning:
		return zapcore.WarnLevel
	case Info:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// New builds a console logger at the given verbosity. When logFile is
// non-empty the same stream is additionally written there; the parent
// directory is created as needed.
func New(v Verbosity, logFile string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(v.zapLevel())
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableCaller = v != Debug
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		cfg.OutputPaths = append(cfg.OutputPaths, logFile)
	}
	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return log, nil
}
