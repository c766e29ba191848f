// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package driver

import "context"

// CreateSpec describes a new simulation case.
type CreateSpec struct {
	// CaseRoot is the directory the case is created in.
	CaseRoot string
	// Compset is the component set long or alias name.
	Compset string
	// Grid is the resolution alias.
	Grid string
	// Machine is the target machine name.
	Machine string
	// Project is the accounting project, optional.
	Project string
	// RunUnsupported permits unsupported compset and grid pairings.
	RunUnsupported bool
}

// Backend is the capability interface the driver needs from the
// case-management system. Implementations run long, synchronous
// operations; every method honors the context between steps, not
// within one.
type Backend interface {
	// Create makes a new case. The driver guarantees the target
	// directory does not already exist.
	Create(ctx context.Context, spec CreateSpec) error
	// Clone copies an existing case into cloneRoot. With keepExe the
	// clone reuses the base case's build.
	Clone(ctx context.Context, baseRoot, cloneRoot string, keepExe bool) error
	// Setup runs the case's setup step.
	Setup(ctx context.Context, caseRoot string) error
	// BuildCase compiles the case.
	BuildCase(ctx context.Context, caseRoot string) error
	// Submit queues the case for execution.
	Submit(ctx context.Context, caseRoot string) error
	// SetValue sets one case environment value. Callers treat
	// failures as advisory for optional keys.
	SetValue(ctx context.Context, caseRoot, key, value string) error
	// GetValue reads one case environment value.
	GetValue(ctx context.Context, caseRoot, key string) (string, error)
}
