// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package driver

import (
	"errors"
	"fmt"
)

// BackendError reports a failed case-management operation, carrying
// the case path so a single member can be retried by hand.
type BackendError struct {
	Op   string
	Case string
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("case backend %s on %s: %v", e.Op, e.Case, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// IsBackendError reports whether err is (or wraps) a BackendError.
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

func backendErr(op, caseRoot string, err error) error {
	return &BackendError{Op: op, Case: caseRoot, Err: err}
}
