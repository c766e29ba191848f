// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package artifact

import (
	"errors"
	"fmt"
)

// GenerationError reports a template substitution that could not be
// performed, such as a named variable missing from the template. It
// aborts generation for the artifact group but never corrupts the
// shared template.
type GenerationError struct {
	msg string
}

func (e *GenerationError) Error() string { return e.msg }

// Generatef builds a GenerationError the way fmt.Errorf builds an error.
func Generatef(format string, args ...any) error {
	return &GenerationError{msg: fmt.Sprintf(format, args...)}
}

// IsGenerationError reports whether err is (or wraps) a GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
