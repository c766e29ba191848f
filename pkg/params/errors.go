// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package params

import (
	"errors"
	"fmt"
)

// ConfigError reports invalid or self-contradictory declarative input:
// a malformed range entry, an unresolved interdependency reference, a
// bad sample count. It is always fatal before any side effect and is
// never retried.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

// Configf builds a ConfigError in the fmt.Errorf style.
func Configf(format string, args ...any) error {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is, or wraps, a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
