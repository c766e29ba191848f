// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

// Build tasks for ensemble-tinker. Run from the repository root with
// mage; the default target builds the tinker binary.
package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Build

// Build compiles the tinker binary into bin/.
func Build() error {
	return sh.RunV("go", "build", "-o", "bin/tinker", "./cmd/tinker")
}

// Test runs every package's tests, including the e2e pipeline tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Lint vets the module.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs lint and tests.
func Check() {
	mg.SerialDeps(Lint, Test)
}

// Clean removes build output.
func Clean() error {
	return sh.Rm("bin")
}
