// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package sample

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestWriteFile_Reloadable(t *testing.T) {
	t.Parallel()
	m, err := Draw(twoParams(t), Options{Members: 4, Scramble: true, Seed: 21}, zap.NewNop())
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	artifacts := map[string]map[int]string{
		"chem_mech_file": {
			0: "chem_mech_files/chem_mech_scale_1.000.in",
			1: "chem_mech_files/chem_mech_scale_0.812.in",
			2: "chem_mech_files/chem_mech_scale_1.175.in",
			3: "chem_mech_files/chem_mech_scale_0.493.in",
			4: "chem_mech_files/chem_mech_scale_1.031.in",
		},
	}
	path := filepath.Join(t.TempDir(), "sample.nc")
	if err := WriteFile(path, m, artifacts); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.NumMembers() != 5 {
		t.Fatalf("members: got %d, want 5", got.NumMembers())
	}
	if got.Created == "" {
		t.Error("created attribute missing")
	}
	for r, want := range m.Indices {
		if got.Indices[r] != want {
			t.Errorf("index %d: got %d, want %d", r, got.Indices[r], want)
		}
	}
	for c, s := range m.Specs {
		col, ok := got.Column(s.Name)
		if !ok {
			t.Fatalf("column %s missing", s.Name)
		}
		if col.Default != s.Default || col.Component != s.Component ||
			col.Sampling != string(s.Sampling) || col.Input != string(s.Input) {
			t.Errorf("column %s metadata: %+v", s.Name, col)
		}
		for r := range m.Rows {
			if col.Values[r] != m.Rows[r][c] {
				t.Errorf("column %s row %d: got %g, want %g",
					s.Name, r, col.Values[r], m.Rows[r][c])
			}
		}
	}
	paths := got.Artifacts["chem_mech_file"]
	if len(paths) != 5 {
		t.Fatalf("artifact paths: got %d, want 5", len(paths))
	}
	for r, i := range m.Indices {
		if paths[r] != artifacts["chem_mech_file"][i] {
			t.Errorf("artifact path row %d: got %q, want %q",
				r, paths[r], artifacts["chem_mech_file"][i])
		}
	}
}

func TestWriteFile_NoPartialFileOnEmptyMatrix(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.nc")
	if err := WriteFile(path, &Matrix{}, nil); err == nil {
		t.Fatal("empty matrix accepted")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("a failed write must not leave a sample file behind")
	}
}
