// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package ensemble

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/ensemble-tinker/pkg/params"
	"github.com/mesh-intelligence/ensemble-tinker/pkg/sample"
)

func sampleFile() *sample.File {
	return &sample.File{
		Indices: []int{0, 1, 2},
		Columns: []sample.Column{
			{Name: "dust_emis_fact", Component: "cam", Input: "namelist",
				Default: 0.7, Values: []float64{0.7, 0.25, 1.1}},
			{Name: "wetdep_rel_scav_factor", Component: "cam", Input: "namelist",
				Default: 1.0, Values: []float64{1.0, 0.4, 1.6}},
		},
		Artifacts: map[string][]string{},
	}
}

func TestAssemble_ScalarEntries(t *testing.T) {
	t.Parallel()
	members, err := Assemble(sampleFile(), Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("members: got %d, want 3", len(members))
	}
	def := members[0]
	if def.Index != 0 {
		t.Errorf("first member index: got %d, want 0", def.Index)
	}
	entries := def.Entries("cam")
	if len(entries) != 2 {
		t.Fatalf("cam entries: %+v", entries)
	}
	if entries[0].Variable != "dust_emis_fact" || entries[0].Value != "0.7" {
		t.Errorf("entry 0: %+v", entries[0])
	}
	if entries[0].Provenance != ProvDefault {
		t.Errorf("default member provenance: %v", entries[0].Provenance)
	}
	if got := members[1].Entries("cam")[0]; got.Value != "0.25" || got.Provenance != ProvSampled {
		t.Errorf("sampled entry: %+v", got)
	}
}

func TestAssemble_ChemMechPromotion(t *testing.T) {
	t.Parallel()
	f := sampleFile()
	f.Columns = append(f.Columns, sample.Column{
		Name: "soa_y_scale", Component: "cam", Input: "chem_mech_file",
		Default: 1.0, Values: []float64{1.0, 0.8, 1.2},
	})
	f.Artifacts["chem_mech_file"] = []string{
		"chem_mech_files/chem_mech_scale_1.000.in",
		"chem_mech_files/chem_mech_scale_0.800.in",
		"chem_mech_files/chem_mech_scale_1.200.in",
	}
	members, err := Assemble(f, Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if members[1].ChemMech != "chem_mech_files/chem_mech_scale_0.800.in" {
		t.Errorf("chem mech path: %q", members[1].ChemMech)
	}
	// The scalar column must not surface as a namelist entry.
	for _, e := range members[1].Entries("cam") {
		if e.Variable == "soa_y_scale" {
			t.Errorf("promoted column leaked into namelist entries: %+v", e)
		}
	}
}

func TestAssemble_LandParamPromotion(t *testing.T) {
	t.Parallel()
	f := sampleFile()
	f.Columns = append(f.Columns, sample.Column{
		Name: "leaf_long", Component: "clm", Input: "land_param_file",
		Default: 1.0, Values: []float64{1.0, 0.9, 1.1},
	})
	f.Artifacts["land_param_file"] = []string{
		"land/land_param_file_000.nc",
		"land/land_param_file_001.nc",
		"land/land_param_file_002.nc",
	}
	cfg := Config{ArtifactVars: map[string]string{"land_param_file": "paramfile"}}
	members, err := Assemble(f, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	got := members[2].Entries("clm")
	if len(got) != 1 || got[0].Variable != "paramfile" ||
		got[0].Value != "land/land_param_file_002.nc" || got[0].Provenance != ProvFile {
		t.Errorf("clm entries: %+v", got)
	}

	// Without a configured target variable, promotion cannot happen.
	if _, err := Assemble(f, Config{}, zap.NewNop()); !params.IsConfigError(err) {
		t.Errorf("got %v, want ConfigError", err)
	}
}

func TestAssemble_LifeCycleMergesSingleLine(t *testing.T) {
	t.Parallel()
	f := &sample.File{
		Indices: []int{1},
		Columns: []sample.Column{
			{Name: "lifeCycleSigma_1", Component: "cam", Input: "namelist",
				Values: []float64{1.6e-1}},
			{Name: "lifeCycleSigma_8", Component: "cam", Input: "namelist",
				Values: []float64{2.4e-2}},
		},
		Artifacts: map[string][]string{},
	}
	cfg := Config{LifeCycleSigma: "1.8,1.8,1.8,1.8,1.8,1.8,1.8,1.8,1.8,1.8"}
	members, err := Assemble(f, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	entries := members[0].Entries("cam")
	if len(entries) != 1 {
		t.Fatalf("both indices must merge into one write, got %+v", entries)
	}
	e := entries[0]
	if e.Variable != "oslo_aero_lifecyclesigma" {
		t.Errorf("target: %q", e.Variable)
	}
	want := "1.8,1.6D-01,1.8,1.8,1.8,1.8,1.8,1.8,2.4D-02,1.8"
	if e.Value != want {
		t.Errorf("merged list:\ngot  %q\nwant %q", e.Value, want)
	}
}

func TestAssemble_LifeCycleFormatStripsPlus(t *testing.T) {
	t.Parallel()
	if got := formatLifeCycle(4.0); got != "4.0D00" {
		t.Errorf("formatLifeCycle(4.0) = %q, want 4.0D00", got)
	}
	if got := formatLifeCycle(1.55e-8); got != "1.6D-08" {
		t.Errorf("formatLifeCycle(1.55e-8) = %q, want 1.6D-08", got)
	}
}

func TestAssemble_LifeCycleRequiresDefaults(t *testing.T) {
	t.Parallel()
	f := &sample.File{
		Indices: []int{1},
		Columns: []sample.Column{
			{Name: "lifeCycleNumberMedianRadius_2", Component: "cam",
				Input: "namelist", Values: []float64{1e-8}},
		},
	}
	if _, err := Assemble(f, Config{}, zap.NewNop()); !params.IsConfigError(err) {
		t.Errorf("got %v, want ConfigError", err)
	}
}

func TestAssemble_LifeCycleIndexOutOfRange(t *testing.T) {
	t.Parallel()
	f := &sample.File{
		Indices: []int{1},
		Columns: []sample.Column{
			{Name: "lifeCycleSigma_12", Component: "cam",
				Input: "namelist", Values: []float64{1.7}},
		},
	}
	cfg := Config{LifeCycleSigma: "1.8,1.8,1.8"}
	_, err := Assemble(f, cfg, zap.NewNop())
	if !params.IsConfigError(err) {
		t.Fatalf("got %v, want ConfigError", err)
	}
	if !strings.Contains(err.Error(), "position 12") {
		t.Errorf("diagnostic should name the position: %v", err)
	}
}

func TestAssemble_DuplicateTargets(t *testing.T) {
	t.Parallel()
	f := sampleFile()
	f.Columns = append(f.Columns, sample.Column{
		Name: "dust_emis_fact", Component: "cam", Input: "namelist",
		Values: []float64{0.7, 0.3, 1.0},
	})
	if _, err := Assemble(f, Config{}, zap.NewNop()); !params.IsConfigError(err) {
		t.Errorf("duplicate variable: got %v, want ConfigError", err)
	}

	f2 := &sample.File{
		Indices: []int{1},
		Columns: []sample.Column{
			{Name: "lifeCycleSigma_1", Component: "cam", Input: "namelist", Values: []float64{1.6}},
			{Name: "lifeCycleSigma_1", Component: "cam", Input: "namelist", Values: []float64{1.7}},
		},
	}
	if _, err := Assemble(f2, Config{LifeCycleSigma: "1.8,1.8"}, zap.NewNop()); !params.IsConfigError(err) {
		t.Errorf("duplicate splice position: got %v, want ConfigError", err)
	}
}
