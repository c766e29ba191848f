// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package namelist

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// --- FormatValue ---

func TestFormatValue(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in, want string
	}{
		{".true.", ".true."},
		{".FALSE.", ".false."},
		{"3.14", "3.14"},
		{"-42", "-42"},
		{"1.5e-3", "1.5e-3"},
		{"2.0D+01", "2.0D+01"},
		{"1,2,3", "1,2,3"},
		{".true., .false.", ".true.,.false."},
		{"a,b,c", "'a','b','c'"},
		{"plain string", "'plain string'"},
		{"  padded  ", "'padded'"},
	}
	for _, c := range cases {
		if got := FormatValue(c.in); got != c.want {
			t.Errorf("FormatValue(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// --- Build ---

func TestBuild_FencedWithMiscHoisted(t *testing.T) {
	t.Parallel()
	groups := []Group{
		{Name: "camexp", Entries: []Entry{{Key: "dust_emis_fact", Value: "0.7"}}},
		{Name: "misc", Entries: []Entry{{Key: "empty_htapes", Value: ".true."}}},
	}
	got := Build("cam", groups)
	want := "empty_htapes = .true.\n&camexp\ndust_emis_fact = 0.7\n/\n\n"
	if got != want {
		t.Errorf("Build:\ngot  %q\nwant %q", got, want)
	}
}

func TestBuild_UnfencedDialect(t *testing.T) {
	t.Parallel()
	groups := []Group{
		{Name: "limits", Entries: []Entry{{Key: "nday1", Value: "0"}}},
	}
	got := Build("blom", groups)
	if strings.Contains(got, "&") || strings.Contains(got, "/\n") {
		t.Errorf("blom output should carry no fences, got %q", got)
	}
	if !strings.Contains(got, "nday1 = 0\n") {
		t.Errorf("missing entry line in %q", got)
	}
}

func TestBuild_ContinuationLists(t *testing.T) {
	t.Parallel()
	groups := []Group{
		{Name: "camexp", Entries: []Entry{
			{Key: "fincl1", Value: "T\nQ\nU"},
			{Key: "ext_frc_specifier", Value: "SO2 -> emis.nc\nBC -> emis.nc"},
		}},
	}
	got := Build("cam", groups)
	wantFincl := "fincl1 = 'T',\n         'Q',\n         'U'\n"
	if !strings.Contains(got, wantFincl) {
		t.Errorf("fincl continuation:\ngot  %q\nmissing %q", got, wantFincl)
	}
	wantSpec := "ext_frc_specifier = 'SO2 -> emis.nc',\n                  'BC -> emis.nc'\n"
	if !strings.Contains(got, wantSpec) {
		t.Errorf("specifier continuation:\ngot  %q\nmissing %q", got, wantSpec)
	}
}

func TestBuild_SingleElementList(t *testing.T) {
	t.Parallel()
	got := Build("cam", []Group{
		{Name: "camexp", Entries: []Entry{{Key: "fincl2", Value: "T"}}},
	})
	if !strings.Contains(got, "fincl2 = 'T'\n") || strings.Count(got, "'T'") != 1 {
		t.Errorf("single-element list emitted wrong: %q", got)
	}
}

// --- Lines ---

func TestLines(t *testing.T) {
	t.Parallel()
	got := Lines([]Entry{
		{Key: "dust_emis_fact", Value: "0.55"},
		{Key: "scenario", Value: "ssp245"},
	})
	want := "dust_emis_fact = 0.55\nscenario = 'ssp245'\n"
	if got != want {
		t.Errorf("Lines:\ngot  %q\nwant %q", got, want)
	}
}

// --- Control ---

func TestControl_PreservesOrder(t *testing.T) {
	t.Parallel()
	doc := `
cam:
  misc:
    empty_htapes: .true.
  camexp:
    zz_last: "1"
    aa_first: "2"
blom:
  limits:
    nday1: "0"
`
	var c Control
	if err := yaml.Unmarshal([]byte(doc), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(c.Components) != 2 || c.Components[0].Component != "cam" || c.Components[1].Component != "blom" {
		t.Fatalf("components: %+v", c.Components)
	}
	groups, ok := c.Get("cam")
	if !ok {
		t.Fatal("Get(cam) missing")
	}
	if groups[0].Name != "misc" || groups[1].Name != "camexp" {
		t.Errorf("group order: %v, %v", groups[0].Name, groups[1].Name)
	}
	es := groups[1].Entries
	if es[0].Key != "zz_last" || es[1].Key != "aa_first" {
		t.Errorf("entry order not preserved: %+v", es)
	}
	if _, ok := c.Get("cice"); ok {
		t.Error("Get(cice) should be absent")
	}
}

func TestControl_RejectsNonMapping(t *testing.T) {
	t.Parallel()
	var c Control
	if err := yaml.Unmarshal([]byte("- a\n- b\n"), &c); err == nil {
		t.Fatal("sequence accepted, want error")
	}
}
