// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package sample

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/ensemble-tinker/pkg/params"
)

func f(v float64) *float64 { return &v }
func d(n int) *int         { return &n }

func resolve(t *testing.T, raws []params.Raw) []params.Spec {
	t.Helper()
	specs, err := params.ResolveSet(raws, "cam")
	if err != nil {
		t.Fatalf("ResolveSet: %v", err)
	}
	return specs
}

func twoParams(t *testing.T) []params.Spec {
	return resolve(t, []params.Raw{
		{Name: "dust_emis_fact", Default: 0.7, Min: f(0.2), Max: f(1.2)},
		{Name: "sol_factb_interstitial", Default: 0.5, Min: f(0.1), Max: f(1.0)},
	})
}

// --- Draw ---

func TestDraw_Stratification(t *testing.T) {
	t.Parallel()
	const n = 16
	specs := resolve(t, []params.Raw{
		{Name: "p", Default: 0.5, Min: f(0), Max: f(1)},
	})
	m, err := Draw(specs, Options{Members: n, Scramble: true, ExcludeDefault: true, Seed: 7}, zap.NewNop())
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(m.Rows) != n {
		t.Fatalf("rows: got %d, want %d", len(m.Rows), n)
	}
	// With a [0,1] range the physical values are the unit draws, so
	// each of the n equal strata must hold exactly one of them.
	seen := make([]int, n)
	for _, row := range m.Rows {
		s := int(row[0] * n)
		if s == n {
			s = n - 1
		}
		seen[s]++
	}
	for s, c := range seen {
		if c != 1 {
			t.Errorf("stratum %d holds %d draws, want 1", s, c)
		}
	}
}

func TestDraw_DefaultRowAndIndices(t *testing.T) {
	t.Parallel()
	specs := twoParams(t)
	m, err := Draw(specs, Options{Members: 5, Seed: 3}, zap.NewNop())
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(m.Rows) != 6 {
		t.Fatalf("rows: got %d, want 6 (default row plus 5 members)", len(m.Rows))
	}
	if m.Indices[0] != 0 || m.Indices[5] != 5 {
		t.Errorf("indices: got %v", m.Indices)
	}
	if m.Rows[0][0] != 0.7 || m.Rows[0][1] != 0.5 {
		t.Errorf("default row: got %v, want declared defaults", m.Rows[0])
	}
}

func TestDraw_ExcludeDefault(t *testing.T) {
	t.Parallel()
	m, err := Draw(twoParams(t), Options{Members: 5, ExcludeDefault: true, Seed: 3}, zap.NewNop())
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(m.Rows) != 5 {
		t.Errorf("rows: got %d, want 5", len(m.Rows))
	}
	if m.Indices[0] != 1 {
		t.Errorf("first index: got %d, want 1", m.Indices[0])
	}
}

func TestDraw_RangeContainment(t *testing.T) {
	t.Parallel()
	specs := resolve(t, []params.Raw{
		{Name: "lin", Default: 0.7, Min: f(0.2), Max: f(1.2)},
		{Name: "logp", Default: 1e-3, Min: f(1e-5), Max: f(1e-1), Sampling: "log"},
	})
	m, err := Draw(specs, Options{Members: 50, Scramble: true, Seed: 11}, zap.NewNop())
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	for r, row := range m.Rows {
		for c, s := range m.Specs {
			if row[c] < s.Min || row[c] > s.Max {
				t.Errorf("row %d %s = %g outside [%g, %g]", r, s.Name, row[c], s.Min, s.Max)
			}
		}
	}
}

func TestDraw_Interdependency(t *testing.T) {
	t.Parallel()
	specs := resolve(t, []params.Raw{
		{Name: "a", Default: 0.5, Min: f(0), Max: f(1)},
		{Name: "b", Default: 5, Min: f(0), Max: f(10), InterdependentWith: "a"},
		{Name: "c", Default: 5, Min: f(0), Max: f(10), InterdependentWith: "-a"},
	})
	m, err := Draw(specs, Options{Members: 8, ExcludeDefault: true, Scramble: true, Seed: 5}, zap.NewNop())
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	for r, row := range m.Rows {
		u := row[0] // a spans [0,1], so its value is its unit draw
		wantB := 10 * u
		wantC := 10 - 10*u
		if math.Abs(row[1]-wantB) > 1e-9 {
			t.Errorf("row %d: b = %g, want %g", r, row[1], wantB)
		}
		if math.Abs(row[2]-wantC) > 1e-9 {
			t.Errorf("row %d: c = %g, want %g (inverse of a)", r, row[2], wantC)
		}
	}
}

func TestDraw_Rounding(t *testing.T) {
	t.Parallel()
	specs := resolve(t, []params.Raw{
		{Name: "p", Default: 0.5, Min: f(0), Max: f(1), NDigits: d(2)},
	})
	m, err := Draw(specs, Options{Members: 20, Scramble: true, Seed: 9}, zap.NewNop())
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	for r, row := range m.Rows {
		scaled := row[0] * 100
		if math.Abs(scaled-math.Round(scaled)) > 1e-9 {
			t.Errorf("row %d: %g not rounded to 2 digits", r, row[0])
		}
	}
}

func TestDraw_Reproducible(t *testing.T) {
	t.Parallel()
	opts := Options{Members: 6, Scramble: true, Seed: 42}
	m1, err := Draw(twoParams(t), opts, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	m2, err := Draw(twoParams(t), opts, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	for r := range m1.Rows {
		for c := range m1.Rows[r] {
			if m1.Rows[r][c] != m2.Rows[r][c] {
				t.Fatalf("row %d col %d differs across identical seeds", r, c)
			}
		}
	}
}

func TestDraw_Optimized(t *testing.T) {
	t.Parallel()
	for _, method := range []string{OptRandomCD, OptLloyd} {
		t.Run(method, func(t *testing.T) {
			t.Parallel()
			specs := twoParams(t)
			m, err := Draw(specs, Options{
				Members: 10, Scramble: true, Optimization: method,
				ExcludeDefault: true, Seed: 13,
			}, zap.NewNop())
			if err != nil {
				t.Fatalf("Draw: %v", err)
			}
			// Optimization must keep the design a valid hypercube.
			for c, s := range specs {
				seen := make([]int, 10)
				for _, row := range m.Rows {
					u := (row[c] - s.Min) / (s.Max - s.Min)
					st := int(u * 10)
					if st == 10 {
						st = 9
					}
					seen[st]++
				}
				for st, cnt := range seen {
					if cnt != 1 {
						t.Errorf("%s stratum %d holds %d draws, want 1", s.Name, st, cnt)
					}
				}
			}
		})
	}
}

func TestDraw_Errors(t *testing.T) {
	t.Parallel()
	specs := twoParams(t)
	cases := []struct {
		name  string
		specs []params.Spec
		opts  Options
	}{
		{"empty specs", nil, Options{Members: 5}},
		{"zero members", specs, Options{}},
		{"negative members", specs, Options{Members: -2}},
		{"unknown optimization", specs, Options{Members: 5, Optimization: "anneal"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Draw(c.specs, c.opts, zap.NewNop()); !params.IsConfigError(err) {
				t.Errorf("got %v, want ConfigError", err)
			}
		})
	}
}

func TestDraw_LogNeedsPositiveRange(t *testing.T) {
	t.Parallel()
	specs := resolve(t, []params.Raw{
		{Name: "p", Default: 0.5, Min: f(0), Max: f(1), Sampling: "log"},
	})
	if _, err := Draw(specs, Options{Members: 5}, zap.NewNop()); !params.IsConfigError(err) {
		t.Errorf("got %v, want ConfigError", err)
	}
}

// --- one-at-a-time ---

func TestDraw_OneAtATime(t *testing.T) {
	t.Parallel()
	specs := twoParams(t)
	m, err := Draw(specs, Options{Members: 5, OneAtATime: true, Seed: 1}, zap.NewNop())
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(m.Rows) != 6 {
		t.Fatalf("rows: got %d, want 6", len(m.Rows))
	}
	if m.Rows[0][0] != 0.7 || m.Rows[0][1] != 0.5 {
		t.Errorf("row 0 should be all defaults, got %v", m.Rows[0])
	}
	// 5 probe rows over 2 parameters: the first parameter takes the
	// extra row, 3 probes against 2.
	firstVaried, secondVaried := 0, 0
	for _, row := range m.Rows[1:] {
		v0 := row[0] != 0.7
		v1 := row[1] != 0.5
		if v0 == v1 {
			t.Errorf("row %v must vary exactly one parameter", row)
		}
		if v0 {
			firstVaried++
		}
		if v1 {
			secondVaried++
		}
	}
	if firstVaried != 3 || secondVaried != 2 {
		t.Errorf("probe split: got %d/%d, want 3/2", firstVaried, secondVaried)
	}
}

func TestDraw_OneAtATimeProbesSpanRange(t *testing.T) {
	t.Parallel()
	specs := resolve(t, []params.Raw{
		{Name: "p", Default: 0.7, Min: f(0.2), Max: f(1.2)},
	})
	m, err := Draw(specs, Options{Members: 3, OneAtATime: true, ExcludeDefault: true}, zap.NewNop())
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	got := []float64{m.Rows[0][0], m.Rows[1][0], m.Rows[2][0]}
	want := []float64{0.2, 0.7, 1.2}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("probe %d: got %g, want %g", i, got[i], want[i])
		}
	}
}

// --- lookup helpers ---

func TestMatrix_Lookup(t *testing.T) {
	t.Parallel()
	m, err := Draw(twoParams(t), Options{Members: 3, Seed: 2}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := m.Value(0, "dust_emis_fact"); !ok || v != 0.7 {
		t.Errorf("Value(0, dust_emis_fact) = %g, %v", v, ok)
	}
	if _, ok := m.Column("nonesuch"); ok {
		t.Error("Column(nonesuch) should miss")
	}
}
