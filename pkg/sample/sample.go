// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package sample draws ensemble designs over resolved parameter
// specs: Latin Hypercube with optional criterion optimization, or a
// one-at-a-time design, scaled into physical units per parameter.
package sample

import (
	"math"
	"math/rand"
	"time"

	"github.com/maseology/mmaths"
	mrg63k3a "github.com/maseology/pnrg/MRG63k3a"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/ensemble-tinker/pkg/params"
)

// Options controls a Draw call.
type Options struct {
	// Members is the number of sampled rows. With ExcludeDefault
	// false a default row is prepended on top of these.
	Members int
	// Scramble jitters each draw uniformly within its stratum
	// instead of centering it.
	Scramble bool
	// Optimization selects a hypercube improvement criterion,
	// OptRandomCD or OptLloyd, or empty for none.
	Optimization string
	// ExcludeDefault suppresses the member-zero default row.
	ExcludeDefault bool
	// OneAtATime switches to the one-at-a-time probe design.
	OneAtATime bool
	// Seed fixes the RNG stream. Zero seeds from the wall clock.
	Seed int64
}

// Matrix is a drawn sample: one row per ensemble member, one column
// per spec, in physical units. Indices[r] is the member index of
// Rows[r]; index 0 is the default member.
type Matrix struct {
	Specs   []params.Spec
	Indices []int
	Rows    [][]float64
}

// Column returns the column position of a named parameter.
func (m *Matrix) Column(name string) (int, bool) {
	for c, s := range m.Specs {
		if s.Name == name {
			return c, true
		}
	}
	return 0, false
}

// Value returns the physical value of a named parameter in one row.
func (m *Matrix) Value(row int, name string) (float64, bool) {
	c, ok := m.Column(name)
	if !ok {
		return 0, false
	}
	return m.Rows[row][c], true
}

// Draw samples the parameter space described by specs. The specs must
// come from params.ResolveSet so that interdependency references are
// already validated.
func Draw(specs []params.Spec, opts Options, log *zap.Logger) (*Matrix, error) {
	if len(specs) == 0 {
		return nil, params.Configf("sampling requires at least one parameter")
	}
	if opts.Members <= 0 {
		return nil, params.Configf("sample member count must be positive, got %d", opts.Members)
	}
	for _, s := range specs {
		if s.Sampling == params.SamplingLog && s.Min <= 0 {
			return nil, params.Configf("parameter %s: log sampling requires a positive range, min is %g",
				s.Name, s.Min)
		}
	}
	if _, err := criterionFor(opts.Optimization); err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(mrg63k3a.New())
	rng.Seed(seed)

	var sampled [][]float64
	if opts.OneAtATime {
		sampled = oneAtATime(specs, opts.Members)
	} else {
		var err error
		sampled, err = hypercubeRows(rng, specs, opts)
		if err != nil {
			return nil, err
		}
	}

	m := &Matrix{Specs: specs}
	if !opts.ExcludeDefault {
		def := make([]float64, len(specs))
		for c, s := range specs {
			def[c] = roundSpec(s, s.Default)
		}
		m.Indices = append(m.Indices, 0)
		m.Rows = append(m.Rows, def)
	}
	for r, row := range sampled {
		m.Indices = append(m.Indices, r+1)
		m.Rows = append(m.Rows, row)
	}

	checkRanges(m, log)
	return m, nil
}

// hypercubeRows draws the LHS design over the independent specs and
// scales every spec, dependent ones reusing their dependency's unit
// column.
func hypercubeRows(rng *rand.Rand, specs []params.Spec, opts Options) ([][]float64, error) {
	col := make(map[string]int)
	dims := 0
	for _, s := range specs {
		if s.Independent() {
			col[s.Name] = dims
			dims++
		}
	}
	if dims == 0 {
		return nil, params.Configf("all parameters are interdependent, nothing to draw")
	}

	unit := unitHypercube(rng, opts.Members, dims, opts.Scramble)
	if err := optimizeHypercube(rng, unit, opts.Optimization); err != nil {
		return nil, err
	}

	rows := make([][]float64, opts.Members)
	for r := range rows {
		rows[r] = make([]float64, len(specs))
		for c, s := range specs {
			var u float64
			if s.Independent() {
				u = unit[r][col[s.Name]]
			} else {
				u = unit[r][col[s.DependsOn]]
			}
			minv, maxv := s.Min, s.Max
			if s.Inverse {
				minv, maxv = maxv, minv
			}
			var v float64
			switch s.Sampling {
			case params.SamplingLog:
				v = mmaths.LogLinearTransform(minv, maxv, u)
			default:
				v = mmaths.LinearTransform(minv, maxv, u)
			}
			rows[r][c] = roundSpec(s, v)
		}
	}
	return rows, nil
}

// unitHypercube draws an n x dims Latin Hypercube in [0,1): each
// dimension is split into n equal strata holding exactly one draw.
func unitHypercube(rng *rand.Rand, n, dims int, scramble bool) [][]float64 {
	unit := make([][]float64, n)
	for r := range unit {
		unit[r] = make([]float64, dims)
	}
	for d := 0; d < dims; d++ {
		perm := rng.Perm(n)
		for r := 0; r < n; r++ {
			off := 0.5
			if scramble {
				off = rng.Float64()
			}
			unit[r][d] = (float64(perm[r]) + off) / float64(n)
		}
	}
	return unit
}

// roundSpec rounds v to the spec's declared precision, if any.
func roundSpec(s params.Spec, v float64) float64 {
	if s.NDigits == nil {
		return v
	}
	p := math.Pow(10, float64(*s.NDigits))
	return math.Round(v*p) / p
}

// checkRanges verifies every value against its spec's inclusive
// bounds. Rounding can push a boundary value just outside, so
// violations warn rather than fail.
func checkRanges(m *Matrix, log *zap.Logger) {
	for r, row := range m.Rows {
		for c, s := range m.Specs {
			if row[c] < s.Min || row[c] > s.Max {
				log.Warn("sampled value outside declared range",
					zap.String("parameter", s.Name),
					zap.Int("member", m.Indices[r]),
					zap.Float64("value", row[c]),
					zap.Float64("min", s.Min),
					zap.Float64("max", s.Max))
			}
		}
	}
}
