// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package sample

import "github.com/mesh-intelligence/ensemble-tinker/pkg/params"

// oneAtATime builds the one-at-a-time probe design: each row perturbs
// exactly one parameter across evenly spaced probe values between its
// min and max while the others hold their defaults. The members row
// budget is split across parameters in declaration order, first
// parameters absorbing any remainder. Interdependencies do not apply
// in this design.
func oneAtATime(specs []params.Spec, members int) [][]float64 {
	probes := make([]int, len(specs))
	base := members / len(specs)
	rem := members % len(specs)
	for i := range probes {
		probes[i] = base
		if i < rem {
			probes[i]++
		}
	}

	rows := make([][]float64, 0, members)
	for c, s := range specs {
		for j := 0; j < probes[c]; j++ {
			row := make([]float64, len(specs))
			for k, d := range specs {
				row[k] = roundSpec(d, d.Default)
			}
			row[c] = roundSpec(s, probeValue(s, j, probes[c]))
			rows = append(rows, row)
		}
	}
	return rows
}

// probeValue places probe j of k on the line from min to max, the
// endpoints included. A single probe lands on max, the strongest
// perturbation.
func probeValue(s params.Spec, j, k int) float64 {
	if k == 1 {
		return s.Max
	}
	return s.Min + (s.Max-s.Min)*float64(j)/float64(k-1)
}
