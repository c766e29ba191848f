// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package sample

import (
	"math"
	"math/rand"

	"github.com/mesh-intelligence/ensemble-tinker/pkg/params"
)

// Optimization criteria accepted by Draw. Both improve the hypercube
// by swapping strata between two rows of one dimension, which keeps
// the design a valid Latin Hypercube.
const (
	// OptRandomCD minimizes the centered L2 discrepancy.
	OptRandomCD = "random-cd"
	// OptLloyd maximizes the minimum pairwise point distance.
	OptLloyd = "lloyd"
)

// swapRounds scales the number of attempted swaps per dimension.
const swapRounds = 200

type criterion struct {
	score  func([][]float64) float64
	better func(cur, next float64) bool
}

func criterionFor(method string) (*criterion, error) {
	switch method {
	case "":
		return nil, nil
	case OptRandomCD:
		return &criterion{
			score:  centeredDiscrepancy,
			better: func(cur, next float64) bool { return next < cur },
		}, nil
	case OptLloyd:
		return &criterion{
			score:  minPairDistance,
			better: func(cur, next float64) bool { return next > cur },
		}, nil
	}
	return nil, params.Configf("unknown hypercube optimization %q", method)
}

// optimizeHypercube runs accept-if-better stratum swaps against the
// selected criterion. The unit design is modified in place.
func optimizeHypercube(rng *rand.Rand, unit [][]float64, method string) error {
	crit, err := criterionFor(method)
	if err != nil || crit == nil {
		return err
	}
	n := len(unit)
	if n < 2 {
		return nil
	}
	dims := len(unit[0])
	cur := crit.score(unit)
	for t := 0; t < swapRounds*dims; t++ {
		d := rng.Intn(dims)
		i, j := rng.Intn(n), rng.Intn(n)
		if i == j {
			continue
		}
		unit[i][d], unit[j][d] = unit[j][d], unit[i][d]
		if next := crit.score(unit); crit.better(cur, next) {
			cur = next
		} else {
			unit[i][d], unit[j][d] = unit[j][d], unit[i][d]
		}
	}
	return nil
}

// centeredDiscrepancy is the squared centered L2 discrepancy of a
// unit-cube design, the uniformity measure behind random-cd.
func centeredDiscrepancy(unit [][]float64) float64 {
	n := len(unit)
	dims := len(unit[0])
	sum1, sum2 := 0.0, 0.0
	for i := 0; i < n; i++ {
		p := 1.0
		for d := 0; d < dims; d++ {
			a := math.Abs(unit[i][d] - 0.5)
			p *= 1 + 0.5*a - 0.5*a*a
		}
		sum1 += p
		for j := 0; j < n; j++ {
			q := 1.0
			for d := 0; d < dims; d++ {
				ai := math.Abs(unit[i][d] - 0.5)
				aj := math.Abs(unit[j][d] - 0.5)
				q *= 1 + 0.5*ai + 0.5*aj - 0.5*math.Abs(unit[i][d]-unit[j][d])
			}
			sum2 += q
		}
	}
	nf := float64(n)
	return math.Pow(13.0/12.0, float64(dims)) - 2/nf*sum1 + sum2/(nf*nf)
}

// minPairDistance is the smallest Euclidean distance between any two
// design points, the maximin criterion.
func minPairDistance(unit [][]float64) float64 {
	best := math.Inf(1)
	for i := 0; i < len(unit); i++ {
		for j := i + 1; j < len(unit); j++ {
			d2 := 0.0
			for d := 0; d < len(unit[0]); d++ {
				diff := unit[i][d] - unit[j][d]
				d2 += diff * diff
			}
			if d2 < best {
				best = d2
			}
		}
	}
	return math.Sqrt(best)
}
