// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package ensemble

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/ensemble-tinker/pkg/params"
)

// The lifeCycle parameter families do not map to namelist variables
// one to one: lifeCycleNumberMedianRadius_<k> and lifeCycleSigma_<k>
// replace position k of a fixed-length comma list held in
// configuration, and the whole list is written as the target
// variable's value.

const (
	radiusPrefix = "lifeCycleNumberMedianRadius"
	sigmaPrefix  = "lifeCycleSigma"

	radiusTarget = "oslo_aero_lifecyclenumbermedianradius"
	sigmaTarget  = "oslo_aero_lifecyclesigma"
)

// lifeCycleTarget returns the namelist variable a parameter name
// splices into, or empty for ordinary parameters.
func lifeCycleTarget(name string) string {
	switch {
	case strings.HasPrefix(name, radiusPrefix):
		return radiusTarget
	case strings.HasPrefix(name, sigmaPrefix):
		return sigmaTarget
	}
	return ""
}

// lifeCycleIndex parses the splice position from the name's last
// underscore segment.
func lifeCycleIndex(name string) (int, error) {
	parts := strings.Split(name, "_")
	k, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0, params.Configf("parameter %s: lifeCycle names must end in _<position>", name)
	}
	return k, nil
}

// lifeCycleDefaults returns the configured default list of a target.
func lifeCycleDefaults(cfg Config, target string) (string, error) {
	var list string
	if target == radiusTarget {
		list = cfg.LifeCycleRadius
	} else {
		list = cfg.LifeCycleSigma
	}
	if list == "" {
		return "", params.Configf("lifeCycle parameters require a configured default list for %s", target)
	}
	return list, nil
}

// formatLifeCycle renders a spliced value in the target namelist's
// scientific notation: one fractional digit, D exponent, no plus
// sign.
func formatLifeCycle(v float64) string {
	s := fmt.Sprintf("%.1E", v)
	s = strings.ReplaceAll(s, "E", "D")
	return strings.ReplaceAll(s, "+", "")
}
