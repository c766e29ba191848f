// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// chemSubdir is where generated mechanism files land under OutDir.
const chemSubdir = "chem_mech_files"

// ChemWriter derives a perturbed chemistry-mechanism file from a
// template mechanism. The reaction lines naming the biogenic
// precursors have their product yield scaled by the member's factor.
type ChemWriter struct {
	// Template is the unperturbed mechanism file.
	Template string
	// OutDir is the base output directory.
	OutDir string
}

// chemPrecursors marks the reaction lines subject to yield scaling.
var chemPrecursors = []string{"monoterp", "isoprene"}

// Write generates the mechanism file for one member. The group must
// hold exactly one parameter, the yield scale factor.
func (w *ChemWriter) Write(member int, values map[string]float64) (string, error) {
	if len(values) != 1 {
		return "", Generatef("chemistry mechanism group must hold exactly one scale parameter, got %d", len(values))
	}
	var scale float64
	for _, v := range values {
		scale = v
	}

	data, err := os.ReadFile(w.Template)
	if err != nil {
		return "", fmt.Errorf("reading mechanism template: %w", err)
	}

	lines := strings.SplitAfter(string(data), "\n")
	rewritten := 0
	for i, line := range lines {
		if !yieldLine(line) {
			continue
		}
		out, err := scaleYield(line, scale)
		if err != nil {
			return "", err
		}
		lines[i] = out
		rewritten++
	}
	if rewritten == 0 {
		return "", Generatef("mechanism template %s has no scalable yield line", w.Template)
	}

	dir := filepath.Join(w.OutDir, chemSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("chem_mech_scale_%.3f.in", scale))
	if err := os.WriteFile(path, []byte(strings.Join(lines, "")), 0o644); err != nil {
		return "", fmt.Errorf("writing mechanism file: %w", err)
	}
	return path, nil
}

// yieldLine reports whether a mechanism line is a precursor reaction
// with a scalable product yield.
func yieldLine(line string) bool {
	named := false
	for _, p := range chemPrecursors {
		if strings.Contains(line, p) {
			named = true
			break
		}
	}
	return named && strings.Contains(line, "->") &&
		strings.Contains(line, "+") && strings.Contains(line, ";")
}

// scaleYield rewrites the product yield of a reaction line. The yield
// is the coefficient after the arrow, up to the first '*'.
func scaleYield(line string, scale float64) (string, error) {
	rhs := strings.SplitN(line, "->", 2)[1]
	yield := strings.TrimSpace(strings.SplitN(rhs, "*", 2)[0])
	y, err := strconv.ParseFloat(yield, 64)
	if err != nil {
		return "", Generatef("unparseable yield %q in mechanism line %q", yield, strings.TrimSpace(line))
	}
	return strings.Replace(line, yield, fmt.Sprintf("%.3f", y*scale), 1), nil
}
