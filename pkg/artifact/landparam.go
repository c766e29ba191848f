// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctessum/cdf"
)

// LandParamWriter derives a per-member land-model parameter file by
// copying a NetCDF template with selected variables changed. Vector
// variables are scaled elementwise by the supplied value; scalar
// variables (including length-1 vectors) are replaced by it.
type LandParamWriter struct {
	// Template is the unperturbed parameter file.
	Template string
	// OutDir is the base output directory.
	OutDir string
	// Group names the artifact group and prefixes output files.
	Group string
}

// Write generates the parameter file for one member.
func (w *LandParamWriter) Write(member int, values map[string]float64) (string, error) {
	in, err := os.Open(w.Template)
	if err != nil {
		return "", fmt.Errorf("opening parameter template: %w", err)
	}
	defer in.Close()
	tpl, err := cdf.Open(in)
	if err != nil {
		return "", fmt.Errorf("parsing parameter template %s: %w", w.Template, err)
	}

	vars := tpl.Header.Variables()
	present := make(map[string]bool, len(vars))
	for _, v := range vars {
		present[v] = true
	}
	for name := range values {
		if !present[name] {
			return "", Generatef("parameter %s not found in template %s", name, w.Template)
		}
	}

	// Rebuild the header: dimensions in first-use order, then every
	// variable with its attributes.
	var dimNames []string
	var dimLens []int
	seen := make(map[string]bool)
	for _, v := range vars {
		lens := tpl.Header.Lengths(v)
		for i, d := range tpl.Header.Dimensions(v) {
			if !seen[d] {
				seen[d] = true
				dimNames = append(dimNames, d)
				dimLens = append(dimLens, lens[i])
			}
		}
	}
	h := cdf.NewHeader(dimNames, dimLens)
	for _, a := range tpl.Header.Attributes("") {
		h.AddAttribute("", a, tpl.Header.GetAttribute("", a))
	}

	data := make(map[string]interface{}, len(vars))
	for _, v := range vars {
		r := tpl.Reader(v, nil, nil)
		buf := r.Zero(-1)
		if _, err := r.Read(buf); err != nil {
			return "", fmt.Errorf("reading template variable %s: %w", v, err)
		}
		if val, ok := values[v]; ok {
			buf, err = applyChange(v, buf, val)
			if err != nil {
				return "", err
			}
		}
		data[v] = buf
		h.AddVariable(v, tpl.Header.Dimensions(v), exemplar(buf))
		for _, a := range tpl.Header.Attributes(v) {
			h.AddAttribute(v, a, tpl.Header.GetAttribute(v, a))
		}
	}
	h.Define()
	for _, err := range h.Check() {
		if err != nil {
			return "", fmt.Errorf("defining parameter file header: %w", err)
		}
	}

	if err := os.MkdirAll(w.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", w.OutDir, err)
	}
	path := filepath.Join(w.OutDir, fmt.Sprintf("%s_%03d.nc", w.Group, member))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating parameter file: %w", err)
	}
	defer out.Close()
	nf, err := cdf.Create(out, h)
	if err != nil {
		return "", fmt.Errorf("writing parameter file header: %w", err)
	}
	for _, v := range vars {
		lens := tpl.Header.Lengths(v)
		start := make([]int, len(lens))
		end := make([]int, len(lens))
		if len(end) > 0 {
			end[0] = lens[0]
		}
		if _, err := nf.Writer(v, start, end).Write(data[v]); err != nil {
			return "", fmt.Errorf("writing parameter variable %s: %w", v, err)
		}
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing parameter file: %w", err)
	}
	return path, nil
}

// applyChange perturbs one variable's buffer. A single element means
// a scalar, which is replaced; anything longer is a vector, scaled
// elementwise.
func applyChange(name string, buf interface{}, value float64) (interface{}, error) {
	switch b := buf.(type) {
	case []float64:
		if len(b) <= 1 {
			for i := range b {
				b[i] = value
			}
			return b, nil
		}
		for i := range b {
			b[i] *= value
		}
		return b, nil
	case []float32:
		if len(b) <= 1 {
			for i := range b {
				b[i] = float32(value)
			}
			return b, nil
		}
		for i := range b {
			b[i] *= float32(value)
		}
		return b, nil
	}
	return nil, Generatef("parameter %s has non-floating template type %T", name, buf)
}

// exemplar returns a one-element zero slice of buf's element type,
// the form cdf.Header.AddVariable wants.
func exemplar(buf interface{}) interface{} {
	switch buf.(type) {
	case []float64:
		return []float64{0}
	case []float32:
		return []float32{0}
	case []int32:
		return []int32{0}
	case []int16:
		return []int16{0}
	case []int8:
		return []int8{0}
	case string:
		return ""
	}
	return buf
}
