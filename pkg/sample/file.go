// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package sample

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ctessum/cdf"
)

// The sample file is the ensemble's source of truth: one NetCDF
// variable per parameter over the member dimension, carrying the
// provenance attributes needed to reproduce which member got which
// values. Artifact path groups are stored as fixed-width character
// matrices.

const memberDim = "nmb_sim"

// pathVarSuffix marks the character variables holding per-member
// artifact file paths.
const pathVarSuffix = "_path"

// Column is one parameter's stored values plus provenance metadata.
type Column struct {
	Name        string
	Description string
	Default     float64
	Sampling    string
	Component   string
	Input       string
	Values      []float64
}

// File is a re-loaded sample file.
type File struct {
	Created   string
	Indices   []int
	Columns   []Column
	Artifacts map[string][]string
}

// NumMembers is the stored row count, default row included.
func (f *File) NumMembers() int { return len(f.Indices) }

// Column returns a stored parameter column by name.
func (f *File) Column(name string) (*Column, bool) {
	for i := range f.Columns {
		if f.Columns[i].Name == name {
			return &f.Columns[i], true
		}
	}
	return nil, false
}

// WriteFile persists the matrix and any generated artifact paths
// (keyed by artifact group, then member index). The file is written
// completely to a temporary sibling and renamed into place, so a
// failed run never leaves a half-written sample file.
func WriteFile(path string, m *Matrix, artifacts map[string]map[int]string) error {
	n := len(m.Rows)
	if n == 0 {
		return fmt.Errorf("writing sample file: empty matrix")
	}

	groups := make([]string, 0, len(artifacts))
	for g := range artifacts {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	dims := []string{memberDim}
	lens := []int{n}
	widths := make(map[string]int, len(groups))
	for _, g := range groups {
		w := 1
		for _, p := range artifacts[g] {
			if len(p) > w {
				w = len(p)
			}
		}
		widths[g] = w
		dims = append(dims, g+"_len")
		lens = append(lens, w)
	}

	h := cdf.NewHeader(dims, lens)
	h.AddAttribute("", "created", time.Now().Format(time.RFC3339))
	h.AddVariable("member_index", []string{memberDim}, []int32{0})
	for _, s := range m.Specs {
		h.AddVariable(s.Name, []string{memberDim}, []float64{0})
		h.AddAttribute(s.Name, "description", s.Description)
		h.AddAttribute(s.Name, "default", []float64{s.Default})
		h.AddAttribute(s.Name, "sampling", string(s.Sampling))
		h.AddAttribute(s.Name, "esm_component", s.Component)
		h.AddAttribute(s.Name, "input_type", string(s.Input))
	}
	for _, g := range groups {
		h.AddVariable(g+pathVarSuffix, []string{memberDim, g + "_len"}, []int8{0})
		h.AddAttribute(g+pathVarSuffix, "input_type", "artifact_path")
	}
	h.Define()
	for _, err := range h.Check() {
		if err != nil {
			return fmt.Errorf("defining sample file header: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".sample-*.nc")
	if err != nil {
		return fmt.Errorf("creating sample file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	f, err := cdf.Create(tmp, h)
	if err != nil {
		return fmt.Errorf("creating sample file: %w", err)
	}

	idx := make([]int32, n)
	for r, i := range m.Indices {
		idx[r] = int32(i)
	}
	if _, err := f.Writer("member_index", []int{0}, []int{n}).Write(idx); err != nil {
		return fmt.Errorf("writing member indices: %w", err)
	}
	for c, s := range m.Specs {
		col := make([]float64, n)
		for r := range m.Rows {
			col[r] = m.Rows[r][c]
		}
		if _, err := f.Writer(s.Name, []int{0}, []int{n}).Write(col); err != nil {
			return fmt.Errorf("writing column %s: %w", s.Name, err)
		}
	}
	for _, g := range groups {
		w := widths[g]
		flat := make([]int8, n*w)
		for i := range flat {
			flat[i] = ' '
		}
		for r, i := range m.Indices {
			for k := 0; k < len(artifacts[g][i]); k++ {
				flat[r*w+k] = int8(artifacts[g][i][k])
			}
		}
		wr := f.Writer(g+pathVarSuffix, []int{0, 0}, []int{n, 0})
		if _, err := wr.Write(flat); err != nil {
			return fmt.Errorf("writing %s paths: %w", g, err)
		}
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing sample file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("placing sample file: %w", err)
	}
	return nil
}

// ReadFile loads a sample file back, column order preserved.
func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sample file: %w", err)
	}
	defer fh.Close()
	cf, err := cdf.Open(fh)
	if err != nil {
		return nil, fmt.Errorf("parsing sample file %s: %w", path, err)
	}

	out := &File{Artifacts: make(map[string][]string)}
	if created, ok := cf.Header.GetAttribute("", "created").(string); ok {
		out.Created = created
	}
	for _, v := range cf.Header.Variables() {
		lens := cf.Header.Lengths(v)
		n := lens[0]
		r := cf.Reader(v, nil, nil)
		switch v {
		case "member_index":
			buf := r.Zero(n).([]int32)
			if _, err := r.Read(buf); err != nil {
				return nil, fmt.Errorf("reading member indices: %w", err)
			}
			out.Indices = make([]int, n)
			for i, x := range buf {
				out.Indices[i] = int(x)
			}
		default:
			if strings.HasSuffix(v, pathVarSuffix) {
				paths, err := readPaths(r, n, lens[1])
				if err != nil {
					return nil, fmt.Errorf("reading %s: %w", v, err)
				}
				out.Artifacts[strings.TrimSuffix(v, pathVarSuffix)] = paths
				continue
			}
			buf := r.Zero(n).([]float64)
			if _, err := r.Read(buf); err != nil {
				return nil, fmt.Errorf("reading column %s: %w", v, err)
			}
			col := Column{Name: v, Values: buf}
			col.Description, _ = cf.Header.GetAttribute(v, "description").(string)
			col.Sampling, _ = cf.Header.GetAttribute(v, "sampling").(string)
			col.Component, _ = cf.Header.GetAttribute(v, "esm_component").(string)
			col.Input, _ = cf.Header.GetAttribute(v, "input_type").(string)
			if d, ok := cf.Header.GetAttribute(v, "default").([]float64); ok && len(d) > 0 {
				col.Default = d[0]
			}
			out.Columns = append(out.Columns, col)
		}
	}
	return out, nil
}

// readPaths unpacks a fixed-width byte matrix into per-row trimmed
// strings.
func readPaths(r *cdf.Reader, n, width int) ([]string, error) {
	buf := r.Zero(n * width).([]int8)
	if _, err := r.Read(buf); err != nil {
		return nil, err
	}
	raw := make([]byte, len(buf))
	for i, b := range buf {
		raw[i] = byte(b)
	}
	paths := make([]string, n)
	for i := 0; i < n; i++ {
		row := string(raw[i*width : (i+1)*width])
		paths[i] = strings.TrimRight(row, " \x00")
	}
	return paths, nil
}
