// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package artifact derives per-member input files from templates:
// perturbed chemistry-mechanism text files and land-model parameter
// NetCDF files. Each writer produces a distinct output path per
// member and never touches the shared template.
package artifact

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/ensemble-tinker/pkg/params"
	"github.com/mesh-intelligence/ensemble-tinker/pkg/sample"
)

// Writer turns one member's parameter values into one artifact file
// and returns its path. Writes for different members must be isolated
// from each other.
type Writer interface {
	Write(member int, values map[string]float64) (string, error)
}

// GenerateGroup produces one artifact per ensemble member for the
// parameter group, batching all of the group's values into a single
// writer call per member. The result maps member index to the
// generated path. The first failing member aborts the group.
func GenerateGroup(group string, specs []params.Spec, m *sample.Matrix, w Writer, log *zap.Logger) (map[int]string, error) {
	if len(specs) == 0 {
		return nil, params.Configf("artifact group %s has no parameters", group)
	}
	cols := make([]int, len(specs))
	for i, s := range specs {
		c, ok := m.Column(s.Name)
		if !ok {
			return nil, params.Configf("artifact group %s: parameter %s not in sample", group, s.Name)
		}
		cols[i] = c
	}

	paths := make(map[int]string, len(m.Rows))
	for r := range m.Rows {
		values := make(map[string]float64, len(specs))
		for i, s := range specs {
			values[s.Name] = m.Rows[r][cols[i]]
		}
		member := m.Indices[r]
		path, err := w.Write(member, values)
		if err != nil {
			return nil, err
		}
		log.Debug("generated artifact",
			zap.String("group", group),
			zap.Int("member", member),
			zap.String("path", path))
		paths[member] = path
	}
	log.Info("artifact group generated",
		zap.String("group", group),
		zap.Int("members", len(paths)))
	return paths, nil
}
