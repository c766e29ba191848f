// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package driver

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// buildCompleteKey is the case environment flag set once a build
// finishes.
const buildCompleteKey = "BUILD_COMPLETE"

// CaseStatus is one case's build state.
type CaseStatus struct {
	CaseRoot string
	Built    bool
	Err      error
}

// Check queries the build state of each case directory.
func Check(ctx context.Context, backend Backend, caseDirs []string, log *zap.Logger) []CaseStatus {
	statuses := make([]CaseStatus, 0, len(caseDirs))
	for _, dir := range caseDirs {
		s := CaseStatus{CaseRoot: dir}
		v, err := backend.GetValue(ctx, dir, buildCompleteKey)
		if err != nil {
			s.Err = err
			log.Warn("build status query failed",
				zap.String("case", dir), zap.Error(err))
		} else {
			s.Built = strings.EqualFold(strings.TrimSpace(v), "TRUE")
		}
		statuses = append(statuses, s)
	}
	return statuses
}

// SubmitCases submits each case directory, logging and continuing
// past failures, and returns the per-case outcomes.
func SubmitCases(ctx context.Context, backend Backend, caseDirs []string, log *zap.Logger) []CaseStatus {
	results := make([]CaseStatus, 0, len(caseDirs))
	for _, dir := range caseDirs {
		s := CaseStatus{CaseRoot: dir}
		if err := ctx.Err(); err != nil {
			s.Err = err
			results = append(results, s)
			continue
		}
		if err := backend.Submit(ctx, dir); err != nil {
			s.Err = err
			log.Error("submit failed", zap.String("case", dir), zap.Error(err))
		} else {
			log.Info("case submitted", zap.String("case", dir))
		}
		results = append(results, s)
	}
	return results
}
