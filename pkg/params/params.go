// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package params resolves the declarative parameter-range file into
// normalized per-parameter descriptors. Resolution is pure: the raw
// YAML entries go in, fully-resolved immutable Specs come out, and
// every contradiction is a ConfigError before anything is sampled.
package params

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sampling selects the transform applied when scaling a unit draw to
// the parameter's physical range.
type Sampling string

const (
	SamplingLinear Sampling = "linear"
	SamplingLog    Sampling = "log"
)

// InputType says how a sampled value reaches the model: as a direct
// namelist value, or baked into a generated artifact file shared by
// all parameters of the same type.
type InputType string

const (
	InputNamelist InputType = "namelist"
	InputChemMech InputType = "chem_mech_file"
	InputLandParam InputType = "land_param_file"
)

// Raw is one entry of the parameter-ranges file, prior to validation.
// Exactly one of {Min&Max, ScaleFactor} must be present.
type Raw struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Default     float64  `yaml:"default"`
	Min         *float64 `yaml:"min"`
	Max         *float64 `yaml:"max"`
	ScaleFactor *float64 `yaml:"scale_factor"`
	Sampling    string   `yaml:"sampling"`
	NDigits     *int     `yaml:"ndigits"`
	Component   string   `yaml:"component"`
	InputType   string   `yaml:"input_type"`
	// InterdependentWith ties this parameter's value to another
	// parameter's draw instead of an independent dimension. A leading
	// '-' marks the inverse relationship.
	InterdependentWith string `yaml:"interdependent_with"`
}

// Spec is a resolved parameter descriptor. Min and Max are always
// populated (scale-factor entries are resolved symmetrically around
// the default) and Sampling is normalized.
type Spec struct {
	Name        string
	Description string
	Default     float64
	Min         float64
	Max         float64
	Sampling    Sampling
	NDigits     *int
	Component   string
	Input       InputType
	DependsOn   string
	Inverse     bool
}

// Independent reports whether the spec draws its own hypercube dimension.
func (s Spec) Independent() bool { return s.DependsOn == "" }

// RangeFile is the parsed parameter-ranges document.
type RangeFile struct {
	// Templates maps an artifact input type to the template file the
	// generated per-member artifacts are derived from.
	Templates  map[string]string `yaml:"templates"`
	Parameters []Raw             `yaml:"parameters"`
}

// LoadRanges reads and parses a parameter-ranges YAML file.
func LoadRanges(path string) (*RangeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ranges file: %w", err)
	}
	var rf RangeFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing ranges file %s: %w", path, err)
	}
	if len(rf.Parameters) == 0 {
		return nil, Configf("ranges file %s declares no parameters", path)
	}
	return &rf, nil
}

// Resolve validates one raw entry and produces its Spec. The
// assumedComponent is used when the entry names none.
func Resolve(raw Raw, assumedComponent string) (Spec, error) {
	if raw.Name == "" {
		return Spec{}, Configf("parameter entry with empty name")
	}
	hasRange := raw.Min != nil || raw.Max != nil
	hasScale := raw.ScaleFactor != nil
	switch {
	case hasRange && hasScale:
		return Spec{}, Configf("parameter %s: min/max and scale_factor are mutually exclusive", raw.Name)
	case hasRange && (raw.Min == nil || raw.Max == nil):
		return Spec{}, Configf("parameter %s: min and max must both be set", raw.Name)
	case !hasRange && !hasScale:
		return Spec{}, Configf("parameter %s: either min/max or scale_factor is required", raw.Name)
	}

	s := Spec{
		Name:        raw.Name,
		Description: raw.Description,
		Default:     raw.Default,
		NDigits:     raw.NDigits,
		Component:   raw.Component,
	}
	if s.Component == "" {
		s.Component = assumedComponent
	}

	if hasScale {
		s.Min = raw.Default - raw.Default*(*raw.ScaleFactor)
		s.Max = raw.Default + raw.Default*(*raw.ScaleFactor)
	} else {
		s.Min = *raw.Min
		s.Max = *raw.Max
	}
	if s.Min > s.Max {
		return Spec{}, Configf("parameter %s: resolved min %g exceeds max %g", raw.Name, s.Min, s.Max)
	}
	if s.Default < s.Min || s.Default > s.Max {
		return Spec{}, Configf("parameter %s: default %g outside resolved range [%g, %g]",
			raw.Name, s.Default, s.Min, s.Max)
	}

	switch raw.Sampling {
	case "", string(SamplingLinear):
		s.Sampling = SamplingLinear
	case string(SamplingLog):
		s.Sampling = SamplingLog
	default:
		return Spec{}, Configf("parameter %s: unknown sampling %q", raw.Name, raw.Sampling)
	}

	switch raw.InputType {
	case "", string(InputNamelist):
		s.Input = InputNamelist
	case string(InputChemMech):
		s.Input = InputChemMech
	case string(InputLandParam):
		s.Input = InputLandParam
	default:
		return Spec{}, Configf("parameter %s: unknown input_type %q", raw.Name, raw.InputType)
	}

	if dep := strings.TrimSpace(raw.InterdependentWith); dep != "" {
		if strings.HasPrefix(dep, "-") {
			s.Inverse = true
			dep = strings.TrimSpace(strings.TrimPrefix(dep, "-"))
		}
		if dep == "" {
			return Spec{}, Configf("parameter %s: empty interdependency reference", raw.Name)
		}
		s.DependsOn = dep
	}
	return s, nil
}

// ResolveSet resolves all raw entries, preserving their order, and
// validates cross-entry constraints: unique names, and interdependency
// references that exist, are not self-referential, and do not chain.
func ResolveSet(raws []Raw, assumedComponent string) ([]Spec, error) {
	if len(raws) == 0 {
		return nil, Configf("empty parameter set")
	}
	specs := make([]Spec, 0, len(raws))
	byName := make(map[string]Spec, len(raws))
	for _, raw := range raws {
		s, err := Resolve(raw, assumedComponent)
		if err != nil {
			return nil, err
		}
		if _, dup := byName[s.Name]; dup {
			return nil, Configf("duplicate parameter name %s", s.Name)
		}
		byName[s.Name] = s
		specs = append(specs, s)
	}
	for _, s := range specs {
		if s.DependsOn == "" {
			continue
		}
		if s.DependsOn == s.Name {
			return nil, Configf("parameter %s depends on itself", s.Name)
		}
		ref, ok := byName[s.DependsOn]
		if !ok {
			return nil, Configf("parameter %s depends on unknown parameter %s", s.Name, s.DependsOn)
		}
		if ref.DependsOn != "" {
			return nil, Configf("parameter %s depends on %s, which is itself interdependent",
				s.Name, s.DependsOn)
		}
	}
	return specs, nil
}

// Subset returns the raws whose names appear in names, in the order of
// names, erroring on unknown references. An empty names keeps all.
func Subset(raws []Raw, names []string) ([]Raw, error) {
	if len(names) == 0 {
		return raws, nil
	}
	byName := make(map[string]Raw, len(raws))
	for _, r := range raws {
		byName[r.Name] = r
	}
	out := make([]Raw, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		r, ok := byName[n]
		if !ok {
			return nil, Configf("parameter %q not found in ranges file", n)
		}
		out = append(out, r)
	}
	return out, nil
}
