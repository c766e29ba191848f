// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ensemble materializes per-member parameter sets from a
// reloaded sample file: for each member, the ordered namelist entries
// per component, with artifact-derived values promoted in place of
// their sampled scalars.
package ensemble

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/ensemble-tinker/pkg/params"
	"github.com/mesh-intelligence/ensemble-tinker/pkg/sample"
)

// Provenance says where a member's value came from.
type Provenance string

const (
	ProvDefault Provenance = "default"
	ProvSampled Provenance = "sampled"
	ProvFile    Provenance = "file-derived"
)

// Entry is one namelist assignment for one member.
type Entry struct {
	Variable   string
	Value      string
	Provenance Provenance
}

// ComponentEntries is a component's ordered entries for one member.
type ComponentEntries struct {
	Component string
	Entries   []Entry
}

// Member is one ensemble member's materialized parameter set.
type Member struct {
	// Index is the member index from the sample file; 0 is the
	// default member.
	Index int
	// ChemMech is the member's chemistry-mechanism file, consumed by
	// the driver as a build option rather than a namelist line.
	ChemMech string
	// Components holds the per-component namelist entries.
	Components []ComponentEntries
}

// Entries returns the member's entries for one component.
func (m *Member) Entries(component string) []Entry {
	for _, c := range m.Components {
		if c.Component == component {
			return c.Entries
		}
	}
	return nil
}

// chemGroup is the artifact group consumed as a build option.
const chemGroup = "chem_mech_file"

// Config supplies the externally configured pieces of assembly.
type Config struct {
	// LifeCycleRadius and LifeCycleSigma are the fixed-length comma
	// lists the lifeCycle parameter families splice into. Required
	// when such parameters are present.
	LifeCycleRadius string
	LifeCycleSigma  string
	// ArtifactVars maps an artifact group (other than the chemistry
	// mechanism) to the namelist variable receiving the generated
	// file path.
	ArtifactVars map[string]string
}

// Assemble builds one Member per sample row. Sampled scalars become
// namelist entries in column order; columns of an artifact group are
// replaced by that group's generated file reference.
func Assemble(f *sample.File, cfg Config, log *zap.Logger) ([]Member, error) {
	if err := checkCollisions(f); err != nil {
		return nil, err
	}

	members := make([]Member, 0, f.NumMembers())
	for r := 0; r < f.NumMembers(); r++ {
		m, err := assembleMember(f, cfg, r)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
		log.Debug("assembled member", zap.Int("member", m.Index))
	}
	log.Info("ensemble parameter set assembled", zap.Int("members", len(members)))
	return members, nil
}

func assembleMember(f *sample.File, cfg Config, row int) (*Member, error) {
	m := &Member{Index: f.Indices[row]}
	prov := ProvSampled
	if m.Index == 0 {
		prov = ProvDefault
	}

	byComponent := make(map[string]*ComponentEntries)
	component := func(name string) *ComponentEntries {
		if ce, ok := byComponent[name]; ok {
			return ce
		}
		m.Components = append(m.Components, ComponentEntries{Component: name})
		ce := &m.Components[len(m.Components)-1]
		byComponent[name] = ce
		return ce
	}

	promoted := make(map[string]bool) // artifact groups already emitted
	merged := make(map[string]bool)   // lifeCycle targets already emitted
	for i := range f.Columns {
		col := &f.Columns[i]
		switch {
		case col.Input != string(params.InputNamelist):
			group := col.Input
			if promoted[group] {
				continue
			}
			promoted[group] = true
			paths, ok := f.Artifacts[group]
			if !ok {
				return nil, params.Configf("sample file has no generated artifacts for group %s", group)
			}
			if group == chemGroup {
				m.ChemMech = paths[row]
				continue
			}
			variable, ok := cfg.ArtifactVars[group]
			if !ok {
				return nil, params.Configf("no namelist variable configured for artifact group %s", group)
			}
			ce := component(col.Component)
			ce.Entries = append(ce.Entries, Entry{
				Variable:   variable,
				Value:      paths[row],
				Provenance: ProvFile,
			})

		case lifeCycleTarget(col.Name) != "":
			target := lifeCycleTarget(col.Name)
			if merged[target] {
				continue
			}
			merged[target] = true
			value, err := mergeLifeCycle(f, cfg, target, row)
			if err != nil {
				return nil, err
			}
			ce := component(col.Component)
			ce.Entries = append(ce.Entries, Entry{
				Variable:   target,
				Value:      value,
				Provenance: prov,
			})

		default:
			ce := component(col.Component)
			ce.Entries = append(ce.Entries, Entry{
				Variable:   col.Name,
				Value:      strconv.FormatFloat(col.Values[row], 'g', -1, 64),
				Provenance: prov,
			})
		}
	}
	return m, nil
}

// checkCollisions rejects two columns of one component resolving to
// the same final namelist variable. The lifeCycle families are the
// exception, where multiple indices legitimately share a target and
// are merged.
func checkCollisions(f *sample.File) error {
	final := make(map[string]string) // component/variable -> column name
	for i := range f.Columns {
		col := &f.Columns[i]
		if col.Input != string(params.InputNamelist) || lifeCycleTarget(col.Name) != "" {
			continue
		}
		key := col.Component + "/" + col.Name
		if prev, dup := final[key]; dup {
			return params.Configf("parameters %s and %s both write namelist variable %s in component %s",
				prev, col.Name, col.Name, col.Component)
		}
		final[key] = col.Name
	}
	// lifeCycle indices must be unique within a family.
	idx := make(map[string]string)
	for i := range f.Columns {
		col := &f.Columns[i]
		target := lifeCycleTarget(col.Name)
		if target == "" {
			continue
		}
		k, err := lifeCycleIndex(col.Name)
		if err != nil {
			return err
		}
		key := target + "/" + strconv.Itoa(k)
		if prev, dup := idx[key]; dup {
			return params.Configf("parameters %s and %s both splice position %d of %s",
				prev, col.Name, k, target)
		}
		idx[key] = col.Name
	}
	return nil
}

// mergeLifeCycle splices every family column's value for one member
// into the configured default list, producing the single list the
// target variable is written with.
func mergeLifeCycle(f *sample.File, cfg Config, target string, row int) (string, error) {
	defaults, err := lifeCycleDefaults(cfg, target)
	if err != nil {
		return "", err
	}
	items := strings.Split(defaults, ",")
	for i := range f.Columns {
		col := &f.Columns[i]
		if lifeCycleTarget(col.Name) != target {
			continue
		}
		k, err := lifeCycleIndex(col.Name)
		if err != nil {
			return "", err
		}
		if k < 0 || k >= len(items) {
			return "", params.Configf("parameter %s: position %d outside the %d-entry default list",
				col.Name, k, len(items))
		}
		items[k] = formatLifeCycle(col.Values[row])
	}
	return strings.Join(items, ","), nil
}
