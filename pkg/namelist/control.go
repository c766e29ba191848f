// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package namelist

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ComponentGroups is the configured namelist content of one component:
// the groups to write into its user_nl file when the base case is set
// up.
type ComponentGroups struct {
	Component string
	Groups    []Group
}

// Control is the namelist control block of the simulation-setup file,
// mapping components to their default namelist groups. Component,
// group, and key order all follow the document, which is why this
// decodes through yaml.Node instead of a map.
type Control struct {
	Components []ComponentGroups
}

// Get returns the groups configured for a component.
func (c *Control) Get(component string) ([]Group, bool) {
	for _, cg := range c.Components {
		if cg.Component == component {
			return cg.Groups, true
		}
	}
	return nil, false
}

// UnmarshalYAML decodes a two-level mapping, component -> group ->
// key: value, preserving document order at every level.
func (c *Control) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("namelist control: expected mapping, got %s", kindName(node.Kind))
	}
	for i := 0; i < len(node.Content); i += 2 {
		comp, body := node.Content[i], node.Content[i+1]
		groups, err := decodeGroups(body)
		if err != nil {
			return fmt.Errorf("namelist control for %s: %w", comp.Value, err)
		}
		c.Components = append(c.Components, ComponentGroups{
			Component: comp.Value,
			Groups:    groups,
		})
	}
	return nil
}

func decodeGroups(node *yaml.Node) ([]Group, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected mapping of groups, got %s", kindName(node.Kind))
	}
	groups := make([]Group, 0, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		name, body := node.Content[i], node.Content[i+1]
		if body.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("group %s: expected mapping of entries, got %s",
				name.Value, kindName(body.Kind))
		}
		g := Group{Name: name.Value}
		for j := 0; j < len(body.Content); j += 2 {
			k, v := body.Content[j], body.Content[j+1]
			if v.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("group %s, key %s: expected scalar value",
					name.Value, k.Value)
			}
			g.Entries = append(g.Entries, Entry{Key: k.Value, Value: v.Value})
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
