// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package namelist turns ordered key/value groups into Fortran namelist
// text. The builder is a pure string function; appending the result to
// a case's user_nl file, and appending it only once, is the caller's
// responsibility.
package namelist

import (
	"fmt"
	"regexp"
	"strings"
)

// Entry is one key = value line. Value is the raw string; formatting
// rules are applied at build time.
type Entry struct {
	Key   string
	Value string
}

// Group is one namelist section. Entries keep their declaration order.
type Group struct {
	Name    string
	Entries []Entry
}

// Dialect captures per-component deviations from the standard fenced
// namelist format.
type Dialect struct {
	// Unfenced components use a flat key = value file with no
	// &section ... / fences around groups.
	Unfenced bool
}

// dialects is keyed by lower-cased component name. Components not
// listed use the standard fenced dialect.
var dialects = map[string]Dialect{
	"blom": {Unfenced: true},
}

// DialectFor returns the namelist dialect of a component.
func DialectFor(component string) Dialect {
	return dialects[strings.ToLower(component)]
}

// miscGroup collects loose settings that belong to no section. Its
// entries are hoisted above all fenced groups.
const miscGroup = "misc"

var numericRe = regexp.MustCompile(`^-?\d+(\.\d*)?([eEdD][+-]?\d+)?$`)

func isNumeric(s string) bool { return numericRe.MatchString(s) }

func isLogical(s string) bool {
	l := strings.ToLower(s)
	return l == ".true." || l == ".false."
}

// FormatValue formats a raw string for a namelist line. Fortran
// logicals are lower-cased, numerics (including E/D scientific
// notation) pass through unquoted, comma lists of numerics or logicals
// stay bare, comma lists of strings are quoted per element, and any
// other string is quoted whole.
func FormatValue(value string) string {
	value = strings.TrimSpace(value)
	if isLogical(value) {
		return strings.ToLower(value)
	}
	if isNumeric(value) {
		return value
	}
	if strings.Contains(value, ",") {
		parts := strings.Split(value, ",")
		bare := true
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
			if !isNumeric(parts[i]) && !isLogical(parts[i]) {
				bare = false
			}
		}
		if bare {
			return strings.Join(parts, ",")
		}
		for i, p := range parts {
			parts[i] = "'" + p + "'"
		}
		return strings.Join(parts, ",")
	}
	return "'" + value + "'"
}

// continuation describes a key family whose newline-separated value is
// emitted as a quoted multi-line list with aligned continuation lines.
type continuation struct {
	prefix string
	suffix string
	indent string
}

var continuations = []continuation{
	{prefix: "fincl", indent: "         "},
	{suffix: "_specifier", indent: "                  "},
}

func continuationFor(key string) (continuation, bool) {
	k := strings.ToLower(key)
	for _, c := range continuations {
		if c.prefix != "" && strings.HasPrefix(k, c.prefix) {
			return c, true
		}
		if c.suffix != "" && strings.HasSuffix(k, c.suffix) {
			return c, true
		}
	}
	return continuation{}, false
}

func writeEntry(b *strings.Builder, e Entry) {
	c, ok := continuationFor(e.Key)
	if !ok {
		fmt.Fprintf(b, "%s = %s\n", e.Key, FormatValue(e.Value))
		return
	}
	items := strings.Split(strings.TrimSpace(e.Value), "\n")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	if len(items) == 1 {
		fmt.Fprintf(b, "%s = '%s'\n", e.Key, items[0])
		return
	}
	fmt.Fprintf(b, "%s = '%s',\n", e.Key, items[0])
	for _, it := range items[1 : len(items)-1] {
		fmt.Fprintf(b, "%s'%s',\n", c.indent, it)
	}
	fmt.Fprintf(b, "%s'%s'\n", c.indent, items[len(items)-1])
}

// Build renders a component's groups as namelist text. Entries of any
// group named "misc" come first, unfenced; remaining groups are
// wrapped in &name ... / fences unless the component's dialect is
// Unfenced.
func Build(component string, groups []Group) string {
	d := DialectFor(component)
	var b strings.Builder
	for _, g := range groups {
		if g.Name != miscGroup {
			continue
		}
		for _, e := range g.Entries {
			writeEntry(&b, e)
		}
	}
	for _, g := range groups {
		if g.Name == miscGroup {
			continue
		}
		if !d.Unfenced {
			fmt.Fprintf(&b, "&%s\n", g.Name)
		}
		for _, e := range g.Entries {
			writeEntry(&b, e)
		}
		if !d.Unfenced {
			b.WriteString("/\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Lines renders bare key = value lines with no fences, the form used
// when appending a member's overrides to an existing user_nl file.
func Lines(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s = %s\n", e.Key, FormatValue(e.Value))
	}
	return b.String()
}
