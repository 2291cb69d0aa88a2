// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

// Package entrypoint defines the entry point record and its serialized forms.
//
// An entry point is a (group, name, locator) triple. The on-disk form is an
// INI-like entry_points.txt file with one bracketed section per group and one
// "name = locator" line per entry point. The same data also round-trips
// through a mapping from group to "name=value" declaration lines, which is the
// shape of the JSON artifact consumed by packaging tooling.
package entrypoint

import (
	"sort"
	"strings"

	"github.com/samber/oops"
)

// EntryPoint is a single (group, name, locator) record. Value is an opaque
// locator string resolvable by a code loader into plugin code.
type EntryPoint struct {
	Name  string
	Value string
	Group string
}

// String returns the declaration line form "name=value".
func (e EntryPoint) String() string {
	return e.Name + "=" + e.Value
}

// Mapping maps a group to its "name=value" declaration lines.
type Mapping map[string][]string

// Index maps a group to its entry points.
type Index map[string][]EntryPoint

// ToMapping builds a Mapping from entry points. A name that recurs within a
// group is a build-time misconfiguration and returns an error.
func ToMapping(eps []EntryPoint) (Mapping, error) {
	result := Mapping{}
	names := map[string]map[string]struct{}{}

	for _, ep := range eps {
		if _, ok := names[ep.Group][ep.Name]; ok {
			return nil, oops.In("entrypoint").
				Code("DUPLICATE_ENTRY_POINT").
				With("group", ep.Group).
				With("name", ep.Name).
				New("duplicate entry point")
		}
		if names[ep.Group] == nil {
			names[ep.Group] = map[string]struct{}{}
		}
		names[ep.Group][ep.Name] = struct{}{}
		result[ep.Group] = append(result[ep.Group], ep.String())
	}

	return result, nil
}

// BuildIndex organizes entry points into an Index. Unlike ToMapping,
// duplicates within a group are not an error: the first occurrence of a name
// wins and later ones are dropped. This is the merge policy used when
// combining entry points across distributions.
func BuildIndex(eps []EntryPoint) Index {
	result := Index{}
	names := map[string]map[string]struct{}{}

	for _, ep := range eps {
		if _, ok := names[ep.Group][ep.Name]; ok {
			continue
		}
		if names[ep.Group] == nil {
			names[ep.Group] = map[string]struct{}{}
		}
		names[ep.Group][ep.Name] = struct{}{}
		result[ep.Group] = append(result[ep.Group], ep)
	}

	return result
}

// EntryPoints flattens the mapping back into entry point records. Lines that
// do not contain a "=" separator are rejected.
func (m Mapping) EntryPoints() ([]EntryPoint, error) {
	var eps []EntryPoint
	for _, group := range sortedKeys(m) {
		for _, line := range m[group] {
			name, value, ok := strings.Cut(line, "=")
			if !ok {
				return nil, oops.In("entrypoint").
					Code("INVALID_DECLARATION").
					With("group", group).
					With("line", line).
					New("declaration line is not of the form name=value")
			}
			eps = append(eps, EntryPoint{
				Name:  strings.TrimSpace(name),
				Value: strings.TrimSpace(value),
				Group: group,
			})
		}
	}
	return eps, nil
}

// Groups returns the group names of the index in sorted order.
func (ix Index) Groups() []string {
	return sortedKeys(ix)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
