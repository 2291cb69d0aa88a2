// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package entrypoint

import (
	"bytes"
	"sort"

	"github.com/samber/oops"
	"gopkg.in/ini.v1"
)

// ParseText parses the content of an entry_points.txt file into entry point
// records. Section names become groups; keys and values become names and
// locators. The order of entries within a section is preserved.
func ParseText(data []byte) ([]EntryPoint, error) {
	f, err := ini.Load(data)
	if err != nil {
		return nil, oops.In("entrypoint").
			Code("INVALID_ENTRY_POINTS_TEXT").
			Hint("expected INI-style sections with name = locator lines").
			Wrap(err)
	}

	var eps []EntryPoint
	for _, section := range f.Sections() {
		if section.Name() == ini.DefaultSection {
			// Top-level keys outside any [group] section carry no group and
			// cannot be entry points.
			continue
		}
		for _, key := range section.Keys() {
			eps = append(eps, EntryPoint{
				Name:  key.Name(),
				Value: key.Value(),
				Group: section.Name(),
			})
		}
	}

	return eps, nil
}

// SerializeIndex renders the index in the entry_points.txt format. Output is
// deterministic: sections are sorted by group name and entries within a
// section are sorted by name, one "name = locator" line each, with a blank
// line after every section.
//
//	[console_scripts]
//	wheel = wheel.cli:main
//
//	[distutils.commands]
//	bdist_egg = setuptools.command.bdist_egg:bdist_egg
func SerializeIndex(ix Index) []byte {
	var buf bytes.Buffer
	for _, group := range ix.Groups() {
		buf.WriteString("[" + group + "]\n")

		eps := make([]EntryPoint, len(ix[group]))
		copy(eps, ix[group])
		sort.Slice(eps, func(i, j int) bool { return eps[i].Name < eps[j].Name })

		for _, ep := range eps {
			buf.WriteString(ep.Name + " = " + ep.Value + "\n")
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}
