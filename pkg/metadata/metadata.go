// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

// Package metadata provides access to installed-distribution metadata on a
// search path.
//
// A search path is an ordered list of directories. Each directory may contain
// any number of distribution metadata directories (*.dist-info or *.egg-info),
// and each of those may declare entry points in an entry_points.txt file. A
// distribution installed as editable instead carries an
// entry_points_editable.txt file whose entire content is the path of the
// declaration file to use in its place.
package metadata

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"

	"github.com/plugspace/plugspace/pkg/entrypoint"
	"github.com/plugspace/plugspace/pkg/plugin"
)

// File names fixed by convention inside a metadata directory.
const (
	EntryPointsFile  = "entry_points.txt"
	EditableLinkFile = "entry_points_editable.txt"
	topLevelFile     = "top_level.txt"
)

var metadataDirPatterns = []string{"*.dist-info", "*.egg-info"}

// Distribution is one installed distribution's metadata directory.
type Distribution struct {
	// Name is the distribution name, parsed from the directory name.
	Name string

	// RawVersion is the version string parsed from the directory name, empty
	// when the directory name carries none.
	RawVersion string

	// Version is the parsed semantic version, nil when RawVersion is absent
	// or not parseable.
	Version *semver.Version

	// Path is the metadata directory itself.
	Path string
}

// ScanPath finds every distribution metadata directory reachable from the
// search path, in path order. Unreadable path entries are skipped.
func ScanPath(paths []string) []*Distribution {
	var dists []*Distribution
	for _, entry := range paths {
		var dirs []string
		for _, pattern := range metadataDirPatterns {
			matches, err := filepath.Glob(filepath.Join(entry, pattern))
			if err != nil {
				continue
			}
			dirs = append(dirs, matches...)
		}
		sort.Strings(dirs)

		for _, dir := range dirs {
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				continue
			}
			dists = append(dists, distributionAt(dir))
		}
	}
	return dists
}

// distributionAt builds a Distribution from a metadata directory path. The
// directory base has the form "name-version.dist-info", with the version part
// optional.
func distributionAt(dir string) *Distribution {
	base := filepath.Base(dir)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	d := &Distribution{Name: base, Path: dir}
	if name, version, ok := strings.Cut(base, "-"); ok {
		d.Name = name
		d.RawVersion = version
		if v, err := semver.NewVersion(version); err == nil {
			d.Version = v
		}
	}
	return d
}

// EntryPoints returns the distribution's declared entry points. When an
// editable redirection file is present and its target exists, the target is
// parsed in place of the distribution's own declarations. A distribution
// without declarations yields no entry points and no error.
func (d *Distribution) EntryPoints() ([]entrypoint.EntryPoint, error) {
	declPath := filepath.Join(d.Path, EntryPointsFile)

	if target, ok := d.editableTarget(); ok {
		declPath = target
	}

	data, err := os.ReadFile(filepath.Clean(declPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, oops.In("metadata").
			With("distribution", d.Name).
			With("path", declPath).
			Wrap(err)
	}

	eps, err := entrypoint.ParseText(data)
	if err != nil {
		return nil, oops.In("metadata").
			With("distribution", d.Name).
			With("path", declPath).
			Wrap(err)
	}
	return eps, nil
}

// editableTarget resolves the editable redirection file, returning the linked
// declaration path if both the link and its target exist.
func (d *Distribution) editableTarget() (string, bool) {
	link, err := os.ReadFile(filepath.Clean(filepath.Join(d.Path, EditableLinkFile)))
	if err != nil {
		return "", false
	}
	target := strings.TrimSpace(string(link))
	if target == "" {
		return "", false
	}
	if _, err := os.Stat(target); err != nil {
		return "", false
	}
	return target, true
}

// TopLevel returns the module roots this distribution provides, read from
// top_level.txt. Without the file, the normalized distribution name is
// assumed to be the single root.
func (d *Distribution) TopLevel() []string {
	data, err := os.ReadFile(filepath.Clean(filepath.Join(d.Path, topLevelFile)))
	if err != nil {
		return []string{strings.ReplaceAll(d.Name, "-", "_")}
	}
	return strings.Fields(string(data))
}

// ResolveEntryPoints merges the entry points of every distribution on the
// search path. The first occurrence of a (name, value, group) triple wins;
// later duplicates are dropped silently. Distributions whose declarations
// cannot be read are skipped.
func ResolveEntryPoints(paths []string) []entrypoint.EntryPoint {
	type key struct{ name, value, group string }
	seen := map[key]struct{}{}

	var unique []entrypoint.EntryPoint
	for _, dist := range ScanPath(paths) {
		eps, err := dist.EntryPoints()
		if err != nil {
			continue
		}
		for _, ep := range eps {
			k := key{ep.Name, ep.Value, ep.Group}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			unique = append(unique, ep)
		}
	}
	return unique
}

// ResolveDistribution finds the distribution a spec's factory comes from by
// matching the module root of its locator against each distribution's
// declared top-level modules. Returns nil when no distribution matches. A
// module root provided by more than one distribution is an error; namespace
// packages spanning distributions are not supported.
func ResolveDistribution(spec *plugin.PluginSpec, paths []string) (*Distribution, error) {
	ep, err := spec.EntryPoint()
	if err != nil {
		return nil, err
	}

	module, _, _ := strings.Cut(ep.Value, ":")
	root, _, _ := strings.Cut(module, ".")

	var matches []*Distribution
	for _, dist := range ScanPath(paths) {
		for _, top := range dist.TopLevel() {
			if top == root {
				matches = append(matches, dist)
				break
			}
		}
	}

	if len(matches) == 0 {
		return nil, nil
	}
	if len(matches) > 1 {
		return nil, oops.In("metadata").
			Code("AMBIGUOUS_DISTRIBUTION").
			With("module_root", root).
			New("module root is provided by multiple distributions")
	}
	return matches[0], nil
}
