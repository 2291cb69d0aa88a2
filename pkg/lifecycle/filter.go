// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package lifecycle

import (
	"log/slog"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/plugspace/plugspace/pkg/plugin"
)

// Filter decides whether a plugin must be disabled before initialization.
type Filter interface {
	// Disables returns true if the plugin described by spec must not load.
	Disables(spec *plugin.PluginSpec) bool
}

// FilterFunc adapts a function to the Filter interface.
type FilterFunc func(spec *plugin.PluginSpec) bool

// Disables implements Filter.
func (f FilterFunc) Disables(spec *plugin.PluginSpec) bool { return f(spec) }

// ExclusionPattern describes plugins to exclude. Each non-empty field is a
// glob constraint; a pattern only fires when all of its configured
// constraints match. Value matches against the spec's serialized locator, so
// it can exclude everything coming from a specific module tree.
type ExclusionPattern struct {
	Namespace string
	Name      string
	Value     string
}

// specMatcher holds an exclusion pattern with its compiled globs.
type specMatcher struct {
	pattern   ExclusionPattern
	namespace glob.Glob
	name      glob.Glob
	value     glob.Glob
}

func compileMatcher(pattern ExclusionPattern) (*specMatcher, error) {
	m := &specMatcher{pattern: pattern}

	var err error
	if pattern.Namespace != "" {
		if m.namespace, err = glob.Compile(pattern.Namespace); err != nil {
			return nil, oops.In("lifecycle").
				Code("INVALID_FILTER_PATTERN").
				With("namespace", pattern.Namespace).
				Wrap(err)
		}
	}
	if pattern.Name != "" {
		if m.name, err = glob.Compile(pattern.Name); err != nil {
			return nil, oops.In("lifecycle").
				Code("INVALID_FILTER_PATTERN").
				With("name", pattern.Name).
				Wrap(err)
		}
	}
	if pattern.Value != "" {
		if m.value, err = glob.Compile(pattern.Value); err != nil {
			return nil, oops.In("lifecycle").
				Code("INVALID_FILTER_PATTERN").
				With("value", pattern.Value).
				Wrap(err)
		}
	}

	return m, nil
}

// matches applies AND semantics across the configured constraints.
func (m *specMatcher) matches(spec *plugin.PluginSpec) bool {
	if m.namespace != nil && !m.namespace.Match(spec.Namespace) {
		return false
	}
	if m.name != nil && !m.name.Match(spec.Name) {
		return false
	}
	if m.value != nil {
		ep, err := spec.EntryPoint()
		if err != nil {
			// Specs without a serializable locator cannot match a value
			// constraint.
			return false
		}
		if !m.value.Match(ep.Value) {
			return false
		}
	}
	return true
}

// MatchingFilter excludes plugins matching any of its configured exclusion
// patterns (OR semantics across patterns, AND within one). Safe for
// concurrent use; the zero value matches nothing.
type MatchingFilter struct {
	mu         sync.RWMutex
	exclusions []*specMatcher
}

var _ Filter = (*MatchingFilter)(nil)

// NewMatchingFilter creates a filter with no patterns configured.
func NewMatchingFilter() *MatchingFilter {
	return &MatchingFilter{}
}

// AddExclusion adds a pattern of plugins that should be excluded. For
// example:
//
//	// exclude all plugins under namespaces some.namespace.a, some.namespace.b, ...
//	f.AddExclusion(ExclusionPattern{Namespace: "some.namespace.*"})
//
//	// exclude all plugins coming from a specific module tree
//	f.AddExclusion(ExclusionPattern{Value: "my.module.*"})
//
// Returns an error when a configured glob does not compile; the filter is
// unchanged in that case.
func (f *MatchingFilter) AddExclusion(pattern ExclusionPattern) error {
	matcher, err := compileMatcher(pattern)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.exclusions = append(f.exclusions, matcher)
	f.mu.Unlock()
	return nil
}

// Disables implements Filter.
func (f *MatchingFilter) Disables(spec *plugin.PluginSpec) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, matcher := range f.exclusions {
		if matcher.matches(spec) {
			slog.Debug("filter rule matched plugin",
				"namespace", spec.Namespace,
				"name", spec.Name)
			return true
		}
	}
	return false
}

var (
	defaultFilter     *MatchingFilter
	defaultFilterOnce sync.Once
)

// DefaultFilter returns the process-wide filter that managers fall back to
// when no filters are injected. It starts with no patterns configured and can
// be extended by the hosting application.
func DefaultFilter() *MatchingFilter {
	defaultFilterOnce.Do(func() {
		defaultFilter = NewMatchingFilter()
	})
	return defaultFilter
}
