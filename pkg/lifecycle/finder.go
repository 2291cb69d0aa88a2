// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package lifecycle

import (
	"log/slog"

	"github.com/plugspace/plugspace/pkg/entrypoint"
	"github.com/plugspace/plugspace/pkg/loader"
	"github.com/plugspace/plugspace/pkg/plugin"
)

// ResolveErrorCallback is invoked when an entry point cannot be turned into a
// plugin specification during metadata-driven discovery.
type ResolveErrorCallback func(namespace string, ep entrypoint.EntryPoint, err error)

// MetadataFinder resolves plugin specifications from installed-distribution
// entry points. Every entry point of the configured namespace is code-loaded
// and passed through spec resolution. A failure of either step never aborts
// discovery of the rest: the error callback is invoked and that single entry
// point is skipped.
type MetadataFinder struct {
	namespace      string
	onResolveError ResolveErrorCallback
	resolver       *plugin.SpecResolver
	source         EntryPointSource
	codeLoader     loader.CodeLoader
}

var _ plugin.Finder = (*MetadataFinder)(nil)

// FinderOption configures a MetadataFinder.
type FinderOption func(*MetadataFinder)

// WithEntryPointSource overrides where the finder takes entry points from.
func WithEntryPointSource(source EntryPointSource) FinderOption {
	return func(f *MetadataFinder) { f.source = source }
}

// WithCodeLoader overrides the code-loading capability.
func WithCodeLoader(codeLoader loader.CodeLoader) FinderOption {
	return func(f *MetadataFinder) { f.codeLoader = codeLoader }
}

// WithSpecResolver overrides the spec resolver.
func WithSpecResolver(resolver *plugin.SpecResolver) FinderOption {
	return func(f *MetadataFinder) { f.resolver = resolver }
}

// NewMetadataFinder creates a finder for the given namespace. The callback
// may be nil, in which case resolution failures are only logged. Defaults:
// the process-wide entry point cache and symbol registry.
func NewMetadataFinder(namespace string, onResolveError ResolveErrorCallback, opts ...FinderOption) *MetadataFinder {
	f := &MetadataFinder{
		namespace:      namespace,
		onResolveError: onResolveError,
		resolver:       plugin.NewSpecResolver(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.source == nil {
		f.source = DefaultCache()
	}
	if f.codeLoader == nil {
		f.codeLoader = loader.Default()
	}
	return f
}

// FindPlugins resolves every entry point of the namespace into a spec.
func (f *MetadataFinder) FindPlugins() ([]*plugin.PluginSpec, error) {
	index, err := f.source.EntryPoints()
	if err != nil {
		return nil, err
	}

	var specs []*plugin.PluginSpec
	for _, ep := range index[f.namespace] {
		spec, err := f.toPluginSpec(ep)
		if err != nil {
			slog.Debug("error resolving plugin spec for entry point",
				"namespace", f.namespace,
				"name", ep.Name,
				"error", err)
			if f.onResolveError != nil {
				f.onResolveError(f.namespace, ep, err)
			}
			continue
		}
		specs = append(specs, spec)
	}

	return specs, nil
}

// toPluginSpec code-loads one entry point and resolves the result.
func (f *MetadataFinder) toPluginSpec(ep entrypoint.EntryPoint) (*plugin.PluginSpec, error) {
	source, err := f.codeLoader.Resolve(ep.Value)
	if err != nil {
		return nil, err
	}

	spec, err := f.resolver.Resolve(source)
	if err != nil {
		return nil, err
	}
	if spec.Locator == "" {
		spec.Locator = ep.Value
	}
	return spec, nil
}
