// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package plugin

import (
	"log/slog"
	"sort"

	"github.com/plugspace/plugspace/pkg/loader"
)

// ModuleScanningFinder produces plugin specifications by enumerating every
// symbol of the given registry modules and attempting spec resolution on each
// one. Symbols that fail resolution are silently discarded: most registered
// symbols are not plugins, and that is expected. Used at build and index time
// where all candidate modules are known.
type ModuleScanningFinder struct {
	registry *loader.Registry
	modules  []string
	resolver *SpecResolver
}

var _ Finder = (*ModuleScanningFinder)(nil)

// NewModuleScanningFinder creates a finder over the given modules. An empty
// module list scans every module in the registry.
func NewModuleScanningFinder(registry *loader.Registry, modules ...string) *ModuleScanningFinder {
	return &ModuleScanningFinder{
		registry: registry,
		modules:  modules,
		resolver: NewSpecResolver(),
	}
}

// FindPlugins scans the configured modules and collects every symbol that
// resolves to a plugin specification. Specs carry the "module:symbol" locator
// of the symbol they came from.
func (f *ModuleScanningFinder) FindPlugins() ([]*PluginSpec, error) {
	modules := f.modules
	if len(modules) == 0 {
		modules = f.registry.Modules()
	}

	var specs []*PluginSpec
	for _, module := range modules {
		symbols := f.registry.Symbols(module)

		names := make([]string, 0, len(symbols))
		for name := range symbols {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			spec, err := f.resolver.Resolve(symbols[name])
			if err != nil {
				slog.Debug("symbol did not resolve to a plugin spec",
					"module", module,
					"symbol", name)
				continue
			}
			if spec.Locator == "" {
				spec.Locator = module + ":" + name
			}
			specs = append(specs, spec)
		}
	}

	return specs, nil
}
