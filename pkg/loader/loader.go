// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

// Package loader provides the code-loading capability that turns a locator
// string into a loaded code object.
//
// The rest of the framework treats code loading as an injected black box: a
// locator goes in, an object or an error comes out. The default
// implementation is Registry, an in-process symbol table that Go code
// populates at initialization time, since Go has no dynamic import.
package loader

import (
	"sort"
	"strings"
	"sync"

	"github.com/samber/oops"
)

// CodeLoader resolves a locator string into a code object. Implementations
// must be safe for concurrent use. Resolution is synchronous and may fail;
// callers must treat the returned object as opaque until spec resolution.
type CodeLoader interface {
	Resolve(locator string) (any, error)
}

// Registry is a code loader backed by an in-process symbol table. Locators
// have the form "module:symbol", where module is a dotted path chosen by the
// registering package.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]map[string]any
}

// NewRegistry creates an empty symbol registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]map[string]any),
	}
}

// Register adds a symbol to the registry. Registering the same
// (module, symbol) pair twice is an error: symbols are identities, not
// slots to overwrite.
func (r *Registry) Register(module, symbol string, value any) error {
	if module == "" || symbol == "" {
		return oops.In("loader").
			Code("INVALID_SYMBOL").
			With("module", module).
			With("symbol", symbol).
			New("module and symbol cannot be empty")
	}
	if strings.ContainsAny(module, ":") || strings.ContainsAny(symbol, ":") {
		return oops.In("loader").
			Code("INVALID_SYMBOL").
			With("module", module).
			With("symbol", symbol).
			New("module and symbol cannot contain ':'")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.modules[module][symbol]; ok {
		return oops.In("loader").
			Code("DUPLICATE_SYMBOL").
			With("module", module).
			With("symbol", symbol).
			New("symbol is already registered")
	}
	if r.modules[module] == nil {
		r.modules[module] = make(map[string]any)
	}
	r.modules[module][symbol] = value
	return nil
}

// MustRegister is like Register but panics on error. Intended for package
// initialization where a failure is a programming error.
func (r *Registry) MustRegister(module, symbol string, value any) {
	if err := r.Register(module, symbol, value); err != nil {
		panic(err)
	}
}

// Resolve implements CodeLoader. The locator must have the form
// "module:symbol".
func (r *Registry) Resolve(locator string) (any, error) {
	module, symbol, ok := strings.Cut(locator, ":")
	if !ok || module == "" || symbol == "" {
		return nil, oops.In("loader").
			Code("INVALID_LOCATOR").
			With("locator", locator).
			New("locator is not of the form module:symbol")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.modules[module][symbol]
	if !ok {
		return nil, oops.In("loader").
			Code("SYMBOL_NOT_FOUND").
			With("locator", locator).
			New("no such symbol registered")
	}
	return value, nil
}

// Modules returns the registered module names in sorted order.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Symbols returns a copy of the symbol table for a module. The result is nil
// for unknown modules.
func (r *Registry) Symbols(module string) map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	symbols, ok := r.modules[module]
	if !ok {
		return nil
	}
	result := make(map[string]any, len(symbols))
	for name, value := range symbols {
		result[name] = value
	}
	return result
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry, lazily created on first access.
// It exists for registration ergonomics at package init time; components that
// resolve code accept a CodeLoader via their constructors instead of reaching
// for this.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}
