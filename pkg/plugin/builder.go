// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package plugin

import (
	"reflect"
	"runtime"
	"strings"

	"github.com/plugspace/plugspace/pkg/loader"
)

// FunctionPluginBuilder registers plain functions as discoverable plugins
// within one namespace. For every registered function it produces both a
// callable FunctionPlugin wrapper and a serializable PluginSpec whose factory
// builds a fresh wrapper per invocation.
//
// When a symbol registry is configured, the wrapper is additionally
// registered under "module:name" so metadata-driven discovery can code-load
// it, and the spec carries that locator. Callers register their functions
// with the builder explicitly at package initialization time.
type FunctionPluginBuilder struct {
	namespace string
	registry  *loader.Registry
	module    string
}

// BuilderOption configures a FunctionPluginBuilder.
type BuilderOption func(*FunctionPluginBuilder)

// WithRegistry makes registered functions discoverable through the given
// symbol registry under the given module path.
func WithRegistry(registry *loader.Registry, module string) BuilderOption {
	return func(b *FunctionPluginBuilder) {
		b.registry = registry
		b.module = module
	}
}

// NewFunctionPluginBuilder creates a builder for the given namespace.
func NewFunctionPluginBuilder(namespace string, opts ...BuilderOption) *FunctionPluginBuilder {
	b := &FunctionPluginBuilder{namespace: namespace}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// functionConfig collects per-function options.
type functionConfig struct {
	name       string
	shouldLoad func() bool
	loadFn     Func
}

// FunctionOption configures a single registered function.
type FunctionOption func(*functionConfig)

// WithName overrides the plugin name. By default the function's own symbol
// name is used.
func WithName(name string) FunctionOption {
	return func(c *functionConfig) { c.name = name }
}

// WithShouldLoad sets the enablement predicate.
func WithShouldLoad(predicate func() bool) FunctionOption {
	return func(c *functionConfig) { c.shouldLoad = predicate }
}

// WithEnabled sets the enablement check to a literal value.
func WithEnabled(enabled bool) FunctionOption {
	return func(c *functionConfig) {
		c.shouldLoad = func() bool { return enabled }
	}
}

// WithLoadFunc sets a custom load routine.
func WithLoadFunc(load Func) FunctionOption {
	return func(c *functionConfig) { c.loadFn = load }
}

// Register wraps fn as a plugin. It returns the directly-callable wrapper and
// the specification handed to managers or serialized into entry points.
func (b *FunctionPluginBuilder) Register(fn Func, opts ...FunctionOption) (*FunctionPlugin, *PluginSpec) {
	cfg := &functionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.name == "" {
		cfg.name = functionName(fn)
	}

	spec := &PluginSpec{
		Namespace: b.namespace,
		Name:      cfg.name,
	}
	spec.Factory = func() (Plugin, error) {
		return &FunctionPlugin{
			namespace:  b.namespace,
			name:       cfg.name,
			fn:         fn,
			shouldLoad: cfg.shouldLoad,
			loadFn:     cfg.loadFn,
			spec:       spec,
		}, nil
	}

	wrapper := &FunctionPlugin{
		namespace:  b.namespace,
		name:       cfg.name,
		fn:         fn,
		shouldLoad: cfg.shouldLoad,
		loadFn:     cfg.loadFn,
		spec:       spec,
	}

	if b.registry != nil {
		spec.Locator = b.module + ":" + cfg.name
		b.registry.MustRegister(b.module, cfg.name, wrapper)
	}

	return wrapper, spec
}

// functionName derives a default plugin name from the function's symbol name.
func functionName(fn Func) string {
	full := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	name := full[strings.LastIndex(full, ".")+1:]
	// Method values carry a -fm suffix.
	return strings.TrimSuffix(name, "-fm")
}
