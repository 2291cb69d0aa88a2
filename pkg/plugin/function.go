// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package plugin

import "context"

// Func is the invocable payload of a function plugin.
type Func func(ctx context.Context, args ...any) (any, error)

// FunctionPlugin exposes a plain function as a Plugin. The wrapper is itself
// callable through Call, so code can register a function as a plugin and
// still invoke it directly in tests without going through a manager.
type FunctionPlugin struct {
	namespace  string
	name       string
	fn         Func
	shouldLoad func() bool
	loadFn     Func
	spec       *PluginSpec
}

var _ Plugin = (*FunctionPlugin)(nil)
var _ SpecProvider = (*FunctionPlugin)(nil)

// Namespace returns the namespace the function was registered under.
func (p *FunctionPlugin) Namespace() string { return p.namespace }

// Name returns the plugin name.
func (p *FunctionPlugin) Name() string { return p.name }

// ShouldLoad evaluates the configured enablement predicate, defaulting to
// always enabled.
func (p *FunctionPlugin) ShouldLoad() bool {
	if p.shouldLoad != nil {
		return p.shouldLoad()
	}
	return true
}

// Load delegates to the custom load routine if one was configured, otherwise
// it is a no-op.
func (p *FunctionPlugin) Load(ctx context.Context, args ...any) (any, error) {
	if p.loadFn != nil {
		return p.loadFn(ctx, args...)
	}
	return nil, nil
}

// Call forwards to the wrapped function.
func (p *FunctionPlugin) Call(ctx context.Context, args ...any) (any, error) {
	return p.fn(ctx, args...)
}

// PluginSpec returns the specification attached by the builder, making the
// wrapper resolvable by a SpecResolver.
func (p *FunctionPlugin) PluginSpec() *PluginSpec { return p.spec }
