// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

// Package plugin defines the plugin contract and its supporting data model.
//
// A plugin is identified by a (namespace, name) pair, where the namespace is
// an extension point declared by the hosting application. The package
// provides the specification record (PluginSpec), spec resolution from
// discovered objects, lifecycle listeners, the function-plugin adapter, and
// the finder abstraction that produces specifications from some source.
// Lifecycle orchestration lives in package lifecycle.
package plugin

import "context"

// Plugin is the contract every plugin implements. A plugin's purpose is to be
// discovered and instantiated at runtime while deferring expensive work into
// Load. Identity is fixed at construction and never changes.
//
// A Plugin and the manager loading it have an informal contract about the
// load arguments: the manager forwards its configured arguments verbatim, and
// concrete plugin families agree with their manager on what those are.
type Plugin interface {
	// Namespace returns the extension point this plugin belongs to.
	Namespace() string

	// Name returns the plugin name, unique within its namespace.
	Name() string

	// ShouldLoad reports whether the plugin wants to be loaded. Returning
	// false moves the plugin to the disabled state.
	ShouldLoad() bool

	// Load is called once by a manager when the plugin is loaded. The return
	// value is retained on the plugin's container.
	Load(ctx context.Context, args ...any) (any, error)
}

// Factory produces a plugin instance. Factories take no arguments; anything a
// plugin needs at construction time must be captured when the factory is
// built.
type Factory func() (Plugin, error)

// Finder produces plugin specifications from some source, either by scanning
// registered code modules at build time or by resolving entry points from
// installed-distribution metadata at run time.
type Finder interface {
	FindPlugins() ([]*PluginSpec, error)
}
