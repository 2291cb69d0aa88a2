// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package lifecycle

import (
	"sync"

	"github.com/plugspace/plugspace/pkg/metadata"
	"github.com/plugspace/plugspace/pkg/plugin"
)

// Container tracks the runtime state of one plugin inside a manager. State
// transitions are monotonic: a container never un-initializes, un-loads, or
// re-enables. All mutation happens under the container's own lock, held by
// the manager while it runs the plugin through the lifecycle; concurrent
// loads of the same plugin serialize on it while loads of different plugins
// proceed in parallel.
type Container[P plugin.Plugin] struct {
	mu sync.Mutex

	spec *plugin.PluginSpec

	plugin    P
	loadValue any

	isInit   bool
	isLoaded bool

	initErr error
	loadErr error

	isDisabled     bool
	disabledReason string
}

func newContainer[P plugin.Plugin](spec *plugin.PluginSpec) *Container[P] {
	return &Container[P]{spec: spec}
}

// Spec returns the plugin specification. Specs are immutable once handed to
// a manager.
func (c *Container[P]) Spec() *plugin.PluginSpec { return c.spec }

// Name returns the plugin name.
func (c *Container[P]) Name() string { return c.spec.Name }

// Plugin returns the instantiated plugin, or the zero value before
// initialization succeeded.
func (c *Container[P]) Plugin() P {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plugin
}

// LoadValue returns the load routine's return value, if any.
func (c *Container[P]) LoadValue() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadValue
}

// IsInit reports whether the factory was invoked successfully.
func (c *Container[P]) IsInit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isInit
}

// IsLoaded reports whether the load routine completed successfully.
func (c *Container[P]) IsLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isLoaded
}

// IsDisabled reports whether the plugin was disabled.
func (c *Container[P]) IsDisabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isDisabled
}

// DisabledReason returns the recorded reason when the plugin is disabled.
func (c *Container[P]) DisabledReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disabledReason
}

// InitError returns the captured factory error, if any.
func (c *Container[P]) InitError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErr
}

// LoadError returns the captured load routine error, if any.
func (c *Container[P]) LoadError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

// Distribution resolves the installed distribution this plugin comes from,
// using metadata reachable from the given search path.
func (c *Container[P]) Distribution(paths []string) (*metadata.Distribution, error) {
	return metadata.ResolveDistribution(c.spec, paths)
}
