// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package plugin

import (
	"log/slog"

	"github.com/plugspace/plugspace/pkg/entrypoint"
)

// LifecycleListener reacts to plugin lifecycle transitions. Hooks return an
// error so a listener can veto a plugin: a DisabledError returned from
// OnInitAfter or OnLoadBefore propagates to the manager, which converts it
// into the disabled state. Every other returned error is logged and
// swallowed at the dispatch site.
//
// Embed BaseListener to only implement the hooks you need.
type LifecycleListener interface {
	// OnResolveAfter fires when a finder produced a spec.
	OnResolveAfter(spec *PluginSpec) error

	// OnResolveError fires when an entry point could not be resolved into a
	// spec during metadata-driven discovery.
	OnResolveError(namespace string, ep entrypoint.EntryPoint, err error) error

	// OnInitAfter fires after a factory produced a plugin instance.
	OnInitAfter(spec *PluginSpec, p Plugin) error

	// OnInitError fires when a factory invocation failed.
	OnInitError(spec *PluginSpec, err error) error

	// OnLoadBefore fires immediately before Load is invoked, with the
	// arguments about to be passed.
	OnLoadBefore(spec *PluginSpec, p Plugin, args []any) error

	// OnLoadAfter fires after Load returned, with its return value.
	OnLoadAfter(spec *PluginSpec, p Plugin, result any) error

	// OnLoadError fires when Load failed.
	OnLoadError(spec *PluginSpec, p Plugin, err error) error
}

// BaseListener implements LifecycleListener with no-ops.
type BaseListener struct{}

func (BaseListener) OnResolveAfter(*PluginSpec) error { return nil }

func (BaseListener) OnResolveError(string, entrypoint.EntryPoint, error) error { return nil }

func (BaseListener) OnInitAfter(*PluginSpec, Plugin) error { return nil }

func (BaseListener) OnInitError(*PluginSpec, error) error { return nil }

func (BaseListener) OnLoadBefore(*PluginSpec, Plugin, []any) error { return nil }

func (BaseListener) OnLoadAfter(*PluginSpec, Plugin, any) error { return nil }

func (BaseListener) OnLoadError(*PluginSpec, Plugin, error) error { return nil }

// Notify dispatches one hook call to every listener. Errors returned by a
// listener are logged and swallowed, keeping listeners isolated from each
// other, with one exception: the first DisabledError encountered is returned
// to the caller after the remaining listeners ran, because it is the veto
// signal the lifecycle algorithm must observe.
func Notify(listeners []LifecycleListener, hook string, call func(LifecycleListener) error) error {
	var veto error
	for _, listener := range listeners {
		err := call(listener)
		if err == nil {
			continue
		}
		if AsDisabled(err) != nil {
			if veto == nil {
				veto = err
			}
			continue
		}
		slog.Error("error while calling lifecycle listener",
			"hook", hook,
			"error", err)
	}
	return veto
}

// CompositeListener fans every hook out to an ordered list of delegates with
// the same fault isolation as Notify.
type CompositeListener struct {
	listeners []LifecycleListener
}

// NewCompositeListener creates a composite over the given delegates.
func NewCompositeListener(listeners ...LifecycleListener) *CompositeListener {
	return &CompositeListener{listeners: listeners}
}

// AddListener appends a delegate.
func (c *CompositeListener) AddListener(listener LifecycleListener) {
	c.listeners = append(c.listeners, listener)
}

func (c *CompositeListener) OnResolveAfter(spec *PluginSpec) error {
	return Notify(c.listeners, "OnResolveAfter", func(l LifecycleListener) error {
		return l.OnResolveAfter(spec)
	})
}

func (c *CompositeListener) OnResolveError(namespace string, ep entrypoint.EntryPoint, err error) error {
	return Notify(c.listeners, "OnResolveError", func(l LifecycleListener) error {
		return l.OnResolveError(namespace, ep, err)
	})
}

func (c *CompositeListener) OnInitAfter(spec *PluginSpec, p Plugin) error {
	return Notify(c.listeners, "OnInitAfter", func(l LifecycleListener) error {
		return l.OnInitAfter(spec, p)
	})
}

func (c *CompositeListener) OnInitError(spec *PluginSpec, err error) error {
	return Notify(c.listeners, "OnInitError", func(l LifecycleListener) error {
		return l.OnInitError(spec, err)
	})
}

func (c *CompositeListener) OnLoadBefore(spec *PluginSpec, p Plugin, args []any) error {
	return Notify(c.listeners, "OnLoadBefore", func(l LifecycleListener) error {
		return l.OnLoadBefore(spec, p, args)
	})
}

func (c *CompositeListener) OnLoadAfter(spec *PluginSpec, p Plugin, result any) error {
	return Notify(c.listeners, "OnLoadAfter", func(l LifecycleListener) error {
		return l.OnLoadAfter(spec, p, result)
	})
}

func (c *CompositeListener) OnLoadError(spec *PluginSpec, p Plugin, err error) error {
	return Notify(c.listeners, "OnLoadError", func(l LifecycleListener) error {
		return l.OnLoadError(spec, p, err)
	})
}
