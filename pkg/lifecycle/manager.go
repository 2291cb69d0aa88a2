// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

// Package lifecycle orchestrates plugin discovery, instantiation, and
// loading within one namespace.
//
// A plugin managed by a Manager moves through three states: resolved (its
// specification was produced by a finder and a container exists), initialized
// (the factory produced an instance), and loaded (the load routine completed).
// Two terminal side states exist: disabled, reachable by filter, by the
// plugin's own enablement check, or by a listener veto; and errored, captured
// per stage without escalating to a generic failure. Once loaded, a plugin
// stays loaded for the manager's lifetime.
package lifecycle

import (
	"context"
	"crypto/rand"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/plugspace/plugspace/pkg/entrypoint"
	"github.com/plugspace/plugspace/pkg/errutil"
	"github.com/plugspace/plugspace/pkg/plugin"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// newManagerID generates a ULID identifying one manager instance in logs.
func newManagerID() string {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Manager owns the plugins of one namespace, discovered by a Finder. The
// default finder resolves plugins from installed-distribution entry points.
//
// The plugin index is built lazily on first access and at most once; after
// that it is immutable apart from the state inside each container. Load is
// idempotent and thread-safe: concurrent loads of the same plugin result in
// exactly one factory and one load-routine invocation.
type Manager[P plugin.Plugin] struct {
	namespace string
	id        string
	loadArgs  []any
	listeners []plugin.LifecycleListener
	filters   []Filter
	finder    plugin.Finder
	log       *slog.Logger

	mu    sync.Mutex
	index map[string]*Container[P]
	order []string
}

// Option configures a Manager.
type Option[P plugin.Plugin] func(*Manager[P])

// WithLoadArgs sets the arguments forwarded verbatim to every managed
// plugin's load routine.
func WithLoadArgs[P plugin.Plugin](args ...any) Option[P] {
	return func(m *Manager[P]) { m.loadArgs = args }
}

// WithListeners attaches lifecycle listeners.
func WithListeners[P plugin.Plugin](listeners ...plugin.LifecycleListener) Option[P] {
	return func(m *Manager[P]) { m.listeners = append(m.listeners, listeners...) }
}

// WithFinder overrides the plugin finder.
func WithFinder[P plugin.Plugin](finder plugin.Finder) Option[P] {
	return func(m *Manager[P]) { m.finder = finder }
}

// WithFilters sets the plugin filters, replacing the default filter list.
func WithFilters[P plugin.Plugin](filters ...Filter) Option[P] {
	return func(m *Manager[P]) { m.filters = filters }
}

// NewManager creates a manager for the given namespace. Without options it
// uses a metadata finder over the process-wide entry point cache and a filter
// list containing only the process-wide default filter.
func NewManager[P plugin.Plugin](namespace string, opts ...Option[P]) *Manager[P] {
	m := &Manager[P]{
		namespace: namespace,
		id:        newManagerID(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.filters == nil {
		m.filters = []Filter{DefaultFilter()}
	}
	if m.finder == nil {
		m.finder = NewMetadataFinder(namespace, m.fireResolveError)
	}
	m.log = slog.With("namespace", namespace, "manager_id", m.id)
	return m
}

// Namespace returns the namespace this manager serves.
func (m *Manager[P]) Namespace() string { return m.namespace }

// AddListener attaches a lifecycle listener.
func (m *Manager[P]) AddListener(listener plugin.LifecycleListener) {
	m.listeners = append(m.listeners, listener)
}

// Load loads the plugin with the given name, passing the manager's configured
// load arguments. If any lifecycle stage failed, Load returns the respective
// error: the disabled error if the plugin is disabled, else the captured init
// or load error. Load is idempotent; once a plugin is loaded the same
// instance is returned without re-running filters, factory, enablement check,
// or load routine.
func (m *Manager[P]) Load(ctx context.Context, name string) (P, error) {
	var zero P

	c, err := m.requirePlugin(name)
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isDisabled {
		// Disabling is sticky: filters are not re-evaluated.
		return zero, &plugin.DisabledError{
			Namespace: c.spec.Namespace,
			Name:      name,
			Reason:    c.disabledReason,
		}
	}

	if !c.isLoaded {
		if err := m.loadPlugin(ctx, c); err != nil {
			if disabled := plugin.AsDisabled(err); disabled != nil {
				c.isDisabled = true
				c.disabledReason = disabled.Reason
			}
			return zero, err
		}
	}

	if c.initErr != nil {
		return zero, c.initErr
	}
	if c.loadErr != nil {
		return zero, c.loadErr
	}
	if !c.isLoaded {
		return zero, oops.In("lifecycle").
			Code(plugin.CodeDidNotLoad).
			With("namespace", m.namespace).
			With("plugin", name).
			New("plugin did not load correctly")
	}

	return c.plugin, nil
}

// LoadAll attempts to load every plugin in the namespace and returns those
// that loaded successfully. Disabled plugins are expected and logged quietly;
// other failures are logged and skipped unless propagateErrors is set, in
// which case the first failure aborts the whole operation.
func (m *Manager[P]) LoadAll(ctx context.Context, propagateErrors bool) ([]P, error) {
	index, order, err := m.plugins()
	if err != nil {
		return nil, err
	}

	var loaded []P
	for _, name := range order {
		c := index[name]

		c.mu.Lock()
		isLoaded, p := c.isLoaded, c.plugin
		c.mu.Unlock()
		if isLoaded {
			loaded = append(loaded, p)
			continue
		}

		p, err := m.Load(ctx, name)
		if err != nil {
			if plugin.AsDisabled(err) != nil {
				m.log.Debug("plugin is disabled", "plugin", name, "error", err)
				continue
			}
			if propagateErrors {
				return nil, err
			}
			errutil.LogError(m.log.With("plugin", name), "failed to load plugin", err)
			continue
		}
		loaded = append(loaded, p)
	}

	return loaded, nil
}

// ListPluginSpecs returns the specs of all known plugins in discovery order.
func (m *Manager[P]) ListPluginSpecs() ([]*plugin.PluginSpec, error) {
	index, order, err := m.plugins()
	if err != nil {
		return nil, err
	}
	specs := make([]*plugin.PluginSpec, 0, len(order))
	for _, name := range order {
		specs = append(specs, index[name].spec)
	}
	return specs, nil
}

// ListNames returns the names of all known plugins in discovery order.
func (m *Manager[P]) ListNames() ([]string, error) {
	_, order, err := m.plugins()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(order))
	copy(names, order)
	return names, nil
}

// ListContainers returns the containers of all known plugins in discovery
// order.
func (m *Manager[P]) ListContainers() ([]*Container[P], error) {
	index, order, err := m.plugins()
	if err != nil {
		return nil, err
	}
	containers := make([]*Container[P], 0, len(order))
	for _, name := range order {
		containers = append(containers, index[name])
	}
	return containers, nil
}

// GetContainer returns the container of the named plugin.
func (m *Manager[P]) GetContainer(name string) (*Container[P], error) {
	return m.requirePlugin(name)
}

// Exists reports whether a plugin with the given name is known.
func (m *Manager[P]) Exists(name string) (bool, error) {
	index, _, err := m.plugins()
	if err != nil {
		return false, err
	}
	_, ok := index[name]
	return ok, nil
}

// IsLoaded reports whether the named plugin reached the loaded state.
func (m *Manager[P]) IsLoaded(name string) (bool, error) {
	c, err := m.requirePlugin(name)
	if err != nil {
		return false, err
	}
	return c.IsLoaded(), nil
}

// plugins returns the lazily-built plugin index. A finder failure leaves the
// index unbuilt, so a later call retries.
func (m *Manager[P]) plugins() (map[string]*Container[P], []string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.index == nil {
		index, order, err := m.initPluginIndex()
		if err != nil {
			return nil, nil, err
		}
		m.index = index
		m.order = order
	}
	return m.index, m.order, nil
}

// initPluginIndex asks the finder for specs and wraps each one belonging to
// this namespace in a fresh container. Finders may return specs for other
// namespaces; those are discarded here.
func (m *Manager[P]) initPluginIndex() (map[string]*Container[P], []string, error) {
	specs, err := m.finder.FindPlugins()
	if err != nil {
		return nil, nil, err
	}

	index := make(map[string]*Container[P], len(specs))
	var order []string
	for _, spec := range specs {
		m.fireResolveAfter(spec)

		if spec.Namespace != m.namespace {
			continue
		}
		if _, ok := index[spec.Name]; !ok {
			order = append(order, spec.Name)
		}
		index[spec.Name] = newContainer[P](spec)
	}
	return index, order, nil
}

func (m *Manager[P]) requirePlugin(name string) (*Container[P], error) {
	index, _, err := m.plugins()
	if err != nil {
		return nil, err
	}

	c, ok := index[name]
	if !ok {
		return nil, oops.In("lifecycle").
			Code(plugin.CodeNotFound).
			With("namespace", m.namespace).
			With("plugin", name).
			New("no plugin named " + name + " in namespace " + m.namespace)
	}
	return c, nil
}

// loadPlugin runs one container through the lifecycle: filters, factory,
// enablement check, load routine, firing listener hooks at each step. The
// container's lock must be held. A returned error is always a disable
// signal; init and load failures are recorded on the container instead.
func (m *Manager[P]) loadPlugin(ctx context.Context, c *Container[P]) error {
	spec := c.spec

	for _, f := range m.filters {
		if f.Disables(spec) {
			return &plugin.DisabledError{
				Namespace: spec.Namespace,
				Name:      spec.Name,
				Reason:    "a plugin filter disabled this plugin before it was initialized",
			}
		}
	}

	if !c.isInit {
		m.log.Debug("instantiating plugin", "plugin", spec.Name)
		p, err := m.pluginFromSpec(spec)
		if err != nil {
			if plugin.AsDisabled(err) != nil {
				return err
			}
			m.log.Debug("error instantiating plugin", "plugin", spec.Name, "error", err)
			m.fireInitError(spec, err)
			c.initErr = err
			return nil
		}
		c.plugin = p
		c.isInit = true
		if veto := m.fireInitAfter(spec, p); veto != nil {
			return veto
		}
	}

	p := c.plugin

	if !p.ShouldLoad() {
		return &plugin.DisabledError{
			Namespace: spec.Namespace,
			Name:      spec.Name,
			Reason:    "load condition for plugin was false",
		}
	}

	args := m.loadArgs
	if veto := m.fireLoadBefore(spec, p, args); veto != nil {
		return veto
	}

	m.log.Debug("loading plugin", "plugin", spec.Name)
	result, err := p.Load(ctx, args...)
	if err != nil {
		if plugin.AsDisabled(err) != nil {
			return err
		}
		m.log.Debug("error loading plugin", "plugin", spec.Name, "error", err)
		m.fireLoadError(spec, p, err)
		c.loadErr = err
		return nil
	}

	m.fireLoadAfter(spec, p, result)
	c.loadValue = result
	c.isLoaded = true
	return nil
}

// pluginFromSpec invokes the factory and narrows the result to the manager's
// plugin type.
func (m *Manager[P]) pluginFromSpec(spec *plugin.PluginSpec) (P, error) {
	var zero P

	raw, err := spec.Factory()
	if err != nil {
		return zero, err
	}

	p, ok := raw.(P)
	if !ok {
		return zero, oops.In("lifecycle").
			Code("PLUGIN_TYPE_MISMATCH").
			With("namespace", spec.Namespace).
			With("plugin", spec.Name).
			New("factory produced a plugin of an unexpected type")
	}
	return p, nil
}

// Hook dispatch. Listener errors are contained here, with the exception of
// the disable signal: OnInitAfter and OnLoadBefore pass it through so the
// lifecycle can convert a veto into the disabled state.

func (m *Manager[P]) fireResolveAfter(spec *plugin.PluginSpec) {
	_ = plugin.Notify(m.listeners, "OnResolveAfter", func(l plugin.LifecycleListener) error {
		return l.OnResolveAfter(spec)
	})
}

func (m *Manager[P]) fireResolveError(namespace string, ep entrypoint.EntryPoint, err error) {
	_ = plugin.Notify(m.listeners, "OnResolveError", func(l plugin.LifecycleListener) error {
		return l.OnResolveError(namespace, ep, err)
	})
}

func (m *Manager[P]) fireInitAfter(spec *plugin.PluginSpec, p plugin.Plugin) error {
	return plugin.Notify(m.listeners, "OnInitAfter", func(l plugin.LifecycleListener) error {
		return l.OnInitAfter(spec, p)
	})
}

func (m *Manager[P]) fireInitError(spec *plugin.PluginSpec, err error) {
	_ = plugin.Notify(m.listeners, "OnInitError", func(l plugin.LifecycleListener) error {
		return l.OnInitError(spec, err)
	})
}

func (m *Manager[P]) fireLoadBefore(spec *plugin.PluginSpec, p plugin.Plugin, args []any) error {
	return plugin.Notify(m.listeners, "OnLoadBefore", func(l plugin.LifecycleListener) error {
		return l.OnLoadBefore(spec, p, args)
	})
}

func (m *Manager[P]) fireLoadAfter(spec *plugin.PluginSpec, p plugin.Plugin, result any) {
	_ = plugin.Notify(m.listeners, "OnLoadAfter", func(l plugin.LifecycleListener) error {
		return l.OnLoadAfter(spec, p, result)
	})
}

func (m *Manager[P]) fireLoadError(spec *plugin.PluginSpec, p plugin.Plugin, err error) {
	_ = plugin.Notify(m.listeners, "OnLoadError", func(l plugin.LifecycleListener) error {
		return l.OnLoadError(spec, p, err)
	})
}
