// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package lifecycle

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/plugspace/plugspace/pkg/entrypoint"
	"github.com/plugspace/plugspace/pkg/plugin"
)

// MetricsListener is a lifecycle listener exporting Prometheus counters for
// plugin lifecycle transitions, labeled by namespace.
type MetricsListener struct {
	plugin.BaseListener

	resolved       *prometheus.CounterVec
	resolveFailure *prometheus.CounterVec
	initFailure    *prometheus.CounterVec
	loaded         *prometheus.CounterVec
	loadFailure    *prometheus.CounterVec
}

var _ plugin.LifecycleListener = (*MetricsListener)(nil)

// NewMetricsListener creates the listener and registers its collectors with
// reg.
func NewMetricsListener(reg prometheus.Registerer) *MetricsListener {
	l := &MetricsListener{
		resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plugspace_plugins_resolved_total",
			Help: "Total number of plugin specs resolved by namespace",
		}, []string{"namespace"}),
		resolveFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plugspace_plugin_resolve_failures_total",
			Help: "Total number of entry points that failed spec resolution by namespace",
		}, []string{"namespace"}),
		initFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plugspace_plugin_init_failures_total",
			Help: "Total number of plugin factory failures by namespace",
		}, []string{"namespace"}),
		loaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plugspace_plugins_loaded_total",
			Help: "Total number of plugins loaded by namespace",
		}, []string{"namespace"}),
		loadFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plugspace_plugin_load_failures_total",
			Help: "Total number of plugin load failures by namespace",
		}, []string{"namespace"}),
	}
	reg.MustRegister(l.resolved, l.resolveFailure, l.initFailure, l.loaded, l.loadFailure)
	return l
}

func (l *MetricsListener) OnResolveAfter(spec *plugin.PluginSpec) error {
	l.resolved.WithLabelValues(spec.Namespace).Inc()
	return nil
}

func (l *MetricsListener) OnResolveError(namespace string, _ entrypoint.EntryPoint, _ error) error {
	l.resolveFailure.WithLabelValues(namespace).Inc()
	return nil
}

func (l *MetricsListener) OnInitError(spec *plugin.PluginSpec, _ error) error {
	l.initFailure.WithLabelValues(spec.Namespace).Inc()
	return nil
}

func (l *MetricsListener) OnLoadAfter(spec *plugin.PluginSpec, _ plugin.Plugin, _ any) error {
	l.loaded.WithLabelValues(spec.Namespace).Inc()
	return nil
}

func (l *MetricsListener) OnLoadError(spec *plugin.PluginSpec, _ plugin.Plugin, _ error) error {
	l.loadFailure.WithLabelValues(spec.Namespace).Inc()
	return nil
}
