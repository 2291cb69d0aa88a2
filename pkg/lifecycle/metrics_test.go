// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package lifecycle_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugspace/plugspace/pkg/lifecycle"
	"github.com/plugspace/plugspace/pkg/plugin"
)

func TestMetricsListener_MetricsRegistered(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	listener := lifecycle.NewMetricsListener(reg)

	// Touch one counter per vector so Gather reports the families.
	require.NoError(t, listener.OnResolveAfter(specWithLocator("ns", "p", "")))
	require.NoError(t, listener.OnInitError(specWithLocator("ns", "p", ""), errors.New("x")))
	require.NoError(t, listener.OnLoadAfter(specWithLocator("ns", "p", ""), nil, nil))
	require.NoError(t, listener.OnLoadError(specWithLocator("ns", "p", ""), nil, errors.New("x")))

	families, err := reg.Gather()
	require.NoError(t, err)

	registered := make(map[string]bool)
	for _, family := range families {
		registered[family.GetName()] = true
	}

	expectedMetrics := []string{
		"plugspace_plugins_resolved_total",
		"plugspace_plugin_init_failures_total",
		"plugspace_plugins_loaded_total",
		"plugspace_plugin_load_failures_total",
	}
	for _, name := range expectedMetrics {
		assert.True(t, registered[name], "metric %q should be registered", name)
	}
}

func TestMetricsListener_CountsManagerLifecycle(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	listener := lifecycle.NewMetricsListener(reg)

	good := newCountingPlugin("app.providers", "good")
	failing := newCountingPlugin("app.providers", "failing")
	failing.loadErr = errors.New("load boom")

	m := lifecycle.NewManager[plugin.Plugin]("app.providers",
		lifecycle.WithFinder[plugin.Plugin](&staticFinder{specs: []*plugin.PluginSpec{
			countingSpec(good, nil),
			countingSpec(failing, nil),
		}}),
		lifecycle.WithListeners[plugin.Plugin](listener),
	)

	_, err := m.LoadAll(context.Background(), false)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg,
		"plugspace_plugins_resolved_total",
		"plugspace_plugins_loaded_total",
		"plugspace_plugin_load_failures_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
