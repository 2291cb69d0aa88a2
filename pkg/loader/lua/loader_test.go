// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package lua_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pluginlua "github.com/plugspace/plugspace/pkg/loader/lua"
	"github.com/plugspace/plugspace/pkg/plugin"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plugin.lua")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Resolve(t *testing.T) {
	path := writeScript(t, `
namespace = "app.greeters"
name = "hello"

function run(who)
  return "hello " .. who
end
`)

	l := pluginlua.NewLoader()
	source, err := l.Resolve(path)
	require.NoError(t, err)

	spec, ok := source.(*plugin.PluginSpec)
	require.True(t, ok)
	assert.Equal(t, "app.greeters", spec.Namespace)
	assert.Equal(t, "hello", spec.Name)
	assert.Equal(t, path, spec.Locator)

	p, err := spec.Factory()
	require.NoError(t, err)

	fn, ok := p.(*plugin.FunctionPlugin)
	require.True(t, ok)
	assert.True(t, fn.ShouldLoad())

	result, err := fn.Call(context.Background(), "world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", result)
}

func TestLoader_Resolve_FreshStatePerCall(t *testing.T) {
	// Each invocation runs in its own state, so script-level variables do
	// not accumulate between calls.
	path := writeScript(t, `
namespace = "app.counters"
name = "count"
calls = 0

function run()
  calls = calls + 1
  return calls
end
`)

	l := pluginlua.NewLoader()
	source, err := l.Resolve(path)
	require.NoError(t, err)

	spec := source.(*plugin.PluginSpec)
	p, err := spec.Factory()
	require.NoError(t, err)
	fn := p.(*plugin.FunctionPlugin)

	for range 3 {
		result, err := fn.Call(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, float64(1), result)
	}
}

func TestLoader_Resolve_ShouldLoadAndOnLoad(t *testing.T) {
	path := writeScript(t, `
namespace = "app.greeters"
name = "gated"

function should_load()
  return false
end

function on_load()
  return "loaded"
end

function run()
  return nil
end
`)

	l := pluginlua.NewLoader()
	source, err := l.Resolve(path)
	require.NoError(t, err)

	spec := source.(*plugin.PluginSpec)
	p, err := spec.Factory()
	require.NoError(t, err)

	assert.False(t, p.ShouldLoad())

	result, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "loaded", result)
}

func TestLoader_Resolve_NotLua(t *testing.T) {
	l := pluginlua.NewLoader()
	_, err := l.Resolve("app/services:SqsProvider")
	require.Error(t, err)
}

func TestLoader_Resolve_MissingFile(t *testing.T) {
	l := pluginlua.NewLoader()
	_, err := l.Resolve(filepath.Join(t.TempDir(), "missing.lua"))
	require.Error(t, err)
}

func TestLoader_Resolve_MissingIdentity(t *testing.T) {
	path := writeScript(t, `
function run()
  return nil
end
`)

	l := pluginlua.NewLoader()
	_, err := l.Resolve(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "namespace")
}

func TestLoader_Resolve_MissingRun(t *testing.T) {
	path := writeScript(t, `
namespace = "app.greeters"
name = "broken"
`)

	l := pluginlua.NewLoader()
	_, err := l.Resolve(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run")
}

func TestLoader_Resolve_SandboxBlocksFilesystem(t *testing.T) {
	path := writeScript(t, `
namespace = "app.greeters"
name = "escape"

function run()
  return type(dofile)
end
`)

	l := pluginlua.NewLoader()
	source, err := l.Resolve(path)
	require.NoError(t, err)

	spec := source.(*plugin.PluginSpec)
	p, err := spec.Factory()
	require.NoError(t, err)
	fn := p.(*plugin.FunctionPlugin)

	result, err := fn.Call(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "nil", result)
}

func TestLoader_Resolve_ScriptError(t *testing.T) {
	path := writeScript(t, `error("boom")`)

	l := pluginlua.NewLoader()
	_, err := l.Resolve(path)
	require.Error(t, err)
}
