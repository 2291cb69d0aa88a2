// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package lua

import (
	"context"
	"os"
	"strings"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/plugspace/plugspace/pkg/plugin"
)

// Script globals read by the loader. A plugin script must define namespace
// and name, and exposes its payload through run. The on_load hook and the
// should_load predicate are optional.
const (
	globalNamespace  = "namespace"
	globalName       = "name"
	globalRun        = "run"
	globalOnLoad     = "on_load"
	globalShouldLoad = "should_load"
)

// Loader resolves locators that point at Lua script files. Each script is a
// self-describing plugin: the loader executes it once in a throwaway
// sandboxed state to read its identity, then hands back a PluginSpec whose
// factory runs the script in a fresh state per plugin instance. States are
// never shared between instances or invocations.
type Loader struct {
	factory *stateFactory
}

// NewLoader creates a loader for Lua script plugins.
func NewLoader() *Loader {
	return &Loader{factory: newStateFactory()}
}

// Resolve implements loader.CodeLoader for locators ending in ".lua". The
// locator is the script's path on disk.
func (l *Loader) Resolve(locator string) (any, error) {
	if !strings.HasSuffix(locator, ".lua") {
		return nil, oops.In("lua").
			Code("INVALID_LOCATOR").
			With("locator", locator).
			New("locator does not point at a lua script")
	}

	code, err := os.ReadFile(locator)
	if err != nil {
		return nil, oops.In("lua").
			Code("SCRIPT_NOT_FOUND").
			With("locator", locator).
			Wrapf(err, "failed to read plugin script")
	}

	script, err := l.inspect(locator, string(code))
	if err != nil {
		return nil, err
	}

	builder := plugin.NewFunctionPluginBuilder(script.namespace)
	opts := []plugin.FunctionOption{plugin.WithName(script.name)}
	if script.hasShouldLoad {
		opts = append(opts, plugin.WithShouldLoad(script.shouldLoad))
	}
	if script.hasOnLoad {
		opts = append(opts, plugin.WithLoadFunc(script.onLoad))
	}
	_, spec := builder.Register(script.run, opts...)
	spec.Locator = locator
	return spec, nil
}

// luaScript is the validated description of one plugin script.
type luaScript struct {
	loader        *Loader
	path          string
	source        string
	namespace     string
	name          string
	hasShouldLoad bool
	hasOnLoad     bool
}

// inspect executes the script once in a sandboxed state and reads its
// identity globals. Scripts that fail to run or lack an identity are
// rejected here, before a spec ever reaches a manager.
func (l *Loader) inspect(path, source string) (*luaScript, error) {
	L, err := l.factory.newState()
	if err != nil {
		return nil, oops.In("lua").
			Code("STATE_ERROR").
			With("path", path).
			Wrapf(err, "failed to create lua state")
	}
	defer L.Close()

	if err := L.DoString(source); err != nil {
		return nil, oops.In("lua").
			Code("SCRIPT_ERROR").
			With("path", path).
			Wrapf(err, "plugin script failed to execute")
	}

	namespace, ok := L.GetGlobal(globalNamespace).(lua.LString)
	if !ok || namespace == "" {
		return nil, oops.In("lua").
			Code("INVALID_SCRIPT").
			With("path", path).
			New("plugin script does not define a namespace")
	}
	name, ok := L.GetGlobal(globalName).(lua.LString)
	if !ok || name == "" {
		return nil, oops.In("lua").
			Code("INVALID_SCRIPT").
			With("path", path).
			New("plugin script does not define a name")
	}
	if _, ok := L.GetGlobal(globalRun).(*lua.LFunction); !ok {
		return nil, oops.In("lua").
			Code("INVALID_SCRIPT").
			With("path", path).
			New("plugin script does not define a run function")
	}

	shouldLoad := L.GetGlobal(globalShouldLoad)
	_, hasOnLoad := L.GetGlobal(globalOnLoad).(*lua.LFunction)

	return &luaScript{
		loader:        l,
		path:          path,
		source:        source,
		namespace:     string(namespace),
		name:          string(name),
		hasShouldLoad: shouldLoad != lua.LNil,
		hasOnLoad:     hasOnLoad,
	}, nil
}

// run invokes the script's run function in a fresh state.
func (s *luaScript) run(ctx context.Context, args ...any) (any, error) {
	return s.call(ctx, globalRun, args...)
}

// onLoad invokes the script's on_load hook in a fresh state.
func (s *luaScript) onLoad(ctx context.Context, args ...any) (any, error) {
	return s.call(ctx, globalOnLoad, args...)
}

// shouldLoad evaluates the script's should_load global, which may be a plain
// boolean or a zero-argument function. Evaluation failures disable the
// plugin rather than aborting the collective load.
func (s *luaScript) shouldLoad() bool {
	L, err := s.newState(context.Background())
	if err != nil {
		return false
	}
	defer L.Close()

	value := L.GetGlobal(globalShouldLoad)
	if fn, ok := value.(*lua.LFunction); ok {
		if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
			return false
		}
		value = L.Get(-1)
		L.Pop(1)
	}
	return lua.LVAsBool(value)
}

// call runs one of the script's global functions in a fresh state.
func (s *luaScript) call(ctx context.Context, fn string, args ...any) (any, error) {
	L, err := s.newState(ctx)
	if err != nil {
		return nil, err
	}
	defer L.Close()

	target, ok := L.GetGlobal(fn).(*lua.LFunction)
	if !ok {
		return nil, oops.In("lua").
			Code("INVALID_SCRIPT").
			With("path", s.path).
			With("function", fn).
			New("plugin script does not define the function")
	}

	params := make([]lua.LValue, len(args))
	for i, arg := range args {
		params[i] = toLuaValue(L, arg)
	}
	if err := L.CallByParam(lua.P{Fn: target, NRet: 1, Protect: true}, params...); err != nil {
		return nil, oops.In("lua").
			Code("SCRIPT_ERROR").
			With("path", s.path).
			With("function", fn).
			Wrapf(err, "plugin script call failed")
	}
	result := L.Get(-1)
	L.Pop(1)
	return fromLuaValue(result), nil
}

// newState builds a fresh sandboxed state with the script already executed.
func (s *luaScript) newState(ctx context.Context) (*lua.LState, error) {
	L, err := s.loader.factory.newState()
	if err != nil {
		return nil, oops.In("lua").
			Code("STATE_ERROR").
			With("path", s.path).
			Wrapf(err, "failed to create lua state")
	}
	L.SetContext(ctx)
	if err := L.DoString(s.source); err != nil {
		L.Close()
		return nil, oops.In("lua").
			Code("SCRIPT_ERROR").
			With("path", s.path).
			Wrapf(err, "plugin script failed to execute")
	}
	return L, nil
}

// toLuaValue converts a Go value into a Lua value. Unrepresentable values
// degrade to nil rather than panicking inside the VM.
func toLuaValue(L *lua.LState, value any) lua.LValue {
	switch v := value.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case string:
		return lua.LString(v)
	case int:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case []any:
		tbl := L.NewTable()
		for _, item := range v {
			tbl.Append(toLuaValue(L, item))
		}
		return tbl
	case map[string]any:
		tbl := L.NewTable()
		for key, item := range v {
			tbl.RawSetString(key, toLuaValue(L, item))
		}
		return tbl
	default:
		return lua.LNil
	}
}

// fromLuaValue converts a Lua value back into a plain Go value. Tables with
// only sequential integer keys become slices, any other table a map.
func fromLuaValue(value lua.LValue) any {
	switch v := value.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LString:
		return string(v)
	case lua.LNumber:
		return float64(v)
	case *lua.LTable:
		if length := v.Len(); length > 0 {
			items := make([]any, 0, length)
			v.ForEach(func(_, item lua.LValue) {
				items = append(items, fromLuaValue(item))
			})
			return items
		}
		result := make(map[string]any)
		v.ForEach(func(key, item lua.LValue) {
			result[key.String()] = fromLuaValue(item)
		})
		return result
	default:
		return v.String()
	}
}
