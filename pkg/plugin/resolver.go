// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package plugin

import (
	"reflect"

	"github.com/samber/oops"
)

// SpecProvider is implemented by discovered objects that carry their own
// prebuilt specification, such as the function wrappers produced by
// FunctionPluginBuilder.
type SpecProvider interface {
	PluginSpec() *PluginSpec
}

// SpecResolver creates PluginSpec instances from discovered source objects.
//
// Exactly three source kinds are supported: an already-built spec (returned
// as-is), an object carrying a prebuilt spec via SpecProvider, and a Plugin
// value acting as a prototype for its own kind. Anything else is an
// unresolvable source; callers needing custom strategies must pre-resolve.
type SpecResolver struct{}

// NewSpecResolver creates a spec resolver.
func NewSpecResolver() *SpecResolver {
	return &SpecResolver{}
}

// Resolve tries to create a PluginSpec from the given source.
func (r *SpecResolver) Resolve(source any) (*PluginSpec, error) {
	switch src := source.(type) {
	case *PluginSpec:
		return src, nil
	case PluginSpec:
		return &src, nil
	case SpecProvider:
		// Checked before Plugin: wrappers like FunctionPlugin satisfy both,
		// and the attached spec holds the factory that builds fresh
		// instances.
		if spec := src.PluginSpec(); spec != nil {
			return spec, nil
		}
		return nil, oops.In("plugin").
			Code(CodeUnresolvableSource).
			New("source provides a nil plugin spec")
	case Plugin:
		return &PluginSpec{
			Namespace: src.Namespace(),
			Name:      src.Name(),
			Factory:   prototypeFactory(src),
		}, nil
	default:
		return nil, oops.In("plugin").
			Code(CodeUnresolvableSource).
			With("source_type", reflect.TypeOf(source)).
			New("cannot resolve plugin specification from source")
	}
}

// prototypeFactory builds a factory from a Plugin value. For pointer-to-struct
// plugins the factory constructs a fresh zero value of the same concrete type
// per invocation, so separate managers get separate instances. Other shapes
// fall back to reusing the prototype itself.
func prototypeFactory(prototype Plugin) Factory {
	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		elem := t.Elem()
		return func() (Plugin, error) {
			return reflect.New(elem).Interface().(Plugin), nil
		}
	}
	return func() (Plugin, error) {
		return prototype, nil
	}
}
