// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package plugin

import (
	"fmt"
	"reflect"

	"github.com/samber/oops"

	"github.com/plugspace/plugspace/pkg/entrypoint"
)

// PluginSpec describes a plugin through its namespace and its unique name
// within that namespace, and holds the factory that can instantiate it.
//
// Locator is the serializable code-location identity of the factory in the
// form "module:symbol". It is set by discovery (from the entry point that
// produced the spec) or by the function-plugin builder when a registry is
// configured. Specs built around anonymous factories have no locator and
// cannot be serialized back into entry points; this is a deliberate
// limitation of the design.
type PluginSpec struct {
	Namespace string
	Name      string
	Factory   Factory
	Locator   string
}

// NewSpec creates a plugin specification.
func NewSpec(namespace, name string, factory Factory) *PluginSpec {
	return &PluginSpec{
		Namespace: namespace,
		Name:      name,
		Factory:   factory,
	}
}

func (s *PluginSpec) String() string {
	locator := s.Locator
	if locator == "" {
		locator = "<anonymous>"
	}
	return fmt.Sprintf("PluginSpec(%s.%s = %s)", s.Namespace, s.Name, locator)
}

// Equal reports structural equality: namespace, name, and factory identity.
func (s *PluginSpec) Equal(other *PluginSpec) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Namespace == other.Namespace &&
		s.Name == other.Name &&
		reflect.ValueOf(s.Factory).Pointer() == reflect.ValueOf(other.Factory).Pointer()
}

// EntryPoint derives the serializable entry point for this spec. The spec
// must carry a locator; factories that are not reachable as a registered
// symbol cannot be serialized.
func (s *PluginSpec) EntryPoint() (entrypoint.EntryPoint, error) {
	if s.Locator == "" {
		return entrypoint.EntryPoint{}, oops.In("plugin").
			Code(CodeSpecNotSerializable).
			With("namespace", s.Namespace).
			With("name", s.Name).
			New("spec has no locator; anonymous factories cannot be serialized")
	}
	return entrypoint.EntryPoint{
		Name:  s.Name,
		Value: s.Locator,
		Group: s.Namespace,
	}, nil
}

// DiscoverEntryPoints runs a finder and converts every spec it produces into
// the entry point mapping consumed by packaging tooling. Duplicate names
// within a namespace are an error.
func DiscoverEntryPoints(finder Finder) (entrypoint.Mapping, error) {
	specs, err := finder.FindPlugins()
	if err != nil {
		return nil, err
	}

	eps := make([]entrypoint.EntryPoint, 0, len(specs))
	for _, spec := range specs {
		ep, err := spec.EntryPoint()
		if err != nil {
			return nil, err
		}
		eps = append(eps, ep)
	}

	return entrypoint.ToMapping(eps)
}
