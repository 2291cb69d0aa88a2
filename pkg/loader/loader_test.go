// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package loader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugspace/plugspace/pkg/loader"
)

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := loader.NewRegistry()
	require.NoError(t, r.Register("app/services", "SqsProvider", "the-provider"))

	value, err := r.Resolve("app/services:SqsProvider")
	require.NoError(t, err)
	assert.Equal(t, "the-provider", value)
}

func TestRegistry_DuplicateSymbol(t *testing.T) {
	r := loader.NewRegistry()
	require.NoError(t, r.Register("app/services", "SqsProvider", 1))

	err := r.Register("app/services", "SqsProvider", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_InvalidSymbol(t *testing.T) {
	r := loader.NewRegistry()

	assert.Error(t, r.Register("", "symbol", 1))
	assert.Error(t, r.Register("module", "", 1))
	assert.Error(t, r.Register("mod:ule", "symbol", 1))
	assert.Error(t, r.Register("module", "sym:bol", 1))
}

func TestRegistry_Resolve_InvalidLocator(t *testing.T) {
	r := loader.NewRegistry()

	_, err := r.Resolve("no-separator")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module:symbol")
}

func TestRegistry_Resolve_NotFound(t *testing.T) {
	r := loader.NewRegistry()

	_, err := r.Resolve("app/services:Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such symbol")
}

func TestRegistry_MustRegister_Panics(t *testing.T) {
	r := loader.NewRegistry()
	r.MustRegister("app/services", "SqsProvider", 1)

	assert.Panics(t, func() {
		r.MustRegister("app/services", "SqsProvider", 2)
	})
}

func TestRegistry_ModulesAndSymbols(t *testing.T) {
	r := loader.NewRegistry()
	require.NoError(t, r.Register("zeta", "a", 1))
	require.NoError(t, r.Register("alpha", "b", 2))
	require.NoError(t, r.Register("alpha", "c", 3))

	assert.Equal(t, []string{"alpha", "zeta"}, r.Modules())

	symbols := r.Symbols("alpha")
	assert.Len(t, symbols, 2)
	assert.Nil(t, r.Symbols("unknown"))

	// Mutating the returned map must not affect the registry.
	delete(symbols, "b")
	_, err := r.Resolve("alpha:b")
	assert.NoError(t, err)
}

func TestDefault_SameInstance(t *testing.T) {
	assert.Same(t, loader.Default(), loader.Default())
}
