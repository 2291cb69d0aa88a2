// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package entrypoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugspace/plugspace/pkg/entrypoint"
)

func TestToMapping(t *testing.T) {
	eps := []entrypoint.EntryPoint{
		{Name: "sqs", Value: "app/services:SqsProvider", Group: "app.providers"},
		{Name: "sns", Value: "app/services:SnsProvider", Group: "app.providers"},
		{Name: "scan", Value: "app/cli:scan", Group: "app.commands"},
	}

	mapping, err := entrypoint.ToMapping(eps)
	require.NoError(t, err)

	assert.Equal(t, entrypoint.Mapping{
		"app.providers": {
			"sqs=app/services:SqsProvider",
			"sns=app/services:SnsProvider",
		},
		"app.commands": {
			"scan=app/cli:scan",
		},
	}, mapping)
}

func TestToMapping_DuplicateNameInGroup(t *testing.T) {
	eps := []entrypoint.EntryPoint{
		{Name: "sqs", Value: "app/services:SqsProvider", Group: "app.providers"},
		{Name: "sqs", Value: "other/services:SqsProvider", Group: "app.providers"},
	}

	_, err := entrypoint.ToMapping(eps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate entry point")
}

func TestToMapping_SameNameAcrossGroups(t *testing.T) {
	// Names only need to be unique within their group.
	eps := []entrypoint.EntryPoint{
		{Name: "sqs", Value: "app/services:SqsProvider", Group: "app.providers"},
		{Name: "sqs", Value: "app/health:SqsCheck", Group: "app.health"},
	}

	mapping, err := entrypoint.ToMapping(eps)
	require.NoError(t, err)
	assert.Len(t, mapping, 2)
}

func TestBuildIndex_FirstOccurrenceWins(t *testing.T) {
	eps := []entrypoint.EntryPoint{
		{Name: "sqs", Value: "app/services:SqsProvider", Group: "app.providers"},
		{Name: "sqs", Value: "other/services:SqsProvider", Group: "app.providers"},
		{Name: "sns", Value: "app/services:SnsProvider", Group: "app.providers"},
	}

	index := entrypoint.BuildIndex(eps)

	require.Len(t, index["app.providers"], 2)
	assert.Equal(t, "app/services:SqsProvider", index["app.providers"][0].Value)
	assert.Equal(t, "sns", index["app.providers"][1].Name)
}

func TestMapping_EntryPoints(t *testing.T) {
	mapping := entrypoint.Mapping{
		"app.providers": {"sqs = app/services:SqsProvider"},
	}

	eps, err := mapping.EntryPoints()
	require.NoError(t, err)

	require.Len(t, eps, 1)
	assert.Equal(t, entrypoint.EntryPoint{
		Name:  "sqs",
		Value: "app/services:SqsProvider",
		Group: "app.providers",
	}, eps[0])
}

func TestMapping_EntryPoints_InvalidLine(t *testing.T) {
	mapping := entrypoint.Mapping{
		"app.providers": {"not a declaration"},
	}

	_, err := mapping.EntryPoints()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name=value")
}

func TestIndex_Groups_Sorted(t *testing.T) {
	index := entrypoint.Index{
		"zeta":  nil,
		"alpha": nil,
		"mid":   nil,
	}

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, index.Groups())
}

func TestEntryPoint_String(t *testing.T) {
	ep := entrypoint.EntryPoint{Name: "sqs", Value: "app/services:SqsProvider", Group: "app.providers"}
	assert.Equal(t, "sqs=app/services:SqsProvider", ep.String())
}
