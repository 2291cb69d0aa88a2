// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entry_points.yaml")
	writeFile(t, path, []byte(content))
	return path
}

func TestGenerateCommand(t *testing.T) {
	artifact := writeArtifact(t, `
entry_points:
  app.providers:
    - sqs=app/services:SqsProvider
    - sns=app/services:SnsProvider
`)
	outDir := t.TempDir()

	output, err := runCommand(t, "generate", artifact,
		"--dist", "myplugins-1.0.0", "--out-dir", outDir)
	require.NoError(t, err)

	declPath := filepath.Join(outDir, "myplugins-1.0.0.dist-info", "entry_points.txt")
	assert.Contains(t, output, declPath)

	data, err := os.ReadFile(declPath)
	require.NoError(t, err)
	assert.Equal(t, `[app.providers]
sns = app/services:SnsProvider
sqs = app/services:SqsProvider

`, string(data))
}

func TestGenerateCommand_GeneratedMetadataIsDiscoverable(t *testing.T) {
	artifact := writeArtifact(t, `
entry_points:
  app.providers:
    - sqs=app/services:SqsProvider
`)
	outDir := t.TempDir()

	_, err := runCommand(t, "generate", artifact,
		"--dist", "myplugins-1.0.0", "--out-dir", outDir)
	require.NoError(t, err)

	output, err := runCommand(t, "discover", "--path", outDir)
	require.NoError(t, err)
	assert.Contains(t, output, "sqs = app/services:SqsProvider")
}

func TestGenerateCommand_ValidateOnly(t *testing.T) {
	artifact := writeArtifact(t, `
entry_points:
  app.providers:
    - sqs=app/services:SqsProvider
`)

	output, err := runCommand(t, "generate", artifact, "--validate-only")
	require.NoError(t, err)
	assert.Contains(t, output, "valid")
}

func TestGenerateCommand_InvalidArtifact(t *testing.T) {
	artifact := writeArtifact(t, `
entry_points:
  app.providers: not a list
`)

	_, err := runCommand(t, "generate", artifact, "--validate-only")
	require.Error(t, err)
}

func TestGenerateCommand_MissingDist(t *testing.T) {
	artifact := writeArtifact(t, `
entry_points: {}
`)

	_, err := runCommand(t, "generate", artifact)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dist is required")
}

func TestGenerateCommand_MissingArtifactFile(t *testing.T) {
	_, err := runCommand(t, "generate",
		filepath.Join(t.TempDir(), "missing.yaml"), "--dist", "x-1.0.0")
	require.Error(t, err)
}
