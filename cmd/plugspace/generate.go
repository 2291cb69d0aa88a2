// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plugspace/plugspace/internal/logging"
	"github.com/plugspace/plugspace/internal/xdg"
	"github.com/plugspace/plugspace/pkg/entrypoint"
	"github.com/plugspace/plugspace/pkg/metadata"
)

// generateConfig holds configuration for the generate command.
type generateConfig struct {
	artifactPath string
	distribution string
	outDir       string
	validateOnly bool
	logFormat    string
	logLevel     string
}

// Validate checks that the configuration is valid.
func (cfg *generateConfig) Validate() error {
	if cfg.artifactPath == "" {
		return fmt.Errorf("artifact path is required")
	}
	if !cfg.validateOnly && cfg.distribution == "" {
		return fmt.Errorf("dist is required unless --validate-only is set")
	}
	if !cfg.validateOnly && strings.ContainsAny(cfg.distribution, string(filepath.Separator)) {
		return fmt.Errorf("dist must be a distribution name, not a path")
	}
	return validateLogFormat(cfg.logFormat)
}

// NewGenerateCmd creates the generate subcommand.
func NewGenerateCmd() *cobra.Command {
	cfg := &generateConfig{}

	cmd := &cobra.Command{
		Use:   "generate <artifact>",
		Short: "Generate distribution metadata from a declaration artifact",
		Long: `Validate a YAML or JSON declaration artifact against the entry point
schema and write the resulting entry_points.txt into a distribution
metadata directory. The directory is named <dist>.dist-info and created
under --out-dir when missing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.artifactPath = args[0]
			cfg.distribution = k.String("dist")
			cfg.outDir = k.String("out-dir")
			cfg.validateOnly = k.Bool("validate-only")
			cfg.logFormat = k.String(keyLogFormat)
			cfg.logLevel = k.String(keyLogLevel)
			return runGenerate(cfg, cmd)
		},
	}

	cmd.Flags().String("dist", "", "distribution name, optionally with version (e.g. myplugins-1.2.0)")
	cmd.Flags().String("out-dir", ".", "directory to create the metadata directory in")
	cmd.Flags().Bool("validate-only", false, "validate the artifact without writing metadata")
	cmd.Flags().String(keyLogFormat, "text", "log format (json or text)")
	cmd.Flags().String(keyLogLevel, "info", "log level (debug, info, warn, error)")

	return cmd
}

// runGenerate validates the artifact and writes the declaration file.
func runGenerate(cfg *generateConfig, cmd *cobra.Command) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logging.SetDefault("plugspace", version, cfg.logFormat, cfg.logLevel)

	data, err := os.ReadFile(filepath.Clean(cfg.artifactPath))
	if err != nil {
		return fmt.Errorf("failed to read artifact: %w", err)
	}

	artifact, err := entrypoint.ParseArtifact(data)
	if err != nil {
		return fmt.Errorf("invalid artifact: %s", entrypoint.FormatSchemaError(err))
	}

	if cfg.validateOnly {
		cmd.Println("artifact is valid")
		return nil
	}

	eps, err := artifact.EntryPoints.EntryPoints()
	if err != nil {
		return err
	}
	index := entrypoint.BuildIndex(eps)

	metaDir := filepath.Join(cfg.outDir, cfg.distribution+".dist-info")
	if err := xdg.EnsureDir(metaDir); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	declPath := filepath.Join(metaDir, metadata.EntryPointsFile)
	if err := os.WriteFile(declPath, entrypoint.SerializeIndex(index), 0o600); err != nil {
		return fmt.Errorf("failed to write declarations: %w", err)
	}

	slog.Info("declarations written",
		"distribution", cfg.distribution,
		"path", declPath,
		"groups", len(index),
	)
	cmd.Println(declPath)
	return nil
}
