// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plugspace/plugspace/internal/logging"
	"github.com/plugspace/plugspace/pkg/entrypoint"
	"github.com/plugspace/plugspace/pkg/metadata"
)

// showConfig holds configuration for the show command.
type showConfig struct {
	distribution string
	paths        []string
	logFormat    string
	logLevel     string
}

// Validate checks that the configuration is valid.
func (cfg *showConfig) Validate() error {
	if cfg.distribution == "" {
		return fmt.Errorf("distribution name is required")
	}
	return validateLogFormat(cfg.logFormat)
}

// NewShowCmd creates the show subcommand.
func NewShowCmd() *cobra.Command {
	cfg := &showConfig{}

	cmd := &cobra.Command{
		Use:   "show <distribution>",
		Short: "Show one distribution's metadata and declarations",
		Long: `Find a distribution by name on the search path and print its version,
metadata directory, module roots, and declared entry points.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.distribution = args[0]
			cfg.paths = searchPathFrom(k)
			cfg.logFormat = k.String(keyLogFormat)
			cfg.logLevel = k.String(keyLogLevel)
			return runShow(cfg, cmd)
		},
	}

	cmd.Flags().StringSlice(keyPath, nil, "search path entries (default: PLUGSPACE_PATH, then the working directory)")
	cmd.Flags().String(keyLogFormat, "text", "log format (json or text)")
	cmd.Flags().String(keyLogLevel, "info", "log level (debug, info, warn, error)")

	return cmd
}

// runShow prints one distribution's metadata.
func runShow(cfg *showConfig, cmd *cobra.Command) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logging.SetDefault("plugspace", version, cfg.logFormat, cfg.logLevel)

	var dist *metadata.Distribution
	for _, d := range metadata.ScanPath(cfg.paths) {
		if d.Name == cfg.distribution {
			dist = d
			break
		}
	}
	if dist == nil {
		return fmt.Errorf("distribution %q not found on search path", cfg.distribution)
	}

	cmd.Printf("name: %s\n", dist.Name)
	if dist.RawVersion != "" {
		cmd.Printf("version: %s\n", dist.RawVersion)
	}
	cmd.Printf("path: %s\n", dist.Path)
	cmd.Printf("modules: %v\n", dist.TopLevel())

	eps, err := dist.EntryPoints()
	if err != nil {
		return err
	}
	if len(eps) == 0 {
		cmd.Println("no entry points declared")
		return nil
	}

	cmd.Println()
	cmd.Print(string(entrypoint.SerializeIndex(entrypoint.BuildIndex(eps))))
	return nil
}
