// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/plugspace/plugspace/internal/logging"
	"github.com/plugspace/plugspace/pkg/entrypoint"
	"github.com/plugspace/plugspace/pkg/metadata"
)

// discoverConfig holds configuration for the discover command.
type discoverConfig struct {
	paths     []string
	asJSON    bool
	logFormat string
	logLevel  string
}

// Validate checks that the configuration is valid.
func (cfg *discoverConfig) Validate() error {
	return validateLogFormat(cfg.logFormat)
}

// NewDiscoverCmd creates the discover subcommand.
func NewDiscoverCmd() *cobra.Command {
	cfg := &discoverConfig{}

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Scan the search path and print declared entry points",
		Long: `Scan every distribution metadata directory on the search path and
print the merged entry point declarations, grouped by namespace. The
search path comes from --path, falling back to PLUGSPACE_PATH and then
the working directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.paths = searchPathFrom(k)
			cfg.asJSON = k.Bool("json")
			cfg.logFormat = k.String(keyLogFormat)
			cfg.logLevel = k.String(keyLogLevel)
			return runDiscover(cfg, cmd)
		},
	}

	cmd.Flags().StringSlice(keyPath, nil, "search path entries (default: PLUGSPACE_PATH, then the working directory)")
	cmd.Flags().Bool("json", false, "print the mapping as JSON instead of INI")
	cmd.Flags().String(keyLogFormat, "text", "log format (json or text)")
	cmd.Flags().String(keyLogLevel, "info", "log level (debug, info, warn, error)")

	return cmd
}

// runDiscover scans the search path and prints the merged declarations.
func runDiscover(cfg *discoverConfig, cmd *cobra.Command) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logging.SetDefault("plugspace", version, cfg.logFormat, cfg.logLevel)

	slog.Debug("scanning search path", "paths", cfg.paths)

	eps := metadata.ResolveEntryPoints(cfg.paths)
	index := entrypoint.BuildIndex(eps)

	if cfg.asJSON {
		mapping, err := entrypoint.ToMapping(eps)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(mapping, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode mapping: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Print(string(entrypoint.SerializeIndex(index)))
	return nil
}
