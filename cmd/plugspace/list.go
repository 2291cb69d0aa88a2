// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/plugspace/plugspace/internal/logging"
	"github.com/plugspace/plugspace/pkg/lifecycle"
)

// listConfig holds configuration for the list command.
type listConfig struct {
	namespace string
	paths     []string
	cacheDir  string
	logFormat string
	logLevel  string
}

// Validate checks that the configuration is valid.
func (cfg *listConfig) Validate() error {
	if cfg.namespace == "" {
		return fmt.Errorf("namespace is required")
	}
	return validateLogFormat(cfg.logFormat)
}

// NewListCmd creates the list subcommand.
func NewListCmd() *cobra.Command {
	cfg := &listConfig{}

	cmd := &cobra.Command{
		Use:   "list <namespace>",
		Short: "List the plugins a namespace declares on the search path",
		Long: `List every entry point declared for a namespace on the search path,
without code-loading or initializing any plugin. Each line shows the
declared name and locator.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.namespace = args[0]
			cfg.paths = searchPathFrom(k)
			cfg.cacheDir = k.String(keyCacheDir)
			cfg.logFormat = k.String(keyLogFormat)
			cfg.logLevel = k.String(keyLogLevel)
			return runList(cfg, cmd)
		},
	}

	cmd.Flags().StringSlice(keyPath, nil, "search path entries (default: PLUGSPACE_PATH, then the working directory)")
	cmd.Flags().String(keyCacheDir, "", "entry point cache directory (default: the user cache directory)")
	cmd.Flags().String(keyLogFormat, "text", "log format (json or text)")
	cmd.Flags().String(keyLogLevel, "info", "log level (debug, info, warn, error)")

	return cmd
}

// runList prints the namespace's declared entry points. Listing stays on the
// declaration level: resolving specs would code-load factories, which the
// CLI never does.
func runList(cfg *listConfig, cmd *cobra.Command) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logging.SetDefault("plugspace", version, cfg.logFormat, cfg.logLevel)

	paths := cfg.paths
	opts := []lifecycle.CacheOption{
		lifecycle.WithSearchPath(func() []string { return paths }),
	}
	if cfg.cacheDir != "" {
		opts = append(opts, lifecycle.WithCacheDir(cfg.cacheDir))
	}
	cache := lifecycle.NewEntryPointCache(opts...)

	index, err := cache.EntryPoints()
	if err != nil {
		return err
	}

	eps := index[cfg.namespace]
	if len(eps) == 0 {
		slog.Debug("namespace declares no entry points",
			"namespace", cfg.namespace,
			"paths", paths,
		)
		return nil
	}

	for _, ep := range eps {
		cmd.Println(ep.String())
	}
	return nil
}
