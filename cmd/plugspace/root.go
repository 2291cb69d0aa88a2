// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the plugspace CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugspace",
		Short: "Plugspace - plugin discovery and lifecycle tooling",
		Long: `Plugspace discovers plugins declared through distribution metadata,
resolves them into specifications, and manages their lifecycle. The CLI
inspects search paths, generates entry point metadata, and lists the
plugins a namespace would expose at runtime.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewDiscoverCmd())
	cmd.AddCommand(NewGenerateCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewShowCmd())

	return cmd
}
