// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

package main

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/plugspace/plugspace/pkg/lifecycle"
)

// Configuration keys shared across subcommands.
const (
	keyLogFormat = "log-format"
	keyLogLevel  = "log-level"
	keyPath      = "path"
	keyCacheDir  = "cache-dir"
)

// defaultConfig holds built-in defaults, the lowest-precedence source.
func defaultConfig() map[string]any {
	return map[string]any{
		keyLogFormat: "text",
		keyLogLevel:  "info",
	}
}

// loadConfig merges configuration for a command. Later sources override
// earlier ones: built-in defaults, then the optional YAML config file, then
// command line flags.
func loadConfig(cmd *cobra.Command) (*koanf.Koanf, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultConfig(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load config defaults: %w", err)
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
	}

	if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	return k, nil
}

// searchPathFrom returns the configured metadata search path. An explicit
// path wins over the environment, which wins over the working directory.
func searchPathFrom(k *koanf.Koanf) []string {
	if paths := k.Strings(keyPath); len(paths) > 0 {
		return paths
	}
	if paths := lifecycle.EnvSearchPath(); len(paths) > 0 {
		return paths
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil
	}
	return []string{wd}
}

// validateLogFormat rejects formats the logging setup does not understand.
func validateLogFormat(format string) error {
	if format != "json" && format != "text" {
		return fmt.Errorf("log-format must be 'json' or 'text', got %q", format)
	}
	return nil
}
