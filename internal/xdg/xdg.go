// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

// Package xdg provides per-user base directory paths for plugspace.
package xdg

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "plugspace"

// ConfigDir returns the config directory for plugspace.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// CacheDir returns the platform-specific per-user cache directory for
// plugspace: the local-app-data cache folder on Windows, ~/Library/Caches on
// macOS, and XDG_CACHE_HOME (when absolute) or ~/.cache elsewhere.
func CacheDir() string {
	return filepath.Join(userCacheBase(), appName)
}

func userCacheBase() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "cache")
	case "darwin":
		return filepath.Join(os.Getenv("HOME"), "Library", "Caches")
	default:
		if base := os.Getenv("XDG_CACHE_HOME"); base != "" && filepath.IsAbs(base) {
			return base
		}
		return filepath.Join(os.Getenv("HOME"), ".cache")
	}
}

// EnsureDir creates a directory and all parent directories if they don't exist.
// Directories are created with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
