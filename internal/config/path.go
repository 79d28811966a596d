// Package config maps viper settings onto the typed configuration each
// package expects.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appDir = "spacesub"

// ExpandPath resolves $VAR references and a leading ~ to the home directory.
// Paths it cannot resolve are returned unchanged.
func ExpandPath(path string) string {
	path = os.ExpandEnv(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// ConfigDir is where config.yaml is looked up: $XDG_CONFIG_HOME/spacesub,
// or ~/.config/spacesub.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", "~/.config")
}

// DataDir holds the default database: $XDG_DATA_HOME/spacesub, or
// ~/.local/share/spacesub.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", "~/.local/share")
}

func xdgDir(env, fallback string) string {
	base := os.Getenv(env)
	if base == "" {
		base = fallback
	}
	return filepath.Join(ExpandPath(base), appDir)
}
