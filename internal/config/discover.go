package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfig names the variable that overrides config discovery.
const EnvConfig = "ARRPUSH_CONFIG"

// xdgDir returns $env when set, else fallback joined to the home directory.
func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fallback)
}

// DefaultPath returns $XDG_CONFIG_HOME/arrpush/config.toml.
func DefaultPath() string {
	dir := xdgDir("XDG_CONFIG_HOME", ".config")
	if dir == "" {
		return "config.toml"
	}
	return filepath.Join(dir, "arrpush", "config.toml")
}

// SearchPaths lists the files Discover tries when $ARRPUSH_CONFIG is unset.
func SearchPaths() []string {
	return []string{"./config.toml", DefaultPath(), "/etc/arrpush/config.toml"}
}

// Discover returns $ARRPUSH_CONFIG, which must exist, or the first regular
// file among SearchPaths.
func Discover() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvConfig, p, err)
		}
		return p, nil
	}

	candidates := SearchPaths()
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w, checked: %s", ErrNotFound, strings.Join(candidates, ", "))
}
