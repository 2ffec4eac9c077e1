// Package paths resolves the XDG directories recite reads and writes.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const appDir = "recite"

// StateDir returns $XDG_STATE_HOME/recite, falling back to ~/.local/state/recite.
func StateDir() (string, error) {
	return xdgDir("XDG_STATE_HOME", "state", ".local", "state")
}

// ConfigDir returns $XDG_CONFIG_HOME/recite, falling back to ~/.config/recite.
func ConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", "config", ".config")
}

func xdgDir(env, purpose string, homeRel ...string) (string, error) {
	if base := strings.TrimSpace(os.Getenv(env)); base != "" {
		return filepath.Join(base, appDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for %s: %w", purpose, err)
	}
	return filepath.Join(append(append([]string{home}, homeRel...), appDir)...), nil
}
