package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rbright/recite/internal/paths"
)

// FileName is the config file looked up inside the recite config dir.
const FileName = "config.toml"

// ResolvePath returns explicit when set, otherwise the config file in the
// recite XDG config dir.
func ResolvePath(explicit string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit, nil
	}
	dir, err := paths.ConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return filepath.Join(dir, FileName), nil
}
