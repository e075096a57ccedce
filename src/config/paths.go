package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "collabsql"

// DefaultConfigPath returns the default config file location under the XDG
// config directory.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.json")
}

// DefaultKeysPath returns the default keys file location under the XDG state
// directory.
func DefaultKeysPath() string {
	return filepath.Join(xdg.StateHome, appName, "api_keys.json")
}

// DefaultAuditDir returns the default root for per-user history logs.
func DefaultAuditDir() string {
	return filepath.Join(xdg.StateHome, appName, "logs")
}
