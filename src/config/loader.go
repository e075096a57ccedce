package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Environment variable overrides applied after file loading.
const (
	envModel     = "COLLABSQL_MODEL"
	envBaseURL   = "COLLABSQL_BASE_URL"
	envKeysFile  = "COLLABSQL_KEYS_FILE"
	envAuditDir  = "COLLABSQL_AUDIT_DIR"
	envLogLevel  = "COLLABSQL_LOG_LEVEL"
	envTimeoutMS = "COLLABSQL_TIMEOUT_MS"
)

// Load reads the configuration file at path (when it exists), applies
// environment overrides and validates the result. An empty path uses the
// default location; a missing file is not an error.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults apply.
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnvironmentOverrides(config)

	if err := NewValidator().Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

func applyEnvironmentOverrides(config *Config) {
	if v := os.Getenv(envModel); v != "" {
		config.Provider.Model = v
	}
	if v := os.Getenv(envBaseURL); v != "" {
		config.Provider.BaseURL = v
	}
	if v := os.Getenv(envKeysFile); v != "" {
		config.Keys.File = v
	}
	if v := os.Getenv(envAuditDir); v != "" {
		config.Audit.Directory = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv(envTimeoutMS); v != "" {
		var ms int64
		if _, err := fmt.Sscanf(v, "%d", &ms); err == nil && ms > 0 {
			config.Provider.Timeout = time.Duration(ms) * time.Millisecond
		}
	}
}
