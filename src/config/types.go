// Package config loads and validates the assistant's configuration from a
// JSON file, environment variables and XDG-standard paths.
package config

import "time"

// Config is the complete configuration for the assistant.
type Config struct {
	// Version of the configuration format.
	Version string `json:"version"`

	// Provider configures the hosted model.
	Provider ProviderConfig `json:"provider"`

	// Keys configures the credential pool.
	Keys KeysConfig `json:"keys"`

	// Audit configures the per-user history log.
	Audit AuditConfig `json:"audit"`

	// Logging configures diagnostic output.
	Logging LoggingConfig `json:"logging"`
}

// ProviderConfig configures the hosted model provider.
type ProviderConfig struct {
	// Model is the primary model name.
	Model string `json:"model" validate:"required"`

	// FallbackModel is tried once when the primary model is unavailable.
	FallbackModel string `json:"fallback_model,omitempty"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url"`

	// Timeout bounds each provider call.
	Timeout time.Duration `json:"timeout,omitempty" validate:"min=0"`

	// SampleRows is how many rows per table ground the prompt.
	SampleRows int `json:"sample_rows,omitempty" validate:"min=0,max=50"`
}

// KeysConfig configures where provider credentials come from.
type KeysConfig struct {
	// File is the path to the JSON keys file. Empty means the default
	// under the state directory.
	File string `json:"file,omitempty"`

	// EnvVar names the environment variable holding a single fallback
	// key used when the file yields nothing.
	EnvVar string `json:"env_var,omitempty"`
}

// AuditConfig configures the per-user translation history.
type AuditConfig struct {
	// Directory roots the per-user history files. Empty means the
	// default under the state directory.
	Directory string `json:"directory,omitempty"`
}

// LoggingConfig configures diagnostic logging.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level,omitempty" validate:"omitempty,log_level"`
}
