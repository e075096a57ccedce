package config

import "time"

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Provider: ProviderConfig{
			Model:         "gemini-2.0-flash",
			FallbackModel: "gemini-2.0-flash-lite",
			Timeout:       30 * time.Second,
			SampleRows:    5,
		},
		Keys: KeysConfig{
			File:   DefaultKeysPath(),
			EnvVar: "GEMINI_API_KEY",
		},
		Audit: AuditConfig{
			Directory: DefaultAuditDir(),
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}
