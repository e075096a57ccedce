package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/collabsql/collabsql/src/assistant"
	"github.com/collabsql/collabsql/src/config"
)

// KeysCmd shows the provider credential pool without revealing any secret.
type KeysCmd struct{}

// Run executes the keys command.
func (c *KeysCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	keys, err := assistant.LoadKeys(afero.NewOsFs(), cfg.Keys.File, envValue(cfg.Keys.EnvVar))
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		fmt.Println("No provider credentials configured; the local pattern matcher will be used.")
		fmt.Printf("Keys file: %s (env fallback: %s)\n", cfg.Keys.File, cfg.Keys.EnvVar)
		return nil
	}

	fmt.Printf("Credential pool: %d key(s)\n", len(keys))
	for i, key := range keys {
		fmt.Println("  " + assistant.MaskKey(key, i))
	}
	return nil
}

// envValue reads an environment variable named by config, tolerating an
// unset name.
func envValue(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
