package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// CLI is the top-level command structure.
type CLI struct {
	Config   string `help:"Path to config file" type:"path"`
	LogLevel string `default:"warn" help:"Log level (debug, info, warn, error)"`

	Ask    AskCmd    `cmd:"" help:"Translate a natural-language question into SQL against a SQLite database"`
	Schema SchemaCmd `cmd:"" help:"Print the extracted schema of a SQLite database"`
	Keys   KeysCmd   `cmd:"" help:"Show the provider credential pool"`
}

func main() {
	// Best effort; credentials may come from a .env during development.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("collabsql"),
		kong.Description("Natural-language SQL assistant for SQLite databases"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	if err := ctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
