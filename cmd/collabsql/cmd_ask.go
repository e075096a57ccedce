package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/afero"

	"github.com/collabsql/collabsql/src/assistant"
	"github.com/collabsql/collabsql/src/config"
	"github.com/collabsql/collabsql/src/dbschema"
	"github.com/collabsql/collabsql/src/genai"
	"github.com/collabsql/collabsql/src/genai/gemini"
)

// AskCmd translates one natural-language question against a SQLite database.
type AskCmd struct {
	Database string   `arg:"" help:"Path to the SQLite database file" type:"existingfile"`
	Question []string `arg:"" help:"The natural-language question"`

	Table string `help:"Explicit target table (overrides stored context)"`
	User  string `default:"anonymous" help:"Username keying conversation context and history"`
}

// Run executes the ask command.
func (c *AskCmd) Run(cli *CLI) error {
	logger := createCLILogger(cli.LogLevel)
	slog.SetDefault(logger)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	db, err := dbschema.Open(c.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	schema, err := dbschema.Extract(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to extract schema: %w", err)
	}

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	if !engine.HasProvider() {
		logger.Warn("no provider credentials found, using local pattern matcher")
	}

	result := engine.Translate(ctx, assistant.Request{
		Query:         strings.Join(c.Question, " "),
		Username:      c.User,
		SelectedTable: c.Table,
		Schema:        schema,
		DB:            db,
	})
	printResult(result)
	return nil
}

// buildEngine wires the key pool, provider factory and audit log from config.
func buildEngine(cfg *config.Config, logger *slog.Logger) (*assistant.Engine, error) {
	fs := afero.NewOsFs()

	keys, err := assistant.LoadKeys(fs, cfg.Keys.File, envValue(cfg.Keys.EnvVar))
	if err != nil {
		return nil, err
	}

	factory := func(apiKey string) (genai.Provider, error) {
		return gemini.NewClient(gemini.Config{
			APIKey:  apiKey,
			Model:   cfg.Provider.Model,
			BaseURL: cfg.Provider.BaseURL,
			Timeout: cfg.Provider.Timeout,
			Logger:  logger,
		})
	}

	return assistant.NewEngine(assistant.Options{
		Pool:           assistant.NewKeyPool(keys),
		NewProvider:    factory,
		FallbackModel:  cfg.Provider.FallbackModel,
		Audit:          assistant.NewAuditLog(fs, cfg.Audit.Directory),
		CallTimeout:    cfg.Provider.Timeout,
		SampleRowLimit: cfg.Provider.SampleRows,
		Logger:         logger,
	}), nil
}
