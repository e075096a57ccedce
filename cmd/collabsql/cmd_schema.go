package main

import (
	"context"
	"fmt"

	"github.com/collabsql/collabsql/src/dbschema"
)

// SchemaCmd prints the extracted schema of a SQLite database.
type SchemaCmd struct {
	Database string `arg:"" help:"Path to the SQLite database file" type:"existingfile"`
}

// Run executes the schema command.
func (c *SchemaCmd) Run(cli *CLI) error {
	db, err := dbschema.Open(c.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	schema, err := dbschema.Extract(context.Background(), db)
	if err != nil {
		return fmt.Errorf("failed to extract schema: %w", err)
	}

	for _, table := range schema.Tables {
		fmt.Printf("%s (%d rows)\n", labelStyle.Render(table.Name), table.RowCount)
		for _, col := range table.Columns {
			line := fmt.Sprintf("  %-24s %s", col.Name, col.Type)
			if col.PrimaryKey {
				line += " PK"
			}
			if col.NotNull {
				line += " NOT NULL"
			}
			fmt.Println(line)
		}
	}
	return nil
}
