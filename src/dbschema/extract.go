package dbschema

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens a SQLite database file for reading and validation.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Extract builds a Schema from a live SQLite database: every user table with
// its PRAGMA table_info columns and a current row count. Internal sqlite_*
// tables are skipped.
func Extract(ctx context.Context, db *sql.DB) (Schema, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return Schema{}, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return Schema{}, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return Schema{}, fmt.Errorf("failed to iterate tables: %w", err)
	}

	schema := Schema{Tables: make([]Table, 0, len(names))}
	for _, name := range names {
		table, err := extractTable(ctx, db, name)
		if err != nil {
			return Schema{}, err
		}
		schema.Tables = append(schema.Tables, table)
	}
	return schema, nil
}

func extractTable(ctx context.Context, db *sql.DB, name string) (Table, error) {
	table := Table{Name: name}

	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdent(name)))
	if err != nil {
		return Table{}, fmt.Errorf("failed to read columns of %s: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			colName   string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &dfltValue, &pk); err != nil {
			return Table{}, fmt.Errorf("failed to scan column of %s: %w", name, err)
		}
		table.Columns = append(table.Columns, Column{
			Name:       colName,
			Type:       colType,
			NotNull:    notNull != 0,
			PrimaryKey: pk != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return Table{}, fmt.Errorf("failed to iterate columns of %s: %w", name, err)
	}

	row := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", QuoteIdent(name)))
	if err := row.Scan(&table.RowCount); err != nil {
		return Table{}, fmt.Errorf("failed to count rows of %s: %w", name, err)
	}

	return table, nil
}
