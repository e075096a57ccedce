package dbschema

import (
	"context"
	"database/sql"
	"strings"
)

// IsWriteStatement reports whether the statement's first keyword is a write
// verb. Anything else (SELECT, PRAGMA, WITH, EXPLAIN, ...) is treated as a
// read.
func IsWriteStatement(query string) bool {
	fields := strings.Fields(strings.TrimSpace(query))
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(fields[0]) {
	case "INSERT", "UPDATE", "DELETE", "REPLACE", "CREATE", "DROP", "ALTER":
		return true
	}
	return false
}

// Validate checks that the statement is executable against the database
// without committing any change. Reads are executed directly; writes are
// wrapped in EXPLAIN QUERY PLAN so SQLite resolves tables, columns and
// bindings without touching data. The check runs on a dedicated connection
// that is closed regardless of outcome.
func Validate(ctx context.Context, db *sql.DB, query string) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	stmt := query
	if IsWriteStatement(query) {
		stmt = "EXPLAIN QUERY PLAN " + query
	}

	rows, err := conn.QueryContext(ctx, stmt)
	if err != nil {
		return err
	}
	defer rows.Close()

	// Drain so statement-level errors surface.
	for rows.Next() {
	}
	return rows.Err()
}
