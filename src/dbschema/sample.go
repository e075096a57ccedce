package dbschema

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// DefaultSampleLimit bounds how many rows are fetched for prompt grounding.
const DefaultSampleLimit = 5

// SampleRows fetches up to limit rows from the table as generic maps, used to
// ground prompts in real data. The table name must come from a previously
// extracted Schema, never from raw user input.
func SampleRows(ctx context.Context, db *sql.DB, table string, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = DefaultSampleLimit
	}

	var rows []map[string]any
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", QuoteIdent(table), limit)
	if err := sqlscan.Select(ctx, db, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to sample %s: %w", table, err)
	}
	return rows, nil
}
