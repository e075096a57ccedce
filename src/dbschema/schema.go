// Package dbschema models the shape of a user-supplied SQLite database and
// provides the live-database hooks the assistant needs: schema extraction,
// sample-row fetches, and pre-execution SQL validation.
package dbschema

import "strings"

// Column describes a single column as reported by PRAGMA table_info.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"notNull"`
	PrimaryKey bool   `json:"primaryKey"`
}

// Table describes a user table, its columns and current row count.
type Table struct {
	Name     string   `json:"name"`
	Columns  []Column `json:"columns"`
	RowCount int64    `json:"rowCount"`
}

// Schema is the ordered collection of tables in one database. It is built by
// Extract (or supplied by a caller that caches it) and is read-only to the
// assistant.
type Schema struct {
	Tables []Table `json:"tables"`
}

// TableNames returns the table names in schema order.
func (s Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		names = append(names, t.Name)
	}
	return names
}

// FindTable looks up a table by name, case-insensitively. Returns nil if the
// schema has no such table.
func (s Schema) FindTable(name string) *Table {
	for i := range s.Tables {
		if strings.EqualFold(s.Tables[i].Name, name) {
			return &s.Tables[i]
		}
	}
	return nil
}

// ColumnNames returns the column names of the table in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// QuoteIdent wraps an identifier in double quotes, escaping any embedded
// quote so a hostile table or column name cannot break out of the quoting.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
