// Package assistant implements the natural-language query assistant: prompt
// construction against a live schema, the hosted-model call with credential
// rotation and model fallback, response parsing, SQL validation with a single
// feedback retry, per-user conversation context and a deterministic local
// matcher used when no provider is configured.
package assistant

import (
	"database/sql"
	"strings"
	"time"

	"github.com/collabsql/collabsql/src/dbschema"
	"github.com/collabsql/collabsql/src/genai"
)

// ResultType tags the variant of a Result.
type ResultType string

const (
	ResultSQL           ResultType = "sql"
	ResultInfo          ResultType = "info"
	ResultClarification ResultType = "clarification"
	ResultError         ResultType = "error"
)

// QueryType distinguishes read statements from mutating ones.
type QueryType string

const (
	QuerySelect QueryType = "SELECT"
	QueryWrite  QueryType = "WRITE"
)

// Turn is one entry of the caller-supplied conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries one translation request across the engine boundary.
type Request struct {
	// Query is the user's natural-language input.
	Query string
	// Username keys the per-user conversation context.
	Username string
	// SelectedTable is an explicit table selection; it wins over the
	// stored active table when non-empty.
	SelectedTable string
	// Schema describes the target database.
	Schema dbschema.Schema
	// History is the recent conversation; only a bounded window is read.
	History []Turn
	// DB is the live database handle used for sample rows and SQL
	// validation. Optional; validation is skipped when nil.
	DB *sql.DB
}

// Result is the tagged outcome of a translation. Exactly one variant is
// active, selected by Type; fields belonging to other variants are zero.
type Result struct {
	Type ResultType `json:"type"`

	// sql variant
	Query       string    `json:"query,omitempty"`
	QueryType   QueryType `json:"queryType,omitempty"`
	Explanation string    `json:"explanation,omitempty"`
	TargetTable string    `json:"target_table,omitempty"`

	// info / clarification / error variants
	Message string `json:"message,omitempty"`
	// ErrorDetails carries the raw diagnostic for logging; user-facing
	// text stays in Message.
	ErrorDetails string `json:"error_details,omitempty"`

	// Usage and Latency are accounting metadata, absent on fallback and
	// error paths that never reached a provider.
	Usage   *genai.Usage  `json:"usage,omitempty"`
	Latency time.Duration `json:"-"`
}

// SQLResult builds a sql-variant result.
func SQLResult(query string, queryType QueryType, explanation, targetTable string) Result {
	return Result{
		Type:        ResultSQL,
		Query:       query,
		QueryType:   queryType,
		Explanation: explanation,
		TargetTable: targetTable,
	}
}

// InfoResult builds an info-variant result.
func InfoResult(message string) Result {
	return Result{Type: ResultInfo, Message: message}
}

// ClarificationResult builds a clarification-variant result.
func ClarificationResult(message string) Result {
	return Result{Type: ResultClarification, Message: message}
}

// ErrorResult builds an error-variant result. details may be empty.
func ErrorResult(message, details string) Result {
	return Result{Type: ResultError, Message: message, ErrorDetails: details}
}

// nullMarkers are the literal tokens the model is instructed to emit in the
// SQL slot when no SQL applies. Matching is case-insensitive.
var nullMarkers = map[string]bool{
	"":               true,
	"null":           true,
	"none":           true,
	"n/a":            true,
	"not applicable": true,
}

// IsNullMarker reports whether the extracted SQL text is a null marker and
// must never be treated as executable SQL.
func IsNullMarker(sql string) bool {
	return nullMarkers[strings.ToLower(strings.TrimSpace(sql))]
}

// ClassifyQueryType returns WRITE when the statement's first keyword is a
// write verb, SELECT otherwise.
func ClassifyQueryType(query string) QueryType {
	if dbschema.IsWriteStatement(query) {
		return QueryWrite
	}
	return QuerySelect
}
