package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/collabsql/collabsql/src/dbschema"
	"github.com/collabsql/collabsql/src/schema"
	jsonschema "github.com/swaggest/jsonschema-go"
)

const (
	// historyWindow is how many trailing conversation turns the prompt
	// carries.
	historyWindow = 6
	// historyTurnLimit truncates each carried turn to bound prompt size.
	historyTurnLimit = 300
)

// PromptInput is everything the prompt builder renders for one model call.
type PromptInput struct {
	Query          string
	Schema         dbschema.Schema
	ActiveTable    string
	History        []Turn
	ContextSummary string
	// Samples maps table name to JSON-encodable sample rows, when the
	// live database was reachable.
	Samples map[string][]map[string]any
	// FailedSQL and ErrorFeedback are set only on the one validation
	// retry.
	FailedSQL     string
	ErrorFeedback string
}

var (
	responseContractOnce sync.Once
	responseContract     string
)

// responseSchema renders the JSON schema of the mandated response format.
// Built once; the shape never changes at runtime.
func responseSchema() string {
	responseContractOnce.Do(func() {
		contract := schema.Object(map[string]*jsonschema.Schema{
			"type": schema.StringEnum(
				"Intent class of the response.",
				"sql", "info", "clarification"),
			"query": schema.String(
				"A single SQLite statement, or the literal string \"null\" when the intent is conversational. Never omit this field."),
			"queryType": schema.StringEnum(
				"Execution class of the statement.", "SELECT", "WRITE"),
			"explanation": schema.String(
				"One or two sentences describing what the statement does."),
			"target_table": schema.String(
				"The table the statement primarily operates on."),
			"message": schema.String(
				"Conversational answer for info or clarification responses."),
		}, []string{"type", "query"})

		encoded, err := json.MarshalIndent(contract, "", "  ")
		if err != nil {
			// Unreachable for a static schema; keep a usable prompt anyway.
			responseContract = `{"type": "sql|info|clarification", "query": "<sql or null>"}`
			return
		}
		responseContract = string(encoded)
	})
	return responseContract
}

// BuildPrompt renders the full instruction prompt for one translation
// attempt: schema with row counts and sample rows, conversation state, the
// output discipline and, on a retry, the validation feedback block.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	b.WriteString("ROLE: You are an expert SQLite assistant for a collaborative database editor. ")
	b.WriteString("Convert the user's request into a precise, safe SQLite statement, or answer conversationally when no SQL applies.\n\n")

	b.WriteString("DATABASE SCHEMA:\n")
	b.WriteString(renderSchema(in.Schema, in.Samples))
	b.WriteString("\n")

	b.WriteString("CONVERSATION STATE:\n")
	active := in.ActiveTable
	if active == "" {
		active = "none"
	}
	fmt.Fprintf(&b, "- Active table: %s\n", active)
	fmt.Fprintf(&b, "- Context: %s\n", indentBlock(in.ContextSummary))
	if history := renderHistory(in.History); history != "" {
		b.WriteString("- Recent conversation:\n")
		b.WriteString(history)
	}
	b.WriteString("\n")

	b.WriteString(`RULES:
1. Use ONLY the tables and columns defined above. Double-quote identifiers.
2. Resolve ambiguous references using the active table and conversation state.
3. Use SQLite dialect: || for concatenation, strftime for dates, LIMIT for top-N.
4. Guard aggregates and ORDER BY against NULLs with IS NOT NULL where it affects correctness.
5. Wrap text comparisons in UPPER() or LOWER() so matching is case-insensitive.
6. If the request cannot be satisfied from the schema, respond with type "clarification" instead of guessing.
`)
	b.WriteString("\n")

	if in.FailedSQL != "" || in.ErrorFeedback != "" {
		b.WriteString("PREVIOUS ATTEMPT FAILED VALIDATION, fix this first:\n")
		fmt.Fprintf(&b, "- Failed SQL: %s\n", in.FailedSQL)
		fmt.Fprintf(&b, "- Database error: %s\n", in.ErrorFeedback)
		b.WriteString("Produce a corrected statement that executes against the schema above.\n\n")
	}

	b.WriteString("RESPONSE FORMAT: Return ONLY one JSON object matching this schema. ")
	b.WriteString("For conversational answers set \"query\" to the literal string \"null\", never omit it.\n")
	b.WriteString(responseSchema())
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "USER INPUT: %q\n", in.Query)
	return b.String()
}

func renderSchema(s dbschema.Schema, samples map[string][]map[string]any) string {
	if len(s.Tables) == 0 {
		return "  (no tables)\n"
	}

	var b strings.Builder
	for _, table := range s.Tables {
		fmt.Fprintf(&b, "  TABLE %s (%d rows)\n", table.Name, table.RowCount)
		for _, col := range table.Columns {
			var markers string
			if col.PrimaryKey {
				markers += " [PK]"
			}
			if col.NotNull {
				markers += " NOT NULL"
			}
			fmt.Fprintf(&b, "    %s %s%s\n", col.Name, col.Type, markers)
		}
		if rows := samples[table.Name]; len(rows) > 0 {
			if encoded, err := json.Marshal(rows); err == nil {
				fmt.Fprintf(&b, "    SAMPLE ROWS: %s\n", encoded)
			}
		}
	}
	return b.String()
}

func renderHistory(history []Turn) string {
	if len(history) == 0 {
		return ""
	}
	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}

	var b strings.Builder
	for _, turn := range recent {
		content := turn.Content
		if len(content) > historyTurnLimit {
			content = content[:historyTurnLimit]
		}
		role := turn.Role
		if role == "" {
			role = "user"
		}
		fmt.Fprintf(&b, "    %s: %s\n", role, content)
	}
	return b.String()
}

func indentBlock(s string) string {
	return strings.ReplaceAll(s, "\n", "; ")
}
