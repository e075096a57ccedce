package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnparseableResponse indicates the model output matched neither accepted
// wire format.
var ErrUnparseableResponse = errors.New("model response is neither JSON nor delimited format")

// jsonResponse is the loose JSON shape models return. Query is untyped so a
// JSON null is distinguishable from an absent field.
type jsonResponse struct {
	Type        string `json:"type"`
	Query       any    `json:"query"`
	QueryType   string `json:"queryType"`
	Explanation string `json:"explanation"`
	TargetTable string `json:"target_table"`
	Message     string `json:"message"`
}

// ParseResponse extracts a Result from raw model output. Two wire formats
// are accepted: a JSON object (optionally inside ```json fences) and a
// delimited plain-text format with SQL_QUERY: and EXPLANATION: segments.
// A null-marker SQL slot is always reclassified as info, never sql.
func ParseResponse(raw string) (Result, error) {
	text := stripFences(raw)

	if result, ok := parseJSON(text); ok {
		return result, nil
	}
	if result, ok := parseDelimited(raw); ok {
		return result, nil
	}
	return Result{}, fmt.Errorf("%w: %.200s", ErrUnparseableResponse, strings.TrimSpace(raw))
}

// stripFences extracts the content of the first markdown code fence, if any.
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
	} else if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+len("```"):]
	} else {
		return text
	}
	if end := strings.Index(text, "```"); end >= 0 {
		text = text[:end]
	}
	text = strings.TrimSpace(text)

	// Drop a leading language tag such as ```sql.
	if first, rest, ok := strings.Cut(text, "\n"); ok {
		switch strings.ToLower(strings.TrimSpace(first)) {
		case "sql", "sqlite":
			text = strings.TrimSpace(rest)
		}
	}
	return text
}

func parseJSON(text string) (Result, bool) {
	if !strings.HasPrefix(strings.TrimSpace(text), "{") {
		return Result{}, false
	}
	var resp jsonResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return Result{}, false
	}

	switch resp.Type {
	case "sql":
		sql, _ := resp.Query.(string)
		return normalizeSQL(stripFences(sql), resp.QueryType, resp.Explanation, resp.TargetTable), true
	case "clarification":
		msg := resp.Message
		if msg == "" {
			msg = "Could you clarify your request?"
		}
		return ClarificationResult(msg), true
	case "error":
		msg := resp.Message
		if msg == "" {
			msg = "Something went wrong."
		}
		return ErrorResult(msg, ""), true
	case "info", "":
		return InfoResult(resp.Message), true
	default:
		// Unknown tag degrades to info rather than failing the turn.
		return InfoResult(resp.Message), true
	}
}

// parseDelimited handles the plain-text fallback format:
//
//	SQL_QUERY: <statement, possibly fenced>
//	EXPLANATION: <free text>
func parseDelimited(raw string) (Result, bool) {
	sqlIdx := strings.Index(raw, "SQL_QUERY:")
	if sqlIdx < 0 {
		return Result{}, false
	}
	rest := raw[sqlIdx+len("SQL_QUERY:"):]

	var sqlPart, explanation string
	if expIdx := strings.Index(rest, "EXPLANATION:"); expIdx >= 0 {
		sqlPart = rest[:expIdx]
		explanation = strings.TrimSpace(rest[expIdx+len("EXPLANATION:"):])
	} else {
		sqlPart = rest
	}
	sqlText := stripFences(sqlPart)

	return normalizeSQL(sqlText, "", explanation, ""), true
}

// normalizeSQL applies the null-marker rule and query-type defaulting shared
// by both wire formats.
func normalizeSQL(sqlText, queryType, explanation, targetTable string) Result {
	if IsNullMarker(sqlText) {
		return InfoResult(explanation)
	}

	qt := QueryType(strings.ToUpper(strings.TrimSpace(queryType)))
	if qt != QuerySelect && qt != QueryWrite {
		qt = ClassifyQueryType(sqlText)
	}
	if explanation == "" {
		explanation = "Executing query"
	}
	return SQLResult(strings.TrimSpace(sqlText), qt, explanation, targetTable)
}
