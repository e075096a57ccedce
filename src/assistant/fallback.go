package assistant

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/collabsql/collabsql/src/dbschema"
)

// Matcher is the deterministic local fallback used when no hosted provider is
// configured. It classifies intent with keyword and regex patterns and
// templates SQL directly from the schema. No network, no state.
type Matcher struct{}

// NewMatcher creates a local fallback matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

var (
	startsWithRe = regexp.MustCompile(`(?:starts?|starting)\s+with\s+["']?([a-zA-Z]+)["']?`)
	endsWithRe   = regexp.MustCompile(`(?:ends?|ending)\s+with\s+["']?([a-zA-Z]+)["']?`)
	limitRe      = regexp.MustCompile(`(?:top|limit|first)\s+(\d+)`)

	// update <column> '<old>' to '<new>'  /  update <column> of <old> to <new>
	updateQuotedRe = regexp.MustCompile(`update\s+(\w[\w\s]*?)\s+['"](\w+)['"]\s+(?:to|as)\s+['"]?(\w+)['"]?`)
	updateOfRe     = regexp.MustCompile(`update\s+(\w[\w\s]*?)\s+of\s+(\w+)\s+(?:as|to)\s+(\w+)`)
)

var greetingSubstrings = []string{"hello", "hi ", "hey", "good morning", "good afternoon", "good evening"}

var conceptAnswers = []struct {
	keyword string
	answer  string
}{
	{"primary key", "A PRIMARY KEY uniquely identifies each row in a table. It must be unique and cannot be NULL. Each table can have only one primary key."},
	{"foreign key", "A FOREIGN KEY creates a link between two tables by referencing the primary key of another table, enforcing referential integrity."},
	{"index", "An INDEX speeds up data retrieval by creating a quick lookup structure, similar to a book's index. It improves SELECT performance but adds overhead to INSERT/UPDATE/DELETE."},
	{"normalization", "Normalization organizes data to minimize redundancy. Common forms: 1NF (atomic values), 2NF (no partial dependencies), 3NF (no transitive dependencies)."},
	{"join", "A JOIN combines rows from multiple tables. Types: INNER JOIN (matching rows only), LEFT JOIN (all left + matching right), RIGHT JOIN, FULL OUTER JOIN, CROSS JOIN."},
	{"constraint", "Constraints enforce data rules: PRIMARY KEY, FOREIGN KEY, UNIQUE, NOT NULL, CHECK, DEFAULT."},
	{"machine learning", "Machine Learning is a subset of AI where systems learn from data to improve performance without explicit programming. Common types: supervised, unsupervised, and reinforcement learning."},
	{"sql", "SQL (Structured Query Language) is the standard language for managing relational databases. It includes commands for querying (SELECT), modifying (INSERT/UPDATE/DELETE), and defining data structures (CREATE/ALTER/DROP)."},
	{"database", "A database is an organized collection of structured data stored electronically. Relational databases organize data into tables with rows and columns, linked by keys."},
	{"ai", "AI (Artificial Intelligence) is the simulation of human intelligence by computer systems. It includes machine learning, natural language processing, and computer vision."},
}

var questionPrefixes = []string{"what is", "what are", "explain", "define", "how does", "why is", "tell me about"}

// Process resolves the query without any provider, following a fixed
// precedence: greeting, concept question, table listing, table resolution,
// write verbs, name patterns, ordering and limits, full-table select.
func (m *Matcher) Process(query string, sch dbschema.Schema, activeTable string) Result {
	lower := strings.ToLower(strings.TrimSpace(query))
	tableNames := sch.TableNames()

	for _, kw := range greetingSubstrings {
		if strings.Contains(lower, kw) {
			return InfoResult("Hello! I'm your database assistant. Ask me anything about your database - I can run queries, explain concepts, and help you explore your data.")
		}
	}

	for _, prefix := range questionPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return answerConcept(lower)
		}
	}

	for _, kw := range []string{"what tables", "show tables", "list tables", "which tables"} {
		if strings.Contains(lower, kw) {
			return InfoResult(fmt.Sprintf("Available tables: %s", strings.Join(tableNames, ", ")))
		}
	}

	target := activeTable
	for _, name := range tableNames {
		if strings.Contains(lower, strings.ToLower(name)) {
			target = name
			break
		}
	}
	if target == "" {
		if len(tableNames) == 1 {
			target = tableNames[0]
		} else {
			return ClarificationResult(fmt.Sprintf("Which table would you like to query? Available: %s", strings.Join(tableNames, ", ")))
		}
	}

	var colNames []string
	if table := sch.FindTable(target); table != nil {
		colNames = table.ColumnNames()
	}

	if strings.Contains(lower, "update") {
		return matchUpdate(lower, target, colNames)
	}

	if strings.Contains(lower, "delete") || strings.Contains(lower, "remove") {
		return ClarificationResult(fmt.Sprintf("Please specify which records to delete. Example: delete from %s where ID = 5", target))
	}

	if strings.Contains(lower, "count") || strings.Contains(lower, "how many") {
		sql := fmt.Sprintf(`SELECT COUNT(*) as count FROM %s`, dbschema.QuoteIdent(target))
		return SQLResult(sql, QuerySelect, fmt.Sprintf("Counting records in %s", target), target)
	}

	if nameCol := findNameColumn(colNames); nameCol != "" {
		if result, ok := matchNamePattern(lower, target, nameCol); ok {
			return result
		}
	}

	return defaultSelect(lower, target, colNames)
}

func answerConcept(lower string) Result {
	for _, entry := range conceptAnswers {
		if strings.Contains(lower, entry.keyword) {
			return InfoResult(entry.answer)
		}
	}
	return InfoResult("I'm primarily a database assistant, but I'll do my best to help! Could you rephrase your question, or ask me about your database data?")
}

// matchNamePattern templates prefix/suffix filters like "names starting with
// S", honoring an optional trailing LIMIT.
func matchNamePattern(lower, target, nameCol string) (Result, bool) {
	startsMatch := startsWithRe.FindStringSubmatch(lower)
	endsMatch := endsWithRe.FindStringSubmatch(lower)
	if startsMatch == nil && endsMatch == nil {
		return Result{}, false
	}

	var conditions, explanations []string
	if startsMatch != nil {
		prefix := strings.ToUpper(startsMatch[1])
		conditions = append(conditions, fmt.Sprintf(`UPPER(%s) LIKE '%s%%'`, dbschema.QuoteIdent(nameCol), prefix))
		explanations = append(explanations, fmt.Sprintf("starts with '%s'", prefix))
	}
	if endsMatch != nil {
		suffix := strings.ToUpper(endsMatch[1])
		conditions = append(conditions, fmt.Sprintf(`UPPER(%s) LIKE '%%%s'`, dbschema.QuoteIdent(nameCol), suffix))
		explanations = append(explanations, fmt.Sprintf("ends with '%s'", suffix))
	}

	sql := fmt.Sprintf(`SELECT * FROM %s WHERE %s`,
		dbschema.QuoteIdent(target), strings.Join(conditions, " AND "))
	if limitMatch := limitRe.FindStringSubmatch(lower); limitMatch != nil {
		sql += " LIMIT " + limitMatch[1]
	}

	explanation := fmt.Sprintf("Filtering %s where %s %s", target, nameCol, strings.Join(explanations, " and "))
	return SQLResult(sql, QuerySelect, explanation, target), true
}

// defaultSelect is the terminal rule: full-table select with best-effort
// ordering and limit detection.
func defaultSelect(lower, target string, colNames []string) Result {
	sql := fmt.Sprintf(`SELECT * FROM %s`, dbschema.QuoteIdent(target))

	if strings.Contains(lower, " by ") || strings.Contains(lower, "order by") || strings.Contains(lower, "sort by") {
		for _, col := range colNames {
			if strings.Contains(lower, strings.ToLower(col)) {
				sql += fmt.Sprintf(` ORDER BY %s`, dbschema.QuoteIdent(col))
				for _, kw := range []string{"desc", "high", "top", "max", "most"} {
					if strings.Contains(lower, kw) {
						sql += " DESC"
						break
					}
				}
				break
			}
		}
	}

	if limitMatch := limitRe.FindStringSubmatch(lower); limitMatch != nil {
		// "top N" without an explicit sort column: order by the first
		// amount-like column so the limit is meaningful.
		if !strings.Contains(strings.ToLower(sql), "order by") &&
			(strings.Contains(lower, "top") || strings.Contains(lower, "highest")) {
			for _, col := range colNames {
				cl := strings.ToLower(col)
				if strings.Contains(cl, "salary") || strings.Contains(cl, "amount") ||
					strings.Contains(cl, "price") || strings.Contains(cl, "wage") ||
					strings.Contains(cl, "total") {
					sql += fmt.Sprintf(` ORDER BY %s DESC`, dbschema.QuoteIdent(col))
					break
				}
			}
		}
		sql += " LIMIT " + limitMatch[1]
	}

	return SQLResult(sql, QuerySelect, fmt.Sprintf("Showing results from %s", target), target)
}

// matchUpdate extracts a <column> <old> to <new> triple from either accepted
// phrasing and maps the column phrase onto the schema. Returns a
// clarification when no column can be identified rather than guessing.
func matchUpdate(lower, target string, colNames []string) Result {
	for _, re := range []*regexp.Regexp{updateQuotedRe, updateOfRe} {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		colPhrase := strings.TrimSpace(m[1])
		oldVal, newVal := m[2], m[3]

		setCol := matchColumn(colPhrase, colNames)
		whereCol := findNameColumn(colNames)
		if setCol == "" || whereCol == "" {
			break
		}

		sql := fmt.Sprintf(`UPDATE %s SET %s = '%s' WHERE %s = '%s'`,
			dbschema.QuoteIdent(target), dbschema.QuoteIdent(setCol), newVal,
			dbschema.QuoteIdent(whereCol), oldVal)
		explanation := fmt.Sprintf("Updating %s to '%s' where %s = '%s'", setCol, newVal, whereCol, oldVal)
		return SQLResult(sql, QueryWrite, explanation, target)
	}

	return ClarificationResult("Please specify the update clearly. Example: update LAST_NAME of 'John' to 'Smith'")
}

// findNameColumn picks the column most likely to identify a row by name:
// exact first_name/name, then anything containing name or first, then the
// first column.
func findNameColumn(colNames []string) string {
	for _, c := range colNames {
		cl := strings.ToLower(c)
		if cl == "first_name" || cl == "name" {
			return c
		}
	}
	for _, c := range colNames {
		cl := strings.ToLower(c)
		if strings.Contains(cl, "name") || strings.Contains(cl, "first") {
			return c
		}
	}
	if len(colNames) > 0 {
		return colNames[0]
	}
	return ""
}

// matchColumn maps a free-text column phrase to a schema column: exact match,
// then substring either way, then all words contained.
func matchColumn(phrase string, colNames []string) string {
	phraseLower := strings.ReplaceAll(strings.ToLower(phrase), " ", "_")
	for _, c := range colNames {
		if strings.ToLower(c) == phraseLower {
			return c
		}
	}
	for _, c := range colNames {
		cl := strings.ToLower(c)
		if strings.Contains(cl, phraseLower) || strings.Contains(phraseLower, cl) {
			return c
		}
	}
	words := strings.Fields(strings.ToLower(phrase))
	for _, c := range colNames {
		cl := strings.ToLower(c)
		all := true
		for _, w := range words {
			if !strings.Contains(cl, w) {
				all = false
				break
			}
		}
		if all && len(words) > 0 {
			return c
		}
	}
	return ""
}
