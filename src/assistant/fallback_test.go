package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/collabsql/collabsql/src/dbschema"
)

func employeeSchema() dbschema.Schema {
	return dbschema.Schema{Tables: []dbschema.Table{
		{
			Name: "EMPLOYEE",
			Columns: []dbschema.Column{
				{Name: "ID", Type: "INTEGER", PrimaryKey: true},
				{Name: "FIRST_NAME", Type: "TEXT", NotNull: true},
				{Name: "LAST_NAME", Type: "TEXT"},
				{Name: "SALARY", Type: "REAL"},
			},
			RowCount: 12,
		},
	}}
}

func twoTableSchema() dbschema.Schema {
	sch := employeeSchema()
	sch.Tables = append(sch.Tables, dbschema.Table{
		Name: "ORDERS",
		Columns: []dbschema.Column{
			{Name: "ORDER_ID", Type: "INTEGER", PrimaryKey: true},
			{Name: "AMOUNT", Type: "REAL"},
		},
		RowCount: 40,
	})
	return sch
}

func TestMatcherGreeting(t *testing.T) {
	m := NewMatcher()
	result := m.Process("hello there", employeeSchema(), "")
	assert.Equal(t, ResultInfo, result.Type)
	assert.Contains(t, result.Message, "database assistant")
}

func TestMatcherConceptQuestions(t *testing.T) {
	m := NewMatcher()
	sch := employeeSchema()

	result := m.Process("what is a primary key", sch, "")
	assert.Equal(t, ResultInfo, result.Type)
	assert.Contains(t, result.Message, "PRIMARY KEY")

	result = m.Process("explain normalization", sch, "")
	assert.Equal(t, ResultInfo, result.Type)
	assert.Contains(t, result.Message, "redundancy")

	// "machine learning" must win over the embedded "ai" substring.
	result = m.Process("what is machine learning", sch, "")
	assert.Contains(t, result.Message, "subset of AI")

	result = m.Process("what is the meaning of life", sch, "")
	assert.Equal(t, ResultInfo, result.Type)
	assert.Contains(t, result.Message, "database assistant")
}

func TestMatcherListTables(t *testing.T) {
	m := NewMatcher()
	result := m.Process("what tables do I have", twoTableSchema(), "")
	assert.Equal(t, ResultInfo, result.Type)
	assert.Contains(t, result.Message, "EMPLOYEE")
	assert.Contains(t, result.Message, "ORDERS")
}

func TestMatcherNamePrefix(t *testing.T) {
	m := NewMatcher()
	result := m.Process("show employees starting with S", employeeSchema(), "")

	assert.Equal(t, ResultSQL, result.Type)
	assert.Equal(t, `SELECT * FROM "EMPLOYEE" WHERE UPPER("FIRST_NAME") LIKE 'S%'`, result.Query)
	assert.Equal(t, QuerySelect, result.QueryType)
	assert.Equal(t, "EMPLOYEE", result.TargetTable)
}

func TestMatcherNamePrefixAndSuffixWithLimit(t *testing.T) {
	m := NewMatcher()
	result := m.Process("first 5 employees starting with 'A' and ending with n", employeeSchema(), "")

	assert.Equal(t, ResultSQL, result.Type)
	assert.Equal(t,
		`SELECT * FROM "EMPLOYEE" WHERE UPPER("FIRST_NAME") LIKE 'A%' AND UPPER("FIRST_NAME") LIKE '%N' LIMIT 5`,
		result.Query)
}

func TestMatcherCount(t *testing.T) {
	m := NewMatcher()
	result := m.Process("how many employees are there", employeeSchema(), "")

	assert.Equal(t, ResultSQL, result.Type)
	assert.Equal(t, `SELECT COUNT(*) as count FROM "EMPLOYEE"`, result.Query)
	assert.Equal(t, QuerySelect, result.QueryType)
}

func TestMatcherTableResolution(t *testing.T) {
	m := NewMatcher()
	sch := twoTableSchema()

	// Explicit mention wins.
	result := m.Process("count rows in orders", sch, "EMPLOYEE")
	assert.Equal(t, `SELECT COUNT(*) as count FROM "ORDERS"`, result.Query)

	// Active table is used when nothing is mentioned.
	result = m.Process("how many rows", sch, "ORDERS")
	assert.Equal(t, `SELECT COUNT(*) as count FROM "ORDERS"`, result.Query)

	// Ambiguous with no context asks for clarification.
	result = m.Process("show me everything", sch, "")
	assert.Equal(t, ResultClarification, result.Type)
	assert.Contains(t, result.Message, "EMPLOYEE")
	assert.Contains(t, result.Message, "ORDERS")
}

func TestMatcherSingleTableDefault(t *testing.T) {
	m := NewMatcher()
	result := m.Process("show me everything", employeeSchema(), "")
	assert.Equal(t, ResultSQL, result.Type)
	assert.Equal(t, `SELECT * FROM "EMPLOYEE"`, result.Query)
}

func TestMatcherUpdate(t *testing.T) {
	m := NewMatcher()
	sch := employeeSchema()

	result := m.Process("update last name of john to smith", sch, "EMPLOYEE")
	assert.Equal(t, ResultSQL, result.Type)
	assert.Equal(t, QueryWrite, result.QueryType)
	assert.Equal(t,
		`UPDATE "EMPLOYEE" SET "LAST_NAME" = 'smith' WHERE "FIRST_NAME" = 'john'`,
		result.Query)

	result = m.Process(`update salary 'john' to '90000'`, sch, "EMPLOYEE")
	assert.Equal(t, ResultSQL, result.Type)
	assert.Equal(t,
		`UPDATE "EMPLOYEE" SET "SALARY" = '90000' WHERE "FIRST_NAME" = 'john'`,
		result.Query)

	// No recognizable column asks for clarification instead of guessing.
	result = m.Process("update the thing", sch, "EMPLOYEE")
	assert.Equal(t, ResultClarification, result.Type)
}

func TestMatcherDeleteAsksForClarification(t *testing.T) {
	m := NewMatcher()
	result := m.Process("delete employees", employeeSchema(), "")
	assert.Equal(t, ResultClarification, result.Type)
	assert.Contains(t, result.Message, "which records")
}

func TestMatcherOrderAndLimit(t *testing.T) {
	m := NewMatcher()
	sch := employeeSchema()

	result := m.Process("show employees sort by salary descending", sch, "")
	assert.Equal(t, `SELECT * FROM "EMPLOYEE" ORDER BY "SALARY" DESC`, result.Query)

	// "top N" with no sort column orders by the amount-like column.
	result = m.Process("top 3 employees", sch, "")
	assert.Equal(t, `SELECT * FROM "EMPLOYEE" ORDER BY "SALARY" DESC LIMIT 3`, result.Query)
}
