package dbschema

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSeededDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE EMPLOYEE (
		ID INTEGER PRIMARY KEY,
		FIRST_NAME TEXT NOT NULL,
		LAST_NAME TEXT,
		SALARY REAL
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE ORDERS (ORDER_ID INTEGER PRIMARY KEY, AMOUNT REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO EMPLOYEE (FIRST_NAME, LAST_NAME, SALARY) VALUES
		('Ada', 'Lovelace', 95000),
		('Grace', 'Hopper', 98000),
		('Alan', 'Turing', 91000)`)
	require.NoError(t, err)

	return db
}

func TestExtract(t *testing.T) {
	db := openSeededDB(t)

	sch, err := Extract(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, sch.Tables, 2)

	// sqlite_master listing is name-ordered.
	emp := sch.Tables[0]
	assert.Equal(t, "EMPLOYEE", emp.Name)
	assert.EqualValues(t, 3, emp.RowCount)
	require.Len(t, emp.Columns, 4)

	id := emp.Columns[0]
	assert.Equal(t, "ID", id.Name)
	assert.Equal(t, "INTEGER", id.Type)
	assert.True(t, id.PrimaryKey)

	firstName := emp.Columns[1]
	assert.Equal(t, "FIRST_NAME", firstName.Name)
	assert.True(t, firstName.NotNull)
	assert.False(t, firstName.PrimaryKey)

	orders := sch.Tables[1]
	assert.Equal(t, "ORDERS", orders.Name)
	assert.EqualValues(t, 0, orders.RowCount)
}

func TestSchemaLookups(t *testing.T) {
	db := openSeededDB(t)
	sch, err := Extract(context.Background(), db)
	require.NoError(t, err)

	assert.Equal(t, []string{"EMPLOYEE", "ORDERS"}, sch.TableNames())

	table := sch.FindTable("employee")
	require.NotNil(t, table)
	assert.Equal(t, "EMPLOYEE", table.Name)
	assert.Equal(t, []string{"ID", "FIRST_NAME", "LAST_NAME", "SALARY"}, table.ColumnNames())

	assert.Nil(t, sch.FindTable("MISSING"))
}

func TestSampleRows(t *testing.T) {
	db := openSeededDB(t)

	rows, err := SampleRows(context.Background(), db, "EMPLOYEE", 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ada", rows[0]["FIRST_NAME"])

	rows, err = SampleRows(context.Background(), db, "ORDERS", 5)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = SampleRows(context.Background(), db, "MISSING", 5)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	db := openSeededDB(t)
	ctx := context.Background()

	assert.NoError(t, Validate(ctx, db, `SELECT * FROM "EMPLOYEE"`))
	assert.NoError(t, Validate(ctx, db, `UPDATE "EMPLOYEE" SET "SALARY" = 100000 WHERE "ID" = 1`))

	assert.Error(t, Validate(ctx, db, `SELECT "WAGE" FROM "EMPLOYEE"`))
	assert.Error(t, Validate(ctx, db, `SELECT * FROM "MISSING"`))
	assert.Error(t, Validate(ctx, db, `not sql at all`))
}

func TestValidateWriteLeavesDataUntouched(t *testing.T) {
	db := openSeededDB(t)
	ctx := context.Background()

	require.NoError(t, Validate(ctx, db, `DELETE FROM "EMPLOYEE"`))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "EMPLOYEE"`).Scan(&count))
	assert.Equal(t, 3, count)
}

func TestIsWriteStatement(t *testing.T) {
	writes := []string{
		`INSERT INTO t VALUES (1)`,
		`  update t set a = 1`,
		`Delete From t`,
		`DROP TABLE t`,
		`alter table t add column x`,
		`REPLACE INTO t VALUES (1)`,
		`create table t (a)`,
	}
	for _, q := range writes {
		assert.True(t, IsWriteStatement(q), "expected write: %q", q)
	}

	reads := []string{
		`SELECT * FROM t`,
		`with x as (select 1) select * from x`,
		`PRAGMA table_info(t)`,
		`EXPLAIN QUERY PLAN SELECT 1`,
		``,
	}
	for _, q := range reads {
		assert.False(t, IsWriteStatement(q), "expected read: %q", q)
	}
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"EMPLOYEE"`, QuoteIdent("EMPLOYEE"))
	assert.Equal(t, `"we""ird"`, QuoteIdent(`we"ird`))
}
