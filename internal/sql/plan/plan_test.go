package plan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raftsql/raftsql/internal/catalog"
	"github.com/raftsql/raftsql/internal/kvstore"
	"github.com/raftsql/raftsql/internal/sql/parser"
	"github.com/raftsql/raftsql/internal/sql/plan"
)

func TestPlanCreateTableAppliesNullableDefaults(t *testing.T) {
	stmt, err := parser.Parse("CREATE TABLE name (id INTEGER PRIMARY KEY, string VARCHAR NOT NULL, text VARCHAR, number INTEGER, decimal FLOAT, bool BOOLEAN NULL)")
	require.NoError(t, err)

	kv := kvstore.New()
	node, err := plan.Plan(stmt, kv)
	require.NoError(t, err)

	ct, ok := node.(plan.CreateTable)
	require.True(t, ok)
	require.True(t, ct.Mutating())

	byName := map[string]catalog.Column{}
	for _, c := range ct.Schema.Columns {
		byName[c.Name] = c
	}
	require.False(t, byName["id"].Nullable)
	require.False(t, byName["string"].Nullable)
	require.True(t, byName["text"].Nullable)
	require.True(t, byName["number"].Nullable)
	require.True(t, byName["decimal"].Nullable)
	require.True(t, byName["bool"].Nullable)
}

func TestPlanCreateTableRequiresExactlyOnePrimaryKey(t *testing.T) {
	stmt, err := parser.Parse("CREATE TABLE t (a INTEGER, b INTEGER)")
	require.NoError(t, err)
	_, err = plan.Plan(stmt, kvstore.New())
	require.ErrorIs(t, err, plan.ErrTypeMismatch)
}

func TestPlanSelectNoFromConstants(t *testing.T) {
	stmt, err := parser.Parse("SELECT 1, 2 b, 3 AS c")
	require.NoError(t, err)
	node, err := plan.Plan(stmt, kvstore.New())
	require.NoError(t, err)

	proj, ok := node.(plan.Projection)
	require.True(t, ok)
	require.False(t, proj.Mutating())
	require.Equal(t, []string{"?", "b", "c"}, proj.Labels)
	require.Equal(t, plan.Nothing{}, proj.Source)
}

func TestPlanSelectNoFromRejectsColumnRef(t *testing.T) {
	stmt, err := parser.Parse("SELECT x")
	require.NoError(t, err)
	_, err = plan.Plan(stmt, kvstore.New())
	require.ErrorIs(t, err, plan.ErrUnknownColumn)
}

func TestPlanSelectStarRequiresExistingTable(t *testing.T) {
	stmt, err := parser.Parse("SELECT * FROM ghosts")
	require.NoError(t, err)
	_, err = plan.Plan(stmt, kvstore.New())
	require.ErrorIs(t, err, plan.ErrUnknownTable)
}

func TestPlanSelectStarExpandsColumns(t *testing.T) {
	kv := kvstore.New()
	tbl := catalog.Table{Name: "movies", PrimaryKey: "id", Columns: []catalog.Column{
		{Name: "id"}, {Name: "title"},
	}}
	require.NoError(t, catalog.CreateTable(kv, tbl))

	stmt, err := parser.Parse("SELECT * FROM movies")
	require.NoError(t, err)
	node, err := plan.Plan(stmt, kv)
	require.NoError(t, err)

	proj := node.(plan.Projection)
	require.Equal(t, []string{"id", "title"}, proj.Labels)
	_, ok := proj.Source.(plan.Scan)
	require.True(t, ok)
}

func TestPlanSelectWhereNotImplemented(t *testing.T) {
	kv := kvstore.New()
	require.NoError(t, catalog.CreateTable(kv, catalog.Table{Name: "t", PrimaryKey: "id", Columns: []catalog.Column{{Name: "id"}}}))
	stmt, err := parser.Parse("SELECT * FROM t WHERE id = 1")
	require.NoError(t, err)
	_, err = plan.Plan(stmt, kv)
	require.ErrorIs(t, err, plan.ErrNotImplemented)
}

func TestPlanInsertUpdateDeleteNotImplemented(t *testing.T) {
	kv := kvstore.New()
	for _, sql := range []string{
		"INSERT INTO t VALUES (1)",
		"UPDATE t SET a = 1",
		"DELETE FROM t",
	} {
		stmt, err := parser.Parse(sql)
		require.NoError(t, err)
		_, err = plan.Plan(stmt, kv)
		require.ErrorIs(t, err, plan.ErrNotImplemented, sql)
	}
}
