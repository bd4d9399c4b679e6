package exec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raftsql/raftsql/internal/catalog"
	"github.com/raftsql/raftsql/internal/kvstore"
	"github.com/raftsql/raftsql/internal/sql/exec"
	"github.com/raftsql/raftsql/internal/sql/parser"
	"github.com/raftsql/raftsql/internal/sql/plan"
	"github.com/raftsql/raftsql/internal/value"
)

func run(t *testing.T, kv *kvstore.Store, sql string) ([]string, [][]interface{}) {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err)
	node, err := plan.Plan(stmt, kv)
	require.NoError(t, err)
	it, err := exec.Execute(node, kv)
	require.NoError(t, err)
	rows, err := exec.Collect(it)
	require.NoError(t, err)

	var labels []string
	if proj, ok := node.(plan.Projection); ok {
		labels = proj.Labels
	}
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		r := make([]interface{}, len(row))
		for j, v := range row {
			r[j] = v
		}
		out[i] = r
	}
	return labels, out
}

func TestExecuteCreateTableThenSelectStar(t *testing.T) {
	kv := kvstore.New()
	_, _ = run(t, kv, "CREATE TABLE movies (id INTEGER PRIMARY KEY, title VARCHAR)")

	tbl, ok := catalog.GetTable(kv, "movies")
	require.True(t, ok)
	require.NoError(t, catalog.InsertRow(kv, tbl, []value.Value{value.NewInteger(1), value.NewString("Primer")}))
	require.NoError(t, catalog.InsertRow(kv, tbl, []value.Value{value.NewInteger(2), value.NewString("Sicario")}))

	labels, rows := run(t, kv, "SELECT * FROM movies")
	require.Equal(t, []string{"id", "title"}, labels)
	require.Len(t, rows, 2)
}

func TestExecuteConstantProjection(t *testing.T) {
	kv := kvstore.New()
	labels, rows := run(t, kv, "SELECT 1, 2 b, 3 AS c")
	require.Equal(t, []string{"?", "b", "c"}, labels)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 3)
}

func TestExecuteDropTableRemovesSchema(t *testing.T) {
	kv := kvstore.New()
	_, _ = run(t, kv, "CREATE TABLE t (id INTEGER PRIMARY KEY)")
	_, ok := catalog.GetTable(kv, "t")
	require.True(t, ok)

	_, _ = run(t, kv, "DROP TABLE t")
	_, ok = catalog.GetTable(kv, "t")
	require.False(t, ok)
}

func TestOpenAgainstSnapshotIsIsolated(t *testing.T) {
	kv := kvstore.New()
	_, _ = run(t, kv, "CREATE TABLE t (id INTEGER PRIMARY KEY)")
	tbl, ok := catalog.GetTable(kv, "t")
	require.True(t, ok)
	require.NoError(t, catalog.InsertRow(kv, tbl, []value.Value{value.NewInteger(1)}))

	snap := kv.Snapshot()

	require.NoError(t, catalog.InsertRow(kv, tbl, []value.Value{value.NewInteger(2)}))

	stmt, err := parser.Parse("SELECT * FROM t")
	require.NoError(t, err)
	node, err := plan.Plan(stmt, snap)
	require.NoError(t, err)
	it, err := exec.Open(node, snap)
	require.NoError(t, err)
	rows, err := exec.Collect(it)
	require.NoError(t, err)
	require.Len(t, rows, 1, "snapshot must not observe the later insert")
}
