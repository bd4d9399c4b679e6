package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raftsql/raftsql/internal/catalog"
	"github.com/raftsql/raftsql/internal/value"
)

// TestCanonicalCreateTableScenario4 pins spec.md §8 scenario 4's exact
// rendering: CREATE TABLE name (id INTEGER PRIMARY KEY) -> GetTable returns
// "CREATE TABLE name (\n  id INTEGER PRIMARY KEY NOT NULL,\n)".
func TestCanonicalCreateTableScenario4(t *testing.T) {
	tbl := catalog.Table{
		Name:       "name",
		PrimaryKey: "id",
		Columns: []catalog.Column{
			{Name: "id", Type: value.TypeInteger, Nullable: false},
		},
	}
	want := "CREATE TABLE name (\n  id INTEGER PRIMARY KEY NOT NULL,\n)"
	require.Equal(t, want, catalog.CanonicalCreateTable(tbl))
}

func TestCanonicalCreateTableNonPrimaryNotNull(t *testing.T) {
	tbl := catalog.Table{
		Name:       "t",
		PrimaryKey: "id",
		Columns: []catalog.Column{
			{Name: "id", Type: value.TypeInteger, Nullable: false},
			{Name: "name", Type: value.TypeVarchar, Nullable: false},
			{Name: "note", Type: value.TypeVarchar, Nullable: true},
		},
	}
	want := "CREATE TABLE t (\n" +
		"  id INTEGER PRIMARY KEY NOT NULL,\n" +
		"  name VARCHAR NOT NULL,\n" +
		"  note VARCHAR,\n" +
		")"
	require.Equal(t, want, catalog.CanonicalCreateTable(tbl))
}
