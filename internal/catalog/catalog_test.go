package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raftsql/raftsql/internal/catalog"
	"github.com/raftsql/raftsql/internal/kvstore"
	"github.com/raftsql/raftsql/internal/value"
)

func movies() catalog.Table {
	return catalog.Table{
		Name:       "movies",
		PrimaryKey: "id",
		Columns: []catalog.Column{
			{Name: "id", Type: value.TypeInteger, Nullable: false},
			{Name: "title", Type: value.TypeVarchar, Nullable: false},
		},
	}
}

func TestCreateTableThenGetTable(t *testing.T) {
	kv := kvstore.New()
	require.NoError(t, catalog.CreateTable(kv, movies()))

	got, ok := catalog.GetTable(kv, "movies")
	require.True(t, ok)
	require.Equal(t, movies(), got)
}

func TestCreateTableRejectsDuplicate(t *testing.T) {
	kv := kvstore.New()
	require.NoError(t, catalog.CreateTable(kv, movies()))
	err := catalog.CreateTable(kv, movies())
	require.ErrorIs(t, err, catalog.ErrTableExists)
}

func TestDropTableRemovesSchemaAndRows(t *testing.T) {
	kv := kvstore.New()
	tbl := movies()
	require.NoError(t, catalog.CreateTable(kv, tbl))
	require.NoError(t, catalog.InsertRow(kv, tbl, []value.Value{value.NewInteger(1), value.NewString("Primer")}))

	require.NoError(t, catalog.DropTable(kv, "movies"))

	_, ok := catalog.GetTable(kv, "movies")
	require.False(t, ok)
	rows, err := catalog.ScanTable(kv, tbl)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestDropTableNotFound(t *testing.T) {
	kv := kvstore.New()
	err := catalog.DropTable(kv, "nope")
	require.ErrorIs(t, err, catalog.ErrTableNotFound)
}

func TestListTablesSorted(t *testing.T) {
	kv := kvstore.New()
	require.NoError(t, catalog.CreateTable(kv, catalog.Table{Name: "zebra", PrimaryKey: "id",
		Columns: []catalog.Column{{Name: "id", Type: value.TypeInteger}}}))
	require.NoError(t, catalog.CreateTable(kv, catalog.Table{Name: "apple", PrimaryKey: "id",
		Columns: []catalog.Column{{Name: "id", Type: value.TypeInteger}}}))

	names := catalog.ListTables(kv)
	require.Equal(t, []string{"apple", "zebra"}, names)
}
