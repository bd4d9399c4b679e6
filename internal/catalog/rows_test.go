package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raftsql/raftsql/internal/catalog"
	"github.com/raftsql/raftsql/internal/kvstore"
	"github.com/raftsql/raftsql/internal/value"
)

func TestInsertRowRejectsDuplicatePK(t *testing.T) {
	kv := kvstore.New()
	tbl := movies()
	require.NoError(t, catalog.CreateTable(kv, tbl))
	row := []value.Value{value.NewInteger(1), value.NewString("Stalker")}
	require.NoError(t, catalog.InsertRow(kv, tbl, row))
	err := catalog.InsertRow(kv, tbl, row)
	require.ErrorIs(t, err, catalog.ErrDuplicatePK)
}

func TestInsertRowRejectsBadColumnCount(t *testing.T) {
	kv := kvstore.New()
	tbl := movies()
	require.NoError(t, catalog.CreateTable(kv, tbl))
	err := catalog.InsertRow(kv, tbl, []value.Value{value.NewInteger(1)})
	require.ErrorIs(t, err, catalog.ErrBadColumnCount)
}

func TestInsertRowRejectsNullOnNonNullable(t *testing.T) {
	kv := kvstore.New()
	tbl := movies()
	require.NoError(t, catalog.CreateTable(kv, tbl))
	err := catalog.InsertRow(kv, tbl, []value.Value{value.NewInteger(1), value.Null})
	require.ErrorIs(t, err, catalog.ErrNullNotAllowed)
}

func TestScanTableReturnsRowsInPrimaryKeyOrder(t *testing.T) {
	kv := kvstore.New()
	tbl := movies()
	require.NoError(t, catalog.CreateTable(kv, tbl))

	require.NoError(t, catalog.InsertRow(kv, tbl, []value.Value{value.NewInteger(3), value.NewString("Primer")}))
	require.NoError(t, catalog.InsertRow(kv, tbl, []value.Value{value.NewInteger(1), value.NewString("Stalker")}))
	require.NoError(t, catalog.InsertRow(kv, tbl, []value.Value{value.NewInteger(2), value.NewString("Sicario")}))

	rows, err := catalog.ScanTable(kv, tbl)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, int64(1), rows[0][0].Int())
	require.Equal(t, int64(2), rows[1][0].Int())
	require.Equal(t, int64(3), rows[2][0].Int())
}

func TestGetRowAndDeleteRow(t *testing.T) {
	kv := kvstore.New()
	tbl := movies()
	require.NoError(t, catalog.CreateTable(kv, tbl))
	require.NoError(t, catalog.InsertRow(kv, tbl, []value.Value{value.NewInteger(1), value.NewString("Stalker")}))

	row, ok, err := catalog.GetRow(kv, tbl, value.NewInteger(1))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Stalker", row[1].Str())

	require.NoError(t, catalog.DeleteRow(kv, tbl, value.NewInteger(1)))
	_, ok, err = catalog.GetRow(kv, tbl, value.NewInteger(1))
	require.NoError(t, err)
	require.False(t, ok)
}
