package catalog

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raftsql/raftsql/internal/value"
)

func TestEncodePKIntegerPreservesOrder(t *testing.T) {
	ints := []int64{-100, -1, 0, 1, 100, 1 << 40}
	var encoded [][]byte
	for _, i := range ints {
		enc, err := encodePK(value.NewInteger(i))
		require.NoError(t, err)
		encoded = append(encoded, enc)
	}
	sorted := append([][]byte{}, encoded...)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i], sorted[j]) < 0 })
	require.Equal(t, encoded, sorted)
}

func TestEncodePKStringPreservesOrder(t *testing.T) {
	strs := []string{"a", "ab", "b", "z"}
	var encoded [][]byte
	for _, s := range strs {
		enc, err := encodePK(value.NewString(s))
		require.NoError(t, err)
		encoded = append(encoded, enc)
	}
	for i := 1; i < len(encoded); i++ {
		require.Less(t, bytes.Compare(encoded[i-1], encoded[i]), 0)
	}
}

func TestEncodePKFloatPreservesOrder(t *testing.T) {
	floats := []float64{-10.5, -1.0, 0.0, 1.0, 10.5}
	var encoded [][]byte
	for _, f := range floats {
		enc, err := encodePK(value.NewFloat(f))
		require.NoError(t, err)
		encoded = append(encoded, enc)
	}
	for i := 1; i < len(encoded); i++ {
		require.Less(t, bytes.Compare(encoded[i-1], encoded[i]), 0)
	}
}

func TestEncodePKRejectsNull(t *testing.T) {
	_, err := encodePK(value.Null)
	require.Error(t, err)
}

func TestRowRoundTrip(t *testing.T) {
	row := []value.Value{
		value.Null,
		value.NewBoolean(true),
		value.NewInteger(-42),
		value.NewFloat(3.14),
		value.NewString("hello"),
	}
	encoded := encodeRow(row)
	decoded, err := decodeRow(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, len(row))
	for i := range row {
		require.True(t, row[i].Equal(decoded[i]), "cell %d: %v != %v", i, row[i], decoded[i])
	}
}

func TestDecodeRowTruncated(t *testing.T) {
	_, err := decodeRow([]byte{0, 0, 0, 1})
	require.Error(t, err)
}

func TestTableRoundTrip(t *testing.T) {
	tbl := Table{
		Name:       "movies",
		PrimaryKey: "id",
		Columns: []Column{
			{Name: "id", Type: value.TypeInteger, Nullable: false},
			{Name: "title", Type: value.TypeVarchar, Nullable: true},
		},
	}
	encoded := encodeTable(tbl)
	decoded, err := decodeTable(encoded)
	require.NoError(t, err)
	require.Equal(t, tbl, decoded)
}
