package catalog

import (
	"fmt"

	"github.com/raftsql/raftsql/internal/value"
)

// validateRow checks a row's arity and per-column type/nullability against
// table, spec.md §3 "Row": "whose length and types match its table's schema".
func validateRow(table Table, row []value.Value) error {
	if len(row) != len(table.Columns) {
		return fmt.Errorf("%w: table %s wants %d columns, got %d",
			ErrBadColumnCount, table.Name, len(table.Columns), len(row))
	}
	for i, col := range table.Columns {
		v := row[i]
		if v.IsNull() {
			if !col.Nullable {
				return fmt.Errorf("%w: column %s.%s", ErrNullNotAllowed, table.Name, col.Name)
			}
			continue
		}
		if !typeMatches(col.Type, v.Kind()) {
			return fmt.Errorf("%w: column %s.%s wants %s, got %s",
				ErrBadColumnType, table.Name, col.Name, col.Type, v.Kind())
		}
	}
	return nil
}

func typeMatches(t value.DataType, k value.Kind) bool {
	switch t {
	case value.TypeBoolean:
		return k == value.KindBoolean
	case value.TypeInteger:
		return k == value.KindInteger
	case value.TypeFloat:
		return k == value.KindFloat
	case value.TypeVarchar:
		return k == value.KindString
	default:
		return false
	}
}

// InsertRow encodes and stores row under table, keyed by its primary-key
// column. Returns ErrDuplicatePK if a row with that key already exists.
func InsertRow(kv KVWriter, table Table, row []value.Value) error {
	if err := validateRow(table, row); err != nil {
		return err
	}
	pkIdx := table.ColumnIndex(table.PrimaryKey)
	key, err := rowKey(table.Name, row[pkIdx])
	if err != nil {
		return err
	}
	if _, exists := kv.Get(key); exists {
		return fmt.Errorf("%w: table %s", ErrDuplicatePK, table.Name)
	}
	kv.Set(key, encodeRow(row))
	return nil
}

// DeleteRow removes the row identified by pk from table.
func DeleteRow(kv KVWriter, table Table, pk value.Value) error {
	key, err := rowKey(table.Name, pk)
	if err != nil {
		return err
	}
	if _, exists := kv.Get(key); !exists {
		return fmt.Errorf("%w: table %s", ErrRowNotFound, table.Name)
	}
	kv.Delete(key)
	return nil
}

// ScanTable returns every row of table in primary-key order (spec.md §4.6
// Scan operator), relying on the key encoding's order-preserving primary key
// bytes to make the kv scan's key order equal to primary-key order.
func ScanTable(kv KVReader, table Table) ([][]value.Value, error) {
	entries := kv.ScanPrefix(rowPrefix(table.Name))
	rows := make([][]value.Value, 0, len(entries))
	for _, e := range entries {
		row, err := decodeRow(e.Value)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", table.Name, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// GetRow looks up a single row by primary key.
func GetRow(kv KVReader, table Table, pk value.Value) ([]value.Value, bool, error) {
	key, err := rowKey(table.Name, pk)
	if err != nil {
		return nil, false, err
	}
	raw, ok := kv.Get(key)
	if !ok {
		return nil, false, nil
	}
	row, err := decodeRow(raw)
	if err != nil {
		return nil, false, err
	}
	return row, true, nil
}
