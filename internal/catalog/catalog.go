// Package catalog implements spec.md §3's schema catalog and row storage:
// the mapping from table name to Table schema, and the tagged key encoding
// over internal/kvstore that backs both schema entries and row entries.
package catalog

import (
	"errors"
	"fmt"

	"github.com/raftsql/raftsql/internal/kvstore"
	"github.com/raftsql/raftsql/internal/value"
)

// Errors surfaced to the planner/executor (spec.md §7 PlanError family).
var (
	ErrTableExists    = errors.New("table already exists")
	ErrTableNotFound  = errors.New("table not found")
	ErrDuplicatePK    = errors.New("duplicate primary key")
	ErrRowNotFound    = errors.New("row not found")
	ErrBadColumnCount = errors.New("column count mismatch")
	ErrBadColumnType  = errors.New("column type mismatch")
	ErrNullNotAllowed = errors.New("null not allowed for non-nullable column")
)

// Key tags, spec.md §4.7.
const (
	tagSchema byte = 0x01
	tagRow    byte = 0x02
)

// Column is spec.md §3's (name, datatype, nullable) triple.
type Column struct {
	Name     string
	Type     value.DataType
	Nullable bool
}

// Table is spec.md §3's schema record: an ordered column list plus the name
// of the single primary-key column.
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey string
}

// PKColumn returns the primary-key column definition.
func (t Table) PKColumn() (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == t.PrimaryKey {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnIndex returns the position of name in t.Columns, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// KVReader is the read side of the ordered map the catalog runs over,
// satisfied by both a live *kvstore.Store and a frozen *kvstore.Snapshot so
// read-only queries (spec.md §4.6) can run against a point-in-time view.
type KVReader interface {
	Get(key []byte) ([]byte, bool)
	ScanPrefix(prefix []byte) []kvstore.Entry
}

// KVWriter is the mutating side, satisfied only by *kvstore.Store: only the
// applier ever mutates the catalog (spec.md §5).
type KVWriter interface {
	KVReader
	Set(key, value []byte)
	Delete(key []byte)
}

func schemaKey(table string) []byte {
	key := make([]byte, 0, 1+len(table))
	key = append(key, tagSchema)
	key = append(key, table...)
	return key
}

// GetTable looks up a table's schema.
func GetTable(kv KVReader, name string) (Table, bool) {
	raw, ok := kv.Get(schemaKey(name))
	if !ok {
		return Table{}, false
	}
	t, err := decodeTable(raw)
	if err != nil {
		return Table{}, false
	}
	return t, true
}

// ListTables returns every table name, in key order (i.e. sorted, since
// schema keys share the 0x01 tag and the table name is the only variable
// suffix).
func ListTables(kv KVReader) []string {
	entries := kv.ScanPrefix([]byte{tagSchema})
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, string(e.Key[1:]))
	}
	return names
}

// CreateTable installs a new table schema. Returns ErrTableExists if a table
// of that name is already present.
func CreateTable(kv KVWriter, t Table) error {
	if _, exists := GetTable(kv, t.Name); exists {
		return fmt.Errorf("%w: %s", ErrTableExists, t.Name)
	}
	kv.Set(schemaKey(t.Name), encodeTable(t))
	return nil
}

// DropTable removes a table's schema and all of its rows.
func DropTable(kv KVWriter, name string) error {
	if _, exists := GetTable(kv, name); !exists {
		return fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	for _, e := range kv.ScanPrefix(rowPrefix(name)) {
		kv.Delete(e.Key)
	}
	kv.Delete(schemaKey(name))
	return nil
}
