// Package exec implements spec.md §4.6: a lazy, pull-based iterator over a
// plan tree, evaluating expressions against rows pulled from a catalog/KV
// source.
package exec

import (
	"errors"
	"fmt"
	"io"

	"github.com/raftsql/raftsql/internal/catalog"
	"github.com/raftsql/raftsql/internal/sql/ast"
	"github.com/raftsql/raftsql/internal/sql/plan"
	"github.com/raftsql/raftsql/internal/value"
)

// Iterator is a pull-based row producer: a single Next method, following the
// design note to avoid push-based callbacks. Next returns io.EOF once
// exhausted, the Go idiom for "Option<Row>::None".
type Iterator interface {
	Next() ([]value.Value, error)
}

// Open builds a read-only iterator for node. CreateTable/DropTable/Insert/
// Delete/Update are not readable plans and return an error; use Execute for
// those.
func Open(node plan.Node, kv catalog.KVReader) (Iterator, error) {
	switch n := node.(type) {
	case plan.Nothing:
		return &onceIter{row: []value.Value{}}, nil
	case plan.Scan:
		rows, err := catalog.ScanTable(kv, n.Table)
		if err != nil {
			return nil, err
		}
		return &sliceIter{rows: rows}, nil
	case plan.Projection:
		source, err := Open(n.Source, kv)
		if err != nil {
			return nil, err
		}
		colIndex := columnIndexOf(n.Source)
		return &projectionIter{source: source, exprs: n.Expressions, colIndex: colIndex}, nil
	default:
		return nil, fmt.Errorf("%w: plan node is not readable", plan.ErrNotImplemented)
	}
}

// Execute runs node against kv, applying any catalog/KV mutation as a side
// effect, and returns an iterator over any rows it produces (empty for pure
// DDL). This is the single entry point the state machine driver uses for
// every applied command (spec.md §4.1 apply loop / §4.6 "CreateTable and
// DropTable produce no rows; they mutate the catalog as a side effect").
func Execute(node plan.Node, kv catalog.KVWriter) (Iterator, error) {
	switch n := node.(type) {
	case plan.CreateTable:
		if err := catalog.CreateTable(kv, n.Schema); err != nil {
			return nil, err
		}
		return &emptyIter{}, nil
	case plan.DropTable:
		if err := catalog.DropTable(kv, n.Name); err != nil {
			return nil, err
		}
		return &emptyIter{}, nil
	default:
		return Open(node, kv)
	}
}

// columnIndexOf builds the name->row-index map a Projection needs to
// evaluate ColumnRef expressions, when its source is a Scan. Nothing has no
// columns; the planner already rejected any ColumnRef against it.
func columnIndexOf(source plan.Node) map[string]int {
	scan, ok := source.(plan.Scan)
	if !ok {
		return nil
	}
	idx := make(map[string]int, len(scan.Table.Columns))
	for i, c := range scan.Table.Columns {
		idx[c.Name] = i
	}
	return idx
}

type emptyIter struct{ done bool }

func (e *emptyIter) Next() ([]value.Value, error) {
	return nil, io.EOF
}

type onceIter struct {
	row  []value.Value
	done bool
}

func (o *onceIter) Next() ([]value.Value, error) {
	if o.done {
		return nil, io.EOF
	}
	o.done = true
	return o.row, nil
}

type sliceIter struct {
	rows [][]value.Value
	pos  int
}

func (s *sliceIter) Next() ([]value.Value, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

type projectionIter struct {
	source   Iterator
	exprs    []ast.Expr
	colIndex map[string]int
}

func (p *projectionIter) Next() ([]value.Value, error) {
	row, err := p.source.Next()
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(p.exprs))
	for i, e := range p.exprs {
		v, err := Eval(e, row, p.colIndex)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Collect drains it into a slice, for callers (tests, the client API) that
// want the whole result rather than streaming it.
func Collect(it Iterator) ([][]value.Value, error) {
	var rows [][]value.Value
	for {
		row, err := it.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}
