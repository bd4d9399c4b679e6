// Package plan implements spec.md §4.5: lowering an ast.Stmt into a tree of
// relational operators, resolving names against the catalog.
package plan

import (
	"errors"
	"fmt"

	"github.com/raftsql/raftsql/internal/catalog"
	"github.com/raftsql/raftsql/internal/sql/ast"
	"github.com/raftsql/raftsql/internal/value"
)

// PlanError kinds, spec.md §7.
var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
	ErrTypeMismatch  = errors.New("type mismatch")
	ErrNotImplemented = errors.New("not implemented")
)

// Node is any plan operator (spec.md §4.5's "tree of operators"), a tagged
// sum in the same style as the ast package.
type Node interface {
	isNode()
	// Mutating reports whether applying this plan changes the catalog or KV
	// store (spec.md §4.6 "Read-only vs mutating").
	Mutating() bool
}

// CreateTable emits the canonical Table with nullable defaults applied.
type CreateTable struct {
	Schema catalog.Table
}

func (CreateTable) isNode()        {}
func (CreateTable) Mutating() bool { return true }

// DropTable removes a table by name.
type DropTable struct {
	Name string
}

func (DropTable) isNode()        {}
func (DropTable) Mutating() bool { return true }

// Nothing produces a single empty row, the source for constant SELECTs.
type Nothing struct{}

func (Nothing) isNode()        {}
func (Nothing) Mutating() bool { return false }

// Projection evaluates Expressions against each row pulled from Source.
// Labels[i] is "?" for an anonymous expression (spec.md §4.5).
type Projection struct {
	Source      Node
	Labels      []string
	Expressions []ast.Expr
}

func (Projection) isNode()        {}
func (p Projection) Mutating() bool { return p.Source.Mutating() }

// Scan yields every row of Table in primary-key order.
type Scan struct {
	Table catalog.Table
}

func (Scan) isNode()        {}
func (Scan) Mutating() bool { return false }

// Insert, Delete, Update are named by spec.md §4.5 but may be left
// NotImplemented; Plan() returns ErrNotImplemented for all three rather than
// constructing these nodes, since no executor case exists for them yet
// (spec.md §4.4: "implementers may leave them unimplemented").
type Insert struct {
	Table catalog.Table
	Rows  [][]value.Value
}

func (Insert) isNode()        {}
func (Insert) Mutating() bool { return true }

type Delete struct {
	Table catalog.Table
}

func (Delete) isNode()        {}
func (Delete) Mutating() bool { return true }

type Update struct {
	Table catalog.Table
}

func (Update) isNode()        {}
func (Update) Mutating() bool { return true }

// Plan lowers stmt into a plan tree, resolving names against cat.
func Plan(stmt ast.Stmt, cat catalog.KVReader) (Node, error) {
	switch s := stmt.(type) {
	case ast.CreateTable:
		return planCreateTable(s)
	case ast.DropTable:
		return DropTable{Name: s.Name}, nil
	case ast.Select:
		return planSelect(s, cat)
	case ast.Insert, ast.Update, ast.Delete:
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, stmtName(stmt))
	default:
		return nil, fmt.Errorf("%w: unrecognized statement", ErrNotImplemented)
	}
}

func stmtName(stmt ast.Stmt) string {
	switch stmt.(type) {
	case ast.Insert:
		return "INSERT"
	case ast.Update:
		return "UPDATE"
	case ast.Delete:
		return "DELETE"
	default:
		return "statement"
	}
}

// planCreateTable applies the nullable defaults of spec.md §4.5: non-primary
// columns default nullable, the primary column defaults non-null and must
// never be explicitly nullable.
func planCreateTable(s ast.CreateTable) (Node, error) {
	var pkName string
	pkCount := 0
	seen := map[string]bool{}
	cols := make([]catalog.Column, 0, len(s.Columns))
	for _, c := range s.Columns {
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: duplicate column %s", ErrTypeMismatch, c.Name)
		}
		seen[c.Name] = true

		nullable := true
		if c.PrimaryKey {
			pkCount++
			pkName = c.Name
			nullable = false
			if c.NullSet && c.Nullable {
				return nil, fmt.Errorf("%w: primary key column %s cannot be nullable", ErrTypeMismatch, c.Name)
			}
		} else if c.NullSet {
			nullable = c.Nullable
		}
		cols = append(cols, catalog.Column{Name: c.Name, Type: c.Type, Nullable: nullable})
	}
	if pkCount != 1 {
		return nil, fmt.Errorf("%w: table %s must have exactly one PRIMARY KEY column, found %d", ErrTypeMismatch, s.Name, pkCount)
	}
	return CreateTable{Schema: catalog.Table{Name: s.Name, Columns: cols, PrimaryKey: pkName}}, nil
}

func planSelect(s ast.Select, cat catalog.KVReader) (Node, error) {
	if s.Where != nil {
		return nil, fmt.Errorf("%w: WHERE clause", ErrNotImplemented)
	}
	if len(s.From) > 1 {
		return nil, fmt.Errorf("%w: multi-table FROM (joins)", ErrNotImplemented)
	}

	if len(s.From) == 0 {
		if s.Star {
			return nil, fmt.Errorf("%w: SELECT * requires a FROM clause", ErrUnknownTable)
		}
		return planConstantProjection(s, Nothing{})
	}

	tableName := s.From[0]
	table, ok := catalog.GetTable(cat, tableName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, tableName)
	}
	source := Scan{Table: table}

	if s.Star {
		labels := make([]string, len(table.Columns))
		exprs := make([]ast.Expr, len(table.Columns))
		for i, c := range table.Columns {
			labels[i] = c.Name
			exprs[i] = ast.ColumnRef{Name: c.Name}
		}
		return Projection{Source: source, Labels: labels, Expressions: exprs}, nil
	}

	labels := make([]string, 0, len(s.Projection))
	exprs := make([]ast.Expr, 0, len(s.Projection))
	for _, label := range s.Projection {
		if err := resolveAgainst(label.Expr, table); err != nil {
			return nil, err
		}
		labels = append(labels, labelText(label))
		exprs = append(exprs, label.Expr)
	}
	return Projection{Source: source, Labels: labels, Expressions: exprs}, nil
}

// planConstantProjection lowers a SELECT with no FROM clause: every
// expression must be constant (spec.md §4.5 "free identifiers yield
// UnknownColumn").
func planConstantProjection(s ast.Select, source Node) (Node, error) {
	labels := make([]string, 0, len(s.Projection))
	exprs := make([]ast.Expr, 0, len(s.Projection))
	for _, label := range s.Projection {
		if err := resolveAgainst(label.Expr, catalog.Table{}); err != nil {
			return nil, err
		}
		labels = append(labels, labelText(label))
		exprs = append(exprs, label.Expr)
	}
	return Projection{Source: source, Labels: labels, Expressions: exprs}, nil
}

func labelText(label ast.ExprLabel) string {
	if label.Alias != "" {
		return label.Alias
	}
	return "?"
}

// resolveAgainst walks expr, checking every ColumnRef against table (a zero
// Table when there is no FROM clause, so any ColumnRef is unresolvable).
func resolveAgainst(expr ast.Expr, table catalog.Table) error {
	switch e := expr.(type) {
	case ast.Literal:
		return nil
	case ast.ColumnRef:
		if table.Name == "" || table.ColumnIndex(e.Name) < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, e.Name)
		}
		return nil
	case ast.BinaryOp:
		if err := resolveAgainst(e.Left, table); err != nil {
			return err
		}
		return resolveAgainst(e.Right, table)
	case ast.UnaryOp:
		return resolveAgainst(e.Operand, table)
	default:
		return fmt.Errorf("%w: unsupported expression", ErrNotImplemented)
	}
}
