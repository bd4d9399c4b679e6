// Package ast implements spec.md §4.4's abstract syntax tree: tagged sum
// types for statements and expressions, following the design note to
// represent recursive tree shapes as tagged variants rather than a class
// hierarchy.
package ast

import "github.com/raftsql/raftsql/internal/value"

// Stmt is any top-level statement the parser can produce.
type Stmt interface{ isStmt() }

// ColumnDef is one column in a CREATE TABLE's column list.
type ColumnDef struct {
	Name       string
	Type       value.DataType
	PrimaryKey bool
	// NullSet is true if NULL or NOT NULL was explicit in the source.
	NullSet  bool
	Nullable bool
}

// CreateTable is `CREATE TABLE ident (column, ...)`.
type CreateTable struct {
	Name    string
	Columns []ColumnDef
}

func (CreateTable) isStmt() {}

// DropTable is `DROP TABLE ident`. The grammar in spec.md §4.4 shows only
// create/select productions explicitly but DROP TABLE is named throughout
// the rest of the spec (§3 Table lifecycle, §4.5 planner); its AST shape
// mirrors CreateTable's single-identifier form.
type DropTable struct {
	Name string
}

func (DropTable) isStmt() {}

// ExprLabel is one projected expression plus its optional alias
// (`expr [AS? ident]`, spec.md §4.4).
type ExprLabel struct {
	Expr  Expr
	Alias string // "" if unaliased
}

// Select is `SELECT proj_list [FROM ident (',' ident)*]`.
type Select struct {
	Star       bool // true for `SELECT *`
	Projection []ExprLabel
	From       []string
	Where      Expr // nil if absent; stubbed per spec.md §4.4
}

func (Select) isStmt() {}

// Insert is `INSERT INTO ident (...)? VALUES (...), ...`. Stubbed per
// spec.md §4.4/§4.5: parsed into an AST node, NotImplemented at plan time.
type Insert struct {
	Table   string
	Columns []string
	Rows    [][]Expr
}

func (Insert) isStmt() {}

// Update is `UPDATE ident SET col = expr, ... [WHERE expr]`. Stubbed.
type Update struct {
	Table       string
	Assignments map[string]Expr
	Where       Expr
}

func (Update) isStmt() {}

// Delete is `DELETE FROM ident [WHERE expr]`. Stubbed.
type Delete struct {
	Table string
	Where Expr
}

func (Delete) isStmt() {}

// Expr is any expression node.
type Expr interface{ isExpr() }

// Literal is NULL | TRUE | FALSE | number | string (spec.md §4.4 literal).
type Literal struct {
	Value value.Value
}

func (Literal) isExpr() {}

// ColumnRef is a bare identifier used as an expression (free identifier,
// spec.md §4.5 "free identifiers yield UnknownColumn").
type ColumnRef struct {
	Table string // "" if unqualified
	Name  string
}

func (ColumnRef) isExpr() {}

// BinaryOp is an arithmetic/comparison/boolean expression. The planner
// accepts it in a projection (no constant folding is done) and
// internal/sql/exec evaluates it row by row.
type BinaryOp struct {
	Op    string
	Left  Expr
	Right Expr
}

func (BinaryOp) isExpr() {}

// UnaryOp is NOT expr or -expr.
type UnaryOp struct {
	Op      string
	Operand Expr
}

func (UnaryOp) isExpr() {}
