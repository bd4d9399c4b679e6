// Package parser implements spec.md §4.4's grammar: token sequence in, a
// single ast.Stmt out.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/raftsql/raftsql/internal/sql/ast"
	"github.com/raftsql/raftsql/internal/sql/token"
	"github.com/raftsql/raftsql/internal/value"
)

// Parse lexes and parses a single SQL statement.
func Parse(sql string) (ast.Stmt, error) {
	tokens, err := token.Lex(sql)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	stmt, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	if !p.atEOF() {
		return nil, p.errf("unexpected trailing input: %s", p.cur().Text)
	}
	return stmt, nil
}

type parser struct {
	tokens []token.Token
	pos    int
}

func (p *parser) cur() token.Token  { return p.tokens[p.pos] }
func (p *parser) atEOF() bool       { return p.cur().Kind == token.EOF }
func (p *parser) advance() token.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errf(format string, args ...interface{}) error {
	return &token.ParseError{Msg: fmt.Sprintf(format, args...), Pos: p.cur().Pos}
}

func (p *parser) isKeyword(kw string) bool {
	return p.cur().Kind == token.Keyword && p.cur().Text == kw
}

func (p *parser) expectKeyword(kw string) error {
	if !p.isKeyword(kw) {
		return p.errf("expected %s, got %s", kw, p.cur())
	}
	p.advance()
	return nil
}

func (p *parser) expectKind(k token.Kind) (token.Token, error) {
	if p.cur().Kind != k {
		return token.Token{}, p.errf("expected %s, got %s", k, p.cur())
	}
	return p.advance(), nil
}

func (p *parser) parseIdent() (string, error) {
	t, err := p.expectKind(token.Ident)
	if err != nil {
		return "", err
	}
	return t.Text, nil
}

// parseStmt implements `stmt := create | select` plus the supplemental
// DROP TABLE / INSERT / UPDATE / DELETE productions (spec.md §4.4 grammar is
// explicitly abridged; spec.md §3's Table lifecycle and §4.5's planner both
// name DROP TABLE, and §4.5 names Insert/Delete/Update operators, so the
// parser recognizes all of their surface syntax even where the planner
// returns NotImplemented for the latter three).
func (p *parser) parseStmt() (ast.Stmt, error) {
	switch {
	case p.isKeyword("CREATE"):
		return p.parseCreateTable()
	case p.isKeyword("DROP"):
		return p.parseDropTable()
	case p.isKeyword("SELECT"):
		return p.parseSelect()
	case p.isKeyword("INSERT"):
		return p.parseInsert()
	case p.isKeyword("UPDATE"):
		return p.parseUpdate()
	case p.isKeyword("DELETE"):
		return p.parseDelete()
	default:
		return nil, p.errf("expected statement, got %s", p.cur())
	}
}

// create := CREATE TABLE ident '(' column (',' column)* ')'
func (p *parser) parseCreateTable() (ast.Stmt, error) {
	p.advance() // CREATE
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKind(token.OpenParen); err != nil {
		return nil, err
	}
	var cols []ast.ColumnDef
	for {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if p.cur().Kind == token.Comma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectKind(token.CloseParen); err != nil {
		return nil, err
	}
	return ast.CreateTable{Name: name, Columns: cols}, nil
}

// column := ident type [PRIMARY KEY] [NULL | NOT NULL]
func (p *parser) parseColumnDef() (ast.ColumnDef, error) {
	name, err := p.parseIdent()
	if err != nil {
		return ast.ColumnDef{}, err
	}
	typ, err := p.parseDataType()
	if err != nil {
		return ast.ColumnDef{}, err
	}
	col := ast.ColumnDef{Name: name, Type: typ}
	for {
		switch {
		case p.isKeyword("PRIMARY"):
			p.advance()
			if err := p.expectKeyword("KEY"); err != nil {
				return ast.ColumnDef{}, err
			}
			if col.PrimaryKey {
				return ast.ColumnDef{}, p.errf("column %s: PRIMARY KEY specified twice", name)
			}
			col.PrimaryKey = true
		case p.isKeyword("NOT"):
			p.advance()
			if err := p.expectKeyword("NULL"); err != nil {
				return ast.ColumnDef{}, err
			}
			if col.NullSet {
				return ast.ColumnDef{}, p.errf("column %s: NULL/NOT NULL specified twice", name)
			}
			col.NullSet = true
			col.Nullable = false
		case p.isKeyword("NULL"):
			p.advance()
			if col.NullSet {
				return ast.ColumnDef{}, p.errf("column %s: NULL/NOT NULL specified twice", name)
			}
			if col.PrimaryKey {
				return ast.ColumnDef{}, p.errf("column %s: primary key column cannot be explicitly NULL", name)
			}
			col.NullSet = true
			col.Nullable = true
		default:
			return col, nil
		}
	}
}

func (p *parser) parseDataType() (value.DataType, error) {
	if p.cur().Kind != token.Keyword {
		return 0, p.errf("expected a column type, got %s", p.cur())
	}
	switch p.cur().Text {
	case "INTEGER":
		p.advance()
		return value.TypeInteger, nil
	case "FLOAT":
		p.advance()
		return value.TypeFloat, nil
	case "BOOLEAN":
		p.advance()
		return value.TypeBoolean, nil
	case "VARCHAR":
		p.advance()
		return value.TypeVarchar, nil
	default:
		return 0, p.errf("expected a column type, got %s", p.cur().Text)
	}
}

// DROP TABLE ident
func (p *parser) parseDropTable() (ast.Stmt, error) {
	p.advance() // DROP
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	return ast.DropTable{Name: name}, nil
}

// select := SELECT proj_list [FROM ident (',' ident)*] [WHERE expr]
func (p *parser) parseSelect() (ast.Stmt, error) {
	p.advance() // SELECT
	sel := ast.Select{}
	if p.cur().Kind == token.Asterisk {
		p.advance()
		sel.Star = true
	} else {
		labels, err := p.parseProjList()
		if err != nil {
			return nil, err
		}
		sel.Projection = labels
	}
	if p.isKeyword("FROM") {
		p.advance()
		for {
			name, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			sel.From = append(sel.From, name)
			if p.cur().Kind == token.Comma {
				p.advance()
				continue
			}
			break
		}
	}
	if p.isKeyword("WHERE") {
		p.advance()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		sel.Where = where
	}
	return sel, nil
}

// proj_list := '*' | expr_label (',' expr_label)*
func (p *parser) parseProjList() ([]ast.ExprLabel, error) {
	var labels []ast.ExprLabel
	for {
		label, err := p.parseExprLabel()
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
		if p.cur().Kind == token.Comma {
			p.advance()
			continue
		}
		break
	}
	return labels, nil
}

// expr_label := expr [AS? ident]
func (p *parser) parseExprLabel() (ast.ExprLabel, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return ast.ExprLabel{}, err
	}
	label := ast.ExprLabel{Expr: expr}
	if p.isKeyword("AS") {
		p.advance()
		alias, err := p.parseIdent()
		if err != nil {
			return ast.ExprLabel{}, err
		}
		label.Alias = alias
		return label, nil
	}
	if p.cur().Kind == token.Ident {
		label.Alias = p.advance().Text
	}
	return label, nil
}

// INSERT INTO ident ['(' ident (',' ident)* ')'] VALUES '(' expr (',' expr)* ')' (',' '(' ... ')')*
func (p *parser) parseInsert() (ast.Stmt, error) {
	p.advance() // INSERT
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	ins := ast.Insert{Table: table}
	if p.cur().Kind == token.OpenParen {
		p.advance()
		for {
			name, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			ins.Columns = append(ins.Columns, name)
			if p.cur().Kind == token.Comma {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expectKind(token.CloseParen); err != nil {
			return nil, err
		}
	}
	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	for {
		if _, err := p.expectKind(token.OpenParen); err != nil {
			return nil, err
		}
		var row []ast.Expr
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			row = append(row, e)
			if p.cur().Kind == token.Comma {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expectKind(token.CloseParen); err != nil {
			return nil, err
		}
		ins.Rows = append(ins.Rows, row)
		if p.cur().Kind == token.Comma {
			p.advance()
			continue
		}
		break
	}
	return ins, nil
}

// UPDATE ident SET ident '=' expr (',' ident '=' expr)* [WHERE expr]
func (p *parser) parseUpdate() (ast.Stmt, error) {
	p.advance() // UPDATE
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}
	upd := ast.Update{Table: table, Assignments: map[string]ast.Expr{}}
	for {
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKind(token.Eq); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		upd.Assignments[name] = e
		if p.cur().Kind == token.Comma {
			p.advance()
			continue
		}
		break
	}
	if p.isKeyword("WHERE") {
		p.advance()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		upd.Where = where
	}
	return upd, nil
}

// DELETE FROM ident [WHERE expr]
func (p *parser) parseDelete() (ast.Stmt, error) {
	p.advance() // DELETE
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	del := ast.Delete{Table: table}
	if p.isKeyword("WHERE") {
		p.advance()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		del.Where = where
	}
	return del, nil
}

// Expression grammar (supplemental, beyond spec.md §4.4's bare `literal`
// production): standard precedence climbing over OR, AND, comparison, and
// additive/multiplicative operators, bottoming out at literals and column
// references. The planner accepts these expressions in a projection, over
// either no FROM clause (constants only) or a single table; a WHERE clause
// is parsed but the planner rejects it with NotImplemented.
func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("OR") {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryOp{Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("AND") {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryOp{Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (ast.Expr, error) {
	if p.isKeyword("NOT") {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.UnaryOp{Op: "NOT", Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	var op string
	switch p.cur().Kind {
	case token.Eq:
		op = "="
	case token.NotEq:
		op = "<>"
	case token.Lt:
		op = "<"
	case token.LtEq:
		op = "<="
	case token.Gt:
		op = ">"
	case token.GtEq:
		op = ">="
	default:
		if p.isKeyword("IS") {
			p.advance()
			negate := false
			if p.isKeyword("NOT") {
				p.advance()
				negate = true
			}
			if err := p.expectKeyword("NULL"); err != nil {
				return nil, err
			}
			op := "IS NULL"
			if negate {
				op = "IS NOT NULL"
			}
			return ast.UnaryOp{Op: op, Operand: left}, nil
		}
		return left, nil
	}
	p.advance()
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return ast.BinaryOp{Op: op, Left: left, Right: right}, nil
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.Plus || p.cur().Kind == token.Minus {
		op := "+"
		if p.cur().Kind == token.Minus {
			op = "-"
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.Asterisk || p.cur().Kind == token.Slash {
		op := "*"
		if p.cur().Kind == token.Slash {
			op = "/"
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.cur().Kind == token.Minus {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.UnaryOp{Op: "-", Operand: operand}, nil
	}
	return p.parsePrimary()
}

// literal := NULL | TRUE | FALSE | number | string
func (p *parser) parsePrimary() (ast.Expr, error) {
	t := p.cur()
	switch {
	case t.Kind == token.OpenParen:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKind(token.CloseParen); err != nil {
			return nil, err
		}
		return e, nil
	case t.Kind == token.Keyword && t.Text == "NULL":
		p.advance()
		return ast.Literal{Value: value.Null}, nil
	case t.Kind == token.Keyword && t.Text == "TRUE":
		p.advance()
		return ast.Literal{Value: value.NewBoolean(true)}, nil
	case t.Kind == token.Keyword && t.Text == "FALSE":
		p.advance()
		return ast.Literal{Value: value.NewBoolean(false)}, nil
	case t.Kind == token.Number:
		p.advance()
		return parseNumberLiteral(t.Text, t.Pos)
	case t.Kind == token.String:
		p.advance()
		if len(t.Text) > value.MaxStringBytes {
			return nil, &token.ParseError{Msg: "string literal exceeds 1024 bytes", Pos: t.Pos}
		}
		return ast.Literal{Value: value.NewString(t.Text)}, nil
	case t.Kind == token.Ident:
		p.advance()
		ref := ast.ColumnRef{Name: t.Text}
		if p.cur().Kind == token.Dot {
			p.advance()
			name, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			ref = ast.ColumnRef{Table: t.Text, Name: name}
		}
		return ref, nil
	default:
		return nil, p.errf("expected an expression, got %s", t)
	}
}

func parseNumberLiteral(text string, pos int) (ast.Expr, error) {
	if strings.Contains(text, ".") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, &token.ParseError{Msg: fmt.Sprintf("invalid float literal %q", text), Pos: pos}
		}
		return ast.Literal{Value: value.NewFloat(f)}, nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, &token.ParseError{Msg: fmt.Sprintf("invalid integer literal %q", text), Pos: pos}
	}
	return ast.Literal{Value: value.NewInteger(i)}, nil
}
