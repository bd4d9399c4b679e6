// Package token implements spec.md §4.3's lexer: SQL text in, a flat token
// sequence out.
package token

import "fmt"

// Kind identifies a token's grammatical category.
type Kind uint8

const (
	EOF Kind = iota
	Keyword
	Ident
	Number
	String
	Comma
	OpenParen
	CloseParen
	Asterisk
	Plus
	Minus
	Slash
	Eq
	NotEq
	Lt
	LtEq
	Gt
	GtEq
	Dot
)

func (k Kind) String() string {
	names := map[Kind]string{
		EOF: "EOF", Keyword: "Keyword", Ident: "Ident", Number: "Number",
		String: "String", Comma: "Comma", OpenParen: "OpenParen",
		CloseParen: "CloseParen", Asterisk: "Asterisk", Plus: "Plus",
		Minus: "Minus", Slash: "Slash", Eq: "Eq", NotEq: "NotEq", Lt: "Lt",
		LtEq: "LtEq", Gt: "Gt", GtEq: "GtEq", Dot: "Dot",
	}
	if n, ok := names[k]; ok {
		return n
	}
	return "Unknown"
}

// Token is one lexed unit. Text holds the keyword's canonical uppercase form
// for Keyword, the literal identifier for Ident, the raw literal text for
// Number (integer or decimal, spec.md §4.3), and the unescaped contents for
// String.
type Token struct {
	Kind Kind
	Text string
	Pos  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Text, t.Pos)
}

// Keywords is the fixed, case-insensitive keyword set of spec.md §4.3.
var Keywords = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "CREATE": true,
	"TABLE": true, "INSERT": true, "INTO": true, "VALUES": true,
	"UPDATE": true, "SET": true, "DELETE": true, "DROP": true,
	"BEGIN": true, "COMMIT": true, "ROLLBACK": true, "EXPLAIN": true,
	"GROUP": true, "BY": true, "HAVING": true, "ORDER": true, "AS": true,
	"AND": true, "OR": true, "NOT": true, "NULL": true, "TRUE": true,
	"FALSE": true, "PRIMARY": true, "KEY": true, "INTEGER": true,
	"FLOAT": true, "BOOLEAN": true, "VARCHAR": true, "IS": true,
}
