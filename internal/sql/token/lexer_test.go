package token_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raftsql/raftsql/internal/sql/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexKeywordsAreCaseInsensitive(t *testing.T) {
	toks, err := token.Lex("select * from Movies")
	require.NoError(t, err)
	require.Equal(t, []token.Kind{token.Keyword, token.Asterisk, token.Keyword, token.Ident, token.EOF}, kinds(toks))
	require.Equal(t, "SELECT", toks[0].Text)
	require.Equal(t, "Movies", toks[3].Text)
}

func TestLexStringEscaping(t *testing.T) {
	toks, err := token.Lex(`SELECT 'Literal with ''single'' and "double" quotes'`)
	require.NoError(t, err)
	require.Equal(t, token.String, toks[1].Kind)
	require.Equal(t, `Literal with 'single' and "double" quotes`, toks[1].Text)
}

func TestLexNumbers(t *testing.T) {
	toks, err := token.Lex("1 3.14")
	require.NoError(t, err)
	require.Equal(t, token.Number, toks[0].Kind)
	require.Equal(t, "1", toks[0].Text)
	require.Equal(t, token.Number, toks[1].Kind)
	require.Equal(t, "3.14", toks[1].Text)
}

func TestLexOperators(t *testing.T) {
	toks, err := token.Lex("<= <> >= != < > =")
	require.NoError(t, err)
	require.Equal(t, []token.Kind{
		token.LtEq, token.NotEq, token.GtEq, token.NotEq, token.Lt, token.Gt, token.Eq, token.EOF,
	}, kinds(toks))
}

func TestLexUnterminatedStringFails(t *testing.T) {
	_, err := token.Lex("'abc")
	require.Error(t, err)
	var perr *token.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestLexUnexpectedCharacterFails(t *testing.T) {
	_, err := token.Lex("@")
	require.Error(t, err)
}

func TestLexUnicodeStringLiteral(t *testing.T) {
	toks, err := token.Lex(`SELECT 'Hi! 👋'`)
	require.NoError(t, err)
	require.Equal(t, "Hi! 👋", toks[1].Text)
}
