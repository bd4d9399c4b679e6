package exec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raftsql/raftsql/internal/sql/ast"
	"github.com/raftsql/raftsql/internal/value"
)

func lit(v value.Value) ast.Expr { return ast.Literal{Value: v} }

func TestEvalArithIntegerWrapAround(t *testing.T) {
	v, err := evalArith("+", value.NewInteger(1<<63-1), value.NewInteger(1))
	require.NoError(t, err)
	require.Equal(t, int64(-1<<63), v.Int())
}

func TestEvalArithIntegerPlusFloatPromotes(t *testing.T) {
	v, err := evalArith("+", value.NewInteger(1), value.NewFloat(0.5))
	require.NoError(t, err)
	require.Equal(t, value.KindFloat, v.Kind())
	require.Equal(t, 1.5, v.Float())
}

func TestEvalArithNullPropagates(t *testing.T) {
	v, err := evalArith("+", value.Null, value.NewInteger(1))
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestEvalArithDivideByZero(t *testing.T) {
	_, err := evalArith("/", value.NewInteger(1), value.NewInteger(0))
	require.ErrorIs(t, err, ErrDivideByZero)
}

func TestEvalLogicalAndShortCircuitsOnFalse(t *testing.T) {
	e := ast.BinaryOp{Op: "AND", Left: lit(value.NewBoolean(false)), Right: lit(value.Null)}
	v, err := Eval(e, nil, nil)
	require.NoError(t, err)
	require.False(t, v.IsNull())
	require.False(t, v.Bool())
}

func TestEvalLogicalAndNullPropagatesWithoutFalse(t *testing.T) {
	e := ast.BinaryOp{Op: "AND", Left: lit(value.NewBoolean(true)), Right: lit(value.Null)}
	v, err := Eval(e, nil, nil)
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestEvalLogicalOrShortCircuitsOnTrue(t *testing.T) {
	e := ast.BinaryOp{Op: "OR", Left: lit(value.NewBoolean(true)), Right: lit(value.Null)}
	v, err := Eval(e, nil, nil)
	require.NoError(t, err)
	require.True(t, v.Bool())
}

func TestEvalCompareNullYieldsNull(t *testing.T) {
	v, err := evalCompare("=", value.Null, value.NewInteger(1))
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestEvalCompareMixedNumeric(t *testing.T) {
	v, err := evalCompare("<", value.NewInteger(1), value.NewFloat(1.5))
	require.NoError(t, err)
	require.True(t, v.Bool())
}

func TestEvalCompareTypeMismatch(t *testing.T) {
	_, err := evalCompare("=", value.NewInteger(1), value.NewBoolean(true))
	require.Error(t, err)
}

func TestEvalUnaryNegation(t *testing.T) {
	v, err := Eval(ast.UnaryOp{Op: "-", Operand: lit(value.NewInteger(5))}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, int64(-5), v.Int())
}

func TestEvalUnaryIsNull(t *testing.T) {
	v, err := Eval(ast.UnaryOp{Op: "IS NULL", Operand: lit(value.Null)}, nil, nil)
	require.NoError(t, err)
	require.True(t, v.Bool())
}

func TestEvalColumnRefUnknown(t *testing.T) {
	_, err := Eval(ast.ColumnRef{Name: "missing"}, []value.Value{value.NewInteger(1)}, map[string]int{"id": 0})
	require.Error(t, err)
}
