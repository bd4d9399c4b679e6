package exec

import (
	"errors"
	"fmt"

	"github.com/raftsql/raftsql/internal/sql/ast"
	"github.com/raftsql/raftsql/internal/sql/plan"
	"github.com/raftsql/raftsql/internal/value"
)

// ErrDivideByZero is a runtime arithmetic error, deterministic across
// replicas since every node evaluates the same committed command.
var ErrDivideByZero = errors.New("division by zero")

// Eval evaluates expr against row, using colIndex to resolve ColumnRef names
// to positions in row (nil when there is no source table, e.g. a constant
// SELECT). Constants ignore row entirely (spec.md §4.6).
func Eval(expr ast.Expr, row []value.Value, colIndex map[string]int) (value.Value, error) {
	switch e := expr.(type) {
	case ast.Literal:
		return e.Value, nil
	case ast.ColumnRef:
		idx, ok := colIndex[e.Name]
		if !ok || idx >= len(row) {
			return value.Value{}, fmt.Errorf("%w: %s", plan.ErrUnknownColumn, e.Name)
		}
		return row[idx], nil
	case ast.UnaryOp:
		return evalUnary(e, row, colIndex)
	case ast.BinaryOp:
		return evalBinary(e, row, colIndex)
	default:
		return value.Value{}, fmt.Errorf("%w: unsupported expression", plan.ErrNotImplemented)
	}
}

func evalUnary(e ast.UnaryOp, row []value.Value, colIndex map[string]int) (value.Value, error) {
	switch e.Op {
	case "IS NULL", "IS NOT NULL":
		v, err := Eval(e.Operand, row, colIndex)
		if err != nil {
			return value.Value{}, err
		}
		isNull := v.IsNull()
		if e.Op == "IS NOT NULL" {
			isNull = !isNull
		}
		return value.NewBoolean(isNull), nil
	}

	v, err := Eval(e.Operand, row, colIndex)
	if err != nil {
		return value.Value{}, err
	}
	switch e.Op {
	case "-":
		switch v.Kind() {
		case value.KindNull:
			return value.Null, nil
		case value.KindInteger:
			// int64 negation wraps deterministically in Go (two's
			// complement); negating math.MinInt64 yields itself.
			return value.NewInteger(-v.Int()), nil
		case value.KindFloat:
			return value.NewFloat(-v.Float()), nil
		default:
			return value.Value{}, fmt.Errorf("%w: unary - on %s", plan.ErrTypeMismatch, v.Kind())
		}
	case "NOT":
		if v.IsNull() {
			return value.Null, nil
		}
		if v.Kind() != value.KindBoolean {
			return value.Value{}, fmt.Errorf("%w: NOT on %s", plan.ErrTypeMismatch, v.Kind())
		}
		return value.NewBoolean(!v.Bool()), nil
	default:
		return value.Value{}, fmt.Errorf("%w: unary operator %s", plan.ErrNotImplemented, e.Op)
	}
}

func evalBinary(e ast.BinaryOp, row []value.Value, colIndex map[string]int) (value.Value, error) {
	if e.Op == "AND" || e.Op == "OR" {
		return evalLogical(e, row, colIndex)
	}

	l, err := Eval(e.Left, row, colIndex)
	if err != nil {
		return value.Value{}, err
	}
	r, err := Eval(e.Right, row, colIndex)
	if err != nil {
		return value.Value{}, err
	}

	switch e.Op {
	case "+", "-", "*", "/":
		return evalArith(e.Op, l, r)
	case "=", "<>", "<", "<=", ">", ">=":
		return evalCompare(e.Op, l, r)
	default:
		return value.Value{}, fmt.Errorf("%w: binary operator %s", plan.ErrNotImplemented, e.Op)
	}
}

// evalLogical implements three-valued AND/OR: Null propagates except where a
// short-circuiting FALSE (for AND) or TRUE (for OR) determines the result
// regardless of the other operand's nullity.
func evalLogical(e ast.BinaryOp, row []value.Value, colIndex map[string]int) (value.Value, error) {
	l, err := Eval(e.Left, row, colIndex)
	if err != nil {
		return value.Value{}, err
	}
	r, err := Eval(e.Right, row, colIndex)
	if err != nil {
		return value.Value{}, err
	}
	if !l.IsNull() && l.Kind() != value.KindBoolean {
		return value.Value{}, fmt.Errorf("%w: %s on %s", plan.ErrTypeMismatch, e.Op, l.Kind())
	}
	if !r.IsNull() && r.Kind() != value.KindBoolean {
		return value.Value{}, fmt.Errorf("%w: %s on %s", plan.ErrTypeMismatch, e.Op, r.Kind())
	}

	if e.Op == "AND" {
		if (!l.IsNull() && !l.Bool()) || (!r.IsNull() && !r.Bool()) {
			return value.NewBoolean(false), nil
		}
		if l.IsNull() || r.IsNull() {
			return value.Null, nil
		}
		return value.NewBoolean(true), nil
	}
	// OR
	if (!l.IsNull() && l.Bool()) || (!r.IsNull() && r.Bool()) {
		return value.NewBoolean(true), nil
	}
	if l.IsNull() || r.IsNull() {
		return value.Null, nil
	}
	return value.NewBoolean(false), nil
}

// evalArith implements spec.md §4.6's numeric semantics: Integer+Integer ->
// Integer with wrap-around (Go's native int64 overflow, deterministic across
// replicas since it is a pure function of the bit pattern, not platform
// behavior), Integer+Float -> Float, and any operand Null -> Null.
func evalArith(op string, l, r value.Value) (value.Value, error) {
	if l.IsNull() || r.IsNull() {
		return value.Null, nil
	}
	if l.Kind() == value.KindInteger && r.Kind() == value.KindInteger {
		a, b := l.Int(), r.Int()
		switch op {
		case "+":
			return value.NewInteger(a + b), nil
		case "-":
			return value.NewInteger(a - b), nil
		case "*":
			return value.NewInteger(a * b), nil
		case "/":
			if b == 0 {
				return value.Value{}, ErrDivideByZero
			}
			return value.NewInteger(a / b), nil
		}
	}
	af, aok := asFloat(l)
	bf, bok := asFloat(r)
	if !aok || !bok {
		return value.Value{}, fmt.Errorf("%w: %s %s %s", plan.ErrTypeMismatch, l.Kind(), op, r.Kind())
	}
	switch op {
	case "+":
		return value.NewFloat(af + bf), nil
	case "-":
		return value.NewFloat(af - bf), nil
	case "*":
		return value.NewFloat(af * bf), nil
	case "/":
		if bf == 0 {
			return value.Value{}, ErrDivideByZero
		}
		return value.NewFloat(af / bf), nil
	}
	return value.Value{}, fmt.Errorf("%w: operator %s", plan.ErrNotImplemented, op)
}

func asFloat(v value.Value) (float64, bool) {
	switch v.Kind() {
	case value.KindFloat:
		return v.Float(), true
	case value.KindInteger:
		return float64(v.Int()), true
	default:
		return 0, false
	}
}

// evalCompare implements three-valued comparison: either operand Null
// yields Null (spec.md §4.6).
func evalCompare(op string, l, r value.Value) (value.Value, error) {
	if l.IsNull() || r.IsNull() {
		return value.Null, nil
	}
	var cmp int
	switch {
	case l.Kind() == r.Kind():
		cmp = l.Compare(r)
	case isNumeric(l) && isNumeric(r):
		lf, _ := asFloat(l)
		rf, _ := asFloat(r)
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		default:
			cmp = 0
		}
	default:
		return value.Value{}, fmt.Errorf("%w: %s %s %s", plan.ErrTypeMismatch, l.Kind(), op, r.Kind())
	}
	switch op {
	case "=":
		return value.NewBoolean(cmp == 0), nil
	case "<>":
		return value.NewBoolean(cmp != 0), nil
	case "<":
		return value.NewBoolean(cmp < 0), nil
	case "<=":
		return value.NewBoolean(cmp <= 0), nil
	case ">":
		return value.NewBoolean(cmp > 0), nil
	case ">=":
		return value.NewBoolean(cmp >= 0), nil
	default:
		return value.Value{}, fmt.Errorf("%w: operator %s", plan.ErrNotImplemented, op)
	}
}

func isNumeric(v value.Value) bool {
	return v.Kind() == value.KindInteger || v.Kind() == value.KindFloat
}
