package value_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raftsql/raftsql/internal/value"
)

func TestEqualNaNOrdersEqualToItself(t *testing.T) {
	nan := value.NewFloat(math.NaN())
	require.True(t, nan.Equal(nan))
}

func TestEqualDifferentKinds(t *testing.T) {
	require.False(t, value.NewInteger(1).Equal(value.NewFloat(1)))
	require.False(t, value.Null.Equal(value.NewBoolean(false)))
}

func TestCompareIntegers(t *testing.T) {
	require.Equal(t, -1, value.NewInteger(1).Compare(value.NewInteger(2)))
	require.Equal(t, 1, value.NewInteger(2).Compare(value.NewInteger(1)))
	require.Equal(t, 0, value.NewInteger(2).Compare(value.NewInteger(2)))
}

func TestCompareFloatNaNSortsGreatest(t *testing.T) {
	nan := value.NewFloat(math.NaN())
	one := value.NewFloat(1.0)
	require.Equal(t, 1, nan.Compare(one))
	require.Equal(t, -1, one.Compare(nan))
	require.Equal(t, 0, nan.Compare(nan))
}

func TestCompareStringsLexicographic(t *testing.T) {
	require.Equal(t, -1, value.NewString("a").Compare(value.NewString("b")))
}

func TestStringRendersSQLLiteral(t *testing.T) {
	require.Equal(t, "NULL", value.Null.String())
	require.Equal(t, "TRUE", value.NewBoolean(true).String())
	require.Equal(t, "FALSE", value.NewBoolean(false).String())
	require.Equal(t, "1", value.NewInteger(1).String())
	require.Equal(t, "3.14", value.NewFloat(3.14).String())
}
