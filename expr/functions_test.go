package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinLen(t *testing.T) {
	f := NewFunctions()
	v, err := f.Call("len", []Value{String("hello")})
	require.NoError(t, err)
	assert.Equal(t, float64(5), v.AsNumber())

	v, err = f.Call("len", []Value{Array([]Value{Number(1), Number(2), Number(3)})})
	require.NoError(t, err)
	assert.Equal(t, float64(3), v.AsNumber())

	_, err = f.Call("len", []Value{Number(1)})
	require.Error(t, err)
}

func TestBuiltinUpperLowerTrim(t *testing.T) {
	f := NewFunctions()
	v, _ := f.Call("upper", []Value{String("shout")})
	assert.Equal(t, "SHOUT", v.AsString())
	v, _ = f.Call("lower", []Value{String("WHISPER")})
	assert.Equal(t, "whisper", v.AsString())
	v, _ = f.Call("trim", []Value{String("  padded  ")})
	assert.Equal(t, "padded", v.AsString())
}

func TestBuiltinContains(t *testing.T) {
	f := NewFunctions()
	v, err := f.Call("contains", []Value{String("hello world"), String("wor")})
	require.NoError(t, err)
	assert.True(t, v.Truthy())

	v, err = f.Call("contains", []Value{Array([]Value{Number(1), Number(2)}), Number(2)})
	require.NoError(t, err)
	assert.True(t, v.Truthy())

	v, err = f.Call("contains", []Value{Array([]Value{Number(1)}), Number(9)})
	require.NoError(t, err)
	assert.False(t, v.Truthy())
}

func TestBuiltinMatches(t *testing.T) {
	f := NewFunctions()
	v, err := f.Call("matches", []Value{String("abc123"), String(`^[a-z]+\d+$`)})
	require.NoError(t, err)
	assert.True(t, v.Truthy())

	_, err = f.Call("matches", []Value{String("x"), String("(")})
	require.Error(t, err)
}

func TestBuiltinJoin(t *testing.T) {
	f := NewFunctions()
	v, err := f.Call("join", []Value{Array([]Value{String("a"), String("b"), String("c")}), String("-")})
	require.NoError(t, err)
	assert.Equal(t, "a-b-c", v.AsString())

	_, err = f.Call("join", []Value{Array([]Value{Number(1)}), String("-")})
	require.Error(t, err)
}

func TestBuiltinAbs(t *testing.T) {
	f := NewFunctions()
	v, err := f.Call("abs", []Value{Number(-5)})
	require.NoError(t, err)
	assert.Equal(t, float64(5), v.AsNumber())
}

func TestBuiltinMaxMin(t *testing.T) {
	f := NewFunctions()
	v, err := f.Call("max", []Value{Number(3), Number(7), Number(1)})
	require.NoError(t, err)
	assert.Equal(t, float64(7), v.AsNumber())

	v, err = f.Call("min", []Value{Number(3), Number(7), Number(1)})
	require.NoError(t, err)
	assert.Equal(t, float64(1), v.AsNumber())

	_, err = f.Call("max", []Value{String("a"), Number(1)})
	require.Error(t, err)
}

func TestFunctionsArityChecking(t *testing.T) {
	f := NewFunctions()
	_, err := f.Call("len", []Value{String("a"), String("b")})
	require.Error(t, err)
	var eerr *EvaluationError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, EvalInvalidOperands, eerr.Kind)
}

func TestFunctionsUnknownFunction(t *testing.T) {
	f := NewFunctions()
	_, err := f.Call("doesNotExist", nil)
	require.Error(t, err)
	var eerr *EvaluationError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, EvalUnknownFunction, eerr.Kind)
}

func TestFunctionsRegisterFuncOverridesAndChains(t *testing.T) {
	f := NewFunctions()
	f.RegisterFunc("double", FuncSpec{Arity: 1, Pure: true, Fn: func(args []Value) (Value, error) {
		return Number(args[0].AsNumber() * 2), nil
	}})
	v, err := f.Call("double", []Value{Number(21)})
	require.NoError(t, err)
	assert.Equal(t, float64(42), v.AsNumber())

	arity, variadic, pure, ok := f.Lookup("double")
	assert.True(t, ok)
	assert.Equal(t, 1, arity)
	assert.False(t, variadic)
	assert.True(t, pure)
}
