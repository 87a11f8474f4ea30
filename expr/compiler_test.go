package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileUnknownFunctionRejected(t *testing.T) {
	node, err := Parse(`totallyMadeUp(1)`)
	require.NoError(t, err)
	funcs := NewFunctions()
	_, err = Compile("totallyMadeUp(1)", node, funcs, 1)
	require.Error(t, err)
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
}

func TestCompileTracksAccessedAndCalled(t *testing.T) {
	node, err := Parse(`len({name}) > 0`)
	require.NoError(t, err)
	funcs := NewFunctions()
	ce, err := Compile("len({name}) > 0", node, funcs, 1)
	require.NoError(t, err)
	assert.True(t, ce.AccessedVariables["name"])
	assert.True(t, ce.CalledFunctions["len"])
	assert.False(t, ce.IsPure)
}

func TestCompilePureWithNoCalls(t *testing.T) {
	node, err := Parse(`{a} + {b}`)
	require.NoError(t, err)
	ce, err := Compile("{a} + {b}", node, NewFunctions(), 1)
	require.NoError(t, err)
	assert.True(t, ce.IsPure)
}

func TestCompileComplexityWeighting(t *testing.T) {
	node, err := Parse(`len({a})`)
	require.NoError(t, err)
	ce, err := Compile("len({a})", node, NewFunctions(), 0)
	require.NoError(t, err)
	// OpLoad(1) + OpCall(10) + OpReturn(1) = 12 at optimization level 0.
	assert.Equal(t, 12, ce.Complexity)
}

func TestCompileConstantFoldingReducesInstructions(t *testing.T) {
	node, err := Parse(`1 + 2`)
	require.NoError(t, err)
	unfolded, err := Compile("1 + 2", node, NewFunctions(), 0)
	require.NoError(t, err)
	folded, err := Compile("1 + 2", node, NewFunctions(), 1)
	require.NoError(t, err)
	assert.Less(t, len(folded.Instructions), len(unfolded.Instructions))
}

func TestCompileShortCircuitAtLevelTwo(t *testing.T) {
	node, err := Parse(`{a} && {b}`)
	require.NoError(t, err)
	ce, err := Compile("{a} && {b}", node, NewFunctions(), 2)
	require.NoError(t, err)
	var sawJump bool
	for _, instr := range ce.Instructions {
		if instr.Op == OpJumpIfFalse {
			sawJump = true
		}
	}
	assert.True(t, sawJump, "level 2 compilation should lower && to a short-circuit jump")
}

func TestCompileClampsOptimizationLevel(t *testing.T) {
	node, err := Parse(`1 + 1`)
	require.NoError(t, err)
	ce, err := Compile("1 + 1", node, NewFunctions(), 99)
	require.NoError(t, err)
	assert.Equal(t, 3, ce.OptimizationLevel)
}
