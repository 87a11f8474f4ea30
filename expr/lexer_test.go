package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexerTokensInOrder(t *testing.T) {
	l := newLexer(`{age} >= 18 && "adult" != null`)

	var kinds []TokenKind
	for {
		tok, err := l.next()
		require.NoError(t, err)
		kinds = append(kinds, tok.Kind)
		if tok.Kind == TokEOF {
			break
		}
	}

	assert.Equal(t, []TokenKind{
		TokVariable, TokGe, TokNumber, TokAndAnd, TokString, TokNe, TokNull, TokEOF,
	}, kinds)
}

func TestLexerVariablePath(t *testing.T) {
	l := newLexer(`{address.city}`)
	tok, err := l.next()
	require.NoError(t, err)
	assert.Equal(t, TokVariable, tok.Kind)
	assert.Equal(t, "address.city", tok.Text)
}

func TestLexerVariableErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty braces", "{}"},
		{"unterminated", "{foo"},
		{"leading digit", "{1abc}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLexer(tt.src)
			_, err := l.next()
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, ParseInvalidVariable, perr.Kind)
		})
	}
}

func TestLexerStringEscapes(t *testing.T) {
	l := newLexer(`"line1\nline2\t\"quoted\""`)
	tok, err := l.next()
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\t\"quoted\"", tok.Text)
}

func TestLexerUnterminatedString(t *testing.T) {
	l := newLexer(`"unterminated`)
	_, err := l.next()
	require.Error(t, err)
}

func TestLexerNumber(t *testing.T) {
	tests := map[string]float64{
		"0":      0,
		"42":     42,
		"3.14":   3.14,
		"0.5":    0.5,
		"100":    100,
	}
	for src, want := range tests {
		l := newLexer(src)
		tok, err := l.next()
		require.NoError(t, err)
		assert.Equal(t, TokNumber, tok.Kind)
		assert.Equal(t, want, tok.Number)
	}
}

func TestLexerTwoCharOperators(t *testing.T) {
	tests := map[string]TokenKind{
		"==": TokEq, "!=": TokNe, "<=": TokLe, ">=": TokGe, "&&": TokAndAnd, "||": TokOrOr,
	}
	for src, want := range tests {
		l := newLexer(src)
		tok, err := l.next()
		require.NoError(t, err)
		assert.Equal(t, want, tok.Kind, "source %q", src)
	}
}

func TestLexerUnexpectedByte(t *testing.T) {
	l := newLexer("@")
	_, err := l.next()
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ParseUnexpectedToken, perr.Kind)
}
