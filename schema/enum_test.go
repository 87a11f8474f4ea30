package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnumHasText(t *testing.T) {
	e := NewEnum("Status")
	e.PermissibleValues = []PermissibleValue{{Text: "active"}, {Text: "inactive"}}
	assert.True(t, e.HasText("active"))
	assert.False(t, e.HasText("archived"))
}

func TestEnumDuplicateTexts(t *testing.T) {
	e := NewEnum("Status")
	e.PermissibleValues = []PermissibleValue{{Text: "active"}, {Text: "inactive"}, {Text: "active"}}
	assert.Equal(t, []string{"active"}, e.DuplicateTexts())
}

func TestEnumDuplicateTextsNoneFound(t *testing.T) {
	e := NewEnum("Status")
	e.PermissibleValues = []PermissibleValue{{Text: "a"}, {Text: "b"}}
	assert.Empty(t, e.DuplicateTexts())
}

func TestIsBuiltinBaseType(t *testing.T) {
	assert.True(t, IsBuiltinBaseType("string"))
	assert.True(t, IsBuiltinBaseType("decimal"))
	assert.False(t, IsBuiltinBaseType("Person"))
}

func TestParseAndCompareDecimal(t *testing.T) {
	a, err := ParseDecimal("10.50")
	assert.NoError(t, err)
	b, err := ParseDecimal("10.25")
	assert.NoError(t, err)
	assert.Equal(t, 1, CompareDecimal(a, b))

	c, err := ParseDecimal("10.50")
	assert.NoError(t, err)
	assert.Equal(t, 0, CompareDecimal(a, c))
}
