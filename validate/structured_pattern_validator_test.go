package validate

import (
	"testing"

	"github.com/schemalang/core/schema"
	"github.com/stretchr/testify/assert"
)

func TestStructuredPatternValidatorApplies(t *testing.T) {
	v := NewStructuredPatternValidator()
	assert.True(t, v.Applies(&schema.Slot{StructuredPattern: &schema.StructuredPattern{Pattern: "^[a-z]+$"}}))
	assert.False(t, v.Applies(&schema.Slot{}))
	assert.False(t, v.Applies(&schema.Slot{StructuredPattern: &schema.StructuredPattern{}}))
}

func TestStructuredPatternValidatorRegexFullMatch(t *testing.T) {
	v := NewStructuredPatternValidator()
	slot := &schema.Slot{Name: "code", StructuredPattern: &schema.StructuredPattern{Pattern: "[A-Z]{3}"}}

	assert.Empty(t, v.Validate("ABC", slot, &Context{}))

	issues := v.Validate("ABCD", slot, &Context{})
	assert.Len(t, issues, 1)
	assert.Equal(t, "structured_pattern_mismatch", issues[0].Code)
}

func TestStructuredPatternValidatorPartialMatch(t *testing.T) {
	v := NewStructuredPatternValidator()
	slot := &schema.Slot{Name: "code", StructuredPattern: &schema.StructuredPattern{Pattern: "[A-Z]{3}", PartialMatch: true}}
	assert.Empty(t, v.Validate("xxABCxx", slot, &Context{}))
}

func TestStructuredPatternValidatorGlobSyntax(t *testing.T) {
	v := NewStructuredPatternValidator()
	slot := &schema.Slot{Name: "path", StructuredPattern: &schema.StructuredPattern{Pattern: "*.go", Syntax: "glob"}}

	assert.Empty(t, v.Validate("main.go", slot, &Context{}))

	issues := v.Validate("main.py", slot, &Context{})
	assert.Len(t, issues, 1)
}

func TestStructuredPatternValidatorGlobPartialMatch(t *testing.T) {
	v := NewStructuredPatternValidator()
	slot := &schema.Slot{Name: "path", StructuredPattern: &schema.StructuredPattern{Pattern: "*.go*", Syntax: "glob", PartialMatch: true}}
	assert.Empty(t, v.Validate("main.go.bak", slot, &Context{}))
}

func TestStructuredPatternValidatorInterpolation(t *testing.T) {
	v := NewStructuredPatternValidator()
	slot := &schema.Slot{Name: "ref", StructuredPattern: &schema.StructuredPattern{Pattern: "^{prefix}-[0-9]+$", Interpolated: true}}
	ctx := &Context{Instance: map[string]any{"prefix": "ORD"}}

	assert.Empty(t, v.Validate("ORD-123", slot, ctx))

	issues := v.Validate("INV-123", slot, ctx)
	assert.Len(t, issues, 1)
}

func TestStructuredPatternValidatorInvalidPatternReported(t *testing.T) {
	v := NewStructuredPatternValidator()
	slot := &schema.Slot{Name: "code", StructuredPattern: &schema.StructuredPattern{Pattern: "("}}
	issues := v.Validate("abc", slot, &Context{})
	assert.Len(t, issues, 1)
	assert.Equal(t, "invalid_structured_pattern", issues[0].Code)
}

func TestStructuredPatternValidatorNilValueIsNoop(t *testing.T) {
	v := NewStructuredPatternValidator()
	slot := &schema.Slot{Name: "code", StructuredPattern: &schema.StructuredPattern{Pattern: "[A-Z]{3}"}}
	assert.Empty(t, v.Validate(nil, slot, &Context{}))
}
