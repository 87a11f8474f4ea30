package validate

import (
	"testing"

	"github.com/schemalang/core/schema"
	"github.com/stretchr/testify/assert"
)

func floatPtr(f float64) *float64 { return &f }

func TestRangeValidatorApplies(t *testing.T) {
	v := &RangeValidator{}
	assert.True(t, v.Applies(&schema.Slot{MinimumValue: floatPtr(0)}))
	assert.True(t, v.Applies(&schema.Slot{MaximumValue: floatPtr(10)}))
	assert.False(t, v.Applies(&schema.Slot{}))
}

func TestRangeValidatorBounds(t *testing.T) {
	v := &RangeValidator{}
	slot := &schema.Slot{Name: "age", MinimumValue: floatPtr(0), MaximumValue: floatPtr(120)}

	assert.Empty(t, v.Validate(float64(30), slot, &Context{}))

	issues := v.Validate(float64(-1), slot, &Context{})
	assert.Len(t, issues, 1)
	assert.Equal(t, "below_minimum", issues[0].Code)

	issues = v.Validate(float64(200), slot, &Context{})
	assert.Len(t, issues, 1)
	assert.Equal(t, "above_maximum", issues[0].Code)
}

func TestRangeValidatorIgnoresNonNumericValues(t *testing.T) {
	v := &RangeValidator{}
	slot := &schema.Slot{Name: "age", MinimumValue: floatPtr(0)}
	assert.Empty(t, v.Validate("not a number", slot, &Context{}))
}

func TestRangeValidatorMultivalued(t *testing.T) {
	v := &RangeValidator{}
	slot := &schema.Slot{Name: "scores", MaximumValue: floatPtr(100), Multivalued: true}
	issues := v.Validate([]any{float64(50), float64(150)}, slot, &Context{})
	assert.Len(t, issues, 1)
}

func TestRangeValidatorNilValueIsNoop(t *testing.T) {
	v := &RangeValidator{}
	slot := &schema.Slot{Name: "age", MinimumValue: floatPtr(0)}
	assert.Empty(t, v.Validate(nil, slot, &Context{}))
}
