package validate

import (
	"testing"

	"github.com/schemalang/core/schema"
	"github.com/stretchr/testify/assert"
)

func TestRequiredValidatorAppliesOnlyToRequiredSlots(t *testing.T) {
	v := &RequiredValidator{}
	required := &schema.Slot{Name: "age", Required: true}
	optional := &schema.Slot{Name: "nickname"}
	assert.True(t, v.Applies(required))
	assert.False(t, v.Applies(optional))
}

func TestRequiredValidatorFlagsMissingValue(t *testing.T) {
	v := &RequiredValidator{}
	slot := &schema.Slot{Name: "age", Required: true}
	issues := v.Validate(nil, slot, &Context{})
	assert.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Equal(t, "missing_required_slot", issues[0].Code)
}

func TestRequiredValidatorPassesWhenPresent(t *testing.T) {
	v := &RequiredValidator{}
	slot := &schema.Slot{Name: "age", Required: true}
	issues := v.Validate(float64(30), slot, &Context{})
	assert.Empty(t, issues)
}

func TestRequiredValidatorIgnoresOptionalSlots(t *testing.T) {
	v := &RequiredValidator{}
	slot := &schema.Slot{Name: "nickname"}
	issues := v.Validate(nil, slot, &Context{})
	assert.Empty(t, issues)
}
