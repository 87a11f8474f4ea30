package validate

import (
	"testing"

	"github.com/schemalang/core/schema"
	"github.com/stretchr/testify/assert"
)

func TestEqualsStringInValidatorApplies(t *testing.T) {
	v := &EqualsStringInValidator{}
	assert.True(t, v.Applies(&schema.Slot{EqualsStringIn: []string{"a", "b"}}))
	assert.False(t, v.Applies(&schema.Slot{}))
}

func TestEqualsStringInValidatorMembership(t *testing.T) {
	v := &EqualsStringInValidator{}
	slot := &schema.Slot{Name: "status", EqualsStringIn: []string{"open", "closed"}}

	assert.Empty(t, v.Validate("open", slot, &Context{}))

	issues := v.Validate("pending", slot, &Context{})
	assert.Len(t, issues, 1)
	assert.Equal(t, "not_in_set", issues[0].Code)
}

func TestEqualsStringInValidatorMultivalued(t *testing.T) {
	v := &EqualsStringInValidator{}
	slot := &schema.Slot{Name: "tags", EqualsStringIn: []string{"a", "b"}, Multivalued: true}
	issues := v.Validate([]any{"a", "c"}, slot, &Context{})
	assert.Len(t, issues, 1)
}

func TestEqualsStringInValidatorNilValueIsNoop(t *testing.T) {
	v := &EqualsStringInValidator{}
	slot := &schema.Slot{Name: "status", EqualsStringIn: []string{"open"}}
	assert.Empty(t, v.Validate(nil, slot, &Context{}))
}

func TestEqualsStringInValidatorNonStringValueRaisesTypeMismatch(t *testing.T) {
	v := &EqualsStringInValidator{}
	slot := &schema.Slot{Name: "status", EqualsStringIn: []string{"open", "closed"}}

	issues := v.Validate(float64(42), slot, &Context{})
	assert.Len(t, issues, 1)
	assert.Equal(t, "type_mismatch", issues[0].Code)
}
