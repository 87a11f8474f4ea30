package validate

import (
	"testing"

	"github.com/schemalang/core/schema"
	"github.com/stretchr/testify/assert"
)

func TestPermissibleValueValidatorApplies(t *testing.T) {
	v := &PermissibleValueValidator{}
	assert.True(t, v.Applies(&schema.Slot{Range: "Status"}))
	assert.False(t, v.Applies(&schema.Slot{}))
}

func TestPermissibleValueValidatorMembership(t *testing.T) {
	v := &PermissibleValueValidator{}
	s := schemaWithClassAndEnum()
	slot := &schema.Slot{Name: "status", Range: "Status"}
	ctx := &Context{Schema: s}

	assert.Empty(t, v.Validate("active", slot, ctx))

	issues := v.Validate("retired", slot, ctx)
	assert.Len(t, issues, 1)
	assert.Equal(t, "not_permissible", issues[0].Code)
}

func TestPermissibleValueValidatorNonEnumRangeIsNoop(t *testing.T) {
	v := &PermissibleValueValidator{}
	s := schemaWithClassAndEnum()
	slot := &schema.Slot{Name: "owner", Range: "Person"}
	ctx := &Context{Schema: s}
	assert.Empty(t, v.Validate("anything", slot, ctx))
}

func TestPermissibleValueValidatorNilValueIsNoop(t *testing.T) {
	v := &PermissibleValueValidator{}
	s := schemaWithClassAndEnum()
	slot := &schema.Slot{Name: "status", Range: "Status"}
	assert.Empty(t, v.Validate(nil, slot, &Context{Schema: s}))
}
