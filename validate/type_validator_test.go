package validate

import (
	"testing"

	"github.com/schemalang/core/schema"
	"github.com/stretchr/testify/assert"
)

func schemaWithClassAndEnum() *schema.Schema {
	s := schema.NewSchema("Test")
	s.Classes.Set("Person", schema.NewClass("Person"))
	status := schema.NewEnum("Status")
	status.PermissibleValues = []schema.PermissibleValue{{Text: "active"}}
	s.Enums.Set("Status", status)
	return s
}

func TestTypeValidatorAppliesWhenRangeSet(t *testing.T) {
	v := &TypeValidator{}
	assert.True(t, v.Applies(&schema.Slot{Range: "string"}))
	assert.False(t, v.Applies(&schema.Slot{}))
}

func TestTypeValidatorScalarMismatch(t *testing.T) {
	v := &TypeValidator{}
	slot := &schema.Slot{Name: "age", Range: "integer"}
	ctx := &Context{Schema: schema.NewSchema("T")}
	issues := v.Validate("not a number", slot, ctx)
	assert.Len(t, issues, 1)
	assert.Equal(t, "type_mismatch", issues[0].Code)
}

func TestTypeValidatorIntegerRejectsFraction(t *testing.T) {
	v := &TypeValidator{}
	slot := &schema.Slot{Name: "age", Range: "integer"}
	ctx := &Context{Schema: schema.NewSchema("T")}
	issues := v.Validate(float64(3.5), slot, ctx)
	assert.Len(t, issues, 1)
}

func TestTypeValidatorClassRangeExpectsObject(t *testing.T) {
	v := &TypeValidator{}
	s := schemaWithClassAndEnum()
	slot := &schema.Slot{Name: "owner", Range: "Person"}
	ctx := &Context{Schema: s}
	issues := v.Validate("not-an-object", slot, ctx)
	assert.Len(t, issues, 1)

	issues = v.Validate(map[string]any{"name": "Alice"}, slot, ctx)
	assert.Empty(t, issues)
}

func TestTypeValidatorEnumRangeExpectsString(t *testing.T) {
	v := &TypeValidator{}
	s := schemaWithClassAndEnum()
	slot := &schema.Slot{Name: "status", Range: "Status"}
	ctx := &Context{Schema: s}
	issues := v.Validate(float64(1), slot, ctx)
	assert.Len(t, issues, 1)

	issues = v.Validate("active", slot, ctx)
	assert.Empty(t, issues)
}

func TestTypeValidatorUnresolvedRangeIsNoop(t *testing.T) {
	v := &TypeValidator{}
	slot := &schema.Slot{Name: "mystery", Range: "Unknown"}
	ctx := &Context{Schema: schema.NewSchema("T")}
	issues := v.Validate("anything", slot, ctx)
	assert.Empty(t, issues)
}

func TestTypeValidatorMultivaluedChecksEachElement(t *testing.T) {
	v := &TypeValidator{}
	slot := &schema.Slot{Name: "scores", Range: "integer", Multivalued: true}
	ctx := &Context{Schema: schema.NewSchema("T")}
	issues := v.Validate([]any{float64(1), "bad", float64(3)}, slot, ctx)
	assert.Len(t, issues, 1)
}
