package validate

import (
	"testing"

	"github.com/schemalang/core/schema"
	"github.com/stretchr/testify/assert"
)

func predicateWith(slotName string, cond *schema.SlotCondition) *schema.Predicate {
	pred := &schema.Predicate{SlotConditions: schema.NewOrderedMap[*schema.SlotCondition]()}
	pred.SlotConditions.Set(slotName, cond)
	return pred
}

func TestConditionalValidatorPostconditionsOnMatch(t *testing.T) {
	v := &ConditionalValidator{}
	c := schema.NewClass("Account")
	c.Rules = []schema.Rule{{
		Title:          "active requires email",
		Preconditions:  predicateWith("status", &schema.SlotCondition{Equals: "active"}),
		Postconditions: predicateWith("email", &schema.SlotCondition{Required: true}),
	}}

	issues := v.Validate(map[string]any{"status": "active"}, c, &Context{})
	assert.Len(t, issues, 1)
	assert.Equal(t, "conditional_violation", issues[0].Code)

	issues = v.Validate(map[string]any{"status": "active", "email": "a@b.com"}, c, &Context{})
	assert.Empty(t, issues)
}

func TestConditionalValidatorElseConditionsWhenPreconditionFails(t *testing.T) {
	v := &ConditionalValidator{}
	c := schema.NewClass("Account")
	c.Rules = []schema.Rule{{
		Preconditions:  predicateWith("status", &schema.SlotCondition{Equals: "active"}),
		Postconditions: predicateWith("email", &schema.SlotCondition{Required: true}),
		ElseConditions: predicateWith("reason", &schema.SlotCondition{Required: true}),
	}}

	issues := v.Validate(map[string]any{"status": "inactive"}, c, &Context{})
	assert.Len(t, issues, 1)

	issues = v.Validate(map[string]any{"status": "inactive", "reason": "archived"}, c, &Context{})
	assert.Empty(t, issues)
}

func TestConditionalValidatorIfRequired(t *testing.T) {
	v := &ConditionalValidator{}
	c := schema.NewClass("Account")
	c.IfRequired = schema.NewOrderedMap[*schema.ConditionalRequirement]()
	c.IfRequired.Set("status", &schema.ConditionalRequirement{
		Condition:    &schema.SlotCondition{Equals: "closed"},
		ThenRequired: []string{"closed_at"},
	})

	issues := v.Validate(map[string]any{"status": "closed"}, c, &Context{})
	assert.Len(t, issues, 1)
	assert.Equal(t, "if_required_violation", issues[0].Code)

	issues = v.Validate(map[string]any{"status": "closed", "closed_at": "2026-01-01"}, c, &Context{})
	assert.Empty(t, issues)

	issues = v.Validate(map[string]any{"status": "open"}, c, &Context{})
	assert.Empty(t, issues)
}

func TestCheckSlotConditionVocabulary(t *testing.T) {
	ctx := &Context{}

	assert.True(t, checkSlotCondition(&schema.SlotCondition{Equals: "x"}, "x", ctx))
	assert.False(t, checkSlotCondition(&schema.SlotCondition{Equals: "x"}, "y", ctx))

	n := 5.0
	assert.True(t, checkSlotCondition(&schema.SlotCondition{EqualsNumber: &n}, float64(5), ctx))
	assert.False(t, checkSlotCondition(&schema.SlotCondition{EqualsNumber: &n}, float64(6), ctx))

	assert.True(t, checkSlotCondition(&schema.SlotCondition{NotEquals: "x"}, "y", ctx))
	assert.False(t, checkSlotCondition(&schema.SlotCondition{NotEquals: "x"}, "x", ctx))

	assert.True(t, checkSlotCondition(&schema.SlotCondition{In: []any{"a", "b"}}, "a", ctx))
	assert.False(t, checkSlotCondition(&schema.SlotCondition{In: []any{"a", "b"}}, "c", ctx))

	assert.True(t, checkSlotCondition(&schema.SlotCondition{NotIn: []any{"a", "b"}}, "c", ctx))
	assert.False(t, checkSlotCondition(&schema.SlotCondition{NotIn: []any{"a", "b"}}, "a", ctx))

	assert.True(t, checkSlotCondition(&schema.SlotCondition{Pattern: "^[a-z]+$"}, "abc", ctx))
	assert.False(t, checkSlotCondition(&schema.SlotCondition{Pattern: "^[a-z]+$"}, "ABC", ctx))

	min, max := 1.0, 10.0
	assert.True(t, checkSlotCondition(&schema.SlotCondition{MinimumValue: &min, MaximumValue: &max}, float64(5), ctx))
	assert.False(t, checkSlotCondition(&schema.SlotCondition{MinimumValue: &min}, float64(0), ctx))
	assert.False(t, checkSlotCondition(&schema.SlotCondition{MaximumValue: &max}, float64(11), ctx))

	assert.True(t, checkSlotCondition(&schema.SlotCondition{Required: true}, "present", ctx))
	assert.False(t, checkSlotCondition(&schema.SlotCondition{Required: true}, nil, ctx))

	assert.True(t, checkSlotCondition(&schema.SlotCondition{Forbidden: true}, nil, ctx))
	assert.False(t, checkSlotCondition(&schema.SlotCondition{Forbidden: true}, "present", ctx))

	assert.True(t, checkSlotCondition(&schema.SlotCondition{Absent: true}, nil, ctx))
	assert.False(t, checkSlotCondition(&schema.SlotCondition{Absent: true}, "present", ctx))

	assert.True(t, checkSlotCondition(nil, "anything", ctx))
}

func TestCheckSlotConditionVacuousWhenValueAbsentAndNoValueChecks(t *testing.T) {
	ctx := &Context{}
	assert.True(t, checkSlotCondition(&schema.SlotCondition{}, nil, ctx))
	assert.False(t, checkSlotCondition(&schema.SlotCondition{Equals: "x"}, nil, ctx))
}

func TestCheckSlotConditionAndCombinator(t *testing.T) {
	ctx := &Context{}
	min := 1.0
	cond := &schema.SlotCondition{And: []*schema.SlotCondition{
		{MinimumValue: &min},
		{Pattern: `^\d+$`},
	}}
	assert.False(t, checkSlotCondition(cond, "abc", ctx))
	assert.True(t, checkSlotCondition(cond, "5", ctx))
}

func TestCheckSlotConditionOrCombinator(t *testing.T) {
	ctx := &Context{}
	cond := &schema.SlotCondition{Or: []*schema.SlotCondition{
		{Equals: "a"},
		{Equals: "b"},
	}}
	assert.True(t, checkSlotCondition(cond, "a", ctx))
	assert.True(t, checkSlotCondition(cond, "b", ctx))
	assert.False(t, checkSlotCondition(cond, "c", ctx))
}

func TestCheckSlotConditionNotCombinator(t *testing.T) {
	ctx := &Context{}
	cond := &schema.SlotCondition{Not: &schema.SlotCondition{Equals: "a"}}
	assert.False(t, checkSlotCondition(cond, "a", ctx))
	assert.True(t, checkSlotCondition(cond, "b", ctx))
}

func TestConditionalValidatorRuleWithOrCombinator(t *testing.T) {
	v := &ConditionalValidator{}
	c := schema.NewClass("Account")
	c.Rules = []schema.Rule{{
		Title: "pending or active requires email",
		Preconditions: predicateWith("status", &schema.SlotCondition{Or: []*schema.SlotCondition{
			{Equals: "pending"},
			{Equals: "active"},
		}}),
		Postconditions: predicateWith("email", &schema.SlotCondition{Required: true}),
	}}

	issues := v.Validate(map[string]any{"status": "pending"}, c, &Context{})
	assert.Len(t, issues, 1)

	issues = v.Validate(map[string]any{"status": "pending", "email": "a@b.com"}, c, &Context{})
	assert.Empty(t, issues)

	issues = v.Validate(map[string]any{"status": "closed"}, c, &Context{})
	assert.Empty(t, issues)
}
