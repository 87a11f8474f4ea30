package validate

import "github.com/schemalang/core/schema"

// CardinalityValidator checks that a multivalued slot's array length falls
// within [minimum_cardinality, maximum_cardinality], and that a
// single-valued slot was not given an array (§4.6).
type CardinalityValidator struct{}

func (v *CardinalityValidator) Name() string { return "cardinality" }

func (v *CardinalityValidator) Applies(slot *schema.Slot) bool {
	return slot.Multivalued || slot.MinimumCardinality != nil || slot.MaximumCardinality != nil
}

func (v *CardinalityValidator) Validate(value any, slot *schema.Slot, ctx *Context) []Issue {
	if value == nil {
		return nil
	}
	arr, isArray := value.([]any)
	if !slot.Multivalued {
		if isArray {
			return []Issue{NewIssue(v.Name(), "unexpected_array", fmtPath(ctx, slot.Name),
				"slot {slot} is single-valued but received an array", map[string]any{"slot": slot.Name})}
		}
		return nil
	}
	if !isArray {
		return []Issue{NewIssue(v.Name(), "expected_array", fmtPath(ctx, slot.Name),
			"slot {slot} is multivalued but did not receive an array", map[string]any{"slot": slot.Name})}
	}
	n := len(arr)
	if slot.MinimumCardinality != nil && n < *slot.MinimumCardinality {
		return []Issue{NewIssue(v.Name(), "cardinality_too_low", fmtPath(ctx, slot.Name),
			"slot {slot} has {n} values, fewer than the minimum {min}",
			map[string]any{"slot": slot.Name, "n": n, "min": *slot.MinimumCardinality})}
	}
	if slot.MaximumCardinality != nil && n > *slot.MaximumCardinality {
		return []Issue{NewIssue(v.Name(), "cardinality_too_high", fmtPath(ctx, slot.Name),
			"slot {slot} has {n} values, more than the maximum {max}",
			map[string]any{"slot": slot.Name, "n": n, "max": *slot.MaximumCardinality})}
	}
	return nil
}
