package validate

import "github.com/schemalang/core/schema"

// RangeValidator checks a slot's numeric minimum_value/maximum_value bounds
// (§4.6).
type RangeValidator struct{}

func (v *RangeValidator) Name() string { return "range" }

func (v *RangeValidator) Applies(slot *schema.Slot) bool {
	return slot.MinimumValue != nil || slot.MaximumValue != nil
}

func (v *RangeValidator) Validate(value any, slot *schema.Slot, ctx *Context) []Issue {
	if value == nil {
		return nil
	}
	var issues []Issue
	for _, elem := range valuesOf(value, slot) {
		n, ok := asFloat(elem)
		if !ok {
			continue
		}
		if slot.MinimumValue != nil && n < *slot.MinimumValue {
			issues = append(issues, NewIssue(v.Name(), "below_minimum", fmtPath(ctx, slot.Name),
				"value {value} of slot {slot} is below the minimum {min}",
				map[string]any{"slot": slot.Name, "value": n, "min": *slot.MinimumValue}))
		}
		if slot.MaximumValue != nil && n > *slot.MaximumValue {
			issues = append(issues, NewIssue(v.Name(), "above_maximum", fmtPath(ctx, slot.Name),
				"value {value} of slot {slot} is above the maximum {max}",
				map[string]any{"slot": slot.Name, "value": n, "max": *slot.MaximumValue}))
		}
	}
	return issues
}
