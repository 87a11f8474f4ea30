package validate

import "github.com/schemalang/core/schema"

// LengthValidator checks a slot's string min_length/max_length bounds
// (§4.6), counting runes rather than bytes.
type LengthValidator struct{}

func (v *LengthValidator) Name() string { return "length" }

func (v *LengthValidator) Applies(slot *schema.Slot) bool {
	return slot.MinLength != nil || slot.MaxLength != nil
}

func (v *LengthValidator) Validate(value any, slot *schema.Slot, ctx *Context) []Issue {
	if value == nil {
		return nil
	}
	var issues []Issue
	for _, elem := range valuesOf(value, slot) {
		s, ok := elem.(string)
		if !ok {
			continue
		}
		n := len([]rune(s))
		if slot.MinLength != nil && n < *slot.MinLength {
			issues = append(issues, NewIssue(v.Name(), "too_short", fmtPath(ctx, slot.Name),
				"value of slot {slot} has length {n}, shorter than the minimum {min}",
				map[string]any{"slot": slot.Name, "n": n, "min": *slot.MinLength}))
		}
		if slot.MaxLength != nil && n > *slot.MaxLength {
			issues = append(issues, NewIssue(v.Name(), "too_long", fmtPath(ctx, slot.Name),
				"value of slot {slot} has length {n}, longer than the maximum {max}",
				map[string]any{"slot": slot.Name, "n": n, "max": *slot.MaxLength}))
		}
	}
	return issues
}
