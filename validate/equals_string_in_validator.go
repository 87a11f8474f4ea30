package validate

import "github.com/schemalang/core/schema"

// EqualsStringInValidator checks that a string value belongs to a slot's
// finite equals_string_in set (§4.6).
type EqualsStringInValidator struct{}

func (v *EqualsStringInValidator) Name() string { return "equals_string_in" }

func (v *EqualsStringInValidator) Applies(slot *schema.Slot) bool {
	return len(slot.EqualsStringIn) > 0
}

func (v *EqualsStringInValidator) Validate(value any, slot *schema.Slot, ctx *Context) []Issue {
	if len(slot.EqualsStringIn) == 0 || value == nil {
		return nil
	}
	var issues []Issue
	for _, elem := range valuesOf(value, slot) {
		s, ok := elem.(string)
		if !ok {
			issues = append(issues, NewIssue(v.Name(), "type_mismatch", fmtPath(ctx, slot.Name),
				"value of slot {slot} with equals_string_in must be a string, got {value}",
				map[string]any{"slot": slot.Name, "value": elem}))
			continue
		}
		found := false
		for _, allowed := range slot.EqualsStringIn {
			if s == allowed {
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, NewIssue(v.Name(), "not_in_set", fmtPath(ctx, slot.Name),
				"value {value} of slot {slot} is not one of the allowed values",
				map[string]any{"slot": slot.Name, "value": s}))
		}
	}
	return issues
}
