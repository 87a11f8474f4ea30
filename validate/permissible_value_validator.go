package validate

import "github.com/schemalang/core/schema"

// PermissibleValueValidator checks that a value belongs to its slot's
// range Enum's permissible value texts (§4.6). Applies is a coarse
// pre-filter (any slot with a range might resolve to an enum); Validate
// does the actual enum lookup and is a no-op for non-enum ranges.
type PermissibleValueValidator struct{}

func (v *PermissibleValueValidator) Name() string { return "permissible_value" }

func (v *PermissibleValueValidator) Applies(slot *schema.Slot) bool { return slot.Range != "" }

func (v *PermissibleValueValidator) Validate(value any, slot *schema.Slot, ctx *Context) []Issue {
	if slot.Range == "" || value == nil || ctx.Schema == nil {
		return nil
	}
	enum, ok := ctx.Schema.Enums.Get(slot.Range)
	if !ok {
		return nil
	}
	var issues []Issue
	for _, elem := range valuesOf(value, slot) {
		s, ok := elem.(string)
		if !ok {
			continue
		}
		if !enum.HasText(s) {
			issues = append(issues, NewIssue(v.Name(), "not_permissible", fmtPath(ctx, slot.Name),
				"value {value} of slot {slot} is not a permissible value of enum {enum}",
				map[string]any{"slot": slot.Name, "value": s, "enum": slot.Range}))
		}
	}
	return issues
}
