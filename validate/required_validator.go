package validate

import "github.com/schemalang/core/schema"

// RequiredValidator checks that a required slot is present and non-null
// (§4.6). It applies only to required slots; Validate never flags a
// non-required slot.
type RequiredValidator struct{}

func (v *RequiredValidator) Name() string { return "required" }

func (v *RequiredValidator) Applies(slot *schema.Slot) bool { return slot.Required }

func (v *RequiredValidator) Validate(value any, slot *schema.Slot, ctx *Context) []Issue {
	if !slot.Required {
		return nil
	}
	if value == nil {
		return []Issue{NewIssue(v.Name(), "missing_required_slot", fmtPath(ctx, slot.Name),
			"slot {slot} is required but absent", map[string]any{"slot": slot.Name})}
	}
	return nil
}
