package validate

import (
	"fmt"

	"github.com/schemalang/core/schema"
)

// RecursionValidator bounds traversal of a self-referential object graph
// (§4.6.2): for a class with recursion_options.max_depth = k, no path
// through slots whose range is the class itself (or an ancestor) may
// exceed k edges, whether or not that path ever revisits the same object.
// Depth is checked unconditionally on every step; cycle detection on top of
// that keys each visited object by its identifier slot when the class
// declares one (falling back to a structural rendering of the instance
// otherwise) so a tight cycle is flagged the first time it wraps past
// max_depth rather than waiting for plain depth to catch up.
type RecursionValidator struct{}

func (v *RecursionValidator) Name() string { return "recursion" }

func (v *RecursionValidator) Validate(instance map[string]any, class *schema.Class, ctx *Context) []Issue {
	if class.RecursionOptions == nil || class.RecursionOptions.MaxDepth <= 0 {
		return nil
	}
	return v.walk(instance, class, ctx, 0, class.RecursionOptions.MaxDepth, map[string]int{})
}

func (v *RecursionValidator) walk(instance map[string]any, class *schema.Class, ctx *Context, depth, maxDepth int, visiting map[string]int) []Issue {
	if depth > maxDepth {
		return []Issue{NewIssue(v.Name(), "recursion_depth_exceeded", ctx.Path,
			"self-referential path through {class} exceeds max_depth {max}",
			map[string]any{"class": class.Name, "max": maxDepth})}
	}
	key := identityKey(instance, class, ctx)
	if firstDepth, seen := visiting[key]; seen && depth-firstDepth > maxDepth {
		return []Issue{NewIssue(v.Name(), "recursion_depth_exceeded", ctx.Path,
			"self-referential path through {class} exceeds max_depth {max}",
			map[string]any{"class": class.Name, "max": maxDepth})}
	}
	if _, seen := visiting[key]; !seen {
		visiting[key] = depth
		defer delete(visiting, key)
	}

	var issues []Issue
	for _, slotName := range class.EffectiveSlots {
		slot := schema.EffectiveSlot(ctx.Schema, class, slotName)
		if slot == nil {
			continue
		}
		rangeClass, ok := selfReferentialRange(ctx.Schema, slot.Range, class)
		if !ok {
			continue
		}
		value := instance[slotName]
		for _, elem := range valuesOf(value, slot) {
			nested, ok := elem.(map[string]any)
			if !ok {
				continue
			}
			childCtx := ctx.child(joinPath(ctx.Path, slotName), nested, rangeClass)
			issues = append(issues, v.walk(nested, rangeClass, childCtx, depth+1, maxDepth, visiting)...)
		}
	}
	return issues
}

// selfReferentialRange resolves rangeName to a Class and reports whether
// that class is self or an ancestor of self along is_a.
func selfReferentialRange(s *schema.Schema, rangeName string, self *schema.Class) (*schema.Class, bool) {
	if s == nil || rangeName == "" {
		return nil, false
	}
	target, ok := s.Classes.Get(rangeName)
	if !ok {
		return nil, false
	}
	cur := self
	for cur != nil {
		if cur.Name == target.Name {
			return target, true
		}
		if cur.IsA == "" {
			return nil, false
		}
		next, ok := s.Classes.Get(cur.IsA)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

func identityKey(instance map[string]any, class *schema.Class, ctx *Context) string {
	for _, slotName := range class.EffectiveSlots {
		slot := schema.EffectiveSlot(ctx.Schema, class, slotName)
		if slot != nil && slot.Identifier {
			if id, ok := instance[slotName]; ok {
				return fmt.Sprintf("%s#%v", class.Name, id)
			}
		}
	}
	return fmt.Sprintf("%s#%v", class.Name, instance)
}
