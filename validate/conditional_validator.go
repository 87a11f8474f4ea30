package validate

import (
	"regexp"
	"strings"

	"github.com/schemalang/core/expr"
	"github.com/schemalang/core/schema"
)

// ConditionalValidator evaluates a class's if/then/else rules and
// if_required constraints against one instance (§4.6.1). A Rule's
// preconditions Predicate decides whether its postconditions (on match) or
// else_conditions (otherwise) govern; every failing slot_condition in the
// governing Predicate is collected into a single ConditionalViolation Issue
// per rule.
type ConditionalValidator struct{}

func (v *ConditionalValidator) Name() string { return "conditional" }

func (v *ConditionalValidator) Validate(instance map[string]any, class *schema.Class, ctx *Context) []Issue {
	var issues []Issue
	for _, rule := range class.Rules {
		match := predicateHolds(rule.Preconditions, instance, ctx)
		target := rule.Postconditions
		if !match {
			target = rule.ElseConditions
		}
		if target == nil || target.SlotConditions == nil {
			continue
		}
		var failed []string
		for _, name := range target.SlotConditions.Keys() {
			sc, _ := target.SlotConditions.Get(name)
			if !checkSlotCondition(sc, instance[name], ctx) {
				failed = append(failed, name)
			}
		}
		if len(failed) > 0 {
			issues = append(issues, NewIssue(v.Name(), "conditional_violation", ctx.Path,
				"rule {rule} failed requirements on slots {slots}",
				map[string]any{"rule": ruleName(rule), "slots": strings.Join(failed, ", ")}))
		}
	}

	if class.IfRequired != nil {
		for _, name := range class.IfRequired.Keys() {
			cr, _ := class.IfRequired.Get(name)
			if cr.Condition == nil || !checkSlotCondition(cr.Condition, instance[name], ctx) {
				continue
			}
			for _, req := range cr.ThenRequired {
				if instance[req] == nil {
					issues = append(issues, NewIssue(v.Name(), "if_required_violation", joinPath(ctx.Path, req),
						"slot {slot} is required because slot {condSlot} satisfies its condition",
						map[string]any{"slot": req, "condSlot": name}))
				}
			}
		}
	}
	return issues
}

func ruleName(rule schema.Rule) string {
	if rule.Title != "" {
		return rule.Title
	}
	return "<untitled>"
}

// predicateHolds reports whether every slot_condition in pred holds against
// instance (§4.6.1's "resolved left-to-right, short-circuit" And
// semantics); a nil or empty Predicate holds vacuously.
func predicateHolds(pred *schema.Predicate, instance map[string]any, ctx *Context) bool {
	if pred == nil || pred.SlotConditions == nil {
		return true
	}
	for _, name := range pred.SlotConditions.Keys() {
		sc, _ := pred.SlotConditions.Get(name)
		if !checkSlotCondition(sc, instance[name], ctx) {
			return false
		}
	}
	return true
}

// checkSlotCondition evaluates one SlotCondition against value, realizing
// §4.6.1's Condition vocabulary (Equals/NotEquals/In/NotIn/Present/Absent/
// Matches/GreaterThan/LessThan) plus Expression, evaluated against the
// whole instance via the Expression Engine when ctx.Engine is set, and the
// And/Or/Not combinators that recurse on the same value.
func checkSlotCondition(cond *schema.SlotCondition, value any, ctx *Context) bool {
	if cond == nil {
		return true
	}
	present := value != nil
	if cond.Required && !present {
		return false
	}
	if cond.Forbidden && present {
		return false
	}
	if cond.Absent && present {
		return false
	}
	if !present {
		return !hasValueChecks(cond)
	}
	if cond.Equals != nil && !equalAny(value, cond.Equals) {
		return false
	}
	if cond.EqualsNumber != nil {
		n, ok := asFloat(value)
		if !ok || n != *cond.EqualsNumber {
			return false
		}
	}
	if cond.NotEquals != nil && equalAny(value, cond.NotEquals) {
		return false
	}
	if len(cond.In) > 0 && !inSet(value, cond.In) {
		return false
	}
	if len(cond.NotIn) > 0 && inSet(value, cond.NotIn) {
		return false
	}
	if cond.Pattern != "" {
		s, ok := value.(string)
		if !ok {
			return false
		}
		matched, err := regexp.MatchString(cond.Pattern, s)
		if err != nil || !matched {
			return false
		}
	}
	if cond.MinimumValue != nil {
		n, ok := asFloat(value)
		if !ok || n < *cond.MinimumValue {
			return false
		}
	}
	if cond.MaximumValue != nil {
		n, ok := asFloat(value)
		if !ok || n > *cond.MaximumValue {
			return false
		}
	}
	if cond.Expression != "" {
		if ctx == nil || ctx.Engine == nil {
			return false
		}
		result, err := ctx.Engine.Evaluate(cond.Expression, ctx.SchemaID, exprContext(ctx.Instance))
		if err != nil || !result.Truthy() {
			return false
		}
	}
	for _, sub := range cond.And {
		if !checkSlotCondition(sub, value, ctx) {
			return false
		}
	}
	if len(cond.Or) > 0 {
		matched := false
		for _, sub := range cond.Or {
			if checkSlotCondition(sub, value, ctx) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if cond.Not != nil && checkSlotCondition(cond.Not, value, ctx) {
		return false
	}
	return true
}

func hasValueChecks(cond *schema.SlotCondition) bool {
	return cond.Equals != nil || cond.EqualsNumber != nil || cond.NotEquals != nil ||
		len(cond.In) > 0 || len(cond.NotIn) > 0 || cond.Pattern != "" ||
		cond.MinimumValue != nil || cond.MaximumValue != nil || cond.Expression != "" ||
		len(cond.And) > 0 || len(cond.Or) > 0 || cond.Not != nil
}

func equalAny(value, target any) bool {
	if s, ok := value.(string); ok {
		if t, ok := target.(string); ok {
			return s == t
		}
	}
	n1, ok1 := asFloat(value)
	n2, ok2 := asFloat(target)
	if ok1 && ok2 {
		return n1 == n2
	}
	return value == target
}

func inSet(value any, set []any) bool {
	for _, candidate := range set {
		if equalAny(value, candidate) {
			return true
		}
	}
	return false
}

func exprContext(instance map[string]any) expr.MapContext {
	ctx := make(expr.MapContext, len(instance))
	for k, v := range instance {
		ctx[k] = expr.FromGo(v)
	}
	return ctx
}
