package validate

import "github.com/schemalang/core/schema"

// TypeValidator checks that a slot's resolved range is assignable to the
// primitive kind of the value actually present (§4.6): a range resolving to
// a builtin or Type-refined scalar expects the matching Go kind, a range
// resolving to a Class expects a nested object, and a range resolving to an
// Enum expects a string (PermissibleValueValidator checks its membership).
type TypeValidator struct{}

func (v *TypeValidator) Name() string { return "type" }

func (v *TypeValidator) Applies(slot *schema.Slot) bool { return slot.Range != "" }

func (v *TypeValidator) Validate(value any, slot *schema.Slot, ctx *Context) []Issue {
	if slot.Range == "" || value == nil {
		return nil
	}
	var issues []Issue
	for _, elem := range valuesOf(value, slot) {
		if elem == nil {
			continue
		}
		if err := v.checkOne(elem, slot, ctx); err != "" {
			issues = append(issues, NewIssue(v.Name(), "type_mismatch", fmtPath(ctx, slot.Name),
				"value of slot {slot} does not match range {range}: {reason}",
				map[string]any{"slot": slot.Name, "range": slot.Range, "reason": err}))
		}
	}
	return issues
}

func (v *TypeValidator) checkOne(value any, slot *schema.Slot, ctx *Context) string {
	base, kind, ok := resolveRange(ctx.Schema, slot.Range)
	if !ok {
		return ""
	}
	switch kind {
	case rangeKindClass:
		if _, ok := value.(map[string]any); !ok {
			return "expected a nested object"
		}
	case rangeKindEnum:
		if _, ok := value.(string); !ok {
			return "expected a string"
		}
	case rangeKindScalar:
		return checkBaseType(value, base)
	}
	return ""
}

type rangeKind int

const (
	rangeKindScalar rangeKind = iota
	rangeKindClass
	rangeKindEnum
)

// resolveRange determines what a slot's range name refers to: a builtin
// primitive, a schema Type refining a primitive, a Class, or an Enum.
func resolveRange(s *schema.Schema, name string) (base schema.BaseType, kind rangeKind, ok bool) {
	if schema.IsBuiltinBaseType(name) {
		return schema.BaseType(name), rangeKindScalar, true
	}
	if s == nil {
		return "", 0, false
	}
	if t, found := s.Types.Get(name); found {
		return t.BaseType, rangeKindScalar, true
	}
	if _, found := s.Classes.Get(name); found {
		return "", rangeKindClass, true
	}
	if _, found := s.Enums.Get(name); found {
		return "", rangeKindEnum, true
	}
	return "", 0, false
}

func checkBaseType(value any, base schema.BaseType) string {
	switch base {
	case schema.BaseString, schema.BaseURI, schema.BaseURIorCURIE, schema.BaseDate, schema.BaseDatetime, schema.BaseTime, schema.BaseDecimal:
		if _, ok := value.(string); !ok {
			return "expected a string"
		}
	case schema.BaseInteger:
		n, ok := asFloat(value)
		if !ok {
			return "expected an integer"
		}
		if n != float64(int64(n)) {
			return "expected an integer, got a fractional number"
		}
	case schema.BaseFloat, schema.BaseDouble:
		if _, ok := asFloat(value); !ok {
			return "expected a number"
		}
	case schema.BaseBoolean:
		if _, ok := value.(bool); !ok {
			return "expected a boolean"
		}
	}
	return ""
}
