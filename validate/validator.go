package validate

import (
	"github.com/schemalang/core/expr"
	"github.com/schemalang/core/schema"
)

// Context carries the ambient state a Validator needs beyond the single
// value it is checking (§4.6): the enclosing schema/class, the current
// instance (for cross-slot and conditional checks), the accumulated path,
// and the expression engine backing Expression conditions and ifabsent
// expression references.
type Context struct {
	Schema   *schema.Schema
	Class    *schema.Class
	Instance map[string]any
	Path     string
	Engine   *expr.Engine
	SchemaID string

	// visiting tracks the identity-or-structural keys of objects currently
	// on the RecursionValidator's traversal stack.
	visiting map[string]int
}

// NewContext builds a root Context for validating one instance of class.
func NewContext(s *schema.Schema, class *schema.Class, instance map[string]any, engine *expr.Engine) *Context {
	return &Context{Schema: s, Class: class, Instance: instance, Engine: engine, visiting: map[string]int{}}
}

// child returns a Context for a nested slot value, extending Path.
func (c *Context) child(path string, instance map[string]any, class *schema.Class) *Context {
	return &Context{
		Schema: c.Schema, Class: class, Instance: instance, Path: path,
		Engine: c.Engine, SchemaID: c.SchemaID, visiting: c.visiting,
	}
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

// SlotValidator validates a single slot's value on one instance. Applies
// reports whether this validator is relevant for a given slot's
// configuration, letting the Pipeline skip validators with nothing to
// check without special-casing each one (§4.6's "range-appropriate
// validators").
type SlotValidator interface {
	Name() string
	Applies(slot *schema.Slot) bool
	Validate(value any, slot *schema.Slot, ctx *Context) []Issue
}

// valuesOf returns the individual values a SlotValidator should check:
// the elements of value if slot is multivalued and value is a slice,
// otherwise the single value itself. A multivalued slot holding a
// non-slice value is itself a CardinalityValidator finding, not this
// helper's concern.
func valuesOf(value any, slot *schema.Slot) []any {
	if slot.Multivalued {
		if arr, ok := value.([]any); ok {
			return arr
		}
	}
	return []any{value}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func fmtPath(ctx *Context, slotName string) string {
	return joinPath(ctx.Path, slotName)
}
