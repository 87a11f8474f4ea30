package schema

// ClassOption configures a Class during programmatic construction, in the
// teacher's functional-options idiom (see kaptinlin-jsonschema's Keyword).
type ClassOption func(*Class)

// SlotOption configures a Slot during programmatic construction.
type SlotOption func(*Slot)

// NewClassWith builds a Class by applying options in order, so later calls
// override earlier ones.
func NewClassWith(name string, opts ...ClassOption) *Class {
	c := NewClass(name)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewSlotWith builds a Slot by applying options in order.
func NewSlotWith(name string, opts ...SlotOption) *Slot {
	s := NewSlot(name)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// === Class options ===

// IsA sets the class's parent.
func IsA(parent string) ClassOption {
	return func(c *Class) { c.IsA = parent }
}

// Mixes appends one or more mixin class names.
func Mixes(names ...string) ClassOption {
	return func(c *Class) { c.Mixins = append(c.Mixins, names...) }
}

// Abstract marks the class abstract (not directly instantiable).
func Abstract() ClassOption {
	return func(c *Class) { c.Abstract = true }
}

// AsMixin marks the class as a mixin.
func AsMixin() ClassOption {
	return func(c *Class) { c.Mixin = true }
}

// WithSlots appends slot names to the class's slot list.
func WithSlots(names ...string) ClassOption {
	return func(c *Class) { c.Slots = append(c.Slots, names...) }
}

// WithAttribute attaches an inline attribute slot to the class.
func WithAttribute(s *Slot) ClassOption {
	return func(c *Class) { c.Attributes.Set(s.Name, s) }
}

// WithSlotUsage attaches a slot_usage override to the class.
func WithSlotUsage(s *Slot) ClassOption {
	return func(c *Class) { c.SlotUsage.Set(s.Name, s) }
}

// WithRule appends a conditional rule to the class.
func WithRule(r Rule) ClassOption {
	return func(c *Class) { c.Rules = append(c.Rules, r) }
}

// WithUniqueKey registers a unique key constraint on the class.
func WithUniqueKey(name string, slotNames ...string) ClassOption {
	return func(c *Class) { c.UniqueKeys.Set(name, &UniqueKey{Name: name, SlotNames: slotNames}) }
}

// WithIfRequired registers a conditional requirement on the class.
func WithIfRequired(name string, cond *SlotCondition, thenRequired ...string) ClassOption {
	return func(c *Class) {
		c.IfRequired.Set(name, &ConditionalRequirement{Condition: cond, ThenRequired: thenRequired})
	}
}

// WithRecursionOptions sets the class's recursion bound.
func WithRecursionOptions(useBox bool, maxDepth int) ClassOption {
	return func(c *Class) { c.RecursionOptions = &RecursionOptions{UseBox: useBox, MaxDepth: maxDepth} }
}

// ClassDescription sets the class's description.
func ClassDescription(desc string) ClassOption {
	return func(c *Class) { c.Description = desc }
}

// === Slot options ===

// Range sets the slot's range (a class, type, or enum name).
func Range(r string) SlotOption {
	return func(s *Slot) { s.Range = r }
}

// Required marks the slot mandatory.
func Required() SlotOption {
	return func(s *Slot) { s.Required = true }
}

// Multivalued marks the slot as accepting a collection of values.
func Multivalued() SlotOption {
	return func(s *Slot) { s.Multivalued = true }
}

// Identifier marks the slot as the class's identifier.
func Identifier() SlotOption {
	return func(s *Slot) { s.Identifier = true }
}

// WithPattern sets a plain regex pattern constraint.
func WithPattern(pattern string) SlotOption {
	return func(s *Slot) { s.Pattern = pattern }
}

// WithStructuredPattern sets a structured (possibly interpolated or glob)
// pattern constraint.
func WithStructuredPattern(p *StructuredPattern) SlotOption {
	return func(s *Slot) { s.StructuredPattern = p }
}

// EqualsStringIn restricts the slot's value to one of the given strings.
func EqualsStringIn(values ...string) SlotOption {
	return func(s *Slot) { s.EqualsStringIn = values }
}

// MinValue sets the slot's minimum numeric value.
func MinValue(v float64) SlotOption {
	return func(s *Slot) { s.MinimumValue = &v }
}

// MaxValue sets the slot's maximum numeric value.
func MaxValue(v float64) SlotOption {
	return func(s *Slot) { s.MaximumValue = &v }
}

// MinLen sets the slot's minimum string length.
func MinLen(n int) SlotOption {
	return func(s *Slot) { s.MinLength = &n }
}

// MaxLen sets the slot's maximum string length.
func MaxLen(n int) SlotOption {
	return func(s *Slot) { s.MaxLength = &n }
}

// MinCardinality sets the minimum number of values a multivalued slot
// must carry.
func MinCardinality(n int) SlotOption {
	return func(s *Slot) { s.MinimumCardinality = &n }
}

// MaxCardinality sets the maximum number of values a multivalued slot
// may carry.
func MaxCardinality(n int) SlotOption {
	return func(s *Slot) { s.MaximumCardinality = &n }
}

// WithPermissibleValues restricts the slot to an inline enumeration.
func WithPermissibleValues(values ...PermissibleValue) SlotOption {
	return func(s *Slot) { s.PermissibleValues = values }
}

// WithIfAbsent sets the slot's default-value directive.
func WithIfAbsent(ia *IfAbsent) SlotOption {
	return func(s *Slot) { s.IfAbsent = ia }
}

// SlotIsA sets the slot's parent slot for refinement.
func SlotIsA(parent string) SlotOption {
	return func(s *Slot) { s.IsA = parent }
}

// SlotDescription sets the slot's description.
func SlotDescription(desc string) SlotOption {
	return func(s *Slot) { s.Description = desc }
}
