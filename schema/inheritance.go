package schema

// InheritanceResolver computes each class's effective slot list by
// flattening is_a and mixin ancestry (C4, §4.9).
type InheritanceResolver struct{}

// NewInheritanceResolver constructs an InheritanceResolver. It carries no
// state; a value receiver would do, but the teacher's resolvers are always
// pointer-constructed so embedders can swap implementations behind an
// interface later without an API break.
func NewInheritanceResolver() *InheritanceResolver {
	return &InheritanceResolver{}
}

// Resolve computes EffectiveSlots for every class in s and returns a new
// Schema; s is not mutated.
func (r *InheritanceResolver) Resolve(s *Schema) (*Schema, error) {
	out := s.Clone()
	for _, name := range out.Classes.Keys() {
		c, _ := out.Classes.Get(name)
		ancestors, err := r.ancestorClosure(out, name, map[string]bool{})
		if err != nil {
			return nil, err
		}
		c.EffectiveSlots = effectiveSlots(out, ancestors, c)
	}
	out.MarkResolved()
	return out, nil
}

// ancestorClosure computes the depth-first, left-to-right closure of a
// class's is_a parent followed by its mixins, deduplicated by first
// occurrence (§4.9); the class itself is the last element.
func (r *InheritanceResolver) ancestorClosure(s *Schema, name string, visiting map[string]bool) ([]string, error) {
	if visiting[name] {
		return nil, &MergeError{Kind: MergeIncompatibleSchemas, Path: "classes/" + name, Message: "circular is_a/mixin ancestry"}
	}
	visiting[name] = true
	defer delete(visiting, name)

	c, ok := s.Classes.Get(name)
	if !ok {
		return []string{name}, nil
	}

	var chain []string
	seen := map[string]bool{}
	add := func(names []string) error {
		for _, n := range names {
			if seen[n] {
				continue
			}
			sub, err := r.ancestorClosure(s, n, visiting)
			if err != nil {
				return err
			}
			for _, sn := range sub {
				if !seen[sn] {
					seen[sn] = true
					chain = append(chain, sn)
				}
			}
		}
		return nil
	}

	if c.IsA != "" {
		if err := add([]string{c.IsA}); err != nil {
			return nil, err
		}
	}
	if err := add(c.Mixins); err != nil {
		return nil, err
	}
	if !seen[name] {
		chain = append(chain, name)
	}
	return chain, nil
}

// effectiveSlots computes the ordered union of ancestors' effective slots
// (from the nearest-computed ancestor state), then own `slots`, then own
// `attributes` keys (§4.9). slot_usage overrides are resolved lazily by
// EffectiveSlot below rather than baked into the name list.
func effectiveSlots(s *Schema, ancestors []string, own *Class) []string {
	seen := map[string]bool{}
	var out []string
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}

	for _, aname := range ancestors {
		if aname == own.Name {
			continue
		}
		ac, ok := s.Classes.Get(aname)
		if !ok {
			continue
		}
		for _, sl := range ac.Slots {
			add(sl)
		}
		for _, sl := range ac.Attributes.Keys() {
			add(sl)
		}
	}
	for _, sl := range own.Slots {
		add(sl)
	}
	for _, sl := range own.Attributes.Keys() {
		add(sl)
	}
	return out
}

// EffectiveSlot resolves the final Slot definition for slotName as seen from
// class c: it starts from the schema-level Slot (or the class's inline
// Attribute) and applies any slot_usage override on top, without mutating
// the shared Slot entry (§4.9).
func EffectiveSlot(s *Schema, c *Class, slotName string) *Slot {
	var base *Slot
	if attr, ok := c.Attributes.Get(slotName); ok {
		cp := *attr
		base = &cp
	} else if sl, ok := s.Slots.Get(slotName); ok {
		cp := *sl
		base = &cp
	} else {
		base = NewSlot(slotName)
	}

	if usage, ok := c.SlotUsage.Get(slotName); ok {
		applySlotUsage(base, usage)
	}
	return base
}

// applySlotUsage overlays the non-zero fields of usage onto base in place;
// base is always a private copy (see EffectiveSlot), never the schema's
// shared Slot.
func applySlotUsage(base, usage *Slot) {
	if usage.Description != "" {
		base.Description = usage.Description
	}
	if usage.Range != "" {
		base.Range = usage.Range
	}
	if usage.Required {
		base.Required = true
	}
	if usage.Multivalued {
		base.Multivalued = true
	}
	if usage.Pattern != "" {
		base.Pattern = usage.Pattern
	}
	if usage.StructuredPattern != nil {
		base.StructuredPattern = usage.StructuredPattern
	}
	if len(usage.EqualsStringIn) > 0 {
		base.EqualsStringIn = usage.EqualsStringIn
	}
	if usage.MinimumValue != nil {
		base.MinimumValue = usage.MinimumValue
	}
	if usage.MaximumValue != nil {
		base.MaximumValue = usage.MaximumValue
	}
	if usage.MinLength != nil {
		base.MinLength = usage.MinLength
	}
	if usage.MaxLength != nil {
		base.MaxLength = usage.MaxLength
	}
	if usage.MinimumCardinality != nil {
		base.MinimumCardinality = usage.MinimumCardinality
	}
	if usage.MaximumCardinality != nil {
		base.MaximumCardinality = usage.MaximumCardinality
	}
	if len(usage.PermissibleValues) > 0 {
		base.PermissibleValues = usage.PermissibleValues
	}
	if usage.IfAbsent != nil {
		base.IfAbsent = usage.IfAbsent
	}
}
