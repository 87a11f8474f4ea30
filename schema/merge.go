package schema

import "fmt"

// MergeStrategy selects how MergeSchemas resolves a definition present in
// both operands (spec.md §4.11).
type MergeStrategy int

const (
	// MergeStrict aborts with a MergeError on any conflicting definition.
	MergeStrict MergeStrategy = iota
	// MergeOverride lets the second schema's definitions win.
	MergeOverride
	// MergePreserve keeps the first schema's definitions on conflict.
	MergePreserve
	// MergeUnion merges element-by-element (slots/attributes inside a
	// shared class, permissible_values inside a shared enum) instead of
	// replacing the whole definition.
	MergeUnion
)

// MergeSchemas produces the union of base and overlay's classes, slots,
// types, and enums according to strategy. base and overlay are not mutated;
// following the teacher's MergeSchemas, which always builds a fresh result
// rather than mutating either operand.
func MergeSchemas(base, overlay *Schema, strategy MergeStrategy) (*Schema, error) {
	if base == nil {
		return overlay.Clone(), nil
	}
	if overlay == nil {
		return base.Clone(), nil
	}

	merged := base.Clone()
	merged.Name = fmt.Sprintf("%s+%s", base.Name, overlay.Name)

	var err error
	if merged.Types, err = mergeTypes(merged.Types, overlay.Types, strategy); err != nil {
		return nil, err
	}
	if merged.Enums, err = mergeEnums(merged.Enums, overlay.Enums, strategy); err != nil {
		return nil, err
	}
	if merged.Slots, err = mergeSlots(merged.Slots, overlay.Slots, strategy); err != nil {
		return nil, err
	}
	if merged.Classes, err = mergeClasses(merged.Classes, overlay.Classes, strategy); err != nil {
		return nil, err
	}
	for k, v := range overlay.Prefixes {
		if merged.Prefixes == nil {
			merged.Prefixes = map[string]string{}
		}
		if _, exists := merged.Prefixes[k]; !exists || strategy == MergeOverride {
			merged.Prefixes[k] = v
		}
	}
	return merged, nil
}

func mergeTypes(base *OrderedMap[*Type], overlay *OrderedMap[*Type], strategy MergeStrategy) (*OrderedMap[*Type], error) {
	for _, name := range overlay.Keys() {
		ov, _ := overlay.Get(name)
		if bv, exists := base.Get(name); exists {
			switch strategy {
			case MergeStrict:
				if !typesEqual(bv, ov) {
					return nil, &MergeError{Kind: MergeConflictingDefinition, Path: "types/" + name, Message: "conflicting type definition"}
				}
			case MergeOverride:
				base.Set(name, ov)
			case MergePreserve, MergeUnion:
				// keep base
			}
			continue
		}
		base.Set(name, ov)
	}
	return base, nil
}

func typesEqual(a, b *Type) bool {
	return a.BaseType == b.BaseType && a.Pattern == b.Pattern
}

func mergeEnums(base *OrderedMap[*Enum], overlay *OrderedMap[*Enum], strategy MergeStrategy) (*OrderedMap[*Enum], error) {
	for _, name := range overlay.Keys() {
		ov, _ := overlay.Get(name)
		bv, exists := base.Get(name)
		if !exists {
			base.Set(name, ov)
			continue
		}
		switch strategy {
		case MergeStrict:
			if !enumsEqual(bv, ov) {
				return nil, &MergeError{Kind: MergeConflictingDefinition, Path: "enums/" + name, Message: "conflicting enum definition"}
			}
		case MergeOverride:
			base.Set(name, ov)
		case MergePreserve:
			// keep base
		case MergeUnion:
			merged := &Enum{Name: name, Description: bv.Description, PermissibleValues: append([]PermissibleValue(nil), bv.PermissibleValues...)}
			seen := map[string]bool{}
			for _, pv := range merged.PermissibleValues {
				seen[pv.Text] = true
			}
			for _, pv := range ov.PermissibleValues {
				if !seen[pv.Text] {
					merged.PermissibleValues = append(merged.PermissibleValues, pv)
					seen[pv.Text] = true
				}
			}
			base.Set(name, merged)
		}
	}
	return base, nil
}

func enumsEqual(a, b *Enum) bool {
	if len(a.PermissibleValues) != len(b.PermissibleValues) {
		return false
	}
	for i, pv := range a.PermissibleValues {
		if b.PermissibleValues[i].Text != pv.Text {
			return false
		}
	}
	return true
}

func mergeSlots(base *OrderedMap[*Slot], overlay *OrderedMap[*Slot], strategy MergeStrategy) (*OrderedMap[*Slot], error) {
	for _, name := range overlay.Keys() {
		ov, _ := overlay.Get(name)
		bv, exists := base.Get(name)
		if !exists {
			base.Set(name, ov)
			continue
		}
		switch strategy {
		case MergeStrict:
			if !slotsEqual(bv, ov) {
				return nil, &MergeError{Kind: MergeConflictingDefinition, Path: "slots/" + name, Message: "conflicting slot definition"}
			}
		case MergeOverride:
			base.Set(name, ov)
		case MergePreserve, MergeUnion:
			// keep base; a slot has no natural element-wise union
		}
	}
	return base, nil
}

func slotsEqual(a, b *Slot) bool {
	return a.Range == b.Range && a.Required == b.Required && a.Multivalued == b.Multivalued && a.Pattern == b.Pattern
}

func mergeClasses(base *OrderedMap[*Class], overlay *OrderedMap[*Class], strategy MergeStrategy) (*OrderedMap[*Class], error) {
	for _, name := range overlay.Keys() {
		ov, _ := overlay.Get(name)
		bv, exists := base.Get(name)
		if !exists {
			base.Set(name, ov)
			continue
		}
		switch strategy {
		case MergeStrict:
			if !classesCompatible(bv, ov) {
				return nil, &MergeError{Kind: MergeConflictingDefinition, Path: "classes/" + name, Message: "conflicting class definition"}
			}
		case MergeOverride:
			base.Set(name, ov)
		case MergePreserve:
			// keep base
		case MergeUnion:
			base.Set(name, unionClass(bv, ov))
		}
	}
	return base, nil
}

// classesCompatible reports whether two class definitions agree closely
// enough that MergeStrict accepts their coexistence (same parent, same
// abstract/mixin flags); slot lists may still differ and are left as-is.
func classesCompatible(a, b *Class) bool {
	return a.IsA == b.IsA && a.Abstract == b.Abstract && a.Mixin == b.Mixin
}

func unionClass(base, overlay *Class) *Class {
	merged := *base
	seen := map[string]bool{}
	for _, s := range base.Slots {
		seen[s] = true
	}
	for _, s := range overlay.Slots {
		if !seen[s] {
			merged.Slots = append(merged.Slots, s)
			seen[s] = true
		}
	}
	merged.Attributes = NewOrderedMap[*Slot]()
	for _, k := range base.Attributes.Keys() {
		v, _ := base.Attributes.Get(k)
		merged.Attributes.Set(k, v)
	}
	for _, k := range overlay.Attributes.Keys() {
		if _, exists := merged.Attributes.Get(k); !exists {
			v, _ := overlay.Attributes.Get(k)
			merged.Attributes.Set(k, v)
		}
	}
	return &merged
}
