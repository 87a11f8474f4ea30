package schema

// Class is a named record type: a description of an object's expected shape.
type Class struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	IsA    string   `json:"is_a,omitempty"`
	Mixins []string `json:"mixins,omitempty"`

	Abstract bool `json:"abstract,omitempty"`
	Mixin    bool `json:"mixin,omitempty"`

	Slots      []string           `json:"slots,omitempty"`
	Attributes *OrderedMap[*Slot] `json:"attributes,omitempty"`
	SlotUsage  *OrderedMap[*Slot] `json:"slot_usage,omitempty"`

	Rules      []Rule                        `json:"rules,omitempty"`
	IfRequired *OrderedMap[*ConditionalRequirement] `json:"if_required,omitempty"`
	UniqueKeys *OrderedMap[*UniqueKey]        `json:"unique_keys,omitempty"`

	RecursionOptions *RecursionOptions `json:"recursion_options,omitempty"`
	Annotations      map[string]any    `json:"annotations,omitempty"`

	// EffectiveSlots is populated by the Inheritance Resolver (C4); nil on an
	// unresolved class.
	EffectiveSlots []string `json:"-"`
}

// Rule is a conditional constraint attached to a class, evaluated by the
// ConditionalValidator (§4.6.1).
type Rule struct {
	Title          string     `json:"title,omitempty"`
	Description    string     `json:"description,omitempty"`
	Preconditions  *Predicate `json:"preconditions,omitempty"`
	Postconditions *Predicate `json:"postconditions,omitempty"`
	ElseConditions *Predicate `json:"else_conditions,omitempty"`
}

// Predicate is a conjunction of per-slot conditions.
type Predicate struct {
	SlotConditions *OrderedMap[*SlotCondition] `json:"slot_conditions,omitempty"`
}

// SlotCondition constrains the value of a single slot within a Predicate,
// realizing §4.6.1's Condition vocabulary: Equals, NotEquals, In, NotIn,
// Present, Absent, Matches, GreaterThan, LessThan, Expression as leaf checks,
// plus the And/Or/Not combinators that compose them into a tree. A
// Predicate's slot_conditions map is additionally itself an "And" across
// slots; And/Or/Not here combine sibling conditions on the *same* slot's
// value, for rules like "if A or B then X" or "if not A then X".
type SlotCondition struct {
	Equals       any      `json:"equals_string,omitempty"`
	EqualsNumber *float64 `json:"equals_number,omitempty"`
	NotEquals    any      `json:"not_equals,omitempty"`
	In           []any    `json:"in,omitempty"`
	NotIn        []any    `json:"not_in,omitempty"`
	Pattern      string   `json:"pattern,omitempty"`
	MinimumValue *float64 `json:"minimum_value,omitempty"`
	MaximumValue *float64 `json:"maximum_value,omitempty"`
	Required     bool     `json:"required,omitempty"`
	Forbidden    bool     `json:"forbidden,omitempty"`
	Absent       bool     `json:"absent,omitempty"`
	// Expression, when non-empty, is evaluated via the Expression Engine
	// against a context built from the instance's fields instead of (or in
	// addition to) the structural checks above.
	Expression string `json:"expression,omitempty"`

	// And, Or, and Not are the Condition tree's logical combinators: And
	// requires every sub-condition to hold, Or requires at least one, Not
	// inverts its single sub-condition. Each sub-condition is evaluated
	// against the same slot value as its parent.
	And []*SlotCondition `json:"and,omitempty"`
	Or  []*SlotCondition `json:"or,omitempty"`
	Not *SlotCondition   `json:"not,omitempty"`
}

// ConditionalRequirement expresses "if <condition> then these slots are
// required" (§3.1 Class.if_required).
type ConditionalRequirement struct {
	Condition    *SlotCondition `json:"condition,omitempty"`
	ThenRequired []string       `json:"then_required,omitempty"`
}

// UniqueKey names a tuple of slots whose combined value must be unique
// across a collection of instances (UniqueKeyValidator, §4.6 table).
type UniqueKey struct {
	Name       string   `json:"name"`
	SlotNames  []string `json:"unique_key_slots"`
}

// RecursionOptions bounds self-referential traversal (RecursionValidator,
// §4.6.2).
type RecursionOptions struct {
	UseBox   bool `json:"use_box,omitempty"`
	MaxDepth int  `json:"max_depth,omitempty"`
}

// NewClass constructs an empty Class with initialized ordered maps.
func NewClass(name string) *Class {
	return &Class{
		Name:       name,
		Attributes: NewOrderedMap[*Slot](),
		SlotUsage:  NewOrderedMap[*Slot](),
		IfRequired: NewOrderedMap[*ConditionalRequirement](),
		UniqueKeys: NewOrderedMap[*UniqueKey](),
	}
}
