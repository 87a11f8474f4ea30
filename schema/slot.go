package schema

// Slot is a named field belonging to a class; it carries type and
// constraint information (§3.1).
type Slot struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Range      string `json:"range,omitempty"`
	Required   bool   `json:"required,omitempty"`
	Multivalued bool  `json:"multivalued,omitempty"`
	Identifier bool   `json:"identifier,omitempty"`

	Pattern          string            `json:"pattern,omitempty"`
	StructuredPattern *StructuredPattern `json:"structured_pattern,omitempty"`
	EqualsStringIn   []string          `json:"equals_string_in,omitempty"`

	MinimumValue *float64 `json:"minimum_value,omitempty"`
	MaximumValue *float64 `json:"maximum_value,omitempty"`
	MinLength    *int     `json:"min_length,omitempty"`
	MaxLength    *int     `json:"max_length,omitempty"`

	MinimumCardinality *int `json:"minimum_cardinality,omitempty"`
	MaximumCardinality *int `json:"maximum_cardinality,omitempty"`

	PermissibleValues []PermissibleValue `json:"permissible_values,omitempty"`

	IfAbsent *IfAbsent `json:"ifabsent,omitempty"`

	IsA string `json:"is_a,omitempty"`

	Annotations map[string]any `json:"annotations,omitempty"`
}

// StructuredPattern is a regex or glob pattern with optional runtime
// interpolation of `{var}` placeholders (§4.6 StructuredPatternValidator,
// S5).
type StructuredPattern struct {
	Syntax       string `json:"syntax,omitempty"` // "regex" (default) or "glob"
	Pattern      string `json:"pattern"`
	Interpolated bool   `json:"interpolated,omitempty"`
	PartialMatch bool   `json:"partial_match,omitempty"`
}

// IfAbsentKind enumerates the DefaultApplier directives (§4.6.3).
type IfAbsentKind string

const (
	IfAbsentBnode     IfAbsentKind = "bnode"
	IfAbsentDatetime  IfAbsentKind = "datetime"
	IfAbsentDate      IfAbsentKind = "date"
	IfAbsentClassName IfAbsentKind = "class_name"
	IfAbsentUUID      IfAbsentKind = "uuid"
	IfAbsentLiteral   IfAbsentKind = "literal"
	IfAbsentExpr      IfAbsentKind = "expression"
)

// IfAbsent describes how to fill a slot that is absent/null on an instance.
type IfAbsent struct {
	Kind    IfAbsentKind `json:"kind"`
	Literal any          `json:"literal,omitempty"`
	Expr    string       `json:"expr,omitempty"`
}

// NewSlot constructs a Slot with the given name.
func NewSlot(name string) *Slot {
	return &Slot{Name: name}
}
