package schema

import (
	"github.com/cockroachdb/apd/v3"
)

// BaseType enumerates the builtin primitives a Type may refine (§3.1).
type BaseType string

const (
	BaseString    BaseType = "string"
	BaseInteger   BaseType = "integer"
	BaseFloat     BaseType = "float"
	BaseDouble    BaseType = "double"
	BaseDecimal   BaseType = "decimal"
	BaseBoolean   BaseType = "boolean"
	BaseDate      BaseType = "date"
	BaseDatetime  BaseType = "datetime"
	BaseTime      BaseType = "time"
	BaseURI       BaseType = "uri"
	BaseURIorCURIE BaseType = "uriorcurie"
)

// builtinBaseTypes is used by the type-safety lint rule and by range
// resolution to recognize primitives without a Type refinement.
var builtinBaseTypes = map[string]bool{
	string(BaseString): true, string(BaseInteger): true, string(BaseFloat): true,
	string(BaseDouble): true, string(BaseDecimal): true, string(BaseBoolean): true,
	string(BaseDate): true, string(BaseDatetime): true, string(BaseTime): true,
	string(BaseURI): true, string(BaseURIorCURIE): true,
}

// IsBuiltinBaseType reports whether name is one of the builtin primitives.
func IsBuiltinBaseType(name string) bool { return builtinBaseTypes[name] }

// Type refines a primitive with an optional pattern restriction (§3.1).
type Type struct {
	Name        string   `json:"name"`
	BaseType    BaseType `json:"base_type,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	Description string   `json:"description,omitempty"`
}

// NewType constructs a Type refining the given base type.
func NewType(name string, base BaseType) *Type {
	return &Type{Name: name, BaseType: base}
}

// ParseDecimal parses a decimal-typed value with arbitrary precision using
// cockroachdb/apd, the decimal library the corpus (cue-lang/cue) ships;
// this backs the `decimal` base type and RangeValidator bounds when a
// slot's resolved range is a Type with BaseDecimal, where plain float64
// bounds checking would lose precision on money-like values.
func ParseDecimal(s string) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(s)
	return d, err
}

// CompareDecimal returns -1, 0, or 1 comparing a to b with apd's decimal
// context, used by RangeValidator when a slot's range resolves to the
// `decimal` base type.
func CompareDecimal(a, b *apd.Decimal) int {
	return a.Cmp(b)
}
