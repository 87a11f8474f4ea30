package schema

// PermissibleValue is a legal literal of an Enum.
type PermissibleValue struct {
	Text        string `json:"text"`
	Description string `json:"description,omitempty"`
	Meaning     string `json:"meaning,omitempty"`
}

// Enum is a named, ordered set of permissible values, unique by Text
// (§3.2 invariant).
type Enum struct {
	Name              string             `json:"name"`
	Description       string             `json:"description,omitempty"`
	PermissibleValues []PermissibleValue `json:"permissible_values,omitempty"`
}

// NewEnum constructs an empty Enum.
func NewEnum(name string) *Enum {
	return &Enum{Name: name}
}

// HasText reports whether v is one of the enum's permissible value texts.
func (e *Enum) HasText(v string) bool {
	for _, pv := range e.PermissibleValues {
		if pv.Text == v {
			return true
		}
	}
	return false
}

// DuplicateTexts returns permissible-value texts that occur more than once,
// violating the §3.2 uniqueness invariant; used by the Schema Loader.
func (e *Enum) DuplicateTexts() []string {
	seen := make(map[string]int, len(e.PermissibleValues))
	var dups []string
	for _, pv := range e.PermissibleValues {
		seen[pv.Text]++
		if seen[pv.Text] == 2 {
			dups = append(dups, pv.Text)
		}
	}
	return dups
}
