// Package schema implements the typed, in-memory representation of the
// Schema Language (classes, slots, types, enums), together with the
// textual loader, import resolver, inheritance resolver, diff/patch
// engine, merger, lint engine, and a fluent builder.
package schema

import (
	"strings"

	"github.com/go-json-experiment/json"
)

// OrderedMap preserves insertion order alongside O(1) lookup, matching the
// spec's requirement that Schema/Class maps preserve insertion order for
// deterministic output. Schemas are immutable after resolution (spec.md
// §3.5), so concurrent mutation is not a concern once built.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrderedMap creates an empty OrderedMap.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{values: make(map[string]V)}
}

// Set inserts or overwrites a value, preserving the original position of an
// existing key and appending new keys in insertion order.
func (m *OrderedMap[V]) Set(key string, value V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get retrieves a value by key.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Delete removes a key, preserving order of the rest.
func (m *OrderedMap[V]) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Values returns the values in key-insertion order.
func (m *OrderedMap[V]) Values() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.values[k])
	}
	return out
}

// MarshalJSON renders the map as a JSON object in insertion order.
func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// ImportRef is a parsed entry of a Schema's `imports:` list.
type ImportRef struct {
	Path    string   `json:"path"`
	Alias   string   `json:"alias,omitempty"`
	Only    []string `json:"only,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
	Prefix  string   `json:"prefix,omitempty"`
}

// ImportSettings configures the Import Resolver (C3).
type ImportSettings struct {
	SearchPaths        []string
	BaseURL            string
	FollowImports      bool
	MaxImportDepth     int
	CacheImports       bool
	ResolutionStrategy ResolutionStrategy
	Aliases            map[string]string
}

// ResolutionStrategy controls how relative import paths are located on disk.
type ResolutionStrategy int

const (
	// ResolutionRelative tries only the first configured search path.
	ResolutionRelative ResolutionStrategy = iota
	// ResolutionAbsolute tries only the configured search paths, in order.
	ResolutionAbsolute
	// ResolutionMixed tries "./" first, then the configured search paths.
	ResolutionMixed
)

// DefaultImportSettings returns the spec's documented defaults.
func DefaultImportSettings() *ImportSettings {
	return &ImportSettings{
		SearchPaths:        []string{"."},
		FollowImports:      true,
		MaxImportDepth:     10,
		CacheImports:       true,
		ResolutionStrategy: ResolutionMixed,
		Aliases:            map[string]string{},
	}
}

// Schema is the top-level container for a schema document.
type Schema struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Version     string            `json:"version,omitempty"`
	Description string            `json:"description,omitempty"`
	Prefixes    map[string]string `json:"prefixes,omitempty"`
	Imports     []ImportRef       `json:"imports,omitempty"`

	Classes *OrderedMap[*Class] `json:"classes,omitempty"`
	Slots   *OrderedMap[*Slot]  `json:"slots,omitempty"`
	Types   *OrderedMap[*Type]  `json:"types,omitempty"`
	Enums   *OrderedMap[*Enum]  `json:"enums,omitempty"`

	Subsets     []string        `json:"subsets,omitempty"`
	Annotations map[string]any  `json:"annotations,omitempty"`
	Settings    *ImportSettings `json:"-"`

	// resolved marks a schema that has been through the import + inheritance
	// resolvers; downstream components may assume shared-immutable state.
	resolved bool
}

// NewSchema constructs an empty Schema with initialized ordered maps, ready
// for programmatic population (e.g. via the keyword builder).
func NewSchema(name string) *Schema {
	return &Schema{
		Name:     name,
		Prefixes: make(map[string]string),
		Classes:  NewOrderedMap[*Class](),
		Slots:    NewOrderedMap[*Slot](),
		Types:    NewOrderedMap[*Type](),
		Enums:    NewOrderedMap[*Enum](),
	}
}

// IsResolved reports whether import/inheritance resolution has completed.
func (s *Schema) IsResolved() bool { return s.resolved }

// MarkResolved flags the schema as resolved; used by the import and
// inheritance resolvers once their fixpoints are reached.
func (s *Schema) MarkResolved() { s.resolved = true }

// Clone performs a structural copy sufficient for merge/diff/patch
// operations that must not mutate the source schema.
func (s *Schema) Clone() *Schema {
	clone := &Schema{
		ID:          s.ID,
		Name:        s.Name,
		Version:     s.Version,
		Description: s.Description,
		Prefixes:    cloneStringMap(s.Prefixes),
		Imports:     append([]ImportRef(nil), s.Imports...),
		Subsets:     append([]string(nil), s.Subsets...),
		Annotations: cloneAnyMap(s.Annotations),
		Settings:    s.Settings,
		resolved:    s.resolved,
	}
	clone.Classes = NewOrderedMap[*Class]()
	for _, k := range s.Classes.Keys() {
		c, _ := s.Classes.Get(k)
		cc := *c
		clone.Classes.Set(k, &cc)
	}
	clone.Slots = NewOrderedMap[*Slot]()
	for _, k := range s.Slots.Keys() {
		sl, _ := s.Slots.Get(k)
		ss := *sl
		clone.Slots.Set(k, &ss)
	}
	clone.Types = NewOrderedMap[*Type]()
	for _, k := range s.Types.Keys() {
		t, _ := s.Types.Get(k)
		tt := *t
		clone.Types.Set(k, &tt)
	}
	clone.Enums = NewOrderedMap[*Enum]()
	for _, k := range s.Enums.Keys() {
		e, _ := s.Enums.Get(k)
		ee := *e
		clone.Enums.Set(k, &ee)
	}
	return clone
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// IgnoreInDiff reports whether the annotation map carries ignore_in_diff=true.
func IgnoreInDiff(annotations map[string]any) bool {
	if annotations == nil {
		return false
	}
	v, ok := annotations["ignore_in_diff"]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}
