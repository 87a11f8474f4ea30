package schema

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/goccy/go-yaml"
)

// wireSchema is the raw, order-agnostic representation decoded from text
// before being lifted into the typed Schema Model. Its json and yaml tags let
// one struct serve both the JSON and the YAML decoder, following the
// teacher's `setupMediaTypes` dispatch in `compiler.go`.
type wireSchema struct {
	ID          string                    `json:"id" yaml:"id"`
	Name        string                    `json:"name" yaml:"name"`
	Version     string                    `json:"version" yaml:"version"`
	Description string                    `json:"description" yaml:"description"`
	Prefixes    map[string]string         `json:"prefixes" yaml:"prefixes"`
	Imports     []wireImport              `json:"imports" yaml:"imports"`
	Classes     map[string]*wireClass     `json:"classes" yaml:"classes"`
	Slots       map[string]*wireSlot      `json:"slots" yaml:"slots"`
	Types       map[string]*wireType      `json:"types" yaml:"types"`
	Enums       map[string]*wireEnum      `json:"enums" yaml:"enums"`
	Subsets     []string                  `json:"subsets" yaml:"subsets"`
	Annotations map[string]any            `json:"annotations" yaml:"annotations"`

	// The section maps above lose declaration order, since both decoders
	// fill unordered Go maps; load recovers the order separately by
	// re-scanning the source text, see recoverDeclarationOrder.
}

type wireImport struct {
	Path    string   `json:"path" yaml:"path"`
	Alias   string   `json:"alias" yaml:"alias"`
	Only    []string `json:"only" yaml:"only"`
	Exclude []string `json:"exclude" yaml:"exclude"`
	Prefix  string   `json:"prefix" yaml:"prefix"`
}

type wireClass struct {
	Description      string                          `json:"description" yaml:"description"`
	IsA              string                          `json:"is_a" yaml:"is_a"`
	Mixins           []string                        `json:"mixins" yaml:"mixins"`
	Abstract         bool                            `json:"abstract" yaml:"abstract"`
	Mixin            bool                            `json:"mixin" yaml:"mixin"`
	Slots            []string                        `json:"slots" yaml:"slots"`
	Attributes       map[string]*wireSlot            `json:"attributes" yaml:"attributes"`
	SlotUsage        map[string]*wireSlot            `json:"slot_usage" yaml:"slot_usage"`
	Rules            []wireRule                      `json:"rules" yaml:"rules"`
	IfRequired       map[string]*wireConditionalReq   `json:"if_required" yaml:"if_required"`
	UniqueKeys       map[string][]string              `json:"unique_keys" yaml:"unique_keys"`
	RecursionOptions *RecursionOptions               `json:"recursion_options" yaml:"recursion_options"`
	Annotations      map[string]any                  `json:"annotations" yaml:"annotations"`
}

type wireRule struct {
	Title          string        `json:"title" yaml:"title"`
	Description    string        `json:"description" yaml:"description"`
	Preconditions  *wirePredicate `json:"preconditions" yaml:"preconditions"`
	Postconditions *wirePredicate `json:"postconditions" yaml:"postconditions"`
	ElseConditions *wirePredicate `json:"else_conditions" yaml:"else_conditions"`
}

type wirePredicate struct {
	SlotConditions map[string]*SlotCondition `json:"slot_conditions" yaml:"slot_conditions"`
}

type wireConditionalReq struct {
	Condition    *SlotCondition `json:"condition" yaml:"condition"`
	ThenRequired []string       `json:"then_required" yaml:"then_required"`
}

type wireSlot struct {
	Description        string             `json:"description" yaml:"description"`
	Range               string            `json:"range" yaml:"range"`
	Required            bool              `json:"required" yaml:"required"`
	Multivalued         bool              `json:"multivalued" yaml:"multivalued"`
	Identifier          bool              `json:"identifier" yaml:"identifier"`
	Pattern             string            `json:"pattern" yaml:"pattern"`
	StructuredPattern    *StructuredPattern `json:"structured_pattern" yaml:"structured_pattern"`
	EqualsStringIn      []string          `json:"equals_string_in" yaml:"equals_string_in"`
	MinimumValue        *float64          `json:"minimum_value" yaml:"minimum_value"`
	MaximumValue        *float64          `json:"maximum_value" yaml:"maximum_value"`
	MinLength           *int              `json:"min_length" yaml:"min_length"`
	MaxLength           *int              `json:"max_length" yaml:"max_length"`
	MinimumCardinality  *int              `json:"minimum_cardinality" yaml:"minimum_cardinality"`
	MaximumCardinality  *int              `json:"maximum_cardinality" yaml:"maximum_cardinality"`
	PermissibleValues   []PermissibleValue `json:"permissible_values" yaml:"permissible_values"`
	IfAbsent            *wireIfAbsent      `json:"ifabsent" yaml:"ifabsent"`
	IsA                 string            `json:"is_a" yaml:"is_a"`
	Annotations         map[string]any    `json:"annotations" yaml:"annotations"`
}

// wireIfAbsent accepts either a bare string directive ("bnode", "uuid",
// "class_name", or any other literal text) or a structured form.
type wireIfAbsent struct {
	raw string
}

func (w *wireIfAbsent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		w.raw = s
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err == nil {
		w.raw = m["kind"]
		return nil
	}
	return fmt.Errorf("%w: ifabsent", ErrDecode)
}

func (w *wireIfAbsent) toModel() *IfAbsent {
	if w == nil {
		return nil
	}
	switch strings.ToLower(w.raw) {
	case "bnode":
		return &IfAbsent{Kind: IfAbsentBnode}
	case "uuid":
		return &IfAbsent{Kind: IfAbsentUUID}
	case "class_name", "classname":
		return &IfAbsent{Kind: IfAbsentClassName}
	case "datetime":
		return &IfAbsent{Kind: IfAbsentDatetime}
	case "date":
		return &IfAbsent{Kind: IfAbsentDate}
	default:
		if strings.HasPrefix(w.raw, "{") && strings.HasSuffix(w.raw, "}") {
			return &IfAbsent{Kind: IfAbsentExpr, Expr: strings.Trim(w.raw, "{}")}
		}
		return &IfAbsent{Kind: IfAbsentLiteral, Literal: w.raw}
	}
}

type wireType struct {
	BaseType    BaseType `json:"base_type" yaml:"base_type"`
	Pattern     string   `json:"pattern" yaml:"pattern"`
	Description string   `json:"description" yaml:"description"`
}

type wireEnum struct {
	Description       string             `json:"description" yaml:"description"`
	PermissibleValues []PermissibleValue `json:"permissible_values" yaml:"permissible_values"`
}

// Format identifies a schema source's serialization.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// DetectFormat routes on file suffix case-insensitively: ".json" selects
// JSON, anything else selects YAML (spec.md §6.1).
func DetectFormat(filename string) Format {
	if strings.HasSuffix(strings.ToLower(filename), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load parses a schema document. filename is used only to select a decoder
// by suffix; pass any name ending in ".json" to force JSON, anything else
// decodes as YAML (YAML is also a safe superset for plain JSON bodies).
func Load(data []byte, filename string) (*Schema, error) {
	return load(data, DetectFormat(filename))
}

// LoadYAML parses YAML schema text directly.
func LoadYAML(data []byte) (*Schema, error) { return load(data, FormatYAML) }

// LoadJSON parses JSON schema text directly.
func LoadJSON(data []byte) (*Schema, error) { return load(data, FormatJSON) }

func load(data []byte, format Format) (*Schema, error) {
	var w wireSchema
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &w)
	default:
		err = yaml.UnmarshalWithOptions(data, &w, yaml.UseJSONUnmarshaler())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	s := NewSchema(w.Name)
	s.ID = w.ID
	s.Version = w.Version
	s.Description = w.Description
	if w.Prefixes != nil {
		s.Prefixes = w.Prefixes
	}
	s.Subsets = w.Subsets
	s.Annotations = w.Annotations

	for _, wi := range w.Imports {
		s.Imports = append(s.Imports, ImportRef{
			Path: wi.Path, Alias: wi.Alias, Only: wi.Only, Exclude: wi.Exclude, Prefix: wi.Prefix,
		})
	}

	order := recoverDeclarationOrder(data, format)

	types := make(map[string]*Type, len(w.Types))
	for name, wt := range w.Types {
		types[name] = &Type{Name: name, BaseType: wt.BaseType, Pattern: wt.Pattern, Description: wt.Description}
	}
	for _, name := range orderedKeys(order["types"], w.Types) {
		s.Types.Set(name, types[name])
	}

	enums := make(map[string]*Enum, len(w.Enums))
	for name, we := range w.Enums {
		e := &Enum{Name: name, Description: we.Description, PermissibleValues: we.PermissibleValues}
		if dups := e.DuplicateTexts(); len(dups) > 0 {
			return nil, fmt.Errorf("%w: enum %q: %v", ErrDuplicateEnumValue, name, dups)
		}
		enums[name] = e
	}
	for _, name := range orderedKeys(order["enums"], w.Enums) {
		s.Enums.Set(name, enums[name])
	}

	slots := make(map[string]*Slot, len(w.Slots))
	for name, ws := range w.Slots {
		slots[name] = slotFromWire(name, ws)
	}
	for _, name := range orderedKeys(order["slots"], w.Slots) {
		s.Slots.Set(name, slots[name])
	}

	classes := make(map[string]*Class, len(w.Classes))
	for name, wc := range w.Classes {
		classes[name] = classFromWire(name, wc)
	}
	for _, name := range orderedKeys(order["classes"], w.Classes) {
		s.Classes.Set(name, classes[name])
	}

	return s, nil
}

// orderedKeys returns the declaration order recovered for a section if it
// accounts for every key present in the decoded map, otherwise it falls back
// to Go map iteration (non-deterministic, but only when order recovery
// itself could not establish a trustworthy order).
func orderedKeys[V any](recovered []string, decoded map[string]V) []string {
	if len(recovered) == len(decoded) {
		ok := true
		for _, k := range recovered {
			if _, exists := decoded[k]; !exists {
				ok = false
				break
			}
		}
		if ok {
			return recovered
		}
	}
	out := make([]string, 0, len(decoded))
	for k := range decoded {
		out = append(out, k)
	}
	return out
}

func slotFromWire(name string, ws *wireSlot) *Slot {
	if ws == nil {
		return NewSlot(name)
	}
	return &Slot{
		Name:               name,
		Description:        ws.Description,
		Range:              ws.Range,
		Required:           ws.Required,
		Multivalued:        ws.Multivalued,
		Identifier:         ws.Identifier,
		Pattern:            ws.Pattern,
		StructuredPattern:  ws.StructuredPattern,
		EqualsStringIn:     ws.EqualsStringIn,
		MinimumValue:       ws.MinimumValue,
		MaximumValue:       ws.MaximumValue,
		MinLength:          ws.MinLength,
		MaxLength:          ws.MaxLength,
		MinimumCardinality: ws.MinimumCardinality,
		MaximumCardinality: ws.MaximumCardinality,
		PermissibleValues:  ws.PermissibleValues,
		IfAbsent:           ws.IfAbsent.toModel(),
		IsA:                ws.IsA,
		Annotations:        ws.Annotations,
	}
}

func classFromWire(name string, wc *wireClass) *Class {
	c := NewClass(name)
	if wc == nil {
		return c
	}
	c.Description = wc.Description
	c.IsA = wc.IsA
	c.Mixins = wc.Mixins
	c.Abstract = wc.Abstract
	c.Mixin = wc.Mixin
	c.Slots = wc.Slots
	c.RecursionOptions = wc.RecursionOptions
	c.Annotations = wc.Annotations

	for n, ws := range wc.Attributes {
		c.Attributes.Set(n, slotFromWire(n, ws))
	}
	for n, ws := range wc.SlotUsage {
		c.SlotUsage.Set(n, slotFromWire(n, ws))
	}
	for n, wr := range wc.IfRequired {
		c.IfRequired.Set(n, &ConditionalRequirement{Condition: wr.Condition, ThenRequired: wr.ThenRequired})
	}
	for n, slots := range wc.UniqueKeys {
		c.UniqueKeys.Set(n, &UniqueKey{Name: n, SlotNames: slots})
	}
	for _, wr := range wc.Rules {
		c.Rules = append(c.Rules, Rule{
			Title:          wr.Title,
			Description:    wr.Description,
			Preconditions:  predicateFromWire(wr.Preconditions),
			Postconditions: predicateFromWire(wr.Postconditions),
			ElseConditions: predicateFromWire(wr.ElseConditions),
		})
	}
	return c
}

func predicateFromWire(wp *wirePredicate) *Predicate {
	if wp == nil {
		return nil
	}
	p := &Predicate{SlotConditions: NewOrderedMap[*SlotCondition]()}
	for n, sc := range wp.SlotConditions {
		p.SlotConditions.Set(n, sc)
	}
	return p
}

// recoverDeclarationOrder best-effort recovers the source declaration order
// of each top-level section (classes/slots/types/enums) so that the
// resulting OrderedMaps satisfy spec.md §3.1's "maps preserve insertion
// order" invariant even though Go's native map decode does not. JSON order
// is recovered by walking raw tokens with jsontext.Decoder (already a
// dependency via go-json-experiment); YAML order is recovered via
// goccy/go-yaml's yaml.MapSlice, which preserves mapping-node order.
func recoverDeclarationOrder(data []byte, format Format) map[string][]string {
	sections := map[string]bool{"classes": true, "slots": true, "types": true, "enums": true}
	result := make(map[string][]string)

	if format == FormatJSON {
		dec := jsontext.NewDecoder(bytes.NewReader(data))
		// stack tracks container kind ('{' or '[') by depth; expectKey
		// tracks, per depth, whether the next string token inside an object
		// is a key (true) or a value (false). Sections are only recognized
		// as depth-1 object keys whose value is itself an object, so a
		// depth-2 key inside that object is the declaration we want.
		var stack []byte
		expectKey := map[int]bool{}
		var currentSection string
		var pendingSectionKey string
		for {
			tok, err := dec.ReadToken()
			if err != nil {
				break
			}
			depth := len(stack)
			switch tok.Kind() {
			case '{':
				if depth == 1 && pendingSectionKey != "" {
					currentSection = pendingSectionKey
				}
				stack = append(stack, '{')
				expectKey[len(stack)] = true
			case '[':
				stack = append(stack, '[')
			case '}':
				stack = stack[:len(stack)-1]
				delete(expectKey, depth)
				if depth == 2 {
					currentSection = ""
				}
				if n := len(stack); n >= 1 && stack[n-1] == '{' {
					expectKey[n] = true
				}
			case ']':
				stack = stack[:len(stack)-1]
				if n := len(stack); n >= 1 && stack[n-1] == '{' {
					expectKey[n] = true
				}
			case '"':
				if depth >= 1 && stack[depth-1] == '{' && expectKey[depth] {
					key := tok.String()
					if depth == 1 && sections[key] {
						pendingSectionKey = key
					} else {
						pendingSectionKey = ""
					}
					if depth == 2 && currentSection != "" {
						result[currentSection] = append(result[currentSection], key)
					}
					expectKey[depth] = false
				} else if depth >= 1 && stack[depth-1] == '{' {
					expectKey[depth] = true
				}
			default:
				if depth >= 1 && stack[depth-1] == '{' {
					expectKey[depth] = true
				}
			}
		}
		return result
	}

	var top yaml.MapSlice
	if err := yaml.Unmarshal(data, &top); err != nil {
		return result
	}
	for _, item := range top {
		key, ok := item.Key.(string)
		if !ok || !sections[key] {
			continue
		}
		inner, ok := item.Value.(yaml.MapSlice)
		if !ok {
			continue
		}
		for _, innerItem := range inner {
			if ik, ok := innerItem.Key.(string); ok {
				result[key] = append(result[key], ik)
			}
		}
	}
	return result
}
