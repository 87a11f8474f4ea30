package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSchemasUnionOfDisjointDefinitions(t *testing.T) {
	base := NewSchema("Base")
	base.Classes.Set("Person", NewClass("Person"))
	overlay := NewSchema("Overlay")
	overlay.Classes.Set("Vehicle", NewClass("Vehicle"))

	merged, err := MergeSchemas(base, overlay, MergeStrict)
	require.NoError(t, err)
	_, hasPerson := merged.Classes.Get("Person")
	_, hasVehicle := merged.Classes.Get("Vehicle")
	assert.True(t, hasPerson)
	assert.True(t, hasVehicle)
}

func TestMergeSchemasStrictRejectsConflict(t *testing.T) {
	base := NewSchema("Base")
	p1 := NewClass("Person")
	p1.Abstract = false
	base.Classes.Set("Person", p1)

	overlay := NewSchema("Overlay")
	p2 := NewClass("Person")
	p2.Abstract = true
	overlay.Classes.Set("Person", p2)

	_, err := MergeSchemas(base, overlay, MergeStrict)
	require.Error(t, err)
	var merr *MergeError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, MergeConflictingDefinition, merr.Kind)
}

func TestMergeSchemasOverrideLetsOverlayWin(t *testing.T) {
	base := NewSchema("Base")
	s1 := NewSlot("age")
	s1.Required = false
	base.Slots.Set("age", s1)

	overlay := NewSchema("Overlay")
	s2 := NewSlot("age")
	s2.Required = true
	overlay.Slots.Set("age", s2)

	merged, err := MergeSchemas(base, overlay, MergeOverride)
	require.NoError(t, err)
	age, _ := merged.Slots.Get("age")
	assert.True(t, age.Required)
}

func TestMergeSchemasPreserveKeepsBase(t *testing.T) {
	base := NewSchema("Base")
	s1 := NewSlot("age")
	s1.Required = false
	base.Slots.Set("age", s1)

	overlay := NewSchema("Overlay")
	s2 := NewSlot("age")
	s2.Required = true
	overlay.Slots.Set("age", s2)

	merged, err := MergeSchemas(base, overlay, MergePreserve)
	require.NoError(t, err)
	age, _ := merged.Slots.Get("age")
	assert.False(t, age.Required)
}

func TestMergeSchemasUnionMergesEnumValues(t *testing.T) {
	base := NewSchema("Base")
	statusBase := NewEnum("Status")
	statusBase.PermissibleValues = []PermissibleValue{{Text: "active"}}
	base.Enums.Set("Status", statusBase)

	overlay := NewSchema("Overlay")
	statusOverlay := NewEnum("Status")
	statusOverlay.PermissibleValues = []PermissibleValue{{Text: "active"}, {Text: "archived"}}
	overlay.Enums.Set("Status", statusOverlay)

	merged, err := MergeSchemas(base, overlay, MergeUnion)
	require.NoError(t, err)
	status, _ := merged.Enums.Get("Status")
	var texts []string
	for _, pv := range status.PermissibleValues {
		texts = append(texts, pv.Text)
	}
	assert.Equal(t, []string{"active", "archived"}, texts)
}

func TestMergeSchemasUnionMergesClassSlots(t *testing.T) {
	base := NewSchema("Base")
	person := NewClass("Person")
	person.Slots = []string{"name"}
	base.Classes.Set("Person", person)

	overlay := NewSchema("Overlay")
	person2 := NewClass("Person")
	person2.Slots = []string{"name", "age"}
	overlay.Classes.Set("Person", person2)

	merged, err := MergeSchemas(base, overlay, MergeUnion)
	require.NoError(t, err)
	mergedPerson, _ := merged.Classes.Get("Person")
	assert.Equal(t, []string{"name", "age"}, mergedPerson.Slots)
}

func TestMergeSchemasNilOperandReturnsOtherClone(t *testing.T) {
	base := NewSchema("Base")
	base.Classes.Set("Person", NewClass("Person"))

	merged, err := MergeSchemas(base, nil, MergeStrict)
	require.NoError(t, err)
	_, ok := merged.Classes.Get("Person")
	assert.True(t, ok)

	merged2, err := MergeSchemas(nil, base, MergeStrict)
	require.NoError(t, err)
	_, ok = merged2.Classes.Get("Person")
	assert.True(t, ok)
}

func TestMergeSchemasDoesNotMutateOperands(t *testing.T) {
	base := NewSchema("Base")
	base.Classes.Set("Person", NewClass("Person"))
	overlay := NewSchema("Overlay")
	overlay.Classes.Set("Vehicle", NewClass("Vehicle"))

	_, err := MergeSchemas(base, overlay, MergeStrict)
	require.NoError(t, err)

	assert.Equal(t, 1, base.Classes.Len())
	assert.Equal(t, 1, overlay.Classes.Len())
}
