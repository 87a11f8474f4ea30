package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildInheritanceSchema() *Schema {
	s := NewSchema("Inheritance")

	named := NewClass("Named")
	named.Slots = []string{"name"}

	timestamped := NewClass("Timestamped")
	timestamped.Mixins = []string{}
	timestamped.Slots = []string{"created"}

	person := NewClass("Person")
	person.IsA = "Named"
	person.Mixins = []string{"Timestamped"}
	person.Slots = []string{"age"}

	s.Classes.Set("Named", named)
	s.Classes.Set("Timestamped", timestamped)
	s.Classes.Set("Person", person)

	s.Slots.Set("name", NewSlot("name"))
	s.Slots.Set("created", NewSlot("created"))
	s.Slots.Set("age", NewSlot("age"))
	return s
}

func TestInheritanceResolverFlattensIsAAndMixins(t *testing.T) {
	s := buildInheritanceSchema()
	resolved, err := NewInheritanceResolver().Resolve(s)
	require.NoError(t, err)

	person, ok := resolved.Classes.Get("Person")
	require.True(t, ok)
	assert.Equal(t, []string{"name", "created", "age"}, person.EffectiveSlots)
}

func TestInheritanceResolverDoesNotMutateSource(t *testing.T) {
	s := buildInheritanceSchema()
	_, err := NewInheritanceResolver().Resolve(s)
	require.NoError(t, err)

	person, _ := s.Classes.Get("Person")
	assert.Nil(t, person.EffectiveSlots)
	assert.False(t, s.IsResolved())
}

func TestInheritanceResolverMarksResultResolved(t *testing.T) {
	s := buildInheritanceSchema()
	resolved, err := NewInheritanceResolver().Resolve(s)
	require.NoError(t, err)
	assert.True(t, resolved.IsResolved())
}

func TestInheritanceResolverDetectsCircularAncestry(t *testing.T) {
	s := NewSchema("Circular")
	a := NewClass("A")
	a.IsA = "B"
	b := NewClass("B")
	b.IsA = "A"
	s.Classes.Set("A", a)
	s.Classes.Set("B", b)

	_, err := NewInheritanceResolver().Resolve(s)
	require.Error(t, err)
	var mergeErr *MergeError
	require.ErrorAs(t, err, &mergeErr)
	assert.Equal(t, MergeIncompatibleSchemas, mergeErr.Kind)
}

func TestEffectiveSlotAppliesSlotUsageOverride(t *testing.T) {
	s := NewSchema("Usage")
	base := NewSlot("age")
	base.Required = false
	base.MinimumValue = nil
	s.Slots.Set("age", base)

	c := NewClass("Person")
	c.Slots = []string{"age"}
	usage := NewSlot("age")
	usage.Required = true
	minVal := 0.0
	usage.MinimumValue = &minVal
	c.SlotUsage.Set("age", usage)
	s.Classes.Set("Person", c)

	resolved := EffectiveSlot(s, c, "age")
	assert.True(t, resolved.Required)
	require.NotNil(t, resolved.MinimumValue)
	assert.Equal(t, 0.0, *resolved.MinimumValue)

	// the schema-level slot is untouched
	original, _ := s.Slots.Get("age")
	assert.False(t, original.Required)
}

func TestEffectiveSlotFallsBackToClassAttribute(t *testing.T) {
	s := NewSchema("Attrs")
	c := NewClass("Person")
	attr := NewSlot("nickname")
	attr.Range = "string"
	c.Attributes.Set("nickname", attr)
	s.Classes.Set("Person", c)

	resolved := EffectiveSlot(s, c, "nickname")
	assert.Equal(t, "string", resolved.Range)
}

func TestEffectiveSlotUnknownNameReturnsEmptySlot(t *testing.T) {
	s := NewSchema("Empty")
	c := NewClass("Person")
	s.Classes.Set("Person", c)
	resolved := EffectiveSlot(s, c, "ghost")
	assert.Equal(t, "ghost", resolved.Name)
	assert.Empty(t, resolved.Range)
}
