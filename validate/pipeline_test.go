package validate

import (
	"testing"

	"github.com/schemalang/core/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func personSchema() (*schema.Schema, *schema.Class) {
	s := schema.NewSchema("Test")

	name := schema.NewSlot("name")
	name.Required = true
	s.Slots.Set("name", name)

	age := schema.NewSlot("age")
	age.Range = "integer"
	minAge := 0.0
	age.MinimumValue = &minAge
	s.Slots.Set("age", age)

	c := schema.NewClass("Person")
	c.EffectiveSlots = []string{"name", "age"}
	c.UniqueKeys = schema.NewOrderedMap[*schema.UniqueKey]()
	c.UniqueKeys.Set("name_key", &schema.UniqueKey{Name: "name_key", SlotNames: []string{"name"}})
	s.Classes.Set("Person", c)
	return s, c
}

func TestPipelineValidateInstanceCollectsViolations(t *testing.T) {
	p := NewPipeline()
	s, c := personSchema()
	ctx := NewContext(s, c, nil, nil)

	report := p.ValidateInstance(map[string]any{"age": float64(-5)}, c, ctx)
	assert.False(t, report.Valid)

	codes := make(map[string]bool)
	for _, iss := range report.Issues {
		codes[iss.Code] = true
	}
	assert.True(t, codes["missing_required_slot"])
	assert.True(t, codes["below_minimum"])
}

func TestPipelineValidateInstancePasses(t *testing.T) {
	p := NewPipeline()
	s, c := personSchema()
	ctx := NewContext(s, c, nil, nil)
	report := p.ValidateInstance(map[string]any{"name": "Alice", "age": float64(30)}, c, ctx)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Issues)
}

func TestPipelineCompileAndValidateInstanceCompiledAgree(t *testing.T) {
	p := NewPipeline()
	s, c := personSchema()
	cv := p.Compile(c, s)
	assert.Equal(t, "Person", cv.ClassName)
	assert.ElementsMatch(t, []string{"name", "age"}, cv.EffectiveSlots)

	ctx := NewContext(s, c, nil, nil)
	instance := map[string]any{"age": float64(-1)}
	uncompiled := p.ValidateInstance(instance, c, NewContext(s, c, nil, nil))
	compiled := p.ValidateInstanceCompiled(instance, c, ctx, cv)

	assert.Equal(t, uncompiled.Valid, compiled.Valid)
	assert.Equal(t, len(uncompiled.Issues), len(compiled.Issues))
}

func TestCompiledValidatorMarshalRoundTrips(t *testing.T) {
	p := NewPipeline()
	s, c := personSchema()
	cv := p.Compile(c, s)

	blob, err := cv.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalCompiledValidator(blob)
	require.NoError(t, err)
	assert.Equal(t, cv.ClassName, got.ClassName)
	assert.Equal(t, cv.EffectiveSlots, got.EffectiveSlots)
}

func TestPipelineValidateCollectionFlagsUniqueKeyViolation(t *testing.T) {
	p := NewPipeline()
	s, c := personSchema()
	instances := []map[string]any{
		{"name": "Alice", "age": float64(30)},
		{"name": "Alice", "age": float64(40)},
	}
	report := p.ValidateCollection(instances, c, s, nil)
	assert.False(t, report.Valid)

	found := false
	for _, iss := range report.Issues {
		if iss.Code == "unique_key_violation" {
			found = true
		}
	}
	assert.True(t, found)
}
