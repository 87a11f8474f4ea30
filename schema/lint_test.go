package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLintNamingConventionFlagsBadNames(t *testing.T) {
	s := NewSchema("Example")
	s.Classes.Set("lowercase_class", NewClass("lowercase_class"))
	s.Slots.Set("BadSlotName", NewSlot("BadSlotName"))

	issues := NewLintEngine().Run(s)
	var sawClass, sawSlot bool
	for _, i := range issues {
		if i.Rule == "naming-convention" && i.Path == "/classes/lowercase_class" {
			sawClass = true
		}
		if i.Rule == "naming-convention" && i.Path == "/slots/BadSlotName" {
			sawSlot = true
		}
	}
	assert.True(t, sawClass)
	assert.True(t, sawSlot)
}

func TestLintMissingDocumentationRule(t *testing.T) {
	s := NewSchema("Example")
	s.Classes.Set("Person", NewClass("Person"))

	issues := NewLintEngine().Run(s)
	found := false
	for _, i := range issues {
		if i.Rule == "missing-documentation" && i.Path == "/classes/Person" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLintUnusedDefinitionsRuleAndFix(t *testing.T) {
	s := NewSchema("Example")
	s.Slots.Set("orphan", NewSlot("orphan"))
	person := NewClass("Person")
	person.Slots = []string{"used"}
	s.Classes.Set("Person", person)
	s.Slots.Set("used", NewSlot("used"))

	engine := NewLintEngine()
	issues := engine.Run(s)

	var orphanIssue *LintIssue
	for i := range issues {
		if issues[i].Rule == "unused-definitions" && issues[i].Path == "/slots/orphan" {
			orphanIssue = &issues[i]
		}
	}
	require.NotNil(t, orphanIssue)
	assert.True(t, orphanIssue.Fixable)

	fixed := engine.Fix(s, issues)
	assert.Equal(t, 1, fixed)
	_, ok := s.Slots.Get("orphan")
	assert.False(t, ok)
	_, ok = s.Slots.Get("used")
	assert.True(t, ok)
}

func TestLintSlotConsistencyRuleFlagsUndefinedSlot(t *testing.T) {
	s := NewSchema("Example")
	person := NewClass("Person")
	person.Slots = []string{"ghost"}
	s.Classes.Set("Person", person)

	issues := NewLintEngine().Run(s)
	found := false
	for _, i := range issues {
		if i.Rule == "slot-consistency" {
			found = true
			assert.Equal(t, SeverityError, i.Severity)
		}
	}
	assert.True(t, found)
}

func TestLintTypeSafetyRuleFlagsUnknownRange(t *testing.T) {
	s := NewSchema("Example")
	sl := NewSlot("widget")
	sl.Range = "Widget" // not declared anywhere
	s.Slots.Set("widget", sl)

	issues := NewLintEngine().Run(s)
	found := false
	for _, i := range issues {
		if i.Rule == "type-safety" && i.Path == "/slots/widget" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLintTypeSafetyAcceptsKnownRanges(t *testing.T) {
	s := NewSchema("Example")
	s.Classes.Set("Person", NewClass("Person"))
	s.Types.Set("Zip", NewType("Zip", BaseString))
	s.Enums.Set("Status", NewEnum("Status"))

	personSlot := NewSlot("owner")
	personSlot.Range = "Person"
	zipSlot := NewSlot("zip")
	zipSlot.Range = "Zip"
	statusSlot := NewSlot("status")
	statusSlot.Range = "Status"
	builtinSlot := NewSlot("name")
	builtinSlot.Range = "string"
	s.Slots.Set("owner", personSlot)
	s.Slots.Set("zip", zipSlot)
	s.Slots.Set("status", statusSlot)
	s.Slots.Set("name", builtinSlot)

	issues := NewLintEngine().Run(s)
	for _, i := range issues {
		assert.NotEqual(t, "type-safety", i.Rule)
	}
}

func TestLintSchemaMetadataRule(t *testing.T) {
	s := NewSchema("")
	issues := NewLintEngine().Run(s)
	var messages []string
	for _, i := range issues {
		if i.Rule == "schema-metadata" {
			messages = append(messages, i.Message)
		}
	}
	assert.Len(t, messages, 3) // no name, no version, no license annotation
}

func TestLintJUnitXMLReflectsSeverityCounts(t *testing.T) {
	issues := []LintIssue{
		{Rule: "a", Severity: SeverityError, Message: "boom"},
		{Rule: "b", Severity: SeverityWarning, Message: "careful"},
		{Rule: "c", Severity: SeverityInfo, Message: "fyi"},
	}
	assert.Equal(t, 1, ErrorCount(issues))
	assert.Equal(t, 1, WarningCount(issues))
	assert.Equal(t, 1, InfoCount(issues))

	out, err := ToJUnitXML("schema-lint", issues)
	require.NoError(t, err)
	xml := string(out)
	assert.Contains(t, xml, `<testsuite name="Schema Lint" tests="1" errors="1" failures="1">`)
	assert.Contains(t, xml, `<error message="boom">`)
	assert.Contains(t, xml, `<failure message="careful">`)
	assert.NotContains(t, xml, "fyi")
}

func TestLintEngineWithCustomRuleSet(t *testing.T) {
	calls := 0
	custom := LintRule{
		Name: "custom",
		Check: func(s *Schema) []LintIssue {
			calls++
			return nil
		},
	}
	engine := NewLintEngineWithRules([]LintRule{custom})
	engine.Run(NewSchema("X"))
	assert.Equal(t, 1, calls)
	assert.Len(t, engine.Rules(), 1)
}
