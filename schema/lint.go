package schema

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LintSeverity classifies a lint Issue (§4.12).
type LintSeverity string

const (
	SeverityError   LintSeverity = "Error"
	SeverityWarning LintSeverity = "Warning"
	SeverityInfo    LintSeverity = "Info"
)

// LintIssue is one finding reported by a LintRule.
type LintIssue struct {
	Rule     string       `json:"rule"`
	Severity LintSeverity `json:"severity"`
	Path     string       `json:"path"`
	Message  string       `json:"message"`
	Fixable  bool         `json:"fixable"`
}

// LintRule is a named, pluggable check (§4.12).
type LintRule struct {
	Name            string
	Description     string
	DefaultSeverity LintSeverity
	Check           func(s *Schema) []LintIssue
	// Fix applies a remediation for issues this rule previously reported,
	// mutating s in place, and returns the number of issues it resolved.
	// Nil for rules with no automated fix.
	Fix func(s *Schema, issues []LintIssue) int
}

// LintEngine runs a set of enabled rules against a schema (C14).
type LintEngine struct {
	rules []LintRule
}

// NewLintEngine constructs a LintEngine with the six built-in rules
// enabled (§4.12).
func NewLintEngine() *LintEngine {
	return &LintEngine{rules: builtinLintRules()}
}

// NewLintEngineWithRules constructs a LintEngine running exactly the given
// rules, letting embedders add custom rules or trim the built-in set.
func NewLintEngineWithRules(rules []LintRule) *LintEngine {
	return &LintEngine{rules: rules}
}

// Rules returns the engine's configured rules.
func (e *LintEngine) Rules() []LintRule { return e.rules }

// Run executes every enabled rule against s and returns the combined
// issues.
func (e *LintEngine) Run(s *Schema) []LintIssue {
	var issues []LintIssue
	for _, r := range e.rules {
		issues = append(issues, r.Check(s)...)
	}
	return issues
}

// Fix applies each rule's Fix to the issues it reported that are marked
// fixable, mutating s in place, and returns the total number of issues
// resolved.
func (e *LintEngine) Fix(s *Schema, issues []LintIssue) int {
	byRule := map[string][]LintIssue{}
	for _, i := range issues {
		if i.Fixable {
			byRule[i.Rule] = append(byRule[i.Rule], i)
		}
	}
	fixed := 0
	for _, r := range e.rules {
		if r.Fix == nil {
			continue
		}
		if theirs := byRule[r.Name]; len(theirs) > 0 {
			fixed += r.Fix(s, theirs)
		}
	}
	return fixed
}

// ErrorCount, WarningCount, and InfoCount tally issues by LintSeverity,
// the counters a CI gate typically reads off a lint run.
func ErrorCount(issues []LintIssue) int   { return countSeverity(issues, SeverityError) }
func WarningCount(issues []LintIssue) int { return countSeverity(issues, SeverityWarning) }
func InfoCount(issues []LintIssue) int    { return countSeverity(issues, SeverityInfo) }

func countSeverity(issues []LintIssue, sev LintSeverity) int {
	n := 0
	for _, i := range issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}

type junitTestsuite struct {
	XMLName  xml.Name `xml:"testsuite"`
	Name     string   `xml:"name,attr"`
	Tests    int      `xml:"tests,attr"`
	Errors   int      `xml:"errors,attr"`
	Failures int      `xml:"failures,attr"`
	Case     junitTestcase `xml:"testcase"`
}

type junitTestcase struct {
	Name     string          `xml:"name,attr"`
	Errors   []junitMessage  `xml:"error"`
	Failures []junitMessage  `xml:"failure"`
}

type junitMessage struct {
	Message string `xml:"message,attr"`
}

// ToJUnitXML renders issues as a single-testcase JUnit XML report, letting
// a CI pipeline consume a lint run the same way it consumes test output:
// SeverityError issues become <error>, SeverityWarning issues become
// <failure>, and SeverityInfo issues are omitted (informational only).
func ToJUnitXML(testName string, issues []LintIssue) ([]byte, error) {
	suite := junitTestsuite{
		Name:     "Schema Lint",
		Tests:    1,
		Errors:   ErrorCount(issues),
		Failures: WarningCount(issues),
		Case:     junitTestcase{Name: testName},
	}
	for _, i := range issues {
		switch i.Severity {
		case SeverityError:
			suite.Case.Errors = append(suite.Case.Errors, junitMessage{Message: i.Message})
		case SeverityWarning:
			suite.Case.Failures = append(suite.Case.Failures, junitMessage{Message: i.Message})
		}
	}
	out, err := xml.MarshalIndent(suite, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func builtinLintRules() []LintRule {
	return []LintRule{
		namingConventionRule(),
		missingDocumentationRule(),
		unusedDefinitionsRule(),
		slotConsistencyRule(),
		typeSafetyRule(),
		schemaMetadataRule(),
	}
}

var (
	pascalCaseRe = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	snakeCaseRe  = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	titleCaser   = cases.Title(language.English)
)

func namingConventionRule() LintRule {
	return LintRule{
		Name:            "naming-convention",
		Description:     "classes are PascalCase, slots are snake_case",
		DefaultSeverity: SeverityWarning,
		Check: func(s *Schema) []LintIssue {
			var issues []LintIssue
			for _, name := range s.Classes.Keys() {
				if !pascalCaseRe.MatchString(name) {
					issues = append(issues, LintIssue{
						Rule: "naming-convention", Severity: SeverityWarning,
						Path:    "/classes/" + name,
						Message: fmt.Sprintf("class %q should be PascalCase, e.g. %q", name, titleCaser.String(name)),
					})
				}
			}
			for _, name := range s.Slots.Keys() {
				if !snakeCaseRe.MatchString(name) {
					issues = append(issues, LintIssue{
						Rule: "naming-convention", Severity: SeverityWarning,
						Path:    "/slots/" + name,
						Message: fmt.Sprintf("slot %q should be snake_case", name),
					})
				}
			}
			return issues
		},
	}
}

func missingDocumentationRule() LintRule {
	return LintRule{
		Name:            "missing-documentation",
		Description:     "schema/classes/slots should carry a description",
		DefaultSeverity: SeverityInfo,
		Check: func(s *Schema) []LintIssue {
			var issues []LintIssue
			if strings.TrimSpace(s.Description) == "" {
				issues = append(issues, LintIssue{Rule: "missing-documentation", Severity: SeverityInfo, Path: "/", Message: "schema has no description"})
			}
			for _, name := range s.Classes.Keys() {
				c, _ := s.Classes.Get(name)
				if strings.TrimSpace(c.Description) == "" {
					issues = append(issues, LintIssue{Rule: "missing-documentation", Severity: SeverityInfo, Path: "/classes/" + name, Message: fmt.Sprintf("class %q has no description", name)})
				}
			}
			for _, name := range s.Slots.Keys() {
				sl, _ := s.Slots.Get(name)
				if strings.TrimSpace(sl.Description) == "" {
					issues = append(issues, LintIssue{Rule: "missing-documentation", Severity: SeverityInfo, Path: "/slots/" + name, Message: fmt.Sprintf("slot %q has no description", name)})
				}
			}
			return issues
		},
	}
}

func unusedDefinitionsRule() LintRule {
	return LintRule{
		Name:            "unused-definitions",
		Description:     "slots/types not referenced from any class or slot range",
		DefaultSeverity: SeverityWarning,
		Check: func(s *Schema) []LintIssue {
			referenced := referencedNames(s)
			var issues []LintIssue
			for _, name := range s.Slots.Keys() {
				if !referenced[name] {
					issues = append(issues, LintIssue{Rule: "unused-definitions", Severity: SeverityWarning, Path: "/slots/" + name, Message: fmt.Sprintf("slot %q is never referenced", name), Fixable: true})
				}
			}
			for _, name := range s.Types.Keys() {
				if !referenced[name] {
					issues = append(issues, LintIssue{Rule: "unused-definitions", Severity: SeverityWarning, Path: "/types/" + name, Message: fmt.Sprintf("type %q is never referenced", name), Fixable: true})
				}
			}
			return issues
		},
		Fix: func(s *Schema, issues []LintIssue) int {
			fixed := 0
			for _, issue := range issues {
				parts := strings.SplitN(strings.TrimPrefix(issue.Path, "/"), "/", 2)
				if len(parts) != 2 {
					continue
				}
				switch parts[0] {
				case "slots":
					if _, ok := s.Slots.Get(parts[1]); ok {
						s.Slots.Delete(parts[1])
						fixed++
					}
				case "types":
					if _, ok := s.Types.Get(parts[1]); ok {
						s.Types.Delete(parts[1])
						fixed++
					}
				}
			}
			return fixed
		},
	}
}

func referencedNames(s *Schema) map[string]bool {
	referenced := map[string]bool{}
	for _, name := range s.Classes.Keys() {
		c, _ := s.Classes.Get(name)
		for _, sl := range c.Slots {
			referenced[sl] = true
		}
		for _, k := range c.Attributes.Keys() {
			sl, _ := c.Attributes.Get(k)
			if sl.Range != "" {
				referenced[sl.Range] = true
			}
		}
	}
	for _, name := range s.Slots.Keys() {
		sl, _ := s.Slots.Get(name)
		if sl.Range != "" {
			referenced[sl.Range] = true
		}
	}
	return referenced
}

func slotConsistencyRule() LintRule {
	return LintRule{
		Name:            "slot-consistency",
		Description:     "every class-referenced slot exists",
		DefaultSeverity: SeverityError,
		Check: func(s *Schema) []LintIssue {
			var issues []LintIssue
			for _, name := range s.Classes.Keys() {
				c, _ := s.Classes.Get(name)
				for _, sl := range c.Slots {
					if _, ok := s.Slots.Get(sl); ok {
						continue
					}
					if _, ok := c.Attributes.Get(sl); ok {
						continue
					}
					issues = append(issues, LintIssue{Rule: "slot-consistency", Severity: SeverityError, Path: "/classes/" + name + "/slots/" + sl, Message: fmt.Sprintf("class %q references undefined slot %q", name, sl)})
				}
			}
			return issues
		},
	}
}

func typeSafetyRule() LintRule {
	return LintRule{
		Name:            "type-safety",
		Description:     "every slot range resolves to a known builtin/class/type/enum",
		DefaultSeverity: SeverityError,
		Check: func(s *Schema) []LintIssue {
			var issues []LintIssue
			check := func(path, rng string) {
				if rng == "" || IsBuiltinBaseType(rng) {
					return
				}
				if _, ok := s.Classes.Get(rng); ok {
					return
				}
				if _, ok := s.Types.Get(rng); ok {
					return
				}
				if _, ok := s.Enums.Get(rng); ok {
					return
				}
				issues = append(issues, LintIssue{Rule: "type-safety", Severity: SeverityError, Path: path, Message: fmt.Sprintf("range %q does not resolve to any builtin, class, type, or enum", rng)})
			}
			for _, name := range s.Slots.Keys() {
				sl, _ := s.Slots.Get(name)
				check("/slots/"+name, sl.Range)
			}
			for _, name := range s.Classes.Keys() {
				c, _ := s.Classes.Get(name)
				for _, k := range c.Attributes.Keys() {
					sl, _ := c.Attributes.Get(k)
					check("/classes/"+name+"/attributes/"+k, sl.Range)
				}
			}
			return issues
		},
	}
}

func schemaMetadataRule() LintRule {
	return LintRule{
		Name:            "schema-metadata",
		Description:     "schema declares name, version, and license",
		DefaultSeverity: SeverityWarning,
		Check: func(s *Schema) []LintIssue {
			var issues []LintIssue
			if strings.TrimSpace(s.Name) == "" {
				issues = append(issues, LintIssue{Rule: "schema-metadata", Severity: SeverityWarning, Path: "/", Message: "schema has no name"})
			}
			if strings.TrimSpace(s.Version) == "" {
				issues = append(issues, LintIssue{Rule: "schema-metadata", Severity: SeverityWarning, Path: "/", Message: "schema has no version"})
			}
			if _, ok := s.Annotations["license"]; !ok {
				issues = append(issues, LintIssue{Rule: "schema-metadata", Severity: SeverityWarning, Path: "/", Message: "schema has no license annotation"})
			}
			return issues
		},
	}
}
