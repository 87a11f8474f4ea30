package validate

import (
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/schemalang/core/schema"
)

// StructuredPatternValidator checks a slot's structured_pattern: a regex or
// glob, optionally matched only against a substring (partial_match) and
// optionally interpolated with `{var}` placeholders resolved against the
// instance before matching (§4.6, S5).
type StructuredPatternValidator struct {
	mu    sync.Mutex
	cache map[string]*regexp.Regexp
}

func NewStructuredPatternValidator() *StructuredPatternValidator {
	return &StructuredPatternValidator{cache: map[string]*regexp.Regexp{}}
}

func (v *StructuredPatternValidator) Name() string { return "structured_pattern" }

func (v *StructuredPatternValidator) Applies(slot *schema.Slot) bool {
	return slot.StructuredPattern != nil && slot.StructuredPattern.Pattern != ""
}

func (v *StructuredPatternValidator) Validate(value any, slot *schema.Slot, ctx *Context) []Issue {
	sp := slot.StructuredPattern
	if sp == nil || sp.Pattern == "" || value == nil {
		return nil
	}
	pattern := sp.Pattern
	if sp.Interpolated {
		pattern = interpolate(pattern, ctx.Instance)
	}

	var issues []Issue
	for _, elem := range valuesOf(value, slot) {
		s, ok := elem.(string)
		if !ok {
			continue
		}
		matched, err := v.matches(s, pattern, sp)
		if err != nil {
			issues = append(issues, NewIssue(v.Name(), "invalid_structured_pattern", fmtPath(ctx, slot.Name),
				"slot {slot} has an invalid structured pattern: {err}",
				map[string]any{"slot": slot.Name, "err": err.Error()}))
			continue
		}
		if !matched {
			issues = append(issues, NewIssue(v.Name(), "structured_pattern_mismatch", fmtPath(ctx, slot.Name),
				"value {value} of slot {slot} does not match structured pattern {pattern}",
				map[string]any{"slot": slot.Name, "value": s, "pattern": pattern}))
		}
	}
	return issues
}

// matches reports whether value satisfies pattern. Glob syntax uses
// path.Match. A glob with partial_match has its leading and trailing `*`
// dropped and the rest searched for as a literal substring: `?`, `[...]` and
// inner `*` are not wildcards in that mode.
func (v *StructuredPatternValidator) matches(value, pattern string, sp *schema.StructuredPattern) (bool, error) {
	if sp.Syntax == "glob" {
		if sp.PartialMatch {
			return strings.Contains(value, strings.Trim(pattern, "*")), nil
		}
		return path.Match(pattern, value)
	}
	re, err := v.compiled(pattern)
	if err != nil {
		return false, err
	}
	if sp.PartialMatch {
		return re.MatchString(value), nil
	}
	loc := re.FindStringIndex(value)
	return loc != nil && loc[0] == 0 && loc[1] == len(value), nil
}

func (v *StructuredPatternValidator) compiled(pattern string) (*regexp.Regexp, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if re, ok := v.cache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	v.cache[pattern] = re
	return re, nil
}

// interpolate replaces `{field}` placeholders in pattern with the
// corresponding string-valued top-level field of instance. Placeholders that
// name an absent or non-string field are left in place.
func interpolate(pattern string, instance map[string]any) string {
	for k, val := range instance {
		s, ok := val.(string)
		if !ok {
			continue
		}
		pattern = strings.ReplaceAll(pattern, "{"+k+"}", s)
	}
	return pattern
}
