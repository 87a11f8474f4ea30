package validate

import (
	"regexp"
	"sync"

	"github.com/schemalang/core/schema"
)

// PatternValidator checks a slot's simple regex `pattern` against a string
// value (§4.6). Compiled patterns are cached by pattern text, since the
// same Slot is validated against every instance in a collection.
type PatternValidator struct {
	mu    sync.Mutex
	cache map[string]*regexp.Regexp
}

func NewPatternValidator() *PatternValidator {
	return &PatternValidator{cache: map[string]*regexp.Regexp{}}
}

func (v *PatternValidator) Name() string { return "pattern" }

func (v *PatternValidator) Applies(slot *schema.Slot) bool { return slot.Pattern != "" }

func (v *PatternValidator) Validate(value any, slot *schema.Slot, ctx *Context) []Issue {
	if slot.Pattern == "" || value == nil {
		return nil
	}
	re, err := v.compiled(slot.Pattern)
	if err != nil {
		return []Issue{NewIssue(v.Name(), "invalid_pattern", fmtPath(ctx, slot.Name),
			"slot {slot} has an invalid pattern: {err}", map[string]any{"slot": slot.Name, "err": err.Error()})}
	}
	var issues []Issue
	for _, elem := range valuesOf(value, slot) {
		s, ok := elem.(string)
		if !ok {
			continue
		}
		if !re.MatchString(s) {
			issues = append(issues, NewIssue(v.Name(), "pattern_mismatch", fmtPath(ctx, slot.Name),
				"value {value} of slot {slot} does not match pattern {pattern}",
				map[string]any{"slot": slot.Name, "value": s, "pattern": slot.Pattern}))
		}
	}
	return issues
}

func (v *PatternValidator) compiled(pattern string) (*regexp.Regexp, error) {
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
