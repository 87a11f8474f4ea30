package validate

import (
	"fmt"
	"strings"

	"github.com/schemalang/core/schema"
)

// UniqueKeyValidator checks, across a collection of instances of the same
// class, that every declared unique_key's slot tuple has no two instances
// sharing the same combined value (§4.6).
type UniqueKeyValidator struct{}

func (v *UniqueKeyValidator) Name() string { return "unique_key" }

// ValidateCollection reports one UniqueKeyViolation Issue per duplicate
// tuple encountered, keyed to the path of the second (and later) offending
// instance.
func (v *UniqueKeyValidator) ValidateCollection(instances []map[string]any, class *schema.Class, ctx *Context) []Issue {
	if class.UniqueKeys == nil {
		return nil
	}
	var issues []Issue
	for _, keyName := range class.UniqueKeys.Keys() {
		uk, _ := class.UniqueKeys.Get(keyName)
		seen := make(map[string]int, len(instances))
		for i, inst := range instances {
			tuple, complete := v.tupleKey(inst, uk.SlotNames)
			if !complete {
				continue
			}
			if first, dup := seen[tuple]; dup {
				issues = append(issues, NewIssue(v.Name(), "unique_key_violation", fmt.Sprintf("[%d]", i),
					"instance at index {index} duplicates unique_key {key} already seen at index {first}",
					map[string]any{"index": i, "first": first, "key": uk.Name}))
				continue
			}
			seen[tuple] = i
		}
	}
	return issues
}

func (v *UniqueKeyValidator) tupleKey(instance map[string]any, slotNames []string) (string, bool) {
	parts := make([]string, len(slotNames))
	for i, name := range slotNames {
		val, ok := instance[name]
		if !ok || val == nil {
			return "", false
		}
		parts[i] = fmt.Sprintf("%v", val)
	}
	return strings.Join(parts, "\x1f"), true
}
