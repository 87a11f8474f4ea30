package schema

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// ChangeKind classifies a DetailedChange.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "Added"
	ChangeRemoved  ChangeKind = "Removed"
	ChangeModified ChangeKind = "Modified"
)

// DetailedChange records one element-level difference between two schemas
// (§4.10).
type DetailedChange struct {
	Kind      ChangeKind `json:"kind"`
	Namespace string     `json:"namespace"` // "classes", "slots", "types", or "enums"
	Name      string     `json:"name"`
	Before    any        `json:"before,omitempty"`
	After     any        `json:"after,omitempty"`
}

// DiffReport is the structured output of Diff.
type DiffReport struct {
	Changes []DetailedChange `json:"changes"`
}

// diffOpts ignores Schema's unexported resolved flag and Class.EffectiveSlots
// so cmp.Equal compares only spec-visible state, and lets cmp read the
// unexported keys/values of the OrderedMaps a Class holds, so their contents
// are compared. The annotation-level "ignore_in_diff" exclusion (§4.10) is
// applied separately by the diff functions below.
var diffOpts = []cmp.Option{
	cmpopts.IgnoreUnexported(Schema{}),
	cmpopts.IgnoreFields(Class{}, "EffectiveSlots"),
	cmp.AllowUnexported(OrderedMap[*Slot]{}, OrderedMap[*ConditionalRequirement]{}, OrderedMap[*UniqueKey]{}, OrderedMap[*SlotCondition]{}),
	cmpopts.EquateEmpty(),
}

// Diff computes the structural difference between two resolved schemas,
// excluding any element whose annotations carry `ignore_in_diff: true`
// (§4.10). Changes are reported in schema-insertion order of v2 for
// additions/modifications and v1 for removals, matching the deterministic
// ordering guarantee in §5.
func Diff(v1, v2 *Schema) *DiffReport {
	report := &DiffReport{}
	diffClasses(v1, v2, report)
	diffSlots(v1, v2, report)
	diffTypes(v1, v2, report)
	diffEnums(v1, v2, report)
	return report
}

func diffClasses(v1, v2 *Schema, report *DiffReport) {
	for _, name := range v1.Classes.Keys() {
		c1, _ := v1.Classes.Get(name)
		if IgnoreInDiff(c1.Annotations) {
			continue
		}
		if _, ok := v2.Classes.Get(name); !ok {
			report.Changes = append(report.Changes, DetailedChange{Kind: ChangeRemoved, Namespace: "classes", Name: name, Before: c1})
		}
	}
	for _, name := range v2.Classes.Keys() {
		c2, _ := v2.Classes.Get(name)
		if IgnoreInDiff(c2.Annotations) {
			continue
		}
		c1, existed := v1.Classes.Get(name)
		switch {
		case !existed:
			report.Changes = append(report.Changes, DetailedChange{Kind: ChangeAdded, Namespace: "classes", Name: name, After: c2})
		case !cmp.Equal(c1, c2, diffOpts...):
			report.Changes = append(report.Changes, DetailedChange{Kind: ChangeModified, Namespace: "classes", Name: name, Before: c1, After: c2})
		}
	}
}

func diffSlots(v1, v2 *Schema, report *DiffReport) {
	for _, name := range v1.Slots.Keys() {
		s1, _ := v1.Slots.Get(name)
		if IgnoreInDiff(s1.Annotations) {
			continue
		}
		if _, ok := v2.Slots.Get(name); !ok {
			report.Changes = append(report.Changes, DetailedChange{Kind: ChangeRemoved, Namespace: "slots", Name: name, Before: s1})
		}
	}
	for _, name := range v2.Slots.Keys() {
		s2, _ := v2.Slots.Get(name)
		if IgnoreInDiff(s2.Annotations) {
			continue
		}
		s1, existed := v1.Slots.Get(name)
		switch {
		case !existed:
			report.Changes = append(report.Changes, DetailedChange{Kind: ChangeAdded, Namespace: "slots", Name: name, After: s2})
		case !cmp.Equal(s1, s2, diffOpts...):
			report.Changes = append(report.Changes, DetailedChange{Kind: ChangeModified, Namespace: "slots", Name: name, Before: s1, After: s2})
		}
	}
}

func diffTypes(v1, v2 *Schema, report *DiffReport) {
	for _, name := range v1.Types.Keys() {
		if _, ok := v2.Types.Get(name); !ok {
			t1, _ := v1.Types.Get(name)
			report.Changes = append(report.Changes, DetailedChange{Kind: ChangeRemoved, Namespace: "types", Name: name, Before: t1})
		}
	}
	for _, name := range v2.Types.Keys() {
		t2, _ := v2.Types.Get(name)
		t1, existed := v1.Types.Get(name)
		switch {
		case !existed:
			report.Changes = append(report.Changes, DetailedChange{Kind: ChangeAdded, Namespace: "types", Name: name, After: t2})
		case !cmp.Equal(t1, t2, diffOpts...):
			report.Changes = append(report.Changes, DetailedChange{Kind: ChangeModified, Namespace: "types", Name: name, Before: t1, After: t2})
		}
	}
}

func diffEnums(v1, v2 *Schema, report *DiffReport) {
	for _, name := range v1.Enums.Keys() {
		if _, ok := v2.Enums.Get(name); !ok {
			e1, _ := v1.Enums.Get(name)
			report.Changes = append(report.Changes, DetailedChange{Kind: ChangeRemoved, Namespace: "enums", Name: name, Before: e1})
		}
	}
	for _, name := range v2.Enums.Keys() {
		e2, _ := v2.Enums.Get(name)
		e1, existed := v1.Enums.Get(name)
		switch {
		case !existed:
			report.Changes = append(report.Changes, DetailedChange{Kind: ChangeAdded, Namespace: "enums", Name: name, After: e2})
		case !cmp.Equal(e1, e2, diffOpts...):
			report.Changes = append(report.Changes, DetailedChange{Kind: ChangeModified, Namespace: "enums", Name: name, Before: e1, After: e2})
		}
	}
}
