// Package validate implements the validator pipeline (§4.6) and its
// multi-layer cache (§4.7): an ordered set of Validator components applied
// to a schema instance, a DefaultApplier for ifabsent directives, and an
// L1/L2/L3 cache of compiled validators keyed by schema identity.
package validate

import (
	"fmt"
	"strings"

	"github.com/kaptinlin/go-i18n"
)

// Severity classifies an Issue.
type Severity string

const (
	SeverityError   Severity = "Error"
	SeverityWarning Severity = "Warning"
	SeverityInfo    Severity = "Info"
)

// Issue is one validator finding (§4.6).
type Issue struct {
	Severity      Severity       `json:"severity"`
	Message       string         `json:"message"`
	Path          string         `json:"path"`
	Code          string         `json:"code,omitempty"`
	ValidatorName string         `json:"validatorName"`
	Context       map[string]any `json:"context,omitempty"`
}

// NewIssue builds an error-severity Issue with a message template and
// substitution context; message uses `{key}` placeholders resolved by
// Localize/Error against Context.
func NewIssue(validatorName, code, path, message string, context map[string]any) Issue {
	return Issue{
		Severity:      SeverityError,
		Message:       message,
		Path:          path,
		Code:          code,
		ValidatorName: validatorName,
		Context:       context,
	}
}

// Error implements the error interface with English placeholder
// substitution, for callers that don't need localization.
func (i Issue) Error() string {
	return substitute(i.Message, i.Context)
}

// Localize renders the issue's message via a go-i18n Localizer, falling
// back to Error's English substitution when localizer is nil.
func (i Issue) Localize(localizer *i18n.Localizer) string {
	if localizer == nil {
		return i.Error()
	}
	return localizer.Get(i.Code, i18n.Vars(i.Context))
}

func substitute(template string, context map[string]any) string {
	for k, v := range context {
		template = strings.ReplaceAll(template, "{"+k+"}", fmt.Sprint(v))
	}
	return template
}

// Report is the accumulated outcome of running the pipeline against one
// instance: Valid iff no error-severity Issue was produced.
type Report struct {
	Valid  bool
	Issues []Issue
}

// NewReport returns an initially-valid Report.
func NewReport() *Report {
	return &Report{Valid: true}
}

// Add appends issues, flipping Valid to false on the first error-severity
// one encountered.
func (r *Report) Add(issues ...Issue) {
	for _, issue := range issues {
		r.Issues = append(r.Issues, issue)
		if issue.Severity == SeverityError {
			r.Valid = false
		}
	}
}

// Merge folds another Report's issues into r.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Add(other.Issues...)
}

// ByPath groups issues by their Path, for callers that want a per-field view.
func (r *Report) ByPath() map[string][]Issue {
	out := make(map[string][]Issue)
	for _, issue := range r.Issues {
		out[issue.Path] = append(out[issue.Path], issue)
	}
	return out
}
