package schema

import (
	"errors"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-json-experiment/json"
	"github.com/kaptinlin/jsonpointer"
)

// PatchOpKind discriminates a Patch operation (§4.10).
type PatchOpKind string

const (
	PatchOpAdd     PatchOpKind = "add"
	PatchOpRemove  PatchOpKind = "remove"
	PatchOpReplace PatchOpKind = "replace"
	PatchOpMove    PatchOpKind = "move"
	PatchOpCopy    PatchOpKind = "copy"
	PatchOpTest    PatchOpKind = "test"
)

// PatchOp is one JSON-Pointer-style operation. Path follows the hierarchical
// form `/classes/<Name>/slots/<Index or Name>`.
type PatchOp struct {
	Op    PatchOpKind `json:"op"`
	Path  string      `json:"path"`
	From  string       `json:"from,omitempty"`
	Value any          `json:"value,omitempty"`
}

// Patch is an ordered sequence of operations with version metadata
// (§4.10).
type Patch struct {
	FromVersion string    `json:"from_version,omitempty"`
	ToVersion   string    `json:"to_version,omitempty"`
	Breaking    bool      `json:"breaking,omitempty"`
	Description string    `json:"description,omitempty"`
	Ops         []PatchOp `json:"ops"`
}

// ApplyPatch applies p's operations in order to s, aborting with a
// PatchError on the first failure (including a failed Test), and returns a
// new Schema; s is not mutated. Operations run against a JSON projection of
// s via evanphx/json-patch, the RFC 6902 engine the corpus ships, and the
// result is re-decoded into the typed Schema Model.
func ApplyPatch(s *Schema, p *Patch) (*Schema, error) {
	for _, op := range p.Ops {
		if _, err := jsonpointer.Parse(op.Path); err != nil {
			return nil, &PatchError{Kind: PatchInvalidPath, Path: op.Path, Err: err}
		}
		if op.From != "" {
			if _, err := jsonpointer.Parse(op.From); err != nil {
				return nil, &PatchError{Kind: PatchInvalidPath, Path: op.From, Err: err}
			}
		}
	}

	doc, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("schema: marshal for patch: %w", err)
	}

	opsJSON, err := json.Marshal(p.Ops)
	if err != nil {
		return nil, fmt.Errorf("schema: marshal patch ops: %w", err)
	}

	patch, err := jsonpatch.DecodePatch(opsJSON)
	if err != nil {
		return nil, &PatchError{Kind: PatchInvalidPath, Err: err}
	}

	patched, err := patch.Apply(doc)
	if err != nil {
		if isPatchTestFailure(err) {
			return nil, &PatchError{Kind: PatchTestFailed, Err: err}
		}
		return nil, &PatchError{Kind: PatchNotFound, Err: err}
	}

	out, err := load(patched, FormatJSON)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isPatchTestFailure(err error) bool {
	return errors.Is(err, jsonpatch.ErrTestFailed)
}
