package schema

import (
	"errors"
	"fmt"
)

// === Loader errors ===
var (
	// ErrUnknownFormat names an unrecognized source format. No function in
	// this package returns it: every suffix routes to a decoder (.json to
	// JSON, anything else to YAML) and decode failures are reported as
	// ErrDecode.
	ErrUnknownFormat = errors.New("schema: unknown source format")

	// ErrDecode is returned when the underlying YAML/JSON decoder fails.
	ErrDecode = errors.New("schema: decode failed")

	// ErrDuplicateEnumValue is returned when an Enum's permissible_values
	// are not unique by text (§3.2 invariant).
	ErrDuplicateEnumValue = errors.New("schema: duplicate permissible value")
)

// === Import Resolver errors (C3, §7 ImportError) ===

// ImportErrorKind discriminates ImportError cases.
type ImportErrorKind string

const (
	ImportCircular      ImportErrorKind = "Circular"
	ImportNotFound      ImportErrorKind = "NotFound"
	ImportFetch         ImportErrorKind = "Fetch"
	ImportParse         ImportErrorKind = "Parse"
	ImportDepthExceeded ImportErrorKind = "DepthExceeded"
)

// ImportError is the structured error the Import Resolver returns; import
// errors abort the operation (spec.md §7 propagation policy).
type ImportError struct {
	Kind  ImportErrorKind
	Path  string
	Chain []string
	Err   error
}

func (e *ImportError) Error() string {
	switch e.Kind {
	case ImportCircular:
		return fmt.Sprintf("schema: circular import: %v", e.Chain)
	case ImportNotFound:
		return fmt.Sprintf("schema: import not found: %s", e.Path)
	case ImportFetch:
		return fmt.Sprintf("schema: import fetch failed for %s: %v", e.Path, e.Err)
	case ImportParse:
		return fmt.Sprintf("schema: import parse failed for %s: %v", e.Path, e.Err)
	case ImportDepthExceeded:
		return fmt.Sprintf("schema: import depth exceeded at %s", e.Path)
	default:
		return fmt.Sprintf("schema: import error (%s): %s", e.Kind, e.Path)
	}
}

func (e *ImportError) Unwrap() error { return e.Err }

// Code returns the stable machine-readable error code.
func (e *ImportError) Code() string { return "IMPORT_" + string(e.Kind) }

// === Schema Merger errors (C13, §7 MergeError) ===

// MergeErrorKind discriminates MergeError cases.
type MergeErrorKind string

const (
	MergeConflictingDefinition MergeErrorKind = "ConflictingDefinition"
	MergeInvalidMerge          MergeErrorKind = "InvalidMerge"
	MergeIncompatibleSchemas   MergeErrorKind = "IncompatibleSchemas"
)

// MergeError is returned by the Schema Merger; merge errors abort the
// operation.
type MergeError struct {
	Kind    MergeErrorKind
	Path    string
	Message string
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("schema: merge error (%s) at %s: %s", e.Kind, e.Path, e.Message)
}

// Code returns the stable machine-readable error code.
func (e *MergeError) Code() string { return "MERGE_" + string(e.Kind) }

// === Diff/Patch errors (C12, §7 PatchError) ===

// PatchErrorKind discriminates PatchError cases.
type PatchErrorKind string

const (
	PatchInvalidPath PatchErrorKind = "InvalidPath"
	PatchTestFailed  PatchErrorKind = "TestFailed"
	PatchNotFound    PatchErrorKind = "NotFound"
)

// PatchError is returned by ApplyPatch; a failed Test aborts with this error
// (spec.md §4.10).
type PatchError struct {
	Kind PatchErrorKind
	Path string
	Err  error
}

func (e *PatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema: patch error (%s) at %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("schema: patch error (%s) at %s", e.Kind, e.Path)
}

func (e *PatchError) Unwrap() error { return e.Err }

// Code returns the stable machine-readable error code.
func (e *PatchError) Code() string { return "PATCH_" + string(e.Kind) }
