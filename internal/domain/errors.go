package domain

import (
	"fmt"
	"strings"
)

// SpecValidationError reports a structural, type, or enum violation in an
// input specification. Path locates the offending field in the source
// document, e.g. "sections[3].type".
type SpecValidationError struct {
	Path    string
	Message string
	Allowed []string
}

func (e *SpecValidationError) Error() string {
	msg := fmt.Sprintf("invalid specification at %s: %s", e.Path, e.Message)
	if len(e.Allowed) > 0 {
		msg += " (allowed: " + strings.Join(e.Allowed, ", ") + ")"
	}
	return msg
}

// StyleResolutionError reports an unknown named preset or template. It is
// distinct from SpecValidationError because the name is resolved against a
// runtime registry, not a fixed enum.
type StyleResolutionError struct {
	Kind string // "template", "page size", "margins"
	Name string
}

func (e *StyleResolutionError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

// CompilationError reports a cross-field invariant violation discovered
// during the section walk. Section is the zero-based index of the offending
// section in the specification.
type CompilationError struct {
	Section int
	Field   string
	Message string
}

func (e *CompilationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("section %d: %s: %s", e.Section, e.Field, e.Message)
	}
	return fmt.Sprintf("section %d: %s", e.Section, e.Message)
}

// ResourceError reports that a referenced base template or image byte
// stream could not be obtained. The collaborator's error is wrapped
// unchanged.
type ResourceError struct {
	Ref string
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource %q unavailable: %v", e.Ref, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// BatchItemError wraps the failure of a single batch item so siblings can
// keep going. Filename identifies the item in the batch report.
type BatchItemError struct {
	Filename string
	Err      error
}

func (e *BatchItemError) Error() string {
	return fmt.Sprintf("batch item %q: %v", e.Filename, e.Err)
}

func (e *BatchItemError) Unwrap() error { return e.Err }
