package strata

import (
	"fmt"
	"strings"
)

// Warning kinds emitted during processing
const (
	WarnBadGeometry  = "bad_geometry"
	WarnTagSource    = "tag_source"
	WarnUnmatchedTag = "unmatched_tag"
	WarnEmptyPage    = "empty_page"
)

// Warning indicates a non-fatal issue encountered during processing.
// The document is still produced; warnings describe what was skipped or
// degraded along the way.
type Warning struct {
	// Page is the 1-indexed page number the warning relates to, or 0
	// for document-level warnings
	Page int

	// Kind is one of the Warn* constants
	Kind string

	// Message is a human-readable description
	Message string
}

// String implements the Stringer interface
func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("page %d: %s: %s", w.Page, w.Kind, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// FormatWarnings formats a slice of warnings as a multi-line string,
// one warning per line. Returns an empty string for an empty slice.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
