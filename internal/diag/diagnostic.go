package diag

import (
	"dioxide/internal/source"
)

// Note is a secondary location attached to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// FixApplicability describes how much confidence the producer has in a fix.
type FixApplicability uint8

const (
	// FixApplicabilityAlwaysSafe fixes are applied by default.
	FixApplicabilityAlwaysSafe FixApplicability = iota
	// FixApplicabilitySafeWithHeuristics fixes rely on assumptions the
	// analysis cannot prove (no type information) and need an explicit opt-in.
	FixApplicabilitySafeWithHeuristics
	// FixApplicabilityManualReview fixes are never applied automatically.
	FixApplicabilityManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "always-safe"
	case FixApplicabilitySafeWithHeuristics:
		return "safe-with-heuristics"
	case FixApplicabilityManualReview:
		return "manual-review"
	}
	return "unknown"
}

// TextEdit replaces Span with NewText. OldText, when set, must match the
// current content of Span for the edit to apply.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// Fix is one candidate correction. Fixes sharing a Group are mutually
// exclusive: at most one of them is applied per run.
type Fix struct {
	ID            string
	Title         string
	Group         string
	Applicability FixApplicability
	Edits         []TextEdit
}

// Advisory reports whether the fix only describes a change and carries no edits.
func (f Fix) Advisory() bool {
	return len(f.Edits) == 0
}

// GroupKey returns the conflict group, falling back to the fix ID.
func (f Fix) GroupKey() string {
	if f.Group != "" {
		return f.Group
	}
	return f.ID
}

// Diagnostic is one finding. It is a value record and never mutated after
// it is reported.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Rule     string
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

// Fixable reports whether at least one fix carries edits.
func (d *Diagnostic) Fixable() bool {
	for i := range d.Fixes {
		if !d.Fixes[i].Advisory() {
			return true
		}
	}
	return false
}
