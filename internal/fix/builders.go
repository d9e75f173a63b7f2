package fix

import (
	"dioxide/internal/diag"
	"dioxide/internal/source"
)

// Option mutates fix during construction.
type Option func(*diag.Fix)

// WithApplicability overrides applicability metadata.
func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) {
		f.Applicability = app
	}
}

// WithID sets stable identifier for fix.
func WithID(id string) Option {
	return func(f *diag.Fix) {
		f.ID = id
	}
}

// WithGroup puts the fix into a conflict group.
func WithGroup(group string) Option {
	return func(f *diag.Fix) {
		f.Group = group
	}
}

func applyOptions(f diag.Fix, opts []Option) diag.Fix {
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// InsertText creates fix that inserts text at span (Span.Start == Span.End).
func InsertText(title string, at source.Span, text string, opts ...Option) diag.Fix {
	at.End = at.Start
	return Edits(title, []diag.TextEdit{{Span: at, NewText: text}}, opts...)
}

// DeleteSpan removes text covered by span.
func DeleteSpan(title string, span source.Span, expect string, opts ...Option) diag.Fix {
	return Edits(title, []diag.TextEdit{{Span: span, OldText: expect}}, opts...)
}

// ReplaceSpan replaces text covered by span with newText.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) diag.Fix {
	return Edits(title, []diag.TextEdit{{Span: span, NewText: newText, OldText: expect}}, opts...)
}

// Edits creates an always-safe fix from several edits applied together.
func Edits(title string, edits []diag.TextEdit, opts ...Option) diag.Fix {
	fix := diag.Fix{
		Title:         title,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits:         edits,
	}
	return applyOptions(fix, opts)
}

// Advisory creates a fix that only describes the change. It is shown to the
// user and never applied.
func Advisory(title string, opts ...Option) diag.Fix {
	fix := diag.Fix{
		Title:         title,
		Applicability: diag.FixApplicabilityManualReview,
	}
	return applyOptions(fix, opts)
}
