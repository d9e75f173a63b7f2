// Package diag defines the diagnostic model shared by every phase of the linter.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error (severity.go).
//   - Code – numeric identifier with a stable string form such as DC5001
//     and a taxonomy title such as UnusedVariable (codes.go).
//   - Rule – the identifier of the rule that produced it; empty for
//     diagnostics emitted by the pipeline itself (parse, I/O, graph).
//   - Message, Primary span, Notes.
//   - Fixes – candidate corrections.
//
// Diagnostics are values. Producers build them through a Reporter (usually a
// ReportBuilder chain ending in Emit) and never touch them afterwards.
//
// # Fixes
//
// A Fix is a list of TextEdits plus a conflict Group and an Applicability.
// Fixes sharing a group are mutually exclusive. A fix without edits is
// advisory: it is shown to the user and never applied. OldText is an optional
// guard that internal/fix checks before editing.
//
// # Ordering
//
// SortDiagnostics gives the run-wide order: file path, start, end, rule
// priority (registration order), severity, code. The fix engine relies on it
// for first-accepted-wins conflict resolution.
package diag
