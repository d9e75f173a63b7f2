package diag

import (
	"fmt"
	"strings"

	"dioxide/internal/source"
)

// FormatShort renders diagnostics one per line as
// "severity CODE rule path:line:col message", in the given order.
// Tests compare against it; the CLI uses it for --quiet output.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}
	lines := make([]string, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		lines = append(lines, shortLine(fs, d.Severity.Label(), d.Code, d.Rule, d.Primary, d.Message))
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			lines = append(lines, shortLine(fs, "note", d.Code, d.Rule, n.Span, n.Msg))
		}
	}
	return strings.Join(lines, "\n")
}

func shortLine(fs *source.FileSet, sev string, code Code, rule string, sp source.Span, msg string) string {
	start, _ := fs.Resolve(sp)
	if rule == "" {
		rule = "-"
	}
	return fmt.Sprintf("%s %s %s %s:%d:%d %s", sev, code.ID(), rule, fs.Path(sp.File), start.Line, start.Col, sanitizeMessage(msg))
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
