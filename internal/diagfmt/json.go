package diagfmt

import (
	"encoding/json"
	"io"

	"dioxide/internal/diag"
	"dioxide/internal/fix"
	"dioxide/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FixEditJSON представляет одно редактирование для JSON
type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

// FixJSON представляет предложение по исправлению для JSON
type FixJSON struct {
	ID            string        `json:"id,omitempty"`
	Title         string        `json:"title"`
	Group         string        `json:"group,omitempty"`
	Applicability string        `json:"applicability"`
	Advisory      bool          `json:"advisory,omitempty"`
	Edits         []FixEditJSON `json:"edits,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Rule     string       `json:"rule,omitempty"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// FileFixJSON is the outcome of one rewritten file.
type FileFixJSON struct {
	Path    string   `json:"path"`
	Applied []string `json:"applied,omitempty"`
	Edits   int      `json:"edits"`
	Unfixed int      `json:"unfixed,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// SkippedFixJSON is a fix that was not applied.
type SkippedFixJSON struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Path   string `json:"path,omitempty"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason"`
}

// FixSummaryJSON is the fix section of the JSON output.
type FixSummaryJSON struct {
	Applied int              `json:"applied"`
	Files   []FileFixJSON    `json:"files"`
	Skipped []SkippedFixJSON `json:"skipped,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Truncated   int              `json:"truncated,omitempty"`
	Fix         *FixSummaryJSON  `json:"fix,omitempty"`
}

// makeLocation создаёт LocationJSON из Span
func makeLocation(span source.Span, fs *source.FileSet, opts JSONOpts) LocationJSON {
	loc := LocationJSON{
		File:      formatPath(fs.Path(span.File), opts.PathMode, opts.BaseDir),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if opts.IncludePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
// fixes may be nil in check mode.
func BuildDiagnosticsOutput(diags []diag.Diagnostic, fs *source.FileSet, fixes *fix.Result, opts JSONOpts) DiagnosticsOutput {
	n := len(diags)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, 0, n),
		Truncated:   len(diags) - n,
	}

	for i := range n {
		d := &diags[i]
		dj := DiagnosticJSON{
			Severity: d.Severity.Label(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Rule:     d.Rule,
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs, opts),
		}
		if opts.IncludeNotes {
			for _, note := range d.Notes {
				dj.Notes = append(dj.Notes, NoteJSON{Message: note.Msg, Location: makeLocation(note.Span, fs, opts)})
			}
		}
		if opts.IncludeFixes {
			for _, fx := range d.Fixes {
				dj.Fixes = append(dj.Fixes, fixJSON(fx, fs, opts))
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)

	if fixes != nil {
		out.Fix = fixSummaryJSON(fixes, opts)
	}
	return out
}

func fixJSON(fx diag.Fix, fs *source.FileSet, opts JSONOpts) FixJSON {
	fj := FixJSON{
		ID:            fx.ID,
		Title:         fx.Title,
		Group:         fx.Group,
		Applicability: fx.Applicability.String(),
		Advisory:      fx.Advisory(),
	}
	for _, edit := range fx.Edits {
		ej := FixEditJSON{
			Location: makeLocation(edit.Span, fs, opts),
			NewText:  edit.NewText,
			OldText:  edit.OldText,
		}
		if opts.IncludePreviews {
			if pv, err := buildEditPreview(fs, edit); err == nil {
				ej.BeforeLines = pv.before
				ej.AfterLines = pv.after
			}
		}
		fj.Edits = append(fj.Edits, ej)
	}
	return fj
}

func fixSummaryJSON(res *fix.Result, opts JSONOpts) *FixSummaryJSON {
	sum := &FixSummaryJSON{Applied: res.Applied, Files: make([]FileFixJSON, 0, len(res.Files))}
	for _, f := range res.Files {
		fj := FileFixJSON{
			Path:    formatPath(f.Path, opts.PathMode, opts.BaseDir),
			Applied: f.Applied,
			Edits:   f.Edits,
			Unfixed: f.Unfixed,
		}
		if f.Err != nil {
			fj.Error = f.Err.Error()
		}
		sum.Files = append(sum.Files, fj)
	}
	for _, s := range res.Skipped {
		sj := SkippedFixJSON{ID: s.FixID, Title: s.Title, Reason: s.Reason}
		if s.Path != "" {
			sj.Path = formatPath(s.Path, opts.PathMode, opts.BaseDir)
		}
		if s.Code != diag.UnknownCode {
			sj.Code = s.Code.ID()
		}
		sum.Skipped = append(sum.Skipped, sj)
	}
	return sum
}

// JSON форматирует диагностики и, в режиме исправления, итог фиксов.
func JSON(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, fixes *fix.Result, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(diags, fs, fixes, opts))
}
