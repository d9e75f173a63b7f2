package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"dioxide/internal/diag"
	"dioxide/internal/source"
)

type palette struct {
	err, warn, info *color.Color
	code, path      *color.Color
	gutter, caret   *color.Color
	note, fix       *color.Color
	removed, added  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:     color.New(color.FgRed, color.Bold),
		warn:    color.New(color.FgYellow, color.Bold),
		info:    color.New(color.FgCyan, color.Bold),
		code:    color.New(color.Bold),
		path:    color.New(color.Bold),
		gutter:  color.New(color.FgBlue),
		caret:   color.New(color.FgGreen, color.Bold),
		note:    color.New(color.FgCyan),
		fix:     color.New(color.FgGreen),
		removed: color.New(color.FgRed),
		added:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.gutter, p.caret, p.note, p.fix, p.removed, p.added} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид, в переданном порядке
// (ожидается, что они уже отсортированы). Для каждой печатает
//
//	<path>:<line>:<col>: <SEV> <CODE> [rule]: <Message>
//
// затем строку исходника с подчёркиванием ^~~~ по Span, заметки и подсказки фиксов.
func Pretty(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	tab := opts.TabWidth
	if tab <= 0 {
		tab = 4
	}
	var b strings.Builder
	for i := range diags {
		d := &diags[i]
		if i > 0 {
			b.WriteByte('\n')
		}
		writeHeader(&b, p, fs, d, opts)
		writeSnippet(&b, p, fs, d.Primary, int(opts.Context), tab)
		if opts.ShowNotes {
			for _, n := range d.Notes {
				start, _ := fs.Resolve(n.Span)
				fmt.Fprintf(&b, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"),
					formatPath(fs.Path(n.Span.File), opts.PathMode, opts.BaseDir), start.Line, start.Col, n.Msg)
			}
		}
		if opts.ShowFixes {
			writeFixes(&b, p, fs, d, opts.ShowPreview)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeHeader(b *strings.Builder, p palette, fs *source.FileSet, d *diag.Diagnostic, opts PrettyOpts) {
	start, _ := fs.Resolve(d.Primary)
	loc := fmt.Sprintf("%s:%d:%d:", formatPath(fs.Path(d.Primary.File), opts.PathMode, opts.BaseDir), start.Line, start.Col)
	b.WriteString(p.path.Sprint(loc))
	b.WriteByte(' ')
	b.WriteString(p.severity(d.Severity).Sprint(d.Severity.String()))
	b.WriteByte(' ')
	b.WriteString(p.code.Sprint(d.Code.ID()))
	if d.Rule != "" {
		b.WriteString(" [" + d.Rule + "]")
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	b.WriteByte('\n')
}

func writeSnippet(b *strings.Builder, p palette, fs *source.FileSet, span source.Span, context, tab int) {
	f := fs.Get(span.File)
	if f == nil || f.LineCount() == 0 {
		return
	}
	start, end := fs.Resolve(span)
	if start.Line > f.LineCount() {
		return
	}
	first := max(int(start.Line)-context, 1)
	last := min(int(start.Line)+context, int(f.LineCount()))
	numWidth := len(fmt.Sprint(last))

	for n := first; n <= last; n++ {
		line := f.GetLine(uint32(n)) // #nosec G115 -- n is within LineCount
		fmt.Fprintf(b, "%s %s\n", p.gutter.Sprintf("%*d |", numWidth, n), expandTabs(line, tab))
		if n != int(start.Line) {
			continue
		}
		col := int(start.Col) - 1
		stop := len(line)
		if end.Line == start.Line {
			stop = min(int(end.Col)-1, len(line))
		}
		col = min(col, len(line))
		pad := displayWidth(line[:col], tab)
		width := max(displayWidth(line[col:max(stop, col)], tab), 1)
		fmt.Fprintf(b, "%s %s%s\n", p.gutter.Sprint(strings.Repeat(" ", numWidth)+" |"),
			strings.Repeat(" ", pad), p.caret.Sprint("^"+strings.Repeat("~", width-1)))
	}
}

func writeFixes(b *strings.Builder, p palette, fs *source.FileSet, d *diag.Diagnostic, preview bool) {
	for _, fx := range d.Fixes {
		kind := fx.Applicability.String()
		if fx.Advisory() {
			kind = "advisory"
		}
		fmt.Fprintf(b, "  %s %s (%s)\n", p.fix.Sprint("fix:"), fx.Title, kind)
		if !preview {
			continue
		}
		for _, edit := range fx.Edits {
			pv, err := buildEditPreview(fs, edit)
			if err != nil {
				continue
			}
			for _, l := range pv.before {
				b.WriteString("    " + p.removed.Sprint("- "+l) + "\n")
			}
			for _, l := range pv.after {
				b.WriteString("    " + p.added.Sprint("+ "+l) + "\n")
			}
		}
	}
}

func expandTabs(s string, tab int) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tab))
}

// displayWidth is the column count of s on a terminal.
func displayWidth(s string, tab int) int {
	return runewidth.StringWidth(expandTabs(s, tab))
}
