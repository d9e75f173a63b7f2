package rules

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"dioxide/internal/diag"
	"dioxide/internal/fix"
)

// LineLength reports lines wider than the configured maximum. Width is
// measured in display columns; a tab counts as TabWidth columns.
type LineLength struct{}

func (LineLength) Name() string { return "line-length" }

func (LineLength) Doc() string {
	return "lines longer than max_line_length display columns"
}

func (LineLength) Check(pass *Pass) error {
	limit := pass.Options.MaxLineLength
	if limit <= 0 {
		return nil
	}
	for _, unit := range pass.Package.Files {
		f := unit.Source
		for line := uint32(1); line <= f.LineCount(); line++ {
			sp, _ := f.LineSpan(line)
			width := displayWidth(f.Content[sp.Start:sp.End], pass.Options.TabWidth)
			if width <= limit {
				continue
			}
			diag.ReportWarning(pass.Reporter(), diag.StyLineTooLong, sp,
				fmt.Sprintf("line too long (%d > %d characters)", width, limit)).
				WithFix(fix.Advisory(fmt.Sprintf("split the line to fit in %d columns", limit))).
				Emit()
		}
	}
	return nil
}

func displayWidth(line []byte, tab int) int {
	w := 0
	for _, r := range string(line) {
		if r == '\t' {
			w += tab
			continue
		}
		w += runewidth.RuneWidth(r)
	}
	return w
}
