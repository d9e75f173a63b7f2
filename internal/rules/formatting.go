package rules

import (
	"strings"

	"dioxide/internal/ast"
	"dioxide/internal/diag"
	"dioxide/internal/fix"
	"dioxide/internal/project"
	"dioxide/internal/source"
)

// Formatting reports three layout problems, each switchable on its own:
// a control keyword glued to a parenthesis, indentation made of spaces
// that tabs could express, and trailing whitespace. Text inside raw
// strings and multi-line comments is left alone.
type Formatting struct{}

func (Formatting) Name() string { return "formatting" }

func (Formatting) Doc() string {
	return "control keyword spacing, space indentation and trailing whitespace"
}

var controlKeywords = map[ast.Kind]string{
	ast.KindIf:         "if",
	ast.KindFor:        "for",
	ast.KindExprSwitch: "switch",
	ast.KindTypeSwitch: "switch",
}

func (Formatting) Check(pass *Pass) error {
	opts := pass.Options
	for _, unit := range pass.Package.Files {
		if opts.ControlSpacing {
			controlSpacing(pass, unit)
		}
		if opts.SpaceIndent || opts.TrailingWhitespace {
			layout(pass, unit)
		}
	}
	return nil
}

func controlSpacing(pass *Pass, unit *project.FileUnit) {
	tree, content := unit.Tree, unit.Source.Content
	tree.Walk(tree.Root, func(id ast.NodeID) bool {
		kw, ok := controlKeywords[tree.Kind(id)]
		if !ok {
			return true
		}
		sp := tree.Span(id)
		at := sp.Start + uint32(len(kw))
		if int(at) >= len(content) || content[at] != '(' || string(content[sp.Start:at]) != kw {
			return true
		}
		kwSpan := sp
		kwSpan.End = at
		diag.ReportInfo(pass.Reporter(), diag.StyControlSpacing, kwSpan, "missing space after "+kw).
			WithFix(fix.InsertText("insert space after "+kw, source.Span{File: sp.File, Start: at, End: at}, " ",
				fix.WithID(pass.FixID(kwSpan)))).
			Emit()
		return true
	})
}

func layout(pass *Pass, unit *project.FileUnit) {
	f := unit.Source
	content := f.Content
	skip := multiline(unit.Tree, content)
	tab := pass.Options.TabWidth
	if tab <= 0 {
		tab = 4
	}

	for line := uint32(1); line <= f.LineCount(); line++ {
		sp, _ := f.LineSpan(line)
		text := content[sp.Start:sp.End]
		if blank(text) {
			if len(text) > 0 && pass.Options.TrailingWhitespace && !inside(skip, sp.End) && !inside(skip, sp.Start) {
				reportTrailing(pass, f.Text(sp), sp)
			}
			continue
		}

		if pass.Options.SpaceIndent && !inside(skip, sp.Start) {
			n := 0
			for n < len(text) && (text[n] == ' ' || text[n] == '\t') {
				n++
			}
			lead := string(text[:n])
			if want := retab(lead, tab); strings.Contains(lead, " ") && want != lead {
				at := sp
				at.End = sp.Start + uint32(n)
				diag.ReportInfo(pass.Reporter(), diag.StySpaceIndent, at, "indentation uses spaces instead of tabs").
					WithFix(fix.ReplaceSpan("indent with tabs", at, want, lead, fix.WithID(pass.FixID(at)))).
					Emit()
			}
		}

		if pass.Options.TrailingWhitespace && !inside(skip, sp.End) {
			n := len(text)
			for n > 0 && (text[n-1] == ' ' || text[n-1] == '\t') {
				n--
			}
			if n < len(text) {
				at := sp
				at.Start = sp.Start + uint32(n)
				reportTrailing(pass, f.Text(at), at)
			}
		}
	}
}

func reportTrailing(pass *Pass, text string, at source.Span) {
	diag.ReportInfo(pass.Reporter(), diag.StyTrailingWhitespace, at, "trailing whitespace").
		WithFix(fix.DeleteSpan("remove trailing whitespace", at, text, fix.WithID(pass.FixID(at)))).
		Emit()
}

// retab rewrites leading whitespace so that every full tab stop is a tab;
// spaces that do not fill a stop stay as alignment.
func retab(lead string, tab int) string {
	width := 0
	for _, c := range lead {
		if c == '\t' {
			width += tab - width%tab
		} else {
			width++
		}
	}
	return strings.Repeat("\t", width/tab) + strings.Repeat(" ", width%tab)
}
