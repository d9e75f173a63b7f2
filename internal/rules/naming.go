package rules

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"dioxide/internal/diag"
	"dioxide/internal/fix"
	"dioxide/internal/symbols"
)

// Naming reports snake_case names of unexported variables, constants,
// functions and, optionally, parameters, and offers the camelCase form.
//
// The rename is applied only when every use sits in the declaring file,
// the new name is free in the package and no use looks like a composite
// literal key, which may be a struct field of the same name.
type Naming struct{}

func (Naming) Name() string { return "naming" }

func (Naming) Doc() string {
	return "snake_case identifiers that should be camelCase"
}

func (Naming) Check(pass *Pass) error {
	tbl := pass.Package.Symbols
	all := tbl.All()
	for i := range all {
		sym := &all[i]
		if !namingCandidate(sym, pass.Options.CheckParams) {
			continue
		}
		camel := camelCase(sym.Name)
		if camel == "" || camel == sym.Name {
			continue
		}
		msg := fmt.Sprintf("don't use underscores in Go names; %s %s should be %s", sym.Kind, sym.Name, camel)
		title := fmt.Sprintf("rename %s to %s", sym.Name, camel)
		id := pass.FixID(sym.Decl)

		var f diag.Fix
		if reason := renameBlocked(pass, sym, camel); reason != "" {
			f = fix.Advisory(title+" ("+reason+")", fix.WithID(id))
		} else {
			edits := []diag.TextEdit{{Span: sym.Decl, NewText: camel, OldText: sym.Name}}
			for _, ref := range sym.Refs {
				edits = append(edits, diag.TextEdit{Span: ref.Span, NewText: camel, OldText: sym.Name})
			}
			f = fix.Edits(title, edits, fix.WithID(id), fix.WithGroup(id))
		}
		diag.ReportInfo(pass.Reporter(), diag.StyNamingConvention, sym.Decl, msg).WithFix(f).Emit()
	}
	return nil
}

func namingCandidate(sym *symbols.Symbol, params bool) bool {
	switch sym.Kind {
	case symbols.KindVar, symbols.KindConst, symbols.KindFunc:
	case symbols.KindParam, symbols.KindResult:
		if !params {
			return false
		}
	default:
		return false
	}
	if sym.Flags&symbols.FlagUnbound != 0 || sym.Exported {
		return false
	}
	r, _ := utf8.DecodeRuneInString(sym.Name)
	return unicode.IsLower(r) && strings.Contains(sym.Name, "_")
}

// camelCase joins the underscore separated parts of name, upper-casing the
// first letter of every part but the first.
func camelCase(name string) string {
	var b strings.Builder
	first := true
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		if first {
			b.WriteString(part)
			first = false
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(part[size:])
	}
	return b.String()
}

// renameBlocked explains why the rename cannot be applied automatically.
func renameBlocked(pass *Pass, sym *symbols.Symbol, name string) string {
	tbl := pass.Package.Symbols
	if symbols.IsKeyword(name) || tbl.NameInUse(name) {
		return name + " is already in use"
	}
	unit := pass.Unit(sym.File)
	if unit == nil {
		return "declaring file is unknown"
	}
	for _, ref := range sym.Refs {
		if ref.File != unit.Source.ID {
			return "used in other files"
		}
		if keyPosition(unit.Source.Content, ref.Span.End) {
			return "used as a composite literal key"
		}
	}
	return ""
}

// keyPosition reports whether the identifier ending at off is followed by
// a single colon, as keys in composite literals are.
func keyPosition(content []byte, off uint32) bool {
	for i := int(off); i < len(content); i++ {
		switch content[i] {
		case ' ', '\t':
			continue
		case ':':
			return i+1 >= len(content) || content[i+1] != '='
		}
		return false
	}
	return false
}
