package rules

import (
	"strings"

	"dioxide/internal/diag"
	"dioxide/internal/fix"
	"dioxide/internal/symbols"
)

// DeadCode reports package-level functions that cannot be reached from any
// root of the package.
//
// Roots are exported functions, main in package main, init, every method
// (interface satisfaction needs types), functions named by //export or
// //go:linkname directives and functions referenced from anything that is
// not itself a function: variables, types, methods and blank declarations.
// Test, Benchmark, Example and Fuzz functions are exported and therefore
// roots already.
type DeadCode struct{}

func (DeadCode) Name() string { return "dead-code" }

func (DeadCode) Doc() string {
	return "package-level functions unreachable from exported API, main, init, methods or tests"
}

func (DeadCode) Check(pass *Pass) error {
	tbl := pass.Package.Symbols
	all := tbl.All()

	reached := make([]bool, len(tbl.Symbols))
	callees := make(map[symbols.SymbolID][]symbols.SymbolID)
	var queue []symbols.SymbolID
	mark := func(id symbols.SymbolID) {
		if !reached[id] {
			reached[id] = true
			queue = append(queue, id)
		}
	}

	for i := range all {
		sym := &all[i]
		if sym.Kind != symbols.KindFunc {
			continue
		}
		if deadCodeRoot(pass, sym) {
			mark(sym.ID)
		}
		for _, ref := range sym.Refs {
			caller := tbl.Symbol(ref.From)
			if caller == nil || caller.Kind != symbols.KindFunc || caller.Flags&symbols.FlagUnbound != 0 {
				mark(sym.ID)
				continue
			}
			callees[caller.ID] = append(callees[caller.ID], sym.ID)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, callee := range callees[id] {
			mark(callee)
		}
	}

	for i := range all {
		sym := &all[i]
		if sym.Kind != symbols.KindFunc || reached[sym.ID] {
			continue
		}
		if tbl.Files[sym.File].Test && !pass.Options.IncludeTests {
			continue
		}
		unit := pass.Unit(sym.File)
		if unit == nil {
			continue
		}
		tree, content := unit.Tree, unit.Source.Content
		declSpan := tree.Span(sym.Stmt)
		declSpan.Start = docStart(tree, content, sym.Stmt)
		sp := removal(content, declSpan)
		diag.ReportWarning(pass.Reporter(), diag.DcDeadCode, sym.Decl, "func "+sym.Name+" is unused").
			WithFix(fix.DeleteSpan("remove unused func "+sym.Name, sp, unit.Source.Text(sp),
				fix.WithID(pass.FixID(sym.Decl)),
				fix.WithApplicability(diag.FixApplicabilitySafeWithHeuristics))).
			Emit()
	}
	return nil
}

func deadCodeRoot(pass *Pass, sym *symbols.Symbol) bool {
	if sym.Exported || sym.Flags&symbols.FlagUnbound != 0 {
		return true
	}
	if sym.Name == "main" && pass.Package.Name == "main" {
		return true
	}
	unit := pass.Unit(sym.File)
	if unit == nil {
		return true
	}
	for _, c := range docComments(unit.Tree, unit.Source.Content, sym.Stmt) {
		if strings.HasPrefix(c, "//export ") || strings.HasPrefix(c, "//go:linkname ") {
			return true
		}
	}
	return false
}
