package rules

import (
	"fmt"

	"dioxide/internal/ast"
	"dioxide/internal/diag"
	"dioxide/internal/fix"
	"dioxide/internal/symbols"
)

// UnusedImport reports imports whose package name is never referenced.
type UnusedImport struct{}

func (UnusedImport) Name() string { return "unused-import" }

func (UnusedImport) Doc() string {
	return "imports that are never referenced"
}

func (UnusedImport) Check(pass *Pass) error {
	tbl := pass.Package.Symbols
	all := tbl.All()

	unused := make(map[stmtKey]bool)
	for i := range all {
		if unusedImport(tbl, &all[i]) {
			unused[stmtKey{all[i].File, all[i].Stmt}] = true
		}
	}

	for i := range all {
		sym := &all[i]
		if !unusedImport(tbl, sym) {
			continue
		}
		unit := pass.Unit(sym.File)
		if unit == nil {
			continue
		}
		tree, content := unit.Tree, unit.Source.Content

		msg := fmt.Sprintf("%q imported and not used", sym.ImportPath)
		if sym.Flags&symbols.FlagImplicitImport == 0 {
			msg = fmt.Sprintf("%q imported as %s and not used", sym.ImportPath, sym.Name)
		}

		// the whole declaration goes when none of its specs stays
		target := sym.Stmt
		specs := 1
		parent := tree.Parent(target)
		if tree.Kind(parent) == ast.KindImportSpecList {
			whole := true
			specs = 0
			for _, spec := range tree.Node(parent).Children {
				if tree.Kind(spec) != ast.KindImportSpec {
					continue
				}
				specs++
				if !unused[stmtKey{sym.File, spec}] {
					whole = false
				}
			}
			if whole {
				target = tree.Parent(parent)
			}
		} else {
			target = parent
		}

		sp := removal(content, tree.Span(target))
		id := pass.FixID(tree.Span(target))
		title := fmt.Sprintf("remove unused import %q", sym.ImportPath)
		if target != sym.Stmt && specs > 1 {
			title = "remove unused imports"
		}
		diag.ReportWarning(pass.Reporter(), diag.DcUnusedImport, tree.Span(sym.Stmt), msg).
			WithFix(fix.DeleteSpan(title, sp, unit.Source.Text(sp), fix.WithID(id), fix.WithGroup(id))).
			Emit()
	}
	return nil
}

func unusedImport(tbl *symbols.Table, sym *symbols.Symbol) bool {
	if sym.Kind != symbols.KindImport || len(sym.Refs) > 0 {
		return false
	}
	if sym.Flags&symbols.FlagUnbound != 0 {
		return false
	}
	info := tbl.Files[sym.File]
	if info.Cgo {
		return false
	}
	if sym.Flags&symbols.FlagImplicitImport != 0 && info.AmbiguousImports {
		return false
	}
	return true
}
