package rules

import (
	"bytes"
	"fmt"

	"dioxide/internal/ast"
	"dioxide/internal/diag"
	"dioxide/internal/fix"
	"dioxide/internal/source"
	"dioxide/internal/symbols"
)

// UnusedVariable reports variables and constants that are never referenced.
type UnusedVariable struct{}

func (UnusedVariable) Name() string { return "unused-variable" }

func (UnusedVariable) Doc() string {
	return "variables and constants that are declared and never used"
}

type stmtKey struct {
	file int
	stmt ast.NodeID
}

func (UnusedVariable) Check(pass *Pass) error {
	tbl := pass.Package.Symbols
	all := tbl.All()

	// symbols declared by each := statement, to decide whether the
	// statement keeps declaring anything once its unused names become _
	defines := make(map[stmtKey][]*symbols.Symbol)
	for i := range all {
		sym := &all[i]
		if sym.Kind != symbols.KindVar || !sym.Local() {
			continue
		}
		unit := pass.Unit(sym.File)
		if unit == nil || !definesNames(unit.Tree, sym.Stmt) {
			continue
		}
		key := stmtKey{sym.File, sym.Stmt}
		defines[key] = append(defines[key], sym)
	}

	for i := range all {
		sym := &all[i]
		if !unusedCandidate(sym, pass.Options.IncludePackageLevel) {
			continue
		}
		unit := pass.Unit(sym.File)
		if unit == nil {
			continue
		}
		msg := "declared and not used: " + sym.Name
		if !sym.Local() {
			msg = fmt.Sprintf("%s %s is unused", sym.Kind, sym.Name)
		}
		b := diag.ReportWarning(pass.Reporter(), diag.DcUnusedVariable, sym.Decl, msg)
		if f, ok := unusedVariableFix(pass, unit.Tree, unit.Source, sym, defines[stmtKey{sym.File, sym.Stmt}]); ok {
			b.WithFix(f)
		}
		b.Emit()
	}
	return nil
}

func unusedCandidate(sym *symbols.Symbol, packageLevel bool) bool {
	if sym.Kind != symbols.KindVar && sym.Kind != symbols.KindConst {
		return false
	}
	if sym.Name == "_" || len(sym.Refs) > 0 {
		return false
	}
	if !sym.Local() && (!packageLevel || sym.Exported) {
		return false
	}
	return true
}

func definesNames(tree *ast.File, stmt ast.NodeID) bool {
	switch tree.Kind(stmt) {
	case ast.KindShortVarDecl:
		return true
	case ast.KindRangeClause, ast.KindReceive:
		return tree.Node(stmt).Flags&ast.FlagDefine != 0
	}
	return false
}

func unusedVariableFix(pass *Pass, tree *ast.File, file *source.File, sym *symbols.Symbol, declared []*symbols.Symbol) (diag.Fix, bool) {
	if sym.Flags&symbols.FlagTypeSwitchAlias != 0 {
		return diag.Fix{}, false
	}
	content := file.Content
	switch tree.Kind(sym.Stmt) {
	case ast.KindVarSpec, ast.KindConstSpec:
		spec := sym.Stmt
		names := tree.ChildrenByField(spec, ast.FieldName)
		hasValue := tree.ChildByField(spec, ast.FieldValue) != ast.NoNode
		if sym.Kind == symbols.KindVar && len(names) == 1 && !hasValue {
			target := spec
			parent := tree.Parent(spec)
			if tree.Kind(parent) == ast.KindVarDecl && len(symbols.SpecsOf(tree, parent, ast.KindVarSpec)) == 1 {
				target = parent
			}
			if soleUseInside(pass.Package.Symbols, tree.Span(target)) {
				return renameToBlank(pass, sym), true
			}
			sp := removal(content, tree.Span(target))
			return fix.DeleteSpan("remove unused variable "+sym.Name, sp, file.Text(sp), fix.WithID(pass.FixID(sym.Decl))), true
		}
		return renameToBlank(pass, sym), true

	case ast.KindShortVarDecl, ast.KindRangeClause, ast.KindReceive:
		for _, other := range declared {
			if !unusedCandidate(other, false) {
				return renameToBlank(pass, sym), true
			}
		}
		// nothing stays declared: every name becomes _ and := becomes =
		op, ok := defineOperator(tree, content, sym.Stmt)
		if !ok {
			return diag.Fix{}, false
		}
		edits := make([]diag.TextEdit, 0, len(declared)+1)
		for _, other := range declared {
			edits = append(edits, diag.TextEdit{Span: other.Decl, NewText: "_", OldText: other.Name})
		}
		edits = append(edits, diag.TextEdit{Span: op, NewText: "=", OldText: ":="})
		id := pass.FixID(tree.Span(sym.Stmt))
		return fix.Edits("replace unused variables with _", edits, fix.WithID(id), fix.WithGroup(id)), true
	}
	return diag.Fix{}, false
}

// soleUseInside reports whether some symbol is referenced only from within
// sp. Deleting sp would leave that symbol unused, so the fix keeps the
// declaration and renames it to _ instead.
func soleUseInside(tbl *symbols.Table, sp source.Span) bool {
	all := tbl.All()
	for i := range all {
		refs := all[i].Refs
		if len(refs) == 0 {
			continue
		}
		inside := true
		for _, r := range refs {
			if !sp.Contains(r.Span) {
				inside = false
				break
			}
		}
		if inside {
			return true
		}
	}
	return false
}

func renameToBlank(pass *Pass, sym *symbols.Symbol) diag.Fix {
	return fix.ReplaceSpan("rename "+sym.Name+" to _", sym.Decl, "_", sym.Name, fix.WithID(pass.FixID(sym.Decl)))
}

// defineOperator finds the ":=" token between the left and right side of stmt.
func defineOperator(tree *ast.File, content []byte, stmt ast.NodeID) (source.Span, bool) {
	left := tree.ChildByField(stmt, ast.FieldLeft)
	right := tree.ChildByField(stmt, ast.FieldRight)
	if left == ast.NoNode || right == ast.NoNode {
		return source.Span{}, false
	}
	from, to := tree.Span(left).End, tree.Span(right).Start
	if from > to {
		return source.Span{}, false
	}
	i := bytes.Index(content[from:to], []byte(":="))
	if i < 0 {
		return source.Span{}, false
	}
	start := from + uint32(i)
	return source.Span{File: tree.Source, Start: start, End: start + 2}, true
}
