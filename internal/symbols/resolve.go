package symbols

import (
	"strconv"
	"strings"

	"dioxide/internal/ast"
	"dioxide/internal/diag"
	"dioxide/internal/source"
)

// FileInput is one parsed file of the package being resolved.
type FileInput struct {
	Source *source.File
	Tree   *ast.File
}

// Options tunes resolution.
type Options struct {
	// SuppressUnresolved disables UnresolvedReference reports, used when a
	// sibling file failed to parse and its declarations are missing.
	SuppressUnresolved bool
}

// Resolve builds the symbol table of one package. Pass one declares every
// package-level name of every file so forward references and references
// across files resolve; pass two walks each file, declaring locals at their
// declaration point and resolving every identifier through the local scope
// chain, the package scope, the file's imports and the universe.
//
// Unresolved identifiers are reported through r as SEM2001 warnings and
// never fail resolution. Resolve is sequential; callers parallelise across
// packages.
func Resolve(pkg string, files []FileInput, r diag.Reporter, opts Options) *Table {
	rs := &resolver{
		t:        newTable(pkg, len(files)),
		files:    files,
		reporter: r,
		opts:     opts,
		declOf:   make(map[declKey]SymbolID),
	}
	for i := range files {
		rs.declareFile(i)
	}
	for i := range files {
		rs.resolveFile(i)
	}
	return rs.t
}

type declKey struct {
	file int
	node ast.NodeID
}

type unresolvedRef struct {
	name      string
	span      source.Span
	qualifier bool
}

type resolver struct {
	t        *Table
	files    []FileInput
	reporter diag.Reporter
	opts     Options
	declOf   map[declKey]SymbolID

	// per-file state of pass two
	file    int
	tree    *ast.File
	content []byte
	scope   ScopeID
	from    SymbolID
	pending []unresolvedRef
}

func (rs *resolver) text(id ast.NodeID) string {
	return rs.tree.Text(rs.content, id)
}

func (rs *resolver) setFile(i int) {
	rs.file = i
	rs.tree = rs.files[i].Tree
	rs.content = rs.files[i].Source.Content
}

// --- pass one ---

func (rs *resolver) declareFile(i int) {
	rs.setFile(i)
	tree := rs.tree
	info := &rs.t.Files[i]
	info.Test = strings.HasSuffix(rs.files[i].Source.Path, "_test.go")
	info.Scope = rs.t.newScope(ScopeFile, rs.t.PackageScope, i, tree.Span(tree.Root))

	for _, child := range tree.Node(tree.Root).Children {
		switch tree.Kind(child) {
		case ast.KindImportDecl:
			for _, spec := range specsOf(tree, child, ast.KindImportSpec) {
				rs.declareImport(spec)
			}
		case ast.KindFuncDecl:
			name := tree.ChildByField(child, ast.FieldName)
			id := rs.declareTop(name, KindFunc, child)
			if n := rs.text(name); n == "init" || n == "_" || n == "" {
				rs.t.Symbols[id].Flags |= FlagUnbound
			} else {
				rs.t.bind(rs.t.PackageScope, id)
			}
			rs.declOf[declKey{i, child}] = id
		case ast.KindMethodDecl:
			name := tree.ChildByField(child, ast.FieldName)
			id := rs.declareTop(name, KindMethod, child)
			rs.t.Symbols[id].Flags |= FlagUnbound
			rs.declOf[declKey{i, child}] = id
		case ast.KindVarDecl, ast.KindConstDecl:
			kind := KindVar
			if tree.Kind(child) == ast.KindConstDecl {
				kind = KindConst
			}
			for _, spec := range specsOf(tree, child, ast.KindVarSpec, ast.KindConstSpec) {
				for _, name := range tree.ChildrenByField(spec, ast.FieldName) {
					if rs.text(name) == "_" {
						continue
					}
					id := rs.declareTop(name, kind, spec)
					rs.t.bind(rs.t.PackageScope, id)
					if _, ok := rs.declOf[declKey{i, spec}]; !ok {
						rs.declOf[declKey{i, spec}] = id
					}
				}
			}
		case ast.KindTypeDecl:
			for _, spec := range specsOf(tree, child, ast.KindTypeSpec, ast.KindTypeAlias) {
				name := tree.ChildByField(spec, ast.FieldName)
				id := rs.declareTop(name, KindType, spec)
				rs.t.bind(rs.t.PackageScope, id)
				rs.declOf[declKey{i, spec}] = id
			}
		}
	}
}

func (rs *resolver) declareTop(name ast.NodeID, kind Kind, stmt ast.NodeID) SymbolID {
	text := rs.text(name)
	return rs.t.newSymbol(Symbol{
		Name:     text,
		Kind:     kind,
		Decl:     rs.tree.Span(name),
		File:     rs.file,
		Node:     name,
		Stmt:     stmt,
		Scope:    rs.t.PackageScope,
		Exported: IsExported(text),
	})
}

func (rs *resolver) declareImport(spec ast.NodeID) {
	tree := rs.tree
	info := &rs.t.Files[rs.file]
	pathNode := tree.ChildByField(spec, ast.FieldPath)
	path := unquote(rs.text(pathNode))

	sym := Symbol{
		Kind:       KindImport,
		Decl:       tree.Span(pathNode),
		File:       rs.file,
		Node:       pathNode,
		Stmt:       spec,
		Scope:      info.Scope,
		ImportPath: path,
	}
	if nameNode := tree.ChildByField(spec, ast.FieldName); nameNode != ast.NoNode {
		switch alias := rs.text(nameNode); alias {
		case "_":
			return
		case ".":
			info.DotImport = true
			return
		default:
			sym.Name = alias
			sym.Node = nameNode
			sym.Decl = tree.Span(nameNode)
		}
	} else {
		if path == "C" {
			info.Cgo = true
		}
		name, _ := ImportName(path)
		sym.Name = name
		sym.Flags |= FlagImplicitImport
		if name == "" {
			sym.Flags |= FlagUnbound
		}
	}
	id := rs.t.newSymbol(sym)
	if sym.Flags&FlagUnbound == 0 {
		rs.t.bind(info.Scope, id)
	}
}

func unquote(lit string) string {
	if s, err := strconv.Unquote(lit); err == nil {
		return s
	}
	return strings.Trim(lit, "`\"")
}

// specsOf returns the specs of a declaration, looking through spec lists.
func specsOf(tree *ast.File, decl ast.NodeID, kinds ...ast.Kind) []ast.NodeID {
	var out []ast.NodeID
	var visit func(id ast.NodeID)
	visit = func(id ast.NodeID) {
		for _, c := range tree.Node(id).Children {
			k := tree.Kind(c)
			switch {
			case k == ast.KindImportSpecList || k == ast.KindVarSpecList:
				visit(c)
			case containsKind(kinds, k):
				out = append(out, c)
			}
		}
	}
	visit(decl)
	return out
}

// SpecsOf is specsOf for callers outside the package.
func SpecsOf(tree *ast.File, decl ast.NodeID, kinds ...ast.Kind) []ast.NodeID {
	return specsOf(tree, decl, kinds...)
}

func containsKind(kinds []ast.Kind, k ast.Kind) bool {
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}

// --- pass two ---

func (rs *resolver) resolveFile(i int) {
	rs.setFile(i)
	rs.scope = rs.t.Files[i].Scope
	rs.from = NoSymbol
	rs.pending = rs.pending[:0]
	tree := rs.tree

	for _, child := range tree.Node(tree.Root).Children {
		switch tree.Kind(child) {
		case ast.KindPackageClause, ast.KindImportDecl, ast.KindComment:
			continue
		case ast.KindFuncDecl, ast.KindMethodDecl:
			rs.from = rs.declOf[declKey{i, child}]
			rs.function(child)
		case ast.KindVarDecl, ast.KindConstDecl:
			for _, spec := range specsOf(tree, child, ast.KindVarSpec, ast.KindConstSpec) {
				rs.from = rs.declOf[declKey{i, spec}]
				rs.specValues(spec)
			}
		case ast.KindTypeDecl:
			for _, spec := range specsOf(tree, child, ast.KindTypeSpec, ast.KindTypeAlias) {
				rs.from = rs.declOf[declKey{i, spec}]
				rs.typeSpecBody(spec)
			}
		default:
			rs.from = NoSymbol
			rs.walk(child)
		}
	}
	rs.from = NoSymbol
	rs.flushUnresolved()
}

func (rs *resolver) push(kind ScopeKind, span source.Span) {
	rs.scope = rs.t.newScope(kind, rs.scope, rs.file, span)
}

func (rs *resolver) pop() {
	rs.scope = rs.t.Scopes[rs.scope].Parent
}

func (rs *resolver) declareLocal(name ast.NodeID, kind Kind, stmt ast.NodeID, flags SymbolFlags) SymbolID {
	text := rs.text(name)
	if text == "_" || text == "" {
		return NoSymbol
	}
	id := rs.t.newSymbol(Symbol{
		Name:  text,
		Kind:  kind,
		Flags: flags | FlagLocal,
		Decl:  rs.tree.Span(name),
		File:  rs.file,
		Node:  name,
		Stmt:  stmt,
		Scope: rs.scope,
	})
	rs.t.bind(rs.scope, id)
	return id
}

// function handles declarations and literals: one scope holds type
// parameters, receiver, parameters, results and the top level of the body.
func (rs *resolver) function(node ast.NodeID) {
	tree := rs.tree
	rs.push(ScopeFunc, tree.Span(node))
	defer rs.pop()

	if tp := tree.ChildByField(node, ast.FieldTypeParameters); tp != ast.NoNode {
		rs.typeParams(tp)
	}
	if recv := tree.ChildByField(node, ast.FieldReceiver); recv != ast.NoNode {
		rs.params(recv, KindReceiver, true)
	}
	if params := tree.ChildByField(node, ast.FieldParameters); params != ast.NoNode {
		rs.params(params, KindParam, false)
	}
	if res := tree.ChildByField(node, ast.FieldResult); res != ast.NoNode {
		if tree.Kind(res) == ast.KindParameterList {
			rs.params(res, KindResult, false)
		} else {
			rs.walk(res)
		}
	}
	if body := tree.ChildByField(node, ast.FieldBody); body != ast.NoNode {
		rs.walkChildren(body)
	}
}

func (rs *resolver) params(list ast.NodeID, kind Kind, receiver bool) {
	tree := rs.tree
	for _, decl := range tree.Node(list).Children {
		switch tree.Kind(decl) {
		case ast.KindParameterDecl, ast.KindVariadicParameterDecl:
			typ := tree.ChildByField(decl, ast.FieldType)
			if receiver {
				rs.receiverType(typ)
			} else {
				rs.walk(typ)
			}
			for _, name := range tree.ChildrenByField(decl, ast.FieldName) {
				rs.declareLocal(name, kind, decl, 0)
			}
		}
	}
}

// receiverType resolves the receiver's base type and declares the type
// arguments of a generic receiver (func (s *Stack[T]) ...) as type parameters.
func (rs *resolver) receiverType(typ ast.NodeID) {
	tree := rs.tree
	tree.Walk(typ, func(id ast.NodeID) bool {
		n := tree.Node(id)
		if n.Field == ast.FieldTypeArguments {
			for _, name := range tree.Collect(id, ast.KindTypeIdentifier, ast.KindIdentifier) {
				rs.declareLocal(name, KindTypeParam, typ, 0)
			}
			return false
		}
		if n.Kind == ast.KindTypeIdentifier || n.Kind == ast.KindIdentifier {
			rs.ref(id, false)
		}
		return true
	})
}

func (rs *resolver) typeParams(list ast.NodeID) {
	tree := rs.tree
	decls := tree.Node(list).Children
	for _, decl := range decls {
		for _, name := range tree.ChildrenByField(decl, ast.FieldName) {
			rs.declareLocal(name, KindTypeParam, decl, 0)
		}
	}
	for _, decl := range decls {
		rs.walk(tree.ChildByField(decl, ast.FieldType))
	}
}

func (rs *resolver) specValues(spec ast.NodeID) {
	tree := rs.tree
	rs.walk(tree.ChildByField(spec, ast.FieldType))
	for _, v := range tree.ChildrenByField(spec, ast.FieldValue) {
		rs.walk(v)
	}
}

func (rs *resolver) typeSpecBody(spec ast.NodeID) {
	tree := rs.tree
	rs.push(ScopeBlock, tree.Span(spec))
	defer rs.pop()
	if tp := tree.ChildByField(spec, ast.FieldTypeParameters); tp != ast.NoNode {
		rs.typeParams(tp)
	}
	rs.walk(tree.ChildByField(spec, ast.FieldType))
}

func (rs *resolver) walkChildren(id ast.NodeID) {
	n := rs.tree.Node(id)
	if n == nil {
		return
	}
	for _, c := range n.Children {
		rs.walk(c)
	}
}

func (rs *resolver) walk(id ast.NodeID) {
	tree := rs.tree
	n := tree.Node(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindIdentifier, ast.KindTypeIdentifier:
		rs.ref(id, false)
	case ast.KindPackageIdentifier:
		rs.ref(id, true)
	case ast.KindFieldIdentifier, ast.KindLabelName, ast.KindBlankIdentifier, ast.KindDot,
		ast.KindComment, ast.KindRawString, ast.KindInterpretedString,
		ast.KindGoto, ast.KindBreak, ast.KindContinue:
		return
	case ast.KindBlock, ast.KindIf, ast.KindFor, ast.KindExprSwitch, ast.KindSelect,
		ast.KindExprCase, ast.KindDefaultCase, ast.KindTypeCase, ast.KindCommCase:
		rs.push(ScopeBlock, n.Span)
		rs.walkChildren(id)
		rs.pop()
	case ast.KindTypeSwitch:
		rs.typeSwitch(id)
	case ast.KindShortVarDecl:
		rs.define(id, true)
	case ast.KindRangeClause, ast.KindReceive:
		rs.define(id, n.Flags&ast.FlagDefine != 0)
	case ast.KindVarDecl, ast.KindConstDecl:
		kind := KindVar
		if n.Kind == ast.KindConstDecl {
			kind = KindConst
		}
		for _, spec := range specsOf(tree, id, ast.KindVarSpec, ast.KindConstSpec) {
			rs.specValues(spec)
			for _, name := range tree.ChildrenByField(spec, ast.FieldName) {
				rs.declareLocal(name, kind, spec, 0)
			}
		}
	case ast.KindTypeDecl:
		for _, spec := range specsOf(tree, id, ast.KindTypeSpec, ast.KindTypeAlias) {
			rs.declareLocal(tree.ChildByField(spec, ast.FieldName), KindType, spec, 0)
			rs.typeSpecBody(spec)
		}
	case ast.KindFuncLiteral:
		rs.function(id)
	case ast.KindSelector:
		operand := tree.ChildByField(id, ast.FieldOperand)
		if tree.Kind(operand) == ast.KindIdentifier {
			rs.ref(operand, true)
		} else {
			rs.walk(operand)
		}
	case ast.KindQualifiedType:
		rs.ref(tree.ChildByField(id, ast.FieldPackage), true)
	case ast.KindKeyedElement:
		rs.keyed(id)
	case ast.KindFieldDecl, ast.KindMethodElem, ast.KindParameterDecl, ast.KindVariadicParameterDecl:
		for _, c := range n.Children {
			if tree.Node(c).Field != ast.FieldName {
				rs.walk(c)
			}
		}
	default:
		rs.walkChildren(id)
	}
}

// define handles ":=" statements: the right side resolves first, then each
// left identifier either declares a new local or, when already declared in
// the same scope, is a use of the existing one.
func (rs *resolver) define(stmt ast.NodeID, declares bool) {
	tree := rs.tree
	for _, c := range tree.Node(stmt).Children {
		if tree.Node(c).Field != ast.FieldLeft {
			rs.walk(c)
		}
	}
	left := tree.ChildByField(stmt, ast.FieldLeft)
	if !declares {
		rs.walk(left)
		return
	}
	for _, target := range identList(tree, left) {
		if tree.Kind(target) != ast.KindIdentifier {
			rs.walk(target)
			continue
		}
		name := rs.text(target)
		if name == "_" {
			continue
		}
		if existing, ok := rs.t.Scopes[rs.scope].Names[name]; ok {
			rs.addRef(existing, target)
			continue
		}
		rs.declareLocal(target, KindVar, stmt, 0)
	}
}

// identList returns the elements of an expression list, or the node itself.
func identList(tree *ast.File, list ast.NodeID) []ast.NodeID {
	if tree.Kind(list) == ast.KindExpressionList {
		return tree.Node(list).Children
	}
	if list == ast.NoNode {
		return nil
	}
	return []ast.NodeID{list}
}

// IdentList is identList for callers outside the package.
func IdentList(tree *ast.File, list ast.NodeID) []ast.NodeID {
	return identList(tree, list)
}

func (rs *resolver) typeSwitch(id ast.NodeID) {
	tree := rs.tree
	rs.push(ScopeBlock, tree.Span(id))
	defer rs.pop()

	rs.walk(tree.ChildByField(id, ast.FieldInitializer))
	rs.walk(tree.ChildByField(id, ast.FieldValue))
	alias := tree.ChildByField(id, ast.FieldAlias)
	for _, name := range identList(tree, alias) {
		rs.declareLocal(name, KindVar, id, FlagTypeSwitchAlias)
	}
	for _, c := range tree.Node(id).Children {
		switch tree.Node(c).Field {
		case ast.FieldInitializer, ast.FieldValue, ast.FieldAlias:
			continue
		}
		rs.walk(c)
	}
}

// keyed resolves composite literal elements. A bare identifier key may be a
// struct field (needs types) or a map key variable, so it is resolved only
// when a declaration is in scope and never reported as unresolved.
func (rs *resolver) keyed(id ast.NodeID) {
	tree := rs.tree
	children := tree.Node(id).Children
	key := tree.ChildByField(id, ast.FieldKey)
	if key == ast.NoNode && len(children) > 0 {
		key = children[0]
	}
	target := key
	if tree.Kind(target) == ast.KindLiteralElement && len(tree.Node(target).Children) == 1 {
		target = tree.Node(target).Children[0]
	}
	if tree.Kind(target) == ast.KindIdentifier {
		if sym := rs.t.Lookup(rs.scope, rs.text(target)); sym != NoSymbol {
			rs.addRef(sym, target)
		}
	} else {
		rs.walk(key)
	}
	for _, c := range children {
		if c != key {
			rs.walk(c)
		}
	}
}

func (rs *resolver) ref(id ast.NodeID, qualifier bool) {
	if id == ast.NoNode {
		return
	}
	name := rs.text(id)
	if name == "_" || name == "" {
		return
	}
	if sym := rs.t.Lookup(rs.scope, name); sym != NoSymbol {
		rs.addRef(sym, id)
		return
	}
	if IsPredeclared(name) {
		return
	}
	rs.t.Unresolved++
	rs.pending = append(rs.pending, unresolvedRef{name: name, span: rs.tree.Span(id), qualifier: qualifier})
}

func (rs *resolver) addRef(sym SymbolID, id ast.NodeID) {
	s := &rs.t.Symbols[sym]
	span := rs.tree.Span(id)
	s.Refs = append(s.Refs, Ref{File: span.File, Span: span, From: rs.from})
}

func (rs *resolver) flushUnresolved() {
	if len(rs.pending) == 0 {
		return
	}
	info := &rs.t.Files[rs.file]
	idleImplicit := false
	for i := range rs.t.Symbols[1:] {
		s := &rs.t.Symbols[i+1]
		if s.Kind == KindImport && s.File == rs.file && s.Flags&FlagImplicitImport != 0 && len(s.Refs) == 0 {
			idleImplicit = true
			break
		}
	}

	for _, p := range rs.pending {
		if p.qualifier && idleImplicit {
			info.AmbiguousImports = true
			continue
		}
		if rs.opts.SuppressUnresolved || info.DotImport || info.Cgo {
			continue
		}
		diag.ReportWarning(rs.reporter, diag.SemUnresolvedReference, p.span, "undefined: "+p.name).Emit()
	}
}
