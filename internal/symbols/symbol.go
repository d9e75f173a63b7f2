package symbols

import (
	"dioxide/internal/ast"
	"dioxide/internal/source"
)

// SymbolID indexes Table.Symbols. Zero means "no symbol".
type SymbolID uint32

// ScopeID indexes Table.Scopes. Zero means "no scope".
type ScopeID uint32

const (
	NoSymbol SymbolID = 0
	NoScope  ScopeID  = 0
)

// GlobalID addresses a symbol across packages.
type GlobalID struct {
	Package int
	Symbol  SymbolID
}

// Kind classifies a declaration.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindFunc
	KindMethod
	KindVar
	KindConst
	KindType
	KindImport
	KindParam
	KindResult
	KindReceiver
	KindTypeParam
)

func (k Kind) String() string {
	switch k {
	case KindFunc:
		return "func"
	case KindMethod:
		return "method"
	case KindVar:
		return "var"
	case KindConst:
		return "const"
	case KindType:
		return "type"
	case KindImport:
		return "import"
	case KindParam:
		return "param"
	case KindResult:
		return "result"
	case KindReceiver:
		return "receiver"
	case KindTypeParam:
		return "type param"
	}
	return "invalid"
}

// SymbolFlags records how a symbol was declared.
type SymbolFlags uint8

const (
	// FlagLocal marks symbols declared inside a function.
	FlagLocal SymbolFlags = 1 << iota
	// FlagTypeSwitchAlias marks the x in switch x := v.(type).
	FlagTypeSwitchAlias
	// FlagImplicitImport marks imports whose name was derived from the path.
	FlagImplicitImport
	// FlagUnbound marks symbols that cannot be referenced by name (init, methods).
	FlagUnbound
)

// Ref is one resolved use of a symbol.
type Ref struct {
	File source.FileID
	Span source.Span
	// From is the enclosing package-level declaration, NoSymbol when the
	// use sits in an anonymous package-level declaration such as var _ = f().
	From SymbolID
}

// Symbol is one declaration. Symbols are owned by their package's Table.
type Symbol struct {
	ID       SymbolID
	Name     string
	Kind     Kind
	Flags    SymbolFlags
	Decl     source.Span // span of the declaring name
	File     int         // index into the resolved files
	Node     ast.NodeID  // the name node
	Stmt     ast.NodeID  // the declaring spec or statement
	Scope    ScopeID
	Exported bool
	// ImportPath is set for KindImport.
	ImportPath string
	Refs       []Ref
}

// Local reports whether the symbol was declared inside a function.
func (s *Symbol) Local() bool {
	return s.Flags&FlagLocal != 0
}

// ScopeKind classifies scopes.
type ScopeKind uint8

const (
	ScopePackage ScopeKind = iota + 1
	ScopeFile
	ScopeFunc
	ScopeBlock
)

// Scope maps names to symbols. The universe scope is implicit.
type Scope struct {
	ID     ScopeID
	Kind   ScopeKind
	Parent ScopeID
	File   int // -1 for the package scope
	Span   source.Span
	Names  map[string]SymbolID
}

// FileInfo holds per-file facts gathered during resolution.
type FileInfo struct {
	Scope ScopeID
	Test  bool
	// DotImport is set when the file imports a package with ".".
	DotImport bool
	// Cgo is set when the file imports "C".
	Cgo bool
	// AmbiguousImports is set when a qualified reference stayed unresolved
	// while an import with a derived name had no uses: the derived name was
	// probably wrong, so those imports must not be reported as unused.
	AmbiguousImports bool
}
