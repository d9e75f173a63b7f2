package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"dioxide/internal/source"
)

// Table is the symbol arena of one package. It is filled by Resolve and
// read-only afterwards.
type Table struct {
	Package      string
	Symbols      []Symbol // Symbols[0] is a placeholder
	Scopes       []Scope  // Scopes[0] is a placeholder
	PackageScope ScopeID
	Files        []FileInfo
	// Unresolved counts references that resolved nowhere.
	Unresolved int
}

func newTable(pkg string, files int) *Table {
	t := &Table{
		Package: pkg,
		Symbols: make([]Symbol, 1, 64),
		Scopes:  make([]Scope, 1, 16),
		Files:   make([]FileInfo, files),
	}
	t.PackageScope = t.newScope(ScopePackage, NoScope, -1, source.Span{})
	return t
}

// Symbol returns the symbol for id, or nil.
func (t *Table) Symbol(id SymbolID) *Symbol {
	if id == NoSymbol || int(id) >= len(t.Symbols) {
		return nil
	}
	return &t.Symbols[id]
}

// Scope returns the scope for id, or nil.
func (t *Table) Scope(id ScopeID) *Scope {
	if id == NoScope || int(id) >= len(t.Scopes) {
		return nil
	}
	return &t.Scopes[id]
}

// Len returns the number of symbols.
func (t *Table) Len() int {
	return len(t.Symbols) - 1
}

// All returns every symbol in declaration order. Do not modify the result.
func (t *Table) All() []Symbol {
	return t.Symbols[1:]
}

// Lookup resolves name from scope outwards through package scope.
// The universe is not consulted.
func (t *Table) Lookup(scope ScopeID, name string) SymbolID {
	for cur := scope; cur != NoScope; cur = t.Scopes[cur].Parent {
		if id, ok := t.Scopes[cur].Names[name]; ok {
			return id
		}
	}
	return NoSymbol
}

// PackageLevel returns the symbol declared at package level under name.
func (t *Table) PackageLevel(name string) SymbolID {
	return t.Scopes[t.PackageScope].Names[name]
}

// NameInUse reports whether any symbol of the package, any predeclared
// identifier or any keyword already uses name.
func (t *Table) NameInUse(name string) bool {
	if IsPredeclared(name) || IsKeyword(name) {
		return true
	}
	for i := range t.Symbols[1:] {
		if t.Symbols[i+1].Name == name {
			return true
		}
	}
	return false
}

func (t *Table) newScope(kind ScopeKind, parent ScopeID, file int, span source.Span) ScopeID {
	id := ScopeID(t.nextIndex(len(t.Scopes)))
	t.Scopes = append(t.Scopes, Scope{
		ID:     id,
		Kind:   kind,
		Parent: parent,
		File:   file,
		Span:   span,
		Names:  make(map[string]SymbolID),
	})
	return id
}

func (t *Table) newSymbol(s Symbol) SymbolID {
	id := SymbolID(t.nextIndex(len(t.Symbols)))
	s.ID = id
	t.Symbols = append(t.Symbols, s)
	return id
}

// bind makes id visible under its name in scope; the first binding wins.
func (t *Table) bind(scope ScopeID, id SymbolID) {
	name := t.Symbols[id].Name
	if name == "_" || name == "" {
		return
	}
	if _, exists := t.Scopes[scope].Names[name]; exists {
		return
	}
	t.Scopes[scope].Names[name] = id
}

func (t *Table) nextIndex(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("symbol table overflow: %w", err))
	}
	return v
}
