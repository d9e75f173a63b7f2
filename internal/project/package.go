package project

import (
	"sort"

	"dioxide/internal/ast"
	"dioxide/internal/diag"
	"dioxide/internal/source"
	"dioxide/internal/symbols"
)

// PackageID indexes Set.Packages. Packages are ordered by import path.
type PackageID int

// NoPackage marks imports that resolve outside the run.
const NoPackage PackageID = -1

// FileUnit is one parsed file.
type FileUnit struct {
	Source      *source.File
	Tree        *ast.File
	PackageName string
	Test        bool // *_test.go
}

// Import is one import spec of a package.
type Import struct {
	Path     string
	Span     source.Span // the path literal
	File     source.FileID
	Spec     ast.NodeID
	Resolved PackageID
	External bool
}

// Package is the package model: its files, imports and resolved symbols.
// Symbols and Diagnostics are filled by the package's own resolution task
// and read-only afterwards.
type Package struct {
	ID         PackageID
	ImportPath string
	Name       string
	Dir        string
	// XTest marks external test packages (package foo_test).
	XTest       bool
	Files       []*FileUnit
	Imports     []Import
	Symbols     *symbols.Table
	Diagnostics []diag.Diagnostic
}

// External returns the imports that resolve outside the run.
func (p *Package) External() []Import {
	var out []Import
	for _, imp := range p.Imports {
		if imp.External {
			out = append(out, imp)
		}
	}
	return out
}

// Internal returns the imports that resolve to packages of the run.
func (p *Package) Internal() []Import {
	var out []Import
	for _, imp := range p.Imports {
		if !imp.External {
			out = append(out, imp)
		}
	}
	return out
}

// FileIndex returns the index of file id within p.Files, or -1.
func (p *Package) FileIndex(id source.FileID) int {
	for i, f := range p.Files {
		if f.Source.ID == id {
			return i
		}
	}
	return -1
}

// ClauseSpan returns the package clause of the first file; diagnostics that
// belong to the package as a whole are anchored there.
func (p *Package) ClauseSpan() source.Span {
	if len(p.Files) == 0 {
		return source.Span{}
	}
	f := p.Files[0]
	_, clause := PackageClause(f.Tree, f.Source.Content)
	if clause == ast.NoNode {
		return source.Span{File: f.Source.ID}
	}
	return f.Tree.Span(clause)
}

// Resolve builds the package's symbol table. Diagnostics raised during
// resolution are kept on the package.
func (p *Package) Resolve(opts symbols.Options) {
	inputs := make([]symbols.FileInput, len(p.Files))
	for i, f := range p.Files {
		inputs[i] = symbols.FileInput{Source: f.Source, Tree: f.Tree}
	}
	bag := diag.NewBag(0)
	p.Symbols = symbols.Resolve(p.Name, inputs, diag.BagReporter{Bag: bag}, opts)
	p.Diagnostics = append(p.Diagnostics[:0], bag.Items()...)
}

// Set is the ordered, immutable collection of packages of one run.
type Set struct {
	Module   *Module
	Packages []*Package
	byPath   map[string]PackageID
}

// Len returns the number of packages.
func (s *Set) Len() int {
	return len(s.Packages)
}

// Get returns the package for id, or nil.
func (s *Set) Get(id PackageID) *Package {
	if id < 0 || int(id) >= len(s.Packages) {
		return nil
	}
	return s.Packages[id]
}

// Lookup finds a package by import path.
func (s *Set) Lookup(path string) (*Package, bool) {
	id, ok := s.byPath[path]
	if !ok {
		return nil, false
	}
	return s.Packages[id], true
}

// Paths returns every import path in ID order.
func (s *Set) Paths() []string {
	out := make([]string, len(s.Packages))
	for i, p := range s.Packages {
		out[i] = p.ImportPath
	}
	return out
}

func sortUnits(units []*FileUnit) {
	sort.Slice(units, func(i, j int) bool {
		return units[i].Source.Path < units[j].Source.Path
	})
}
