package project

import (
	"os"
	"path/filepath"
	"testing"

	"dioxide/internal/diag"
	"dioxide/internal/source"
	"dioxide/internal/symbols"
	"dioxide/internal/syntax"
	"dioxide/internal/testkit"
)

func parseUnits(t *testing.T, base, archive string) []*FileUnit {
	t.Helper()
	fs := source.NewFileSet()
	var units []*FileUnit
	for _, id := range testkit.AddArchive(t, fs, base, archive) {
		file := fs.Get(id)
		tree, errs := syntax.Parse(file)
		if len(errs) > 0 {
			t.Fatalf("parse %s: %v", file.Path, errs[0])
		}
		units = append(units, &FileUnit{Source: file, Tree: tree})
	}
	return units
}

const layout = `
-- b/b.go --
package b

import "example.com/m/a"

var B = a.A
-- a/a.go --
package a

import (
	"fmt"
	"example.com/m/b"
)

var A = fmt.Sprint(b.B)
-- a/a_test.go --
package a

func helperForTests() {}
-- a/x_test.go --
package a_test

import "example.com/m/a"

var _ = a.A
`

func TestBuildGroupsAndOrdersPackages(t *testing.T) {
	mod := &Module{Root: "/repo", Path: "example.com/m"}
	units := parseUnits(t, "/repo", layout)
	bag := diag.NewBag(0)
	set := Build(mod, "/repo", units, diag.BagReporter{Bag: bag})

	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	want := []string{"example.com/m/a", "example.com/m/a_test", "example.com/m/b"}
	got := set.Paths()
	if len(got) != len(want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] || set.Packages[i].ID != PackageID(i) {
			t.Fatalf("paths = %v, want %v", got, want)
		}
	}

	a, _ := set.Lookup("example.com/m/a")
	if len(a.Files) != 2 || a.Files[0].Source.Path != "/repo/a/a.go" || !a.Files[1].Test {
		t.Fatalf("package a files not grouped: %d", len(a.Files))
	}
	if len(a.External()) != 1 || a.External()[0].Path != "fmt" {
		t.Fatalf("external imports of a = %+v", a.External())
	}
	internal := a.Internal()
	if len(internal) != 1 || set.Get(internal[0].Resolved).ImportPath != "example.com/m/b" {
		t.Fatalf("internal imports of a = %+v", internal)
	}

	xtest, _ := set.Lookup("example.com/m/a_test")
	if !xtest.XTest || xtest.Imports[0].Resolved != a.ID {
		t.Fatalf("external test package not wired: %+v", xtest)
	}
}

func TestBuildReportsConflictingPackages(t *testing.T) {
	units := parseUnits(t, "", `
-- p/one.go --
package one
-- p/one_more.go --
package one
-- p/two.go --
package two
`)
	bag := diag.NewBag(0)
	set := Build(nil, "", units, diag.BagReporter{Bag: bag})
	if set.Len() != 1 || set.Packages[0].Name != "one" || set.Packages[0].ImportPath != "p" {
		t.Fatalf("expected only package one to survive, got %v", set.Paths())
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.PrjDuplicatePackage {
		t.Fatalf("expected one PRJ3002, got %v", bag.Items())
	}
}

func TestPackageResolveKeepsDiagnostics(t *testing.T) {
	units := parseUnits(t, "", `
-- q/q.go --
package q

func f() int { return undefinedName }
`)
	set := Build(nil, "", units, nil)
	p := set.Packages[0]
	p.Resolve(symbols.Options{})
	if p.Symbols == nil || len(p.Diagnostics) != 1 || p.Diagnostics[0].Code != diag.SemUnresolvedReference {
		t.Fatalf("resolution diagnostics = %v", p.Diagnostics)
	}
}

func TestFindModule(t *testing.T) {
	dir := t.TempDir()
	gomod := "module example.com/demo\n\ngo 1.22\n"
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte(gomod), 0o600); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(dir, "internal", "x")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	mod, ok, err := FindModule(nested)
	if err != nil || !ok {
		t.Fatalf("FindModule: ok=%v err=%v", ok, err)
	}
	if mod.Path != "example.com/demo" || mod.GoVersion != "1.22" {
		t.Fatalf("module = %+v", mod)
	}
	if got := ImportPath(mod, "", nested); got != "example.com/demo/internal/x" {
		t.Fatalf("ImportPath = %q", got)
	}
	if got := ImportPath(mod, "", dir); got != "example.com/demo" {
		t.Fatalf("ImportPath(root) = %q", got)
	}
}

func TestLoadModuleRejectsMissingDirective(t *testing.T) {
	path := filepath.Join(t.TempDir(), "go.mod")
	if err := os.WriteFile(path, []byte("go 1.22\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadModule(path); err == nil {
		t.Fatal("expected error for go.mod without module directive")
	}
}
