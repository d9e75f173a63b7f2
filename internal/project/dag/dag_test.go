package dag

import (
	"slices"
	"strings"
	"testing"

	"dioxide/internal/diag"
	"dioxide/internal/project"
	"dioxide/internal/source"
)

// packages builds a package list from "path: dep dep" lines.
func packages(t *testing.T, lines ...string) []*project.Package {
	t.Helper()
	var out []*project.Package
	for i, line := range lines {
		path, deps, _ := strings.Cut(line, ":")
		p := &project.Package{ID: project.PackageID(i), ImportPath: strings.TrimSpace(path)}
		for j, dep := range strings.Fields(deps) {
			p.Imports = append(p.Imports, project.Import{
				Path: dep,
				Span: source.Span{File: source.FileID(i), Start: uint32(j * 10), End: uint32(j*10 + 5)},
			})
		}
		out = append(out, p)
	}
	return out
}

func names(idx Index, ids []PackageID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.Name(id)
	}
	return out
}

func TestBuildIndexSortsPaths(t *testing.T) {
	idx := BuildIndex(packages(t, "c:", "a:", "b:"))
	if !slices.Equal(idx.IDToName, []string{"a", "b", "c"}) {
		t.Fatalf("IDToName = %v", idx.IDToName)
	}
	if idx.NameToID["c"] != 2 || idx.Name(7) != "" {
		t.Fatalf("unexpected lookups")
	}
}

func TestBuildGraphDropsSelfImports(t *testing.T) {
	pkgs := packages(t, "a: b a b", "b:")
	pkgs = append(pkgs, &project.Package{ImportPath: "ext", Imports: []project.Import{{Path: "fmt", External: true}}})
	bag := diag.NewBag(10)
	idx := BuildIndex(pkgs)
	g := BuildGraph(idx, pkgs, diag.BagReporter{Bag: bag})

	a := idx.NameToID["a"]
	b := idx.NameToID["b"]
	if !slices.Equal(g.Edges[a], []PackageID{b}) {
		t.Fatalf("edges of a = %v", g.Edges[a])
	}
	if g.Indeg[b] != 1 || len(g.Edges[idx.NameToID["ext"]]) != 0 {
		t.Fatalf("unexpected graph %+v", g)
	}
	imp, ok := g.Import(a, b)
	if !ok || imp.Span.Start != 0 {
		t.Fatalf("edge a->b must keep the first import, got %+v", imp)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.PrjSelfImport {
		t.Fatalf("expected one self-import diagnostic, got %v", bag.Items())
	}
}

func TestBuildGraphDuplicatePackages(t *testing.T) {
	pkgs := packages(t, "dup:", "dup:")
	bag := diag.NewBag(10)
	idx := BuildIndex(pkgs)
	g := BuildGraph(idx, pkgs, diag.BagReporter{Bag: bag})
	if g.Len() != 1 || !g.Present[0] {
		t.Fatalf("expected a single node")
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.PrjDuplicatePackage || len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("expected PRJ3002 with a note, got %v", bag.Items())
	}
}

func TestStronglyConnectedThreeCycle(t *testing.T) {
	pkgs := packages(t, "a: b", "b: c", "c: a", "d: a", "e:")
	idx := BuildIndex(pkgs)
	g := BuildGraph(idx, pkgs, nil)

	comps := StronglyConnected(g)
	got := make([][]string, len(comps))
	for i, c := range comps {
		got[i] = names(idx, c)
	}
	want := [][]string{{"a", "b", "c"}, {"d"}, {"e"}}
	if len(got) != len(want) {
		t.Fatalf("components = %v, want %v", got, want)
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Fatalf("components = %v, want %v", got, want)
		}
	}

	cycles := Cycles(g)
	if len(cycles) != 1 {
		t.Fatalf("cycles = %v", cycles)
	}
	walk := names(idx, CycleOf(g, cycles[0]))
	if !slices.Equal(walk, []string{"a", "b", "c", "a"}) {
		t.Fatalf("CycleOf = %v", walk)
	}
}

func TestStronglyConnectedIsDeterministic(t *testing.T) {
	pkgs := packages(t, "a: b", "b: a c", "c: d", "d: c", "e: e")
	idx := BuildIndex(pkgs)
	g := BuildGraph(idx, pkgs, nil)
	first := Cycles(g)
	for range 10 {
		again := Cycles(g)
		if len(again) != len(first) {
			t.Fatalf("cycle count changed")
		}
		for i := range first {
			if !slices.Equal(first[i], again[i]) {
				t.Fatalf("cycle %d changed: %v vs %v", i, first[i], again[i])
			}
		}
	}
	if len(first) != 2 || !slices.Equal(names(idx, first[0]), []string{"a", "b"}) ||
		!slices.Equal(names(idx, first[1]), []string{"c", "d"}) {
		t.Fatalf("cycles = %v", first)
	}
}

func TestCycleOfVisitsEveryMember(t *testing.T) {
	// a -> b -> a and a -> c -> a share a; walk must cover all three
	pkgs := packages(t, "a: b c", "b: a", "c: a")
	idx := BuildIndex(pkgs)
	g := BuildGraph(idx, pkgs, nil)
	cycles := Cycles(g)
	if len(cycles) != 1 || len(cycles[0]) != 3 {
		t.Fatalf("cycles = %v", cycles)
	}
	walk := names(idx, CycleOf(g, cycles[0]))
	if !slices.Equal(walk, []string{"a", "b", "a", "c", "a"}) {
		t.Fatalf("CycleOf = %v", walk)
	}
}

func TestToposortKahnBatches(t *testing.T) {
	pkgs := packages(t, "b: c", "a:", "c:")
	idx := BuildIndex(pkgs)
	g := BuildGraph(idx, pkgs, nil)

	topo := ToposortKahn(g)
	if topo.Cyclic {
		t.Fatalf("expected acyclic graph")
	}
	if got := names(idx, topo.Order); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("order = %v", got)
	}
	if len(topo.Batches) != 2 || !slices.Equal(names(idx, topo.Batches[0]), []string{"a", "b"}) {
		t.Fatalf("batches = %v", topo.Batches)
	}

	cyclic := packages(t, "a: b", "b: a")
	cidx := BuildIndex(cyclic)
	ctopo := ToposortKahn(BuildGraph(cidx, cyclic, nil))
	if !ctopo.Cyclic || len(ctopo.Cycles) != 2 {
		t.Fatalf("expected both packages left in the cycle, got %+v", ctopo)
	}
}

func TestExportDOT(t *testing.T) {
	pkgs := packages(t, "a: b", "b: a", "c: a")
	idx := BuildIndex(pkgs)
	out := ExportDOT(BuildGraph(idx, pkgs, nil), idx)
	for _, want := range []string{
		"digraph packages {",
		`n0 [label="a" color=red];`,
		`n2 [label="c"];`,
		"n0 -> n1 [color=red];",
		"n2 -> n0;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q:\n%s", want, out)
		}
	}
}
