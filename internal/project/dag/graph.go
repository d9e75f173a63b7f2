package dag

import (
	"fmt"
	"sort"

	"dioxide/internal/diag"
	"dioxide/internal/project"
)

// Graph is the package dependency graph. It is built once per run and
// never modified afterwards.
type Graph struct {
	Edges [][]PackageID // Edges[from] = []to, ascending
	// Via[from][i] is the first import spec that produced Edges[from][i].
	Via     [][]project.Import
	Indeg   []int  // входящие степени для Kahn
	Present []bool // пакет реально есть в прогоне, а не только упомянут
}

// BuildGraph creates one node per package of idx and one edge per distinct
// internal import. External imports never become edges. Self-imports are
// reported as PRJ3003 and dropped; a second package with an import path that
// is already present is reported as PRJ3002.
func BuildGraph(idx Index, pkgs []*project.Package, r diag.Reporter) Graph {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]PackageID, nodeCount),
		Via:     make([][]project.Import, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	dedup := diag.NewDedupReporter(r)

	owner := make([]*project.Package, nodeCount)
	for _, p := range pkgs {
		id, ok := idx.NameToID[p.ImportPath]
		if !ok {
			// индекс строится по тем же пакетам
			continue
		}
		if prev := owner[id]; prev != nil {
			diag.ReportError(dedup, diag.PrjDuplicatePackage, p.ClauseSpan(),
				fmt.Sprintf("duplicate package %q", p.ImportPath)).
				WithNote(prev.ClauseSpan(), fmt.Sprintf("previous declaration of %q", prev.ImportPath)).
				Emit()
			continue
		}
		owner[id] = p
		g.Present[id] = true
	}

	for from, p := range owner {
		if p == nil {
			continue
		}
		seen := make(map[PackageID]struct{}, len(p.Imports))
		for _, imp := range p.Imports {
			if imp.External {
				continue
			}
			to, ok := idx.NameToID[imp.Path]
			if !ok {
				continue
			}
			if to == PackageID(from) {
				diag.ReportError(dedup, diag.PrjSelfImport, imp.Span,
					fmt.Sprintf("package %q imports itself", p.ImportPath)).Emit()
				continue
			}
			if _, dup := seen[to]; dup {
				continue
			}
			seen[to] = struct{}{}
			g.Edges[from] = append(g.Edges[from], to)
			g.Via[from] = append(g.Via[from], imp)
			if g.Present[to] {
				g.Indeg[to]++
			}
		}
		sortEdges(g.Edges[from], g.Via[from])
	}
	return g
}

// Import returns the import spec behind the edge from -> to.
func (g Graph) Import(from, to PackageID) (project.Import, bool) {
	edges := g.Edges[from]
	i := sort.Search(len(edges), func(i int) bool { return edges[i] >= to })
	if i < len(edges) && edges[i] == to {
		return g.Via[from][i], true
	}
	return project.Import{}, false
}

// Len returns the number of nodes.
func (g Graph) Len() int {
	return len(g.Edges)
}

type edgeSorter struct {
	to  []PackageID
	via []project.Import
}

func (s edgeSorter) Len() int           { return len(s.to) }
func (s edgeSorter) Less(i, j int) bool { return s.to[i] < s.to[j] }
func (s edgeSorter) Swap(i, j int) {
	s.to[i], s.to[j] = s.to[j], s.to[i]
	s.via[i], s.via[j] = s.via[j], s.via[i]
}

func sortEdges(to []PackageID, via []project.Import) {
	if len(to) > 1 {
		sort.Sort(edgeSorter{to: to, via: via})
	}
}
