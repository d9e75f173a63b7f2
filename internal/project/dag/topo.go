package dag

import "slices"

type Topo struct {
	Order   []PackageID   // линейный порядок (только реальные пакеты)
	Batches [][]PackageID // волны независимых пакетов
	Cyclic  bool
	Cycles  []PackageID // узлы, оставшиеся в цикле или зависящие от него
}

// ToposortKahn layers the graph: a package's batch comes before the batches
// of every package it imports.
func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]PackageID, 0, nodeCount),
		Batches: make([][]PackageID, 0),
	}

	active := 0
	current := make([]PackageID, 0, nodeCount)
	for i := range nodeCount {
		if !g.Present[i] {
			continue
		}
		active++
		if indeg[i] == 0 {
			current = append(current, PackageID(i))
		}
	}

	visited := 0
	for len(current) > 0 {
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]PackageID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[id] {
				if !g.Present[to] {
					continue
				}
				indeg[to]--
				if indeg[to] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		for i := range nodeCount {
			if g.Present[i] && indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, PackageID(i))
			}
		}
	}
	return topo
}
