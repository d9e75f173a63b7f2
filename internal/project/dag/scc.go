package dag

import (
	"slices"
	"sort"
)

type tarjanFrame struct {
	v    PackageID
	next int
}

// StronglyConnected decomposes g with an iterative Tarjan walk. Roots are
// visited in ascending id order and edges in ascending target order, so the
// result is stable across runs: components come in order of their first
// discovered member and members in discovery order.
func StronglyConnected(g Graph) [][]PackageID {
	n := len(g.Edges)
	index := make([]int, n) // 0 - не посещён, иначе порядок обнаружения + 1
	low := make([]int, n)
	onStack := make([]bool, n)
	stack := make([]PackageID, 0, n)
	var comps [][]PackageID
	counter := 0

	visit := func(v PackageID) {
		counter++
		index[v] = counter
		low[v] = counter
		stack = append(stack, v)
		onStack[v] = true
	}

	for root := range n {
		if !g.Present[root] || index[root] != 0 {
			continue
		}
		visit(PackageID(root))
		call := []tarjanFrame{{v: PackageID(root)}}
		for len(call) > 0 {
			top := &call[len(call)-1]
			v := top.v
			if top.next < len(g.Edges[v]) {
				w := g.Edges[v][top.next]
				top.next++
				switch {
				case !g.Present[w]:
				case index[w] == 0:
					visit(w)
					call = append(call, tarjanFrame{v: w})
				case onStack[w]:
					low[v] = min(low[v], index[w])
				}
				continue
			}

			call = call[:len(call)-1]
			if len(call) > 0 {
				u := call[len(call)-1].v
				low[u] = min(low[u], low[v])
			}
			if low[v] != index[v] {
				continue
			}
			var comp []PackageID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Slice(comp, func(i, j int) bool { return index[comp[i]] < index[comp[j]] })
			comps = append(comps, comp)
		}
	}

	sort.Slice(comps, func(i, j int) bool { return index[comps[i][0]] < index[comps[j][0]] })
	return comps
}

// Cycles returns the non-trivial components of g. Self-edges never reach the
// graph, so a component is a cycle exactly when it has two or more members.
func Cycles(g Graph) [][]PackageID {
	var out [][]PackageID
	for _, comp := range StronglyConnected(g) {
		if len(comp) > 1 {
			out = append(out, comp)
		}
	}
	return out
}

// CycleOf returns a closed walk that starts and ends at scc[0] and passes
// through every member in order, using only edges inside the component.
func CycleOf(g Graph, scc []PackageID) []PackageID {
	if len(scc) == 0 {
		return nil
	}
	inComp := make(map[PackageID]bool, len(scc))
	for _, id := range scc {
		inComp[id] = true
	}
	walk := []PackageID{scc[0]}
	for i := range scc {
		from := scc[i]
		to := scc[(i+1)%len(scc)]
		if from == to {
			continue
		}
		path := shortestPath(g, from, to, inComp)
		if path == nil {
			// не сильно связная компонента
			return nil
		}
		walk = append(walk, path[1:]...)
	}
	return walk
}

func shortestPath(g Graph, from, to PackageID, allowed map[PackageID]bool) []PackageID {
	prev := map[PackageID]PackageID{from: from}
	queue := []PackageID{from}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if v == to {
			break
		}
		for _, w := range g.Edges[v] {
			if !allowed[w] {
				continue
			}
			if _, seen := prev[w]; seen {
				continue
			}
			prev[w] = v
			queue = append(queue, w)
		}
	}
	if _, ok := prev[to]; !ok {
		return nil
	}
	var path []PackageID
	for v := to; ; v = prev[v] {
		path = append(path, v)
		if v == from {
			break
		}
	}
	slices.Reverse(path)
	return path
}
