package dag

import (
	"fmt"
	"strings"
)

// ExportDOT renders g in Graphviz syntax. Members of import cycles are drawn
// in red.
func ExportDOT(g Graph, idx Index) string {
	// номер цикла + 1 для каждого участника
	cycleOf := make(map[PackageID]int)
	for i, comp := range Cycles(g) {
		for _, id := range comp {
			cycleOf[id] = i + 1
		}
	}

	var sb strings.Builder
	sb.WriteString("digraph packages {\n")
	sb.WriteString("\trankdir=LR;\n")
	sb.WriteString("\tnode [shape=box];\n")
	for i := range g.Edges {
		if !g.Present[i] {
			continue
		}
		id := PackageID(i)
		attrs := ""
		if cycleOf[id] != 0 {
			attrs = " color=red"
		}
		fmt.Fprintf(&sb, "\tn%d [label=%q%s];\n", i, idx.Name(id), attrs)
	}
	for from, edges := range g.Edges {
		for _, to := range edges {
			attrs := ""
			if c := cycleOf[PackageID(from)]; c != 0 && c == cycleOf[to] {
				attrs = " [color=red]"
			}
			fmt.Fprintf(&sb, "\tn%d -> n%d%s;\n", from, to, attrs)
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}
