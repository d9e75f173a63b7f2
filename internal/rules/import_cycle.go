package rules

import (
	"fmt"
	"slices"
	"strings"

	"dioxide/internal/diag"
	"dioxide/internal/project/dag"
)

// ImportCycle reports every strongly connected component of the package
// graph with more than one member. Each member gets its own diagnostic,
// all naming the same walk that starts at the member discovered first. The
// diagnostic sits on the member's import that continues the cycle and notes
// the import that leads into it.
type ImportCycle struct{}

func (ImportCycle) Name() string { return "import-cycle" }

func (ImportCycle) Doc() string {
	return "import cycles between packages of the run"
}

func (ImportCycle) Check(pass *Pass) error {
	self, ok := pass.Index.NameToID[pass.Package.ImportPath]
	if !ok {
		return nil
	}
	for _, comp := range pass.Cycles {
		if !slices.Contains(comp, self) {
			continue
		}
		walk := dag.CycleOf(pass.Graph, comp)
		if len(walk) < 2 {
			return fmt.Errorf("no closed walk through component of %s", pass.Package.ImportPath)
		}
		names := make([]string, len(walk))
		for i, id := range walk {
			names[i] = pass.Index.Name(id)
		}
		// walk is closed, so the last element repeats the first
		at := slices.Index(walk[:len(walk)-1], self)
		if at < 0 {
			return fmt.Errorf("%s missing from its cycle walk", names[0])
		}
		prev := at - 1
		if at == 0 {
			prev = len(walk) - 2
		}
		out, ok := pass.Graph.Import(walk[at], walk[at+1])
		if !ok {
			return fmt.Errorf("missing edge %s -> %s", names[at], names[at+1])
		}

		b := diag.ReportError(pass.Reporter(), diag.ArcCircularDependency, out.Span,
			"import cycle not allowed: "+strings.Join(names, " -> "))
		if in, ok := pass.Graph.Import(walk[prev], self); ok {
			b.WithNote(in.Span, fmt.Sprintf("%s imports %s", names[prev], names[at]))
		}
		b.Emit()
	}
	return nil
}
