package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"dioxide/internal/ast"
	"dioxide/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a lowered file:
// 1) every node span is well-formed and within file content bounds
// 2) every node span belongs to the file
// 3) every child span lies inside its parent span
func CheckSpanInvariants(tree *ast.File, sf *source.File) error {
	if tree == nil || sf == nil {
		return fmt.Errorf("nil tree or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	for i := 1; i < len(tree.Nodes); i++ {
		n := &tree.Nodes[i]
		sp := n.Span
		if sp.End < sp.Start {
			return fmt.Errorf("node %d (%s): inverted span %v", i, n.Kind, sp)
		}
		if sp.End > lenContent {
			return fmt.Errorf("node %d (%s): span end beyond content: %d > %d", i, n.Kind, sp.End, lenContent)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("node %d (%s): span file mismatch: got=%d want=%d", i, n.Kind, sp.File, sf.ID)
		}
		if n.Parent == ast.NoNode {
			continue
		}
		parent := tree.Nodes[n.Parent].Span
		if sp.Start < parent.Start || sp.End > parent.End {
			return fmt.Errorf("node %d (%s): span %v is outside parent span %v", i, n.Kind, sp, parent)
		}
	}
	return nil
}
