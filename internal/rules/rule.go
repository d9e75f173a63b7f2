// Package rules holds the rule engine and the built-in rules. A rule checks
// one package at a time against the shared, read-only package set and
// dependency graph and reports through its pass.
package rules

import (
	"fmt"

	"dioxide/internal/config"
	"dioxide/internal/diag"
	"dioxide/internal/project"
	"dioxide/internal/project/dag"
	"dioxide/internal/source"
)

// Rule is one analysis. Name is the stable identifier used in configuration,
// output and fix ids.
type Rule interface {
	Name() string
	Doc() string
	Check(pass *Pass) error
}

// Pass is what a rule sees while checking one package.
type Pass struct {
	Package *project.Package
	Set     *project.Set
	Index   dag.Index
	Graph   dag.Graph
	// Cycles are the non-trivial components of Graph.
	Cycles  [][]dag.PackageID
	FileSet *source.FileSet
	Options config.RuleOptions

	rule     string
	reporter diag.Reporter
}

// Reporter returns the rule's private reporter.
func (p *Pass) Reporter() diag.Reporter {
	return p.reporter
}

// Rule returns the name of the running rule.
func (p *Pass) Rule() string {
	return p.rule
}

// Report emits a diagnostic of the running rule.
func (p *Pass) Report(sev diag.Severity, code diag.Code, at source.Span, msg string, fixes ...diag.Fix) {
	b := diag.NewReportBuilder(p.reporter, sev, code, at, msg)
	for _, f := range fixes {
		b.WithFix(f)
	}
	b.Emit()
}

// Unit returns the i-th file of the package.
func (p *Pass) Unit(i int) *project.FileUnit {
	if i < 0 || i >= len(p.Package.Files) {
		return nil
	}
	return p.Package.Files[i]
}

// FixID builds a stable fix id from the rule name and a file offset.
func (p *Pass) FixID(sp source.Span) string {
	return fmt.Sprintf("%s@%s:%d", p.rule, p.FileSet.Path(sp.File), sp.Start)
}
