package rules

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"dioxide/internal/config"
	"dioxide/internal/diag"
	"dioxide/internal/project"
	"dioxide/internal/project/dag"
	"dioxide/internal/source"
	"dioxide/internal/trace"
)

// Input is the shared, read-only state every rule task reads.
type Input struct {
	FileSet *source.FileSet
	Set     *project.Set
	Index   dag.Index
	Graph   dag.Graph
	Config  *config.Config
	Jobs    int
}

// Run executes every enabled rule of reg, one task per rule on a bounded
// pool. Each task walks the packages in order and checks ctx between them.
// A rule that fails or panics on a package yields an ENG4001 diagnostic for
// that package and goes on with the next one. The merged result is sorted.
func Run(ctx context.Context, reg *Registry, in Input) ([]diag.Diagnostic, error) {
	cfg := in.Config
	if cfg == nil {
		cfg = config.Default()
	}
	enabled := reg.Enabled(cfg)
	cycles := dag.Cycles(in.Graph)

	bags := make([]*diag.Bag, len(enabled))
	g, gctx := errgroup.WithContext(ctx)
	if in.Jobs > 0 {
		g.SetLimit(in.Jobs)
	}
	for i, rule := range enabled {
		opts, _ := cfg.Options(rule.Name())
		bags[i] = diag.NewBag(0)
		bag := bags[i]
		g.Go(func() error {
			rctx, span := trace.Start(gctx, trace.ScopeRule, "rule:"+rule.Name())
			defer span.End("")
			for _, pkg := range in.Set.Packages {
				if err := gctx.Err(); err != nil {
					return err
				}
				pass := &Pass{
					Package:  pkg,
					Set:      in.Set,
					Index:    in.Index,
					Graph:    in.Graph,
					Cycles:   cycles,
					FileSet:  in.FileSet,
					Options:  opts,
					rule:     rule.Name(),
					reporter: diag.BagReporter{Bag: bag, Rule: rule.Name()},
				}
				if err := checkPackage(rule, pass); err != nil {
					trace.Fail(rctx, trace.ScopePackage, "rule_failed", fmt.Errorf("%s on %s: %w", rule.Name(), pkg.ImportPath, err))
					diag.ReportError(pass.reporter, diag.EngPassInternalError, pkg.ClauseSpan(),
						fmt.Sprintf("rule %s failed on package %s: %v", rule.Name(), pkg.ImportPath, err)).Emit()
				}
			}
			span.Attr("diagnostics", bag.Len())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []diag.Diagnostic
	for _, bag := range bags {
		out = append(out, bag.Items()...)
	}
	diag.SortDiagnostics(out, in.FileSet, reg.Priority)
	return out, nil
}

// checkPackage runs one rule on one package and turns a panic into an error.
func checkPackage(rule Rule, pass *Pass) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	if pass.Package.Symbols == nil {
		return nil
	}
	return rule.Check(pass)
}
