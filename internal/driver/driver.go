// Package driver runs the lint pipeline: load, parse, group into packages,
// resolve, build the dependency graph, run the rules and, in fix mode,
// plan and write fixes.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"dioxide/internal/cache"
	"dioxide/internal/config"
	"dioxide/internal/diag"
	"dioxide/internal/fix"
	"dioxide/internal/observ"
	"dioxide/internal/project"
	"dioxide/internal/project/dag"
	"dioxide/internal/rules"
	"dioxide/internal/source"
	"dioxide/internal/trace"
)

var (
	// ErrCancelled is returned, wrapping ctx.Err(), when the context ends
	// before the run completes. No partial report is produced.
	ErrCancelled = errors.New("analysis cancelled")
	// ErrNoInput is returned when none of the given files could be read.
	ErrNoInput = errors.New("no readable Go files")
)

// Options configures one run.
type Options struct {
	Config *config.Config // nil = config.Default()
	Jobs   int            // 0 = config.General.Jobs, then GOMAXPROCS
	// MaxDiagnostics caps Result.Diagnostics after sorting; 0 = config, then unlimited.
	MaxDiagnostics int
	Timings        bool
	Cache          *cache.Disk     // optional parse cache
	Registry       *rules.Registry // nil = rules.Default()
	// Module overrides go.mod discovery.
	Module *project.Module
	// Root is the lint root used for import paths outside a module and
	// for ignore patterns; "" = current directory.
	Root string
	// UnsafeFixes also applies fixes marked safe-with-heuristics.
	UnsafeFixes bool
	// DryRun plans fixes without writing them.
	DryRun   bool
	Observer PhaseObserver
}

// Result is the outcome of a run. Everything in it is read-only.
type Result struct {
	FileSet  *source.FileSet
	Packages *project.Set
	Index    dag.Index
	Graph    dag.Graph
	// Diagnostics are sorted for output. In fix mode diagnostics whose fix
	// was written are left out and counted in Fixed.
	Diagnostics []diag.Diagnostic
	Dropped     int // diagnostics cut by MaxDiagnostics
	Fixed       int
	CacheHits   int
	Timings     observ.Report
}

// HasErrors reports whether an error-severity diagnostic remains.
func (r *Result) HasErrors() bool {
	for i := range r.Diagnostics {
		if r.Diagnostics[i].Severity == diag.SevError {
			return true
		}
	}
	return false
}

// Analyze runs the pipeline in check mode. paths may name files and
// directories; directories are walked with the configured ignore rules.
func Analyze(ctx context.Context, paths []string, opts Options) (*Result, error) {
	ctx, span := trace.Start(ctx, trace.ScopeRun, "analyze")
	r := newRun(opts)
	diags, err := r.analyze(ctx, paths)
	if err != nil {
		trace.Fail(ctx, trace.ScopeRun, "analyze_failed", err)
		span.End("")
		return nil, err
	}
	r.finish(diags)
	span.Attr("diagnostics", len(r.res.Diagnostics)).End("")
	return r.res, nil
}

// AnalyzeAndFix runs the pipeline and applies the selected fixes. Fixes
// are planned on the full sorted diagnostic list, before MaxDiagnostics
// applies.
func AnalyzeAndFix(ctx context.Context, paths []string, opts Options) (*Result, *fix.Result, error) {
	ctx, span := trace.Start(ctx, trace.ScopeRun, "fix")
	defer span.End("")
	r := newRun(opts)
	diags, err := r.analyze(ctx, paths)
	if err != nil {
		trace.Fail(ctx, trace.ScopeRun, "analyze_failed", err)
		return nil, nil, err
	}
	var plan *fix.Result
	err = r.phase(ctx, "fix", func(ctx context.Context) (string, error) {
		var err error
		plan, err = r.applyFixes(ctx, diags)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d applied, %d skipped", plan.Applied, len(plan.Skipped)), nil
	})
	if err != nil {
		return nil, nil, err
	}
	if !r.opts.DryRun {
		diags = r.dropFixed(diags, plan)
	}
	r.finish(diags)
	span.Attr("applied", plan.Applied).Attr("diagnostics", len(r.res.Diagnostics))
	return r.res, plan, nil
}

func (r *run) finish(diags []diag.Diagnostic) {
	limit := r.opts.MaxDiagnostics
	if limit == 0 {
		limit = r.cfg.General.MaxDiagnostics
	}
	if limit > 0 && len(diags) > limit {
		r.res.Dropped = len(diags) - limit
		diags = diags[:limit]
	}
	r.res.Diagnostics = diags
	if r.timer != nil {
		r.timer.Count("files", r.res.FileSet.Len())
		if r.res.Packages != nil {
			r.timer.Count("packages", r.res.Packages.Len())
		}
		r.timer.Count("cache hits", r.res.CacheHits)
		r.timer.Count("diagnostics", len(diags)+r.res.Dropped)
		r.res.Timings = r.timer.Report()
	}
}

func jobsFor(opts Options, cfg *config.Config) int {
	switch {
	case opts.Jobs > 0:
		return opts.Jobs
	case cfg.General.Jobs > 0:
		return cfg.General.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

func cancelled(err error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}
