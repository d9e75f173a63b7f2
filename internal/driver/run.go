package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"dioxide/internal/ast"
	"dioxide/internal/config"
	"dioxide/internal/diag"
	"dioxide/internal/fix"
	"dioxide/internal/observ"
	"dioxide/internal/project"
	"dioxide/internal/project/dag"
	"dioxide/internal/rules"
	"dioxide/internal/source"
	"dioxide/internal/symbols"
	"dioxide/internal/syntax"
	"dioxide/internal/trace"
	"dioxide/internal/walk"
)

type run struct {
	opts  Options
	cfg   *config.Config
	reg   *rules.Registry
	jobs  int
	timer *observ.Timer
	res   *Result
	// pipeline diagnostics: IO, SYN, SEM and PRJ
	bag *diag.Bag
}

type parsed struct {
	id   source.FileID
	tree *ast.File
	errs []*syntax.ParseError
}

func newRun(opts Options) *run {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	reg := opts.Registry
	if reg == nil {
		reg = rules.Default()
	}
	r := &run{
		opts: opts,
		cfg:  cfg,
		reg:  reg,
		jobs: jobsFor(opts, cfg),
		res:  &Result{FileSet: source.NewFileSet()},
		bag:  diag.NewBag(0),
	}
	if opts.Timings {
		r.timer = observ.NewTimer()
	}
	return r
}

// analyze runs every phase up to the rules and returns the merged, sorted
// diagnostics.
func (r *run) analyze(ctx context.Context, paths []string) ([]diag.Diagnostic, error) {
	var (
		files   []string
		loaded  []source.FileID
		results []parsed
		failed  map[string]bool
		set     *project.Set
		diags   []diag.Diagnostic
	)
	steps := []struct {
		name string
		fn   func(ctx context.Context) (string, error)
	}{
		{"collect", func(context.Context) (string, error) {
			var err error
			files, err = r.collect(paths)
			return fmt.Sprintf("%d files", len(files)), err
		}},
		{"load", func(ctx context.Context) (string, error) {
			var err error
			loaded, err = r.load(ctx, files)
			return fmt.Sprintf("%d loaded", len(loaded)), err
		}},
		{"parse", func(ctx context.Context) (string, error) {
			var err error
			results, err = r.parse(ctx, loaded)
			return fmt.Sprintf("%d cache hits", r.res.CacheHits), err
		}},
		{"group", func(context.Context) (string, error) {
			var err error
			if set, failed, err = r.group(results); err != nil {
				return "", err
			}
			return fmt.Sprintf("%d packages", set.Len()), nil
		}},
		{"resolve", func(ctx context.Context) (string, error) {
			return "", r.resolve(ctx, set, failed)
		}},
		{"graph", func(context.Context) (string, error) {
			idx := dag.BuildIndex(set.Packages)
			r.res.Index = idx
			r.res.Graph = dag.BuildGraph(idx, set.Packages, diag.BagReporter{Bag: r.bag})
			return fmt.Sprintf("%d cycles", len(dag.Cycles(r.res.Graph))), nil
		}},
		{"rules", func(ctx context.Context) (string, error) {
			var err error
			diags, err = rules.Run(ctx, r.reg, rules.Input{
				FileSet: r.res.FileSet,
				Set:     set,
				Index:   r.res.Index,
				Graph:   r.res.Graph,
				Config:  r.cfg,
				Jobs:    r.jobs,
			})
			return fmt.Sprintf("%d diagnostics", len(diags)), err
		}},
		{"sort", func(context.Context) (string, error) {
			diags = append(r.bag.Items(), diags...)
			diag.SortDiagnostics(diags, r.res.FileSet, r.reg.Priority)
			return "", nil
		}},
	}
	for _, s := range steps {
		if err := r.phase(ctx, s.name, s.fn); err != nil {
			return nil, err
		}
	}
	r.res.Packages = set
	return diags, nil
}

// collect expands directories into their Go files. Named .go files that
// cannot be stat'ed are kept so that load reports them.
func (r *run) collect(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	opts := walk.Options{
		IgnorePatterns: r.cfg.General.IgnorePatterns,
		ExcludeDirs:    r.cfg.General.ExcludeDirs,
	}
	var walked, missing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil && filepath.Ext(p) == ".go" {
			missing = append(missing, p)
			continue
		}
		walked = append(walked, p)
	}
	files, err := walk.CollectAll(walked, opts)
	if err != nil {
		return nil, err
	}
	return append(files, missing...), nil
}

// load reads files sequentially. A file that cannot be read becomes an
// empty virtual file carrying an IO8001 error and takes no further part.
func (r *run) load(ctx context.Context, files []string) ([]source.FileID, error) {
	fs := r.res.FileSet
	loaded := make([]source.FileID, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, err := fs.Load(path)
		if err != nil {
			id = fs.AddVirtual(path, nil)
			r.bag.Add(diag.NewError(diag.IOError, source.Span{File: id}, fmt.Sprintf("failed to load file: %v", err)))
			trace.Fail(ctx, trace.ScopeFile, "load_failed", err)
			continue
		}
		loaded = append(loaded, id)
	}
	if len(loaded) == 0 {
		return nil, ErrNoInput
	}
	return loaded, nil
}

// parse runs one task per file on a bounded pool. Results are indexed by
// position so no locking is needed.
func (r *run) parse(ctx context.Context, ids []source.FileID) ([]parsed, error) {
	results := make([]parsed, len(ids))
	var hits atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(r.jobs, len(ids))))
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file := r.res.FileSet.Get(id)
			_, span := trace.Start(gctx, trace.ScopeFile, file.Path)
			defer span.End("")
			res := parsed{id: id}
			if r.opts.Cache != nil {
				var hit bool
				res.tree, res.errs, hit = r.opts.Cache.Parse(file)
				if hit {
					hits.Add(1)
				}
				span.Attr("cached", hit)
			} else {
				res.tree, res.errs = syntax.Parse(file)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.res.CacheHits = int(hits.Load())
	return results, nil
}

// group turns parsed files into packages. Files with parse errors report
// SYN1001 and are left out; the directories they live in are returned so
// resolution there does not report names those files would have declared.
func (r *run) group(results []parsed) (*project.Set, map[string]bool, error) {
	fs := r.res.FileSet
	failed := make(map[string]bool)
	units := make([]*project.FileUnit, 0, len(results))
	for _, p := range results {
		file := fs.Get(p.id)
		if len(p.errs) > 0 {
			for _, e := range p.errs {
				r.bag.Add(e.Diagnostic())
			}
			failed[filepath.Dir(filepath.FromSlash(file.Path))] = true
			continue
		}
		units = append(units, &project.FileUnit{Source: file, Tree: p.tree})
	}

	mod, err := r.module(results)
	if err != nil {
		return nil, nil, err
	}
	root := r.opts.Root
	if root == "" && mod != nil {
		root = mod.Root
	}
	return project.Build(mod, root, units, diag.BagReporter{Bag: r.bag}), failed, nil
}

// module returns the configured module or discovers go.mod from the first
// loaded file; no go.mod is not an error.
func (r *run) module(results []parsed) (*project.Module, error) {
	if r.opts.Module != nil {
		return r.opts.Module, nil
	}
	start := r.opts.Root
	if start == "" && len(results) > 0 {
		start = filepath.Dir(filepath.FromSlash(r.res.FileSet.Path(results[0].id)))
	}
	if start == "" {
		var err error
		if start, err = os.Getwd(); err != nil {
			return nil, err
		}
	}
	mod, ok, err := project.FindModule(start)
	if err != nil || !ok {
		return nil, err
	}
	return mod, nil
}

// resolve builds every package's symbol table, one task per package.
func (r *run) resolve(ctx context.Context, set *project.Set, failed map[string]bool) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.jobs))
	for _, pkg := range set.Packages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, span := trace.Start(gctx, trace.ScopePackage, pkg.ImportPath)
			pkg.Resolve(symbols.Options{SuppressUnresolved: failed[pkg.Dir]})
			span.Attr("symbols", pkg.Symbols.Len()).End("")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, pkg := range set.Packages {
		for _, d := range pkg.Diagnostics {
			r.bag.Add(d)
		}
	}
	return nil
}

func (r *run) applyFixes(ctx context.Context, diags []diag.Diagnostic) (*fix.Result, error) {
	opts := fix.Options{MaxApplicability: diag.FixApplicabilityAlwaysSafe}
	if r.opts.UnsafeFixes {
		opts.MaxApplicability = diag.FixApplicabilitySafeWithHeuristics
	}
	plan := fix.Plan(r.res.FileSet, diags, opts)
	if r.opts.DryRun {
		return plan, nil
	}
	if err := fix.Write(ctx, plan, r.jobs); err != nil && !errors.Is(err, fix.ErrNoFixes) {
		return nil, err
	}
	return plan, nil
}

// dropFixed removes diagnostics with a fix that was written.
func (r *run) dropFixed(diags []diag.Diagnostic, plan *fix.Result) []diag.Diagnostic {
	written := make(map[string]bool)
	for _, f := range plan.Files {
		if f.Err != nil || !f.Changed() || f.File == nil || f.File.Flags&source.FileVirtual != 0 {
			continue
		}
		for _, id := range f.Applied {
			written[id] = true
		}
	}
	out := diags[:0:0]
	for _, d := range diags {
		fixed := false
		for _, fx := range d.Fixes {
			if fx.ID != "" && written[fx.ID] {
				fixed = true
				break
			}
		}
		if fixed {
			r.res.Fixed++
			continue
		}
		out = append(out, d)
	}
	return out
}
