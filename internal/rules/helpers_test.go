package rules

import (
	"context"
	"slices"
	"testing"

	"dioxide/internal/config"
	"dioxide/internal/diag"
	"dioxide/internal/fix"
	"dioxide/internal/project"
	"dioxide/internal/project/dag"
	"dioxide/internal/source"
	"dioxide/internal/symbols"
	"dioxide/internal/syntax"
	"dioxide/internal/testkit"
)

const base = "/repo"

type fixture struct {
	fs    *source.FileSet
	set   *project.Set
	diags []diag.Diagnostic
}

// only returns the default configuration with just the named rules enabled.
func only(names ...string) *config.Config {
	cfg := config.Default()
	for _, n := range config.RuleNames {
		cfg.SetEnabled(n, slices.Contains(names, n))
	}
	return cfg
}

func check(t *testing.T, cfg *config.Config, archive string) *fixture {
	t.Helper()
	fs := source.NewFileSet()
	ids := testkit.AddArchive(t, fs, base, archive)
	return checkFiles(t, Default(), cfg, fs, ids)
}

func checkFiles(t *testing.T, reg *Registry, cfg *config.Config, fs *source.FileSet, ids []source.FileID) *fixture {
	t.Helper()
	units := make([]*project.FileUnit, 0, len(ids))
	for _, id := range ids {
		file := fs.Get(id)
		tree, errs := syntax.Parse(file)
		if len(errs) > 0 {
			t.Fatalf("parse %s: %v", file.Path, errs[0])
		}
		units = append(units, &project.FileUnit{Source: file, Tree: tree})
	}
	set := project.Build(&project.Module{Root: base, Path: "example.com/m"}, base, units, nil)
	for _, p := range set.Packages {
		p.Resolve(symbols.Options{})
	}
	idx := dag.BuildIndex(set.Packages)
	g := dag.BuildGraph(idx, set.Packages, nil)
	diags, err := Run(context.Background(), reg, Input{FileSet: fs, Set: set, Index: idx, Graph: g, Config: cfg, Jobs: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return &fixture{fs: fs, set: set, diags: diags}
}

func (fx *fixture) short() string {
	return diag.FormatShort(fx.diags, fx.fs, false)
}

// apply plans every fix up to app and returns the patched content by path.
func (fx *fixture) apply(t *testing.T, app diag.FixApplicability) (*fix.Result, map[string]string) {
	t.Helper()
	res := fix.Plan(fx.fs, fx.diags, fix.Options{MaxApplicability: app})
	out := make(map[string]string)
	for _, f := range res.Files {
		if f.Changed() {
			out[f.Path] = string(f.Content)
		}
	}
	return res, out
}

// recheck reloads every file with the patched content and checks again.
func (fx *fixture) recheck(t *testing.T, cfg *config.Config, patched map[string]string) *fixture {
	t.Helper()
	fs := source.NewFileSet()
	var ids []source.FileID
	for _, f := range fx.fs.Files() {
		content := string(f.Content)
		if p, ok := patched[f.Path]; ok {
			content = p
		}
		ids = append(ids, fs.AddVirtual(f.Path, []byte(content)))
	}
	return checkFiles(t, Default(), cfg, fs, ids)
}
