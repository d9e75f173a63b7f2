package driver

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"dioxide/internal/cache"
	"dioxide/internal/diag"
	"dioxide/internal/fix"
	"dioxide/internal/source"
	"dioxide/internal/testkit"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const unusedLocal = `
-- go.mod --
module example.com/m

go 1.22
-- main.go --
package m

func Run() {
	x := 1
}
`

const importCycle = `
-- go.mod --
module example.com/m
-- a/a.go --
package a

import "example.com/m/b"

var A = b.B
-- b/b.go --
package b

import "example.com/m/a"

var B = a.A
`

func codes(diags []diag.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code.ID())
	}
	return out
}

func TestAnalyzeUnusedLocal(t *testing.T) {
	dir := testkit.WriteArchive(t, unusedLocal)
	res, err := Analyze(context.Background(), []string{dir}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("diagnostics:\n%s", diag.FormatShort(res.Diagnostics, res.FileSet, false))
	}
	d := res.Diagnostics[0]
	if d.Code != diag.DcUnusedVariable || d.Rule != "unused-variable" || d.Message != "declared and not used: x" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	start, _ := res.FileSet.Resolve(d.Primary)
	if start.Line != 4 || start.Col != 2 {
		t.Fatalf("position = %+v", start)
	}
	if res.HasErrors() {
		t.Fatal("an unused variable is a warning")
	}
	if p := res.Packages.Packages[0].ImportPath; p != "example.com/m" {
		t.Fatalf("import path = %q", p)
	}
}

func TestAnalyzeImportCycle(t *testing.T) {
	dir := testkit.WriteArchive(t, importCycle)
	res, err := Analyze(context.Background(), []string{dir}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	var cycles []diag.Diagnostic
	for _, d := range res.Diagnostics {
		if d.Code == diag.ArcCircularDependency {
			cycles = append(cycles, d)
		}
	}
	if len(cycles) != 2 {
		t.Fatalf("want one cycle diagnostic per package, got %d:\n%s", len(cycles), diag.FormatShort(res.Diagnostics, res.FileSet, false))
	}
	want := "import cycle not allowed: example.com/m/a -> example.com/m/b -> example.com/m/a"
	for _, d := range cycles {
		if d.Message != want {
			t.Fatalf("message = %q", d.Message)
		}
	}
	if !res.HasErrors() {
		t.Fatal("cycles are errors")
	}
}

func TestParseErrorsExcludeFile(t *testing.T) {
	dir := testkit.WriteArchive(t, `
-- go.mod --
module example.com/m
-- ok.go --
package m

func Use() int { return helper() }
-- broken.go --
package m

func helper() int { return 1 + }
`)
	res, err := Analyze(context.Background(), []string{dir}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	got := codes(res.Diagnostics)
	if !slices.Contains(got, "SYN1001") {
		t.Fatalf("expected a parse error, got %v", got)
	}
	if slices.Contains(got, "SEM2001") {
		t.Fatalf("names of the broken file must not be reported unresolved: %v", got)
	}
	for _, f := range res.Packages.Packages[0].Files {
		if strings.HasSuffix(f.Source.Path, "broken.go") {
			t.Fatal("broken file must not join the package")
		}
	}
}

func TestLoadFailures(t *testing.T) {
	dir := testkit.WriteArchive(t, unusedLocal)
	missing := filepath.Join(dir, "missing.go")
	res, err := Analyze(context.Background(), []string{filepath.Join(dir, "main.go"), missing}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := codes(res.Diagnostics); !slices.Contains(got, "IO8001") || !slices.Contains(got, "DC5001") {
		t.Fatalf("codes = %v", got)
	}

	_, err = Analyze(context.Background(), []string{missing}, Options{})
	if !errors.Is(err, ErrNoInput) {
		t.Fatalf("err = %v, want ErrNoInput", err)
	}
}

func TestCancelled(t *testing.T) {
	dir := testkit.WriteArchive(t, unusedLocal)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Analyze(ctx, []string{dir}, Options{})
	if !errors.Is(err, ErrCancelled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if res != nil {
		t.Fatal("a cancelled run has no report")
	}
}

func TestFixAndIdempotence(t *testing.T) {
	dir := testkit.WriteArchive(t, unusedLocal)
	res, plan, err := AnalyzeAndFix(context.Background(), []string{dir}, Options{UnsafeFixes: true})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Applied != 1 || res.Fixed != 1 || len(res.Diagnostics) != 0 {
		t.Fatalf("applied=%d fixed=%d remaining:\n%s", plan.Applied, res.Fixed, diag.FormatShort(res.Diagnostics, res.FileSet, false))
	}
	want := "package m\n\nfunc Run() {\n\t_ = 1\n}\n"
	if got := testkit.ReadFile(t, filepath.Join(dir, "main.go")); got != want {
		t.Fatalf("rewritten file:\n%s", got)
	}

	again, plan, err := AnalyzeAndFix(context.Background(), []string{dir}, Options{UnsafeFixes: true})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Applied != 0 || len(again.Diagnostics) != 0 {
		t.Fatalf("second run must be a no-op, applied %d", plan.Applied)
	}
}

func TestFailedWriteKeepsDiagnostics(t *testing.T) {
	dir := testkit.WriteArchive(t, importCycle)
	fs := source.NewFileSet()
	var files []*source.File
	for _, name := range []string{"a/a.go", "b/b.go"} {
		id, err := fs.Load(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		files = append(files, fs.Get(id))
	}
	plan := &fix.Result{Files: []*fix.FileOutcome{
		{Path: files[0].Path, File: files[0], Content: []byte("package a\n"), Applied: []string{"fa"}, Err: errors.New("rename failed")},
		{Path: files[1].Path, File: files[1], Content: []byte("package b\n"), Applied: []string{"fb"}},
	}}
	diags := []diag.Diagnostic{
		{Severity: diag.SevWarning, Code: diag.DcUnusedVariable, Message: "a", Fixes: []diag.Fix{{ID: "fa"}}},
		{Severity: diag.SevWarning, Code: diag.DcUnusedVariable, Message: "b", Fixes: []diag.Fix{{ID: "fb"}}},
	}
	r := newRun(Options{})
	out := r.dropFixed(diags, plan)
	if len(out) != 1 || out[0].Message != "a" {
		t.Fatalf("remaining = %+v", out)
	}
	if r.res.Fixed != 1 {
		t.Fatalf("fixed = %d", r.res.Fixed)
	}
}

func TestDryRunLeavesFiles(t *testing.T) {
	dir := testkit.WriteArchive(t, unusedLocal)
	before := testkit.ReadFile(t, filepath.Join(dir, "main.go"))
	res, plan, err := AnalyzeAndFix(context.Background(), []string{dir}, Options{UnsafeFixes: true, DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Applied != 1 || len(res.Diagnostics) != 1 {
		t.Fatalf("applied=%d diagnostics=%d", plan.Applied, len(res.Diagnostics))
	}
	if after := testkit.ReadFile(t, filepath.Join(dir, "main.go")); after != before {
		t.Fatal("dry run must not write")
	}
}

func TestDeterministicAcrossJobs(t *testing.T) {
	dir := testkit.WriteArchive(t, importCycle+`
-- c/c.go --
package c

import "strings"

func helper_fn() {
	if(true) {
	}
}
`)
	var outputs []string
	for _, jobs := range []int{1, 8, 1} {
		res, err := Analyze(context.Background(), []string{dir}, Options{Jobs: jobs})
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, diag.FormatShort(res.Diagnostics, res.FileSet, true))
	}
	if outputs[0] != outputs[1] || outputs[1] != outputs[2] {
		t.Fatalf("output depends on scheduling:\n%s\n---\n%s", outputs[0], outputs[1])
	}
}

func TestMaxDiagnostics(t *testing.T) {
	dir := testkit.WriteArchive(t, `
-- go.mod --
module example.com/m
-- m.go --
package m

func Run() {
	a := 1
	b := 2
	c := 3
}
`)
	res, err := Analyze(context.Background(), []string{dir}, Options{MaxDiagnostics: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Diagnostics) != 1 || res.Dropped != 2 {
		t.Fatalf("kept %d, dropped %d", len(res.Diagnostics), res.Dropped)
	}
	if res.Diagnostics[0].Message != "declared and not used: a" {
		t.Fatalf("the first sorted diagnostic must be kept, got %q", res.Diagnostics[0].Message)
	}
}

func TestPhasesAndTimings(t *testing.T) {
	dir := testkit.WriteArchive(t, unusedLocal)
	var events []string
	res, err := Analyze(context.Background(), []string{dir}, Options{
		Timings: true,
		Observer: func(ev PhaseEvent) {
			if ev.Status == PhaseEnd {
				events = append(events, ev.Name)
			}
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"collect", "load", "parse", "group", "resolve", "graph", "rules", "sort"}
	if !slices.Equal(events, want) {
		t.Fatalf("phases = %v", events)
	}
	if len(res.Timings.Phases) != len(want) {
		t.Fatalf("timings = %+v", res.Timings)
	}
	counts := map[string]int{}
	for _, c := range res.Timings.Counters {
		counts[c.Name] = c.Value
	}
	if counts["files"] != 1 || counts["packages"] != 1 || counts["diagnostics"] != 1 {
		t.Fatalf("counters = %+v", res.Timings.Counters)
	}
}

func TestParseCache(t *testing.T) {
	dir := testkit.WriteArchive(t, importCycle)
	c, err := cache.OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	first, err := Analyze(context.Background(), []string{dir}, Options{Cache: c})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Analyze(context.Background(), []string{dir}, Options{Cache: c})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHits != 0 || second.CacheHits != 2 {
		t.Fatalf("cache hits = %d, %d", first.CacheHits, second.CacheHits)
	}
	a := diag.FormatShort(first.Diagnostics, first.FileSet, true)
	b := diag.FormatShort(second.Diagnostics, second.FileSet, true)
	if a != b {
		t.Fatalf("cached parse changed the report:\n%s\n---\n%s", a, b)
	}
}
