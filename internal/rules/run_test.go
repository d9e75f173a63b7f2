package rules

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"dioxide/internal/config"
	"dioxide/internal/diag"
	"dioxide/internal/project/dag"
	"dioxide/internal/source"
	"dioxide/internal/testkit"
)

func TestRegistryOrder(t *testing.T) {
	reg := Default()
	if !slices.Equal(reg.Names(), config.RuleNames) {
		t.Fatalf("Names = %v, want %v", reg.Names(), config.RuleNames)
	}
	if reg.Priority("unused-variable") != 0 || reg.Priority("naming") != 6 {
		t.Fatalf("priorities follow registration order")
	}
	if reg.Priority("unknown") != len(config.RuleNames) {
		t.Fatalf("unknown rules sort last")
	}
	if _, ok := reg.Lookup("dead-code"); !ok {
		t.Fatalf("Lookup(dead-code) failed")
	}
	cfg := config.Default()
	cfg.SetEnabled("naming", false)
	if got := len(reg.Enabled(cfg)); got != len(config.RuleNames)-1 {
		t.Fatalf("Enabled = %d rules", got)
	}
}

type explode struct{}

func (explode) Name() string           { return "explode" }
func (explode) Doc() string            { return "panics" }
func (explode) Check(pass *Pass) error { panic("boom") }

type failing struct{}

func (failing) Name() string           { return "failing" }
func (failing) Doc() string            { return "fails" }
func (failing) Check(pass *Pass) error { return errors.New("no luck") }

func TestRunRecoversFromRuleFailures(t *testing.T) {
	fs := source.NewFileSet()
	ids := testkit.AddArchive(t, fs, base, `
-- a/a.go --
package a

import "fmt"
`)
	reg := NewRegistry(explode{}, UnusedImport{}, failing{})
	fx := checkFiles(t, reg, config.Default(), fs, ids)

	var codes []string
	for _, d := range fx.diags {
		codes = append(codes, d.Code.ID()+" "+d.Rule)
	}
	want := []string{"ENG4001 explode", "ENG4001 failing", "DC5002 unused-import"}
	if !slices.Equal(codes, want) {
		t.Fatalf("diagnostics = %v, want %v", codes, want)
	}
	if !strings.HasPrefix(fx.diags[0].Message, "rule explode failed on package example.com/m/a: panic: boom") {
		t.Fatalf("message = %q", fx.diags[0].Message)
	}
	if fx.diags[1].Message != "rule failing failed on package example.com/m/a: no luck" {
		t.Fatalf("message = %q", fx.diags[1].Message)
	}
	if fx.diags[0].Severity != diag.SevError {
		t.Fatalf("internal errors are errors")
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	fs := source.NewFileSet()
	ids := testkit.AddArchive(t, fs, base, "-- a/a.go --\npackage a\n")
	fx := checkFiles(t, Default(), config.Default(), fs, ids)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	idx := dag.BuildIndex(fx.set.Packages)
	_, err := Run(ctx, Default(), Input{
		FileSet: fs,
		Set:     fx.set,
		Index:   idx,
		Graph:   dag.BuildGraph(idx, fx.set.Packages, nil),
		Config:  config.Default(),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run on a cancelled context = %v", err)
	}
}

func TestFixesAreIdempotent(t *testing.T) {
	src := "package a\n\nimport (\n\t\"fmt\"\n\t\"os\"\n\t\"strings\"\n)\n\n" +
		"func Run(names []string) string {\n\tunused_total := 0\n\tfor i, n := range names {\n\t\tfmt.Println(n)\n\t}\n" +
		"\treturn strings.Join(names, \",\")   \n}\n\nfunc stale() {}\n"
	cfg := config.Default()
	fx := check(t, cfg, "-- a/a.go --\n"+src)

	res, out := fx.apply(t, diag.FixApplicabilitySafeWithHeuristics)
	if res.Applied == 0 {
		t.Fatalf("first run applied nothing:\n%s", fx.short())
	}
	wantSrc := "package a\n\nimport (\n\t\"fmt\"\n\t\"strings\"\n)\n\n" +
		"func Run(names []string) string {\n\t_ = 0\n\tfor _, n := range names {\n\t\tfmt.Println(n)\n\t}\n" +
		"\treturn strings.Join(names, \",\")\n}\n\n"
	if got := out["/repo/a/a.go"]; got != wantSrc {
		t.Fatalf("fixed source:\n%q\nwant:\n%q", got, wantSrc)
	}

	again := fx.recheck(t, cfg, out)
	res, _ = again.apply(t, diag.FixApplicabilitySafeWithHeuristics)
	if res.Applied != 0 {
		t.Fatalf("second run applied %d fixes:\n%s", res.Applied, again.short())
	}
}

func TestUnusedVarKeepsNamesUsedByItsType(t *testing.T) {
	src := "package a\n\nimport \"bytes\"\n\nfunc F() {\n\tconst n = 3\n\tvar x [n]int\n\tvar b bytes.Buffer\n\tvar plain int\n}\n"
	cfg := config.Default()
	fx := check(t, cfg, "-- a/a.go --\n"+src)

	res, out := fx.apply(t, diag.FixApplicabilitySafeWithHeuristics)
	if res.Applied != 3 {
		t.Fatalf("applied %d fixes:\n%s", res.Applied, fx.short())
	}
	want := "package a\n\nimport \"bytes\"\n\nfunc F() {\n\tconst n = 3\n\tvar _ [n]int\n\tvar _ bytes.Buffer\n}\n"
	if got := out["/repo/a/a.go"]; got != want {
		t.Fatalf("fixed source:\n%q\nwant:\n%q", got, want)
	}

	again := fx.recheck(t, cfg, out)
	if len(again.diags) != 0 {
		t.Fatalf("second run still reports:\n%s", again.short())
	}
}
