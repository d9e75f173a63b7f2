package diagfmt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"dioxide/internal/diag"
	"dioxide/internal/fix"
)

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := Summary(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "no issues found") {
		t.Fatalf("got %q", buf.String())
	}

	buf.Reset()
	diags := []diag.Diagnostic{{Severity: diag.SevError}, {Severity: diag.SevWarning}, {Severity: diag.SevWarning}}
	_ = Summary(&buf, diags)
	for _, want := range []string{"1 error", "2 warnings", "0 infos"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("summary %q misses %q", buf.String(), want)
		}
	}
}

func TestFixSummary(t *testing.T) {
	res := &fix.Result{
		Applied: 3,
		Files: []*fix.FileOutcome{
			{Path: "/repo/a.go", Applied: []string{"x", "y"}},
			{Path: "/repo/b.go", Applied: []string{"z"}},
			{Path: "/repo/c.go"},
			{Path: "/repo/d.go", Err: errors.New("read-only file system")},
		},
		Skipped: []fix.Skipped{{FixID: "naming@a.go:4", Title: "rename a_b to aB", Code: diag.FixConflict, Reason: "overlaps an accepted fix"}},
	}
	var buf bytes.Buffer
	if err := FixSummary(&buf, res, SummaryOpts{BaseDir: "/repo"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"applied 3 fixes in 2 files",
		"fixed a.go (2 fixes)",
		"fixed b.go (1 fix)",
		"failed d.go: read-only file system",
		"skipped 1 fix",
		"naming@a.go:4 FIX9001 rename a_b to aB: overlaps an accepted fix",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary misses %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "c.go") {
		t.Errorf("untouched files are not listed:\n%s", out)
	}
	if err := FixSummary(&buf, nil, SummaryOpts{}); err != nil {
		t.Fatal(err)
	}
}
