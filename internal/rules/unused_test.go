package rules

import (
	"testing"

	"dioxide/internal/diag"
)

func TestUnusedLocalVariable(t *testing.T) {
	fx := check(t, only("unused-variable"), `
-- a/a.go --
package a

func Run() {
	x := 1
	y := 2
	_ = y
}
`)
	want := "warning DC5001 unused-variable /repo/a/a.go:4:2 declared and not used: x"
	if got := fx.short(); got != want {
		t.Fatalf("diagnostics:\n%s\nwant:\n%s", got, want)
	}
	_, out := fx.apply(t, diag.FixApplicabilityAlwaysSafe)
	wantSrc := "package a\n\nfunc Run() {\n\t_ = 1\n\ty := 2\n\t_ = y\n}\n"
	if got := out["/repo/a/a.go"]; got != wantSrc {
		t.Fatalf("fixed source:\n%s\nwant:\n%s", got, wantSrc)
	}
}

func TestUnusedVariablePartialDefine(t *testing.T) {
	fx := check(t, only("unused-variable"), `
-- a/a.go --
package a

func Sum(xs []int) (total int) {
	for i, x := range xs {
		total += x
	}
	return
}
`)
	want := "warning DC5001 unused-variable /repo/a/a.go:4:6 declared and not used: i"
	if got := fx.short(); got != want {
		t.Fatalf("diagnostics:\n%s\nwant:\n%s", got, want)
	}
	_, out := fx.apply(t, diag.FixApplicabilityAlwaysSafe)
	wantSrc := "package a\n\nfunc Sum(xs []int) (total int) {\n\tfor _, x := range xs {\n\t\ttotal += x\n\t}\n\treturn\n}\n"
	if got := out["/repo/a/a.go"]; got != wantSrc {
		t.Fatalf("fixed source:\n%s\nwant:\n%s", got, wantSrc)
	}
}

func TestUnusedPackageLevel(t *testing.T) {
	archive := `
-- a/a.go --
package a

var (
	counter int
	Limit   = 3
)

var spare int

const answer = 42
`
	fx := check(t, only("unused-variable"), archive)
	want := "warning DC5001 unused-variable /repo/a/a.go:4:2 var counter is unused\n" +
		"warning DC5001 unused-variable /repo/a/a.go:8:5 var spare is unused\n" +
		"warning DC5001 unused-variable /repo/a/a.go:10:7 const answer is unused"
	if got := fx.short(); got != want {
		t.Fatalf("diagnostics:\n%s\nwant:\n%s", got, want)
	}
	_, out := fx.apply(t, diag.FixApplicabilityAlwaysSafe)
	wantSrc := "package a\n\nvar (\n\tLimit   = 3\n)\n\nconst _ = 42\n"
	if got := out["/repo/a/a.go"]; got != wantSrc {
		t.Fatalf("fixed source:\n%q\nwant:\n%q", got, wantSrc)
	}

	cfg := only("unused-variable")
	cfg.Rules.UnusedVariable.IncludePackageLevel = false
	if fx := check(t, cfg, archive); len(fx.diags) != 0 {
		t.Fatalf("package-level names must be skipped when disabled:\n%s", fx.short())
	}
}

func TestTypeSwitchAliasHasNoFix(t *testing.T) {
	fx := check(t, only("unused-variable"), `
-- a/a.go --
package a

func Kind(v any) string {
	switch x := v.(type) {
	case int:
		return "int"
	}
	return "other"
}
`)
	if len(fx.diags) != 1 {
		t.Fatalf("want one diagnostic, got:\n%s", fx.short())
	}
	if len(fx.diags[0].Fixes) != 0 {
		t.Fatalf("type switch alias must not carry a fix: %+v", fx.diags[0].Fixes)
	}
}

func TestUnusedImport(t *testing.T) {
	fx := check(t, only("unused-import"), `
-- a/a.go --
package a

import (
	"fmt"
	"os"
)

import str "strings"

var _ = os.Args
-- a/b.go --
package a

import (
	"bytes"
	"errors"
)
`)
	want := "warning DC5002 unused-import /repo/a/a.go:4:2 \"fmt\" imported and not used\n" +
		"warning DC5002 unused-import /repo/a/a.go:8:8 \"strings\" imported as str and not used\n" +
		"warning DC5002 unused-import /repo/a/b.go:4:2 \"bytes\" imported and not used\n" +
		"warning DC5002 unused-import /repo/a/b.go:5:2 \"errors\" imported and not used"
	if got := fx.short(); got != want {
		t.Fatalf("diagnostics:\n%s\nwant:\n%s", got, want)
	}

	res, out := fx.apply(t, diag.FixApplicabilityAlwaysSafe)
	if res.Applied != 3 {
		t.Fatalf("applied %d fixes, want 3 (one shared by b.go)", res.Applied)
	}
	if got, want := out["/repo/a/a.go"], "package a\n\nimport (\n\t\"os\"\n)\n\nvar _ = os.Args\n"; got != want {
		t.Fatalf("a.go:\n%q\nwant:\n%q", got, want)
	}
	if got, want := out["/repo/a/b.go"], "package a\n\n"; got != want {
		t.Fatalf("b.go:\n%q\nwant:\n%q", got, want)
	}
}

func TestUnusedImportSkipsCgoAndBlank(t *testing.T) {
	fx := check(t, only("unused-import"), `
-- a/a.go --
package a

// #include <stdio.h>
import "C"

import (
	_ "embed"
	"unsafe"
)
`)
	if len(fx.diags) != 0 {
		t.Fatalf("cgo files must be skipped:\n%s", fx.short())
	}
}
