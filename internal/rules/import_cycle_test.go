package rules

import (
	"strings"
	"testing"
)

func TestImportCycleTwoPackages(t *testing.T) {
	fx := check(t, only("import-cycle"), `
-- a/a.go --
package a

import "example.com/m/b"

var A = b.B
-- b/b.go --
package b

import "example.com/m/a"

var B = a.A
`)
	cycle := "import cycle not allowed: example.com/m/a -> example.com/m/b -> example.com/m/a"
	want := "error ARC6001 import-cycle /repo/a/a.go:3:8 " + cycle + "\n" +
		"error ARC6001 import-cycle /repo/b/b.go:3:8 " + cycle
	if got := fx.short(); got != want {
		t.Fatalf("diagnostics:\n%s\nwant:\n%s", got, want)
	}
	notes := fx.diags[0].Notes
	if len(notes) != 1 || notes[0].Msg != "example.com/m/b imports example.com/m/a" {
		t.Fatalf("notes = %+v", notes)
	}
	if got := fx.fs.Path(notes[0].Span.File); got != "/repo/b/b.go" {
		t.Fatalf("note must point into b.go, got %s", got)
	}
	if got := fx.diags[1].Notes[0].Msg; got != "example.com/m/a imports example.com/m/b" {
		t.Fatalf("b note = %q", got)
	}
}

func TestImportCycleThreePackages(t *testing.T) {
	fx := check(t, only("import-cycle"), `
-- a/a.go --
package a

import "example.com/m/b"

var A = b.B
-- b/b.go --
package b

import "example.com/m/c"

var B = c.C
-- c/c.go --
package c

import "example.com/m/a"

var C = a.A
-- d/d.go --
package d

import "example.com/m/a"

var D = a.A
`)
	if len(fx.diags) != 3 {
		t.Fatalf("want one cycle diagnostic per member:\n%s", fx.short())
	}
	var files []string
	for _, d := range fx.diags {
		files = append(files, fx.fs.Path(d.Primary.File))
		if d.Message != fx.diags[0].Message {
			t.Errorf("members disagree on the cycle: %q vs %q", d.Message, fx.diags[0].Message)
		}
		if len(d.Notes) != 1 {
			t.Errorf("want the incoming import as note, got %+v", d.Notes)
		}
	}
	if got := strings.Join(files, " "); got != "/repo/a/a.go /repo/b/b.go /repo/c/c.go" {
		t.Fatalf("reported in %s", got)
	}
	msg := fx.diags[0].Message
	for _, member := range []string{"example.com/m/a", "example.com/m/b", "example.com/m/c"} {
		if !strings.Contains(msg, member) {
			t.Errorf("message %q does not name %s", msg, member)
		}
	}
	if strings.Contains(msg, "example.com/m/d") {
		t.Errorf("d is not part of the cycle: %q", msg)
	}
}
