package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetAddAssignsSequentialIDs(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("a.go", []byte("package a\n"), 0)
	id2 := fs.Add("b.go", []byte("package b\n"), 0)
	if id1 != 0 || id2 != 1 {
		t.Fatalf("expected ids 0 and 1, got %d and %d", id1, id2)
	}
	if fs.Len() != 2 {
		t.Fatalf("expected 2 files, got %d", fs.Len())
	}
	f, ok := fs.GetByPath("./b.go")
	if !ok || f.ID != id2 {
		t.Fatalf("GetByPath did not find b.go")
	}
	if fs.Get(FileID(7)) != nil {
		t.Fatalf("expected nil for unknown id")
	}
}

func TestPositionAcrossLines(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("x.go", []byte("ab\ncd\n\nef"))
	f := fs.Get(id)

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{2, LineCol{Line: 1, Col: 3}}, // the newline itself
		{3, LineCol{Line: 2, Col: 1}},
		{4, LineCol{Line: 2, Col: 2}},
		{6, LineCol{Line: 3, Col: 1}},
		{7, LineCol{Line: 4, Col: 1}},
		{9, LineCol{Line: 4, Col: 3}},
	}
	for _, tt := range tests {
		if got := f.Position(tt.off); got != tt.want {
			t.Errorf("Position(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}

	start, end := fs.Resolve(Span{File: id, Start: 3, End: 5})
	if start != (LineCol{Line: 2, Col: 1}) || end != (LineCol{Line: 2, Col: 3}) {
		t.Fatalf("Resolve = %+v %+v", start, end)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("x.go", []byte("first\nsecond\n\nlast")))

	want := []string{"first", "second", "", "last"}
	if f.LineCount() != 4 {
		t.Fatalf("LineCount = %d, want 4", f.LineCount())
	}
	for i, w := range want {
		if got := f.GetLine(uint32(i + 1)); got != w {
			t.Errorf("GetLine(%d) = %q, want %q", i+1, got, w)
		}
	}
	if got := f.GetLine(0); got != "" {
		t.Errorf("GetLine(0) = %q", got)
	}
	if got := f.GetLine(5); got != "" {
		t.Errorf("GetLine(5) = %q", got)
	}

	trailing := fs.Get(fs.AddVirtual("y.go", []byte("one\ntwo\n")))
	if trailing.LineCount() != 2 {
		t.Fatalf("trailing newline must not open a line, got %d", trailing.LineCount())
	}
}

func TestLoadNormalizesAndDenormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.go")
	raw := []byte("\xEF\xBB\xBFpackage p\r\n\r\nvar x = 1\r\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "package p\n\nvar x = 1\n" {
		t.Fatalf("unexpected normalized content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
	if got := f.Denormalize(f.Content); string(got) != string(raw) {
		t.Fatalf("Denormalize = %q, want %q", got, raw)
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "missing.go")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if fs.Len() != 0 {
		t.Fatal("failed load must not add a file")
	}
}

func TestRelativePath(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "repo")
	in := filepath.ToSlash(filepath.Join(base, "pkg", "a.go"))
	if got := RelativePath(in, base); got != "pkg/a.go" {
		t.Fatalf("RelativePath = %q", got)
	}
	outside := filepath.ToSlash(filepath.Join(string(filepath.Separator), "other", "b.go"))
	if got := RelativePath(outside, base); got != outside {
		t.Fatalf("paths outside base must stay as-is, got %q", got)
	}
}
