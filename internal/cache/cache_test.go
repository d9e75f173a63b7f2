package cache

import (
	"reflect"
	"testing"

	"dioxide/internal/source"
	"dioxide/internal/syntax"
)

func TestParseRoundTripsThroughDisk(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	content := []byte("package p\n\nfunc f() { x := 1; _ = x }\n")

	fs := source.NewFileSet()
	first := fs.Get(fs.AddVirtual("a.go", content))
	tree, errs, hit := c.Parse(first)
	if hit || len(errs) != 0 {
		t.Fatalf("first parse: hit=%v errs=%v", hit, errs)
	}

	// same content under another id and path
	second := fs.Get(fs.AddVirtual("b.go", content))
	cached, errs, hit := c.Parse(second)
	if !hit || len(errs) != 0 {
		t.Fatalf("second parse: hit=%v errs=%v", hit, errs)
	}
	if len(cached.Nodes) != len(tree.Nodes) || cached.Root != tree.Root {
		t.Fatalf("cached tree differs: %d nodes vs %d", len(cached.Nodes), len(tree.Nodes))
	}
	for i := 1; i < len(cached.Nodes); i++ {
		got, want := cached.Nodes[i], tree.Nodes[i]
		if got.Span.File != second.ID {
			t.Fatalf("node %d not rebound to the new file", i)
		}
		want.Span.File = second.ID
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("node %d = %+v, want %+v", i, got, want)
		}
	}
}

func TestParseErrorsAreCached(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSet()
	broken := []byte("package p\n\nfunc f( {\n")
	_, want, _ := c.Parse(fs.Get(fs.AddVirtual("a.go", broken)))
	if len(want) == 0 {
		t.Fatal("expected syntax errors")
	}
	file := fs.Get(fs.AddVirtual("b.go", broken))
	_, got, hit := c.Parse(file)
	if !hit {
		t.Fatal("expected a cache hit")
	}
	if len(got) != len(want) || got[0].Expected != want[0].Expected || got[0].Path != "b.go" {
		t.Fatalf("cached errors = %v, want %v", got, want)
	}
}

func TestGetMissesOnOtherSchema(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("a.go", []byte("package p\n")))
	key := Key(file)
	stale := Encode(nil, nil)
	stale.Grammar = "tree-sitter-go/v0.0.0"
	if err := c.Put(key, stale); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(key); ok || err != nil {
		t.Fatalf("stale grammar must miss: ok=%v err=%v", ok, err)
	}
	if syntax.GrammarVersion == stale.Grammar {
		t.Fatal("test needs a different grammar version")
	}
}

func TestDropAll(t *testing.T) {
	c, err := OpenDir(t.TempDir() + "/cache")
	if err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("a.go", []byte("package p\n")))
	c.Parse(file)
	if err := c.DropAll(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(Key(file)); ok {
		t.Fatal("entry survived DropAll")
	}
	var nilCache *Disk
	if err := nilCache.DropAll(); err != nil {
		t.Fatal(err)
	}
}
