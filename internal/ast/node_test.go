package ast

import (
	"slices"
	"testing"

	"dioxide/internal/source"
)

// buildSample lowers by hand: func f(a, b int) { x }
func buildSample() (*File, map[string]NodeID) {
	f := NewFile(0, 8)
	ids := map[string]NodeID{}
	sp := func(s, e uint32) source.Span { return source.Span{Start: s, End: e} }

	ids["root"] = f.Add(Node{Kind: KindSourceFile, Span: sp(0, 24)})
	f.Root = ids["root"]
	ids["func"] = f.Add(Node{Kind: KindFuncDecl, Parent: ids["root"], Span: sp(0, 24)})
	ids["name"] = f.Add(Node{Kind: KindIdentifier, Field: FieldName, Parent: ids["func"], Span: sp(5, 6)})
	ids["params"] = f.Add(Node{Kind: KindParameterList, Field: FieldParameters, Parent: ids["func"], Span: sp(6, 15)})
	ids["param"] = f.Add(Node{Kind: KindParameterDecl, Parent: ids["params"], Span: sp(7, 14)})
	ids["a"] = f.Add(Node{Kind: KindIdentifier, Field: FieldName, Parent: ids["param"], Span: sp(7, 8)})
	ids["b"] = f.Add(Node{Kind: KindIdentifier, Field: FieldName, Parent: ids["param"], Span: sp(10, 11)})
	ids["int"] = f.Add(Node{Kind: KindTypeIdentifier, Field: FieldType, Parent: ids["param"], Span: sp(11, 14)})
	ids["body"] = f.Add(Node{Kind: KindBlock, Field: FieldBody, Parent: ids["func"], Span: sp(16, 24)})
	ids["x"] = f.Add(Node{Kind: KindIdentifier, Parent: ids["body"], Span: sp(18, 19)})
	return f, ids
}

func TestWalkIsPreOrder(t *testing.T) {
	f, ids := buildSample()
	var got []NodeID
	f.Walk(f.Root, func(id NodeID) bool {
		got = append(got, id)
		return true
	})
	want := []NodeID{ids["root"], ids["func"], ids["name"], ids["params"], ids["param"], ids["a"], ids["b"], ids["int"], ids["body"], ids["x"]}
	if !slices.Equal(got, want) {
		t.Fatalf("Walk order = %v, want %v", got, want)
	}

	var pruned []NodeID
	f.Walk(f.Root, func(id NodeID) bool {
		pruned = append(pruned, id)
		return f.Kind(id) != KindParameterList
	})
	if slices.Contains(pruned, ids["a"]) {
		t.Fatalf("returning false must skip children")
	}
}

func TestFieldLookups(t *testing.T) {
	f, ids := buildSample()
	names := f.ChildrenByField(ids["param"], FieldName)
	if !slices.Equal(names, []NodeID{ids["a"], ids["b"]}) {
		t.Fatalf("ChildrenByField = %v", names)
	}
	if f.ChildByField(ids["func"], FieldBody) != ids["body"] {
		t.Fatalf("ChildByField(body) failed")
	}
	if f.FirstChild(ids["func"], KindParameterList) != ids["params"] {
		t.Fatalf("FirstChild failed")
	}
	if f.Ancestor(ids["x"], KindFuncDecl, KindFuncLiteral) != ids["func"] {
		t.Fatalf("Ancestor failed")
	}
	if f.Ancestor(ids["root"], KindFuncDecl) != NoNode {
		t.Fatalf("root has no ancestors")
	}
	if got := f.Collect(f.Root, KindIdentifier); len(got) != 4 {
		t.Fatalf("Collect identifiers = %v", got)
	}
}

func TestTextAndInvalidNode(t *testing.T) {
	content := []byte("func f(a, bint) { x }   ")
	f, ids := buildSample()
	if got := f.Text(content, ids["x"]); got != "x" {
		t.Fatalf("Text = %q", got)
	}
	if f.Node(NoNode) != nil || f.Kind(NoNode) != KindInvalid {
		t.Fatalf("NoNode must be invalid")
	}
}

func TestKindOf(t *testing.T) {
	if KindOf("short_var_declaration") != KindShortVarDecl {
		t.Fatal("short_var_declaration")
	}
	if KindOf("unary_expression") != KindOther {
		t.Fatal("unknown kinds must map to KindOther")
	}
	if KindShortVarDecl.String() != "short_var_declaration" {
		t.Fatalf("String = %q", KindShortVarDecl.String())
	}
	if FieldOf("operand") != FieldOperand || FieldOf("nope") != FieldNone {
		t.Fatal("FieldOf")
	}
}
