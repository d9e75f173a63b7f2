package ast

import (
	"dioxide/internal/source"
)

// NodeID indexes File.Nodes. Zero is the invalid node.
type NodeID uint32

// NoNode is the invalid node id.
const NoNode NodeID = 0

// NodeFlags carries syntax facts that only anonymous tokens express.
type NodeFlags uint8

const (
	// FlagDefine marks range clauses and receive statements written with ":=".
	FlagDefine NodeFlags = 1 << iota
)

// Node is one named syntax node. Anonymous grammar tokens are not kept.
type Node struct {
	Kind     Kind
	Field    Field
	Flags    NodeFlags
	Span     source.Span
	Parent   NodeID
	Children []NodeID
}

// File is the lowered tree of one source file. Nodes[0] is a placeholder so
// that NodeID 0 stays invalid. A File is never mutated after lowering.
type File struct {
	Source source.FileID
	Nodes  []Node
	Root   NodeID
}

// NewFile creates an empty arena for file id.
func NewFile(id source.FileID, capHint int) *File {
	nodes := make([]Node, 1, capHint+1)
	return &File{Source: id, Nodes: nodes}
}

// Add appends a node and links it into its parent.
func (f *File) Add(n Node) NodeID {
	id := NodeID(len(f.Nodes))
	f.Nodes = append(f.Nodes, n)
	if n.Parent != NoNode {
		p := &f.Nodes[n.Parent]
		p.Children = append(p.Children, id)
	}
	return id
}

// Node returns the node for id, or nil.
func (f *File) Node(id NodeID) *Node {
	if id == NoNode || int(id) >= len(f.Nodes) {
		return nil
	}
	return &f.Nodes[id]
}

// Kind returns the kind of id, KindInvalid for NoNode.
func (f *File) Kind(id NodeID) Kind {
	if n := f.Node(id); n != nil {
		return n.Kind
	}
	return KindInvalid
}

// Span returns the span of id.
func (f *File) Span(id NodeID) source.Span {
	if n := f.Node(id); n != nil {
		return n.Span
	}
	return source.Span{File: f.Source}
}

// Parent returns the parent of id.
func (f *File) Parent(id NodeID) NodeID {
	if n := f.Node(id); n != nil {
		return n.Parent
	}
	return NoNode
}

// Text returns the source text of id.
func (f *File) Text(content []byte, id NodeID) string {
	n := f.Node(id)
	if n == nil || int(n.Span.End) > len(content) {
		return ""
	}
	return string(content[n.Span.Start:n.Span.End])
}

// ChildrenByField returns the children of id filling field, in source order.
func (f *File) ChildrenByField(id NodeID, field Field) []NodeID {
	n := f.Node(id)
	if n == nil {
		return nil
	}
	var out []NodeID
	for _, c := range n.Children {
		if f.Nodes[c].Field == field {
			out = append(out, c)
		}
	}
	return out
}

// ChildByField returns the first child of id filling field.
func (f *File) ChildByField(id NodeID, field Field) NodeID {
	n := f.Node(id)
	if n == nil {
		return NoNode
	}
	for _, c := range n.Children {
		if f.Nodes[c].Field == field {
			return c
		}
	}
	return NoNode
}

// FirstChild returns the first direct child of id with the given kind.
func (f *File) FirstChild(id NodeID, kind Kind) NodeID {
	n := f.Node(id)
	if n == nil {
		return NoNode
	}
	for _, c := range n.Children {
		if f.Nodes[c].Kind == kind {
			return c
		}
	}
	return NoNode
}

// Ancestor returns the nearest proper ancestor of id whose kind is one of kinds.
func (f *File) Ancestor(id NodeID, kinds ...Kind) NodeID {
	for cur := f.Parent(id); cur != NoNode; cur = f.Parent(cur) {
		k := f.Nodes[cur].Kind
		for _, want := range kinds {
			if k == want {
				return cur
			}
		}
	}
	return NoNode
}

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the children of the current node.
func (f *File) Walk(id NodeID, fn func(NodeID) bool) {
	if f.Node(id) == nil {
		return
	}
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		children := f.Nodes[cur].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// Collect returns every node of the given kinds under id, in pre-order.
func (f *File) Collect(id NodeID, kinds ...Kind) []NodeID {
	var out []NodeID
	f.Walk(id, func(n NodeID) bool {
		k := f.Nodes[n].Kind
		for _, want := range kinds {
			if k == want {
				out = append(out, n)
				break
			}
		}
		return true
	})
	return out
}
