package rules

import (
	"dioxide/internal/ast"
	"dioxide/internal/source"
)

// lineStart returns the offset of the first byte of the line holding off.
func lineStart(content []byte, off uint32) uint32 {
	for off > 0 && content[off-1] != '\n' {
		off--
	}
	return off
}

// lineEnd returns the offset of the newline ending the line holding off,
// or len(content) on the last line.
func lineEnd(content []byte, off uint32) uint32 {
	n := uint32(len(content))
	for off < n && content[off] != '\n' {
		off++
	}
	return off
}

func blank(b []byte) bool {
	for _, c := range b {
		if c != ' ' && c != '\t' {
			return false
		}
	}
	return true
}

// wholeLines widens sp to the full lines it occupies, newline included, when
// nothing but whitespace shares those lines. Otherwise sp is returned as is.
func wholeLines(content []byte, sp source.Span) (source.Span, bool) {
	start := lineStart(content, sp.Start)
	end := lineEnd(content, sp.End)
	if !blank(content[start:sp.Start]) || !blank(content[sp.End:end]) {
		return sp, false
	}
	if end < uint32(len(content)) {
		end++
	}
	return source.Span{File: sp.File, Start: start, End: end}, true
}

// eatBlankAfter extends a whole-line span over one following blank line
// when the line before the span is blank too, so removing a declaration
// does not leave two blank lines behind.
func eatBlankAfter(content []byte, sp source.Span) source.Span {
	if sp.Start == 0 || sp.End >= uint32(len(content)) {
		return sp
	}
	prevStart := lineStart(content, sp.Start-1)
	if !blank(content[prevStart : sp.Start-1]) {
		return sp
	}
	next := lineEnd(content, sp.End)
	if !blank(content[sp.End:next]) {
		return sp
	}
	if next < uint32(len(content)) {
		next++
	}
	sp.End = next
	return sp
}

// removal returns the span to delete for a declaration node: whole lines
// when the node stands alone on them, the node itself otherwise.
func removal(content []byte, sp source.Span) source.Span {
	if wide, ok := wholeLines(content, sp); ok {
		return eatBlankAfter(content, wide)
	}
	return sp
}

// docStart returns the start of the comment block directly above decl,
// or the start of decl when there is none. Only comments that are top-level
// siblings ending on the line just above count.
func docStart(tree *ast.File, content []byte, decl ast.NodeID) uint32 {
	start := tree.Span(decl).Start
	parent := tree.Node(tree.Parent(decl))
	if parent == nil {
		return start
	}
	idx := -1
	for i, c := range parent.Children {
		if c == decl {
			idx = i
			break
		}
	}
	for i := idx - 1; i >= 0; i-- {
		c := parent.Children[i]
		if tree.Kind(c) != ast.KindComment {
			break
		}
		sp := tree.Span(c)
		if !adjacentLines(content, sp.End, start) {
			break
		}
		start = sp.Start
	}
	return start
}

// docComments returns the texts of the comments counted by docStart.
func docComments(tree *ast.File, content []byte, decl ast.NodeID) []string {
	from := docStart(tree, content, decl)
	parent := tree.Node(tree.Parent(decl))
	if parent == nil {
		return nil
	}
	var out []string
	for _, c := range parent.Children {
		if tree.Kind(c) != ast.KindComment {
			continue
		}
		sp := tree.Span(c)
		if sp.Start >= from && sp.End <= tree.Span(decl).Start {
			out = append(out, tree.Text(content, c))
		}
	}
	return out
}

// adjacentLines reports whether only whitespace and exactly one newline
// separate end from start.
func adjacentLines(content []byte, end, start uint32) bool {
	if end > start {
		return false
	}
	newlines := 0
	for _, c := range content[end:start] {
		switch c {
		case '\n':
			newlines++
		case ' ', '\t':
		default:
			return false
		}
	}
	return newlines == 1
}

// multiline returns the spans of raw strings and comments that cross a
// line boundary; text inside them is not Go layout.
func multiline(tree *ast.File, content []byte) []source.Span {
	var out []source.Span
	for _, id := range tree.Collect(tree.Root, ast.KindRawString, ast.KindComment) {
		sp := tree.Span(id)
		for _, c := range content[sp.Start:sp.End] {
			if c == '\n' {
				out = append(out, sp)
				break
			}
		}
	}
	return out
}

// inside reports whether off lies strictly within one of spans.
func inside(spans []source.Span, off uint32) bool {
	for _, sp := range spans {
		if sp.Start < off && off < sp.End {
			return true
		}
	}
	return false
}
