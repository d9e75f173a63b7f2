package syntax

import (
	"fmt"
	"strings"
	"sync"

	"fortio.org/safecast"
	sitter "github.com/tree-sitter/go-tree-sitter"
	sittergo "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"dioxide/internal/ast"
	"dioxide/internal/diag"
	"dioxide/internal/source"
)

// GrammarVersion identifies the grammar the lowering was written against.
// Cached parse results carry it.
const GrammarVersion = "tree-sitter-go/v0.25.0"

// maxErrorsPerFile caps how many syntax errors one file reports.
const maxErrorsPerFile = 8

var (
	languageOnce sync.Once
	language     *sitter.Language
)

func goLanguage() *sitter.Language {
	languageOnce.Do(func() {
		language = sitter.NewLanguage(sittergo.Language())
	})
	return language
}

// ParseError is a syntax error in one file.
type ParseError struct {
	File     source.FileID
	Path     string
	Line     uint32
	Column   uint32
	Span     source.Span
	Expected string // "expected X" or "unexpected X in Y"
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Expected)
}

// Diagnostic converts the error into a SYN1001 diagnostic.
func (e *ParseError) Diagnostic() diag.Diagnostic {
	return diag.NewError(diag.SynParseError, e.Span, e.Expected)
}

// Parse tokenizes and parses file with tree-sitter and lowers the concrete
// tree into an ast.File. Any returned error means the file must not be
// analysed further. The tree-sitter parser and tree are released before
// Parse returns.
func Parse(file *source.File) (*ast.File, []*ParseError) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(goLanguage()); err != nil {
		return nil, []*ParseError{newParseError(file, source.Span{File: file.ID}, fmt.Sprintf("grammar unavailable: %v", err))}
	}
	tree := parser.Parse(file.Content, nil)
	if tree == nil {
		return nil, []*ParseError{newParseError(file, source.Span{File: file.ID}, "parser produced no tree")}
	}
	defer tree.Close()

	l := &lowerer{file: file, out: ast.NewFile(file.ID, len(file.Content)/6)}
	root := tree.RootNode()
	cursor := root.Walk()
	defer cursor.Close()
	l.out.Root = l.lower(cursor, ast.NoNode, false)

	if len(l.errs) == 0 && l.out.FirstChild(l.out.Root, ast.KindPackageClause) == ast.NoNode {
		l.errs = append(l.errs, newParseError(file, source.Span{File: file.ID}, "expected package clause"))
	}
	if len(l.errs) > 0 {
		return l.out, l.errs
	}
	return l.out, nil
}

type lowerer struct {
	file *source.File
	out  *ast.File
	errs []*ParseError
}

// lower converts the node under cursor and its subtree. inError is true
// below an ERROR node; nested errors there are not reported separately.
func (l *lowerer) lower(cursor *sitter.TreeCursor, parent ast.NodeID, inError bool) ast.NodeID {
	node := cursor.Node()
	kind := node.Kind()
	span := l.span(node)

	if !node.IsNamed() && !node.IsMissing() {
		if kind == ":=" {
			l.markDefine(parent)
		}
		return ast.NoNode
	}

	if !inError {
		switch {
		case node.IsMissing():
			l.addError(span, "expected "+describeToken(kind))
		case node.IsError():
			l.addError(span, l.unexpected(span, parent))
		}
	}

	n := ast.Node{
		Kind:   ast.KindOf(kind),
		Field:  ast.FieldOf(cursor.FieldName()),
		Span:   span,
		Parent: parent,
	}
	if node.IsMissing() {
		n.Kind = ast.KindMissing
	}
	id := l.out.Add(n)

	if cursor.GotoFirstChild() {
		childInError := inError || node.IsError()
		for {
			l.lower(cursor, id, childInError)
			if !cursor.GotoNextSibling() {
				break
			}
		}
		cursor.GotoParent()
	}
	return id
}

func (l *lowerer) markDefine(parent ast.NodeID) {
	n := l.out.Node(parent)
	if n == nil {
		return
	}
	if n.Kind == ast.KindRangeClause || n.Kind == ast.KindReceive {
		n.Flags |= ast.FlagDefine
	}
}

func (l *lowerer) span(node *sitter.Node) source.Span {
	start, err := safecast.Conv[uint32](node.StartByte())
	if err != nil {
		panic(fmt.Errorf("node start overflow: %w", err))
	}
	end, err := safecast.Conv[uint32](node.EndByte())
	if err != nil {
		panic(fmt.Errorf("node end overflow: %w", err))
	}
	return source.Span{File: l.file.ID, Start: start, End: end}
}

func (l *lowerer) addError(span source.Span, msg string) {
	if len(l.errs) >= maxErrorsPerFile {
		return
	}
	l.errs = append(l.errs, newParseError(l.file, span, msg))
}

func (l *lowerer) unexpected(span source.Span, parent ast.NodeID) string {
	text := strings.TrimSpace(l.file.Text(span))
	if i := strings.IndexAny(text, "\n\t "); i > 0 {
		text = text[:i]
	}
	if len(text) > 24 {
		text = text[:24] + "..."
	}
	msg := "unexpected " + describeText(text)
	for cur := parent; cur != ast.NoNode; cur = l.out.Parent(cur) {
		if what, ok := constructNames[l.out.Kind(cur)]; ok {
			return msg + " in " + what
		}
	}
	return msg
}

func newParseError(file *source.File, span source.Span, msg string) *ParseError {
	pos := file.Position(span.Start)
	return &ParseError{
		File:     file.ID,
		Path:     file.Path,
		Line:     pos.Line,
		Column:   pos.Col,
		Span:     span,
		Expected: msg,
	}
}

var constructNames = map[ast.Kind]string{
	ast.KindImportDecl:       "import declaration",
	ast.KindFuncDecl:         "function declaration",
	ast.KindMethodDecl:       "method declaration",
	ast.KindFuncLiteral:      "function literal",
	ast.KindVarDecl:          "variable declaration",
	ast.KindConstDecl:        "constant declaration",
	ast.KindTypeDecl:         "type declaration",
	ast.KindParameterList:    "parameter list",
	ast.KindStructType:       "struct type",
	ast.KindInterfaceType:    "interface type",
	ast.KindCompositeLiteral: "composite literal",
}

func describeToken(kind string) string {
	switch {
	case kind == "":
		return "token"
	case kind == "identifier" || strings.Contains(kind, "_"):
		return strings.ReplaceAll(kind, "_", " ")
	}
	return "'" + kind + "'"
}

func describeText(text string) string {
	if text == "" {
		return "end of input"
	}
	return "'" + text + "'"
}

// Check parses content as a standalone file and returns the first syntax
// error, or nil. The fix engine uses it to verify rewritten files.
func Check(path string, content []byte) error {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual(path, content))
	if _, errs := Parse(file); len(errs) > 0 {
		return errs[0]
	}
	return nil
}
