// Package cache keeps parse results on disk keyed by file content, so an
// unchanged file is not parsed again on the next run.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"dioxide/internal/ast"
	"dioxide/internal/source"
	"dioxide/internal/syntax"
)

// Current schema version - increment when Payload format changes
const schemaVersion uint16 = 1

// Disk stores parse payloads under one directory.
// Thread-safe for concurrent access.
type Disk struct {
	mu  sync.RWMutex
	dir string
}

// Payload is the cached parse of one file. Spans are stored without their
// file id; Decode rebinds them to the file being loaded.
type Payload struct {
	Schema  uint16
	Grammar string
	Root    ast.NodeID
	Nodes   []Node
	Errors  []Error
}

// Node is ast.Node without the file id.
type Node struct {
	Kind     ast.Kind
	Field    ast.Field
	Flags    ast.NodeFlags
	Start    uint32
	End      uint32
	Parent   ast.NodeID
	Children []ast.NodeID
}

// Error is a cached syntax error.
type Error struct {
	Start uint32
	End   uint32
	Msg   string
}

// Open initializes a cache at $XDG_CACHE_HOME/app (or ~/.cache/app).
func Open(app string) (*Disk, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app))
}

// OpenDir initializes a cache rooted at dir.
func OpenDir(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Disk{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Disk) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// Key derives the cache key of a file from its content hash, the payload
// schema and the grammar version.
func Key(f *source.File) [32]byte {
	h := sha256.New()
	h.Write(f.Hash[:])
	var schema [2]byte
	binary.LittleEndian.PutUint16(schema[:], schemaVersion)
	h.Write(schema[:])
	h.Write([]byte(syntax.GrammarVersion))
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}

func (c *Disk) pathFor(key [32]byte) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первым двум символам, чтобы не держать тысячи файлов в одном
	return filepath.Join(c.dir, "parse", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload.
func (c *Disk) Put(key [32]byte, payload *Payload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a payload. A missing entry or one written with another schema
// or grammar is a miss, not an error.
func (c *Disk) Get(key [32]byte) (*Payload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	// #nosec G304 -- path is derived from the cache key
	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var out Payload
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", err)
	}
	if out.Schema != schemaVersion || out.Grammar != syntax.GrammarVersion {
		return nil, false, nil
	}
	return &out, true, nil
}

// DropAll invalidates the cache.
func (c *Disk) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// Encode converts a parse result into a payload.
func Encode(tree *ast.File, errs []*syntax.ParseError) *Payload {
	p := &Payload{Schema: schemaVersion, Grammar: syntax.GrammarVersion}
	if tree != nil {
		p.Root = tree.Root
		p.Nodes = make([]Node, len(tree.Nodes))
		for i, n := range tree.Nodes {
			p.Nodes[i] = Node{
				Kind: n.Kind, Field: n.Field, Flags: n.Flags,
				Start: n.Span.Start, End: n.Span.End,
				Parent: n.Parent, Children: n.Children,
			}
		}
	}
	for _, e := range errs {
		p.Errors = append(p.Errors, Error{Start: e.Span.Start, End: e.Span.End, Msg: e.Expected})
	}
	return p
}

// Decode rebuilds the parse result for file.
func (p *Payload) Decode(file *source.File) (*ast.File, []*syntax.ParseError) {
	var tree *ast.File
	if len(p.Nodes) > 0 {
		tree = &ast.File{Source: file.ID, Root: p.Root, Nodes: make([]ast.Node, len(p.Nodes))}
		for i, n := range p.Nodes {
			tree.Nodes[i] = ast.Node{
				Kind: n.Kind, Field: n.Field, Flags: n.Flags,
				Span:   source.Span{File: file.ID, Start: n.Start, End: n.End},
				Parent: n.Parent, Children: n.Children,
			}
		}
	}
	var errs []*syntax.ParseError
	for _, e := range p.Errors {
		sp := source.Span{File: file.ID, Start: e.Start, End: e.End}
		pos := file.Position(e.Start)
		errs = append(errs, &syntax.ParseError{
			File: file.ID, Path: file.Path, Line: pos.Line, Column: pos.Col, Span: sp, Expected: e.Msg,
		})
	}
	return tree, errs
}

// Parse returns the cached parse of file, parsing and storing it on a miss.
// Cache failures fall back to a fresh parse.
func (c *Disk) Parse(file *source.File) (tree *ast.File, errs []*syntax.ParseError, hit bool) {
	key := Key(file)
	if p, ok, err := c.Get(key); err == nil && ok {
		tree, errs = p.Decode(file)
		return tree, errs, true
	}
	tree, errs = syntax.Parse(file)
	_ = c.Put(key, Encode(tree, errs))
	return tree, errs, false
}
