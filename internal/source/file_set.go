package source

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"fortio.org/safecast"
)

// FileSet owns every source file of one run.
// It is filled sequentially during loading and read concurrently afterwards.
type FileSet struct {
	files []File
	index map[string]FileID // path -> id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores a file from normalized bytes, computes LineIdx and Hash, and returns a new FileID.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	normalized := NormalizePath(path)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fileSet.index[normalized] = id
	return id
}

// Load reads a whole file from disk, strips a BOM, normalizes CRLF, and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory file with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file for id, or nil when id is unknown.
func (fileSet *FileSet) Get(id FileID) *File {
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id]
}

// GetByPath returns the latest file added under path.
func (fileSet *FileSet) GetByPath(path string) (*File, bool) {
	if id, ok := fileSet.index[NormalizePath(path)]; ok {
		return &fileSet.files[id], true
	}
	return nil, false
}

// Len returns the number of files.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// Files returns every file in insertion order. Do not modify the result.
func (fileSet *FileSet) Files() []File {
	return fileSet.files
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return f.Position(span.Start), f.Position(span.End)
}

// Path returns the path of file id, or "" when unknown.
func (fileSet *FileSet) Path(id FileID) string {
	if f := fileSet.Get(id); f != nil {
		return f.Path
	}
	return ""
}

// Position converts a byte offset to a 1-based line and column.
func (f *File) Position(off uint32) LineCol {
	// number of newlines strictly before off
	line, _ := slices.BinarySearch(f.LineIdx, off)
	lineStart := uint32(0)
	if line > 0 {
		lineStart = f.LineIdx[line-1] + 1
	}
	lineNo, err := safecast.Conv[uint32](line + 1)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return LineCol{Line: lineNo, Col: off - lineStart + 1}
}

// LineCount returns the number of lines; a trailing newline does not open a new line.
func (f *File) LineCount() uint32 {
	n := len(f.LineIdx)
	if len(f.Content) > 0 && f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	count, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("line count overflow: %w", err))
	}
	return count
}

// LineSpan returns the span of line lineNum (1-based) without its newline.
func (f *File) LineSpan(lineNum uint32) (Span, bool) {
	if lineNum == 0 || lineNum > f.LineCount() {
		return Span{}, false
	}
	idx := int(lineNum) - 1
	var start uint32
	if idx > 0 {
		start = f.LineIdx[idx-1] + 1
	}
	end, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	if idx < len(f.LineIdx) {
		end = f.LineIdx[idx]
	}
	return Span{File: f.ID, Start: start, End: end}, true
}

// GetLine returns line lineNum (1-based) without its newline, or "".
func (f *File) GetLine(lineNum uint32) string {
	sp, ok := f.LineSpan(lineNum)
	if !ok {
		return ""
	}
	return string(f.Content[sp.Start:sp.End])
}

// Text returns the bytes covered by span.
func (f *File) Text(span Span) string {
	if int(span.End) > len(f.Content) || span.Start > span.End {
		return ""
	}
	return string(f.Content[span.Start:span.End])
}

// Denormalize restores the line endings and BOM recorded at load time,
// so rewritten content can be written back in the file's original shape.
func (f *File) Denormalize(content []byte) []byte {
	out := content
	if f.Flags&FileNormalizedCRLF != 0 {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte("\r\n"))
	}
	if f.Flags&FileHadBOM != 0 {
		out = append([]byte{0xEF, 0xBB, 0xBF}, out...)
	}
	return out
}

// NormalizePath gives paths one shape across platforms.
func NormalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// RelativePath renders path relative to base when possible.
func RelativePath(path, base string) string {
	if base == "" {
		return path
	}
	rel, err := filepath.Rel(base, filepath.FromSlash(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}
