package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about how a file was loaded.
	FileFlags uint8
)

const (
	// FileVirtual marks files added from memory (tests, stdin).
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM marks files whose UTF-8 BOM was stripped on load.
	FileHadBOM
	// FileNormalizedCRLF marks files whose CRLF line endings were rewritten to LF.
	FileNormalizedCRLF
)

// File captures metadata and content for a single source file.
// Content is immutable once the file is added to a FileSet.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of every '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}
