package testkit

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"

	"dioxide/internal/source"
)

// AddArchive adds every file of a txtar archive to fs as a virtual file
// under base and returns the ids in archive order.
func AddArchive(t testing.TB, fs *source.FileSet, base, archive string) []source.FileID {
	t.Helper()
	ar := txtar.Parse([]byte(archive))
	if len(ar.Files) == 0 {
		t.Fatalf("archive has no files")
	}
	ids := make([]source.FileID, 0, len(ar.Files))
	for _, f := range ar.Files {
		ids = append(ids, fs.AddVirtual(filepath.ToSlash(filepath.Join(base, f.Name)), f.Data))
	}
	return ids
}

// WriteArchive materialises a txtar archive under a fresh temp directory and
// returns the directory.
func WriteArchive(t testing.TB, archive string) string {
	t.Helper()
	dir := t.TempDir()
	ar := txtar.Parse([]byte(archive))
	for _, f := range ar.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, f.Data, 0o600); err != nil {
			t.Fatalf("write %s: %v", f.Name, err)
		}
	}
	return dir
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	// #nosec G304 -- test helper
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
