package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// Module is the Go module enclosing the analysed tree.
type Module struct {
	Root      string // directory holding go.mod
	Path      string // module path from the module directive
	GoVersion string
}

// FindModule walks up from startDir to the nearest go.mod and parses it.
// ok is false when no go.mod exists up to the filesystem root.
func FindModule(startDir string) (mod *Module, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(candidate); err == nil {
			mod, err := LoadModule(candidate)
			if err != nil {
				return nil, false, err
			}
			return mod, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, false, nil
}

// LoadModule parses one go.mod file.
func LoadModule(path string) (*Module, error) {
	// #nosec G304 -- path is discovered by FindModule or given by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if f.Module == nil || f.Module.Mod.Path == "" {
		return nil, fmt.Errorf("%s: missing module directive", path)
	}
	mod := &Module{
		Root: filepath.Dir(path),
		Path: f.Module.Mod.Path,
	}
	if f.Go != nil {
		mod.GoVersion = f.Go.Version
	}
	return mod, nil
}

// ImportPath maps a directory to its import path: inside a module it is the
// module path joined with the directory relative to the module root;
// otherwise it is the directory relative to root.
func ImportPath(mod *Module, root, dir string) string {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}
	if mod != nil {
		if rel, err := filepath.Rel(mod.Root, absDir); err == nil && !escapes(rel) {
			if rel == "." {
				return mod.Path
			}
			return mod.Path + "/" + filepath.ToSlash(rel)
		}
	}
	if root != "" {
		absRoot, err := filepath.Abs(root)
		if err == nil {
			if rel, err := filepath.Rel(absRoot, absDir); err == nil && !escapes(rel) {
				if rel == "." {
					return filepath.Base(absRoot)
				}
				return filepath.ToSlash(rel)
			}
		}
	}
	return filepath.ToSlash(filepath.Clean(dir))
}

func escapes(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)
}
