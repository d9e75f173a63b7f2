// Package walk finds the Go files of a run.
package walk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// Options narrows what Collect returns.
type Options struct {
	// IgnorePatterns are doublestar globs matched against slash paths
	// relative to the walked root.
	IgnorePatterns []string
	// ExcludeDirs are directory names skipped wherever they appear.
	ExcludeDirs []string
	// NoGitignore disables the root .gitignore.
	NoGitignore bool
}

// always skipped, like the go tool does
var skippedDirs = []string{"vendor", "testdata"}

// Collect returns the .go files under root, sorted. A root naming a file
// is returned as is, whatever the options say.
func Collect(root string, opts Options) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{filepath.Clean(root)}, nil
	}

	var gi *ignore.GitIgnore
	if !opts.NoGitignore {
		gi, err = loadGitignore(filepath.Join(root, ".gitignore"))
		if err != nil {
			return nil, err
		}
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if path != root && skipDir(d.Name(), rel, opts, gi) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" || ignored(rel, opts.IgnorePatterns, gi) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// CollectAll runs Collect for every path and merges the results.
func CollectAll(paths []string, opts Options) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range paths {
		files, err := Collect(p, opts)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out, nil
}

func loadGitignore(path string) (*ignore.GitIgnore, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return gi, nil
}

func skipDir(name, rel string, opts Options, gi *ignore.GitIgnore) bool {
	// Skip hidden directories and the ones the go tool ignores
	if len(name) > 1 && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
		return true
	}
	if slices.Contains(skippedDirs, name) || slices.Contains(opts.ExcludeDirs, name) {
		return true
	}
	if gi != nil && (gi.MatchesPath(rel) || gi.MatchesPath(rel+"/")) {
		return true
	}
	for _, pattern := range opts.IgnorePatterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func ignored(rel string, patterns []string, gi *ignore.GitIgnore) bool {
	if gi != nil && gi.MatchesPath(rel) {
		return true
	}
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
