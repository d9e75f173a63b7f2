package diagfmt

import (
	"path"
	"path/filepath"

	"dioxide/internal/source"
)

func formatPath(p string, mode PathMode, base string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(filepath.FromSlash(p)); err == nil {
			return filepath.ToSlash(abs)
		}
		return p
	case PathModeRelative:
		if base == "" {
			base = "."
		}
		if abs, err := filepath.Abs(base); err == nil {
			base = abs
		}
		return source.RelativePath(p, base)
	case PathModeBasename:
		return path.Base(p)
	default:
		return source.RelativePath(p, base)
	}
}
