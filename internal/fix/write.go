package fix

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"dioxide/internal/source"
	"dioxide/internal/trace"
)

// Write stores every changed file of res, one task per file. Each file is
// written to a temp file in its directory and renamed over the original, so
// a failed write leaves the original untouched. Line endings and BOM recorded
// at load time are restored. Failures are kept on the file's outcome;
// the returned error is ErrNoFixes when nothing changed, or ctx.Err().
func Write(ctx context.Context, res *Result, jobs int) error {
	var changed []*FileOutcome
	for _, f := range res.Files {
		if f.Changed() && f.File != nil && f.File.Flags&source.FileVirtual == 0 {
			changed = append(changed, f)
		}
	}
	if len(changed) == 0 {
		return ErrNoFixes
	}

	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for _, out := range changed {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out.Err = writeAtomic(out.File.Path, out.File.Denormalize(out.Content))
			if out.Err != nil {
				trace.Fail(gctx, trace.ScopeFile, "fix_write_failed", out.Err)
			}
			return nil
		})
	}
	return g.Wait()
}

func writeAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".dioxide-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpName)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
