package fix

import (
	"errors"
	"fmt"
	"sort"

	"dioxide/internal/diag"
	"dioxide/internal/source"
	"dioxide/internal/syntax"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// Options configures fix selection.
type Options struct {
	// MaxApplicability is the least certain applicability still applied.
	// The zero value applies only always-safe fixes.
	MaxApplicability diag.FixApplicability
	// Verify checks patched content; nil uses syntax.Check.
	Verify func(path string, content []byte) error
}

// Skipped captures a fix that was not applied, with a reason.
type Skipped struct {
	FixID  string
	Title  string
	Path   string
	Code   diag.Code // diag.FixConflict for overlapping edits
	Reason string
}

// FileOutcome is the fix result of one file.
type FileOutcome struct {
	Path string
	File *source.File
	// Content is the patched, still normalised content; nil when nothing applies.
	Content         []byte
	Applied         []string // fix IDs
	Edits           int
	SkippedConflict []Skipped
	// Unfixed counts fixes of this file that were not applied for any reason.
	Unfixed int
	Err     error
}

// Changed reports whether the file has content to write.
func (o *FileOutcome) Changed() bool {
	return o.Content != nil && len(o.Applied) > 0
}

// Result aggregates per-file outcomes (sorted by path) and every skipped fix.
type Result struct {
	Files   []*FileOutcome
	Applied int
	Skipped []Skipped
}

// Failed returns the outcomes whose write failed.
func (r *Result) Failed() []*FileOutcome {
	var out []*FileOutcome
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

type accepted struct {
	fix   diag.Fix
	code  diag.Code
	edits []diag.TextEdit // edits of this file only
}

type fileState struct {
	outcome  *FileOutcome
	accepted []accepted
}

// Plan selects and applies fixes in memory. Diagnostics are visited in the
// given order. A diagnostic's fixes are alternatives: they are tried in order
// and the first one that can apply wins, the rest are not considered.
//   - advisory fixes and fixes above opts.MaxApplicability are skipped;
//   - a fix whose group already has an accepted or rejected fix is dropped;
//   - a fix whose edits overlap an accepted edit is rejected as a conflict;
//   - a fix whose OldText guard does not match the file is rejected.
//
// Accepted edits are applied per file in descending start order. When the
// patched file no longer parses every fix of that file is discarded.
func Plan(fs *source.FileSet, diagnostics []diag.Diagnostic, opts Options) *Result {
	verify := opts.Verify
	if verify == nil {
		verify = syntax.Check
	}
	res := &Result{}
	files := make(map[source.FileID]*fileState)
	decided := make(map[string]bool) // conflict groups with an accepted or rejected fix

	state := func(id source.FileID) *fileState {
		st := files[id]
		if st == nil {
			f := fs.Get(id)
			st = &fileState{outcome: &FileOutcome{Path: fs.Path(id), File: f}}
			files[id] = st
		}
		return st
	}
	skip := func(fx diag.Fix, code diag.Code, path, reason string, ids ...source.FileID) {
		s := Skipped{FixID: fx.ID, Title: fx.Title, Path: path, Code: code, Reason: reason}
		res.Skipped = append(res.Skipped, s)
		for _, id := range ids {
			st := state(id)
			st.outcome.Unfixed++
			if code == diag.FixConflict {
				st.outcome.SkippedConflict = append(st.outcome.SkippedConflict, s)
			}
		}
	}

	for di, d := range diagnostics {
		for fi, fx := range d.Fixes {
			if fx.Advisory() {
				continue
			}
			if fx.ID == "" {
				fx.ID = fmt.Sprintf("%s-%d-%d-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start, di, fi)
			}
			group := fx.GroupKey()
			if decided[group] {
				continue
			}
			byFile := groupEditsByFile(fx.Edits)
			ids := sortedFileIDs(byFile)
			path := fs.Path(ids[0])
			decided[group] = true
			if fx.Applicability > opts.MaxApplicability {
				skip(fx, d.Code, path, fmt.Sprintf("applicability is %s", fx.Applicability), ids...)
				continue
			}
			if reason, code := checkEdits(fs, files, byFile); reason != "" {
				skip(fx, code, path, reason, ids...)
				continue
			}
			for _, id := range ids {
				st := state(id)
				st.accepted = append(st.accepted, accepted{fix: fx, code: d.Code, edits: byFile[id]})
			}
			break
		}
	}

	outcomes := make([]*FileOutcome, 0, len(files))
	for _, st := range files {
		out := st.outcome
		outcomes = append(outcomes, out)
		if len(st.accepted) == 0 || out.File == nil {
			continue
		}
		var edits []diag.TextEdit
		for _, a := range st.accepted {
			edits = append(edits, a.edits...)
		}
		patched := applyEdits(out.File.Content, edits)
		if err := verify(out.Path, patched); err != nil {
			for _, a := range st.accepted {
				skip(a.fix, a.code, out.Path, fmt.Sprintf("result does not parse: %v", err), out.File.ID)
			}
			continue
		}
		out.Content = patched
		out.Edits = len(edits)
		for _, a := range st.accepted {
			out.Applied = appendUnique(out.Applied, a.fix.ID)
		}
		res.Applied += len(out.Applied)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Path < outcomes[j].Path })
	res.Files = outcomes
	return res
}

func checkEdits(fs *source.FileSet, files map[source.FileID]*fileState, byFile map[source.FileID][]diag.TextEdit) (string, diag.Code) {
	for id, edits := range byFile {
		f := fs.Get(id)
		if f == nil {
			return "target file is unknown", diag.FixConflict
		}
		for i, e := range edits {
			if int(e.Span.End) > len(f.Content) || e.Span.Start > e.Span.End {
				return "edit span out of range", diag.FixConflict
			}
			if e.OldText != "" && f.Text(e.Span) != e.OldText {
				return "existing text does not match expected content", diag.FixConflict
			}
			for _, other := range edits[i+1:] {
				if e.Span.Overlaps(other.Span) {
					return "fix has overlapping edits", diag.FixConflict
				}
			}
		}
		if st := files[id]; st != nil {
			for _, a := range st.accepted {
				for _, prev := range a.edits {
					for _, e := range edits {
						if prev.Span.Overlaps(e.Span) {
							return fmt.Sprintf("conflicts with fix %q", a.fix.Title), diag.FixConflict
						}
					}
				}
			}
		}
	}
	return "", 0
}

// applyEdits patches a copy of content. Edits never overlap, so applying them
// from the end keeps every earlier offset valid.
func applyEdits(content []byte, edits []diag.TextEdit) []byte {
	sorted := append([]diag.TextEdit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start == sorted[j].Span.Start {
			return sorted[i].Span.End > sorted[j].Span.End
		}
		return sorted[i].Span.Start > sorted[j].Span.Start
	})
	working := append([]byte(nil), content...)
	for _, e := range sorted {
		suffix := append([]byte(nil), working[e.Span.End:]...)
		working = append(append(working[:e.Span.Start], e.NewText...), suffix...)
	}
	return working
}

func groupEditsByFile(edits []diag.TextEdit) map[source.FileID][]diag.TextEdit {
	buckets := make(map[source.FileID][]diag.TextEdit)
	for _, edit := range edits {
		buckets[edit.Span.File] = append(buckets[edit.Span.File], edit)
	}
	return buckets
}

func sortedFileIDs(m map[source.FileID][]diag.TextEdit) []source.FileID {
	ids := make([]source.FileID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func appendUnique(ids []string, id string) []string {
	for _, have := range ids {
		if have == id {
			return ids
		}
	}
	return append(ids, id)
}
