package fix

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Diff renders a unified diff between the original and patched content.
func Diff(path string, before, after []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	})
}

// Diffs renders the diff of every changed file of res, in path order.
func Diffs(res *Result) (string, error) {
	var out string
	for _, f := range res.Files {
		if !f.Changed() {
			continue
		}
		d, err := Diff(f.Path, f.File.Content, f.Content)
		if err != nil {
			return out, err
		}
		out += d
	}
	return out, nil
}
