package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"dioxide/internal/diag"
	"dioxide/internal/fix"
)

// SummaryOpts configures Summary and FixSummary.
type SummaryOpts struct {
	PathMode PathMode
	BaseDir  string
}

type summaryStyles struct {
	title, ok, warn, bad, faint lipgloss.Style
}

func newSummaryStyles(w io.Writer) summaryStyles {
	r := lipgloss.NewRenderer(w)
	return summaryStyles{
		title: r.NewStyle().Bold(true),
		ok:    r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("3")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		faint: r.NewStyle().Faint(true),
	}
}

// Summary prints one line with the count of diagnostics per severity.
func Summary(w io.Writer, diags []diag.Diagnostic) error {
	var errs, warns, infos int
	for i := range diags {
		switch diags[i].Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		default:
			infos++
		}
	}
	st := newSummaryStyles(w)
	if errs+warns+infos == 0 {
		_, err := fmt.Fprintln(w, st.ok.Render("no issues found"))
		return err
	}
	parts := []string{
		st.bad.Render(plural(errs, "error")),
		st.warn.Render(plural(warns, "warning")),
		st.faint.Render(plural(infos, "info")),
	}
	_, err := fmt.Fprintln(w, st.title.Render("found")+" "+strings.Join(parts, ", "))
	return err
}

// FixSummary prints the outcome of a fix run: applied fixes per file,
// write failures and skipped fixes with their reasons.
func FixSummary(w io.Writer, res *fix.Result, opts SummaryOpts) error {
	if res == nil {
		return nil
	}
	st := newSummaryStyles(w)
	var b strings.Builder

	changed := 0
	for _, f := range res.Files {
		if len(f.Applied) > 0 {
			changed++
		}
	}
	b.WriteString(st.title.Render(fmt.Sprintf("applied %s in %s", plural(res.Applied, "fix"), plural(changed, "file"))))
	b.WriteByte('\n')

	for _, f := range res.Files {
		if len(f.Applied) == 0 && f.Err == nil {
			continue
		}
		path := formatPath(f.Path, opts.PathMode, opts.BaseDir)
		switch {
		case f.Err != nil:
			fmt.Fprintf(&b, "  %s %s: %v\n", st.bad.Render("failed"), path, f.Err)
		default:
			fmt.Fprintf(&b, "  %s %s %s\n", st.ok.Render("fixed"), path, st.faint.Render("("+plural(len(f.Applied), "fix")+")"))
		}
	}
	if len(res.Skipped) > 0 {
		b.WriteString(st.warn.Render("skipped " + plural(len(res.Skipped), "fix")))
		b.WriteByte('\n')
		for _, s := range res.Skipped {
			id := s.FixID
			if s.Code == diag.FixConflict {
				id += " " + s.Code.ID()
			}
			fmt.Fprintf(&b, "  %s %s: %s\n", st.faint.Render(id), s.Title, s.Reason)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	if strings.HasSuffix(word, "x") {
		return fmt.Sprintf("%d %ses", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
