package main

import (
	"fmt"
	"io"

	"dioxide/internal/observ"
)

// printTimings writes the --timings table: one row per phase, a failed mark,
// the totals and the run counters.
func printTimings(out io.Writer, report observ.Report) {
	if out == nil || len(report.Phases) == 0 {
		return
	}
	fmt.Fprintln(out, "timings:")
	for _, p := range report.Phases {
		line := fmt.Sprintf("  %-10s %8.2f ms", p.Name, p.DurationMS)
		if p.Failed {
			line += "  FAILED"
		}
		if p.Note != "" {
			line += "  " + p.Note
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "  %-10s %8.2f ms (wall %.2f ms)\n", "total", report.TotalMS, report.WallMS)
	if slow, ok := report.Slowest(); ok && len(report.Phases) > 1 {
		fmt.Fprintf(out, "  slowest:   %s\n", slow.Name)
	}
	for _, c := range report.Counters {
		fmt.Fprintf(out, "  %-10s %8d\n", c.Name, c.Value)
	}
}
