package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dioxide/internal/cache"
	"dioxide/internal/diag"
	"dioxide/internal/diagfmt"
	"dioxide/internal/driver"
	"dioxide/internal/fix"
	"dioxide/internal/rules"
	"dioxide/internal/version"
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Analyze Go files and optionally fix them",
	Long: `Analyze the Go files under the given paths (default: the current directory).
With --fix, safe fixes are written back; --unsafe-fixes also applies fixes that
rely on heuristics. --diff prints the changes instead of (or, with --fix, in
addition to) writing them.`,
	RunE: runLint,
}

func init() {
	lintCmd.Flags().Bool("fix", false, "write fixes back to the files")
	lintCmd.Flags().Bool("unsafe-fixes", false, "also apply fixes that rely on heuristics")
	lintCmd.Flags().Bool("diff", false, "print the fixes as a unified diff")
	lintCmd.Flags().String("format", "pretty", "output format (pretty|json|sarif)")
	lintCmd.Flags().Bool("cache", false, "reuse parse results from the on-disk cache")
	lintCmd.Flags().Bool("clear-cache", false, "drop the on-disk parse cache before the run (implies --cache)")
	lintCmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	lintCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	lintCmd.Flags().Bool("preview", false, "show the lines each suggested fix changes")
	lintCmd.Flags().String("path-mode", "auto", "how to print paths (auto|relative|absolute|basename)")
	lintCmd.Flags().StringSlice("enable", nil, "enable rules by name")
	lintCmd.Flags().StringSlice("disable", nil, "disable rules by name")
}

type lintFlags struct {
	fix, unsafe, diff, useCache bool
	clearCache                  bool
	withNotes, suggest, preview bool
	format                      string
	pathMode                    diagfmt.PathMode
	enable, disable             []string
}

func readLintFlags(cmd *cobra.Command) (lintFlags, error) {
	var (
		lf  lintFlags
		err error
	)
	flags := cmd.Flags()
	bools := []struct {
		name string
		dst  *bool
	}{
		{"fix", &lf.fix},
		{"unsafe-fixes", &lf.unsafe},
		{"diff", &lf.diff},
		{"cache", &lf.useCache},
		{"clear-cache", &lf.clearCache},
		{"with-notes", &lf.withNotes},
		{"suggest", &lf.suggest},
		{"preview", &lf.preview},
	}
	for _, b := range bools {
		if *b.dst, err = flags.GetBool(b.name); err != nil {
			return lf, fmt.Errorf("failed to get %s flag: %w", b.name, err)
		}
	}
	if lf.format, err = flags.GetString("format"); err != nil {
		return lf, fmt.Errorf("failed to get format flag: %w", err)
	}
	lf.format = strings.ToLower(lf.format)
	switch lf.format {
	case "pretty", "json", "sarif":
	default:
		return lf, fmt.Errorf("unknown format %q (must be pretty, json or sarif)", lf.format)
	}
	mode, err := flags.GetString("path-mode")
	if err != nil {
		return lf, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if lf.pathMode, ok = diagfmt.ParsePathMode(mode); !ok {
		return lf, fmt.Errorf("unknown path mode %q", mode)
	}
	if lf.enable, err = flags.GetStringSlice("enable"); err != nil {
		return lf, fmt.Errorf("failed to get enable flag: %w", err)
	}
	if lf.disable, err = flags.GetStringSlice("disable"); err != nil {
		return lf, fmt.Errorf("failed to get disable flag: %w", err)
	}
	return lf, nil
}

// runLint executes the lint command: it loads the configuration, runs the
// driver in check or fix mode, prints the report in the chosen format and
// turns remaining errors or failed writes into exit status 1.
func runLint(cmd *cobra.Command, args []string) error {
	gs, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	lf, err := readLintFlags(cmd)
	if err != nil {
		return err
	}
	cfg, _, err := loadConfig(gs)
	if err != nil {
		return err
	}
	if err = toggleRules(cfg, lf.enable, lf.disable); err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	opts := driver.Options{
		Config:         cfg,
		Jobs:           gs.jobs,
		MaxDiagnostics: gs.maxDiagnostics,
		Timings:        gs.timings,
		Registry:       rules.Default(),
		UnsafeFixes:    lf.unsafe,
		DryRun:         !lf.fix,
	}
	if lf.useCache || lf.clearCache {
		c, cacheErr := cache.Open("dioxide")
		if cacheErr == nil && lf.clearCache {
			cacheErr = c.DropAll()
		}
		if cacheErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "dioxide: cache disabled: %v\n", cacheErr)
		} else {
			opts.Cache = c
		}
	}

	ctx := cmd.Context()
	var (
		res  *driver.Result
		plan *fix.Result
	)
	if lf.fix || lf.diff {
		res, plan, err = driver.AnalyzeAndFix(ctx, args, opts)
	} else {
		res, err = driver.Analyze(ctx, args, opts)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if lf.diff && plan != nil {
		text, diffErr := fix.Diffs(plan)
		if diffErr != nil {
			return diffErr
		}
		fmt.Fprint(out, text)
	}
	if !lf.fix {
		// --diff alone reports what would change, not what was written
		plan = nil
	}
	if err := report(out, res, plan, gs, lf, wd, args); err != nil {
		return err
	}
	if gs.timings {
		printTimings(cmd.ErrOrStderr(), res.Timings)
	}

	if res.HasErrors() || (plan != nil && len(plan.Failed()) > 0) {
		return &exitError{code: exitIssues}
	}
	return nil
}

func report(out io.Writer, res *driver.Result, plan *fix.Result, gs globalSettings, lf lintFlags, wd string, args []string) error {
	switch {
	case lf.format == "json":
		return diagfmt.JSON(out, res.Diagnostics, res.FileSet, plan, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         lf.pathMode,
			BaseDir:          wd,
			IncludeNotes:     lf.withNotes,
			IncludeFixes:     lf.suggest,
			IncludePreviews:  lf.preview,
		})
	case lf.format == "sarif":
		docs := make(map[string]string)
		for _, r := range rules.Default().Rules() {
			docs[r.Name()] = r.Doc()
		}
		return diagfmt.Sarif(out, res.Diagnostics, res.FileSet, diagfmt.SarifRunMeta{
			ToolName:       "dioxide",
			ToolVersion:    version.Version,
			InvocationArgs: append([]string{"lint"}, args...),
			BaseDir:        wd,
			RuleDocs:       docs,
		})
	case gs.quiet:
		if text := diag.FormatShort(res.Diagnostics, res.FileSet, false); text != "" {
			_, err := fmt.Fprintln(out, text)
			return err
		}
		return nil
	}

	err := diagfmt.Pretty(out, res.Diagnostics, res.FileSet, diagfmt.PrettyOpts{
		Color:       gs.color,
		PathMode:    lf.pathMode,
		BaseDir:     wd,
		ShowNotes:   lf.withNotes,
		ShowFixes:   lf.suggest,
		ShowPreview: lf.preview,
	})
	if err != nil {
		return err
	}
	if len(res.Diagnostics) > 0 {
		fmt.Fprintln(out)
	}
	if plan != nil {
		if err := diagfmt.FixSummary(out, plan, diagfmt.SummaryOpts{PathMode: lf.pathMode, BaseDir: wd}); err != nil {
			return err
		}
	}
	if res.Dropped > 0 {
		fmt.Fprintf(out, "%d more diagnostics not shown (--max-diagnostics)\n", res.Dropped)
	}
	return diagfmt.Summary(out, res.Diagnostics)
}
