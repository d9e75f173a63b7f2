package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dioxide/internal/version"
)

// Exit statuses of the CLI.
const (
	exitClean  = 0
	exitIssues = 1
	exitFatal  = 2
)

// exitError carries a status without a message: the report was already printed.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

var rootCmd = &cobra.Command{
	Use:   "dioxide",
	Short: "Static analysis and auto-fix for Go code",
	Long: `dioxide finds unused code, import cycles, layer violations and style issues
in Go source trees and fixes what it can safely fix.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		stopProfiling, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			stopProfiling()
			return err
		}
		traceCleanup = func() {
			cleanup()
			stopProfiling()
		}
		return nil
	},
}

// traceCleanup is set by PersistentPreRunE and run once by main,
// including on errors where cobra skips PersistentPostRun.
var traceCleanup = func() {}

func init() {
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "print one line per diagnostic and nothing else")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 0, "maximum number of diagnostics to show (0 = config, then unlimited)")
	flags.String("config", "", "path to dioxide.toml (default: search the working directory)")
	flags.Int("jobs", 0, "max parallel workers (0 = config, then GOMAXPROCS)")
	flags.String("trace", "", "trace output path (\"-\" for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage mode (stream|ring)")
	flags.String("trace-format", "auto", "trace encoding (auto|text|ndjson|msgpack)")
	flags.Int("trace-ring-size", 4096, "ring buffer size for --trace-mode=ring")
	flags.Duration("trace-heartbeat", 0, "emit heartbeat trace events at this interval (0 = off)")
	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")
}

// main wires the version, runs the root command with an interrupt-aware
// context and maps the outcome onto the exit status.
func main() {
	rootCmd.Version = version.Version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	traceCleanup()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if err == nil {
		return exitClean
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintf(os.Stderr, "dioxide: %v\n", err)
	return exitFatal
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
