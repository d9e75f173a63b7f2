package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"dioxide/internal/driver"
	"dioxide/internal/project/dag"
	"dioxide/internal/rules"
)

var graphCmd = &cobra.Command{
	Use:   "graph [paths...]",
	Short: "Print the package dependency graph",
	RunE:  runGraph,
}

func init() {
	graphCmd.Flags().String("format", "text", "output format (text|dot)")
}

// runGraph builds the package graph without running any rule.
func runGraph(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "text" && format != "dot" {
		return fmt.Errorf("unknown format %q (must be text or dot)", format)
	}
	gs, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	cfg, _, err := loadConfig(gs)
	if err != nil {
		return err
	}

	res, err := driver.Analyze(cmd.Context(), args, driver.Options{
		Config:   cfg,
		Jobs:     gs.jobs,
		Registry: rules.NewRegistry(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "dot" {
		fmt.Fprint(out, dag.ExportDOT(res.Graph, res.Index))
		return nil
	}
	printGraph(out, res.Graph, res.Index)
	return nil
}

// printGraph lists packages in dependency batches, then every cycle.
func printGraph(out io.Writer, g dag.Graph, idx dag.Index) {
	topo := dag.ToposortKahn(g)
	for i, batch := range topo.Batches {
		fmt.Fprintf(out, "batch %d:\n", i)
		for _, id := range batch {
			printNode(out, g, idx, id)
		}
	}
	cycles := dag.Cycles(g)
	if len(cycles) == 0 {
		return
	}
	fmt.Fprintln(out, "cycles:")
	for _, scc := range cycles {
		walk := dag.CycleOf(g, scc)
		names := make([]string, len(walk))
		for i, id := range walk {
			names[i] = idx.Name(id)
		}
		fmt.Fprintf(out, "  %s\n", strings.Join(names, " -> "))
	}
}

func printNode(out io.Writer, g dag.Graph, idx dag.Index, id dag.PackageID) {
	deps := make([]string, 0, len(g.Edges[id]))
	for _, to := range g.Edges[id] {
		deps = append(deps, idx.Name(to))
	}
	if len(deps) == 0 {
		fmt.Fprintf(out, "  %s\n", idx.Name(id))
		return
	}
	fmt.Fprintf(out, "  %s -> %s\n", idx.Name(id), strings.Join(deps, ", "))
}
