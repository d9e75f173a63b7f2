package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"dioxide/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the built-in rules and whether the configuration enables them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gs, err := readGlobals(cmd)
		if err != nil {
			return err
		}
		cfg, _, err := loadConfig(gs)
		if err != nil {
			return err
		}

		reg := rules.Default()
		rows := make([][]string, 0, len(reg.Rules()))
		for i, r := range reg.Rules() {
			state := "off"
			if cfg.Enabled(r.Name()) {
				state = "on"
			}
			rows = append(rows, []string{fmt.Sprint(i + 1), r.Name(), state, r.Doc()})
		}
		if gs.quiet {
			for _, row := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", row[1], row[2])
			}
			return nil
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("#", "RULE", "STATE", "DESCRIPTION").
			Rows(rows...)
		fmt.Fprintln(cmd.OutOrStdout(), t.String())
		return nil
	},
}
