package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dioxide/internal/config"
)

// globalSettings are the persistent flags every command reads.
type globalSettings struct {
	color          bool
	quiet          bool
	timings        bool
	maxDiagnostics int
	jobs           int
	configPath     string
}

func readGlobals(cmd *cobra.Command) (globalSettings, error) {
	flags := cmd.Root().PersistentFlags()
	var (
		s   globalSettings
		err error
	)
	colorMode, err := flags.GetString("color")
	if err != nil {
		return s, fmt.Errorf("failed to get color flag: %w", err)
	}
	if s.color, err = resolveColor(colorMode, os.Stdout); err != nil {
		return s, err
	}
	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return s, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return s, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if s.jobs, err = flags.GetInt("jobs"); err != nil {
		return s, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if s.configPath, err = flags.GetString("config"); err != nil {
		return s, fmt.Errorf("failed to get config flag: %w", err)
	}
	return s, nil
}

// resolveColor maps --color onto a decision; auto follows the terminal and NO_COLOR.
func resolveColor(mode string, out *os.File) (bool, error) {
	switch strings.ToLower(mode) {
	case "on", "always", "true":
		return true, nil
	case "off", "never", "false":
		return false, nil
	case "", "auto":
		return os.Getenv("NO_COLOR") == "" && isTerminal(out), nil
	}
	return false, fmt.Errorf("invalid color mode %q (must be auto, on or off)", mode)
}

// loadConfig finds and validates the configuration. Errors here are fatal
// before the driver runs.
func loadConfig(s globalSettings) (*config.Config, string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	cfg, path, err := config.Resolve(s.configPath, wd)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// toggleRules applies --enable/--disable on top of the configuration.
func toggleRules(cfg *config.Config, enable, disable []string) error {
	for _, name := range enable {
		if !cfg.SetEnabled(name, true) {
			return fmt.Errorf("%w: unknown rule %q", config.ErrInvalid, name)
		}
	}
	for _, name := range disable {
		if !cfg.SetEnabled(name, false) {
			return fmt.Errorf("%w: unknown rule %q", config.ErrInvalid, name)
		}
	}
	return nil
}
