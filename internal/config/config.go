// Package config loads dioxide.toml. Every threshold a rule uses lives here;
// rules read it through RuleOptions and hold no defaults of their own.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalid wraps every configuration problem: bad TOML, unknown keys and
// values that fail validation.
var ErrInvalid = errors.New("invalid configuration")

// FileNames are the default locations, relative to the working directory,
// in search order.
var FileNames = []string{
	"dioxide.toml",
	".dioxide.toml",
	filepath.Join(".config", "dioxide.toml"),
}

type Config struct {
	General      General      `toml:"general"`
	Rules        Rules        `toml:"rules"`
	Architecture Architecture `toml:"architecture"`
}

type General struct {
	// IgnorePatterns are doublestar globs matched against slash paths
	// relative to the lint root.
	IgnorePatterns []string `toml:"ignore_patterns"`
	ExcludeDirs    []string `toml:"exclude_dirs"`
	Jobs           int      `toml:"jobs"`            // 0 = GOMAXPROCS
	MaxDiagnostics int      `toml:"max_diagnostics"` // 0 = unlimited
}

type Toggle struct {
	Enabled bool `toml:"enabled"`
}

type UnusedVariable struct {
	Enabled             bool `toml:"enabled"`
	IncludePackageLevel bool `toml:"include_package_level"`
}

type DeadCode struct {
	Enabled      bool `toml:"enabled"`
	IncludeTests bool `toml:"include_tests"`
}

type LineLength struct {
	Enabled       bool `toml:"enabled"`
	MaxLineLength int  `toml:"max_line_length"`
	TabWidth      int  `toml:"tab_width"`
}

type Naming struct {
	Enabled     bool `toml:"enabled"`
	CheckParams bool `toml:"check_params"`
}

type Formatting struct {
	Enabled            bool `toml:"enabled"`
	ControlSpacing     bool `toml:"control_spacing"`
	SpaceIndent        bool `toml:"space_indent"`
	TrailingWhitespace bool `toml:"trailing_whitespace"`
	TabWidth           int  `toml:"tab_width"`
}

// Rules has one table per built-in rule, keyed by rule name.
type Rules struct {
	UnusedVariable UnusedVariable `toml:"unused-variable"`
	UnusedImport   Toggle         `toml:"unused-import"`
	DeadCode       DeadCode       `toml:"dead-code"`
	ImportCycle    Toggle         `toml:"import-cycle"`
	Boundary       Toggle         `toml:"boundary"`
	LineLength     LineLength     `toml:"line-length"`
	Naming         Naming         `toml:"naming"`
	Formatting     Formatting     `toml:"formatting"`
}

// Layer is one architectural layer: the packages it owns (doublestar globs
// over import paths) and the layers it may import.
type Layer struct {
	Name      string   `toml:"name"`
	Packages  []string `toml:"packages"`
	MayImport []string `toml:"may_import"`
}

type Architecture struct {
	// EnforceInternal applies Go's internal/ visibility rule.
	EnforceInternal bool    `toml:"enforce_internal"`
	Layers          []Layer `toml:"layers"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		General: General{
			IgnorePatterns: []string{"**/*.pb.go", "**/*_gen.go"},
			ExcludeDirs:    []string{"vendor", "node_modules", "build", "dist"},
		},
		Rules: Rules{
			UnusedVariable: UnusedVariable{Enabled: true, IncludePackageLevel: true},
			UnusedImport:   Toggle{Enabled: true},
			DeadCode:       DeadCode{Enabled: true},
			ImportCycle:    Toggle{Enabled: true},
			Boundary:       Toggle{Enabled: true},
			LineLength:     LineLength{Enabled: true, MaxLineLength: 120, TabWidth: 4},
			Naming:         Naming{Enabled: true, CheckParams: true},
			Formatting: Formatting{
				Enabled:            true,
				ControlSpacing:     true,
				SpaceIndent:        true,
				TrailingWhitespace: true,
				TabWidth:           4,
			},
		},
		Architecture: Architecture{EnforceInternal: true},
	}
}

// Load decodes path over the defaults and validates the result. Keys the
// defaults do not know are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("%w: %s: %s", ErrInvalid, path, perr.Message)
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s: unknown keys: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find returns the config file to use. An explicit path must exist; otherwise
// the FileNames are tried under dir and ok is false when none exists.
func Find(explicit, dir string) (path string, ok bool, err error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", false, fmt.Errorf("config %s: %w", explicit, err)
		}
		return explicit, true, nil
	}
	for _, name := range FileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

// Resolve finds and loads the config; without a file it returns the defaults
// and an empty path.
func Resolve(explicit, dir string) (*Config, string, error) {
	path, ok, err := Find(explicit, dir)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Validate checks thresholds and the layer policy.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.General.Jobs < 0 {
		add("general.jobs must not be negative")
	}
	if c.General.MaxDiagnostics < 0 {
		add("general.max_diagnostics must not be negative")
	}
	for _, p := range c.General.IgnorePatterns {
		if !doublestar.ValidatePattern(p) {
			add("general.ignore_patterns: bad pattern %q", p)
		}
	}
	if c.Rules.LineLength.MaxLineLength <= 0 {
		add("rules.line-length.max_line_length must be positive")
	}
	if c.Rules.LineLength.TabWidth <= 0 {
		add("rules.line-length.tab_width must be positive")
	}
	if c.Rules.Formatting.TabWidth <= 0 {
		add("rules.formatting.tab_width must be positive")
	}

	declared := make(map[string]bool, len(c.Architecture.Layers))
	for i, l := range c.Architecture.Layers {
		switch {
		case strings.TrimSpace(l.Name) == "":
			add("architecture.layers[%d]: missing name", i)
		case declared[l.Name]:
			add("architecture.layers[%d]: duplicate layer %q", i, l.Name)
		}
		declared[l.Name] = true
		for _, p := range l.Packages {
			if !doublestar.ValidatePattern(p) {
				add("architecture.layers[%d]: bad package pattern %q", i, p)
			}
		}
	}
	for _, l := range c.Architecture.Layers {
		for _, dep := range l.MayImport {
			if !declared[dep] {
				add("architecture layer %q may_import undeclared layer %q", l.Name, dep)
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
