package config

// RuleNames lists the built-in rules in registration order.
var RuleNames = []string{
	"unused-variable",
	"unused-import",
	"dead-code",
	"import-cycle",
	"boundary",
	"line-length",
	"naming",
	"formatting",
}

// RuleOptions is the flattened view one rule gets of the configuration.
// Fields a rule does not use stay zero.
type RuleOptions struct {
	Enabled bool

	MaxLineLength int
	TabWidth      int

	IncludePackageLevel bool
	IncludeTests        bool
	CheckParams         bool

	ControlSpacing     bool
	SpaceIndent        bool
	TrailingWhitespace bool

	EnforceInternal bool
	Layers          []Layer
}

// Options returns the options of rule name; ok is false for unknown rules.
func (c *Config) Options(name string) (opts RuleOptions, ok bool) {
	r := &c.Rules
	switch name {
	case "unused-variable":
		opts = RuleOptions{Enabled: r.UnusedVariable.Enabled, IncludePackageLevel: r.UnusedVariable.IncludePackageLevel}
	case "unused-import":
		opts = RuleOptions{Enabled: r.UnusedImport.Enabled}
	case "dead-code":
		opts = RuleOptions{Enabled: r.DeadCode.Enabled, IncludeTests: r.DeadCode.IncludeTests}
	case "import-cycle":
		opts = RuleOptions{Enabled: r.ImportCycle.Enabled}
	case "boundary":
		opts = RuleOptions{
			Enabled:         r.Boundary.Enabled,
			EnforceInternal: c.Architecture.EnforceInternal,
			Layers:          c.Architecture.Layers,
		}
	case "line-length":
		opts = RuleOptions{Enabled: r.LineLength.Enabled, MaxLineLength: r.LineLength.MaxLineLength, TabWidth: r.LineLength.TabWidth}
	case "naming":
		opts = RuleOptions{Enabled: r.Naming.Enabled, CheckParams: r.Naming.CheckParams}
	case "formatting":
		opts = RuleOptions{
			Enabled:            r.Formatting.Enabled,
			ControlSpacing:     r.Formatting.ControlSpacing,
			SpaceIndent:        r.Formatting.SpaceIndent,
			TrailingWhitespace: r.Formatting.TrailingWhitespace,
			TabWidth:           r.Formatting.TabWidth,
		}
	default:
		return RuleOptions{}, false
	}
	return opts, true
}

// Enabled reports whether rule name is switched on.
func (c *Config) Enabled(name string) bool {
	opts, ok := c.Options(name)
	return ok && opts.Enabled
}

// SetEnabled switches a rule on or off; unknown names return false.
func (c *Config) SetEnabled(name string, on bool) bool {
	r := &c.Rules
	switch name {
	case "unused-variable":
		r.UnusedVariable.Enabled = on
	case "unused-import":
		r.UnusedImport.Enabled = on
	case "dead-code":
		r.DeadCode.Enabled = on
	case "import-cycle":
		r.ImportCycle.Enabled = on
	case "boundary":
		r.Boundary.Enabled = on
	case "line-length":
		r.LineLength.Enabled = on
	case "naming":
		r.Naming.Enabled = on
	case "formatting":
		r.Formatting.Enabled = on
	default:
		return false
	}
	return true
}
