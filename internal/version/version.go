// Package version holds build information of the dioxide CLI.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/fatih/color"
)

// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Info is the build information printed by `dioxide version`.
type Info struct {
	Version   string
	GitCommit string
	BuildDate string
	GoVersion string
}

// Current collects Info, falling back to the VCS stamp of the binary
// when GitCommit was not set with -ldflags.
func Current() Info {
	info := Info{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.time":
				if info.BuildDate == "" {
					info.BuildDate = s.Value
				}
			}
		}
	}
	return info
}

// Colored renders v as major.minor.patch with one color per component.
// Versions that do not look like semver are returned unchanged.
func Colored(v string, enabled bool) string {
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return v
	}
	for _, c := range []*color.Color{majorColor, minorColor, patchColor} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// String formats the info in a multi-line, human-readable form.
func (i Info) String(colored bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "dioxide %s\n", Colored(i.Version, colored))
	if i.GitCommit != "" {
		commit := i.GitCommit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		fmt.Fprintf(&b, "commit: %s\n", commit)
	}
	if i.BuildDate != "" {
		fmt.Fprintf(&b, "built:  %s\n", i.BuildDate)
	}
	if i.GoVersion != "" {
		fmt.Fprintf(&b, "go:     %s\n", i.GoVersion)
	}
	return b.String()
}
