package version

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
)

// Version information for the callmodel CLI.
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

// Current returns Version, or "dev" when it was blanked at link time.
func Current() string {
	if v := strings.TrimSpace(Version); v != "" {
		return v
	}
	return "dev"
}

// Pretty renders the version with each numeric component colored. Versions
// that are not semantic versions are returned unchanged.
func Pretty(enable bool) string {
	v := Current()
	sv, err := semver.NewVersion(v)
	if err != nil {
		return v
	}
	paint := func(c *color.Color, n uint64) string {
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.Sprint(strconv.FormatUint(n, 10))
	}
	out := paint(majorColor, sv.Major()) + "." + paint(minorColor, sv.Minor()) + "." + paint(patchColor, sv.Patch())
	if pre := sv.Prerelease(); pre != "" {
		out += "-" + pre
	}
	if meta := sv.Metadata(); meta != "" {
		out += "+" + meta
	}
	return out
}
