// Package pkg identifies the gomeson module.
package pkg

import (
	_ "embed"
	"runtime/debug"
	"strings"

	"golang.org/x/mod/semver"
)

const (
	// Name is the command name. It also names the configuration directories
	// and the configuration file section.
	Name = "gomeson"

	Description = "Meson build description interpreter"
)

//go:embed VERSION
var version string

// Version is the release version without a "v" prefix. Binaries installed
// with "go install module@version" report that module version; others
// report the VERSION file.
var Version = moduleVersion(debug.ReadBuildInfo)

func moduleVersion(info func() (*debug.BuildInfo, bool)) string {
	if bi, ok := info(); ok && semver.IsValid(bi.Main.Version) &&
		semver.Prerelease(bi.Main.Version) == "" {
		return strings.TrimPrefix(bi.Main.Version, "v")
	}

	return strings.TrimSpace(version)
}
