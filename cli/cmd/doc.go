// Package cmd implements the gomeson subcommands: setup, introspect, ast,
// tokens, machine, repl, init, and version.
package cmd

import (
	"strings"

	"github.com/alecthomas/kong"
)

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// to the configuration file.
	ConfigIdentifier = "config"

	// SectionIdentifier is the kong variable identifier containing the name
	// of the configuration file section holding flag defaults.
	SectionIdentifier = "section"
)

// buildtypes are the accepted values of --buildtype.
var buildtypes = []string{
	"plain", "debug", "debugoptimized", "release", "minsize", "custom",
}

// Vars returns the kong variables referenced by command flags.
func Vars() kong.Vars {
	return kong.Vars{
		"buildtypeEnum": strings.Join(buildtypes, ","),
	}
}
