package cmd

import (
	"context"
	"fmt"

	"github.com/ardnew/gomeson/interp"
	"github.com/ardnew/gomeson/pkg"
)

// Version prints the program version and the build language version it
// implements.
type Version struct{}

// Run executes the version command.
func (Version) Run(ctx context.Context) error {
	_, err := fmt.Fprintf(outputFrom(ctx), "%s %s (meson %s)\n",
		pkg.Name, pkg.Version, interp.MesonVersion)

	return err
}
