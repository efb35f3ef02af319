//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/gomeson/log"
	"github.com/ardnew/gomeson/profile"
)

type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Enable profiling"         placeholder:"${enum}" short:"p"`
	Dir  string `default:"${pprofDir}"                          help:"Profile output directory"                                 type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(slices.Sorted(profile.Modes()), ","),
		"pprofDir":      filepath.Join(cacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling (pprof)"}
}

// start begins the profile selected by --pprof-mode, if any. The returned
// func writes the profile.
func (f pprofConfig) start(ctx context.Context) (stop func()) {
	if f.Mode == "" {
		return func() {}
	}

	logger := log.Default().Named("pprof")
	attrs := []slog.Attr{slog.String("mode", f.Mode), slog.String("dir", f.Dir)}

	if err := os.MkdirAll(f.Dir, dirMode); err != nil {
		logger.WarnContext(ctx, "profile directory unavailable",
			append(attrs, slog.Any("error", err))...)

		return func() {}
	}

	logger.DebugContext(ctx, "profiling", attrs...)

	profiler := profile.Profiler{Mode: f.Mode, Path: f.Dir, Quiet: true}.Start()

	return func() {
		profiler.Stop()
		logger.InfoContext(ctx, "profile written", attrs...)
	}
}
