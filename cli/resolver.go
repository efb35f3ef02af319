package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/gomeson/log"
	"github.com/ardnew/gomeson/machine"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag defaults from
// one section of a machine file.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx, "gomeson"), "/path/to/config")
//
// Keys are flag names; '-' and '_' are interchangeable. Values use machine
// file syntax, so strings are quoted and lists are arrays:
//
//	[gomeson]
//	log_level = 'debug'
//	log_pretty = false
//	timeout = '30s'
//	define = ['werror=true', 'c_std=c11']
//
// Command-line flags override config file values. A file that fails to
// parse, or has no such section, contributes nothing.
func resolve(ctx context.Context, section string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		f, err := machine.Parse(ctx, r, machine.WithName("config"))
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration file",
				slog.Any("error", err))

			return config{}, nil
		}

		sec, ok := f.Section(section)
		if !ok {
			return config{}, nil
		}

		cfg := make(config, sec.Len())

		for _, key := range sec.Keys() {
			v, _ := sec.Get(key)
			cfg[key] = flagValue(v)
		}

		return cfg, nil
	}
}

// flagValue converts a machine value to the form kong decodes: integers as
// strings, arrays as []any.
func flagValue(v machine.Value) any {
	switch v.Kind {
	case machine.KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case machine.KindArray:
		out := make([]any, len(v.Array))
		for i, item := range v.Array {
			out[i] = flagValue(item)
		}

		return out
	default:
		return v.Native()
	}
}

// config implements [kong.Resolver] for one machine-file section.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	for _, name := range []string{
		flag.Name,
		strings.ReplaceAll(flag.Name, "-", "_"),
	} {
		if value, ok := r[name]; ok {
			return value, nil
		}
	}

	return nil, nil
}
