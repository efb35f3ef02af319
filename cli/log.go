package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/gomeson/log"
)

// logLevel and logFormat reconfigure the process logger as soon as kong
// decodes them, so later parse errors already use the requested level and
// format.
type (
	logLevel  string
	logFormat string
)

func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(text))))

	return nil
}

func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(text))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"${logLevelEnum}"  help:"Minimum level of log records"`
	Format     logFormat `default:"text"    enum:"${logFormatEnum}" help:"Log record encoding"`
	TimeLayout string    `default:"RFC3339"                         help:"Timestamp layout, a Go time layout or name (none omits timestamps)"`
	Caller     bool      `default:"false"                           help:"Include the source position of each log call" negatable:""`
	Pretty     bool      `default:"true"                            help:"Style text logs for terminals and indent JSON logs" negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// start applies the parsed logger configuration. The returned func logs the
// end of the run.
func (f *logConfig) start(ctx context.Context) (stop func()) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)

	return func() { log.TraceContext(ctx, "logger stopped") }
}

// scan applies the logger flags in args before kong parses them, so parse
// errors are already reported the way the user asked. Unrecognized or
// malformed values are left for kong to reject.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			return
		}

		name, value, assigned := strings.Cut(args[i], "=")

		negated := strings.HasPrefix(name, "--no-log-")
		if negated {
			name = "--log-" + strings.TrimPrefix(name, "--no-log-")
		}

		switch name {
		case "--log-level", "--log-format":
			if negated {
				continue
			}

			if !assigned {
				if i+1 >= len(args) || strings.HasPrefix(args[i+1], "-") {
					continue
				}

				i++
				value = args[i]
			}

			if name == "--log-level" {
				_ = f.Level.UnmarshalText([]byte(value))
			} else {
				_ = f.Format.UnmarshalText([]byte(value))
			}

		case "--log-caller", "--log-pretty":
			enable := true

			if assigned {
				v, err := strconv.ParseBool(value)
				if err != nil {
					continue
				}

				enable = v
			}

			if negated {
				enable = !enable
			}

			if name == "--log-caller" {
				f.Caller = enable
				log.Config(log.WithCaller(enable))
			} else {
				f.Pretty = enable
				log.Config(log.WithPretty(enable))
			}
		}
	}
}
