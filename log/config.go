package log

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// DefaultTimeLayout is the timestamp layout used unless [WithTimeLayout]
// selects another.
const DefaultTimeLayout = time.RFC3339

// config is the immutable description of a Logger's handler. Options modify
// a copy, so Logger values can be shared across goroutines freely.
type config struct {
	output io.Writer
	layout string // "" omits timestamps
	level  Level
	format Format
	caller bool
	pretty bool
}

// Option modifies the configuration of a Logger under construction.
type Option func(*config)

func defaults(w io.Writer) config {
	if w == nil {
		w = io.Discard
	}

	return config{
		output: w,
		layout: DefaultTimeLayout,
		level:  DefaultLevel,
		format: DefaultFormat,
		pretty: true,
	}
}

func (c config) with(opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	return c
}

// WithOutput sets the destination of log records. A nil writer discards
// them.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w == nil {
			w = io.Discard
		}

		c.output = w
	}
}

// WithLevel sets the minimum level of records written.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithFormat sets the record encoding.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithCaller controls whether records carry the source position of the
// logging call.
func WithCaller(enable bool) Option {
	return func(c *config) { c.caller = enable }
}

// WithPretty controls decoration of the output. Pretty text is styled for
// terminals and pretty JSON is indented across lines.
func WithPretty(enable bool) Option {
	return func(c *config) { c.pretty = enable }
}

// WithTimeLayout sets the timestamp layout. Besides any [time.Time.Format]
// layout, the case-insensitive names "rfc3339", "rfc3339nano", "datetime",
// "kitchen", "stamp", "stampmilli" and "stampmicro" are recognized. An empty
// layout, or "none", omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(c *config) { c.layout = resolveLayout(layout) }
}

var namedLayouts = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"datetime":    time.DateTime,
	"kitchen":     time.Kitchen,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"none":        "",
}

func resolveLayout(layout string) string {
	key := strings.ToLower(strings.TrimSpace(layout))
	if key == "" {
		return ""
	}

	if std, ok := namedLayouts[key]; ok {
		return std
	}

	return layout
}

// replaceAttr renders timestamps with the configured layout and levels
// with their upper-case names.
func (c config) replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		if c.layout == "" {
			return slog.Attr{}
		}

		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format(c.layout))
		}
	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToUpper(Level(l).String()))
		}
	}

	return a
}

func (c config) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource:   c.caller,
		Level:       slog.Level(c.level),
		ReplaceAttr: c.replaceAttr,
	}

	switch {
	case c.format == FormatJSON && c.pretty:
		return newIndentHandler(c.output, opts)
	case c.format == FormatJSON:
		return slog.NewJSONHandler(c.output, opts)
	case c.pretty:
		return newStyledHandler(c)
	default:
		return slog.NewTextHandler(c.output, opts)
	}
}
