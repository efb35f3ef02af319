package log

import (
	"iter"
	"log/slog"
	"strconv"
	"strings"
)

// Level represents the severity of a log message.
type Level slog.Level

// Interpreter and probe internals log at [LevelTrace], below slog's
// predefined levels.
const (
	LevelTrace = Level(slog.LevelDebug - 4)
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// DefaultLevel is the level used when none, or an invalid one, is given.
const DefaultLevel = LevelInfo

var levelNames = []struct {
	level Level
	name  string
}{
	{LevelTrace, "trace"},
	{LevelDebug, "debug"},
	{LevelInfo, "info"},
	{LevelWarn, "warn"},
	{LevelError, "error"},
}

// String returns the lowercase level name. Levels between the named ones
// render as an offset from the level below, e.g. "info+2".
func (l Level) String() string {
	for i := len(levelNames) - 1; i >= 0; i-- {
		n := levelNames[i]
		switch {
		case l == n.level:
			return n.name
		case l > n.level:
			return n.name + "+" + strconv.Itoa(int(l-n.level))
		}
	}

	return levelNames[0].name + "-" + strconv.Itoa(int(levelNames[0].level-l))
}

// Levels returns the names of the predefined levels, lowest first.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, n := range levelNames {
			if !yield(n.name) {
				return
			}
		}
	}
}

// ParseLevel returns the level named by s, case-insensitively. Besides the
// names listed by [Levels], any text accepted by [slog.Level.UnmarshalText]
// is valid ("WARN-1", "ERROR+4"). Invalid input yields [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.TrimSpace(s)

	for _, n := range levelNames {
		if strings.EqualFold(s, n.name) {
			return n.level
		}
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format selects the encoding of log records.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the format used when none, or an invalid one, is given.
const DefaultFormat = FormatText

var formatNames = [...]string{
	FormatText: "text",
	FormatJSON: "json",
}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}

	return "Format(" + strconv.Itoa(int(f)) + ")"
}

// Formats returns the names of the supported formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range formatNames {
			if !yield(name) {
				return
			}
		}
	}
}

// ParseFormat returns the format named by s, case-insensitively. Invalid
// input yields [DefaultFormat].
func ParseFormat(s string) Format {
	s = strings.TrimSpace(s)

	for f, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(f)
		}
	}

	return DefaultFormat
}
