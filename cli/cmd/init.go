package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/gomeson/log"
	"github.com/ardnew/gomeson/profile"
)

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// ignoredFlags are flag name prefixes never written to the configuration.
var ignoredFlags = []string{"help", "force", profile.Tag}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	section := ktx.Model.Vars()[SectionIdentifier]
	if section == "" {
		section = "gomeson"
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	if err := i.write(ctx, file, section); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// write renders every configurable flag as a key of section.
func (i *Init) write(ctx context.Context, w io.Writer, section string) error {
	if _, err := fmt.Fprintf(w, "[%s]\n", section); err != nil {
		return err
	}

	for _, e := range i.entries(ctx) {
		if _, err := fmt.Fprintf(w, "%s = %s\n", e[0], e[1]); err != nil {
			return err
		}
	}

	return nil
}

// entries returns key and literal pairs for every flag with a value, root
// flags first, then each command's flags in declaration order. A flag shared
// by several commands is written once.
func (i *Init) entries(ctx context.Context) [][2]string {
	ktx := kongContextFrom(ctx)

	var (
		out  [][2]string
		seen = map[string]bool{}
	)

	add := func(flag *kong.Flag, val any) {
		key := strings.ReplaceAll(flag.Name, "-", "_")
		if seen[key] || flag.Hidden || slices.ContainsFunc(ignoredFlags, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			return
		}

		lit, ok := literal(val)
		if !ok {
			return
		}

		seen[key] = true
		out = append(out, [2]string{key, lit})
	}

	for _, flag := range ktx.Model.Flags {
		add(flag, ktx.FlagValue(flag))
	}

	var walk func(nodes []*kong.Node)
	walk = func(nodes []*kong.Node) {
		for _, n := range nodes {
			for _, flag := range n.Flags {
				add(flag, defaultValue(flag))
			}

			walk(n.Children)
		}
	}
	walk(ktx.Model.Children)

	return out
}

// defaultValue returns the declared default of a command flag. Command
// flags outside the selected command are never decoded, so the default tag
// is used as written.
func defaultValue(flag *kong.Flag) any {
	if flag.Default == "" {
		return nil
	}

	if flag.IsBool() {
		b, err := strconv.ParseBool(flag.Default)
		if err != nil {
			return nil
		}

		return b
	}

	return flag.Default
}

// literal renders v in machine file syntax. It reports false for values
// that should be omitted.
func literal(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false

	case bool:
		return strconv.FormatBool(v), true

	case string:
		if v == "" {
			return "", false
		}

		return quote(v), true

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), true

	case fmt.Stringer:
		return quote(v.String()), true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return quote(fmt.Sprint(v)), true
	}

	if rv.Len() == 0 {
		return "", false
	}

	items := make([]string, 0, rv.Len())

	for n := range rv.Len() {
		lit, ok := literal(rv.Index(n).Interface())
		if !ok {
			lit = "''"
		}

		items = append(items, lit)
	}

	return "[" + strings.Join(items, ", ") + "]", true
}

var quoter = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)

func quote(s string) string { return "'" + quoter.Replace(s) + "'" }
