package machine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/klauspost/readahead"

	"github.com/ardnew/gomeson/lang"
	"github.com/ardnew/gomeson/log"
)

// Predefined errors (sentinel values).
var (
	ErrMachineFile = lang.NewError("invalid machine file")
)

// constants names the section whose keys are visible in every section.
const constants = "constants"

type config struct {
	name   string
	logger log.Logger
}

// Option configures parsing.
type Option func(*config)

// WithName sets the file name reported in errors.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLogger sets the logger used to trace parsing.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Parse reads and evaluates a machine file.
func Parse(ctx context.Context, r io.Reader, opts ...Option) (*File, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	var lines []string

	scan := bufio.NewScanner(ra)
	for scan.Scan() {
		lines = append(lines, strings.TrimSpace(scan.Text()))
	}

	if err := scan.Err(); err != nil {
		return nil, ErrMachineFile.Wrap(lang.ErrReadInput.Wrap(err))
	}

	return parse(ctx, lines, opts...)
}

// ParseString evaluates a machine file held in memory.
func ParseString(ctx context.Context, source string, opts ...Option) (*File, error) {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}

	return parse(ctx, lines, opts...)
}

// entry is an unevaluated assignment.
type entry struct {
	key  string
	expr lang.Expr
	line int
}

// pending holds the unevaluated entries of one section.
type pending struct {
	name    string
	entries []*entry
	index   map[string]*entry
}

func (p *pending) set(key string, expr lang.Expr, line int) {
	if e, ok := p.index[key]; ok {
		e.expr = expr
		e.line = line

		return
	}

	e := &entry{key: key, expr: expr, line: line}
	p.entries = append(p.entries, e)
	p.index[key] = e
}

func parse(ctx context.Context, lines []string, opts ...Option) (*File, error) {
	var cfg config

	for _, opt := range opts {
		opt(&cfg)
	}

	var (
		order    []*pending
		sections = make(map[string]*pending)
	)

	current := func(name string) *pending {
		p, ok := sections[name]
		if !ok {
			p = &pending{name: name, index: make(map[string]*entry)}
			sections[name] = p
			order = append(order, p)
		}

		return p
	}

	section := current("")

	for pos := 0; pos < len(lines); {
		line := lines[pos]
		pos++

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = current(line[1 : len(line)-1])

			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		start := pos
		text := strings.TrimSpace(value)

		// Read continuation lines until the text parses.
		for pos < len(lines) {
			if _, err := lang.ParseString(ctx, text); err == nil {
				break
			}

			text += "\n" + lines[pos]
			pos++
		}

		expr, err := expression(ctx, text)
		if err != nil {
			return nil, fail(cfg.name, start, err)
		}

		section.set(strings.TrimSpace(key), expr, start)
	}

	f := newFile()

	if p, ok := sections[constants]; ok {
		if err := f.evaluate(p, cfg.name); err != nil {
			return nil, err
		}
	}

	for _, p := range order {
		if p.name == constants || (p.name == "" && len(p.entries) == 0) {
			continue
		}

		if err := f.evaluate(p, cfg.name); err != nil {
			return nil, err
		}
	}

	cfg.logger.DebugContext(ctx, "parsed machine file",
		slog.String("name", cfg.name),
		slog.Int("sections", len(f.sections)),
	)

	return f, nil
}

// expression parses text as exactly one expression statement.
func expression(ctx context.Context, text string) (lang.Expr, error) {
	ast, err := lang.ParseString(ctx, text)
	if err != nil {
		return nil, err
	}

	if len(ast.Statements) != 1 {
		return nil, lang.ErrUnexpectedToken.Wrap(
			fmt.Errorf("expected one expression, found %d statements", len(ast.Statements)))
	}

	stmt, ok := ast.Statements[0].(*lang.ExprStmt)
	if !ok {
		return nil, lang.ErrUnexpectedToken.Wrap(
			errors.New("expected an expression"))
	}

	return stmt.Expr, nil
}

func fail(name string, line int, err error) *lang.Error {
	loc := name
	if loc == "" {
		loc = "<input>"
	}

	return ErrMachineFile.Wrap(fmt.Errorf("%s:%d: %w", loc, line, err)).With(
		slog.String("name", name),
		slog.Int("line", line),
	)
}

func (f *File) evaluate(p *pending, name string) error {
	s := f.section(p.name)

	for _, e := range p.entries {
		v, err := f.eval(p.name, e.expr)
		if err != nil {
			return fail(name, e.line, err).With(
				slog.String("section", p.name),
				slog.String("key", e.key),
			)
		}

		s.set(e.key, v)
	}

	return nil
}

func (f *File) eval(section string, expr lang.Expr) (Value, error) {
	switch e := expr.(type) {
	case *lang.StringLit:
		return Str(e.Value), nil
	case *lang.IntegerLit:
		return Int(e.Value), nil
	case *lang.BooleanLit:
		return Bool(e.Value), nil
	case *lang.ArrayLit:
		items := make([]Value, 0, len(e.Elements))

		for _, el := range e.Elements {
			v, err := f.eval(section, el)
			if err != nil {
				return Value{}, err
			}

			items = append(items, v)
		}

		return List(items...), nil
	case *lang.Ident:
		if v, ok := f.Get(constants, e.Name); ok {
			return v, nil
		}

		if v, ok := f.Get(section, e.Name); ok {
			return v, nil
		}

		return Value{}, unexpected(e.Pos, "undefined "+e.Name)
	case *lang.BinaryOp:
		left, err := f.eval(section, e.Left)
		if err != nil {
			return Value{}, err
		}

		right, err := f.eval(section, e.Right)
		if err != nil {
			return Value{}, err
		}

		switch e.Op {
		case lang.OpAdd:
			if v, ok := concat(left, right); ok {
				return v, nil
			}
		case lang.OpDiv:
			if left.Kind == KindString && right.Kind == KindString {
				return Str(joinPath(left.Str, right.Str)), nil
			}
		}

		return Value{}, unexpected(e.Pos,
			left.Kind.String()+" "+e.Op.String()+" "+right.Kind.String())
	}

	return Value{}, unexpected(expr.Position(), "unsupported expression")
}

func unexpected(pos lang.Position, detail string) error {
	return lang.ErrUnexpectedToken.Wrap(errors.New(detail)).
		With(slog.String("position", pos.String()))
}

func concat(left, right Value) (Value, bool) {
	switch {
	case left.Kind == KindString && right.Kind == KindString:
		return Str(left.Str + right.Str), true
	case left.Kind == KindArray && right.Kind == KindArray:
		return List(append(clone(left.Array), right.Array...)...), true
	case left.Kind == KindArray && right.Kind == KindString:
		return List(append(clone(left.Array), right)...), true
	case left.Kind == KindString && right.Kind == KindArray:
		return List(append([]Value{left}, right.Array...)...), true
	}

	return Value{}, false
}

func clone(items []Value) []Value {
	return append(make([]Value, 0, len(items)+1), items...)
}

// joinPath appends right to left with exactly the separator left lacks.
func joinPath(left, right string) string {
	if !strings.HasSuffix(left, "/") && !strings.HasSuffix(left, `\`) {
		left += "/"
	}

	if strings.HasPrefix(right, "/") || strings.HasPrefix(right, `\`) {
		right = right[1:]
	}

	return left + right
}
