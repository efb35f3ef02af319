package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	faint, message, str, num, boolean lipgloss.Style
	trace, debug, info, warn, err     lipgloss.Style
}

// newStyles returns styles rendered for w. Writers that are not color
// terminals get plain text.
func newStyles(w io.Writer) *styles {
	r := lipgloss.NewRenderer(w)
	color := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return &styles{
		faint:   r.NewStyle().Faint(true),
		message: r.NewStyle().Bold(true),
		str:     color("6"),
		num:     color("3"),
		boolean: color("5"),
		trace:   color("8"),
		debug:   color("4"),
		info:    color("2"),
		warn:    color("3"),
		err:     color("1"),
	}
}

func (s *styles) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return s.err
	case l >= slog.LevelWarn:
		return s.warn
	case l >= slog.LevelInfo:
		return s.info
	case l >= slog.LevelDebug:
		return s.debug
	default:
		return s.trace
	}
}

// styledHandler writes one line per record:
//
//	TIME LEVEL file:line message key=value group.key=value ...
//
// Strings are quoted only when they would be ambiguous.
type styledHandler struct {
	cfg    config
	styles *styles
	mu     *sync.Mutex
	attrs  string
	prefix string
}

func newStyledHandler(cfg config) *styledHandler {
	return &styledHandler{
		cfg:    cfg,
		styles: newStyles(cfg.output),
		mu:     &sync.Mutex{},
	}
}

func (h *styledHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= slog.Level(h.cfg.level)
}

func (h *styledHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if h.cfg.layout != "" && !r.Time.IsZero() {
		b.WriteString(h.styles.faint.Render(r.Time.Format(h.cfg.layout)))
		b.WriteByte(' ')
	}

	name := strings.ToUpper(Level(r.Level).String())
	b.WriteString(h.styles.level(r.Level).Render(name))

	for i := len(name); i < len("ERROR"); i++ {
		b.WriteByte(' ')
	}

	if h.cfg.caller {
		if src := r.Source(); src != nil {
			b.WriteByte(' ')
			b.WriteString(h.styles.faint.Render(
				filepath.Base(src.File) + ":" + strconv.Itoa(src.Line)))
		}
	}

	b.WriteByte(' ')
	b.WriteString(h.styles.message.Render(r.Message))
	b.WriteString(h.attrs)

	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&b, h.prefix, a)

		return true
	})

	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.cfg.output, b.String())

	return err
}

func (h *styledHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	var b strings.Builder

	b.WriteString(h.attrs)

	for _, a := range attrs {
		h.appendAttr(&b, h.prefix, a)
	}

	c := *h
	c.attrs = b.String()

	return &c
}

func (h *styledHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix += name + "."

	return &c
}

func (h *styledHandler) appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, ga := range a.Value.Group() {
			h.appendAttr(b, prefix, ga)
		}

		return
	}

	b.WriteByte(' ')
	b.WriteString(h.styles.faint.Render(prefix + a.Key + "="))
	b.WriteString(h.value(a.Value))
}

func (h *styledHandler) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.styles.str.Render(quote(v.String()))
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindDuration:
		return h.styles.num.Render(v.String())
	case slog.KindBool:
		return h.styles.boolean.Render(v.String())
	case slog.KindTime:
		return h.styles.faint.Render(v.Time().Format(DefaultTimeLayout))
	}

	if err, ok := v.Any().(error); ok {
		return h.styles.err.Render(quote(err.Error()))
	}

	return quote(v.String())
}

func quote(s string) string {
	ambiguous := s == "" || strings.ContainsFunc(s, func(r rune) bool {
		return r == '"' || r == '=' || unicode.IsSpace(r) || !unicode.IsPrint(r)
	})
	if ambiguous {
		return strconv.Quote(s)
	}

	return s
}

// indentHandler encodes each record with [slog.JSONHandler] and writes it
// indented across lines.
type indentHandler struct {
	inner slog.Handler
	buf   *bytes.Buffer
	mu    *sync.Mutex
	w     io.Writer
}

func newIndentHandler(w io.Writer, opts *slog.HandlerOptions) *indentHandler {
	buf := new(bytes.Buffer)

	return &indentHandler{
		inner: slog.NewJSONHandler(buf, opts),
		buf:   buf,
		mu:    &sync.Mutex{},
		w:     w,
	}
}

func (h *indentHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.inner.Enabled(ctx, l)
}

func (h *indentHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()

	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(h.buf.Bytes()), "", "  "); err != nil {
		return err
	}

	out.WriteByte('\n')

	_, err := h.w.Write(out.Bytes())

	return err
}

func (h *indentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.inner = h.inner.WithAttrs(attrs)

	return &c
}

func (h *indentHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.inner = h.inner.WithGroup(name)

	return &c
}
