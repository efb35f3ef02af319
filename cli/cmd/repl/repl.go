package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/gomeson/interp"
	"github.com/ardnew/gomeson/log"
)

// Builder returns the interpreter of a session. Output printed by build
// scripts must go to out.
type Builder func(ctx context.Context, out io.Writer) (*interp.Interpreter, error)

// Outcomes of an edit session.
type (
	editDoneMsg      struct{ source string } // buffer parsed
	editCancelledMsg struct{}                // buffer cleared
	editDeclinedMsg  struct{}                // re-edit after a syntax error declined
	editErrorMsg     struct{ err error }
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

// inputMode is the kind of line being typed.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

func (mode inputMode) prompt() string {
	if mode == modeCtrl {
		return styles.ctrlPrompt.Render(ctrlPrompt)
	}

	return styles.evalPrompt.Render(evalPrompt)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc func() context.Context
	input   textinput.Model
	in      *interp.Interpreter
	out     *bytes.Buffer // script output not yet shown
	scratch string        // last edited buffer
	logger  log.Logger
	history *History

	historyIdx int
	comp       completion

	altNav *saved // state before Alt+Up/Down navigation began

	width    int
	quitting bool
	mode     inputMode
	inputs   [2]saved // per-mode input while the other mode is active
}

// saved is the input state of one mode.
type saved struct {
	mode   inputMode
	text   string
	cursor int
}

// Run starts an interactive session on the interpreter returned by build.
// History is kept in cacheDir.
func Run(
	ctx context.Context,
	build Builder,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if build == nil {
		return ErrNoInterp
	}

	out := new(bytes.Buffer)

	in, err := build(ctx, out)
	if err != nil {
		return err
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("variables", len(in.Variables())),
	)

	var historyPath string
	if cacheDir != "" {
		historyPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(historyPath)

	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	m := newModel(ctx, in, out, history, logger)

	// Output of the setup run, if any, precedes the prompt.
	if out.Len() > 0 {
		fmt.Print(out.String())
		out.Reset()
	}

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

const (
	defaultWidth = 80
	maxInput     = 1024
)

func newModel(
	ctx context.Context,
	in *interp.Interpreter,
	out *bytes.Buffer,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = modeEval.prompt()
	ti.CharLimit = maxInput
	ti.Width = defaultWidth
	ti.Focus()

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		in:         in,
		out:        out,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		comp:       completion{selected: -1},
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.logger.TraceContext(m.ctxFunc(), "repl key", slog.String("key", msg.String()))

		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-len(evalPrompt)-2, 1)

		return m, nil

	case editDoneMsg:
		m.scratch = msg.source

		return m, m.run("edit", msg.source)

	case editCancelledMsg:
		return m, tea.Println(styles.hint.Render("edit cancelled"))

	case editDeclinedMsg:
		return m.quit()

	case editErrorMsg:
		return m, printError(msg.err)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" + m.hintLine() + "\n"
}

func printError(err error) tea.Cmd {
	return tea.Println(styles.err.Render("error: " + err.Error()))
}

func (m model) quit() (model, tea.Cmd) {
	m.quitting = true

	return m, tea.Quit
}

// hintLine is the line below the input: the history position while
// browsing history, a usage hint on an empty line, the signature of the
// call around the cursor, or the completion candidates.
func (m model) hintLine() string {
	input := m.input.Value()

	switch {
	case m.historyIdx < m.history.Len():
		return styles.hint.Render(fmt.Sprintf("history %d/%d", m.historyIdx+1, m.history.Len()))

	case strings.TrimSpace(input) == "" && m.mode == modeEval:
		return styles.hint.Render("Type a statement or press esc for commands")

	case strings.TrimSpace(input) == "":
		return styles.hint.Render("Commands: " + strings.Join(ctrlCommands, ", ") + " (esc to return)")
	}

	bar := renderCandidateBar(m.comp.matches, m.comp.selected, m.width)

	if m.mode == modeEval && (!m.comp.cycling || bar == "") {
		if fc := detectFunctionCall(input, m.input.Position()); fc.inCall {
			if name, params := getSignature(m.in, fc); name != "" {
				return renderSignatureHint(name, params, fc)
			}
		}
	}

	return bar
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Interrupt):
		if m.input.Value() == "" {
			return m.quit()
		}

		m.altNav = nil
		m.comp.cycling = false
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		m.refresh(false)

		return m, nil

	case key.Matches(msg, keys.EOF):
		if m.input.Value() == "" {
			return m.quit()
		}

		return m, nil

	case key.Matches(msg, keys.Submit):
		m.altNav = nil

		if m.comp.cycling && len(m.comp.matches) > 0 {
			m.comp.cycling = false
			m.refresh(true)

			return m, nil
		}

		return m.executeInput()

	case key.Matches(msg, keys.Next):
		return m.cycle(1), nil
	case key.Matches(msg, keys.Prev):
		return m.cycle(-1), nil
	case key.Matches(msg, keys.Older):
		return m.seek(-1, false), nil
	case key.Matches(msg, keys.Newer):
		return m.seek(1, false), nil
	case key.Matches(msg, keys.ModeOlder):
		return m.seek(-1, true), nil
	case key.Matches(msg, keys.ModeNewer):
		return m.seek(1, true), nil
	case key.Matches(msg, keys.CmdOlder):
		return m.ctrlHistory(-1), nil
	case key.Matches(msg, keys.CmdNewer):
		return m.ctrlHistory(1), nil

	case key.Matches(msg, keys.Toggle):
		if m.comp.cycling {
			m.comp.cycling = false
			m.input.SetValue(m.comp.restore.text)
			m.input.SetCursor(m.comp.restore.cursor)
			m.refresh(false)

			return m, nil
		}

		m.altNav = nil

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil
	}

	// Typing keeps tab-cycling alive and may auto-accept a completed word.
	// Editing and cursor keys end cycling and never complete.
	typed := msg.Type == tea.KeyRunes
	if !typed {
		m.comp.cycling = false
		m.altNav = nil
	}

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh(typed)

	return m, cmd
}

// cycle moves the candidate selection by step and completes the word with
// the selected candidate. A single candidate is accepted outright.
func (m model) cycle(step int) model {
	c := &m.comp

	switch n := len(c.matches); {
	case n == 0:
		return m

	case n == 1:
		m.replaceWord(c.matches[0].Str)
		c.matches, c.cycling, c.selected = nil, false, -1

		return m

	case !c.cycling:
		c.cycling = true
		c.restore = saved{mode: m.mode, text: m.input.Value(), cursor: m.input.Position()}

		c.selected = 0
		if step < 0 {
			c.selected = n - 1
		}

	default:
		c.selected = (c.selected + step + n) % n
	}

	m.replaceWord(c.matches[c.selected].Str)

	return m
}

// replaceWord replaces the word being completed and moves the cursor after
// it.
func (m *model) replaceWord(s string) {
	v := m.input.Value()

	m.input.SetValue(v[:m.comp.start] + s + v[m.comp.end:])
	m.comp.end = m.comp.start + len(s)
	m.input.SetCursor(m.comp.end)
}

// refresh recomputes the completions for the current input. With
// autoConfirm, a word that already equals its only candidate is accepted.
func (m *model) refresh(autoConfirm bool) {
	c := &m.comp

	c.matches, c.start, c.end = m.computeMatches()
	if !c.cycling {
		c.selected = -1
	}

	if autoConfirm && len(c.matches) == 1 && m.input.Value()[c.start:c.end] == c.matches[0].Str {
		c.matches, c.cycling, c.selected = nil, false, -1
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.inputs = [2]saved{}
	m.input.SetValue("")

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	return m, tea.Sequence(
		tea.Println(modeEval.prompt()+styles.input.Render(input)),
		m.run("eval", input),
	)
}

// drain returns a command printing the script output collected since the
// last call, or nil.
func (m model) drain() tea.Cmd {
	if m.out.Len() == 0 {
		return nil
	}

	text := strings.TrimSuffix(m.out.String(), "\n")
	m.out.Reset()

	return tea.Println(styles.output.Render(text))
}

// run executes source, then prints the script output and the value of a
// trailing expression.
func (m model) run(kind, source string) tea.Cmd {
	ctx := m.ctxFunc()

	v, err := m.in.Exec(ctx, source)

	lines := []tea.Cmd{m.drain()}
	attrs := []slog.Attr{slog.String("kind", kind), slog.Bool("ok", err == nil)}

	switch {
	case err != nil:
		lines = append(lines, printError(err))

	case v != nil && v.Type() != interp.TypeNone:
		attrs = append(attrs, slog.String("type", interp.TypeName(v)))
		lines = append(lines, tea.Println(styles.result.Render(display(v))))
	}

	m.logger.TraceContext(ctx, "repl run", attrs...)

	return tea.Sequence(lines...)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", name),
		slog.String("arg", arg),
	)

	echo := tea.Println(modeCtrl.prompt() + styles.input.Render(input))

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpText()))

	case "v", "vars":
		return m, tea.Sequence(echo, tea.Println(m.listVariables()))

	case "l", "load":
		if arg == "" {
			return m, tea.Sequence(echo, tea.Println(styles.err.Render("usage: load <file>")))
		}

		return m, tea.Sequence(echo, m.load(arg))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Println(styles.err.Render("unknown command " + name + " (try help)"))
	}
}

// load runs a build file in the session.
func (m model) load(path string) tea.Cmd {
	err := m.in.RunFile(m.ctxFunc(), path)

	done := tea.Println(styles.result.Render("loaded " + path))
	if err != nil {
		done = printError(err)
	}

	return tea.Sequence(m.drain(), done)
}

func (m model) edit() tea.Cmd {
	cmd := &editCommand{
		source:  m.scratch,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.edited == "":
			return editCancelledMsg{}
		default:
			return editDoneMsg{source: cmd.edited}
		}
	})
}

func (m model) listVariables() string {
	lines := make([]string, 0, len(m.in.Variables()))

	for _, name := range m.in.Variables() {
		v, _ := m.in.Get(name)
		lines = append(lines, "  "+name+" "+styles.hint.Render(preview(v)))
	}

	return strings.Join(lines, "\n")
}

// seek moves through history by step (-1 older, 1 newer). With sameMode
// only entries of the current mode are visited; otherwise the mode follows
// the entry. Moving past the newest entry clears the input.
func (m model) seek(step int, sameMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if sameMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		m.refresh(false)

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		m.refresh(false)
	}

	return m
}

// ctrlHistory navigates command history from either mode. Leaving either
// end restores the mode and input from before navigation began.
func (m model) ctrlHistory(step int) model {
	if m.altNav == nil {
		m.altNav = &saved{mode: m.mode, text: m.input.Value(), cursor: m.input.Position()}

		if m.mode != modeCtrl {
			m = m.switchToMode(modeCtrl)
		}
	}

	idx := m.historyIdx

	m = m.seek(step, true)
	if m.historyIdx != idx && m.historyIdx < m.history.Len() {
		return m
	}

	orig := *m.altNav
	m.altNav = nil

	if orig.mode != m.mode {
		m = m.switchToMode(orig.mode)
	}

	m.input.SetValue(orig.text)
	m.input.SetCursor(orig.cursor)
	m.historyIdx = m.history.Len()
	m.refresh(false)

	return m
}

// switchToMode switches to mode, keeping each mode's unsubmitted input.
func (m model) switchToMode(mode inputMode) model {
	m.inputs[m.mode] = saved{mode: m.mode, text: m.input.Value(), cursor: m.input.Position()}

	m.mode = mode
	m.input.Prompt = mode.prompt()
	m.input.SetValue(m.inputs[mode].text)
	m.input.SetCursor(m.inputs[mode].cursor)
	m.refresh(false)

	return m
}
