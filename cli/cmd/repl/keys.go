package repl

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// keyMap binds the REPL's keys. It implements [help.KeyMap] so the help
// command lists the bindings.
type keyMap struct {
	Submit, Interrupt, EOF key.Binding
	Next, Prev, Toggle     key.Binding
	Older, Newer           key.Binding
	ModeOlder, ModeNewer   key.Binding
	CmdOlder, CmdNewer     key.Binding
}

var keys = keyMap{
	Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run input, or accept candidate")),
	Interrupt: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "clear input, exit when empty")),
	EOF:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit when empty")),
	Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next candidate")),
	Prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous candidate")),
	Toggle:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "switch eval/command mode")),
	Older:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "older history")),
	Newer:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "newer history")),
	ModeOlder: key.NewBinding(key.WithKeys("shift+up"), key.WithHelp("shift+↑", "older, this mode only")),
	ModeNewer: key.NewBinding(key.WithKeys("shift+down"), key.WithHelp("shift+↓", "newer, this mode only")),
	CmdOlder:  key.NewBinding(key.WithKeys("alt+up"), key.WithHelp("alt+↑", "older command")),
	CmdNewer:  key.NewBinding(key.WithKeys("alt+down"), key.WithHelp("alt+↓", "newer command")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Next, k.Toggle, k.EOF}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Next, k.Prev, k.Toggle, k.Interrupt, k.EOF},
		{k.Older, k.Newer, k.ModeOlder, k.ModeNewer, k.CmdOlder, k.CmdNewer},
	}
}

// commandHelp describes the command-mode commands.
var commandHelp = [][2]string{
	{"help", "print this message"},
	{"vars", "list variables and their values"},
	{"load <file>", "run a build file in this session"},
	{"edit", "edit and run a scratch buffer in $EDITOR"},
	{"clear", "clear the screen"},
	{"quit", "exit"},
}

// helpText renders the command list and the key bindings. Commands may be
// abbreviated to their first letter.
func helpText() string {
	var b strings.Builder

	b.WriteString("Commands (esc for command mode):\n")

	for _, c := range commandHelp {
		b.WriteString("  ")
		b.WriteString(c[0])
		b.WriteString(strings.Repeat(" ", 13-len(c[0])))
		b.WriteString(styles.hint.Render(c[1]))
		b.WriteByte('\n')
	}

	b.WriteString("\nStatements run in eval mode; expression values are printed.\n\n")

	h := help.New()
	h.ShowAll = true
	b.WriteString(h.View(keys))

	return b.String()
}
