package repl

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/gomeson/interp"
	"github.com/ardnew/gomeson/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "vars", "load", "edit", "clear", "quit"}

// isWordBoundary reports whether r delimits words for completion: spaces,
// the member-access dot, brackets, quotes, and operator characters.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t', '\'',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%',
		'<', '>', '=', '!',
		',', '?', ':':
		return true
	}

	return false
}

// wordBounds returns the word at cursor and its byte boundaries within
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain leading up to the word at
// wordStart. For "x + cc.get_i" with the word "get_i" it is "cc". It is
// empty for words not preceded by a dot.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")

	end := len(prefix)
	pos := end

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.TrimSpace(prefix[pos:end])
}

// childCandidates returns the completions valid after parent. At the top
// level these are functions, variables, and keywords. After a variable
// they are the methods of its value.
func childCandidates(in *interp.Interpreter, parent string) []string {
	if parent == "" {
		names := interp.Builtins()
		if in != nil {
			names = append(names, in.Variables()...)
		}

		return append(names, lang.Keywords()...)
	}

	if in == nil || strings.Contains(parent, ".") {
		return nil
	}

	v, ok := in.Get(parent)
	if !ok {
		return nil
	}

	return interp.Methods(v)
}

// completion is the completion state of the input line.
type completion struct {
	matches    fuzzy.Matches
	start, end int // bounds of the word being completed

	// While cycling, selected indexes matches and restore holds the input
	// from before cycling began.
	cycling  bool
	selected int
	restore  saved
}

// computeMatches returns the fuzzy matches for the word at the cursor, best
// first, and the bounds of the word. An empty word matches nothing at the
// top level and everything after a dot.
func (m model) computeMatches() (matches fuzzy.Matches, start, end int) {
	input := m.input.Value()

	word, start, end := wordBounds(input, m.input.Position())

	var candidates []string

	switch {
	case m.mode == modeCtrl:
		if word == "" || strings.Contains(input[:start], " ") {
			return nil, start, end
		}

		candidates = ctrlCommands

	case word == "":
		parent := parentPath(input, start)
		if parent == "" {
			return nil, start, end
		}

		for i, c := range childCandidates(m.in, parent) {
			matches = append(matches, fuzzy.Match{Str: c, Index: i})
		}

		return matches, start, end

	default:
		candidates = childCandidates(m.in, parentPath(input, start))
	}

	return fuzzy.Find(word, candidates), start, end
}

// renderCandidateBar lays out matches on one line of the given width,
// ending with an ellipsis when they do not fit. selected is the index of
// the highlighted candidate, or -1.
func renderCandidateBar(matches fuzzy.Matches, selected, width int) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	more := styles.hint.Render("...")

	var b strings.Builder

	used := 0

	for i, match := range matches {
		item := renderCandidate(match, i == selected)

		w := lipgloss.Width(item)
		if i > 0 {
			w += len(sep)
		}

		// Room for the ellipsis must remain unless this is the last item.
		need := w
		if i < len(matches)-1 {
			need += len(sep) + lipgloss.Width(more)
		}

		if i > 0 && used+need > width {
			b.WriteString(sep + more)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(item)

		used += w
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters
// highlighted. Functions get a "()" suffix that is not inserted on
// completion.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, hit := styles.candidate, styles.candidateMatch
	if selected {
		base, hit = styles.selected, styles.selectedMatch
	}

	var b strings.Builder

	next := 0

	for i, r := range match.Str {
		style := base
		if next < len(match.MatchedIndexes) && match.MatchedIndexes[next] == i {
			style = hit
			next++
		}

		b.WriteString(style.Render(string(r)))
	}

	if isFunction(match.Str) {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}

// isFunction reports whether name is a builtin function.
func isFunction(name string) bool {
	_, ok := slices.BinarySearch(interp.Builtins(), name)

	return ok
}

// preview is a one-line summary of a value: its kind and a truncated
// rendering.
func preview(v interp.Value) string {
	s := display(v)
	if len(s) > 40 {
		s = s[:37] + "..."
	}

	return fmt.Sprintf("%s %s", interp.TypeName(v), s)
}

// display renders a value the way it would be written in a build file.
func display(v interp.Value) string {
	switch v := v.(type) {
	case interp.String:
		return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`).Replace(string(v)) + "'"
	case interp.Array:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = display(item)
		}

		return "[" + strings.Join(items, ", ") + "]"
	case interp.Dict:
		items := make([]string, 0, len(v))
		for _, k := range slices.Sorted(maps.Keys(v)) {
			items = append(items, display(interp.String(k))+": "+display(v[k]))
		}

		return "{" + strings.Join(items, ", ") + "}"
	default:
		return interp.Format(v)
	}
}
