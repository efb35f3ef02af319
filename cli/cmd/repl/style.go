package repl

import "github.com/charmbracelet/lipgloss"

// theme holds every style the REPL renders with.
type theme struct {
	evalPrompt, ctrlPrompt lipgloss.Style
	input, result, output  lipgloss.Style
	err, hint              lipgloss.Style

	candidate, candidateMatch lipgloss.Style
	selected, selectedMatch   lipgloss.Style

	sig, sigName, sigParam lipgloss.Style
}

func newTheme() theme {
	fg := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}

	selected := fg("0").Background(lipgloss.Color("4"))

	return theme{
		evalPrompt:     fg("6").Bold(true),
		ctrlPrompt:     fg("5").Bold(true),
		input:          fg("15"),
		result:         fg("2"),
		output:         fg("7"),
		err:            fg("1"),
		hint:           fg("8"),
		candidate:      fg("4"),
		candidateMatch: fg("4").Bold(true),
		selected:       selected,
		selectedMatch:  selected.Bold(true),
		sig:            fg("8"),
		sigName:        fg("6").Bold(true),
		sigParam:       fg("11").Bold(true),
	}
}

var styles = newTheme()
