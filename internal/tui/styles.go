package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	app                         lipgloss.Style
	panel, panelFocused         lipgloss.Style
	panelTitle                  lipgloss.Style
	listItem, listSel, listOpen lipgloss.Style
	tabActive, tabInactive      lipgloss.Style
	tabsRow                     lipgloss.Style
	editorDisabled              lipgloss.Style
	sender, botSender           lipgloss.Style
	prompt, promptHint          lipgloss.Style
	promptErr                   lipgloss.Style
	statusBar, statusHint       lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()
	accent := lipgloss.AdaptiveColor{Light: "#5A4FCF", Dark: "#9D8CFF"}
	muted := lipgloss.AdaptiveColor{Light: "#777777", Dark: "#888888"}

	return styles{
		app:            base,
		panel:          base.Border(lipgloss.NormalBorder()).Padding(0, 1),
		panelFocused:   base.Border(lipgloss.DoubleBorder()).BorderForeground(accent).Padding(0, 1),
		panelTitle:     base.Bold(true),
		listItem:       base,
		listSel:        base.Bold(true).Foreground(accent),
		listOpen:       base.Underline(true),
		tabActive:      base.Bold(true).Padding(0, 1).Foreground(accent).Border(lipgloss.NormalBorder(), false, false, true, false),
		tabInactive:    base.Padding(0, 1).Foreground(muted),
		tabsRow:        base,
		editorDisabled: base.Faint(true).Italic(true),
		sender:         base.Bold(true),
		botSender:      base.Bold(true).Foreground(accent),
		prompt:         base.Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(1, 2),
		promptHint:     base.Faint(true),
		promptErr:      base.Foreground(lipgloss.Color("9")),
		statusBar:      base.Padding(0, 1),
		statusHint:     base.Faint(true),
	}
}
