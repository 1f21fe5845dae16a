package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	quit       key.Binding
	nextFocus  key.Binding
	prevFocus  key.Binding
	up         key.Binding
	down       key.Binding
	open       key.Binding
	nextTab    key.Binding
	prevTab    key.Binding
	closeTab   key.Binding
	newProject key.Binding
	newFile    key.Binding
	assistant  key.Binding
	copy       key.Binding
	back       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		nextFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next panel"),
		),
		prevFocus: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev panel"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		nextTab: key.NewBinding(
			key.WithKeys("]", "right"),
			key.WithHelp("]", "next tab"),
		),
		prevTab: key.NewBinding(
			key.WithKeys("[", "left"),
			key.WithHelp("[", "prev tab"),
		),
		closeTab: key.NewBinding(
			key.WithKeys("x", "ctrl+w"),
			key.WithHelp("x", "close tab"),
		),
		newProject: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new project"),
		),
		newFile: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "new file"),
		),
		assistant: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "assistant"),
		),
		copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy file"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "leave editor"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.nextFocus, k.open, k.newProject, k.newFile, k.closeTab, k.assistant, k.copy, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.open, k.nextFocus, k.prevFocus},
		{k.nextTab, k.prevTab, k.closeTab},
		{k.newProject, k.newFile, k.assistant, k.copy, k.back, k.quit},
	}
}
