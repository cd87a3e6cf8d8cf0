package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Power        key.Binding
	Distribution key.Binding
	Peak         key.Binding
	Records      key.Binding
	Next         key.Binding
	Prev         key.Binding
	Help         key.Binding
	Back         key.Binding
	Refresh      key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Power:        key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "Power and zones")),
		Distribution: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "Power distribution")),
		Peak:         key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "Peak power curve")),
		Records:      key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "All-time records")),
		Next:         key.NewBinding(key.WithKeys("tab", "n"), key.WithHelp("tab", "Next workout")),
		Prev:         key.NewBinding(key.WithKeys("shift+tab", "p"), key.WithHelp("shift+tab", "Previous workout")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "Help (this screen)")),
		Back:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "Close help")),
		Refresh:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Reload records")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "Quit")),
	}
}

func (k keyMap) navigation() []key.Binding {
	return []key.Binding{k.Power, k.Distribution, k.Peak, k.Records, k.Next, k.Prev, k.Help, k.Back, k.Quit}
}
