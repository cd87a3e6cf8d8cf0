package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct {
	keys keyMap
}

// NewHelpModel creates a new help model
func NewHelpModel(keys keyMap) HelpModel {
	return HelpModel{keys: keys}
}

// View renders the help screen
func (m HelpModel) View() string {
	var sections []string

	sections = append(sections, cardTitleStyle.Render("Keyboard Shortcuts"))
	sections = append(sections, m.renderSection("Navigation", m.keys.navigation()))
	sections = append(sections, m.renderSection("Scrolling", []key.Binding{
		key.NewBinding(key.WithHelp("j / down", "Scroll down")),
		key.NewBinding(key.WithHelp("k / up", "Scroll up")),
		key.NewBinding(key.WithHelp("pgdn / pgup", "Page down / up")),
	}))
	sections = append(sections, m.renderSection("Records Screen", []key.Binding{m.keys.Refresh}))
	sections = append(sections, m.renderZonesHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m HelpModel) renderSection(title string, keys []key.Binding) string {
	lines := []string{"", sectionStyle.Render(title)}
	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.Help().Key, k.Help().Desc))
	}
	return strings.Join(lines, "\n")
}

func (m HelpModel) renderZonesHelp() string {
	lines := []string{"", sectionStyle.Render("Zones and Metrics"), ""}

	metrics := []struct {
		name string
		desc string
	}{
		{"Zones", "Smoothed power against FTP: VO2 Max from 106%, Threshold from 95%, Tempo from 84%, Endurance from 69%."},
		{"Peak curve", "Best average power held for each duration from 1 s up to the workout length."},
		{"NP (Normalized Power)", "Fourth-power mean of 30 s rolling power."},
		{"IF / TSS", "NP relative to FTP, and the training stress it implies for the ride."},
	}

	for _, metric := range metrics {
		lines = append(lines, "  "+helpKeyStyle.Render(metric.name))
		lines = append(lines, "  "+mutedStyle.Render(metric.desc))
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
