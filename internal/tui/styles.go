package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"powercurve/internal/analysis"
)

// Colors
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F9FAFB") // Light gray
)

// zone colors follow the saved figure: grey, green, yellow, orange, red
var zoneColors = [analysis.NumZones]lipgloss.Color{
	analysis.ZoneRecovery:  lipgloss.Color("#9CA3AF"),
	analysis.ZoneEndurance: lipgloss.Color("#22C55E"),
	analysis.ZoneTempo:     lipgloss.Color("#EAB308"),
	analysis.ZoneThreshold: lipgloss.Color("#F97316"),
	analysis.ZoneVO2Max:    lipgloss.Color("#EF4444"),
}

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(primaryColor).
			Padding(0, 1).
			MarginBottom(1)

	navStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginBottom(1)

	navActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	navInactiveStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor)

	metricLabelStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Width(20)

	metricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(textColor)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(primaryColor)

	recordStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// RenderMetric renders a label and value on one line
func RenderMetric(label, value string) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		metricLabelStyle.Render(label),
		metricValueStyle.Render(value),
	)
}

// RenderBar renders a horizontal bar of fraction*width cells. Non-zero
// fractions get at least one cell.
func RenderBar(fraction float64, width int, color lipgloss.Color) string {
	cells := int(fraction * float64(width))
	if cells > width {
		cells = width
	}
	if cells < 1 && fraction > 0 {
		cells = 1
	}
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", cells))
}

// RenderKeyHelp renders a key binding help item
func RenderKeyHelp(key, desc string) string {
	return helpKeyStyle.Render(key) + " " + helpDescStyle.Render(desc)
}

func sectionHeader(title string) string {
	dividerLen := 60 - len([]rune(title)) - 4
	if dividerLen < 0 {
		dividerLen = 0
	}
	return sectionStyle.Render("── " + title + " " + strings.Repeat("─", dividerLen))
}
