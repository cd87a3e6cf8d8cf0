package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"powercurve/internal/service"
)

// Screen identifiers
type Screen int

const (
	ScreenPower Screen = iota
	ScreenDistribution
	ScreenPeak
	ScreenRecords
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	reports []*service.Report
	current int

	page    pageModel
	records RecordsModel
	help    HelpModel
	keys    keyMap

	// Window dimensions
	width  int
	height int

	// Status message
	status string
}

// NewApp creates the app for a non-empty set of reports. loader may be nil when
// history is disabled; newRecords are the records set while recording this run.
func NewApp(reports []*service.Report, loader RecordLoader, newRecords []service.NewRecord) *App {
	keys := defaultKeyMap()
	a := &App{
		screen:  ScreenPower,
		reports: reports,
		records: NewRecordsModel(loader, newRecords),
		help:    NewHelpModel(keys),
		keys:    keys,
		width:   80,
	}
	a.refresh()
	return a
}

// Run starts the app on the alternate screen and blocks until it quits
func Run(a *App) error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.records.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Power):
			return a.show(ScreenPower)
		case key.Matches(msg, a.keys.Distribution):
			return a.show(ScreenDistribution)
		case key.Matches(msg, a.keys.Peak):
			return a.show(ScreenPeak)
		case key.Matches(msg, a.keys.Records):
			return a.show(ScreenRecords)
		case key.Matches(msg, a.keys.Next):
			a.current = (a.current + 1) % len(a.reports)
			a.refresh()
			return a, nil
		case key.Matches(msg, a.keys.Prev):
			a.current = (a.current + len(a.reports) - 1) % len(a.reports)
			a.refresh()
			return a, nil
		case key.Matches(msg, a.keys.Help):
			if a.screen != ScreenHelp {
				a.prevScreen = a.screen
				a.screen = ScreenHelp
			}
			return a, nil
		case key.Matches(msg, a.keys.Back):
			if a.screen == ScreenHelp {
				a.screen = a.prevScreen
			}
			return a, nil
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.page.resize(msg.Width, msg.Height)
		a.refresh()
		var cmd tea.Cmd
		a.records, cmd = a.records.Update(msg)
		return a, cmd

	case recordsLoadedMsg:
		var cmd tea.Cmd
		a.records, cmd = a.records.Update(msg)
		return a, cmd
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenPower, ScreenDistribution, ScreenPeak:
		a.page, cmd = a.page.update(msg)
	case ScreenRecords:
		a.records, cmd = a.records.Update(msg)
	}
	return a, cmd
}

func (a *App) show(s Screen) (tea.Model, tea.Cmd) {
	a.screen = s
	a.refresh()
	return a, nil
}

// refresh re-renders the report page for the current screen and workout
func (a *App) refresh() {
	r := a.reports[a.current]
	switch a.screen {
	case ScreenPower:
		a.page.setContent(renderPower(r, a.width))
	case ScreenDistribution:
		a.page.setContent(renderDistribution(r, a.width))
	case ScreenPeak:
		a.page.setContent(renderPeak(a.reports, a.current, a.width))
	}
	if len(a.reports) > 1 {
		a.status = fmt.Sprintf("%s (%d of %d)  tab: next workout", r.Name(), a.current+1, len(a.reports))
	} else {
		a.status = r.Name()
	}
}

// View renders the app
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenRecords:
		content = a.records.View()
	case ScreenHelp:
		content = a.help.View()
	default:
		content = a.page.view()
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderNav(), content, a.renderFooter())
}

func (a *App) renderHeader() string {
	return headerStyle.Render("Power Curve Analyzer")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Power", ScreenPower},
		{"2", "Distribution", ScreenDistribution},
		{"3", "Peak Curve", ScreenPeak},
		{"4", "Records", ScreenRecords},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}
