package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"powercurve/internal/analysis"
	"powercurve/internal/service"
	"powercurve/internal/store"
)

// recentLimit is how many recorded workouts the records screen lists
const recentLimit = 10

// RecordLoader provides the all-time power records and recent history
type RecordLoader interface {
	Records(ctx context.Context) ([]store.PowerRecord, error)
	Recent(ctx context.Context, limit int) ([]service.StoredWorkout, error)
}

// RecordsModel is the all-time records screen model
type RecordsModel struct {
	loader     RecordLoader
	newRecords []service.NewRecord
	data       []store.PowerRecord
	recent     []service.StoredWorkout
	page       pageModel
	loading    bool
	err        error
}

// NewRecordsModel creates a records model. loader may be nil when history is off.
func NewRecordsModel(loader RecordLoader, newRecords []service.NewRecord) RecordsModel {
	m := RecordsModel{
		loader:     loader,
		newRecords: newRecords,
		loading:    loader != nil,
	}
	m.page.setContent(m.renderContent())
	return m
}

// Init loads the records
func (m RecordsModel) Init() tea.Cmd {
	if m.loader == nil {
		return nil
	}
	return m.loadRecords
}

type recordsLoadedMsg struct {
	data   []store.PowerRecord
	recent []service.StoredWorkout
	err    error
}

func (m RecordsModel) loadRecords() tea.Msg {
	ctx := context.Background()
	data, err := m.loader.Records(ctx)
	if err != nil {
		return recordsLoadedMsg{err: err}
	}
	recent, err := m.loader.Recent(ctx, recentLimit)
	return recordsLoadedMsg{data: data, recent: recent, err: err}
}

// Update handles messages
func (m RecordsModel) Update(msg tea.Msg) (RecordsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case recordsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
		m.recent = msg.recent
		m.page.setContent(m.renderContent())
		return m, nil

	case tea.WindowSizeMsg:
		m.page.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "r" && m.loader != nil {
			m.loading = true
			return m, m.loadRecords
		}
	}

	var cmd tea.Cmd
	m.page, cmd = m.page.update(msg)
	return m, cmd
}

// View renders the records screen
func (m RecordsModel) View() string {
	if m.loading {
		return "\n  Loading power records..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	return m.page.view()
}

func (m RecordsModel) renderContent() string {
	var sections []string
	sections = append(sections, cardTitleStyle.Render("Power records"))

	if len(m.newRecords) > 0 {
		sections = append(sections, sectionHeader("Set this session"))
		for _, r := range m.newRecords {
			line := fmt.Sprintf("  %-6s %4.0f W  %s", analysis.FormatDuration(r.DurationSeconds), r.Watts, r.Workout)
			if r.Previous > 0 {
				line += fmt.Sprintf("  (was %.0f W)", r.Previous)
			}
			sections = append(sections, recordStyle.Render(line))
		}
		sections = append(sections, "")
	}

	if m.loader == nil {
		sections = append(sections, mutedStyle.Render("  History is off. Run with -record or enable store in the config to keep records."))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, sectionHeader("All time"))
	if len(m.data) == 0 {
		sections = append(sections, mutedStyle.Render("  No power records yet."))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	lines := []string{tableHeaderStyle.Render(fmt.Sprintf("  %-8s  %7s  %-24s  %s", "Duration", "Power", "Workout", "Set"))}
	for _, r := range m.data {
		lines = append(lines, fmt.Sprintf("  %-8s  %5.0f W  %-24s  %s",
			analysis.FormatDuration(r.DurationSeconds),
			r.Watts,
			truncateName(r.WorkoutName, 24),
			humanize.Time(r.AchievedAt),
		))
	}
	sections = append(sections, strings.Join(lines, "\n"))

	if len(m.recent) > 0 {
		sections = append(sections, "", sectionHeader("Recent workouts"), renderRecent(m.recent))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderRecent lists recorded workouts with their stored 5 and 20 minute bests
func renderRecent(recent []service.StoredWorkout) string {
	lines := []string{tableHeaderStyle.Render(fmt.Sprintf("  %-24s  %8s  %6s  %6s  %6s  %s", "Workout", "Time", "NP", "5m", "20m", "Analyzed"))}
	for _, w := range recent {
		lines = append(lines, fmt.Sprintf("  %-24s  %8s  %4.0f W  %6s  %6s  %s",
			truncateName(w.Name, 24),
			formatClock(w.DurationSeconds),
			w.NormalizedPower,
			curveCell(w, 300),
			curveCell(w, 1200),
			humanize.Time(w.AnalyzedAt),
		))
	}
	return strings.Join(lines, "\n")
}

func curveCell(w service.StoredWorkout, durationSeconds int) string {
	if watts := w.CurveWatts(durationSeconds); watts > 0 {
		return fmt.Sprintf("%.0f W", watts)
	}
	return "-"
}
