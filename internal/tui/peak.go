package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"powercurve/internal/analysis"
	"powercurve/internal/service"
)

// renderPeak charts the labelled points of every workout's peak curve, which are
// close to evenly spaced on the log duration axis, and tabulates them side by side
// with the current workout first.
func renderPeak(reports []*service.Report, current int, width int) string {
	r := reports[current]
	ordered := []*service.Report{r}
	for i, rep := range reports {
		if i != current {
			ordered = append(ordered, rep)
		}
	}

	var sections []string
	sections = append(sections, cardTitleStyle.Render("Peak power curve"))

	series := make([][]float64, len(ordered))
	for i, rep := range ordered {
		for _, p := range rep.Labels {
			series[i] = append(series[i], p.Watts)
		}
	}
	caption := "best average watts at " + durationAxis(r.Labels)
	if len(ordered) == 1 {
		sections = append(sections, plot(series[0], width, caption))
	} else {
		sections = append(sections, plotMany(series, width, caption))
	}
	sections = append(sections, "")
	sections = append(sections, sectionHeader("Best efforts"))
	sections = append(sections, renderPeakTable(ordered))

	if r.DroppedDurations > 0 {
		sections = append(sections, "", mutedStyle.Render(fmt.Sprintf("  %d durations longer than %s skipped", r.DroppedDurations, formatClock(len(r.Power)))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func durationAxis(labels []analysis.PeakPoint) string {
	names := make([]string, len(labels))
	for i, p := range labels {
		names[i] = analysis.FormatDuration(p.DurationSeconds)
	}
	return strings.Join(names, " ")
}

func renderPeakTable(reports []*service.Report) string {
	longest := reports[0]
	for _, r := range reports {
		if len(r.Labels) > len(longest.Labels) {
			longest = r
		}
	}

	header := fmt.Sprintf("  %-8s", "Duration")
	for _, r := range reports {
		header += fmt.Sprintf("  %12s", truncateName(r.Name(), 12))
	}
	lines := []string{tableHeaderStyle.Render(header)}

	for i, p := range longest.Labels {
		line := fmt.Sprintf("  %-8s", analysis.FormatDuration(p.DurationSeconds))
		for _, r := range reports {
			if i < len(r.Labels) {
				line += fmt.Sprintf("  %10.0f W", r.Labels[i].Watts)
			} else {
				line += fmt.Sprintf("  %12s", "-")
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func truncateName(name string, n int) string {
	r := []rune(name)
	if len(r) <= n {
		return name
	}
	return string(r[:n-3]) + "..."
}
