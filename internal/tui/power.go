package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"powercurve/internal/analysis"
	"powercurve/internal/service"
)

func renderPower(r *service.Report, width int) string {
	var sections []string

	sections = append(sections, cardTitleStyle.Render(fmt.Sprintf("%s (FTP %.0f W)", r.Name(), r.Threshold)))
	sections = append(sections, renderSummary(r.Summary))
	sections = append(sections, "")

	sections = append(sections, sectionHeader(fmt.Sprintf("%s average power", analysis.FormatDuration(r.SmoothWindow))))
	sections = append(sections, plot(r.Smoothed, width, "watts over time"))
	sections = append(sections, "")

	sections = append(sections, sectionHeader("Time in zone"))
	sections = append(sections, renderZones(r))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderSummary(s analysis.Summary) string {
	lines := []string{
		RenderMetric("Duration", formatClock(s.DurationSeconds)),
		RenderMetric("Average power", fmt.Sprintf("%.0f W", s.AvgPower)),
		RenderMetric("Normalized power", fmt.Sprintf("%.0f W", s.NormalizedPower)),
		RenderMetric("Max power", fmt.Sprintf("%.0f W", s.MaxPower)),
		RenderMetric("Work", humanize.Comma(int64(math.Round(s.WorkKilojoules)))+" kJ"),
	}
	if s.IntensityFactor > 0 {
		lines = append(lines,
			RenderMetric("Intensity factor", fmt.Sprintf("%.2f", s.IntensityFactor)),
			RenderMetric("Training stress", fmt.Sprintf("%.0f", s.TrainingStress)),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderZones(r *service.Report) string {
	if len(r.Zones) == 0 {
		return mutedStyle.Render("  workout is shorter than the smoothing window")
	}

	var lines []string
	const maxBarWidth = 30
	// highest zone first, as on the figure legend
	for z := analysis.NumZones - 1; z >= 0; z-- {
		zt := r.TimeInZone[z]
		lo, hi := r.ZoneScheme.Bounds(zt.Zone, r.Threshold)
		bounds := fmt.Sprintf("%.0f-%.0f W", lo, hi)
		if math.IsInf(hi, 1) {
			bounds = fmt.Sprintf("%.0f+ W", lo)
		}
		label := fmt.Sprintf("  %-10s %-11s", zt.Zone, bounds)
		bar := RenderBar(zt.Fraction, maxBarWidth, zoneColors[z])
		pad := strings.Repeat(" ", maxBarWidth-lipgloss.Width(bar))
		lines = append(lines, fmt.Sprintf("%s%s%s %5.1f%% (%s)", label, bar, pad, 100*zt.Fraction, formatClock(zt.Seconds)))
	}
	return strings.Join(lines, "\n")
}
