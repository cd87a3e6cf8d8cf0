package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"powercurve/internal/service"
)

// bins above this are folded into the last row, like the figure's x-limit
const distributionCap = 550.0

func renderDistribution(r *service.Report, width int) string {
	var sections []string

	sections = append(sections, cardTitleStyle.Render(fmt.Sprintf("%s power distribution (%.0f W bins)", r.Name(), r.BinWidth)))

	percent := make([]float64, len(r.Histogram))
	for i, b := range r.Histogram {
		percent[i] = 100 * b.Fraction
	}
	sections = append(sections, plot(percent, width, "% of time by power bin"))
	sections = append(sections, "")
	sections = append(sections, sectionHeader("Bins"))
	sections = append(sections, renderBins(r))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderBins(r *service.Report) string {
	type row struct {
		label    string
		fraction float64
	}
	var rows []row
	peak := 0.0
	for _, b := range r.Histogram {
		if b.Start >= distributionCap && len(rows) > 0 {
			last := &rows[len(rows)-1]
			if !strings.HasSuffix(last.label, "+") {
				rows = append(rows, row{label: fmt.Sprintf("%4.0f+", distributionCap)})
				last = &rows[len(rows)-1]
			}
			last.fraction += b.Fraction
			peak = max(peak, last.fraction)
			continue
		}
		rows = append(rows, row{label: fmt.Sprintf("%4.0f-%-4.0f", b.Start, b.Start+r.BinWidth), fraction: b.Fraction})
		peak = max(peak, b.Fraction)
	}

	const maxBarWidth = 40
	var lines []string
	lines = append(lines, tableHeaderStyle.Render(fmt.Sprintf("  %-10s  %6s", "Watts", "Time")))
	for _, rw := range rows {
		if rw.fraction == 0 {
			continue
		}
		scaled := 0.0
		if peak > 0 {
			scaled = rw.fraction / peak
		}
		lines = append(lines, fmt.Sprintf("  %-10s  %5.1f%% %s", rw.label, 100*rw.fraction, RenderBar(scaled, maxBarWidth, secondaryColor)))
	}
	return strings.Join(lines, "\n")
}
