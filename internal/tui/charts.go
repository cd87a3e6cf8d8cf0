package tui

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

const chartHeight = 10

// plot draws a terminal line chart no wider than width columns
func plot(data []float64, width int, caption string) string {
	if len(data) < 2 {
		return mutedStyle.Render("  not enough data to chart")
	}
	width = chartWidth(width)
	return asciigraph.Plot(downsample(data, width),
		asciigraph.Height(chartHeight),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
	)
}

// plotMany overlays several series on one chart
func plotMany(series [][]float64, width int, caption string) string {
	var data [][]float64
	for _, s := range series {
		if len(s) >= 2 {
			data = append(data, downsample(s, chartWidth(width)))
		}
	}
	if len(data) == 0 {
		return mutedStyle.Render("  not enough data to chart")
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth(width)),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
	)
}

// leave room for the y-axis labels
func chartWidth(width int) int {
	w := width - 12
	if w < 20 {
		w = 20
	}
	if w > 120 {
		w = 120
	}
	return w
}

// downsample averages data into targetLen buckets
func downsample(data []float64, targetLen int) []float64 {
	if len(data) <= targetLen || targetLen <= 0 {
		return data
	}

	result := make([]float64, targetLen)
	ratio := float64(len(data)) / float64(targetLen)
	for i := range result {
		start := int(float64(i) * ratio)
		end := int(float64(i+1) * ratio)
		if end > len(data) {
			end = len(data)
		}
		if end <= start {
			end = start + 1
		}
		sum := 0.0
		for _, v := range data[start:end] {
			sum += v
		}
		result[i] = sum / float64(end-start)
	}
	return result
}

// formatClock renders seconds as h:mm:ss or m:ss
func formatClock(seconds int) string {
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
