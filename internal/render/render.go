// Package render draws analysis reports as a single PNG figure.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"powercurve/internal/analysis"
	"powercurve/internal/service"
)

// Options size the figure
type Options struct {
	Width  int
	Height int
}

// DefaultOptions is a 16x12 inch figure at 100 dpi
func DefaultOptions() Options {
	return Options{Width: 1600, Height: 1200}
}

// ErrNoReports is returned when there is nothing to draw
var ErrNoReports = errors.New("no reports to render")

// Figure renders one or more reports as PNG. A single workout gets the power
// track with zone shading above the distribution and peak curve panels; several
// workouts are overlaid in every panel.
func Figure(w io.Writer, reports []*service.Report, opts Options) error {
	if len(reports) == 0 {
		return ErrNoReports
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultOptions()
	}

	topH := opts.Height / 2
	bottomH := opts.Height - topH
	leftW := opts.Width / 2
	rightW := opts.Width - leftW

	panels := []struct {
		chart chart.Chart
		at    image.Point
	}{
		{powerChart(reports, opts.Width, topH), image.Pt(0, 0)},
		{distributionChart(reports, leftW, bottomH), image.Pt(0, topH)},
		{peakChart(reports, rightW, bottomH), image.Pt(leftW, topH)},
	}

	canvas := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for _, p := range panels {
		img, err := renderPanel(p.chart)
		if err != nil {
			return fmt.Errorf("rendering %q: %w", p.chart.Title, err)
		}
		r := img.Bounds().Sub(img.Bounds().Min).Add(p.at)
		draw.Draw(canvas, r, img, img.Bounds().Min, draw.Over)
	}

	if err := png.Encode(w, canvas); err != nil {
		return fmt.Errorf("encoding figure: %w", err)
	}
	return nil
}

func renderPanel(ch chart.Chart) (image.Image, error) {
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

var zoneColors = [analysis.NumZones]drawing.Color{
	analysis.ZoneRecovery:  {R: 128, G: 128, B: 128, A: 51},
	analysis.ZoneEndurance: {R: 0, G: 128, B: 0, A: 51},
	analysis.ZoneTempo:     {R: 255, G: 255, B: 0, A: 51},
	analysis.ZoneThreshold: {R: 255, G: 165, B: 0, A: 51},
	analysis.ZoneVO2Max:    {R: 255, G: 0, B: 0, A: 51},
}

var workoutColors = []drawing.Color{chart.ColorBlue, chart.ColorRed, chart.ColorGreen, chart.ColorOrange, chart.ColorCyan}

func workoutColor(i int) drawing.Color {
	return workoutColors[i%len(workoutColors)]
}

func lineStyle(c drawing.Color, width float64) chart.Style {
	return chart.Style{StrokeColor: c, StrokeWidth: width}
}

func padding() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}
}

// placeholder keeps go-chart happy when a panel has no data to plot
func placeholder(xMax, yMax float64) chart.Series {
	return chart.ContinuousSeries{
		Style:   chart.Style{Hidden: true},
		XValues: []float64{0, xMax},
		YValues: []float64{0, yMax},
	}
}

// minutes maps sample indices offset..offset+n-1 to minutes
func minutes(offset, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(offset+i) / 60
	}
	return xs
}

func powerChart(reports []*service.Report, width, height int) chart.Chart {
	var series []chart.Series
	yMax, xMax := 1.0, 1.0
	for _, r := range reports {
		yMax = math.Max(yMax, r.PlotMax)
		xMax = math.Max(xMax, float64(len(r.Power))/60)
	}

	title := reports[0].Name()
	if len(reports) == 1 {
		r := reports[0]
		xs := minutes(r.SmoothOffset(), len(r.Smoothed))
		for z := analysis.NumZones - 1; z >= 0; z-- {
			ys := make([]float64, len(r.Smoothed))
			inZone := false
			for i, in := range r.Masks[z] {
				if in {
					ys[i] = r.Smoothed[i]
					inZone = true
				}
			}
			if !inZone {
				continue
			}
			series = append(series, chart.ContinuousSeries{
				Name:    analysis.Zone(z).String(),
				Style:   chart.Style{StrokeColor: zoneColors[z], StrokeWidth: 1, FillColor: zoneColors[z]},
				XValues: xs,
				YValues: ys,
			})
		}
		if len(r.Smoothed) > 0 {
			series = append(series, chart.ContinuousSeries{
				Name:    fmt.Sprintf("%s_avg", analysis.FormatDuration(r.SmoothWindow)),
				Style:   lineStyle(chart.ColorBlue, 1),
				XValues: xs,
				YValues: r.Smoothed,
			})
		}
	} else {
		title = fmt.Sprintf("smooth=%d", reports[0].CompareWindow)
		for i, r := range reports {
			if len(r.Centered) == 0 {
				continue
			}
			series = append(series, chart.ContinuousSeries{
				Name:    r.Name(),
				Style:   lineStyle(workoutColor(i).WithAlpha(160), 2),
				XValues: minutes(0, len(r.Centered)),
				YValues: r.Centered,
			})
		}
	}
	if len(series) == 0 {
		series = append(series, placeholder(xMax, yMax))
	}

	ch := chart.Chart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: padding(),
		XAxis: chart.XAxis{
			Name:  "Time (min)",
			Range: &chart.ContinuousRange{Min: 0, Max: xMax},
			Ticks: linearTicks(0, xMax, 5, "%.0f"),
		},
		YAxis: chart.YAxis{
			Name:  "Power (W)",
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
			Ticks: linearTicks(0, yMax, 50, "%.0f"),
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch
}

func distributionChart(reports []*service.Report, width, height int) chart.Chart {
	var series []chart.Series
	xMax, yMax := 0.0, 0.12
	for i, r := range reports {
		xMax = math.Max(xMax, r.PlotMax)
		xs := make([]float64, 0, 2*len(r.Histogram))
		ys := make([]float64, 0, 2*len(r.Histogram))
		for _, b := range r.Histogram {
			xs = append(xs, b.Start, b.Start+r.BinWidth)
			ys = append(ys, b.Fraction, b.Fraction)
			yMax = math.Max(yMax, b.Fraction)
		}
		style := chart.Style{StrokeColor: chart.ColorAlternateGray, StrokeWidth: 1, FillColor: chart.ColorAlternateGray.WithAlpha(128)}
		if len(reports) > 1 {
			style = chart.Style{StrokeColor: workoutColor(i), StrokeWidth: 1, FillColor: workoutColor(i).WithAlpha(48)}
		}
		series = append(series, chart.ContinuousSeries{Name: r.Name(), Style: style, XValues: xs, YValues: ys})
	}
	xMax = math.Min(math.Max(xMax, 1), 550)

	ch := chart.Chart{
		Title:      "Power distribution",
		Width:      width,
		Height:     height,
		Background: padding(),
		XAxis: chart.XAxis{
			Name:  "Power (W)",
			Range: &chart.ContinuousRange{Min: 0, Max: xMax},
			Ticks: linearTicks(0, xMax, 50, "%.0f"),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f%%", 100*f)
				}
				return ""
			},
		},
		Series: series,
	}
	if len(reports) > 1 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch
}

// the peak curve is drawn on log10(seconds)
var peakXMin, peakXMax = math.Log10(0.9), math.Log10(4300)

func peakChart(reports []*service.Report, width, height int) chart.Chart {
	var series []chart.Series
	lo, hi := math.Inf(1), math.Inf(-1)
	var labels []int

	for i, r := range reports {
		if len(r.Curve) == 0 {
			continue
		}
		xs := make([]float64, len(r.Curve))
		ys := make([]float64, len(r.Curve))
		for j, p := range r.Curve {
			xs[j] = math.Log10(float64(p.DurationSeconds))
			ys[j] = p.Watts
			lo, hi = math.Min(lo, p.Watts), math.Max(hi, p.Watts)
		}
		c := drawing.ColorBlack
		if len(reports) > 1 {
			c = workoutColor(i)
		}
		series = append(series, chart.ContinuousSeries{Name: r.Name(), Style: lineStyle(c, 2), XValues: xs, YValues: ys})

		annotations := make([]chart.Value2, len(r.Labels))
		for j, p := range r.Labels {
			annotations[j] = chart.Value2{
				XValue: math.Log10(float64(p.DurationSeconds)),
				YValue: p.Watts + 10,
				Label:  fmt.Sprintf("%.0f", p.Watts),
			}
		}
		if len(annotations) > 0 {
			series = append(series, chart.AnnotationSeries{
				Style:       chart.Style{FontColor: chart.ColorAlternateGray, StrokeColor: chart.ColorAlternateGray},
				Annotations: annotations,
			})
		}
		if len(r.Labels) > len(labels) {
			labels = labels[:0]
			for _, p := range r.Labels {
				labels = append(labels, p.DurationSeconds)
			}
		}
	}
	if len(series) == 0 {
		lo, hi = 0, 1
		series = append(series, placeholder(peakXMax, hi))
	}

	ticks := make([]chart.Tick, len(labels))
	for i, d := range labels {
		ticks[i] = chart.Tick{Value: math.Log10(float64(d)), Label: analysis.FormatDuration(d)}
	}

	ch := chart.Chart{
		Title:      "Peak power curve",
		Width:      width,
		Height:     height,
		Background: padding(),
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: peakXMin, Max: peakXMax},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  "Power (W)",
			Range: &chart.ContinuousRange{Min: math.Max(0, lo-10), Max: hi + 30},
		},
		Series: series,
	}
	if len(reports) > 1 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch
}

// linearTicks places ticks every step from lo to hi, thinning them to at most
// a dozen.
func linearTicks(lo, hi, step float64, format string) []chart.Tick {
	if hi <= lo || step <= 0 {
		return nil
	}
	for (hi-lo)/step > 12 {
		step *= 2
	}
	var ticks []chart.Tick
	for v := lo; v <= hi+1e-9; v += step {
		ticks = append(ticks, chart.Tick{Value: v, Label: fmt.Sprintf(format, v)})
	}
	return ticks
}
