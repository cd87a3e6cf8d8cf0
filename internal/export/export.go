// Package export writes per-second samples and peak curves of analyzed
// workouts to CSV or Parquet.
package export

import (
	"fmt"
	"math"
	"path/filepath"

	"powercurve/internal/service"
	"powercurve/internal/workout"
)

// Formats understood by Write
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// SampleRow is one second of a workout
type SampleRow struct {
	Second   int64   `parquet:"name=second, type=INT64"`
	PowerW   float64 `parquet:"name=power_w, type=DOUBLE"`
	Smoothed float64 `parquet:"name=smoothed_w, type=DOUBLE"`
	Centered float64 `parquet:"name=centered_w, type=DOUBLE"`
	Zone     string  `parquet:"name=zone, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	HRBPM    float64 `parquet:"name=hr_bpm, type=DOUBLE"`
	Cadence  float64 `parquet:"name=cadence_rpm, type=DOUBLE"`
	AltM     float64 `parquet:"name=altitude_m, type=DOUBLE"`
	Lat      float64 `parquet:"name=lat, type=DOUBLE"`
	Long     float64 `parquet:"name=long, type=DOUBLE"`
}

// CurveRow is one point of the peak power curve
type CurveRow struct {
	DurationS int64   `parquet:"name=duration_s, type=INT64"`
	Label     string  `parquet:"name=label, type=BYTE_ARRAY, convertedtype=UTF8"`
	Watts     float64 `parquet:"name=watts, type=DOUBLE"`
	Labelled  bool    `parquet:"name=labelled, type=BOOLEAN"`
}

// Samples flattens a report into per-second rows. Values a view doesn't
// cover (the first smoothing window, absent channels) are NaN.
func Samples(r *service.Report) []SampleRow {
	channel := func(ch workout.Channel) []float64 {
		return r.Workout.Channel(ch)
	}
	hr, cad, ele := channel(workout.Hr), channel(workout.Cadence), channel(workout.Ele)
	lat, long := channel(workout.Lat), channel(workout.Long)

	offset := r.SmoothOffset()
	rows := make([]SampleRow, len(r.Power))
	for i, p := range r.Power {
		row := SampleRow{
			Second:   int64(i),
			PowerW:   p,
			Smoothed: math.NaN(),
			Centered: at(r.Centered, i),
			HRBPM:    at(hr, i),
			Cadence:  at(cad, i),
			AltM:     at(ele, i),
			Lat:      at(lat, i),
			Long:     at(long, i),
		}
		if j := i - offset; j >= 0 && j < len(r.Smoothed) {
			row.Smoothed = r.Smoothed[j]
			row.Zone = r.Zones[j].String()
		}
		rows[i] = row
	}
	return rows
}

// Curve flattens the peak curve, marking the labelled durations
func Curve(r *service.Report) []CurveRow {
	labelled := make(map[int]bool, len(r.Labels))
	for _, p := range r.Labels {
		labelled[p.DurationSeconds] = true
	}
	rows := make([]CurveRow, len(r.Curve))
	for i, p := range r.Curve {
		rows[i] = CurveRow{
			DurationS: int64(p.DurationSeconds),
			Label:     formatDuration(p.DurationSeconds),
			Watts:     p.Watts,
			Labelled:  labelled[p.DurationSeconds],
		}
	}
	return rows
}

// Write exports a report into dir as <name>_samples.<ext> and <name>_curve.<ext>
// and returns the written paths.
func Write(dir, format string, r *service.Report) ([]string, error) {
	samplesPath := filepath.Join(dir, r.Name()+"_samples."+format)
	curvePath := filepath.Join(dir, r.Name()+"_curve."+format)

	var err error
	switch format {
	case FormatCSV:
		if err = writeSamplesCSV(samplesPath, Samples(r)); err == nil {
			err = writeCurveCSV(curvePath, Curve(r))
		}
	case FormatParquet:
		if err = writeParquetFile(samplesPath, new(SampleRow), Samples(r)); err == nil {
			err = writeParquetFile(curvePath, new(CurveRow), Curve(r))
		}
	default:
		return nil, fmt.Errorf("unsupported export format %q (expected csv|parquet)", format)
	}
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", r.Name(), err)
	}
	return []string{samplesPath, curvePath}, nil
}

func at(data []float64, i int) float64 {
	if i < len(data) {
		return data[i]
	}
	return math.NaN()
}

func formatDuration(seconds int) string {
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
