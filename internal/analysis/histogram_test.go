package analysis

import (
	"errors"
	"math"
	"testing"
)

func TestHistogram_FractionsSumToOne(t *testing.T) {
	for _, n := range []int{1, 7, 600, 3601} {
		series := rampSeries(n)
		bins, err := Histogram(series, DefaultBinWidth)
		if err != nil {
			t.Fatalf("Histogram(n=%d) error: %v", n, err)
		}
		total := 0.0
		for _, b := range bins {
			total += b.Fraction
		}
		if math.Abs(total-1) > 1e-9 {
			t.Errorf("Histogram(n=%d) fractions sum to %v, want 1", n, total)
		}
	}
}

func TestHistogram_Binning(t *testing.T) {
	// 30 is the maximum and sits on an edge, so the last bin is closed.
	series := []float64{0, 5, 10, 19.9, 20, 30}
	bins, err := Histogram(series, 10)
	if err != nil {
		t.Fatalf("Histogram() error: %v", err)
	}

	if len(bins) != 3 {
		t.Fatalf("len(bins) = %d, want 3", len(bins))
	}
	wantStarts := []float64{0, 10, 20}
	wantCounts := []float64{2, 2, 2}
	for i, b := range bins {
		if b.Start != wantStarts[i] {
			t.Errorf("bins[%d].Start = %v, want %v", i, b.Start, wantStarts[i])
		}
		if want := wantCounts[i] / float64(len(series)); math.Abs(b.Fraction-want) > 1e-12 {
			t.Errorf("bins[%d].Fraction = %v, want %v", i, b.Fraction, want)
		}
	}
}

func TestHistogram_BinCount(t *testing.T) {
	tests := []struct {
		max  float64
		want int
	}{
		{0, 1},
		{9.5, 1},
		{10, 1},
		{10.5, 2},
		{401, 41},
	}
	for _, tc := range tests {
		bins, err := Histogram([]float64{0, tc.max}, 10)
		if err != nil {
			t.Fatalf("Histogram() error: %v", err)
		}
		if len(bins) != tc.want {
			t.Errorf("max %v: len(bins) = %d, want %d", tc.max, len(bins), tc.want)
		}
	}
}

func TestHistogram_Errors(t *testing.T) {
	if _, err := Histogram(nil, 10); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("Histogram(empty) error = %v, want ErrEmptySeries", err)
	}
	if _, err := Histogram([]float64{1}, 0); !errors.Is(err, ErrInvalidBinWidth) {
		t.Errorf("Histogram(width=0) error = %v, want ErrInvalidBinWidth", err)
	}
}

func TestPlotRange(t *testing.T) {
	tests := []struct {
		smoothed []float64
		want     float64
	}{
		{[]float64{120, 180}, 400},
		{[]float64{120, 452}, 460},
		{[]float64{500}, 500},
		{nil, 400},
	}
	for _, tc := range tests {
		if got := PlotRange(tc.smoothed, 10, 400); got != tc.want {
			t.Errorf("PlotRange(%v) = %v, want %v", tc.smoothed, got, tc.want)
		}
	}
}
