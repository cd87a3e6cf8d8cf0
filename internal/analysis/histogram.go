package analysis

import (
	"fmt"
	"math"
)

var inf = math.Inf(1)

// DefaultBinWidth is the power distribution bin width in watts.
const DefaultBinWidth = 10.0

// Bin is one power distribution bucket covering [Start, Start+width).
type Bin struct {
	Start    float64
	Fraction float64
}

// Histogram returns the fraction of samples falling in each binWidth-wide bucket,
// from 0 up to the series maximum. Every sample weighs 1/len(power). A value on a
// bin edge belongs to the bin it starts; the last bin also holds the maximum.
// Negative samples are counted in the first bin.
func Histogram(power []float64, binWidth float64) ([]Bin, error) {
	if binWidth <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidBinWidth, binWidth)
	}
	if len(power) == 0 {
		return nil, ErrEmptySeries
	}

	peak := math.Inf(-1)
	for _, v := range power {
		peak = math.Max(peak, v)
	}
	count := max(int(math.Ceil(peak/binWidth)), 1)

	weight := 1 / float64(len(power))
	bins := make([]Bin, count)
	for i := range bins {
		bins[i].Start = float64(i) * binWidth
	}
	for _, v := range power {
		idx := int(math.Floor(v / binWidth))
		idx = min(max(idx, 0), count-1)
		bins[idx].Fraction += weight
	}
	return bins, nil
}

// PlotRange is the upper axis bound for power charts: the smoothed maximum rounded
// up to a whole bin, never below floor.
func PlotRange(smoothed []float64, binWidth, floor float64) float64 {
	peak := 0.0
	for _, v := range smoothed {
		peak = math.Max(peak, v)
	}
	if binWidth > 0 {
		peak = binWidth * math.Ceil(peak/binWidth)
	}
	return math.Max(peak, floor)
}
