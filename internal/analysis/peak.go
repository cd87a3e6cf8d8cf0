package analysis

import (
	"fmt"
	"math"
	"slices"
)

// PeakPoint is the best average power sustained for DurationSeconds.
type PeakPoint struct {
	DurationSeconds int
	Watts           float64
}

// LabelDurations are the durations annotated on the peak power curve.
var LabelDurations = []int{1, 2, 5, 10, 15, 30, 60, 120, 300, 600, 1200, 1800, 3600}

// DefaultMaxDuration bounds the dense peak curve (one point per second).
const DefaultMaxDuration = 3600

// DenseDurations returns 1..maxSeconds.
func DenseDurations(maxSeconds int) []int {
	if maxSeconds < 1 {
		return nil
	}
	out := make([]int, maxSeconds)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// TruncateLarger returns the elements of ascending durations that are no larger
// than n, along with how many were cut.
func TruncateLarger(durations []int, n int) (kept []int, dropped int) {
	for i, d := range durations {
		if d > n {
			return durations[:i], len(durations) - i
		}
	}
	return durations, 0
}

// PeakCurve computes, for each duration, the maximum moving average over any
// contiguous window of that many samples. Durations are sorted and de-duplicated;
// those longer than the series are dropped, which is expected for short workouts.
// An empty series yields an empty curve.
func PeakCurve(power []float64, durations []int) ([]PeakPoint, error) {
	if len(power) == 0 {
		return []PeakPoint{}, nil
	}

	sorted := slices.Clone(durations)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	if len(sorted) > 0 && sorted[0] < 1 {
		return nil, fmt.Errorf("%w: duration %d", ErrInvalidWindow, sorted[0])
	}

	kept, _ := TruncateLarger(sorted, len(power))
	curve := make([]PeakPoint, 0, len(kept))
	for _, d := range kept {
		curve = append(curve, PeakPoint{DurationSeconds: d, Watts: peakAt(power, d)})
	}
	return curve, nil
}

func peakAt(power []float64, window int) float64 {
	best := math.Inf(-1)
	rollingMeans(power, window, func(_ int, mean float64) {
		if mean > best {
			best = mean
		}
	})
	return best
}

// PointsAt picks the curve points whose durations appear in labels, in curve order.
func PointsAt(curve []PeakPoint, labels []int) []PeakPoint {
	var out []PeakPoint
	for _, p := range curve {
		if slices.Contains(labels, p.DurationSeconds) {
			out = append(out, p)
		}
	}
	return out
}

// FormatDuration renders a duration label the way the chart axes show it: "30s", "5m".
func FormatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%.0fm", float64(seconds)/60)
}
