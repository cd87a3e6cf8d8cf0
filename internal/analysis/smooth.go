package analysis

import (
	"errors"
	"fmt"
)

// Errors returned by the core. A window or bin width outside its valid range is a
// caller bug: durations must be filtered against the series length first.
var (
	ErrInvalidWindow    = errors.New("window length must be positive")
	ErrWindowTooLong    = errors.New("window length exceeds series length")
	ErrEmptySeries      = errors.New("empty series")
	ErrInvalidBinWidth  = errors.New("bin width must be positive")
	ErrInvalidThreshold = errors.New("threshold must be positive")
)

// DefaultSmoothWindow is the trailing window used for the power track and zone shading.
const DefaultSmoothWindow = 10

// Smooth returns the trailing ("valid") moving average of series over window samples.
// The result has len(series)-window+1 elements; element i is the mean of
// series[i:i+window].
func Smooth(series []float64, window int) ([]float64, error) {
	if err := checkWindow(len(series), window); err != nil {
		return nil, err
	}

	out := make([]float64, 0, len(series)-window+1)
	rollingMeans(series, window, func(_ int, mean float64) {
		out = append(out, mean)
	})
	return out, nil
}

// SmoothCentered returns a moving average of the same length as series, centered on
// each sample. Samples outside the series count as zero, so the edges taper.
func SmoothCentered(series []float64, window int) ([]float64, error) {
	if err := checkWindow(len(series), window); err != nil {
		return nil, err
	}

	n := len(series)
	prefix := make([]float64, n+1)
	for i, v := range series {
		prefix[i+1] = prefix[i] + v
	}

	// Window for output i covers [i-back, i+ahead].
	ahead := (window - 1) / 2
	back := window - 1 - ahead

	out := make([]float64, n)
	for i := range out {
		lo := max(i-back, 0)
		hi := min(i+ahead+1, n)
		out[i] = (prefix[hi] - prefix[lo]) / float64(window)
	}
	return out, nil
}

func checkWindow(n, window int) error {
	if window < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}
	if window > n {
		return fmt.Errorf("%w: window %d, series %d", ErrWindowTooLong, window, n)
	}
	return nil
}

// rollingMeans calls fn with the mean of every contiguous window, in order.
// Callers have validated 1 <= window <= len(series).
func rollingMeans(series []float64, window int, fn func(i int, mean float64)) {
	if window == 1 {
		for i, v := range series {
			fn(i, v)
		}
		return
	}

	sum := 0.0
	for i := 0; i < window; i++ {
		sum += series[i]
	}
	w := float64(window)
	fn(0, sum/w)
	for i := window; i < len(series); i++ {
		sum += series[i] - series[i-window]
		fn(i-window+1, sum/w)
	}
}
