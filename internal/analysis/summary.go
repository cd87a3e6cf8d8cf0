package analysis

import (
	"math"
	"slices"
)

const (
	secondsPerHour = 3600.0

	// normalizedPowerWindow is the rolling window of the normalized power model.
	normalizedPowerWindow = 30
)

// Summary holds whole-workout power statistics.
type Summary struct {
	DurationSeconds  int
	AvgPower         float64
	MaxPower         float64
	NormalizedPower  float64
	VariabilityIndex float64
	WorkKilojoules   float64
	IntensityFactor  float64
	TrainingStress   float64
}

// Summarize computes workout totals from a 1 Hz power series. Intensity factor and
// training stress are left at zero when ftp is not positive.
func Summarize(power []float64, ftp float64) Summary {
	s := Summary{DurationSeconds: len(power)}
	if len(power) == 0 {
		return s
	}

	total := 0.0
	for _, p := range power {
		total += p
	}
	s.AvgPower = total / float64(len(power))
	s.MaxPower = slices.Max(power)
	s.WorkKilojoules = total / 1000
	s.NormalizedPower = NormalizedPower(power)

	if s.AvgPower > 0 {
		s.VariabilityIndex = s.NormalizedPower / s.AvgPower
	}
	if ftp > 0 {
		s.IntensityFactor = s.NormalizedPower / ftp
		s.TrainingStress = (float64(len(power)) / secondsPerHour) * s.IntensityFactor * s.IntensityFactor * 100
	}
	return s
}

// NormalizedPower is the fourth root of the mean fourth power of the 30 s rolling
// average. Series shorter than the window fall back to the plain average.
func NormalizedPower(power []float64) float64 {
	if len(power) == 0 {
		return 0
	}
	if len(power) < normalizedPowerWindow {
		total := 0.0
		for _, p := range power {
			total += p
		}
		return total / float64(len(power))
	}

	fourth := 0.0
	count := 0
	rollingMeans(power, normalizedPowerWindow, func(_ int, mean float64) {
		fourth += math.Pow(mean, 4)
		count++
	})
	return math.Pow(fourth/float64(count), 0.25)
}
