package analysis

import (
	"fmt"
	"slices"
)

// Zone is a power intensity bucket relative to FTP, ordered from lowest to highest.
type Zone int

const (
	ZoneRecovery Zone = iota
	ZoneEndurance
	ZoneTempo
	ZoneThreshold
	ZoneVO2Max
)

// NumZones is the number of intensity zones.
const NumZones = 5

var zoneNames = [NumZones]string{"Recovery", "Endurance", "Tempo", "Threshold", "VO2 Max"}

func (z Zone) String() string {
	if z < 0 || int(z) >= NumZones {
		return fmt.Sprintf("Zone(%d)", int(z))
	}
	return zoneNames[z]
}

// DefaultZoneMultipliers are the FTP fractions separating the five zones, highest first.
var DefaultZoneMultipliers = []float64{1.06, 0.95, 0.84, 0.69}

// ZoneScheme holds the boundary multipliers, highest first. Zone VO2 Max is
// [m[0]*FTP, inf), Threshold [m[1]*FTP, m[0]*FTP) and so on down to Recovery,
// which covers everything below m[3]*FTP.
type ZoneScheme struct {
	Multipliers []float64
}

// DefaultZoneScheme returns the scheme built from DefaultZoneMultipliers.
func DefaultZoneScheme() ZoneScheme {
	return ZoneScheme{Multipliers: slices.Clone(DefaultZoneMultipliers)}
}

// Validate checks that there are NumZones-1 strictly decreasing positive multipliers.
func (s ZoneScheme) Validate() error {
	if len(s.Multipliers) != NumZones-1 {
		return fmt.Errorf("zone scheme needs %d multipliers, got %d", NumZones-1, len(s.Multipliers))
	}
	for i, m := range s.Multipliers {
		if m <= 0 {
			return fmt.Errorf("zone multiplier %d must be positive, got %v", i, m)
		}
		if i > 0 && m >= s.Multipliers[i-1] {
			return fmt.Errorf("zone multipliers must be strictly decreasing, got %v after %v", m, s.Multipliers[i-1])
		}
	}
	return nil
}

// Bounds returns the watt range [lo, hi) of zone z for the given threshold.
// Recovery has lo = 0 and VO2 Max has hi = +Inf.
func (s ZoneScheme) Bounds(z Zone, threshold float64) (lo, hi float64) {
	// Multipliers are highest first: zone VO2Max uses index 0 as its lower edge.
	top := NumZones - 1 - int(z)
	if top < len(s.Multipliers) {
		lo = s.Multipliers[top] * threshold
	}
	if top == 0 {
		return lo, inf
	}
	return lo, s.Multipliers[top-1] * threshold
}

// ZoneOf returns the zone containing watts.
func (s ZoneScheme) ZoneOf(watts, threshold float64) Zone {
	for i, m := range s.Multipliers {
		if watts >= m*threshold {
			return Zone(NumZones - 1 - i)
		}
	}
	return ZoneRecovery
}

// Classify assigns every sample of a smoothed power series to exactly one zone.
func Classify(smoothed []float64, threshold float64, scheme ZoneScheme) ([]Zone, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	if err := scheme.Validate(); err != nil {
		return nil, err
	}

	out := make([]Zone, len(smoothed))
	for i, v := range smoothed {
		out[i] = scheme.ZoneOf(v, threshold)
	}
	return out, nil
}

// Masks expands a zone assignment into one boolean mask per zone.
func Masks(assignment []Zone) [NumZones][]bool {
	var masks [NumZones][]bool
	for z := range masks {
		masks[z] = make([]bool, len(assignment))
	}
	for i, z := range assignment {
		masks[z][i] = true
	}
	return masks
}

// ZoneTime is the time spent in one zone.
type ZoneTime struct {
	Zone     Zone
	Seconds  int
	Fraction float64
}

// TimeInZone counts samples (seconds at 1 Hz) per zone.
func TimeInZone(assignment []Zone) []ZoneTime {
	counts := make([]int, NumZones)
	for _, z := range assignment {
		counts[z]++
	}

	out := make([]ZoneTime, NumZones)
	for z := range out {
		out[z] = ZoneTime{Zone: Zone(z), Seconds: counts[z]}
		if len(assignment) > 0 {
			out[z].Fraction = float64(counts[z]) / float64(len(assignment))
		}
	}
	return out
}
