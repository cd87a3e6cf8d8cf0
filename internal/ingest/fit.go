package ingest

import (
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/tormoder/fit"

	"powercurve/internal/workout"
)

// ParseFIT reads the record messages of a FIT activity file.
func ParseFIT(path string, opts Options) (workout.RawSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fit: %w", err)
	}
	defer f.Close()

	decoded, err := fit.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", workout.ErrMalformedInput, err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("%w: activity file expected: %v", workout.ErrMalformedInput, err)
	}

	opts.logger().Debug("fit activity", "records", len(activity.Records), "sessions", len(activity.Sessions))
	return recordsToRaw(activity.Records)
}

// recordsToRaw orders records by timestamp and maps invalid sentinels to
// missing samples, except power which reads 0 W.
func recordsToRaw(records []*fit.RecordMsg) (workout.RawSeries, error) {
	rows := make([]*fit.RecordMsg, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			rows = append(rows, rec)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no record messages", workout.ErrEmptySeries)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})

	n := len(rows)
	raw := workout.RawSeries{
		workout.Power:   make([]*float64, n),
		workout.Hr:      make([]*float64, n),
		workout.Cadence: make([]*float64, n),
		workout.Lat:     make([]*float64, n),
		workout.Long:    make([]*float64, n),
		workout.Ele:     make([]*float64, n),
		workout.Time:    make([]*float64, n),
	}

	var start time.Time
	for i, rec := range rows {
		if ts := rec.Timestamp; !ts.IsZero() && !fit.IsBaseTime(ts) {
			if start.IsZero() {
				start = ts
			}
			raw[workout.Time][i] = present(ts.Sub(start).Seconds())
		}
		// the invalid sentinel means no reading; record it as 0 W like GPX
		power := 0.0
		if rec.Power != math.MaxUint16 {
			power = float64(rec.Power)
		}
		raw[workout.Power][i] = present(power)
		if rec.HeartRate != math.MaxUint8 {
			raw[workout.Hr][i] = present(float64(rec.HeartRate))
		}
		if rec.Cadence != math.MaxUint8 {
			raw[workout.Cadence][i] = present(float64(rec.Cadence))
		}
		if !rec.PositionLat.Invalid() && !rec.PositionLong.Invalid() {
			raw[workout.Lat][i] = present(rec.PositionLat.Degrees())
			raw[workout.Long][i] = present(rec.PositionLong.Degrees())
		}
		if alt := altitude(rec); !math.IsNaN(alt) {
			raw[workout.Ele][i] = present(alt)
		}
	}
	return raw, nil
}

func altitude(rec *fit.RecordMsg) float64 {
	if alt := rec.GetEnhancedAltitudeScaled(); !math.IsNaN(alt) {
		return alt
	}
	return rec.GetAltitudeScaled()
}
