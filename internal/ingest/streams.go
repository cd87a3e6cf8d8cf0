package ingest

import (
	"fmt"
	"os"

	"powercurve/internal/strava"
	"powercurve/internal/workout"
)

// ParseStreams reads a Strava activity streams export (.json).
func ParseStreams(path string, opts Options) (workout.RawSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening streams: %w", err)
	}
	defer f.Close()

	s, err := strava.DecodeStreams(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", workout.ErrMalformedInput, err)
	}
	if !s.HasWatts() {
		opts.logger().Warn("streams export has no watts stream", "file", path)
	}
	return streamsToRaw(s)
}

// streamsToRaw pads shorter streams with missing samples up to the longest one.
func streamsToRaw(s *strava.Streams) (workout.RawSeries, error) {
	n := s.Len()
	if n == 0 {
		return nil, fmt.Errorf("%w: no stream data", workout.ErrEmptySeries)
	}

	raw := workout.RawSeries{workout.Power: make([]*float64, n)}
	if s.Watts != nil {
		for i, v := range s.Watts.Data {
			if v != nil {
				raw[workout.Power][i] = present(*v)
			}
		}
	}
	if s.Time != nil {
		raw[workout.Time] = intStream(s.Time.Data, n)
	}
	if s.Heartrate != nil {
		raw[workout.Hr] = intStream(s.Heartrate.Data, n)
	}
	if s.Cadence != nil {
		raw[workout.Cadence] = intStream(s.Cadence.Data, n)
	}
	if s.Altitude != nil {
		ele := make([]*float64, n)
		for i, v := range s.Altitude.Data {
			ele[i] = present(v)
		}
		raw[workout.Ele] = ele
	}
	if s.LatLng != nil {
		lat, long := make([]*float64, n), make([]*float64, n)
		for i, ll := range s.LatLng.Data {
			lat[i], long[i] = present(ll[0]), present(ll[1])
		}
		raw[workout.Lat], raw[workout.Long] = lat, long
	}
	return raw, nil
}

func intStream(data []int, n int) []*float64 {
	out := make([]*float64, n)
	for i, v := range data {
		out[i] = present(float64(v))
	}
	return out
}
