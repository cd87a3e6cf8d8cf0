package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tkrajina/gpxgo/gpx"

	"powercurve/internal/workout"
)

// extension element local names, any namespace prefix
var gpxExtensionChannels = map[string]workout.Channel{
	"power":     workout.Power,
	"watts":     workout.Power,
	"hr":        workout.Hr,
	"heartrate": workout.Hr,
	"cad":       workout.Cadence,
	"cadence":   workout.Cadence,
}

// ParseGPX flattens every track segment of a GPX file into one series. Power,
// heart rate and cadence come from the point extensions.
func ParseGPX(path string, opts Options) (workout.RawSeries, error) {
	g, err := gpx.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", workout.ErrMalformedInput, err)
	}
	return gpxToRaw(g, opts)
}

func gpxToRaw(g *gpx.GPX, opts Options) (workout.RawSeries, error) {
	logger := opts.logger()

	raw := workout.RawSeries{
		workout.Lat:     nil,
		workout.Long:    nil,
		workout.Ele:     nil,
		workout.Time:    nil,
		workout.Hr:      nil,
		workout.Cadence: nil,
		workout.Power:   nil,
	}

	var start time.Time
	for _, track := range g.Tracks {
		logger.Debug("gpx track", "name", track.Name, "segments", len(track.Segments))
		for _, segment := range track.Segments {
			for i := range segment.Points {
				p := &segment.Points[i]

				raw[workout.Lat] = append(raw[workout.Lat], present(p.Point.Latitude))
				raw[workout.Long] = append(raw[workout.Long], present(p.Point.Longitude))

				if p.Elevation.NotNull() {
					raw[workout.Ele] = append(raw[workout.Ele], present(p.Elevation.Value()))
				} else {
					raw[workout.Ele] = append(raw[workout.Ele], nil)
				}

				if p.Timestamp.IsZero() {
					raw[workout.Time] = append(raw[workout.Time], nil)
				} else {
					if start.IsZero() {
						start = p.Timestamp
					}
					raw[workout.Time] = append(raw[workout.Time], present(p.Timestamp.Sub(start).Seconds()))
				}

				values := make(map[workout.Channel]*float64, 3)
				collectExtensions(p.Extensions.Nodes, values)
				for _, ch := range []workout.Channel{workout.Hr, workout.Cadence} {
					raw[ch] = append(raw[ch], values[ch])
				}
				// a point without a power extension was ridden at 0 W
				if values[workout.Power] == nil {
					values[workout.Power] = present(0)
				}
				raw[workout.Power] = append(raw[workout.Power], values[workout.Power])
			}
		}
	}

	if len(raw[workout.Power]) == 0 {
		return nil, fmt.Errorf("%w: no track points", workout.ErrEmptySeries)
	}
	return raw, nil
}

// collectExtensions walks nested extension nodes and keeps the first numeric
// value seen for each known channel.
func collectExtensions(nodes []gpx.ExtensionNode, out map[workout.Channel]*float64) {
	for _, node := range nodes {
		ch, ok := gpxExtensionChannels[strings.ToLower(node.XMLName.Local)]
		if ok && out[ch] == nil {
			if v, err := strconv.ParseFloat(strings.TrimSpace(node.Data), 64); err == nil {
				out[ch] = present(v)
			}
		}
		if len(node.Nodes) > 0 {
			collectExtensions(node.Nodes, out)
		}
	}
}
