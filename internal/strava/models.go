// Package strava reads activity stream exports in the Strava API format.
package strava

import (
	"encoding/json"
	"fmt"
	"io"
)

// Streams represents activity stream data as returned with key_by_type=true
type Streams struct {
	Time      *StreamData[int]        `json:"time"`
	LatLng    *StreamData[[2]float64] `json:"latlng"`
	Altitude  *StreamData[float64]    `json:"altitude"`
	Heartrate *StreamData[int]        `json:"heartrate"`
	Cadence   *StreamData[int]        `json:"cadence"`
	Watts     *StreamData[*float64]   `json:"watts"` // null where the meter dropped out
	Distance  *StreamData[float64]    `json:"distance"`
}

// StreamData represents a single stream type
type StreamData[T any] struct {
	Data         []T    `json:"data"`
	SeriesType   string `json:"series_type"`
	OriginalSize int    `json:"original_size"`
	Resolution   string `json:"resolution"`
}

// streamEntry is one element of the list form (key_by_type=false)
type streamEntry struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Len returns the length of the longest stream, or 0 if nil
func (s *Streams) Len() int {
	if s == nil {
		return 0
	}
	n := 0
	n = max(n, streamLen(s.Time))
	n = max(n, streamLen(s.LatLng))
	n = max(n, streamLen(s.Altitude))
	n = max(n, streamLen(s.Heartrate))
	n = max(n, streamLen(s.Cadence))
	n = max(n, streamLen(s.Watts))
	n = max(n, streamLen(s.Distance))
	return n
}

// HasHeartrate returns true if heartrate data exists
func (s *Streams) HasHeartrate() bool {
	return s != nil && s.Heartrate != nil && len(s.Heartrate.Data) > 0
}

// HasWatts returns true if power data exists
func (s *Streams) HasWatts() bool {
	return s != nil && s.Watts != nil && len(s.Watts.Data) > 0
}

func streamLen[T any](d *StreamData[T]) int {
	if d == nil {
		return 0
	}
	return len(d.Data)
}

// DecodeStreams reads either the keyed object form or the list form of a
// streams export.
func DecodeStreams(r io.Reader) (*Streams, error) {
	var msg json.RawMessage
	if err := json.NewDecoder(r).Decode(&msg); err != nil {
		return nil, fmt.Errorf("decoding streams: %w", err)
	}

	if len(msg) > 0 && msg[0] == '[' {
		var entries []streamEntry
		if err := json.Unmarshal(msg, &entries); err != nil {
			return nil, fmt.Errorf("decoding stream list: %w", err)
		}
		keyed := make(map[string]map[string]json.RawMessage, len(entries))
		for _, e := range entries {
			keyed[e.Type] = map[string]json.RawMessage{"data": e.Data}
		}
		var err error
		if msg, err = json.Marshal(keyed); err != nil {
			return nil, fmt.Errorf("re-keying stream list: %w", err)
		}
	}

	var s Streams
	if err := json.Unmarshal(msg, &s); err != nil {
		return nil, fmt.Errorf("decoding streams: %w", err)
	}
	return &s, nil
}
