// Package workout holds the normalized per-second telemetry of one recorded ride.
package workout

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Channel names a telemetry stream.
type Channel string

// Channels produced by the parsers.
const (
	Power   Channel = "Power"
	Lat     Channel = "Lat"
	Long    Channel = "Long"
	Ele     Channel = "Ele"
	Hr      Channel = "Hr"
	Time    Channel = "Time"
	Cadence Channel = "Cad"
)

var (
	// ErrUnsupportedFormat is returned for a file extension no parser handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrMalformedInput is returned when a file cannot be turned into channel series.
	ErrMalformedInput = errors.New("malformed input")

	// ErrEmptySeries is returned when a channel has no samples.
	ErrEmptySeries = errors.New("empty series")
)

// Workout is a named bundle of equal-length 1 Hz channel series. It is built once
// by New and never modified; accessors hand out copies.
type Workout struct {
	name     string
	format   string
	source   string
	channels map[Channel][]float64
	length   int
	offset   int  // first sample within the source
	sliced   bool // restricted to part of the source
}

// New builds a Workout, copying the channel data. All channels must share one length.
func New(name, format, source string, channels map[Channel][]float64) (*Workout, error) {
	w := &Workout{
		name:     name,
		format:   format,
		source:   source,
		channels: make(map[Channel][]float64, len(channels)),
		length:   -1,
	}
	for _, ch := range sortedChannels(channels) {
		data := channels[ch]
		if w.length >= 0 && len(data) != w.length {
			return nil, fmt.Errorf("%w: channel %s has %d samples, expected %d",
				ErrMalformedInput, ch, len(data), w.length)
		}
		w.length = len(data)
		w.channels[ch] = slices.Clone(data)
	}
	if w.length < 0 {
		w.length = 0
	}
	return w, nil
}

// Name is the source file base name.
func (w *Workout) Name() string { return w.name }

// Format is the parser id that produced the workout ("csv", "gpx", ...).
func (w *Workout) Format() string { return w.format }

// Source is the input file path.
func (w *Workout) Source() string { return w.source }

// Window reports the span [start, end) of the source this workout covers and
// whether it was cut down by Slice.
func (w *Workout) Window() (start, end int, sliced bool) {
	return w.offset, w.offset + w.length, w.sliced
}

// Len is the number of samples (seconds) per channel.
func (w *Workout) Len() int { return w.length }

// Has reports whether the channel survived normalization.
func (w *Workout) Has(ch Channel) bool {
	_, ok := w.channels[ch]
	return ok
}

// Channel returns a copy of the channel series, or nil when absent.
func (w *Workout) Channel(ch Channel) []float64 {
	data, ok := w.channels[ch]
	if !ok {
		return nil
	}
	return slices.Clone(data)
}

// Power returns a copy of the power series, or nil when the workout has none.
func (w *Workout) Power() []float64 {
	return w.Channel(Power)
}

// Channels lists the available channels in name order.
func (w *Workout) Channels() []Channel {
	return sortedChannels(w.channels)
}

// Slice returns a new Workout restricted to samples [start, end). end is clamped
// to the workout length.
func (w *Workout) Slice(start, end int) (*Workout, error) {
	end = min(end, w.length)
	if start < 0 || start > end {
		return nil, fmt.Errorf("invalid slice [%d, %d) of %d samples", start, end, w.length)
	}
	if start == 0 && end == w.length {
		return w, nil
	}

	sliced := make(map[Channel][]float64, len(w.channels))
	for ch, data := range w.channels {
		sliced[ch] = data[start:end]
	}
	out, err := New(w.name, w.format, w.source, sliced)
	if err != nil {
		return nil, err
	}
	out.offset, out.sliced = w.offset+start, true
	return out, nil
}

func sortedChannels[V any](m map[Channel]V) []Channel {
	return slices.Sorted(maps.Keys(m))
}
