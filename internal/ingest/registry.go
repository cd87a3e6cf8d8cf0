// Package ingest turns workout files into normalized workouts.
package ingest

import (
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"powercurve/internal/workout"
)

// Options configure parsing and normalization.
type Options struct {
	// CSVColumns maps channels to zero-based column indices for CSV input.
	CSVColumns map[workout.Channel]int
	Normalize  workout.NormalizeOptions
	Logger     *slog.Logger
}

// DefaultCSVColumns matches the sensor export the tool was first written for.
var DefaultCSVColumns = map[workout.Channel]int{
	workout.Lat:   3,
	workout.Long:  4,
	workout.Hr:    5,
	workout.Ele:   10,
	workout.Power: 11,
}

// DefaultOptions returns stock options logging to slog.Default.
func DefaultOptions() Options {
	return Options{
		CSVColumns: maps.Clone(DefaultCSVColumns),
		Normalize:  workout.DefaultNormalizeOptions(),
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Parser reads one file into raw channel series.
type Parser func(path string, opts Options) (workout.RawSeries, error)

// Registry dispatches on the lower-case file extension.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Default returns a registry with every built-in format.
func Default() *Registry {
	r := NewRegistry()
	r.Register("csv", ParseCSV)
	r.Register("gpx", ParseGPX)
	r.Register("fit", ParseFIT)
	r.Register("json", ParseStreams)
	return r
}

// Register adds or replaces the parser for a format id (extension without dot).
func (r *Registry) Register(format string, p Parser) {
	r.parsers[strings.ToLower(format)] = p
}

// Formats lists the registered format ids.
func (r *Registry) Formats() []string {
	return slices.Sorted(maps.Keys(r.parsers))
}

// FormatOf returns the format id of path.
func FormatOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Supports reports whether a parser is registered for path's extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.parsers[FormatOf(path)]
	return ok
}

// Parse runs the parser for path without normalizing.
func (r *Registry) Parse(path string, opts Options) (workout.RawSeries, error) {
	format := FormatOf(path)
	p, ok := r.parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", workout.ErrUnsupportedFormat,
			filepath.Ext(path), strings.Join(r.Formats(), ", "))
	}
	raw, err := p(path, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return raw, nil
}

// Load parses and normalizes path into a Workout named after the file.
func (r *Registry) Load(path string, opts Options) (*workout.Workout, error) {
	raw, err := r.Parse(path, opts)
	if err != nil {
		return nil, err
	}

	normOpts := opts.Normalize
	if normOpts.Logger == nil {
		normOpts.Logger = opts.logger().With("file", filepath.Base(path))
	}
	norm, err := workout.Normalize(raw, normOpts)
	if err != nil {
		return nil, fmt.Errorf("normalizing %s: %w", path, err)
	}
	if _, ok := norm.Channels[workout.Power]; !ok {
		return nil, fmt.Errorf("%s: %w: no power channel", path, workout.ErrMalformedInput)
	}
	if dropped := norm.Dropped(); len(dropped) > 0 {
		normOpts.Logger.Info("loaded without sparse channels", "dropped", dropped, "kept", len(norm.Channels))
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return workout.New(name, FormatOf(path), path, norm.Channels)
}

// present wraps v as a non-missing sample.
func present(v float64) *float64 {
	return &v
}
