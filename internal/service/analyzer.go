package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"powercurve/internal/analysis"
	"powercurve/internal/workout"
)

// Analyzer runs the analysis pipeline over normalized workouts
type Analyzer struct {
	params analysis.Params
	logger *slog.Logger
}

// NewAnalyzer validates params once so per-workout calls can't fail on configuration
func NewAnalyzer(params analysis.Params, logger *slog.Logger) (*Analyzer, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis parameters: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{params: params, logger: logger}, nil
}

// Params returns the parameters the analyzer was built with
func (a *Analyzer) Params() analysis.Params {
	return a.params
}

// Report holds every derived view of one workout
type Report struct {
	Workout *workout.Workout
	Power   []float64

	// Trailing moving average; Smoothed[i] covers samples [i, i+SmoothWindow).
	Smoothed     []float64
	SmoothWindow int
	// Centered moving average, same length as Power; used for overlays.
	Centered      []float64
	CompareWindow int

	Zones      []analysis.Zone // one per Smoothed sample
	Masks      [analysis.NumZones][]bool
	TimeInZone []analysis.ZoneTime
	Threshold  float64
	ZoneScheme analysis.ZoneScheme

	Histogram []analysis.Bin
	BinWidth  float64

	Curve            []analysis.PeakPoint
	Labels           []analysis.PeakPoint
	DroppedDurations int

	Summary analysis.Summary
	PlotMax float64
}

// Name is the workout name
func (r *Report) Name() string {
	return r.Workout.Name()
}

// SmoothOffset is the index into Power of the sample Smoothed[0] ends on
func (r *Report) SmoothOffset() int {
	return r.SmoothWindow - 1
}

// Analyze builds the report for one workout. Views that need more samples than
// the workout has are left empty and logged.
func (a *Analyzer) Analyze(w *workout.Workout) (*Report, error) {
	power := w.Power()
	if len(power) == 0 {
		return nil, fmt.Errorf("%s: %w", w.Name(), analysis.ErrEmptySeries)
	}
	logger := a.logger.With("workout", w.Name())
	p := a.params

	r := &Report{
		Workout:       w,
		Power:         power,
		SmoothWindow:  p.SmoothWindow,
		CompareWindow: p.CompareSmoothWindow,
		Threshold:     p.Threshold,
		ZoneScheme:    p.Zones,
		BinWidth:      p.BinWidth,
		Smoothed:      []float64{},
		Centered:      []float64{},
	}

	var err error
	if len(power) >= p.SmoothWindow {
		if r.Smoothed, err = analysis.Smooth(power, p.SmoothWindow); err != nil {
			return nil, fmt.Errorf("smoothing %s: %w", w.Name(), err)
		}
	} else {
		logger.Warn("insufficient data for smoothed power", "samples", len(power), "window", p.SmoothWindow)
	}
	if len(power) >= p.CompareSmoothWindow {
		if r.Centered, err = analysis.SmoothCentered(power, p.CompareSmoothWindow); err != nil {
			return nil, fmt.Errorf("smoothing %s: %w", w.Name(), err)
		}
	} else {
		logger.Warn("insufficient data for comparison smoothing", "samples", len(power), "window", p.CompareSmoothWindow)
	}

	if r.Zones, err = analysis.Classify(r.Smoothed, p.Threshold, p.Zones); err != nil {
		return nil, fmt.Errorf("classifying %s: %w", w.Name(), err)
	}
	r.Masks = analysis.Masks(r.Zones)
	r.TimeInZone = analysis.TimeInZone(r.Zones)

	if r.Histogram, err = analysis.Histogram(power, p.BinWidth); err != nil {
		return nil, fmt.Errorf("binning %s: %w", w.Name(), err)
	}

	durations, dropped := analysis.TruncateLarger(p.Durations, len(power))
	if dropped > 0 {
		logger.Info("dropping peak durations longer than the workout", "dropped", dropped, "samples", len(power))
	}
	if r.Curve, err = analysis.PeakCurve(power, durations); err != nil {
		return nil, fmt.Errorf("peak curve for %s: %w", w.Name(), err)
	}
	r.DroppedDurations = dropped
	labels, _ := analysis.TruncateLarger(p.LabelDurations, len(power))
	r.Labels = analysis.PointsAt(r.Curve, labels)

	r.Summary = analysis.Summarize(power, p.Threshold)
	r.PlotMax = analysis.PlotRange(r.Smoothed, p.BinWidth, p.PlotFloor)

	logger.Debug("analyzed workout",
		"samples", len(power), "avg", r.Summary.AvgPower, "np", r.Summary.NormalizedPower, "curve_points", len(r.Curve))
	return r, nil
}

// Progress reports progress while analyzing several workouts
type Progress struct {
	Total     int
	Completed int
	Workout   string
	Error     error
}

// AnalyzeAll analyzes workouts concurrently. Reports come back in input order.
// Progress, if non-nil, receives one update per finished workout and is closed on return.
func (a *Analyzer) AnalyzeAll(ctx context.Context, workouts []*workout.Workout, progress chan<- Progress) ([]*Report, error) {
	if progress != nil {
		defer close(progress)
	}

	reports := make([]*Report, len(workouts))

	var mu sync.Mutex
	completed := 0
	report := func(name string, err error) {
		if progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		completed++
		progress <- Progress{Total: len(workouts), Completed: completed, Workout: name, Error: err}
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, w := range workouts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := a.Analyze(w)
			report(w.Name(), err)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// OutputName names the saved figure: "<base><ext>" for one workout,
// "<a>_vs_<b><ext>" for several.
func OutputName(reports []*Report, ext string) (string, error) {
	if len(reports) == 0 {
		return "", errors.New("no reports to name")
	}
	names := make([]string, len(reports))
	for i, r := range reports {
		names[i] = r.Name()
	}
	return strings.Join(names, "_vs_") + ext, nil
}
