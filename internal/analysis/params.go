package analysis

import (
	"errors"
	"fmt"
	"slices"
)

// DefaultPlotFloor is the minimum upper bound of the power axes.
const DefaultPlotFloor = 400.0

// Params bundles the tunables of the analysis pipeline. It is built once from
// configuration and only read afterwards.
type Params struct {
	SmoothWindow        int       // trailing window for the power track and zones
	CompareSmoothWindow int       // centered window for multi-workout overlays
	Durations           []int     // peak curve durations, ascending
	LabelDurations      []int     // subset annotated on the curve
	Zones               ZoneScheme
	Threshold           float64 // FTP in watts
	BinWidth            float64
	PlotFloor           float64
}

// DefaultParams returns the stock settings for the given FTP.
func DefaultParams(ftp float64) Params {
	return Params{
		SmoothWindow:        DefaultSmoothWindow,
		CompareSmoothWindow: DefaultSmoothWindow,
		Durations:           DenseDurations(DefaultMaxDuration),
		LabelDurations:      slices.Clone(LabelDurations),
		Zones:               DefaultZoneScheme(),
		Threshold:           ftp,
		BinWidth:            DefaultBinWidth,
		PlotFloor:           DefaultPlotFloor,
	}
}

// Validate reports settings the core would reject at call time.
func (p Params) Validate() error {
	var errs []error
	if p.SmoothWindow < 1 {
		errs = append(errs, fmt.Errorf("smooth window: %w", ErrInvalidWindow))
	}
	if p.CompareSmoothWindow < 1 {
		errs = append(errs, fmt.Errorf("compare smooth window: %w", ErrInvalidWindow))
	}
	for _, d := range p.Durations {
		if d < 1 {
			errs = append(errs, fmt.Errorf("duration %d: %w", d, ErrInvalidWindow))
			break
		}
	}
	if p.Threshold <= 0 {
		errs = append(errs, ErrInvalidThreshold)
	}
	if p.BinWidth <= 0 {
		errs = append(errs, ErrInvalidBinWidth)
	}
	if err := p.Zones.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
