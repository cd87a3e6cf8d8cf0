package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"powercurve/internal/analysis"
	"powercurve/internal/logging"
	"powercurve/internal/workout"
)

func newTestWorkout(t *testing.T, name string, power []float64) *workout.Workout {
	t.Helper()
	w, err := workout.New(name, "csv", name+".csv", map[workout.Channel][]float64{workout.Power: power})
	if err != nil {
		t.Fatalf("workout.New() error: %v", err)
	}
	return w
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(analysis.DefaultParams(251), logging.Discard())
	if err != nil {
		t.Fatalf("NewAnalyzer() error: %v", err)
	}
	return a
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestNewAnalyzer_RejectsInvalidParams(t *testing.T) {
	p := analysis.DefaultParams(0)
	if _, err := NewAnalyzer(p, nil); !errors.Is(err, analysis.ErrInvalidThreshold) {
		t.Errorf("NewAnalyzer() error = %v, want ErrInvalidThreshold", err)
	}
}

func TestAnalyze(t *testing.T) {
	a := newTestAnalyzer(t)
	power := constant(600, 250)
	for i := 100; i < 160; i++ {
		power[i] = 400
	}

	r, err := a.Analyze(newTestWorkout(t, "ride", power))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if len(r.Smoothed) != 591 {
		t.Errorf("len(Smoothed) = %d, want 591", len(r.Smoothed))
	}
	if r.SmoothOffset() != 9 {
		t.Errorf("SmoothOffset() = %d, want 9", r.SmoothOffset())
	}
	if len(r.Centered) != 600 {
		t.Errorf("len(Centered) = %d, want 600", len(r.Centered))
	}
	if len(r.Zones) != len(r.Smoothed) {
		t.Errorf("len(Zones) = %d, want %d", len(r.Zones), len(r.Smoothed))
	}

	// 250 W against FTP 251 sits in Threshold, 400 W in VO2 Max.
	if r.Zones[0] != analysis.ZoneThreshold {
		t.Errorf("Zones[0] = %v, want Threshold", r.Zones[0])
	}
	if r.Zones[120] != analysis.ZoneVO2Max {
		t.Errorf("Zones[120] = %v, want VO2 Max", r.Zones[120])
	}

	total := 0
	for _, zt := range r.TimeInZone {
		total += zt.Seconds
	}
	if total != len(r.Smoothed) {
		t.Errorf("TimeInZone total = %d, want %d", total, len(r.Smoothed))
	}

	if len(r.Curve) != 600 || r.DroppedDurations != 3000 {
		t.Errorf("curve has %d points, %d dropped; want 600, 3000", len(r.Curve), r.DroppedDurations)
	}
	if r.Curve[0].Watts != 400 || r.Curve[59].Watts != 400 {
		t.Errorf("1s/60s peak = %v/%v, want 400/400", r.Curve[0].Watts, r.Curve[59].Watts)
	}
	wantLabels := []int{1, 2, 5, 10, 15, 30, 60, 120, 300, 600}
	if len(r.Labels) != len(wantLabels) {
		t.Fatalf("Labels = %v", r.Labels)
	}
	for i, d := range wantLabels {
		if r.Labels[i].DurationSeconds != d {
			t.Errorf("Labels[%d] = %ds, want %ds", i, r.Labels[i].DurationSeconds, d)
		}
	}

	sum := 0.0
	for _, b := range r.Histogram {
		sum += b.Fraction
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("histogram sums to %v, want 1", sum)
	}
	if r.PlotMax != 400 {
		t.Errorf("PlotMax = %v, want 400", r.PlotMax)
	}
	if r.Summary.MaxPower != 400 {
		t.Errorf("Summary.MaxPower = %v, want 400", r.Summary.MaxPower)
	}
}

func TestAnalyze_ShortWorkout(t *testing.T) {
	a := newTestAnalyzer(t)

	r, err := a.Analyze(newTestWorkout(t, "short", []float64{100, 200, 300}))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if len(r.Smoothed) != 0 || len(r.Zones) != 0 || len(r.Centered) != 0 {
		t.Errorf("short workout should have no smoothed views: %d/%d/%d", len(r.Smoothed), len(r.Zones), len(r.Centered))
	}
	if len(r.Curve) != 3 || r.Curve[2].Watts != 200 {
		t.Errorf("Curve = %v, want 3 points ending at 200", r.Curve)
	}
	if r.PlotMax != 400 {
		t.Errorf("PlotMax = %v, want floor 400", r.PlotMax)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	a := newTestAnalyzer(t)
	_, err := a.Analyze(newTestWorkout(t, "empty", []float64{}))
	if !errors.Is(err, analysis.ErrEmptySeries) {
		t.Errorf("Analyze(empty) error = %v, want ErrEmptySeries", err)
	}
}

func TestAnalyzeAll_KeepsOrder(t *testing.T) {
	a := newTestAnalyzer(t)
	workouts := []*workout.Workout{
		newTestWorkout(t, "a", constant(120, 100)),
		newTestWorkout(t, "b", constant(120, 200)),
		newTestWorkout(t, "c", constant(120, 300)),
	}

	progress := make(chan Progress, len(workouts))
	reports, err := a.AnalyzeAll(context.Background(), workouts, progress)
	if err != nil {
		t.Fatalf("AnalyzeAll() error: %v", err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if reports[i].Name() != want {
			t.Errorf("reports[%d] = %q, want %q", i, reports[i].Name(), want)
		}
	}

	var updates []Progress
	for p := range progress {
		updates = append(updates, p)
	}
	if len(updates) != 3 || updates[2].Completed != 3 || updates[2].Total != 3 {
		t.Errorf("progress updates = %+v", updates)
	}
}

func TestAnalyzeAll_Error(t *testing.T) {
	a := newTestAnalyzer(t)
	workouts := []*workout.Workout{
		newTestWorkout(t, "good", constant(120, 100)),
		newTestWorkout(t, "empty", []float64{}),
	}
	if _, err := a.AnalyzeAll(context.Background(), workouts, nil); !errors.Is(err, analysis.ErrEmptySeries) {
		t.Errorf("AnalyzeAll() error = %v, want ErrEmptySeries", err)
	}
}

func TestAnalyzeAll_Cancelled(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.AnalyzeAll(ctx, []*workout.Workout{newTestWorkout(t, "a", constant(60, 100))}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("AnalyzeAll() error = %v, want context.Canceled", err)
	}
}

func TestOutputName(t *testing.T) {
	a := newTestAnalyzer(t)
	r1, _ := a.Analyze(newTestWorkout(t, "morning", constant(30, 100)))
	r2, _ := a.Analyze(newTestWorkout(t, "evening", constant(30, 100)))

	tests := []struct {
		reports []*Report
		want    string
	}{
		{[]*Report{r1}, "morning.png"},
		{[]*Report{r1, r2}, "morning_vs_evening.png"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := OutputName(tt.reports, ".png")
			if err != nil {
				t.Fatalf("OutputName() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("OutputName() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := OutputName(nil, ".png"); err == nil {
		t.Error("OutputName(nil) should fail")
	}
}
