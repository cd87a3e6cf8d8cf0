package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"powercurve/internal/store"
)

// History is the persistence the recorder needs
type History interface {
	SaveWorkout(ctx context.Context, w *store.Workout, curve []store.CurvePoint) (string, error)
	UpsertPowerRecord(ctx context.Context, rec *store.PowerRecord) (bool, error)
	GetAllPowerRecords(ctx context.Context) ([]store.PowerRecord, error)
	ListWorkouts(ctx context.Context, limit int) ([]store.Workout, error)
	GetPeakCurve(ctx context.Context, workoutID string) ([]store.CurvePoint, error)
}

// RecordService saves analyzed workouts and tracks all-time power records
type RecordService struct {
	history History
	logger  *slog.Logger
	now     func() time.Time
}

// NewRecordService creates a record service backed by history
func NewRecordService(history History, logger *slog.Logger) *RecordService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordService{history: history, logger: logger, now: time.Now}
}

// NewRecord is a power record set by one of the recorded workouts
type NewRecord struct {
	Workout         string
	DurationSeconds int
	Watts           float64
	Previous        float64 // 0 when there was no record
}

// Record stores each report with its full curve and updates the records for
// the labelled durations.
func (s *RecordService) Record(ctx context.Context, reports []*Report) ([]NewRecord, error) {
	before, err := s.history.GetAllPowerRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading power records: %w", err)
	}
	previous := make(map[int]float64, len(before))
	for _, r := range before {
		previous[r.DurationSeconds] = r.Watts
	}

	var out []NewRecord
	now := s.now()
	for _, r := range reports {
		id, err := s.history.SaveWorkout(ctx, toStoreWorkout(r, now), toCurvePoints(r))
		if err != nil {
			return out, fmt.Errorf("saving %s: %w", r.Name(), err)
		}

		for _, p := range r.Labels {
			rec := &store.PowerRecord{
				DurationSeconds: p.DurationSeconds,
				Watts:           p.Watts,
				WorkoutID:       id,
				AchievedAt:      now,
			}
			updated, err := s.history.UpsertPowerRecord(ctx, rec)
			if err != nil {
				return out, fmt.Errorf("updating %ds record: %w", p.DurationSeconds, err)
			}
			if !updated {
				continue
			}
			s.logger.Info("new power record", "workout", r.Name(), "duration_s", p.DurationSeconds,
				"watts", p.Watts, "previous", previous[p.DurationSeconds])
			out = append(out, NewRecord{
				Workout:         r.Name(),
				DurationSeconds: p.DurationSeconds,
				Watts:           p.Watts,
				Previous:        previous[p.DurationSeconds],
			})
			previous[p.DurationSeconds] = p.Watts
		}
	}
	return out, nil
}

// Records returns the current all-time records
func (s *RecordService) Records(ctx context.Context) ([]store.PowerRecord, error) {
	return s.history.GetAllPowerRecords(ctx)
}

// StoredWorkout is a recorded workout with its peak curve
type StoredWorkout struct {
	store.Workout
	Curve []store.CurvePoint
}

// Recent returns the latest recorded workouts, newest first, with their curves
func (s *RecordService) Recent(ctx context.Context, limit int) ([]StoredWorkout, error) {
	workouts, err := s.history.ListWorkouts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	out := make([]StoredWorkout, len(workouts))
	for i, w := range workouts {
		curve, err := s.history.GetPeakCurve(ctx, w.ID)
		if err != nil {
			return nil, fmt.Errorf("loading curve of %s: %w", w.Name, err)
		}
		out[i] = StoredWorkout{Workout: w, Curve: curve}
	}
	return out, nil
}

// CurveWatts returns the stored best power for a duration, 0 when the workout
// was too short for it.
func (w StoredWorkout) CurveWatts(durationSeconds int) float64 {
	for _, p := range w.Curve {
		if p.DurationSeconds == durationSeconds {
			return p.Watts
		}
	}
	return 0
}

// historyKey identifies what was analyzed: the file, plus the focus window
// when only part of it was.
func historyKey(r *Report) string {
	start, end, sliced := r.Workout.Window()
	if !sliced {
		return r.Workout.Source()
	}
	return fmt.Sprintf("%s#%d-%d", r.Workout.Source(), start, end)
}

func toStoreWorkout(r *Report, analyzedAt time.Time) *store.Workout {
	w := &store.Workout{
		Name:            r.Name(),
		Format:          r.Workout.Format(),
		Source:          historyKey(r),
		DurationSeconds: r.Summary.DurationSeconds,
		AvgPower:        r.Summary.AvgPower,
		MaxPower:        r.Summary.MaxPower,
		NormalizedPower: r.Summary.NormalizedPower,
		WorkKilojoules:  r.Summary.WorkKilojoules,
		FTP:             r.Threshold,
		AnalyzedAt:      analyzedAt,
	}
	if r.Threshold > 0 {
		intensity, stress := r.Summary.IntensityFactor, r.Summary.TrainingStress
		w.IntensityFactor, w.TrainingStress = &intensity, &stress
	}
	return w
}

func toCurvePoints(r *Report) []store.CurvePoint {
	out := make([]store.CurvePoint, len(r.Curve))
	for i, p := range r.Curve {
		out[i] = store.CurvePoint{DurationSeconds: p.DurationSeconds, Watts: p.Watts}
	}
	return out
}
