package store

import "time"

// Workout is the stored summary of one analyzed workout
type Workout struct {
	ID              string    `db:"id"`
	Name            string    `db:"name"`
	Format          string    `db:"format"`
	Source          string    `db:"source"`
	DurationSeconds int       `db:"duration_seconds"`
	AvgPower        float64   `db:"avg_power"`
	MaxPower        float64   `db:"max_power"`
	NormalizedPower float64   `db:"normalized_power"`
	WorkKilojoules  float64   `db:"work_kj"`
	IntensityFactor *float64  `db:"intensity_factor"` // nullable, needs FTP
	TrainingStress  *float64  `db:"training_stress"`  // nullable, needs FTP
	FTP             float64   `db:"ftp"`
	AnalyzedAt      time.Time `db:"analyzed_at"`
}

// CurvePoint is one point of a stored peak power curve
type CurvePoint struct {
	DurationSeconds int     `db:"duration_seconds"`
	Watts           float64 `db:"watts"`
}

// PowerRecord is the best power ever recorded for a duration
type PowerRecord struct {
	DurationSeconds int       `db:"duration_seconds"`
	Watts           float64   `db:"watts"`
	WorkoutID       string    `db:"workout_id"`
	WorkoutName     string    `db:"name"` // joined from workouts
	AchievedAt      time.Time `db:"achieved_at"`
}
