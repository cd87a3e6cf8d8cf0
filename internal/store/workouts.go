package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SaveWorkout inserts or replaces a workout and its peak curve. A workout is
// identified by its source path; re-analyzing a file keeps its ID.
func (s *Store) SaveWorkout(ctx context.Context, w *Workout, curve []CurvePoint) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id := w.ID
	if id == "" {
		err := tx.QueryRowContext(ctx, `SELECT id FROM workouts WHERE source = ?`, w.Source).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			id = uuid.NewString()
		} else if err != nil {
			return "", fmt.Errorf("looking up workout: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workouts (
			id, name, format, source, duration_seconds, avg_power, max_power,
			normalized_power, work_kj, intensity_factor, training_stress, ftp, analyzed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			format = excluded.format,
			source = excluded.source,
			duration_seconds = excluded.duration_seconds,
			avg_power = excluded.avg_power,
			max_power = excluded.max_power,
			normalized_power = excluded.normalized_power,
			work_kj = excluded.work_kj,
			intensity_factor = excluded.intensity_factor,
			training_stress = excluded.training_stress,
			ftp = excluded.ftp,
			analyzed_at = excluded.analyzed_at
	`,
		id, w.Name, w.Format, w.Source, w.DurationSeconds, w.AvgPower, w.MaxPower,
		w.NormalizedPower, w.WorkKilojoules, w.IntensityFactor, w.TrainingStress, w.FTP,
		w.AnalyzedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("saving workout: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM peak_curves WHERE workout_id = ?`, id); err != nil {
		return "", fmt.Errorf("clearing peak curve: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO peak_curves (workout_id, duration_seconds, watts) VALUES (?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing peak curve insert: %w", err)
	}
	defer stmt.Close()
	for _, p := range curve {
		if _, err := stmt.ExecContext(ctx, id, p.DurationSeconds, p.Watts); err != nil {
			return "", fmt.Errorf("saving peak curve: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing workout: %w", err)
	}
	w.ID = id
	return id, nil
}

// ListWorkouts returns workouts, most recently analyzed first
func (s *Store) ListWorkouts(ctx context.Context, limit int) ([]Workout, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, format, source, duration_seconds, avg_power, max_power,
			normalized_power, work_kj, intensity_factor, training_stress, ftp, analyzed_at
		FROM workouts
		ORDER BY analyzed_at DESC, name
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

// GetPeakCurve returns a workout's stored curve, shortest duration first
func (s *Store) GetPeakCurve(ctx context.Context, workoutID string) ([]CurvePoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT duration_seconds, watts
		FROM peak_curves
		WHERE workout_id = ?
		ORDER BY duration_seconds
	`, workoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var curve []CurvePoint
	for rows.Next() {
		var p CurvePoint
		if err := rows.Scan(&p.DurationSeconds, &p.Watts); err != nil {
			return nil, err
		}
		curve = append(curve, p)
	}
	return curve, rows.Err()
}

func scanWorkout(rows *sql.Rows) (*Workout, error) {
	var w Workout
	var analyzedAt string

	err := rows.Scan(
		&w.ID, &w.Name, &w.Format, &w.Source, &w.DurationSeconds, &w.AvgPower, &w.MaxPower,
		&w.NormalizedPower, &w.WorkKilojoules, &w.IntensityFactor, &w.TrainingStress, &w.FTP, &analyzedAt,
	)
	if err != nil {
		return nil, err
	}

	w.AnalyzedAt, err = time.Parse(time.RFC3339, analyzedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing analyzed_at %q: %w", analyzedAt, err)
	}
	return &w, nil
}
