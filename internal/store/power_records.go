package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertPowerRecord stores rec if it beats the current record for its duration.
// Higher watts wins; a tie keeps the older record.
func (s *Store) UpsertPowerRecord(ctx context.Context, rec *PowerRecord) (updated bool, err error) {
	existing, err := s.GetPowerRecord(ctx, rec.DurationSeconds)
	if err != nil && !errors.Is(err, ErrPowerRecordNotFound) {
		return false, err
	}
	if existing != nil && existing.Watts >= rec.Watts {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO power_records (duration_seconds, watts, workout_id, achieved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(duration_seconds) DO UPDATE SET
			watts = excluded.watts,
			workout_id = excluded.workout_id,
			achieved_at = excluded.achieved_at
	`,
		rec.DurationSeconds, rec.Watts, rec.WorkoutID, rec.AchievedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, err
	}

	return true, nil
}

// GetPowerRecord retrieves the record for one duration
func (s *Store) GetPowerRecord(ctx context.Context, durationSeconds int) (*PowerRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT r.duration_seconds, r.watts, r.workout_id, w.name, r.achieved_at
		FROM power_records r
		JOIN workouts w ON w.id = r.workout_id
		WHERE r.duration_seconds = ?
	`, durationSeconds)

	pr, err := scanPowerRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPowerRecordNotFound
	}
	return pr, err
}

// GetAllPowerRecords retrieves all records, shortest duration first
func (s *Store) GetAllPowerRecords(ctx context.Context) ([]PowerRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.duration_seconds, r.watts, r.workout_id, w.name, r.achieved_at
		FROM power_records r
		JOIN workouts w ON w.id = r.workout_id
		ORDER BY r.duration_seconds
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PowerRecord
	for rows.Next() {
		pr, err := scanPowerRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *pr)
	}
	return records, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPowerRecord(row rowScanner) (*PowerRecord, error) {
	var pr PowerRecord
	var achievedAt string

	if err := row.Scan(&pr.DurationSeconds, &pr.Watts, &pr.WorkoutID, &pr.WorkoutName, &achievedAt); err != nil {
		return nil, err
	}

	var err error
	pr.AchievedAt, err = time.Parse(time.RFC3339, achievedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing achieved_at %q: %w", achievedAt, err)
	}
	return &pr, nil
}
