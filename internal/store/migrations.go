package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Analyzed workouts, one row per source file
		`CREATE TABLE IF NOT EXISTS workouts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			format TEXT NOT NULL,
			source TEXT NOT NULL UNIQUE,
			duration_seconds INTEGER NOT NULL,
			avg_power REAL NOT NULL,
			max_power REAL NOT NULL,
			normalized_power REAL NOT NULL,
			work_kj REAL NOT NULL,
			intensity_factor REAL,
			training_stress REAL,
			ftp REAL NOT NULL,
			analyzed_at TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_workouts_analyzed_at ON workouts(analyzed_at)`,

		// Peak power curve per workout
		`CREATE TABLE IF NOT EXISTS peak_curves (
			workout_id TEXT NOT NULL,
			duration_seconds INTEGER NOT NULL,
			watts REAL NOT NULL,
			PRIMARY KEY (workout_id, duration_seconds),
			FOREIGN KEY (workout_id) REFERENCES workouts(id) ON DELETE CASCADE
		)`,

		// All-time best power per duration
		`CREATE TABLE IF NOT EXISTS power_records (
			duration_seconds INTEGER PRIMARY KEY,
			watts REAL NOT NULL,
			workout_id TEXT NOT NULL,
			achieved_at TEXT NOT NULL,
			FOREIGN KEY (workout_id) REFERENCES workouts(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_power_records_workout ON power_records(workout_id)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
