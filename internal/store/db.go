package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrPowerRecordNotFound is returned when no record exists for a duration
var ErrPowerRecordNotFound = errors.New("power record not found")

// pragmas is applied by the driver to every pooled connection
const pragmas = "?_pragma=foreign_keys(1)"

// Store is the history database
type Store struct {
	db *sql.DB
}

// Open opens the SQLite database at path, creating it if necessary.
func Open(path string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return setup(db)
}

// OpenMemory opens a private in-memory database. Used by tests.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:"+pragmas)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// every pooled connection would get its own empty :memory: database
	db.SetMaxOpenConns(1)
	return setup(db)
}

func setup(db *sql.DB) (*Store, error) {
	// Run migrations
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
