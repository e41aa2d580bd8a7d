// Package sqlite implements the metrics time-series store on a single
// SQLite database file. One writer per batch run; WAL mode; each
// rebuild stage (metrics import, alert rewrite) commits once.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite-backed metrics store.
type Store struct {
	db *sql.DB
}

// New opens (creating if necessary) the metrics database at path and
// initializes the schema. Use ":memory:" for tests.
func New(path string) (*Store, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Open opens an existing metrics database for read paths (anomaly
// detection, alerting, queries). A missing file is a caller error, not
// an expected runtime state: there is no sensible partial result when
// no data has ever been imported.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("metrics database %s does not exist (run import first)", path)
			}
			return nil, fmt.Errorf("failed to stat database %s: %w", path, err)
		}
	}
	return New(path)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
