package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLite stores the workouts blob in a local key/value table.
type SQLite struct {
	db  *sql.DB
	key string
}

// OpenSQLite opens (or creates) the database file at path.
func OpenSQLite(path, key string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating kv table: %w", err)
	}

	return &SQLite{db: db, key: key}, nil
}

// Save replaces the blob under the configured key.
func (s *SQLite) Save(ctx context.Context, blob string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		s.key, blob)
	if err != nil {
		return fmt.Errorf("saving blob %q: %w", s.key, err)
	}
	return nil
}

// Load reads the blob under the configured key.
func (s *SQLite) Load(ctx context.Context) (string, bool, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, s.key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("loading blob %q: %w", s.key, err)
	}
	return blob, true, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
