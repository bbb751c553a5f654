// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// All profiles share one table keyed by (profile, key), so a single file
// holds the local storage of every browser the portal has seen.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aanand-mishra/ugs-portal/internal/storage"

	// Registers the "sqlite3" driver.
	_ "github.com/mattn/go-sqlite3"
)

var _ storage.Storage = (*SQLite)(nil)

// SQLite is the concrete implementation of storage.Storage.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at path, creates the local_storage table
// if it does not already exist, and returns a ready-to-use *SQLite.
func New(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS local_storage (
			profile    TEXT    NOT NULL,
			key        TEXT    NOT NULL,
			value      TEXT    NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (profile, key)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

func (s *SQLite) GetItem(ctx context.Context, profile, key string) (string, bool, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT value FROM local_storage WHERE profile = ? AND key = ? LIMIT 1",
	)
	if err != nil {
		return "", false, fmt.Errorf("GetItem: prepare: %w", err)
	}
	defer stmt.Close()

	var value string
	err = stmt.QueryRowContext(ctx, profile, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("GetItem: scan: %w", err)
	}
	return value, true, nil
}

// SetItem upserts in one statement so a concurrent reader sees either the
// old value or the new one, never a gap.
func (s *SQLite) SetItem(ctx context.Context, profile, key, value string) error {
	stmt, err := s.Db.PrepareContext(ctx, `
		INSERT INTO local_storage (profile, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (profile, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("SetItem: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, profile, key, value, time.Now().UTC().Unix()); err != nil {
		return fmt.Errorf("SetItem: exec: %w", err)
	}
	return nil
}

func (s *SQLite) RemoveItem(ctx context.Context, profile, key string) error {
	stmt, err := s.Db.PrepareContext(ctx, "DELETE FROM local_storage WHERE profile = ? AND key = ?")
	if err != nil {
		return fmt.Errorf("RemoveItem: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, profile, key); err != nil {
		return fmt.Errorf("RemoveItem: exec: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.Db.Close()
}
