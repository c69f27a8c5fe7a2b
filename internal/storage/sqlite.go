package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeNow is replaced in tests to freeze updated_at.
var timeNow = time.Now

// SQLiteFile is the database file name inside the data directory.
const SQLiteFile = "promptforge.db"

// SQLiteSlot stores values in a single kv table.
type SQLiteSlot struct {
	db *sql.DB
}

// NewSQLiteSlot creates the data directory if needed, opens SQLite with
// WAL mode and runs migrations.
func NewSQLiteSlot(dataDir string) (*SQLiteSlot, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(dataDir, SQLiteFile))
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = FULL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("storage: pragma %q: %w", p, err)
		}
	}

	s := &SQLiteSlot{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: migration: %w", err)
	}
	return s, nil
}

func (s *SQLiteSlot) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);
	`)
	return err
}

// Get reads the value for key.
func (s *SQLiteSlot) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return value, nil
}

// Put upserts the value for key.
func (s *SQLiteSlot) Put(key string, value []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, timeNow().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}
