package kv

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"shelf-go/internal/kv/migrations"
	"shelf-go/internal/shelf"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore keeps every key as a row of the kv table.
type SQLiteStore struct {
	db    *sqlx.DB
	clock shelf.Clock
	path  string
}

type kvRow struct {
	Key       string `db:"key"`
	Value     []byte `db:"value"`
	UpdatedAt int64  `db:"updated_at"`
}

// NewSQLiteStore opens the database at path, applies pending migrations and
// returns the store. path can be a file path or ":memory:".
func NewSQLiteStore(path string, clock shelf.Clock) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.Up(db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}

	return &SQLiteStore{db: db, clock: clock, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection.
func OpenConnection(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases intact and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

func (s *SQLiteStore) Get(key string) ([]byte, error) {
	var row kvRow
	err := s.db.Get(&row, `SELECT key, value, updated_at FROM kv WHERE key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shelf.ErrKeyNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return row.Value, nil
}

func (s *SQLiteStore) Set(key string, value []byte) error {
	row := kvRow{Key: key, Value: value, UpdatedAt: shelf.Millis(s.clock)}
	if row.Value == nil {
		row.Value = []byte{}
	}

	_, err := s.db.NamedExec(`
		INSERT INTO kv (key, value, updated_at) VALUES (:key, :value, :updated_at)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, row)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// UpdatedAt returns the epoch-millis time key was last written.
func (s *SQLiteStore) UpdatedAt(key string) (int64, error) {
	var updatedAt int64
	err := s.db.Get(&updatedAt, `SELECT updated_at FROM kv WHERE key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, shelf.ErrKeyNotFound
		}
		return 0, fmt.Errorf("reading %s: %w", key, err)
	}
	return updatedAt, nil
}

// CheckMigrations verifies the schema is at the latest version.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.Check(s.db.DB)
}

// BackupTo writes a consistent copy of the database to destPath.
// destPath must not already exist.
func (s *SQLiteStore) BackupTo(destPath string) error {
	if _, err := s.db.Exec(`VACUUM INTO ?`, destPath); err != nil {
		return fmt.Errorf("backing up database to %s: %w", destPath, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Compile-time check that SQLiteStore implements shelf.Store interface
var _ shelf.Store = (*SQLiteStore)(nil)
