// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite. Each user's log is a
// single row, so a Set is one UPSERT and inherits SQLite's per-statement
// atomicity.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore at the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get returns the log blob for the user.
func (s *SQLiteStore) Get(ctx context.Context, user common.Address) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT log FROM notification_logs WHERE user_address = ?",
		user.Hex(),
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get log: %w", err)
	}
	return blob, nil
}

// Set replaces the user's log blob.
func (s *SQLiteStore) Set(ctx context.Context, user common.Address, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notification_logs (user_address, log) VALUES (?, ?)
		 ON CONFLICT(user_address) DO UPDATE SET log = excluded.log`,
		user.Hex(), blob,
	)
	if err != nil {
		return fmt.Errorf("failed to set log: %w", err)
	}
	return nil
}

// Delete removes the user's log blob.
func (s *SQLiteStore) Delete(ctx context.Context, user common.Address) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM notification_logs WHERE user_address = ?",
		user.Hex(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete log: %w", err)
	}
	return nil
}
