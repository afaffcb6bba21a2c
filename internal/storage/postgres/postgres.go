// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Store interface, for deployments where the sqlite file is not an
// option (multiple replicas sharing one database).
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	_ "github.com/lib/pq" // Postgres driver

	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/storage"
)

// Ensure PostgresStore implements storage.Store
var _ storage.Store = (*PostgresStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS notification_logs (
    user_address TEXT PRIMARY KEY,
    log BYTEA NOT NULL
);
`

// PostgresStore implements storage.Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// New connects to the database at dsn and ensures the schema exists.
func New(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Get returns the log blob for the user.
func (s *PostgresStore) Get(ctx context.Context, user common.Address) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT log FROM notification_logs WHERE user_address = $1",
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
func (s *PostgresStore) Set(ctx context.Context, user common.Address, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notification_logs (user_address, log) VALUES ($1, $2)
		 ON CONFLICT (user_address) DO UPDATE SET log = EXCLUDED.log`,
		user.Hex(), blob,
	)
	if err != nil {
		return fmt.Errorf("failed to set log: %w", err)
	}
	return nil
}

// Delete removes the user's log blob.
func (s *PostgresStore) Delete(ctx context.Context, user common.Address) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM notification_logs WHERE user_address = $1",
		user.Hex(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete log: %w", err)
	}
	return nil
}
