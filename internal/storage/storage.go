// Package storage provides abstractions for persisting per-user
// notification logs.
package storage

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNotFound is returned by Get when no log exists for the user.
// Callers treat it as an empty log, not a failure.
var ErrNotFound = errors.New("storage: no log for user")

// Store is a key-value interface keyed by user address, with whole-log
// read-full/write-full semantics. Set must replace the value atomically;
// readers never observe a partially written log.
//
// This abstraction allows swapping backends (SQLite, PostgreSQL, memory)
// without touching the notification layer, and lets tests inject an
// in-memory fake.
type Store interface {
	// Get returns the persisted log blob for the user, or ErrNotFound.
	Get(ctx context.Context, user common.Address) ([]byte, error)

	// Set atomically replaces the user's log blob.
	Set(ctx context.Context, user common.Address, blob []byte) error

	// Delete removes the user's log blob. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, user common.Address) error

	// Close releases any resources held by the store.
	Close() error
}
