// Package memory provides an in-memory implementation of storage.Store.
// It is used by tests as the injected persistence fake and works as a
// throwaway backend for local development.
package memory

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/storage"
)

// Ensure MemoryStore implements storage.Store
var _ storage.Store = (*MemoryStore)(nil)

// MemoryStore holds log blobs in a mutex-guarded map.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[common.Address][]byte
}

// New creates an empty MemoryStore.
func New() *MemoryStore {
	return &MemoryStore{blobs: make(map[common.Address][]byte)}
}

// Get returns a copy of the user's log blob, or storage.ErrNotFound.
func (m *MemoryStore) Get(_ context.Context, user common.Address) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	blob, ok := m.blobs[user]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

// Set replaces the user's log blob.
func (m *MemoryStore) Set(_ context.Context, user common.Address, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(blob))
	copy(stored, blob)
	m.blobs[user] = stored
	return nil
}

// Delete removes the user's log blob.
func (m *MemoryStore) Delete(_ context.Context, user common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, user)
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
