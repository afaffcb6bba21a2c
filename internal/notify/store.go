// Package notify implements the per-user notification log.
//
// The log is append-only and deduplicated by content-derived ID: appending
// a record whose ID already exists is a no-op, which is what makes the
// at-least-once event subscription safe to replay. Lifecycle flags only
// move forward (unread -> read, pending -> completed) and individual
// records are never deleted; Clear drops a user's whole log.
//
// Persistence is delegated to a storage.Store holding one blob per user,
// replaced atomically on every mutation. Concurrent writers from other
// processes cannot corrupt the log: new keys are idempotent and flags only
// advance, so the worst case is one tab observing a change a tick late.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/models"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/storage"
)

// Store serializes access to the per-user logs held in the underlying
// key-value store. Logs are stored newest-first, matching the order the
// UI renders.
type Store struct {
	mu sync.Mutex
	kv storage.Store
}

// NewStore creates a Store over the given persistence backend.
func NewStore(kv storage.Store) *Store {
	return &Store{kv: kv}
}

// Append inserts the notification into the user's log unless a record with
// the same ID already exists. It reports whether a new record was inserted;
// on a duplicate nothing is written and the existing record is untouched
// (first write wins).
func (s *Store) Append(ctx context.Context, user common.Address, n *models.Notification) (bool, error) {
	if n == nil || n.ID == "" {
		return false, fmt.Errorf("notify: notification must carry an ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.load(ctx, user)
	for _, existing := range log {
		if existing.ID == n.ID {
			return false, nil
		}
	}

	log = append([]models.Notification{*n}, log...)
	if err := s.save(ctx, user, log); err != nil {
		return false, err
	}
	return true, nil
}

// MarkRead sets the read flag on the record with the given ID. Missing IDs
// and already-read records are no-ops, keeping the flag monotonic.
func (s *Store) MarkRead(ctx context.Context, user common.Address, id string) error {
	return s.advance(ctx, user, id, func(n *models.Notification) bool {
		if n.IsRead {
			return false
		}
		n.IsRead = true
		return true
	})
}

// MarkCompleted sets the completed flag on the record with the given ID.
// Missing IDs and already-completed records are no-ops.
func (s *Store) MarkCompleted(ctx context.Context, user common.Address, id string) error {
	return s.advance(ctx, user, id, func(n *models.Notification) bool {
		if n.IsCompleted {
			return false
		}
		n.IsCompleted = true
		return true
	})
}

// List returns the user's notifications, newest first.
func (s *Store) List(ctx context.Context, user common.Address) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.load(ctx, user)
	out := make([]models.Notification, len(log))
	copy(out, log)
	return out, nil
}

// UnreadCount returns the number of unread notifications.
func (s *Store) UnreadCount(ctx context.Context, user common.Address) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.load(ctx, user) {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

// PendingSplitCount returns the number of split requests not yet completed.
func (s *Store) PendingSplitCount(ctx context.Context, user common.Address) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.load(ctx, user) {
		if n.Kind == models.NotificationSplitRequest && !n.IsCompleted {
			count++
		}
	}
	return count, nil
}

// Clear removes every notification for the user. Other users' logs are
// untouched.
func (s *Store) Clear(ctx context.Context, user common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.kv.Delete(ctx, user)
}

// advance applies a forward-only mutation to one record, persisting only
// when something actually changed.
func (s *Store) advance(ctx context.Context, user common.Address, id string, mutate func(*models.Notification) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.load(ctx, user)
	for i := range log {
		if log[i].ID != id {
			continue
		}
		if !mutate(&log[i]) {
			return nil
		}
		return s.save(ctx, user, log)
	}
	return nil
}

// load reads and decodes the user's log. A missing key is an empty log; a
// corrupt blob is reported and degraded to an empty log rather than
// surfaced as a failure, so one bad write never bricks a user's session.
func (s *Store) load(ctx context.Context, user common.Address) []models.Notification {
	blob, err := s.kv.Get(ctx, user)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Failed to load notification log, starting empty",
				"user", user.Hex(), "error", err)
		}
		return nil
	}

	var log []models.Notification
	if err := json.Unmarshal(blob, &log); err != nil {
		slog.Warn("Corrupt notification log, starting empty",
			"user", user.Hex(), "error", err)
		return nil
	}
	return log
}

func (s *Store) save(ctx context.Context, user common.Address, log []models.Notification) error {
	blob, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("notify: failed to encode log: %w", err)
	}
	if err := s.kv.Set(ctx, user, blob); err != nil {
		return fmt.Errorf("notify: failed to persist log: %w", err)
	}
	return nil
}
