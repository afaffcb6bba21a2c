package service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"

	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/middleware"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/models"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/notify"
)

// NotificationService serves a user's own notification log. Every handler
// resolves the user from the authenticated context, so one user can never
// read or mutate another's log.
type NotificationService struct {
	store *notify.Store
}

// NewNotificationService creates a NotificationService over the given store.
func NewNotificationService(store *notify.Store) *NotificationService {
	return &NotificationService{store: store}
}

// RegisterRoutes attaches the notification endpoints to an authenticated
// router.
func (s *NotificationService) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/notifications", s.list).Methods(http.MethodGet)
	r.HandleFunc("/notifications", s.clear).Methods(http.MethodDelete)
	r.HandleFunc("/notifications/counts", s.counts).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id}/read", s.markRead).Methods(http.MethodPost)
	r.HandleFunc("/notifications/{id}/complete", s.markCompleted).Methods(http.MethodPost)
}

func (s *NotificationService) list(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetAddress(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing identity")
		return
	}

	notifications, err := s.store.List(r.Context(), user)
	if err != nil {
		slog.Error("List notifications failed", "user", user.Hex(), "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (s *NotificationService) counts(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetAddress(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing identity")
		return
	}

	unread, err := s.store.UnreadCount(r.Context(), user)
	if err != nil {
		slog.Error("UnreadCount failed", "user", user.Hex(), "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to count notifications")
		return
	}
	pending, err := s.store.PendingSplitCount(r.Context(), user)
	if err != nil {
		slog.Error("PendingSplitCount failed", "user", user.Hex(), "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to count notifications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"unread":         unread,
		"pending_splits": pending,
	})
}

func (s *NotificationService) markRead(w http.ResponseWriter, r *http.Request) {
	s.advance(w, r, s.store.MarkRead)
}

func (s *NotificationService) markCompleted(w http.ResponseWriter, r *http.Request) {
	s.advance(w, r, s.store.MarkCompleted)
}

func (s *NotificationService) advance(w http.ResponseWriter, r *http.Request, op func(context.Context, common.Address, string) error) {
	user, ok := middleware.GetAddress(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing identity")
		return
	}

	id := mux.Vars(r)["id"]
	if err := op(r.Context(), user, id); err != nil {
		slog.Error("Notification update failed", "user", user.Hex(), "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to update notification")
		return
	}
	// Unknown IDs and already-set flags are deliberate no-ops.
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *NotificationService) clear(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetAddress(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing identity")
		return
	}

	if err := s.store.Clear(r.Context(), user); err != nil {
		slog.Error("Clear notifications failed", "user", user.Hex(), "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to clear notifications")
		return
	}
	slog.Info("Notification log cleared", "user", user.Hex())
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
