package models

// NotificationKind classifies a notification for the UI.
// Values match the frontend's stored schema.
type NotificationKind string

const (
	NotificationSplitRequest    NotificationKind = "split_request"
	NotificationPaymentReceived NotificationKind = "payment_received"
	NotificationGroupCreated    NotificationKind = "group_created"
)

// Notification is one entry in a user's notification log.
//
// ID is derived from the notification's content (kind, group, recipient,
// counterparty, amount), so re-observing the same chain event yields the
// same ID and the log stays duplicate-free. Lifecycle flags only move
// forward: IsRead false->true, IsCompleted false->true, never back.
type Notification struct {
	ID      string           `json:"id"`
	Kind    NotificationKind `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`

	// GroupKey is the 0x-prefixed group hash this notification refers to.
	GroupKey string `json:"groupHash"`

	// Amount is the wei amount as a decimal string; "0" when the
	// originating event carried no amount.
	Amount string `json:"amount"`

	// From is the counterparty address (creator, adder, contributor or
	// requester depending on Kind).
	From string `json:"from"`

	// CreatedAt is the Unix timestamp of first observation.
	CreatedAt int64 `json:"timestamp"`

	IsRead      bool `json:"isRead"`
	IsCompleted bool `json:"isCompleted"`
}
