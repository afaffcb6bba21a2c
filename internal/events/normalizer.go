// Package events maps raw contract events onto per-user notifications.
//
// The mapping implements the dapp's fan-out table:
//
//	GroupCreated        -> notify the creator           (group_created)
//	MemberAdded         -> notify the added member      (group_created)
//	FundsAdded          -> notify the contributing user (payment_received)
//	SplitRequestCreated -> notify the request recipient (split_request)
//
// Each notification gets a content-derived ID so that a redelivered event
// normalizes to the same record. The dapp originally used timestamp+random
// IDs, which turned every redelivery into a duplicate notification; the
// derived key is the fix.
package events

import (
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/metrics"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/models"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/pkg/amount"
)

// Normalizer turns LedgerEvents into notifications addressed to a user.
type Normalizer struct {
	// now is injected for deterministic tests.
	now func() time.Time
}

// NewNormalizer returns a Normalizer stamping records with wall-clock time.
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewNormalizerAt returns a Normalizer using the given clock.
func NewNormalizerAt(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Normalize maps a raw event to (recipient, notification).
//
// ok is false when the event is malformed or carries no notification for
// anyone; malformed input is logged and counted, never an error. One bad
// event must not block the rest of a poll batch.
func (n *Normalizer) Normalize(ev models.LedgerEvent) (common.Address, *models.Notification, bool) {
	if ev.GroupKey == (common.Hash{}) {
		return n.drop(ev, "missing group key")
	}

	switch ev.Kind {
	case models.EventGroupCreated:
		if ev.Actor == (common.Address{}) {
			return n.drop(ev, "missing creator")
		}
		return ev.Actor, n.record(ev, models.NotificationGroupCreated, ev.Actor, ev.Actor, nil,
			"Group Created",
			fmt.Sprintf("A new split group %q has been created and you've been added to it.", ev.GroupName),
		), true

	case models.EventMemberAdded:
		if ev.Target == (common.Address{}) || ev.Actor == (common.Address{}) {
			return n.drop(ev, "missing member or adder")
		}
		return ev.Target, n.record(ev, models.NotificationGroupCreated, ev.Target, ev.Actor, nil,
			"Group Created",
			"A new split group \"Split Group\" has been created and you've been added to it.",
		), true

	case models.EventFundsAdded:
		if ev.Actor == (common.Address{}) {
			return n.drop(ev, "missing contributor")
		}
		if ev.Amount == nil {
			return n.drop(ev, "missing amount")
		}
		return ev.Actor, n.record(ev, models.NotificationPaymentReceived, ev.Actor, ev.Actor, ev.Amount,
			"Payment Received",
			fmt.Sprintf("You received %s MON for a split payment.", amount.FormatMON(ev.Amount)),
		), true

	case models.EventSplitRequestCreated:
		if ev.Target == (common.Address{}) || ev.Actor == (common.Address{}) {
			return n.drop(ev, "missing requester or recipient")
		}
		if ev.Amount == nil {
			return n.drop(ev, "missing amount")
		}
		mon := amount.FormatMON(ev.Amount)
		return ev.Target, n.record(ev, models.NotificationSplitRequest, ev.Target, ev.Actor, ev.Amount,
			"New Split Request",
			fmt.Sprintf("You have been added to a split for %s MON. Your share is %s MON.", mon, mon),
		), true

	default:
		return n.drop(ev, "unknown kind")
	}
}

func (n *Normalizer) record(ev models.LedgerEvent, kind models.NotificationKind, recipient, counterparty common.Address, amt *big.Int, title, message string) *models.Notification {
	amtStr := "0"
	if amt != nil {
		amtStr = amt.String()
	}
	return &models.Notification{
		ID:        ContentKey(kind, ev.GroupKey, recipient, counterparty, amt),
		Kind:      kind,
		Title:     title,
		Message:   message,
		GroupKey:  ev.GroupKey.Hex(),
		Amount:    amtStr,
		From:      counterparty.Hex(),
		CreatedAt: n.now().Unix(),
	}
}

func (n *Normalizer) drop(ev models.LedgerEvent, reason string) (common.Address, *models.Notification, bool) {
	metrics.MalformedDropped.Inc()
	slog.Warn("Dropping malformed event",
		"kind", ev.Kind,
		"group", ev.GroupKey.Hex(),
		"block", ev.Block,
		"reason", reason,
	)
	return common.Address{}, nil, false
}

// ContentKey derives the notification identifier from its meaningful
// fields. The contract does not expose a per-request nonce, so two split
// requests that agree on every field collapse into one notification; that
// is the accepted trade-off that makes at-least-once delivery safe.
func ContentKey(kind models.NotificationKind, groupKey common.Hash, recipient, counterparty common.Address, amt *big.Int) string {
	packed := make([]byte, 0, 128)
	packed = append(packed, kind...)
	packed = append(packed, groupKey.Bytes()...)
	packed = append(packed, recipient.Bytes()...)
	packed = append(packed, counterparty.Bytes()...)
	if amt != nil {
		packed = append(packed, amt.Bytes()...)
	}
	return crypto.Keccak256Hash(packed).Hex()
}
