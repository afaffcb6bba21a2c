package events

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/groupkey"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/models"
)

var (
	alice = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	bob   = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

func testNormalizer() *Normalizer {
	return NewNormalizerAt(func() time.Time { return time.Unix(1700000000, 0) })
}

func TestNormalizeFanOut(t *testing.T) {
	group := groupkey.Derive("Dinner", alice)

	tests := []struct {
		name          string
		ev            models.LedgerEvent
		wantRecipient common.Address
		wantKind      models.NotificationKind
		wantFrom      common.Address
		wantAmount    string
	}{
		{
			name: "group created notifies creator",
			ev: models.LedgerEvent{
				Kind:      models.EventGroupCreated,
				GroupKey:  group,
				GroupName: "Dinner",
				Actor:     alice,
			},
			wantRecipient: alice,
			wantKind:      models.NotificationGroupCreated,
			wantFrom:      alice,
			wantAmount:    "0",
		},
		{
			name: "member added notifies the member",
			ev: models.LedgerEvent{
				Kind:     models.EventMemberAdded,
				GroupKey: group,
				Actor:    alice,
				Target:   bob,
			},
			wantRecipient: bob,
			wantKind:      models.NotificationGroupCreated,
			wantFrom:      alice,
			wantAmount:    "0",
		},
		{
			name: "funds added notifies the contributor",
			ev: models.LedgerEvent{
				Kind:     models.EventFundsAdded,
				GroupKey: group,
				Actor:    bob,
				Amount:   big.NewInt(3000000000000000000),
			},
			wantRecipient: bob,
			wantKind:      models.NotificationPaymentReceived,
			wantFrom:      bob,
			wantAmount:    "3000000000000000000",
		},
		{
			name: "split request notifies the recipient",
			ev: models.LedgerEvent{
				Kind:     models.EventSplitRequestCreated,
				GroupKey: group,
				Actor:    alice,
				Target:   bob,
				Amount:   big.NewInt(3000000000000000000),
			},
			wantRecipient: bob,
			wantKind:      models.NotificationSplitRequest,
			wantFrom:      alice,
			wantAmount:    "3000000000000000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipient, n, ok := testNormalizer().Normalize(tt.ev)
			if !ok {
				t.Fatal("Normalize dropped a well-formed event")
			}
			if recipient != tt.wantRecipient {
				t.Errorf("recipient = %s, want %s", recipient.Hex(), tt.wantRecipient.Hex())
			}
			if n.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", n.Kind, tt.wantKind)
			}
			if n.From != tt.wantFrom.Hex() {
				t.Errorf("from = %s, want %s", n.From, tt.wantFrom.Hex())
			}
			if n.Amount != tt.wantAmount {
				t.Errorf("amount = %s, want %s", n.Amount, tt.wantAmount)
			}
			if n.GroupKey != group.Hex() {
				t.Errorf("groupKey = %s, want %s", n.GroupKey, group.Hex())
			}
			if n.ID == "" {
				t.Error("notification must carry a content-derived ID")
			}
			if n.IsRead || n.IsCompleted {
				t.Error("fresh notifications must be unread and pending")
			}
			if n.CreatedAt != 1700000000 {
				t.Errorf("createdAt = %d, want injected clock value", n.CreatedAt)
			}
		})
	}
}

func TestNormalizeDropsMalformed(t *testing.T) {
	group := groupkey.Derive("Dinner", alice)

	tests := []struct {
		name string
		ev   models.LedgerEvent
	}{
		{"zero group key", models.LedgerEvent{Kind: models.EventGroupCreated, Actor: alice}},
		{"group created without creator", models.LedgerEvent{Kind: models.EventGroupCreated, GroupKey: group}},
		{"member added without member", models.LedgerEvent{Kind: models.EventMemberAdded, GroupKey: group, Actor: alice}},
		{"funds added without amount", models.LedgerEvent{Kind: models.EventFundsAdded, GroupKey: group, Actor: bob}},
		{"split request without amount", models.LedgerEvent{Kind: models.EventSplitRequestCreated, GroupKey: group, Actor: alice, Target: bob}},
		{"unknown kind", models.LedgerEvent{Kind: "Transfer", GroupKey: group, Actor: alice}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, ok := testNormalizer().Normalize(tt.ev); ok {
				t.Error("malformed event was not dropped")
			}
		})
	}
}

func TestContentKeyStable(t *testing.T) {
	group := groupkey.Derive("Dinner", alice)
	ev := models.LedgerEvent{
		Kind:     models.EventSplitRequestCreated,
		GroupKey: group,
		Actor:    alice,
		Target:   bob,
		Amount:   big.NewInt(300),
	}

	// The same logical event observed in two poll windows must produce
	// the same ID, even with different observation times.
	_, first, _ := NewNormalizerAt(func() time.Time { return time.Unix(100, 0) }).Normalize(ev)
	_, second, _ := NewNormalizerAt(func() time.Time { return time.Unix(999, 0) }).Normalize(ev)
	if first.ID != second.ID {
		t.Errorf("redelivered event changed ID: %s vs %s", first.ID, second.ID)
	}

	// A different amount is a different notification.
	ev2 := ev
	ev2.Amount = big.NewInt(301)
	_, other, _ := testNormalizer().Normalize(ev2)
	if other.ID == first.ID {
		t.Error("distinct amounts must produce distinct IDs")
	}

	// Same fields, different kind.
	if ContentKey(models.NotificationSplitRequest, group, bob, alice, big.NewInt(300)) ==
		ContentKey(models.NotificationPaymentReceived, group, bob, alice, big.NewInt(300)) {
		t.Error("kind must participate in the content key")
	}
}
