package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Participant is one party in a split plan.
type Participant struct {
	// Address identifies the participant on chain.
	Address common.Address

	// DisplayName is an optional human-readable label supplied by the
	// caller. Never used for identity.
	DisplayName string

	// Share is this participant's portion of the total, in wei.
	Share *big.Int
}

// SplitPlan is an exact split of a payment among the payer and the other
// participants.
//
// Invariant: the shares of all participants (payer included) sum to Total
// exactly. The remainder of the equal division is assigned to the
// participants at the front of the slice, payer first, so the allocation
// is deterministic and caller-visible.
type SplitPlan struct {
	// GroupKey is the 0x-prefixed hash of the group the plan belongs to.
	GroupKey string

	// Total is the full payment amount in wei.
	Total *big.Int

	// Payer is the address that paid the recipient up front.
	Payer common.Address

	// Participants holds every party including the payer, in allocation
	// order (payer at index 0).
	Participants []Participant
}
