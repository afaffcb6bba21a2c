package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EventKind identifies which contract event a LedgerEvent was decoded from.
type EventKind string

const (
	EventGroupCreated        EventKind = "GroupCreated"
	EventMemberAdded         EventKind = "MemberAdded"
	EventFundsAdded          EventKind = "FundsAdded"
	EventSplitRequestCreated EventKind = "SplitRequestCreated"
)

// LedgerEvent is a raw event observed on the payment contract.
//
// The subscription that produces these is at-least-once: the same logical
// event may appear in several poll windows, and ordering across kinds is
// not guaranteed. Consumers must be idempotent.
type LedgerEvent struct {
	Kind EventKind

	// GroupKey is the contract's group identifier,
	// keccak256(abi.encodePacked(groupName, creator)).
	GroupKey common.Hash

	// GroupName is only present on GroupCreated events.
	GroupName string

	// Actor is the address that triggered the event: the creator on
	// GroupCreated, the adder on MemberAdded, the contributor on
	// FundsAdded, the requester on SplitRequestCreated.
	Actor common.Address

	// Target is the address the event is aimed at: the added member on
	// MemberAdded, the request recipient on SplitRequestCreated.
	// Zero for the other kinds.
	Target common.Address

	// Amount in wei. Nil for kinds that carry no amount.
	Amount *big.Int

	// Block and Index locate the originating log. Informational only:
	// reconciliation does not depend on chain position.
	Block uint64
	Index uint
}
