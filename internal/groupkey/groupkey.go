// Package groupkey derives the deterministic group identifier used by the
// payment contract.
//
// The contract computes the identifier as
//
//	keccak256(abi.encodePacked(_groupName, msg.sender))
//
// which packs the UTF-8 bytes of the name directly against the 20 raw
// address bytes, with no length prefix or separator. This package must stay
// in lock-step with that derivation: every group lookup by name depends on
// both sides producing the same hash from the same inputs.
package groupkey

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Derive returns the group key for (name, creator).
//
// Pure and total: identical inputs always produce the identical key, and
// there are no error conditions. The name is hashed exactly as submitted
// on chain; callers must not trim or normalize it here.
func Derive(name string, creator common.Address) common.Hash {
	packed := make([]byte, 0, len(name)+common.AddressLength)
	packed = append(packed, name...)
	packed = append(packed, creator.Bytes()...)
	return crypto.Keccak256Hash(packed)
}
