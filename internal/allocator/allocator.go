// Package allocator computes exact-sum equal splits of a payment.
//
// All arithmetic is integer math on wei. Floating point would drift: a
// 10 MON bill over 3 people has no finite binary representation per share,
// and the shares must sum back to the total to the wei because they are
// submitted on chain.
package allocator

import (
	"errors"
	"math/big"

	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/groupkey"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/models"
	"github.com/ethereum/go-ethereum/common"
)

// ErrInvalidAllocation is returned for a non-positive participant count or
// a negative total.
var ErrInvalidAllocation = errors.New("allocator: invalid allocation input")

// Allocate splits total wei equally among n participants.
//
// base = floor(total/n); the first (total mod n) entries receive base+1 so
// the returned shares sum to total exactly. The caller's iteration order
// decides who absorbs the remainder, and the same inputs always produce
// the same output.
func Allocate(total *big.Int, n int) ([]*big.Int, error) {
	if n < 1 {
		return nil, ErrInvalidAllocation
	}
	if total == nil || total.Sign() < 0 {
		return nil, ErrInvalidAllocation
	}

	base, rem := new(big.Int).DivMod(total, big.NewInt(int64(n)), new(big.Int))
	remainder := int(rem.Int64())

	shares := make([]*big.Int, n)
	for i := range shares {
		share := new(big.Int).Set(base)
		if i < remainder {
			share.Add(share, big.NewInt(1))
		}
		shares[i] = share
	}
	return shares, nil
}

// BuildPlan assembles a SplitPlan for a group payment.
//
// The payer occupies slot 0 and therefore absorbs the remainder first.
// Participant order beyond the payer is preserved from the caller.
func BuildPlan(groupName string, total *big.Int, payer common.Address, others []common.Address) (*models.SplitPlan, error) {
	shares, err := Allocate(total, len(others)+1)
	if err != nil {
		return nil, err
	}

	participants := make([]models.Participant, 0, len(others)+1)
	participants = append(participants, models.Participant{Address: payer, Share: shares[0]})
	for i, addr := range others {
		participants = append(participants, models.Participant{Address: addr, Share: shares[i+1]})
	}

	return &models.SplitPlan{
		GroupKey:     groupkey.Derive(groupName, payer).Hex(),
		Total:        new(big.Int).Set(total),
		Payer:        payer,
		Participants: participants,
	}, nil
}
