// Package auth authenticates wallet owners.
//
// There are no passwords: a user proves control of an address by signing a
// single-use challenge with the wallet (EIP-191 personal_sign), and the
// recovered address becomes the JWT identity.
package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

var (
	ErrNoChallenge      = errors.New("no pending challenge for address")
	ErrChallengeExpired = errors.New("challenge expired")
	ErrBadSignature     = errors.New("signature does not match address")
)

// challengeTTL is how long a login challenge stays valid.
const challengeTTL = 5 * time.Minute

type challenge struct {
	nonce   string
	expires time.Time
}

// WalletAuthenticator issues and verifies login challenges.
type WalletAuthenticator struct {
	mu         sync.Mutex
	challenges map[common.Address]challenge
	now        func() time.Time
}

// NewWalletAuthenticator creates an authenticator with an empty challenge
// table.
func NewWalletAuthenticator() *WalletAuthenticator {
	return &WalletAuthenticator{
		challenges: make(map[common.Address]challenge),
		now:        time.Now,
	}
}

// Challenge issues a fresh nonce for the address and returns the exact
// text the wallet must sign. Issuing a new challenge invalidates any
// previous one for the same address.
func (a *WalletAuthenticator) Challenge(address common.Address) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	nonce := uuid.New().String()
	a.challenges[address] = challenge{nonce: nonce, expires: a.now().Add(challengeTTL)}
	return challengeText(address, nonce)
}

// Verify checks a personal_sign signature over the pending challenge for
// the address. The challenge is consumed on success and on a bad
// signature alike, so each nonce is attempted at most once.
func (a *WalletAuthenticator) Verify(address common.Address, sigHex string) error {
	a.mu.Lock()
	ch, ok := a.challenges[address]
	delete(a.challenges, address)
	a.mu.Unlock()

	if !ok {
		return ErrNoChallenge
	}
	if a.now().After(ch.expires) {
		return ErrChallengeExpired
	}

	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("%w: signature must be %d bytes", ErrBadSignature, crypto.SignatureLength)
	}
	// Wallets return V as 27/28; go-ethereum expects 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}

	hash := accounts.TextHash([]byte(challengeText(address, ch.nonce)))
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if crypto.PubkeyToAddress(*pub) != address {
		return ErrBadSignature
	}
	return nil
}

func challengeText(address common.Address, nonce string) string {
	return fmt.Sprintf("Sign in to SplitMon as %s\nNonce: %s", address.Hex(), nonce)
}
