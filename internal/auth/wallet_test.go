package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// signLikeAWallet signs text the way personal_sign does, including the
// V+27 offset wallets apply.
func signLikeAWallet(t *testing.T, keyHex, text string) string {
	t.Helper()
	key, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		t.Fatalf("bad test key: %v", err)
	}
	sig, err := crypto.Sign(accounts.TextHash([]byte(text)), key)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig)
}

const (
	// Hardhat's well-known first dev account.
	testKey  = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func testAddress(t *testing.T) common.Address {
	t.Helper()
	return common.HexToAddress(testAddr)
}

func TestChallengeVerify(t *testing.T) {
	a := NewWalletAuthenticator()
	addr := testAddress(t)

	text := a.Challenge(addr)
	sig := signLikeAWallet(t, testKey, text)

	if err := a.Verify(addr, sig); err != nil {
		t.Fatalf("Verify failed for a valid signature: %v", err)
	}

	// The challenge is single-use.
	if err := a.Verify(addr, sig); !errors.Is(err, ErrNoChallenge) {
		t.Errorf("replayed challenge: err = %v, want ErrNoChallenge", err)
	}
}

func TestVerifyWrongSigner(t *testing.T) {
	a := NewWalletAuthenticator()
	addr := testAddress(t)

	text := a.Challenge(addr)
	// Signed by a different key than the claimed address.
	otherKey := "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	sig := signLikeAWallet(t, otherKey, text)

	if err := a.Verify(addr, sig); !errors.Is(err, ErrBadSignature) {
		t.Errorf("err = %v, want ErrBadSignature", err)
	}
}

func TestVerifyGarbageSignature(t *testing.T) {
	a := NewWalletAuthenticator()
	addr := testAddress(t)
	a.Challenge(addr)

	if err := a.Verify(addr, "0x1234"); !errors.Is(err, ErrBadSignature) {
		t.Errorf("err = %v, want ErrBadSignature", err)
	}
}

func TestVerifyWithoutChallenge(t *testing.T) {
	a := NewWalletAuthenticator()
	if err := a.Verify(testAddress(t), "0x00"); !errors.Is(err, ErrNoChallenge) {
		t.Errorf("err = %v, want ErrNoChallenge", err)
	}
}

func TestChallengeExpiry(t *testing.T) {
	a := NewWalletAuthenticator()
	addr := testAddress(t)

	text := a.Challenge(addr)
	sig := signLikeAWallet(t, testKey, text)

	a.now = func() time.Time { return time.Now().Add(challengeTTL + time.Minute) }
	if err := a.Verify(addr, sig); !errors.Is(err, ErrChallengeExpired) {
		t.Errorf("err = %v, want ErrChallengeExpired", err)
	}
}

func TestNewChallengeReplacesOld(t *testing.T) {
	a := NewWalletAuthenticator()
	addr := testAddress(t)

	old := a.Challenge(addr)
	a.Challenge(addr)

	if err := a.Verify(addr, signLikeAWallet(t, testKey, old)); !errors.Is(err, ErrBadSignature) {
		t.Errorf("old challenge accepted after reissue: err = %v", err)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	addr := testAddress(t)

	token, err := m.Generate(addr)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Address != addr.Hex() {
		t.Errorf("claims address = %s, want %s", claims.Address, addr.Hex())
	}

	if _, err := m.Validate(token + "x"); err == nil {
		t.Error("tampered token validated")
	}
	other := NewJWTManager("other-secret", time.Hour)
	if _, err := other.Validate(token); err == nil {
		t.Error("token validated under a different secret")
	}
}
