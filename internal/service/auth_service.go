package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"

	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/auth"
)

// AuthService handles wallet sign-in: challenge issuance and signature
// verification.
type AuthService struct {
	wallets *auth.WalletAuthenticator
	jwt     *auth.JWTManager
}

// NewAuthService creates an AuthService.
func NewAuthService(wallets *auth.WalletAuthenticator, jwt *auth.JWTManager) *AuthService {
	return &AuthService{wallets: wallets, jwt: jwt}
}

// RegisterRoutes attaches the auth endpoints to an unauthenticated router.
func (s *AuthService) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/auth/challenge", s.challenge).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
}

type challengeRequest struct {
	Address string `json:"address"`
}

func (s *AuthService) challenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !common.IsHexAddress(req.Address) {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "wallet address required")
		return
	}

	text := s.wallets.Challenge(common.HexToAddress(req.Address))
	writeJSON(w, http.StatusOK, map[string]string{"message": text})
}

type loginRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

func (s *AuthService) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !common.IsHexAddress(req.Address) {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "address and signature required")
		return
	}

	addr := common.HexToAddress(req.Address)
	if err := s.wallets.Verify(addr, req.Signature); err != nil {
		slog.Warn("Wallet login rejected", "address", addr.Hex(), "error", err)
		switch {
		case errors.Is(err, auth.ErrNoChallenge), errors.Is(err, auth.ErrChallengeExpired):
			writeError(w, http.StatusUnauthorized, "CHALLENGE_INVALID", err.Error())
		default:
			writeError(w, http.StatusUnauthorized, "BAD_SIGNATURE", "signature does not match address")
		}
		return
	}

	token, err := s.jwt.Generate(addr)
	if err != nil {
		slog.Error("Token generation failed", "address", addr.Hex(), "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to issue token")
		return
	}

	slog.Info("Wallet logged in", "address", addr.Hex())
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
