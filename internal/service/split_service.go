package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"

	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/allocator"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/groupkey"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/pkg/amount"
)

// SplitService exposes the pure derivation and allocation helpers. The
// frontend calls these before submitting transactions so the plan it
// displays matches what the contract will compute.
type SplitService struct{}

// NewSplitService creates a SplitService.
func NewSplitService() *SplitService {
	return &SplitService{}
}

// RegisterRoutes attaches the split endpoints.
func (s *SplitService) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/groups/key", s.groupKey).Methods(http.MethodGet)
	r.HandleFunc("/splits/plan", s.plan).Methods(http.MethodPost)
}

// groupKey derives the contract's group identifier for (name, creator).
func (s *SplitService) groupKey(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	creatorHex := r.URL.Query().Get("creator")
	if name == "" || !common.IsHexAddress(creatorHex) {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "name and creator address required")
		return
	}

	key := groupkey.Derive(name, common.HexToAddress(creatorHex))
	writeJSON(w, http.StatusOK, map[string]string{"group_hash": key.Hex()})
}

type planRequest struct {
	GroupName string `json:"group_name"`
	// Total is the payment amount in MON, e.g. "10.00".
	Total        string   `json:"total"`
	Payer        string   `json:"payer"`
	Participants []string `json:"participants"`
}

type planShare struct {
	Address string `json:"address"`
	// Wei is the exact on-chain share.
	Wei string `json:"wei"`
	// Mon is the display form of Wei.
	Mon string `json:"mon"`
}

type planResponse struct {
	GroupHash string      `json:"group_hash"`
	TotalWei  string      `json:"total_wei"`
	Shares    []planShare `json:"shares"`
}

// plan computes an exact equal split of the total among the payer and the
// other participants.
func (s *SplitService) plan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid request body")
		return
	}
	if !common.IsHexAddress(req.Payer) {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "payer address required")
		return
	}

	total, err := amount.ParseMON(req.Total)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid total amount")
		return
	}

	others := make([]common.Address, 0, len(req.Participants))
	for _, p := range req.Participants {
		if !common.IsHexAddress(p) {
			writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid participant address: "+p)
			return
		}
		others = append(others, common.HexToAddress(p))
	}

	plan, err := allocator.BuildPlan(req.GroupName, total, common.HexToAddress(req.Payer), others)
	if err != nil {
		if errors.Is(err, allocator.ErrInvalidAllocation) {
			writeError(w, http.StatusBadRequest, "INVALID_ALLOCATION", err.Error())
			return
		}
		slog.Error("BuildPlan failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to build plan")
		return
	}

	shares := make([]planShare, len(plan.Participants))
	for i, p := range plan.Participants {
		shares[i] = planShare{
			Address: p.Address.Hex(),
			Wei:     p.Share.String(),
			Mon:     amount.FormatMON(p.Share),
		}
	}

	slog.Info("Split plan computed",
		"group", plan.GroupKey,
		"payer", plan.Payer.Hex(),
		"participants", len(plan.Participants),
	)

	writeJSON(w, http.StatusOK, planResponse{
		GroupHash: plan.GroupKey,
		TotalWei:  plan.Total.String(),
		Shares:    shares,
	})
}
