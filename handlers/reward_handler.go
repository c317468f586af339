package handlers

import (
	"net/http"

	"github.com/football-investment/practice-booking-system-sub013/services"
)

type RewardHandler struct {
	rewards *services.RewardService
}

func NewRewardHandler(rewards *services.RewardService) *RewardHandler {
	return &RewardHandler{rewards: rewards}
}

// DistributeHandler handles POST /tournaments/{tournamentID}/rewards
//
// Settlement is idempotent: a repeat request gets 200 with the summary of
// the original batch instead of 201, and nothing is written twice.
func (h *RewardHandler) DistributeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.rewards.Distribute(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusCreated
	if summary.AlreadyDistributed {
		status = http.StatusOK
	}
	if err := writeJSON(w, status, jsonResponse{"distribution": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LedgerHandler handles GET /tournaments/{tournamentID}/rewards
func (h *RewardHandler) LedgerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.rewards.Ledger(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"ledger": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
