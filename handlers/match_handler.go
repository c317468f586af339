package handlers

import (
	"net/http"

	"github.com/football-investment/practice-booking-system-sub013/brackets"
	"github.com/football-investment/practice-booking-system-sub013/models"
	"github.com/football-investment/practice-booking-system-sub013/services"
)

type MatchHandler struct {
	bracket  *services.BracketService
	rankings *services.RankingService
	hub      *brackets.Hub
}

func NewMatchHandler(bracket *services.BracketService, rankings *services.RankingService, hub *brackets.Hub) *MatchHandler {
	return &MatchHandler{bracket: bracket, rankings: rankings, hub: hub}
}

// RecordResultHandler handles PUT /matches/{matchID}/result
func (h *MatchHandler) RecordResultHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var result models.MatchResult
	if err := readJSON(w, r, &result); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.bracket.RecordResult(r.Context(), matchID, result)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.hub.BroadcastToRoom(tournamentRoom(match.TournamentID), brackets.StatusMessage{
		Type:    "match_completed",
		Payload: jsonResponse{"match_id": match.ID, "winner_id": match.WinnerID},
	})

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// IngestRankingsHandler handles PUT /tournaments/{tournamentID}/rankings
func (h *MatchHandler) IngestRankingsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Rankings []services.RankingInput `json:"rankings"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.rankings.Ingest(r.Context(), tournamentID, input.Rankings); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRankingsHandler handles GET /tournaments/{tournamentID}/rankings
func (h *MatchHandler) ListRankingsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rankings, err := h.rankings.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"rankings": rankings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
