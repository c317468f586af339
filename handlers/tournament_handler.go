package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/football-investment/practice-booking-system-sub013/brackets"
	"github.com/football-investment/practice-booking-system-sub013/middleware"
	"github.com/football-investment/practice-booking-system-sub013/models"
	"github.com/football-investment/practice-booking-system-sub013/repositories"
	"github.com/football-investment/practice-booking-system-sub013/services"
)

type TournamentHandler struct {
	tournaments *services.TournamentService
	finalizer   *services.FinalizerService
	hub         *brackets.Hub
}

func NewTournamentHandler(tournaments *services.TournamentService, finalizer *services.FinalizerService, hub *brackets.Hub) *TournamentHandler {
	return &TournamentHandler{tournaments: tournaments, finalizer: finalizer, hub: hub}
}

func tournamentRoom(id int) string {
	return fmt.Sprintf("tournament:%d", id)
}

// CreateHandler handles POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create a tournament")
		return
	}

	var input struct {
		Name           string    `json:"name"`
		Description    *string   `json:"description"`
		AssignmentType string    `json:"assignment_type"`
		Format         string    `json:"format"`
		StartDate      time.Time `json:"start_date"`
		EndDate        time.Time `json:"end_date"`
		Location       *string   `json:"location"`
		FormatConfig   *string   `json:"format_config"`
		RewardPolicy   *string   `json:"reward_policy"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournaments.Create(r.Context(), services.CreateTournamentInput{
		Name:           input.Name,
		Description:    input.Description,
		OrganizerID:    currentUserID,
		AssignmentType: models.AssignmentType(input.AssignmentType),
		Format:         models.TournamentFormat(input.Format),
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Location:       input.Location,
		FormatConfig:   input.FormatConfig,
		RewardPolicy:   input.RewardPolicy,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /tournaments
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListTournamentsFilter
	query := r.URL.Query()

	if statusStr := query.Get("status"); statusStr != "" {
		status := models.TournamentStatus(statusStr)
		if !status.Valid() {
			badRequestResponse(w, r, fmt.Errorf("invalid status query parameter %q", statusStr))
			return
		}
		filter.Status = &status
	}
	if formatStr := query.Get("format"); formatStr != "" {
		format := models.TournamentFormat(formatStr)
		filter.Format = &format
	}
	if organizerStr := query.Get("organizer_id"); organizerStr != "" {
		if id, err := strconv.Atoi(organizerStr); err == nil && id > 0 {
			filter.OrganizerID = &id
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}

	tournaments, err := h.tournaments.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournaments.GetDetail(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// TransitionHandler handles POST /tournaments/{tournamentID}/transitions
func (h *TournamentHandler) TransitionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournaments.RequestTransition(r.Context(), services.TransitionRequest{
		TournamentID: id,
		Requested:    models.TournamentStatus(input.Status),
		Reason:       input.Reason,
		ActorID:      currentUserID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// Fan out only after the transition committed.
	h.hub.BroadcastToRoom(tournamentRoom(id), brackets.StatusMessage{
		Type:    "status_changed",
		Payload: jsonResponse{"tournament_id": id, "status": tournament.Status},
	})

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// HistoryHandler handles GET /tournaments/{tournamentID}/history
func (h *TournamentHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	history, err := h.tournaments.GetHistory(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"history": history}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AssignInstructorHandler handles PUT /tournaments/{tournamentID}/instructor
func (h *TournamentHandler) AssignInstructorHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		InstructorID int `json:"instructor_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.InstructorID < 1 {
		badRequestResponse(w, r, fmt.Errorf("instructor_id must be positive"))
		return
	}

	tournament, err := h.tournaments.AssignInstructor(r.Context(), id, input.InstructorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinalizeHandler handles POST /tournaments/{tournamentID}/finalize
func (h *TournamentHandler) FinalizeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	result, err := h.finalizer.Finalize(r.Context(), id, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyFinalized {
		status = http.StatusOK
	} else {
		h.hub.BroadcastToRoom(tournamentRoom(id), brackets.StatusMessage{
			Type:    "group_stage_finalized",
			Payload: jsonResponse{"tournament_id": id, "qualifiers": result.Snapshot.Qualifiers},
		})
	}

	if err := writeJSON(w, status, jsonResponse{
		"snapshot":          result.Snapshot,
		"already_finalized": result.AlreadyFinalized,
	}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
