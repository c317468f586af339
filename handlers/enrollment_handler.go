package handlers

import (
	"net/http"

	"github.com/football-investment/practice-booking-system-sub013/middleware"
	"github.com/football-investment/practice-booking-system-sub013/services"
)

type EnrollmentHandler struct {
	enrollments *services.EnrollmentService
}

func NewEnrollmentHandler(enrollments *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// EnrollHandler handles POST /tournaments/{tournamentID}/enrollments
func (h *EnrollmentHandler) EnrollHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to enroll")
		return
	}

	enrollment, err := h.enrollments.Enroll(r.Context(), tournamentID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"enrollment": enrollment}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// WithdrawHandler handles DELETE /tournaments/{tournamentID}/enrollments/{enrollmentID}
func (h *EnrollmentHandler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	enrollmentID, err := getIDFromURL(r, "enrollmentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.enrollments.Withdraw(r.Context(), tournamentID, enrollmentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListHandler handles GET /tournaments/{tournamentID}/enrollments
func (h *EnrollmentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	enrollments, err := h.enrollments.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"enrollments": enrollments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
