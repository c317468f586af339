// Package lifecycle holds the tournament state machine: the static transition
// graph and the validator that checks requested transitions against it. The
// package is pure (no storage, no clock) so every edge and guard can be
// unit-tested without a database.
package lifecycle

import "github.com/football-investment/practice-booking-system-sub013/models"

// statusGraph lists every legal edge. CANCELLED is reachable from every
// non-terminal state; COMPLETED is terminal. There is deliberately no back
// edge from ENROLLMENT_OPEN to READY_FOR_ENROLLMENT: once enrollment opens it
// can only move forward or be cancelled explicitly.
var statusGraph = map[models.TournamentStatus][]models.TournamentStatus{
	models.StatusDraft: {
		models.StatusSeekingInstructor,
		models.StatusCancelled,
	},
	models.StatusSeekingInstructor: {
		models.StatusPendingInstructor,
		models.StatusInstructorConfirmed, // OPEN_ASSIGNMENT skips the acceptance step
		models.StatusCancelled,
	},
	models.StatusPendingInstructor: {
		models.StatusInstructorConfirmed,
		models.StatusSeekingInstructor, // instructor declined, back to the pool
		models.StatusCancelled,
	},
	models.StatusInstructorConfirmed: {
		models.StatusReadyForEnrollment,
		models.StatusCancelled,
	},
	models.StatusReadyForEnrollment: {
		models.StatusEnrollmentOpen,
		models.StatusCancelled,
	},
	models.StatusEnrollmentOpen: {
		models.StatusInProgress,
		models.StatusCancelled,
	},
	models.StatusInProgress: {
		models.StatusCompleted,
		models.StatusCancelled,
	},
	models.StatusCompleted: {},
	models.StatusCancelled: {},
}

// EdgeExists reports whether current→requested is a legal edge.
func EdgeExists(current, requested models.TournamentStatus) bool {
	for _, next := range statusGraph[current] {
		if next == requested {
			return true
		}
	}
	return false
}

// Successors returns the legal target statuses from current, in declaration
// order. The returned slice must not be mutated.
func Successors(current models.TournamentStatus) []models.TournamentStatus {
	return statusGraph[current]
}
