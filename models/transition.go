package models

import "time"

// StatusTransitionRecord is one row of the append-only lifecycle audit trail.
// Records are immutable once written; the creation event has OldStatus nil.
type StatusTransitionRecord struct {
	ID           int               `json:"id" db:"id"`
	TournamentID int               `json:"tournament_id" db:"tournament_id"`
	OldStatus    *TournamentStatus `json:"old_status" db:"old_status"`
	NewStatus    TournamentStatus  `json:"new_status" db:"new_status"`
	Reason       string            `json:"reason" db:"reason"`
	ActorID      int               `json:"actor_id" db:"actor_id"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}
