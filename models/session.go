package models

import "time"

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionHeld      SessionStatus = "held"
	SessionCancelled SessionStatus = "cancelled"
)

// Session is a scheduled practice slot belonging to a tournament. At least one
// session must exist before the tournament can start seeking an instructor.
type Session struct {
	ID           int           `json:"id" db:"id"`
	TournamentID int           `json:"tournament_id" db:"tournament_id"`
	InstructorID *int          `json:"instructor_id,omitempty" db:"instructor_id"`
	StartsAt     time.Time     `json:"starts_at" db:"starts_at"`
	EndsAt       time.Time     `json:"ends_at" db:"ends_at"`
	Location     *string       `json:"location,omitempty" db:"location"`
	Status       SessionStatus `json:"status" db:"status"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}
