package models

import "time"

type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "pending"
	EnrollmentConfirmed EnrollmentStatus = "confirmed"
	EnrollmentWithdrawn EnrollmentStatus = "withdrawn"
)

// Enrollment registers a player in a tournament. Seed is the registration
// order and doubles as the last tie-break in group standings. GroupIndex is
// assigned when group fixtures are generated and stays nil for formats
// without a group phase.
type Enrollment struct {
	ID           int              `json:"id" db:"id"`
	TournamentID int              `json:"tournament_id" db:"tournament_id"`
	UserID       int              `json:"user_id" db:"user_id"`
	Status       EnrollmentStatus `json:"status" db:"status"`
	Seed         int              `json:"seed" db:"seed"`
	GroupIndex   *int             `json:"group_index,omitempty" db:"group_index"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
