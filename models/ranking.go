package models

import "time"

// Ranking is one participant's final placement in a tournament. Rows are
// supplied by the scoring subsystem (or derived from standings); the core
// reads them for reward settlement and display.
type Ranking struct {
	ID            int       `json:"id" db:"id"`
	TournamentID  int       `json:"tournament_id" db:"tournament_id"`
	ParticipantID int       `json:"participant_id" db:"participant_id"`
	Rank          int       `json:"rank" db:"rank"`
	Points        int       `json:"points" db:"points"`
	Wins          int       `json:"wins" db:"wins"`
	Losses        int       `json:"losses" db:"losses"`
	Draws         int       `json:"draws" db:"draws"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
