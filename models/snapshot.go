package models

import "time"

// StandingEntry is one line of a finalized group table.
type StandingEntry struct {
	ParticipantID   int `json:"participant_id"`
	Rank            int `json:"rank"`
	Points          int `json:"points"`
	GamesPlayed     int `json:"games_played"`
	Wins            int `json:"wins"`
	Draws           int `json:"draws"`
	Losses          int `json:"losses"`
	ScoreFor        int `json:"score_for"`
	ScoreAgainst    int `json:"score_against"`
	ScoreDifference int `json:"score_difference"`
}

type GroupSnapshot struct {
	GroupIndex int             `json:"group_index"`
	Standings  []StandingEntry `json:"standings"`
}

type Qualifier struct {
	ParticipantID int `json:"participant_id"`
	GroupIndex    int `json:"group_index"`
	GroupRank     int `json:"group_rank"`
}

// EnrollmentSnapshot captures group composition and qualification results at
// the moment of group-stage finalization. Written once per tournament and
// kept verbatim for audit and recovery.
type EnrollmentSnapshot struct {
	FinalizedAt time.Time       `json:"finalized_at"`
	Groups      []GroupSnapshot `json:"groups"`
	Qualifiers  []Qualifier     `json:"qualifiers"`
}
