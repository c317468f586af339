package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type MatchPhase string

const (
	PhaseGroup    MatchPhase = "GROUP"
	PhaseKnockout MatchPhase = "KNOCKOUT"
)

type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchCompleted MatchStatus = "completed"
	MatchCancelled MatchStatus = "cancelled"
)

// MatchResultKind tags the result variant so consumers can handle known kinds
// exhaustively and reject unknown ones instead of probing an open-ended map.
type MatchResultKind string

const (
	ResultScore      MatchResultKind = "score"      // head-to-head score pair
	ResultPlacements MatchResultKind = "placements" // individual-ranking order
	ResultMetric     MatchResultKind = "metric"     // single measured value
)

type ScorePair struct {
	Participant1 int `json:"participant1"`
	Participant2 int `json:"participant2"`
}

type Placement struct {
	ParticipantID int `json:"participant_id"`
	Position      int `json:"position"`
}

// MatchResult is the tagged result variant stored as JSON on the match row.
// Exactly one payload field matching Kind is set.
type MatchResult struct {
	Kind       MatchResultKind `json:"kind"`
	Score      *ScorePair      `json:"score,omitempty"`
	Placements []Placement     `json:"placements,omitempty"`
	Metric     *float64        `json:"metric,omitempty"`
}

func (r MatchResult) Validate() error {
	switch r.Kind {
	case ResultScore:
		if r.Score == nil {
			return fmt.Errorf("result kind %q requires a score payload", r.Kind)
		}
	case ResultPlacements:
		if len(r.Placements) == 0 {
			return fmt.Errorf("result kind %q requires a placements payload", r.Kind)
		}
	case ResultMetric:
		if r.Metric == nil {
			return fmt.Errorf("result kind %q requires a metric payload", r.Kind)
		}
	default:
		return fmt.Errorf("unknown result kind %q", r.Kind)
	}
	return nil
}

// Match is one playable leg of a tournament. Group-phase matches know both
// participants from fixture generation; knockout legs may start with empty
// participant slots that qualification fills in later.
type Match struct {
	ID           int        `json:"id" db:"id"`
	TournamentID int        `json:"tournament_id" db:"tournament_id"`
	Phase        MatchPhase `json:"phase" db:"phase"`
	GroupIndex   *int       `json:"group_index,omitempty" db:"group_index"`
	Round        int        `json:"round" db:"round"`
	OrderInRound int        `json:"order_in_round" db:"order_in_round"`

	Participant1ID *int `json:"participant1_id,omitempty" db:"participant1_id"`
	Participant2ID *int `json:"participant2_id,omitempty" db:"participant2_id"`

	Status    MatchStatus `json:"status" db:"status"`
	ResultRaw *string     `json:"-" db:"result"`
	WinnerID  *int        `json:"winner_id,omitempty" db:"winner_id"`

	// Knockout bracket links, set at skeleton generation.
	BracketUID  *string `json:"bracket_uid,omitempty" db:"bracket_uid"`
	NextMatchID *int    `json:"next_match_id,omitempty" db:"next_match_id"`
	NextSlot    *int    `json:"next_slot,omitempty" db:"next_slot"`

	MatchTime time.Time `json:"match_time" db:"match_time"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Result decodes the result column, or nil when the match has not been played.
func (m *Match) Result() (*MatchResult, error) {
	if m.ResultRaw == nil || *m.ResultRaw == "" {
		return nil, nil
	}
	var r MatchResult
	if err := json.Unmarshal([]byte(*m.ResultRaw), &r); err != nil {
		return nil, fmt.Errorf("match %d: malformed result: %w", m.ID, err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("match %d: %w", m.ID, err)
	}
	return &r, nil
}

func (m *Match) SetResult(r MatchResult) error {
	if err := r.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	s := string(raw)
	m.ResultRaw = &s
	return nil
}
