package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RewardKind string

const (
	RewardCredit RewardKind = "credit"
	RewardXP     RewardKind = "xp"
	RewardSkill  RewardKind = "skill"
)

// RewardLedgerEntry is one immutable settlement row. IdempotencyKey carries a
// UNIQUE index; a second distribution attempt for the same tournament hits the
// constraint instead of double-crediting anyone.
type RewardLedgerEntry struct {
	ID            int        `json:"id" db:"id"`
	TournamentID  int        `json:"tournament_id" db:"tournament_id"`
	ParticipantID int        `json:"participant_id" db:"participant_id"`
	Kind          RewardKind `json:"kind" db:"kind"`
	Amount        int        `json:"amount" db:"amount"`
	SkillName     *string    `json:"skill_name,omitempty" db:"skill_name"`
	SkillDelta    *float64   `json:"skill_delta,omitempty" db:"skill_delta"`

	IdempotencyKey string    `json:"idempotency_key" db:"idempotency_key"`
	BatchID        uuid.UUID `json:"batch_id" db:"batch_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// LedgerKey derives the deterministic idempotency key for a reward row.
// The key depends only on operation inputs, so retries regenerate the same
// key and collide with the unique index instead of inserting again.
func LedgerKey(tournamentID, participantID int, kind RewardKind) string {
	return fmt.Sprintf("t%d:p%d:%s", tournamentID, participantID, kind)
}

// SkillLedgerKey is LedgerKey for skill rows, which are additionally keyed by
// the skill name so one participant can receive several skill deltas.
func SkillLedgerKey(tournamentID, participantID int, skillName string) string {
	return fmt.Sprintf("t%d:p%d:%s:%s", tournamentID, participantID, RewardSkill, skillName)
}

// PlacementReward is what one final rank earns.
type PlacementReward struct {
	Rank           int `json:"rank"`
	XP             int `json:"xp"`
	Credits        int `json:"credits"`
	BaseSkillDelta int `json:"base_skill_delta"`
}

// RewardPolicy configures settlement for a tournament: a placement table plus
// the skill-weight distribution that drives per-skill reactivity.
type RewardPolicy struct {
	Name         string             `json:"name"`
	Placements   []PlacementReward  `json:"placements"`
	SkillWeights map[string]float64 `json:"skill_weights,omitempty"`
	TestedSkills []string           `json:"tested_skills,omitempty"`
}
