package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	StatusDraft               TournamentStatus = "DRAFT"
	StatusSeekingInstructor   TournamentStatus = "SEEKING_INSTRUCTOR"
	StatusPendingInstructor   TournamentStatus = "PENDING_INSTRUCTOR_ACCEPTANCE"
	StatusInstructorConfirmed TournamentStatus = "INSTRUCTOR_CONFIRMED"
	StatusReadyForEnrollment  TournamentStatus = "READY_FOR_ENROLLMENT"
	StatusEnrollmentOpen      TournamentStatus = "ENROLLMENT_OPEN"
	StatusInProgress          TournamentStatus = "IN_PROGRESS"
	StatusCompleted           TournamentStatus = "COMPLETED"
	StatusCancelled           TournamentStatus = "CANCELLED"
)

// IsTerminal reports whether no further transitions can leave the status.
func (s TournamentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSeekingInstructor, StatusPendingInstructor,
		StatusInstructorConfirmed, StatusReadyForEnrollment, StatusEnrollmentOpen,
		StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type AssignmentType string

const (
	AssignmentOpen        AssignmentType = "OPEN_ASSIGNMENT"
	AssignmentApplication AssignmentType = "APPLICATION_BASED"
)

type TournamentFormat string

const (
	FormatLeague            TournamentFormat = "LEAGUE"
	FormatKnockout          TournamentFormat = "KNOCKOUT"
	FormatGroupKnockout     TournamentFormat = "GROUP_KNOCKOUT"
	FormatIndividualRanking TournamentFormat = "INDIVIDUAL_RANKING"
)

// FormatConfig holds the per-tournament bracket parameters, stored as JSON on
// the tournaments row. Zero values fall back to the defaults below.
type FormatConfig struct {
	GroupCount         int `json:"group_count"`
	QualifiersPerGroup int `json:"qualifiers_per_group"`
	PointsWin          int `json:"points_win"`
	PointsDraw         int `json:"points_draw"`
	PointsLoss         int `json:"points_loss"`
}

const (
	DefaultPointsWin  = 3
	DefaultPointsDraw = 1
	DefaultPointsLoss = 0
)

func (c FormatConfig) WinPoints() int {
	if c.PointsWin == 0 && c.PointsDraw == 0 && c.PointsLoss == 0 {
		return DefaultPointsWin
	}
	return c.PointsWin
}

func (c FormatConfig) DrawPoints() int {
	if c.PointsWin == 0 && c.PointsDraw == 0 && c.PointsLoss == 0 {
		return DefaultPointsDraw
	}
	return c.PointsDraw
}

func (c FormatConfig) LossPoints() int {
	if c.PointsWin == 0 && c.PointsDraw == 0 && c.PointsLoss == 0 {
		return DefaultPointsLoss
	}
	return c.PointsLoss
}

type Tournament struct {
	ID             int              `json:"id" db:"id"`
	Name           string           `json:"name" db:"name"`
	Description    *string          `json:"description,omitempty" db:"description"`
	OrganizerID    int              `json:"organizer_id" db:"organizer_id"`
	InstructorID   *int             `json:"instructor_id,omitempty" db:"instructor_id"`
	AssignmentType AssignmentType   `json:"assignment_type" db:"assignment_type"`
	Format         TournamentFormat `json:"format" db:"format"`
	Status         TournamentStatus `json:"status" db:"status"`
	StartDate      time.Time        `json:"start_date" db:"start_date"`
	EndDate        time.Time        `json:"end_date" db:"end_date"`
	Location       *string          `json:"location,omitempty" db:"location"`

	// FormatConfigJSON and RewardPolicyJSON are raw column values; use
	// FormatConfig() and RewardPolicy() to decode them.
	FormatConfigJSON *string `json:"-" db:"format_config"`
	RewardPolicyJSON *string `json:"-" db:"reward_policy"`

	// EnrollmentSnapshotJSON is populated exactly once, at group-stage
	// finalization, and is never overwritten afterwards.
	EnrollmentSnapshotJSON *string `json:"-" db:"enrollment_snapshot"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Optional linked entities, populated by services rather than scans.
	Sessions    []Session    `json:"sessions,omitempty" db:"-"`
	Enrollments []Enrollment `json:"enrollments,omitempty" db:"-"`
	Matches     []Match      `json:"matches,omitempty" db:"-"`
	Rankings    []Ranking    `json:"rankings,omitempty" db:"-"`
	History     []StatusTransitionRecord `json:"history,omitempty" db:"-"`
}

// FormatConfig decodes the format_config column. A NULL column yields the
// zero config, which resolves to the default 3/1/0 point scheme.
func (t *Tournament) FormatConfig() (FormatConfig, error) {
	var cfg FormatConfig
	if t.FormatConfigJSON == nil || *t.FormatConfigJSON == "" {
		return cfg, nil
	}
	if err := json.Unmarshal([]byte(*t.FormatConfigJSON), &cfg); err != nil {
		return cfg, fmt.Errorf("tournament %d: malformed format_config: %w", t.ID, err)
	}
	return cfg, nil
}

// RewardPolicy decodes the reward_policy column. Returns nil when the
// tournament has no embedded policy and the named default should apply.
func (t *Tournament) RewardPolicy() (*RewardPolicy, error) {
	if t.RewardPolicyJSON == nil || *t.RewardPolicyJSON == "" {
		return nil, nil
	}
	var p RewardPolicy
	if err := json.Unmarshal([]byte(*t.RewardPolicyJSON), &p); err != nil {
		return nil, fmt.Errorf("tournament %d: malformed reward_policy: %w", t.ID, err)
	}
	return &p, nil
}

// EnrollmentSnapshot decodes the enrollment_snapshot column, or nil when the
// group stage has not been finalized yet.
func (t *Tournament) EnrollmentSnapshot() (*EnrollmentSnapshot, error) {
	if t.EnrollmentSnapshotJSON == nil || *t.EnrollmentSnapshotJSON == "" {
		return nil, nil
	}
	var s EnrollmentSnapshot
	if err := json.Unmarshal([]byte(*t.EnrollmentSnapshotJSON), &s); err != nil {
		return nil, fmt.Errorf("tournament %d: malformed enrollment_snapshot: %w", t.ID, err)
	}
	return &s, nil
}
