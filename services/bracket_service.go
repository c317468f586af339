package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/football-investment/practice-booking-system-sub013/brackets"
	"github.com/football-investment/practice-booking-system-sub013/models"
	"github.com/football-investment/practice-booking-system-sub013/repositories"
)

// BracketService turns the pure fixture blueprints from the brackets package
// into match rows, and routes winners through the knockout tree as results
// land. All multi-row writes happen on the executor the caller provides, so
// fixture generation joins the status-transition transaction.
type BracketService struct {
	tx          TxRunner
	matches     repositories.MatchRepository
	enrollments repositories.EnrollmentRepository
	logger      *slog.Logger
}

func NewBracketService(
	tx TxRunner,
	matches repositories.MatchRepository,
	enrollments repositories.EnrollmentRepository,
	logger *slog.Logger,
) *BracketService {
	return &BracketService{tx: tx, matches: matches, enrollments: enrollments, logger: logger}
}

// GenerateFixtures creates the initial match rows for a tournament entering
// play. Group-knockout and league formats get round-robin groups; pure
// knockout gets a seeded bracket right away; individual-ranking tournaments
// have no fixtures at all.
func (s *BracketService) GenerateFixtures(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	enrollments, err := s.confirmedEnrollments(ctx, exec, t.ID)
	if err != nil {
		return err
	}

	cfg, err := t.FormatConfig()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	switch t.Format {
	case models.FormatGroupKnockout:
		return s.generateGroupStage(ctx, exec, t, enrollments, cfg.GroupCount)
	case models.FormatLeague:
		// A league is a single round-robin group.
		return s.generateGroupStage(ctx, exec, t, enrollments, 1)
	case models.FormatKnockout:
		return s.generateSeededKnockout(ctx, exec, t, enrollments)
	case models.FormatIndividualRanking:
		return nil
	default:
		return fmt.Errorf("%w: unknown tournament format %q", ErrValidationFailed, t.Format)
	}
}

func (s *BracketService) confirmedEnrollments(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.Enrollment, error) {
	confirmed := models.EnrollmentConfirmed
	enrollments, err := s.enrollments.ListByTournament(ctx, exec, tournamentID, &confirmed)
	if err != nil {
		return nil, err
	}
	if len(enrollments) < 2 {
		return nil, fmt.Errorf("%w: at least 2 confirmed enrollees required, have %d", ErrPreconditionFailed, len(enrollments))
	}
	return enrollments, nil
}

func (s *BracketService) generateGroupStage(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, enrollments []models.Enrollment, groupCount int) error {
	if groupCount < 1 {
		groupCount = 1
	}

	// Enrollments arrive in seed order, so snake distribution balances the
	// groups by registration order.
	participantIDs := make([]int, len(enrollments))
	for i, e := range enrollments {
		participantIDs[i] = e.UserID
	}
	groups := brackets.AssignGroups(participantIDs, groupCount)

	memberGroup := make(map[int]int, len(participantIDs))
	for gi, members := range groups {
		for _, id := range members {
			memberGroup[id] = gi
		}
	}
	for _, e := range enrollments {
		if err := s.enrollments.SetGroupIndex(ctx, exec, e.ID, memberGroup[e.UserID]); err != nil {
			return err
		}
	}

	for _, f := range brackets.GenerateGroupFixtures(t.ID, groups) {
		if err := s.createMatch(ctx, exec, t, f); err != nil {
			return err
		}
	}

	s.logger.Info("group fixtures generated",
		"tournament_id", t.ID, "groups", len(groups), "participants", len(participantIDs))
	return nil
}

// generateSeededKnockout builds the bracket tree for a pure knockout
// tournament and fills round one straight from registration seeds.
func (s *BracketService) generateSeededKnockout(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, enrollments []models.Enrollment) error {
	qualifiers := make([]models.Qualifier, len(enrollments))
	for i, e := range enrollments {
		qualifiers[i] = models.Qualifier{ParticipantID: e.UserID, GroupIndex: i, GroupRank: e.Seed}
	}
	return s.SeedKnockout(ctx, exec, t, qualifiers)
}

// SeedKnockout persists the knockout skeleton and fills round one from the
// given qualifiers. Byes promote their participant directly into round two;
// the bye leg itself is recorded as cancelled so the bracket shape stays
// complete.
func (s *BracketService) SeedKnockout(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, qualifiers []models.Qualifier) error {
	if len(qualifiers) < 2 {
		return fmt.Errorf("%w: at least 2 qualifiers required, have %d", ErrPreconditionFailed, len(qualifiers))
	}

	skeleton, err := brackets.GenerateKnockoutSkeleton(brackets.BracketSize(len(qualifiers)))
	if err != nil {
		return err
	}

	// First pass: insert every leg and remember row IDs by bracket UID.
	uidToMatch := make(map[string]*models.Match, len(skeleton))
	inserted := make([]*models.Match, 0, len(skeleton))
	for _, f := range skeleton {
		m, createErr := s.createMatchReturning(ctx, exec, t, f)
		if createErr != nil {
			return createErr
		}
		uidToMatch[f.UID] = m
		inserted = append(inserted, m)
	}

	// Second pass: resolve source-UID links into next_match_id / next_slot on
	// the feeding legs.
	for i, f := range skeleton {
		if f.SourceMatch1UID != nil {
			if err := s.linkFeeder(ctx, exec, uidToMatch, *f.SourceMatch1UID, inserted[i].ID, 1); err != nil {
				return err
			}
		}
		if f.SourceMatch2UID != nil {
			if err := s.linkFeeder(ctx, exec, uidToMatch, *f.SourceMatch2UID, inserted[i].ID, 2); err != nil {
				return err
			}
		}
	}

	// Third pass: fill round one and promote byes.
	byes := 0
	for _, p := range brackets.PairForKnockout(qualifiers) {
		uid := fmt.Sprintf("R1M%d", p.OrderInRound)
		leg, ok := uidToMatch[uid]
		if !ok {
			return fmt.Errorf("knockout pairing references unknown leg %s", uid)
		}

		if p.IsBye() {
			byes++
			if err := s.matches.SetParticipantSlot(ctx, exec, leg.ID, 1, p.Slot1.ParticipantID); err != nil {
				return err
			}
			if leg.NextMatchID == nil || leg.NextSlot == nil {
				return fmt.Errorf("bye leg %s has no onward link", uid)
			}
			if err := s.matches.SetParticipantSlot(ctx, exec, *leg.NextMatchID, *leg.NextSlot, p.Slot1.ParticipantID); err != nil {
				return err
			}
			continue
		}

		p1, p2 := p.Slot1.ParticipantID, p.Slot2.ParticipantID
		if err := s.matches.SetParticipants(ctx, exec, leg.ID, &p1, &p2); err != nil {
			return err
		}
	}

	s.logger.Info("knockout bracket seeded",
		"tournament_id", t.ID, "qualifiers", len(qualifiers), "legs", len(skeleton), "byes", byes)
	return nil
}

func (s *BracketService) linkFeeder(ctx context.Context, exec repositories.SQLExecutor, uidToMatch map[string]*models.Match, sourceUID string, nextMatchID, nextSlot int) error {
	source, ok := uidToMatch[sourceUID]
	if !ok {
		return fmt.Errorf("knockout skeleton references unknown leg %s", sourceUID)
	}
	source.NextMatchID = &nextMatchID
	source.NextSlot = &nextSlot
	return s.matches.SetNextMatchInfo(ctx, exec, source.ID, &nextMatchID, &nextSlot)
}

func (s *BracketService) createMatch(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, f brackets.Fixture) error {
	_, err := s.createMatchReturning(ctx, exec, t, f)
	return err
}

func (s *BracketService) createMatchReturning(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, f brackets.Fixture) (*models.Match, error) {
	uid := f.UID
	m := &models.Match{
		TournamentID:   t.ID,
		Phase:          f.Phase,
		GroupIndex:     f.GroupIndex,
		Round:          f.Round,
		OrderInRound:   f.OrderInRound,
		Participant1ID: f.Participant1ID,
		Participant2ID: f.Participant2ID,
		Status:         models.MatchScheduled,
		BracketUID:     &uid,
		MatchTime:      t.StartDate,
	}
	if err := s.matches.Create(ctx, exec, m); err != nil {
		return nil, fmt.Errorf("failed to create match %s: %w", uid, err)
	}
	return m, nil
}

// RecordResult stores a match result and, for knockout legs, routes the
// winner into the linked next-round slot.
func (s *BracketService) RecordResult(ctx context.Context, matchID int, result models.MatchResult) (*models.Match, error) {
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	var updated *models.Match
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		m, err := s.matches.GetByID(ctx, exec, matchID)
		if err != nil {
			return err
		}
		if m.Status == models.MatchCompleted {
			return fmt.Errorf("%w: match %d already has a result", ErrValidationFailed, matchID)
		}
		if m.Participant1ID == nil || m.Participant2ID == nil {
			return fmt.Errorf("%w: match %d has unresolved participants", ErrValidationFailed, matchID)
		}

		winnerID, err := resolveWinner(m, result)
		if err != nil {
			return err
		}
		if m.Phase == models.PhaseKnockout && winnerID == nil {
			return fmt.Errorf("%w: knockout match cannot end in a draw", ErrValidationFailed)
		}

		if err := m.SetResult(result); err != nil {
			return err
		}
		if err := s.matches.SetResult(ctx, exec, m.ID, *m.ResultRaw, winnerID); err != nil {
			return err
		}
		m.WinnerID = winnerID
		m.Status = models.MatchCompleted

		if m.Phase == models.PhaseKnockout && m.NextMatchID != nil && m.NextSlot != nil {
			if err := s.matches.SetParticipantSlot(ctx, exec, *m.NextMatchID, *m.NextSlot, *winnerID); err != nil {
				return err
			}
		}

		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match result recorded", "match_id", matchID, "tournament_id", updated.TournamentID)
	return updated, nil
}

// resolveWinner derives the winner from the result payload, or nil for a
// draw. Placement and metric results name no head-to-head winner unless the
// payload makes one unambiguous.
func resolveWinner(m *models.Match, result models.MatchResult) (*int, error) {
	switch result.Kind {
	case models.ResultScore:
		switch {
		case result.Score.Participant1 > result.Score.Participant2:
			return m.Participant1ID, nil
		case result.Score.Participant2 > result.Score.Participant1:
			return m.Participant2ID, nil
		default:
			return nil, nil
		}
	case models.ResultPlacements:
		best := result.Placements[0]
		for _, p := range result.Placements[1:] {
			if p.Position < best.Position {
				best = p
			}
		}
		id := best.ParticipantID
		if id != *m.Participant1ID && id != *m.Participant2ID {
			return nil, fmt.Errorf("%w: placement winner %d is not a match participant", ErrValidationFailed, id)
		}
		return &id, nil
	case models.ResultMetric:
		// A single measured value carries no head-to-head outcome.
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown result kind %q", ErrValidationFailed, result.Kind)
	}
}
