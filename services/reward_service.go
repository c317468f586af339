package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/football-investment/practice-booking-system-sub013/models"
	"github.com/football-investment/practice-booking-system-sub013/repositories"
	"github.com/football-investment/practice-booking-system-sub013/rewards"
)

// RewardService settles a completed tournament: it converts the final
// rankings into immutable ledger rows, exactly once per tournament. The
// at-most-once property rests on an application-level pre-check and,
// decisively, on the unique index over the deterministic idempotency keys.
type RewardService struct {
	tx          TxRunner
	tournaments repositories.TournamentRepository
	rankings    repositories.RankingRepository
	ledger      repositories.RewardLedgerRepository
	logger      *slog.Logger
}

func NewRewardService(
	tx TxRunner,
	tournaments repositories.TournamentRepository,
	rankings repositories.RankingRepository,
	ledger repositories.RewardLedgerRepository,
	logger *slog.Logger,
) *RewardService {
	return &RewardService{
		tx:          tx,
		tournaments: tournaments,
		rankings:    rankings,
		ledger:      ledger,
		logger:      logger,
	}
}

// DistributionSummary reports a settlement. AlreadyDistributed means the
// call found an earlier settlement and wrote nothing: the successful no-op
// of a repeated trigger, not an error.
type DistributionSummary struct {
	TournamentID       int        `json:"tournament_id"`
	BatchID            *uuid.UUID `json:"batch_id,omitempty"`
	Participants       int        `json:"participants"`
	XPTotal            int        `json:"xp_total"`
	CreditsTotal       int        `json:"credits_total"`
	SkillRewards       int        `json:"skill_rewards"`
	AlreadyDistributed bool       `json:"already_distributed"`
}

// Distribute settles rewards for a completed tournament.
//
// Preconditions, checked in order: the tournament must be COMPLETED, must
// have at least one ranking row, and its reward policy must resolve. Then
// every ledger row for the batch is written in one transaction, all
// participants or none. If any idempotency key already exists (a previous
// or concurrent settlement), the transaction rolls back and the summary of
// the existing settlement is returned with AlreadyDistributed set.
func (s *RewardService) Distribute(ctx context.Context, tournamentID int) (*DistributionSummary, error) {
	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if t.Status != models.StatusCompleted {
		return nil, fmt.Errorf("%w: status is %s", ErrTournamentNotCompleted, t.Status)
	}

	rankingRows, err := s.rankings.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(rankingRows) == 0 {
		return nil, ErrRankingsMissing
	}

	policy, err := rewards.Resolve(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRewardConfiguration, err)
	}
	for _, warning := range policy.Reactivity.Warnings {
		s.logger.Warn("reward policy weight anomaly", "tournament_id", tournamentID, "detail", warning)
	}

	// Cheap early exit; the unique index below is what actually closes the
	// race window.
	existing, err := s.ledger.CountByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return s.summarizeExisting(ctx, tournamentID)
	}

	batchID := uuid.New()
	entries := buildLedgerEntries(tournamentID, batchID, rankingRows, policy)
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: placement table matches no ranked participant", ErrRewardConfiguration)
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.ledger.InsertBatch(ctx, exec, entries)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrRewardAlreadyGranted) {
			return s.summarizeExisting(ctx, tournamentID)
		}
		return nil, err
	}

	summary := summarize(tournamentID, entries)
	summary.BatchID = &batchID
	s.logger.Info("rewards distributed",
		"tournament_id", tournamentID, "batch_id", batchID, "policy", policy.Name,
		"participants", summary.Participants, "xp_total", summary.XPTotal,
		"credits_total", summary.CreditsTotal, "skill_rewards", summary.SkillRewards)
	return summary, nil
}

// Ledger returns the settlement rows for display and audit.
func (s *RewardService) Ledger(ctx context.Context, tournamentID int) ([]models.RewardLedgerEntry, error) {
	return s.ledger.ListByTournament(ctx, tournamentID)
}

// buildLedgerEntries expands the ranked participants against the placement
// table. Ranks outside the table earn nothing and produce no rows. Skill
// deltas apply the bounded reactivity multiplier to the placement's base
// delta.
func buildLedgerEntries(tournamentID int, batchID uuid.UUID, rankingRows []models.Ranking, policy *rewards.ResolvedPolicy) []models.RewardLedgerEntry {
	entries := make([]models.RewardLedgerEntry, 0, len(rankingRows)*2)
	for _, rk := range rankingRows {
		placement, ok := policy.RewardForRank(rk.Rank)
		if !ok {
			continue
		}

		entries = append(entries, models.RewardLedgerEntry{
			TournamentID:   tournamentID,
			ParticipantID:  rk.ParticipantID,
			Kind:           models.RewardXP,
			Amount:         placement.XP,
			IdempotencyKey: models.LedgerKey(tournamentID, rk.ParticipantID, models.RewardXP),
			BatchID:        batchID,
		})
		entries = append(entries, models.RewardLedgerEntry{
			TournamentID:   tournamentID,
			ParticipantID:  rk.ParticipantID,
			Kind:           models.RewardCredit,
			Amount:         placement.Credits,
			IdempotencyKey: models.LedgerKey(tournamentID, rk.ParticipantID, models.RewardCredit),
			BatchID:        batchID,
		})

		for _, skill := range policy.TestedSkills() {
			delta := roundDelta(float64(placement.BaseSkillDelta) * policy.Reactivity.For(skill))
			skillName := skill
			entries = append(entries, models.RewardLedgerEntry{
				TournamentID:   tournamentID,
				ParticipantID:  rk.ParticipantID,
				Kind:           models.RewardSkill,
				SkillName:      &skillName,
				SkillDelta:     &delta,
				IdempotencyKey: models.SkillLedgerKey(tournamentID, rk.ParticipantID, skill),
				BatchID:        batchID,
			})
		}
	}
	return entries
}

// roundDelta keeps skill deltas at two decimal places so ledger rows are
// stable across platforms.
func roundDelta(v float64) float64 {
	return math.Round(v*100) / 100
}

func summarize(tournamentID int, entries []models.RewardLedgerEntry) *DistributionSummary {
	summary := &DistributionSummary{TournamentID: tournamentID}
	participants := make(map[int]struct{})
	for _, e := range entries {
		participants[e.ParticipantID] = struct{}{}
		switch e.Kind {
		case models.RewardXP:
			summary.XPTotal += e.Amount
		case models.RewardCredit:
			summary.CreditsTotal += e.Amount
		case models.RewardSkill:
			summary.SkillRewards++
		}
	}
	summary.Participants = len(participants)
	return summary
}

func (s *RewardService) summarizeExisting(ctx context.Context, tournamentID int) (*DistributionSummary, error) {
	entries, err := s.ledger.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	summary := summarize(tournamentID, entries)
	summary.AlreadyDistributed = true
	if len(entries) > 0 {
		batchID := entries[0].BatchID
		summary.BatchID = &batchID
	}
	s.logger.Info("rewards already distributed, nothing written", "tournament_id", tournamentID)
	return summary, nil
}
