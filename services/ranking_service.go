package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/football-investment/practice-booking-system-sub013/models"
	"github.com/football-investment/practice-booking-system-sub013/repositories"
)

// RankingService ingests final placements from the scoring subsystem and
// serves them back for settlement and display. Rankings are derived data:
// re-ingestion overwrites, and nothing here touches the reward ledger.
type RankingService struct {
	tx          TxRunner
	rankings    repositories.RankingRepository
	tournaments repositories.TournamentRepository
	logger      *slog.Logger
}

func NewRankingService(
	tx TxRunner,
	rankings repositories.RankingRepository,
	tournaments repositories.TournamentRepository,
	logger *slog.Logger,
) *RankingService {
	return &RankingService{tx: tx, rankings: rankings, tournaments: tournaments, logger: logger}
}

type RankingInput struct {
	ParticipantID int `json:"participant_id"`
	Rank          int `json:"rank"`
	Points        int `json:"points"`
	Wins          int `json:"wins"`
	Losses        int `json:"losses"`
	Draws         int `json:"draws"`
}

// Ingest validates and upserts a full ranking table in one transaction.
// Ranks must be the contiguous sequence 1..n with no duplicates.
func (s *RankingService) Ingest(ctx context.Context, tournamentID int, inputs []RankingInput) error {
	if len(inputs) == 0 {
		return fmt.Errorf("%w: empty ranking table", ErrValidationFailed)
	}

	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	if t.Status != models.StatusInProgress && t.Status != models.StatusCompleted {
		return fmt.Errorf("%w: rankings can only be recorded during or after play, status is %s", ErrPreconditionFailed, t.Status)
	}

	rows := make([]RankingInput, len(inputs))
	copy(rows, inputs)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Rank < rows[j].Rank })

	seen := make(map[int]bool, len(rows))
	for i, row := range rows {
		if row.Rank != i+1 {
			return fmt.Errorf("%w: ranks must form the sequence 1..%d", ErrValidationFailed, len(rows))
		}
		if seen[row.ParticipantID] {
			return fmt.Errorf("%w: participant %d ranked twice", ErrValidationFailed, row.ParticipantID)
		}
		seen[row.ParticipantID] = true
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, row := range rows {
			ranking := &models.Ranking{
				TournamentID:  tournamentID,
				ParticipantID: row.ParticipantID,
				Rank:          row.Rank,
				Points:        row.Points,
				Wins:          row.Wins,
				Losses:        row.Losses,
				Draws:         row.Draws,
			}
			if err := s.rankings.Upsert(ctx, exec, ranking); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("rankings ingested", "tournament_id", tournamentID, "participants", len(rows))
	return nil
}

func (s *RankingService) ListByTournament(ctx context.Context, tournamentID int) ([]models.Ranking, error) {
	return s.rankings.ListByTournament(ctx, nil, tournamentID)
}
