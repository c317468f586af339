package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/football-investment/practice-booking-system-sub013/models"
)

var ErrRankingNotFound = errors.New("ranking not found")

// RankingRepository persists final placements. Rows are derived data supplied
// by the scoring subsystem and recomputable, so Upsert overwrites freely.
type RankingRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, ranking *models.Ranking) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Ranking, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresRankingRepository struct {
	db *sql.DB
}

func NewPostgresRankingRepository(db *sql.DB) RankingRepository {
	return &postgresRankingRepository{db: db}
}

func (r *postgresRankingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRankingRepository) Upsert(ctx context.Context, exec SQLExecutor, ranking *models.Ranking) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO rankings (tournament_id, participant_id, rank, points, wins, losses, draws, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (tournament_id, participant_id) DO UPDATE SET
			rank = EXCLUDED.rank, points = EXCLUDED.points,
			wins = EXCLUDED.wins, losses = EXCLUDED.losses, draws = EXCLUDED.draws,
			updated_at = NOW()
		RETURNING id, updated_at`

	return executor.QueryRowContext(ctx, query,
		ranking.TournamentID, ranking.ParticipantID, ranking.Rank,
		ranking.Points, ranking.Wins, ranking.Losses, ranking.Draws,
	).Scan(&ranking.ID, &ranking.UpdatedAt)
}

func (r *postgresRankingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Ranking, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, participant_id, rank, points, wins, losses, draws, updated_at
		FROM rankings
		WHERE tournament_id = $1
		ORDER BY rank ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rankings := make([]models.Ranking, 0)
	for rows.Next() {
		var rk models.Ranking
		if scanErr := rows.Scan(
			&rk.ID, &rk.TournamentID, &rk.ParticipantID, &rk.Rank,
			&rk.Points, &rk.Wins, &rk.Losses, &rk.Draws, &rk.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		rankings = append(rankings, rk)
	}
	return rankings, rows.Err()
}

func (r *postgresRankingRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM rankings WHERE tournament_id = $1`, tournamentID)
	return err
}
