package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/football-investment/practice-booking-system-sub013/models"
)

// ErrRewardAlreadyGranted is returned when an insert collides with the unique
// index on the idempotency key. This is the storage-level guard that makes
// reward distribution safe under concurrent or repeated triggers: whichever
// writer loses the race gets this error and rolls back.
var ErrRewardAlreadyGranted = errors.New("reward with this idempotency key already granted")

type RewardLedgerRepository interface {
	InsertBatch(ctx context.Context, exec SQLExecutor, entries []models.RewardLedgerEntry) error
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.RewardLedgerEntry, error)
}

type postgresRewardLedgerRepository struct {
	db *sql.DB
}

func NewPostgresRewardLedgerRepository(db *sql.DB) RewardLedgerRepository {
	return &postgresRewardLedgerRepository{db: db}
}

func (r *postgresRewardLedgerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertBatch writes every entry or none: callers pass the distribution
// transaction as exec, and the first failed insert aborts the whole batch.
func (r *postgresRewardLedgerRepository) InsertBatch(ctx context.Context, exec SQLExecutor, entries []models.RewardLedgerEntry) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO reward_ledger (
			tournament_id, participant_id, kind, amount, skill_name, skill_delta,
			idempotency_key, batch_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for i := range entries {
		e := &entries[i]
		_, err := executor.ExecContext(ctx, query,
			e.TournamentID, e.ParticipantID, e.Kind, e.Amount, e.SkillName, e.SkillDelta,
			e.IdempotencyKey, e.BatchID,
		)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				return fmt.Errorf("%w: %s", ErrRewardAlreadyGranted, e.IdempotencyKey)
			}
			return fmt.Errorf("failed to insert ledger entry %s: %w", e.IdempotencyKey, err)
		}
	}
	return nil
}

func (r *postgresRewardLedgerRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reward_ledger WHERE tournament_id = $1`, tournamentID).Scan(&count)
	return count, err
}

func (r *postgresRewardLedgerRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.RewardLedgerEntry, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT id, tournament_id, participant_id, kind, amount, skill_name, skill_delta,
		       idempotency_key, batch_id, created_at
		FROM reward_ledger
		WHERE tournament_id = $1
		ORDER BY participant_id, kind, skill_name`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.RewardLedgerEntry, 0)
	for rows.Next() {
		var e models.RewardLedgerEntry
		if scanErr := rows.Scan(
			&e.ID, &e.TournamentID, &e.ParticipantID, &e.Kind, &e.Amount,
			&e.SkillName, &e.SkillDelta, &e.IdempotencyKey, &e.BatchID, &e.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
