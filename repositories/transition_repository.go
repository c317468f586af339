package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/football-investment/practice-booking-system-sub013/models"
)

var ErrTransitionRecordNotFound = errors.New("status transition record not found")

// StatusTransitionRepository is the only write path into the audit trail.
// Rows are append-only; there are no update or delete methods on purpose.
type StatusTransitionRepository interface {
	Append(ctx context.Context, exec SQLExecutor, record *models.StatusTransitionRecord) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.StatusTransitionRecord, error)
	Latest(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.StatusTransitionRecord, error)
}

type postgresStatusTransitionRepository struct {
	db *sql.DB
}

func NewPostgresStatusTransitionRepository(db *sql.DB) StatusTransitionRepository {
	return &postgresStatusTransitionRepository{db: db}
}

func (r *postgresStatusTransitionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStatusTransitionRepository) Append(ctx context.Context, exec SQLExecutor, record *models.StatusTransitionRecord) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO status_transitions (tournament_id, old_status, new_status, reason, actor_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return executor.QueryRowContext(ctx, query,
		record.TournamentID, record.OldStatus, record.NewStatus, record.Reason, record.ActorID,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *postgresStatusTransitionRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.StatusTransitionRecord, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT id, tournament_id, old_status, new_status, reason, actor_id, created_at
		FROM status_transitions
		WHERE tournament_id = $1
		ORDER BY id DESC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.StatusTransitionRecord, 0)
	for rows.Next() {
		var rec models.StatusTransitionRecord
		if scanErr := rows.Scan(
			&rec.ID, &rec.TournamentID, &rec.OldStatus, &rec.NewStatus,
			&rec.Reason, &rec.ActorID, &rec.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *postgresStatusTransitionRepository) Latest(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.StatusTransitionRecord, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, old_status, new_status, reason, actor_id, created_at
		FROM status_transitions
		WHERE tournament_id = $1
		ORDER BY id DESC
		LIMIT 1`

	var rec models.StatusTransitionRecord
	err := executor.QueryRowContext(ctx, query, tournamentID).Scan(
		&rec.ID, &rec.TournamentID, &rec.OldStatus, &rec.NewStatus,
		&rec.Reason, &rec.ActorID, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransitionRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}
