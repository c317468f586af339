package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/football-investment/practice-booking-system-sub013/models"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, session *models.Session) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Session, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	SetInstructor(ctx context.Context, exec SQLExecutor, tournamentID int, instructorID int) error
	Delete(ctx context.Context, id int) error
}

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSessionRepository) Create(ctx context.Context, exec SQLExecutor, s *models.Session) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO sessions (tournament_id, instructor_id, starts_at, ends_at, location, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return executor.QueryRowContext(ctx, query,
		s.TournamentID, s.InstructorID, s.StartsAt, s.EndsAt, s.Location, s.Status,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *postgresSessionRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Session, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT id, tournament_id, instructor_id, starts_at, ends_at, location, status, created_at
		FROM sessions
		WHERE tournament_id = $1
		ORDER BY starts_at ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		var s models.Session
		if scanErr := rows.Scan(
			&s.ID, &s.TournamentID, &s.InstructorID, &s.StartsAt, &s.EndsAt,
			&s.Location, &s.Status, &s.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *postgresSessionRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COUNT(*) FROM sessions WHERE tournament_id = $1 AND status != $2`

	var count int
	err := executor.QueryRowContext(ctx, query, tournamentID, models.SessionCancelled).Scan(&count)
	return count, err
}

func (r *postgresSessionRepository) SetInstructor(ctx context.Context, exec SQLExecutor, tournamentID int, instructorID int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE sessions SET instructor_id = $1 WHERE tournament_id = $2 AND status = $3`
	_, err := executor.ExecContext(ctx, query, instructorID, tournamentID, models.SessionScheduled)
	return err
}

func (r *postgresSessionRepository) Delete(ctx context.Context, id int) error {
	executor := r.getExecutor(nil)
	result, err := executor.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}
