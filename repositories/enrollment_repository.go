package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/football-investment/practice-booking-system-sub013/models"
)

var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrEnrollmentConflict = errors.New("user is already enrolled in this tournament")
)

type EnrollmentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, e *models.Enrollment) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, status *models.EnrollmentStatus) ([]models.Enrollment, error)
	CountConfirmed(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.EnrollmentStatus) error
	SetGroupIndex(ctx context.Context, exec SQLExecutor, id int, groupIndex int) error
}

type postgresEnrollmentRepository struct {
	db *sql.DB
}

func NewPostgresEnrollmentRepository(db *sql.DB) EnrollmentRepository {
	return &postgresEnrollmentRepository{db: db}
}

func (r *postgresEnrollmentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresEnrollmentRepository) Create(ctx context.Context, exec SQLExecutor, e *models.Enrollment) error {
	executor := r.getExecutor(exec)
	// Seed is the registration order within the tournament.
	query := `
		INSERT INTO enrollments (tournament_id, user_id, status, seed)
		VALUES ($1, $2, $3,
			(SELECT COALESCE(MAX(seed), 0) + 1 FROM enrollments WHERE tournament_id = $1))
		RETURNING id, seed, created_at`

	err := executor.QueryRowContext(ctx, query,
		e.TournamentID, e.UserID, e.Status,
	).Scan(&e.ID, &e.Seed, &e.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrEnrollmentConflict
	}
	return err
}

func (r *postgresEnrollmentRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, status *models.EnrollmentStatus) ([]models.Enrollment, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, user_id, status, seed, group_index, created_at
		FROM enrollments
		WHERE tournament_id = $1`
	args := []interface{}{tournamentID}

	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY seed ASC`

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := make([]models.Enrollment, 0)
	for rows.Next() {
		var e models.Enrollment
		if scanErr := rows.Scan(
			&e.ID, &e.TournamentID, &e.UserID, &e.Status, &e.Seed, &e.GroupIndex, &e.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

func (r *postgresEnrollmentRepository) CountConfirmed(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COUNT(*) FROM enrollments WHERE tournament_id = $1 AND status = $2`

	var count int
	err := executor.QueryRowContext(ctx, query, tournamentID, models.EnrollmentConfirmed).Scan(&count)
	return count, err
}

func (r *postgresEnrollmentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.EnrollmentStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE enrollments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEnrollmentNotFound)
}

func (r *postgresEnrollmentRepository) SetGroupIndex(ctx context.Context, exec SQLExecutor, id int, groupIndex int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE enrollments SET group_index = $1 WHERE id = $2`, groupIndex, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEnrollmentNotFound)
}
