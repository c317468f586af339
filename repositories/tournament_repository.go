package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/football-investment/practice-booking-system-sub013/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict for this organizer")
	ErrTournamentInvalidOrg   = errors.New("invalid organizer reference")
	ErrTournamentInvalidUser  = errors.New("invalid instructor reference")

	// ErrTournamentStaleState signals a lost compare-and-swap: another
	// transition changed the status since the caller read it.
	ErrTournamentStaleState = errors.New("tournament status changed concurrently")

	// ErrSnapshotAlreadySet guards the write-once enrollment snapshot.
	ErrSnapshotAlreadySet = errors.New("enrollment snapshot already populated")
)

type ListTournamentsFilter struct {
	OrganizerID  *int
	InstructorID *int
	Status       *models.TournamentStatus
	Format       *models.TournamentFormat
	Limit        int
	Offset       int
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdateDetails(ctx context.Context, t *models.Tournament) error
	UpdateStatusCAS(ctx context.Context, exec SQLExecutor, id int, expected, next models.TournamentStatus) error
	SetInstructor(ctx context.Context, exec SQLExecutor, id int, instructorID *int) error
	SetEnrollmentSnapshot(ctx context.Context, exec SQLExecutor, id int, snapshotJSON string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, description, organizer_id, instructor_id, assignment_type,
	format, status, start_date, end_date, location,
	format_config, reward_policy, enrollment_snapshot, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (
			name, description, organizer_id, instructor_id, assignment_type,
			format, status, start_date, end_date, location, format_config, reward_policy
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		t.Name, t.Description, t.OrganizerID, t.InstructorID, t.AssignmentType,
		t.Format, t.Status, t.StartDate, t.EndDate, t.Location,
		t.FormatConfigJSON, t.RewardPolicyJSON,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) scanTournament(row interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.OrganizerID, &t.InstructorID, &t.AssignmentType,
		&t.Format, &t.Status, &t.StartDate, &t.EndDate, &t.Location,
		&t.FormatConfigJSON, &t.RewardPolicyJSON, &t.EnrollmentSnapshotJSON, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	executor := r.getExecutor(nil)
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.scanTournament(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	executor := r.getExecutor(nil)
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.OrganizerID != nil {
		query += fmt.Sprintf(" AND organizer_id = $%d", argID)
		args = append(args, *filter.OrganizerID)
		argID++
	}
	if filter.InstructorID != nil {
		query += fmt.Sprintf(" AND instructor_id = $%d", argID)
		args = append(args, *filter.InstructorID)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Format != nil {
		query += fmt.Sprintf(" AND format = $%d", argID)
		args = append(args, *filter.Format)
		argID++
	}

	query += " ORDER BY start_date DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, scanErr := r.scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, *t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) UpdateDetails(ctx context.Context, t *models.Tournament) error {
	executor := r.getExecutor(nil)
	// Status, snapshot and instructor are owned by their dedicated methods.
	query := `
		UPDATE tournaments SET
			name = $1, description = $2, start_date = $3, end_date = $4,
			location = $5, format_config = $6, reward_policy = $7
		WHERE id = $8`

	result, err := executor.ExecContext(ctx, query,
		t.Name, t.Description, t.StartDate, t.EndDate,
		t.Location, t.FormatConfigJSON, t.RewardPolicyJSON, t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// UpdateStatusCAS moves the status only if it still equals expected. Zero
// affected rows means another transition won the race (or the tournament is
// gone); callers must re-read before retrying.
func (r *postgresTournamentRepository) UpdateStatusCAS(ctx context.Context, exec SQLExecutor, id int, expected, next models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2 AND status = $3`
	result, err := executor.ExecContext(ctx, query, next, id, expected)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentStaleState)
}

func (r *postgresTournamentRepository) SetInstructor(ctx context.Context, exec SQLExecutor, id int, instructorID *int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET instructor_id = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, instructorID, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// SetEnrollmentSnapshot populates the write-once snapshot column. The guard
// in the WHERE clause makes a second write report ErrSnapshotAlreadySet
// instead of silently overwriting finalization history.
func (r *postgresTournamentRepository) SetEnrollmentSnapshot(ctx context.Context, exec SQLExecutor, id int, snapshotJSON string) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments SET enrollment_snapshot = $1
		WHERE id = $2 AND enrollment_snapshot IS NULL`
	result, err := executor.ExecContext(ctx, query, snapshotJSON, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrSnapshotAlreadySet)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournaments_organizer_id_name_key" {
				return ErrTournamentNameConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "tournaments_organizer_id_fkey":
				return ErrTournamentInvalidOrg
			case "tournaments_instructor_id_fkey":
				return ErrTournamentInvalidUser
			}
		}
	}
	return err
}
