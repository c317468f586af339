package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/football-investment/practice-booking-system-sub013/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, m *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, phase *models.MatchPhase) ([]models.Match, error)
	SetParticipants(ctx context.Context, exec SQLExecutor, id int, p1, p2 *int) error
	SetParticipantSlot(ctx context.Context, exec SQLExecutor, id int, slot int, participantID int) error
	SetNextMatchInfo(ctx context.Context, exec SQLExecutor, id int, nextMatchID, nextSlot *int) error
	SetResult(ctx context.Context, exec SQLExecutor, id int, resultJSON string, winnerID *int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, phase, group_index, round, order_in_round,
	participant1_id, participant2_id, status, result, winner_id,
	bracket_uid, next_match_id, next_slot, match_time, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (
			tournament_id, phase, group_index, round, order_in_round,
			participant1_id, participant2_id, status, bracket_uid, match_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	return executor.QueryRowContext(ctx, query,
		m.TournamentID, m.Phase, m.GroupIndex, m.Round, m.OrderInRound,
		m.Participant1ID, m.Participant2ID, m.Status, m.BracketUID, m.MatchTime,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *postgresMatchRepository) scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.Phase, &m.GroupIndex, &m.Round, &m.OrderInRound,
		&m.Participant1ID, &m.Participant2ID, &m.Status, &m.ResultRaw, &m.WinnerID,
		&m.BracketUID, &m.NextMatchID, &m.NextSlot, &m.MatchTime, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, phase *models.MatchPhase) ([]models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchColumns + ` FROM matches WHERE tournament_id = $1`
	args := []interface{}{tournamentID}

	if phase != nil {
		query += ` AND phase = $2`
		args = append(args, *phase)
	}
	query += ` ORDER BY phase, round, order_in_round`

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		m, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) SetParticipants(ctx context.Context, exec SQLExecutor, id int, p1, p2 *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matches SET participant1_id = $1, participant2_id = $2 WHERE id = $3`, p1, p2, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetParticipantSlot(ctx context.Context, exec SQLExecutor, id int, slot int, participantID int) error {
	executor := r.getExecutor(exec)
	var query string
	switch slot {
	case 1:
		query = `UPDATE matches SET participant1_id = $1 WHERE id = $2`
	case 2:
		query = `UPDATE matches SET participant2_id = $1 WHERE id = $2`
	default:
		return fmt.Errorf("invalid participant slot %d", slot)
	}
	result, err := executor.ExecContext(ctx, query, participantID, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetNextMatchInfo(ctx context.Context, exec SQLExecutor, id int, nextMatchID, nextSlot *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matches SET next_match_id = $1, next_slot = $2 WHERE id = $3`, nextMatchID, nextSlot, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetResult(ctx context.Context, exec SQLExecutor, id int, resultJSON string, winnerID *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matches SET result = $1, winner_id = $2, status = $3 WHERE id = $4`,
		resultJSON, winnerID, models.MatchCompleted, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
