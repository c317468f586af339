package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/football-investment/practice-booking-system-sub013/models"
	"github.com/football-investment/practice-booking-system-sub013/repositories"
)

// SessionService manages the practice slots attached to a tournament.
type SessionService struct {
	sessions    repositories.SessionRepository
	tournaments repositories.TournamentRepository
	logger      *slog.Logger
}

func NewSessionService(
	sessions repositories.SessionRepository,
	tournaments repositories.TournamentRepository,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{sessions: sessions, tournaments: tournaments, logger: logger}
}

type CreateSessionInput struct {
	TournamentID int
	StartsAt     time.Time
	EndsAt       time.Time
	Location     *string
}

func (s *SessionService) Create(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	if !input.EndsAt.After(input.StartsAt) {
		return nil, fmt.Errorf("%w: session must end after it starts", ErrValidationFailed)
	}

	t, err := s.tournaments.GetByID(ctx, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if t.Status == models.StatusInProgress || t.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: sessions cannot be added in status %s", ErrPreconditionFailed, t.Status)
	}

	session := &models.Session{
		TournamentID: input.TournamentID,
		InstructorID: t.InstructorID,
		StartsAt:     input.StartsAt,
		EndsAt:       input.EndsAt,
		Location:     input.Location,
		Status:       models.SessionScheduled,
	}
	if err := s.sessions.Create(ctx, nil, session); err != nil {
		return nil, err
	}

	s.logger.Info("session created", "tournament_id", input.TournamentID, "session_id", session.ID)
	return session, nil
}

func (s *SessionService) ListByTournament(ctx context.Context, tournamentID int) ([]models.Session, error) {
	return s.sessions.ListByTournament(ctx, tournamentID)
}

func (s *SessionService) Delete(ctx context.Context, id int) error {
	err := s.sessions.Delete(ctx, id)
	if errors.Is(err, repositories.ErrSessionNotFound) {
		return ErrNotFound
	}
	return err
}
