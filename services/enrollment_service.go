package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/football-investment/practice-booking-system-sub013/models"
	"github.com/football-investment/practice-booking-system-sub013/repositories"
)

// EnrollmentService registers players into tournaments. Enrollment is only
// possible while the tournament sits in ENROLLMENT_OPEN; the seed assigned at
// registration is permanent.
type EnrollmentService struct {
	enrollments repositories.EnrollmentRepository
	tournaments repositories.TournamentRepository
	logger      *slog.Logger
}

func NewEnrollmentService(
	enrollments repositories.EnrollmentRepository,
	tournaments repositories.TournamentRepository,
	logger *slog.Logger,
) *EnrollmentService {
	return &EnrollmentService{enrollments: enrollments, tournaments: tournaments, logger: logger}
}

func (s *EnrollmentService) Enroll(ctx context.Context, tournamentID, userID int) (*models.Enrollment, error) {
	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if t.Status != models.StatusEnrollmentOpen {
		return nil, fmt.Errorf("%w: status is %s", ErrEnrollmentNotOpen, t.Status)
	}

	enrollment := &models.Enrollment{
		TournamentID: tournamentID,
		UserID:       userID,
		Status:       models.EnrollmentConfirmed,
	}
	if err := s.enrollments.Create(ctx, nil, enrollment); err != nil {
		if errors.Is(err, repositories.ErrEnrollmentConflict) {
			return nil, ErrEnrollmentConflict
		}
		return nil, err
	}

	s.logger.Info("player enrolled",
		"tournament_id", tournamentID, "user_id", userID, "seed", enrollment.Seed)
	return enrollment, nil
}

// Withdraw marks an enrollment withdrawn. Allowed only before play starts;
// after fixtures exist the bracket depends on the enrollee set.
func (s *EnrollmentService) Withdraw(ctx context.Context, tournamentID, enrollmentID int) error {
	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	if t.Status != models.StatusEnrollmentOpen {
		return fmt.Errorf("%w: withdrawal is only possible while enrollment is open", ErrPreconditionFailed)
	}

	err = s.enrollments.UpdateStatus(ctx, nil, enrollmentID, models.EnrollmentWithdrawn)
	if errors.Is(err, repositories.ErrEnrollmentNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *EnrollmentService) ListByTournament(ctx context.Context, tournamentID int) ([]models.Enrollment, error) {
	return s.enrollments.ListByTournament(ctx, nil, tournamentID, nil)
}
