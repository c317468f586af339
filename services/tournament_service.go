package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/football-investment/practice-booking-system-sub013/lifecycle"
	"github.com/football-investment/practice-booking-system-sub013/models"
	"github.com/football-investment/practice-booking-system-sub013/repositories"
)

// TournamentService owns the tournament lifecycle: creation, the validated
// status transitions, and the append-only audit trail. Every status change
// goes through RequestTransition; nothing else writes the status column.
type TournamentService struct {
	tx          TxRunner
	tournaments repositories.TournamentRepository
	transitions repositories.StatusTransitionRepository
	sessions    repositories.SessionRepository
	enrollments repositories.EnrollmentRepository
	matches     repositories.MatchRepository
	rankings    repositories.RankingRepository
	bracket     *BracketService
	finalizer   *FinalizerService
	logger      *slog.Logger
}

func NewTournamentService(
	tx TxRunner,
	tournaments repositories.TournamentRepository,
	transitions repositories.StatusTransitionRepository,
	sessions repositories.SessionRepository,
	enrollments repositories.EnrollmentRepository,
	matches repositories.MatchRepository,
	rankings repositories.RankingRepository,
	bracket *BracketService,
	finalizer *FinalizerService,
	logger *slog.Logger,
) *TournamentService {
	return &TournamentService{
		tx:          tx,
		tournaments: tournaments,
		transitions: transitions,
		sessions:    sessions,
		enrollments: enrollments,
		matches:     matches,
		rankings:    rankings,
		bracket:     bracket,
		finalizer:   finalizer,
		logger:      logger,
	}
}

type CreateTournamentInput struct {
	Name           string
	Description    *string
	OrganizerID    int
	AssignmentType models.AssignmentType
	Format         models.TournamentFormat
	StartDate      time.Time
	EndDate        time.Time
	Location       *string
	FormatConfig   *string
	RewardPolicy   *string
}

func (in CreateTournamentInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if in.OrganizerID <= 0 {
		return fmt.Errorf("%w: organizer is required", ErrValidationFailed)
	}
	switch in.Format {
	case models.FormatLeague, models.FormatKnockout, models.FormatGroupKnockout, models.FormatIndividualRanking:
	default:
		return fmt.Errorf("%w: unknown format %q", ErrValidationFailed, in.Format)
	}
	switch in.AssignmentType {
	case models.AssignmentOpen, models.AssignmentApplication:
	default:
		return fmt.Errorf("%w: unknown assignment type %q", ErrValidationFailed, in.AssignmentType)
	}
	if !in.EndDate.After(in.StartDate) {
		return fmt.Errorf("%w: end date must be after start date", ErrValidationFailed)
	}
	return nil
}

// Create persists a new tournament in DRAFT and writes the creation event to
// the audit trail in the same transaction, so even a tournament that never
// moves again has one history row with a nil previous status.
func (s *TournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	t := &models.Tournament{
		Name:             strings.TrimSpace(input.Name),
		Description:      input.Description,
		OrganizerID:      input.OrganizerID,
		AssignmentType:   input.AssignmentType,
		Format:           input.Format,
		Status:           models.StatusDraft,
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
		Location:         input.Location,
		FormatConfigJSON: input.FormatConfig,
		RewardPolicyJSON: input.RewardPolicy,
	}
	if _, err := t.FormatConfig(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if _, err := t.RewardPolicy(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournaments.Create(ctx, exec, t); err != nil {
			return err
		}
		return s.transitions.Append(ctx, exec, &models.StatusTransitionRecord{
			TournamentID: t.ID,
			OldStatus:    nil,
			NewStatus:    models.StatusDraft,
			Reason:       "Tournament created",
			ActorID:      input.OrganizerID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tournament created", "tournament_id", t.ID, "name", t.Name, "format", t.Format)
	return t, nil
}

// TransitionRequest asks for one lifecycle step. Reason is recorded verbatim
// in the audit trail alongside the acting user.
type TransitionRequest struct {
	TournamentID int
	Requested    models.TournamentStatus
	Reason       string
	ActorID      int
}

// RequestTransition validates and applies one status change.
//
// The order of checks is fixed: the edge must exist in the status graph
// (otherwise ErrInvalidTransition), then every guard for the target status
// must pass (otherwise ErrPreconditionFailed). Only then is the change
// attempted, as a compare-and-swap against the status the caller observed;
// a lost race surfaces as ErrStaleState and changes nothing.
//
// Entering IN_PROGRESS additionally generates the opening fixtures, and
// requesting COMPLETED on a group-knockout tournament runs group-stage
// finalization first. Both happen inside the same transaction boundary as
// the status write, so a half-started tournament can never be observed.
func (s *TournamentService) RequestTransition(ctx context.Context, req TransitionRequest) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, req.TournamentID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	current := t.Status

	if !lifecycle.EdgeExists(current, req.Requested) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, req.Requested)
	}

	// Completion of a group-knockout tournament implies finalization; run it
	// now so the guard below sees the snapshot. Finalize is idempotent, so a
	// tournament finalized earlier (or concurrently) passes straight through.
	if req.Requested == models.StatusCompleted && t.Format == models.FormatGroupKnockout && t.EnrollmentSnapshotJSON == nil {
		if _, err := s.finalizer.Finalize(ctx, req.TournamentID, req.ActorID); err != nil {
			if errors.Is(err, ErrGroupStageIncomplete) {
				return nil, fmt.Errorf("%w: group stage not finalized: %v", ErrPreconditionFailed, err)
			}
			return nil, err
		}
		if t, err = s.tournaments.GetByID(ctx, req.TournamentID); err != nil {
			return nil, s.mapRepoError(err)
		}
		if t.Status != current {
			return nil, fmt.Errorf("%w: status moved to %s during finalization", ErrStaleState, t.Status)
		}
	}

	guardCtx, err := s.buildGuardContext(ctx, t)
	if err != nil {
		return nil, err
	}
	if ok, reason := lifecycle.Validate(current, req.Requested, guardCtx); !ok {
		return nil, fmt.Errorf("%w: %s", ErrPreconditionFailed, reason)
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournaments.UpdateStatusCAS(ctx, exec, t.ID, current, req.Requested); err != nil {
			if errors.Is(err, repositories.ErrTournamentStaleState) {
				return fmt.Errorf("%w: expected %s", ErrStaleState, current)
			}
			return err
		}
		if err := s.transitions.Append(ctx, exec, &models.StatusTransitionRecord{
			TournamentID: t.ID,
			OldStatus:    &current,
			NewStatus:    req.Requested,
			Reason:       req.Reason,
			ActorID:      req.ActorID,
		}); err != nil {
			return err
		}
		if req.Requested == models.StatusInProgress {
			return s.bracket.GenerateFixtures(ctx, exec, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.Status = req.Requested
	s.logger.Info("tournament status changed",
		"tournament_id", t.ID, "from", current, "to", req.Requested, "actor_id", req.ActorID)
	return t, nil
}

// buildGuardContext loads the facts the target-status guards consume. Guards
// are pure, so all I/O happens here, before validation.
func (s *TournamentService) buildGuardContext(ctx context.Context, t *models.Tournament) (lifecycle.TransitionContext, error) {
	sessionCount, err := s.sessions.CountByTournament(ctx, nil, t.ID)
	if err != nil {
		return lifecycle.TransitionContext{}, err
	}
	confirmed, err := s.enrollments.CountConfirmed(ctx, nil, t.ID)
	if err != nil {
		return lifecycle.TransitionContext{}, err
	}
	return lifecycle.TransitionContext{
		Tournament:         t,
		SessionCount:       sessionCount,
		ConfirmedEnrollees: confirmed,
		GroupStageComplete: t.EnrollmentSnapshotJSON != nil,
	}, nil
}

// AssignInstructor records the instructor on the tournament and propagates
// the assignment to every scheduled session. The lifecycle step that follows
// (PENDING acceptance or direct confirmation) is the caller's separate
// RequestTransition.
func (s *TournamentService) AssignInstructor(ctx context.Context, tournamentID, instructorID int) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	if t.Status != models.StatusSeekingInstructor && t.Status != models.StatusPendingInstructor {
		return nil, fmt.Errorf("%w: instructor can only be assigned while one is being sought", ErrPreconditionFailed)
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournaments.SetInstructor(ctx, exec, tournamentID, &instructorID); err != nil {
			return err
		}
		return s.sessions.SetInstructor(ctx, exec, tournamentID, instructorID)
	})
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	t.InstructorID = &instructorID
	s.logger.Info("instructor assigned", "tournament_id", tournamentID, "instructor_id", instructorID)
	return t, nil
}

func (s *TournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	return t, nil
}

func (s *TournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return s.tournaments.List(ctx, filter)
}

// GetHistory returns the audit trail, newest first. The oldest entry is
// always the creation event with a nil previous status.
func (s *TournamentService) GetHistory(ctx context.Context, tournamentID int) ([]models.StatusTransitionRecord, error) {
	if _, err := s.tournaments.GetByID(ctx, tournamentID); err != nil {
		return nil, s.mapRepoError(err)
	}
	return s.transitions.ListByTournament(ctx, tournamentID)
}

// GetDetail loads a tournament with its linked collections fetched in
// parallel.
func (s *TournamentService) GetDetail(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions, err := s.sessions.ListByTournament(gctx, id)
		if err == nil {
			t.Sessions = sessions
		}
		return err
	})
	g.Go(func() error {
		enrollments, err := s.enrollments.ListByTournament(gctx, nil, id, nil)
		if err == nil {
			t.Enrollments = enrollments
		}
		return err
	})
	g.Go(func() error {
		matches, err := s.matches.ListByTournament(gctx, nil, id, nil)
		if err == nil {
			t.Matches = matches
		}
		return err
	})
	g.Go(func() error {
		rankings, err := s.rankings.ListByTournament(gctx, nil, id)
		if err == nil {
			t.Rankings = rankings
		}
		return err
	})
	g.Go(func() error {
		history, err := s.transitions.ListByTournament(gctx, id)
		if err == nil {
			t.History = history
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateDetails edits the descriptive fields of a tournament that has not
// started yet. Status, instructor and snapshot have their own write paths.
func (s *TournamentService) UpdateDetails(ctx context.Context, t *models.Tournament) error {
	existing, err := s.tournaments.GetByID(ctx, t.ID)
	if err != nil {
		return s.mapRepoError(err)
	}
	if existing.Status == models.StatusInProgress || existing.Status.IsTerminal() {
		return fmt.Errorf("%w: tournament can no longer be edited in status %s", ErrPreconditionFailed, existing.Status)
	}
	if strings.TrimSpace(derefString(&t.Name)) == "" {
		return fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	return s.mapRepoError(s.tournaments.UpdateDetails(ctx, t))
}

func (s *TournamentService) mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict),
		errors.Is(err, repositories.ErrTournamentInvalidOrg),
		errors.Is(err, repositories.ErrTournamentInvalidUser):
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	default:
		return err
	}
}
