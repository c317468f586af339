package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/football-investment/practice-booking-system-sub013/brackets"
	"github.com/football-investment/practice-booking-system-sub013/models"
	"github.com/football-investment/practice-booking-system-sub013/repositories"
)

// SnapshotArchiver ships a finalization snapshot to long-term storage. The
// archive is best-effort: the snapshot row in the database is the source of
// truth, the archive is an off-site audit copy.
type SnapshotArchiver interface {
	ArchiveSnapshot(ctx context.Context, tournamentID int, payload []byte) (string, error)
}

const defaultQualifiersPerGroup = 2

// FinalizerService closes the group stage of a group-knockout tournament:
// it freezes the final group tables into the write-once enrollment snapshot,
// selects the qualifiers, and seeds the knockout bracket, all in one
// transaction, so the snapshot and the bracket can never disagree.
type FinalizerService struct {
	tx          TxRunner
	tournaments repositories.TournamentRepository
	enrollments repositories.EnrollmentRepository
	matches     repositories.MatchRepository
	bracket     *BracketService
	archiver    SnapshotArchiver
	logger      *slog.Logger
}

func NewFinalizerService(
	tx TxRunner,
	tournaments repositories.TournamentRepository,
	enrollments repositories.EnrollmentRepository,
	matches repositories.MatchRepository,
	bracket *BracketService,
	archiver SnapshotArchiver,
	logger *slog.Logger,
) *FinalizerService {
	return &FinalizerService{
		tx:          tx,
		tournaments: tournaments,
		enrollments: enrollments,
		matches:     matches,
		bracket:     bracket,
		archiver:    archiver,
		logger:      logger,
	}
}

// FinalizeResult reports what Finalize did. AlreadyFinalized is the repeat
// path: the stored snapshot is returned untouched and nothing is written.
type FinalizeResult struct {
	Snapshot         *models.EnrollmentSnapshot
	AlreadyFinalized bool
}

// Finalize runs group-stage finalization once. Calling it again, or losing
// a race against a concurrent call, returns the previously stored snapshot
// with AlreadyFinalized set, never an error and never a second write.
func (s *FinalizerService) Finalize(ctx context.Context, tournamentID, actorID int) (*FinalizeResult, error) {
	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if t.Format != models.FormatGroupKnockout {
		return nil, fmt.Errorf("%w: format %s", ErrNotGroupKnockout, t.Format)
	}

	if existing, err := t.EnrollmentSnapshot(); err != nil {
		return nil, err
	} else if existing != nil {
		return &FinalizeResult{Snapshot: existing, AlreadyFinalized: true}, nil
	}

	snapshot, err := s.computeSnapshot(ctx, t)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournaments.SetEnrollmentSnapshot(ctx, exec, t.ID, string(payload)); err != nil {
			return err
		}
		return s.bracket.SeedKnockout(ctx, exec, t, snapshot.Qualifiers)
	})
	if err != nil {
		// A concurrent finalization won the write-once race; its snapshot and
		// bracket are the ones that count.
		if errors.Is(err, repositories.ErrSnapshotAlreadySet) {
			return s.loadStoredSnapshot(ctx, tournamentID)
		}
		return nil, err
	}

	s.logger.Info("group stage finalized",
		"tournament_id", t.ID, "actor_id", actorID,
		"groups", len(snapshot.Groups), "qualifiers", len(snapshot.Qualifiers))

	s.archive(ctx, t.ID, payload)

	return &FinalizeResult{Snapshot: snapshot}, nil
}

// computeSnapshot builds the frozen group tables and the qualifier list.
// Every group match must be completed with a decodable result; any gap makes
// the whole finalization fail with ErrGroupStageIncomplete.
func (s *FinalizerService) computeSnapshot(ctx context.Context, t *models.Tournament) (*models.EnrollmentSnapshot, error) {
	confirmed := models.EnrollmentConfirmed
	enrollments, err := s.enrollments.ListByTournament(ctx, nil, t.ID, &confirmed)
	if err != nil {
		return nil, err
	}

	groupPhase := models.PhaseGroup
	matches, err := s.matches.ListByTournament(ctx, nil, t.ID, &groupPhase)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no group matches exist", ErrGroupStageIncomplete)
	}

	groupMatches := make(map[int][]models.Match)
	for _, m := range matches {
		if m.Status == models.MatchCancelled {
			continue
		}
		if m.Status != models.MatchCompleted || m.ResultRaw == nil {
			uid := derefString(m.BracketUID)
			return nil, fmt.Errorf("%w: match %s has no result", ErrGroupStageIncomplete, uid)
		}
		if m.GroupIndex == nil {
			return nil, fmt.Errorf("group match %d has no group index", m.ID)
		}
		groupMatches[*m.GroupIndex] = append(groupMatches[*m.GroupIndex], m)
	}

	// Enrollments arrive in seed order; keeping that order per group is what
	// makes registration order the final tie-break in the standings.
	groupMembers := make(map[int][]int)
	maxGroup := -1
	for _, e := range enrollments {
		if e.GroupIndex == nil {
			continue
		}
		gi := *e.GroupIndex
		groupMembers[gi] = append(groupMembers[gi], e.UserID)
		if gi > maxGroup {
			maxGroup = gi
		}
	}
	if maxGroup < 0 {
		return nil, fmt.Errorf("%w: no participants are assigned to groups", ErrGroupStageIncomplete)
	}

	cfg, err := t.FormatConfig()
	if err != nil {
		return nil, err
	}

	groups := make([]models.GroupSnapshot, 0, maxGroup+1)
	for gi := 0; gi <= maxGroup; gi++ {
		members := groupMembers[gi]
		if len(members) == 0 {
			continue
		}
		standings, err := brackets.ComputeStandings(members, groupMatches[gi], cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: group %d: %v", ErrGroupStageIncomplete, gi, err)
		}
		groups = append(groups, models.GroupSnapshot{GroupIndex: gi, Standings: standings})
	}

	perGroup := cfg.QualifiersPerGroup
	if perGroup < 1 {
		perGroup = defaultQualifiersPerGroup
	}
	qualifiers := brackets.SelectQualifiers(groups, perGroup)
	if len(qualifiers) < 2 {
		return nil, fmt.Errorf("%w: only %d qualifiers", ErrGroupStageIncomplete, len(qualifiers))
	}

	return &models.EnrollmentSnapshot{
		FinalizedAt: time.Now().UTC(),
		Groups:      groups,
		Qualifiers:  qualifiers,
	}, nil
}

func (s *FinalizerService) loadStoredSnapshot(ctx context.Context, tournamentID int) (*FinalizeResult, error) {
	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	snapshot, err := t.EnrollmentSnapshot()
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, repositories.ErrSnapshotAlreadySet
	}
	return &FinalizeResult{Snapshot: snapshot, AlreadyFinalized: true}, nil
}

func (s *FinalizerService) archive(ctx context.Context, tournamentID int, payload []byte) {
	if s.archiver == nil {
		return
	}
	location, err := s.archiver.ArchiveSnapshot(ctx, tournamentID, payload)
	if err != nil {
		s.logger.Warn("snapshot archive failed", "tournament_id", tournamentID, "error", err)
		return
	}
	s.logger.Info("snapshot archived", "tournament_id", tournamentID, "location", location)
}
