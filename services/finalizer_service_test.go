package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/football-investment/practice-booking-system-sub013/models"
)

// seedGroupStage loads the fakes with a two-group tournament mid-play:
// group 0 holds players 101 and 104, group 1 holds 102 and 103, one
// round-robin match each.
func seedGroupStage(t *testing.T, env *testEnv) *models.Tournament {
	t.Helper()
	ctx := context.Background()

	cfg := `{"group_count": 2, "qualifiers_per_group": 2}`
	tournament := &models.Tournament{
		Name:             "Autumn Cup",
		OrganizerID:      1,
		AssignmentType:   models.AssignmentOpen,
		Format:           models.FormatGroupKnockout,
		Status:           models.StatusInProgress,
		StartDate:        time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2026, 9, 15, 18, 0, 0, 0, time.UTC),
		FormatConfigJSON: &cfg,
	}
	require.NoError(t, env.tournaments.Create(ctx, nil, tournament))

	groupOf := map[int]int{101: 0, 104: 0, 102: 1, 103: 1}
	for _, userID := range []int{101, 102, 103, 104} {
		e := &models.Enrollment{TournamentID: tournament.ID, UserID: userID, Status: models.EnrollmentConfirmed}
		require.NoError(t, env.enrollments.Create(ctx, nil, e))
		require.NoError(t, env.enrollments.SetGroupIndex(ctx, nil, e.ID, groupOf[userID]))
	}

	addGroupMatch(t, env, tournament.ID, 0, 101, 104)
	addGroupMatch(t, env, tournament.ID, 1, 102, 103)
	return tournament
}

func addGroupMatch(t *testing.T, env *testEnv, tournamentID, groupIndex, p1, p2 int) *models.Match {
	t.Helper()
	gi := groupIndex
	p1c, p2c := p1, p2
	m := &models.Match{
		TournamentID:   tournamentID,
		Phase:          models.PhaseGroup,
		GroupIndex:     &gi,
		Round:          1,
		OrderInRound:   1,
		Participant1ID: &p1c,
		Participant2ID: &p2c,
		Status:         models.MatchScheduled,
	}
	require.NoError(t, env.matches.Create(context.Background(), nil, m))
	return m
}

func recordScore(t *testing.T, env *testEnv, matchID, score1, score2 int) {
	t.Helper()
	result := models.MatchResult{
		Kind:  models.ResultScore,
		Score: &models.ScorePair{Participant1: score1, Participant2: score2},
	}
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	m, err := env.matches.GetByID(context.Background(), nil, matchID)
	require.NoError(t, err)
	var winner *int
	if score1 > score2 {
		winner = m.Participant1ID
	} else if score2 > score1 {
		winner = m.Participant2ID
	}
	require.NoError(t, env.matches.SetResult(context.Background(), nil, matchID, string(raw), winner))
}

func completeGroupStage(t *testing.T, env *testEnv, tournamentID int) {
	t.Helper()
	groupPhase := models.PhaseGroup
	matches, err := env.matches.ListByTournament(context.Background(), nil, tournamentID, &groupPhase)
	require.NoError(t, err)
	for _, m := range matches {
		switch *m.GroupIndex {
		case 0:
			recordScore(t, env, m.ID, 2, 0) // 101 beats 104
		case 1:
			recordScore(t, env, m.ID, 1, 3) // 103 beats 102
		}
	}
}

func TestFinalizeWritesSnapshotAndSeedsBracket(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tournament := seedGroupStage(t, env)
	completeGroupStage(t, env, tournament.ID)

	result, err := env.finalizer.Finalize(ctx, tournament.ID, 1)
	require.NoError(t, err)
	assert.False(t, result.AlreadyFinalized)
	require.NotNil(t, result.Snapshot)

	require.Len(t, result.Snapshot.Groups, 2)
	assert.Equal(t, 101, result.Snapshot.Groups[0].Standings[0].ParticipantID)
	assert.Equal(t, 104, result.Snapshot.Groups[0].Standings[1].ParticipantID)
	assert.Equal(t, 103, result.Snapshot.Groups[1].Standings[0].ParticipantID)
	assert.Equal(t, 102, result.Snapshot.Groups[1].Standings[1].ParticipantID)
	assert.Len(t, result.Snapshot.Qualifiers, 4)

	// The snapshot on the row matches what Finalize returned.
	stored, err := env.tournaments.GetByID(ctx, tournament.ID)
	require.NoError(t, err)
	decoded, err := stored.EnrollmentSnapshot()
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.Equal(t, result.Snapshot.Qualifiers, decoded.Qualifiers)

	// Bracket of four: two semifinals feeding a final, group winners kept
	// apart and paired against the other group's runner-up.
	knockoutPhase := models.PhaseKnockout
	legs, err := env.matches.ListByTournament(ctx, nil, tournament.ID, &knockoutPhase)
	require.NoError(t, err)
	require.Len(t, legs, 3)

	semi1, semi2, final := legs[0], legs[1], legs[2]
	assert.Equal(t, []int{101, 102}, []int{*semi1.Participant1ID, *semi1.Participant2ID})
	assert.Equal(t, []int{103, 104}, []int{*semi2.Participant1ID, *semi2.Participant2ID})
	assert.Nil(t, final.Participant1ID)
	assert.Nil(t, final.Participant2ID)
	require.NotNil(t, semi1.NextMatchID)
	assert.Equal(t, final.ID, *semi1.NextMatchID)
	assert.Equal(t, 1, *semi1.NextSlot)
	require.NotNil(t, semi2.NextMatchID)
	assert.Equal(t, final.ID, *semi2.NextMatchID)
	assert.Equal(t, 2, *semi2.NextSlot)
}

func TestFinalizeIsIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tournament := seedGroupStage(t, env)
	completeGroupStage(t, env, tournament.ID)

	first, err := env.finalizer.Finalize(ctx, tournament.ID, 1)
	require.NoError(t, err)

	knockoutPhase := models.PhaseKnockout
	legsAfterFirst, err := env.matches.ListByTournament(ctx, nil, tournament.ID, &knockoutPhase)
	require.NoError(t, err)

	second, err := env.finalizer.Finalize(ctx, tournament.ID, 1)
	require.NoError(t, err)
	assert.True(t, second.AlreadyFinalized)
	assert.Equal(t, first.Snapshot.Qualifiers, second.Snapshot.Qualifiers)

	legsAfterSecond, err := env.matches.ListByTournament(ctx, nil, tournament.ID, &knockoutPhase)
	require.NoError(t, err)
	assert.Equal(t, len(legsAfterFirst), len(legsAfterSecond), "repeat finalization must not reseed the bracket")
}

func TestFinalizeRejectsIncompleteGroupStage(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tournament := seedGroupStage(t, env)
	// Only group 0 has a result.
	groupPhase := models.PhaseGroup
	matches, err := env.matches.ListByTournament(ctx, nil, tournament.ID, &groupPhase)
	require.NoError(t, err)
	for _, m := range matches {
		if *m.GroupIndex == 0 {
			recordScore(t, env, m.ID, 2, 0)
		}
	}

	_, err = env.finalizer.Finalize(ctx, tournament.ID, 1)
	require.ErrorIs(t, err, ErrGroupStageIncomplete)

	// Nothing was written: no snapshot, no knockout legs.
	stored, err := env.tournaments.GetByID(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.EnrollmentSnapshotJSON)

	knockoutPhase := models.PhaseKnockout
	legs, err := env.matches.ListByTournament(ctx, nil, tournament.ID, &knockoutPhase)
	require.NoError(t, err)
	assert.Empty(t, legs)
}

func TestFinalizeRejectsWrongFormat(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tournament := &models.Tournament{
		Name:           "League Night",
		OrganizerID:    1,
		AssignmentType: models.AssignmentOpen,
		Format:         models.FormatLeague,
		Status:         models.StatusInProgress,
		StartDate:      time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 9, 15, 18, 0, 0, 0, time.UTC),
	}
	require.NoError(t, env.tournaments.Create(ctx, nil, tournament))

	_, err := env.finalizer.Finalize(ctx, tournament.ID, 1)
	assert.ErrorIs(t, err, ErrNotGroupKnockout)
}

func TestRecordResultPromotesKnockoutWinner(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tournament := seedGroupStage(t, env)
	completeGroupStage(t, env, tournament.ID)
	_, err := env.finalizer.Finalize(ctx, tournament.ID, 1)
	require.NoError(t, err)

	knockoutPhase := models.PhaseKnockout
	legs, err := env.matches.ListByTournament(ctx, nil, tournament.ID, &knockoutPhase)
	require.NoError(t, err)
	semi1, final := legs[0], legs[2]

	updated, err := env.bracket.RecordResult(ctx, semi1.ID, models.MatchResult{
		Kind:  models.ResultScore,
		Score: &models.ScorePair{Participant1: 3, Participant2: 1},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.WinnerID)
	assert.Equal(t, 101, *updated.WinnerID)

	reloadedFinal, err := env.matches.GetByID(ctx, nil, final.ID)
	require.NoError(t, err)
	require.NotNil(t, reloadedFinal.Participant1ID)
	assert.Equal(t, 101, *reloadedFinal.Participant1ID)
}

func TestRecordResultRejectsKnockoutDraw(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tournament := seedGroupStage(t, env)
	completeGroupStage(t, env, tournament.ID)
	_, err := env.finalizer.Finalize(ctx, tournament.ID, 1)
	require.NoError(t, err)

	knockoutPhase := models.PhaseKnockout
	legs, err := env.matches.ListByTournament(ctx, nil, tournament.ID, &knockoutPhase)
	require.NoError(t, err)

	_, err = env.bracket.RecordResult(ctx, legs[0].ID, models.MatchResult{
		Kind:  models.ResultScore,
		Score: &models.ScorePair{Participant1: 1, Participant2: 1},
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}
