package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/football-investment/practice-booking-system-sub013/models"
)

func seedCompletedTournament(t *testing.T, env *testEnv, rewardPolicy *string) *models.Tournament {
	t.Helper()
	tournament := &models.Tournament{
		Name:             "Winter Cup",
		OrganizerID:      1,
		AssignmentType:   models.AssignmentOpen,
		Format:           models.FormatGroupKnockout,
		Status:           models.StatusCompleted,
		StartDate:        time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2026, 1, 20, 18, 0, 0, 0, time.UTC),
		RewardPolicyJSON: rewardPolicy,
	}
	require.NoError(t, env.tournaments.Create(context.Background(), nil, tournament))
	return tournament
}

func seedRankings(t *testing.T, env *testEnv, tournamentID int, participantIDs ...int) {
	t.Helper()
	for i, pid := range participantIDs {
		require.NoError(t, env.rankings.Upsert(context.Background(), nil, &models.Ranking{
			TournamentID:  tournamentID,
			ParticipantID: pid,
			Rank:          i + 1,
		}))
	}
}

func TestDistributeDefaultPolicy(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tournament := seedCompletedTournament(t, env, nil)
	seedRankings(t, env, tournament.ID, 201, 202, 203, 204)

	summary, err := env.reward.Distribute(ctx, tournament.ID)
	require.NoError(t, err)
	assert.False(t, summary.AlreadyDistributed)
	require.NotNil(t, summary.BatchID)
	assert.Equal(t, 4, summary.Participants)
	assert.Equal(t, 250, summary.XPTotal, "100+75+50+25")
	assert.Equal(t, 110, summary.CreditsTotal, "50+30+20+10")
	assert.Equal(t, 0, summary.SkillRewards)

	entries, err := env.reward.Ledger(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 8, "one xp and one credit row per participant")

	for _, e := range entries {
		assert.Equal(t, *summary.BatchID, e.BatchID, "all rows share the batch")
	}

	// Keys are deterministic functions of tournament, participant and kind.
	byKey := make(map[string]models.RewardLedgerEntry, len(entries))
	for _, e := range entries {
		byKey[e.IdempotencyKey] = e
	}
	winner := byKey[models.LedgerKey(tournament.ID, 201, models.RewardXP)]
	assert.Equal(t, 100, winner.Amount)
	runnerUp := byKey[models.LedgerKey(tournament.ID, 202, models.RewardCredit)]
	assert.Equal(t, 30, runnerUp.Amount)
}

func TestDistributeSecondCallWritesNothing(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tournament := seedCompletedTournament(t, env, nil)
	seedRankings(t, env, tournament.ID, 201, 202, 203, 204)

	first, err := env.reward.Distribute(ctx, tournament.ID)
	require.NoError(t, err)

	second, err := env.reward.Distribute(ctx, tournament.ID)
	require.NoError(t, err)
	assert.True(t, second.AlreadyDistributed)
	assert.Equal(t, first.XPTotal, second.XPTotal)
	assert.Equal(t, first.CreditsTotal, second.CreditsTotal)
	require.NotNil(t, second.BatchID)
	assert.Equal(t, *first.BatchID, *second.BatchID, "summary reflects the original batch")

	entries, err := env.reward.Ledger(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 8, "ledger must not grow on repeat calls")
}

// TestDistributeLostRace drives the path where the pre-check misses an
// existing settlement and the unique idempotency keys catch it: the batch
// rolls back and the call reports the earlier settlement.
func TestDistributeLostRace(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tournament := seedCompletedTournament(t, env, nil)
	seedRankings(t, env, tournament.ID, 201, 202, 203, 204)

	_, err := env.reward.Distribute(ctx, tournament.ID)
	require.NoError(t, err)

	env.ledger.hideFromCount = true
	summary, err := env.reward.Distribute(ctx, tournament.ID)
	require.NoError(t, err)
	assert.True(t, summary.AlreadyDistributed)

	env.ledger.hideFromCount = false
	entries, err := env.reward.Ledger(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 8)
}

func TestDistributeSkillRewardsApplyReactivity(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	policy := `{
		"name": "skills",
		"placements": [{"rank": 1, "xp": 10, "credits": 5, "base_skill_delta": 10}],
		"skill_weights": {"shooting": 0.8, "passing": 0.2},
		"tested_skills": ["shooting", "passing"]
	}`
	tournament := seedCompletedTournament(t, env, &policy)
	seedRankings(t, env, tournament.ID, 301)

	summary, err := env.reward.Distribute(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Participants)
	assert.Equal(t, 2, summary.SkillRewards)

	entries, err := env.reward.Ledger(ctx, tournament.ID)
	require.NoError(t, err)

	// Mean weight 0.5: shooting reacts at 0.8/0.5 = 1.6, passing at 0.4.
	deltas := make(map[string]float64)
	for _, e := range entries {
		if e.Kind == models.RewardSkill {
			assert.Equal(t, models.SkillLedgerKey(tournament.ID, 301, *e.SkillName), e.IdempotencyKey)
			deltas[*e.SkillName] = *e.SkillDelta
		}
	}
	assert.InDelta(t, 16.0, deltas["shooting"], 1e-9)
	assert.InDelta(t, 4.0, deltas["passing"], 1e-9)
}

func TestDistributeRanksOutsideTableEarnNothing(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tournament := seedCompletedTournament(t, env, nil)
	// Six ranked participants, default table pays the top four.
	seedRankings(t, env, tournament.ID, 201, 202, 203, 204, 205, 206)

	summary, err := env.reward.Distribute(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Participants)

	entries, err := env.reward.Ledger(ctx, tournament.ID)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, 205, e.ParticipantID)
		assert.NotEqual(t, 206, e.ParticipantID)
	}
}

func TestDistributePreconditions(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	t.Run("not completed", func(t *testing.T) {
		tournament := seedCompletedTournament(t, env, nil)
		env.tournaments.setStatus(tournament.ID, models.StatusInProgress)
		seedRankings(t, env, tournament.ID, 201, 202)

		_, err := env.reward.Distribute(ctx, tournament.ID)
		assert.ErrorIs(t, err, ErrTournamentNotCompleted)
	})

	t.Run("no rankings", func(t *testing.T) {
		tournament := seedCompletedTournament(t, env, nil)
		_, err := env.reward.Distribute(ctx, tournament.ID)
		assert.ErrorIs(t, err, ErrRankingsMissing)
	})

	t.Run("malformed policy", func(t *testing.T) {
		bad := `{"placements": [{"rank": -1}]}`
		tournament := seedCompletedTournament(t, env, &bad)
		seedRankings(t, env, tournament.ID, 201, 202)

		_, err := env.reward.Distribute(ctx, tournament.ID)
		assert.ErrorIs(t, err, ErrRewardConfiguration)
	})

	t.Run("unknown tournament", func(t *testing.T) {
		_, err := env.reward.Distribute(ctx, 9999)
		assert.ErrorIs(t, err, ErrTournamentNotFound)
	})

	// A failed precondition never writes ledger rows.
	for _, id := range []int{1, 2, 3} {
		entries, err := env.reward.Ledger(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, entries)
	}
}
