package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/football-investment/practice-booking-system-sub013/models"
)

func scoreMatch(id, p1, p2, s1, s2 int) models.Match {
	m := models.Match{
		ID:             id,
		Phase:          models.PhaseGroup,
		Round:          1,
		Participant1ID: &p1,
		Participant2ID: &p2,
		Status:         models.MatchCompleted,
	}
	if err := m.SetResult(models.MatchResult{
		Kind:  models.ResultScore,
		Score: &models.ScorePair{Participant1: s1, Participant2: s2},
	}); err != nil {
		panic(err)
	}
	return m
}

// Six players, full single round robin, lower ID always wins 2-0. The table
// is hand-computable: player 1 takes 15 points, player 6 takes none.
func TestComputeStandingsFullGroupOfSix(t *testing.T) {
	members := []int{1, 2, 3, 4, 5, 6}
	var matches []models.Match
	id := 0
	for i := 1; i <= 6; i++ {
		for j := i + 1; j <= 6; j++ {
			id++
			matches = append(matches, scoreMatch(id, i, j, 2, 0))
		}
	}
	require.Len(t, matches, 15)

	standings, err := ComputeStandings(members, matches, models.FormatConfig{})
	require.NoError(t, err)
	require.Len(t, standings, 6)

	for i, entry := range standings {
		assert.Equal(t, i+1, entry.ParticipantID)
		assert.Equal(t, i+1, entry.Rank)
		assert.Equal(t, 5, entry.GamesPlayed)
		assert.Equal(t, 5-i, entry.Wins)
		assert.Equal(t, (5-i)*3, entry.Points)
	}
	// Player 1 won every match 2-0: differential +10. Player 6 lost all: -10.
	assert.Equal(t, 10, standings[0].ScoreDifference)
	assert.Equal(t, -10, standings[5].ScoreDifference)

	qualifiers := SelectQualifiers([]models.GroupSnapshot{{GroupIndex: 0, Standings: standings}}, 2)
	require.Len(t, qualifiers, 2)
	assert.Equal(t, 1, qualifiers[0].ParticipantID)
	assert.Equal(t, 2, qualifiers[1].ParticipantID)
}

func TestComputeStandingsScoreDifferenceTieBreak(t *testing.T) {
	// Three players, one win each: a beats b 3-0, b beats c 1-0, c beats a 1-0.
	// All on 3 points; differentials: a +2, b -2, c 0.
	members := []int{10, 20, 30}
	matches := []models.Match{
		scoreMatch(1, 10, 20, 3, 0),
		scoreMatch(2, 20, 30, 1, 0),
		scoreMatch(3, 30, 10, 1, 0),
	}

	standings, err := ComputeStandings(members, matches, models.FormatConfig{})
	require.NoError(t, err)

	assert.Equal(t, []int{10, 30, 20}, []int{
		standings[0].ParticipantID,
		standings[1].ParticipantID,
		standings[2].ParticipantID,
	})
}

func TestComputeStandingsHeadToHeadTieBreak(t *testing.T) {
	// Seed order puts 3 before 2, but 2 and 3 finish on equal points (3) and
	// equal differential (-1) and 2 won the direct meeting, so 2 ranks above.
	//   1 beats everyone (1-0, 1-0, 2-0) -> 9 pts
	//   2 beats 3 1-0, loses to 4 0-1   -> 3 pts, diff -1
	//   3 beats 4 1-0                   -> 3 pts, diff -1
	//   4 beats 2 1-0                   -> 3 pts, diff -2
	members := []int{1, 3, 2, 4}
	matches := []models.Match{
		scoreMatch(1, 1, 2, 1, 0),
		scoreMatch(2, 1, 3, 1, 0),
		scoreMatch(3, 1, 4, 2, 0),
		scoreMatch(4, 2, 3, 1, 0),
		scoreMatch(5, 3, 4, 1, 0),
		scoreMatch(6, 4, 2, 1, 0),
	}

	standings, err := ComputeStandings(members, matches, models.FormatConfig{})
	require.NoError(t, err)

	got := make([]int, len(standings))
	for i, e := range standings {
		got[i] = e.ParticipantID
	}
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestComputeStandingsAllDrawsKeepSeedOrder(t *testing.T) {
	members := []int{5, 3, 9}
	matches := []models.Match{
		scoreMatch(1, 5, 3, 1, 1),
		scoreMatch(2, 3, 9, 1, 1),
		scoreMatch(3, 9, 5, 1, 1),
	}

	standings, err := ComputeStandings(members, matches, models.FormatConfig{})
	require.NoError(t, err)

	// Everyone on 2 points, zero differential, drawn head-to-heads: stable
	// insertion (seed) order decides.
	assert.Equal(t, 5, standings[0].ParticipantID)
	assert.Equal(t, 3, standings[1].ParticipantID)
	assert.Equal(t, 9, standings[2].ParticipantID)
}

func TestComputeStandingsCustomPointScheme(t *testing.T) {
	members := []int{1, 2}
	matches := []models.Match{scoreMatch(1, 1, 2, 1, 0)}

	cfg := models.FormatConfig{PointsWin: 2, PointsDraw: 1, PointsLoss: 0}
	standings, err := ComputeStandings(members, matches, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, standings[0].Points)
	assert.Equal(t, 0, standings[1].Points)
}

func TestComputeStandingsRejectsUnplayedMatch(t *testing.T) {
	members := []int{1, 2}
	p1, p2 := 1, 2
	matches := []models.Match{{
		ID:             99,
		Participant1ID: &p1,
		Participant2ID: &p2,
		Status:         models.MatchScheduled,
	}}

	_, err := ComputeStandings(members, matches, models.FormatConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no result")
}

func TestComputeStandingsRejectsForeignParticipant(t *testing.T) {
	members := []int{1, 2}
	matches := []models.Match{scoreMatch(1, 1, 77, 1, 0)}

	_, err := ComputeStandings(members, matches, models.FormatConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the group")
}
