package brackets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/football-investment/practice-booking-system-sub013/models"
)

func TestGenerateKnockoutSkeletonFullBracket(t *testing.T) {
	fixtures, err := GenerateKnockoutSkeleton(8)
	require.NoError(t, err)
	require.Len(t, fixtures, 7) // 4 + 2 + 1

	byUID := map[string]Fixture{}
	for _, f := range fixtures {
		assert.Equal(t, models.PhaseKnockout, f.Phase)
		assert.Nil(t, f.Participant1ID)
		assert.Nil(t, f.Participant2ID)
		byUID[f.UID] = f
	}

	final := byUID["R3M1"]
	require.NotNil(t, final.SourceMatch1UID)
	require.NotNil(t, final.SourceMatch2UID)
	assert.Equal(t, "R2M1", *final.SourceMatch1UID)
	assert.Equal(t, "R2M2", *final.SourceMatch2UID)

	semi := byUID["R2M2"]
	assert.Equal(t, "R1M3", *semi.SourceMatch1UID)
	assert.Equal(t, "R1M4", *semi.SourceMatch2UID)

	for i := 1; i <= 4; i++ {
		leg := byUID[fmt.Sprintf("R1M%d", i)]
		assert.Nil(t, leg.SourceMatch1UID)
		assert.Nil(t, leg.SourceMatch2UID)
	}
}

func TestGenerateKnockoutSkeletonRoundsUpToPowerOfTwo(t *testing.T) {
	fixtures, err := GenerateKnockoutSkeleton(6)
	require.NoError(t, err)
	assert.Len(t, fixtures, 7) // bracket of 8

	_, err = GenerateKnockoutSkeleton(1)
	assert.Error(t, err)
}

func TestBracketSize(t *testing.T) {
	assert.Equal(t, 2, BracketSize(2))
	assert.Equal(t, 4, BracketSize(3))
	assert.Equal(t, 4, BracketSize(4))
	assert.Equal(t, 8, BracketSize(6))
	assert.Equal(t, 16, BracketSize(9))
}

func TestGenerateGroupFixturesEveryPairOnce(t *testing.T) {
	groups := [][]int{{1, 2, 3, 4}, {5, 6, 7}}
	fixtures := GenerateGroupFixtures(42, groups)

	// C(4,2)=6 plus C(3,2)=3.
	require.Len(t, fixtures, 9)

	seen := map[[2]int]int{}
	for _, f := range fixtures {
		require.NotNil(t, f.Participant1ID)
		require.NotNil(t, f.Participant2ID)
		require.NotNil(t, f.GroupIndex)
		seen[pairKey(*f.Participant1ID, *f.Participant2ID)]++
	}
	for pair, count := range seen {
		assert.Equal(t, 1, count, "pair %v scheduled %d times", pair, count)
	}

	// Circle method: a four-player group plays three rounds of two disjoint
	// matches each.
	perRound := map[int][]Fixture{}
	for _, f := range fixtures {
		if *f.GroupIndex == 0 {
			perRound[f.Round] = append(perRound[f.Round], f)
		}
	}
	require.Len(t, perRound, 3)
	for round, fs := range perRound {
		assert.Len(t, fs, 2, "round %d", round)
		busy := map[int]bool{}
		for _, f := range fs {
			assert.False(t, busy[*f.Participant1ID])
			assert.False(t, busy[*f.Participant2ID])
			busy[*f.Participant1ID] = true
			busy[*f.Participant2ID] = true
		}
	}
}

func TestGenerateGroupFixturesSkipsUndersizedGroups(t *testing.T) {
	fixtures := GenerateGroupFixtures(1, [][]int{{9}})
	assert.Empty(t, fixtures)
}
