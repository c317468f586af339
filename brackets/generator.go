// Package brackets contains the pure bracket algebra: group fixture
// generation, knockout skeletons, group standings with the tie-break chain,
// and qualifier seeding. Nothing in this package touches storage.
package brackets

import "github.com/football-investment/practice-booking-system-sub013/models"

// Fixture is a match blueprint produced by a generator. The bracket service
// persists fixtures as match rows and resolves source-UID links to row IDs in
// a second pass.
type Fixture struct {
	UID          string
	Phase        models.MatchPhase
	GroupIndex   *int
	Round        int
	OrderInRound int

	// Known participants, or nil for knockout legs that wait on qualification
	// or on a feeding match's winner.
	Participant1ID *int
	Participant2ID *int

	// UIDs of the matches whose winners fill slot 1 / slot 2.
	SourceMatch1UID *string
	SourceMatch2UID *string
}

// AssignGroups distributes confirmed enrollments over groupCount groups in
// snake order by seed, so group strengths stay balanced. Returns participant
// IDs per group.
func AssignGroups(participantIDs []int, groupCount int) [][]int {
	if groupCount < 1 {
		groupCount = 1
	}
	groups := make([][]int, groupCount)
	forward := true
	g := 0
	for _, id := range participantIDs {
		groups[g] = append(groups[g], id)
		if forward {
			if g == groupCount-1 {
				forward = false
			} else {
				g++
			}
		} else {
			if g == 0 {
				forward = true
			} else {
				g--
			}
		}
	}
	return groups
}
