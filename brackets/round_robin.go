package brackets

import (
	"fmt"

	"github.com/football-investment/practice-booking-system-sub013/models"
)

// GenerateGroupFixtures builds a single round-robin schedule for every group
// using the circle method: the first participant stays fixed while the rest
// rotate, giving each round a full set of disjoint pairings. Groups with an
// odd member count get a phantom slot whose pairings are skipped, which is how
// a participant sits out a round.
func GenerateGroupFixtures(tournamentID int, groups [][]int) []Fixture {
	fixtures := make([]Fixture, 0)

	for groupIdx, members := range groups {
		if len(members) < 2 {
			continue
		}

		players := make([]int, len(members))
		copy(players, members)

		// Phantom slot (0) for odd group sizes.
		if len(players)%2 != 0 {
			players = append(players, 0)
		}
		n := len(players)
		rounds := n - 1
		half := n / 2

		gi := groupIdx
		for round := 1; round <= rounds; round++ {
			order := 0
			for i := 0; i < half; i++ {
				p1 := players[i]
				p2 := players[n-1-i]
				if p1 == 0 || p2 == 0 {
					continue
				}
				order++
				p1c, p2c := p1, p2
				fixtures = append(fixtures, Fixture{
					UID:            fmt.Sprintf("T%d_G%d_R%d_M%d", tournamentID, groupIdx, round, order),
					Phase:          models.PhaseGroup,
					GroupIndex:     &gi,
					Round:          round,
					OrderInRound:   order,
					Participant1ID: &p1c,
					Participant2ID: &p2c,
				})
			}
			// Rotate everyone but the first slot.
			last := players[n-1]
			copy(players[2:], players[1:n-1])
			players[1] = last
		}
	}

	return fixtures
}
