package brackets

import (
	"errors"
	"fmt"
	"math"

	"github.com/football-investment/practice-booking-system-sub013/models"
)

// GenerateKnockoutSkeleton builds the participant-less knockout tree for a
// bracket of slotCount entrants. Every leg gets a UID of the form R{r}M{o};
// legs past round one carry source-match UIDs so winners can be routed once
// results land. Participants are filled in later, either at seeding time
// (round one) or by match completion.
func GenerateKnockoutSkeleton(slotCount int) ([]Fixture, error) {
	if slotCount < 2 {
		return nil, errors.New("knockout skeleton requires at least 2 slots")
	}

	numRounds := int(math.Ceil(math.Log2(float64(slotCount))))
	bracketSize := 1 << uint(numRounds)

	fixtures := make([]Fixture, 0, bracketSize-1)

	matchesInRound := bracketSize / 2
	for r := 1; r <= numRounds; r++ {
		for o := 1; o <= matchesInRound; o++ {
			f := Fixture{
				UID:          fmt.Sprintf("R%dM%d", r, o),
				Phase:        models.PhaseKnockout,
				Round:        r,
				OrderInRound: o,
			}
			if r > 1 {
				src1 := fmt.Sprintf("R%dM%d", r-1, o*2-1)
				src2 := fmt.Sprintf("R%dM%d", r-1, o*2)
				f.SourceMatch1UID = &src1
				f.SourceMatch2UID = &src2
			}
			fixtures = append(fixtures, f)
		}
		matchesInRound /= 2
	}

	return fixtures, nil
}

// BracketSize returns the power-of-two bracket that fits n entrants.
func BracketSize(n int) int {
	if n < 2 {
		return 2
	}
	return 1 << uint(math.Ceil(math.Log2(float64(n))))
}
