package brackets

import (
	"sort"

	"github.com/football-investment/practice-booking-system-sub013/models"
)

// KnockoutPairing is one round-one leg after qualification seeding. A nil
// Slot2 is a bye: Slot1 promotes directly to the next round.
type KnockoutPairing struct {
	OrderInRound int
	Slot1        *models.Qualifier
	Slot2        *models.Qualifier
}

func (p KnockoutPairing) IsBye() bool { return p.Slot2 == nil }

// SelectQualifiers takes the top perGroup entries of every group table, in
// standings order.
func SelectQualifiers(groups []models.GroupSnapshot, perGroup int) []models.Qualifier {
	qualifiers := make([]models.Qualifier, 0, len(groups)*perGroup)
	for _, g := range groups {
		limit := perGroup
		if limit > len(g.Standings) {
			limit = len(g.Standings)
		}
		for i := 0; i < limit; i++ {
			qualifiers = append(qualifiers, models.Qualifier{
				ParticipantID: g.Standings[i].ParticipantID,
				GroupIndex:    g.GroupIndex,
				GroupRank:     g.Standings[i].Rank,
			})
		}
	}
	return qualifiers
}

// PairForKnockout seeds round one of the knockout bracket. Qualifiers are
// ordered by group rank, then group index; group points are never compared
// across groups, since different group schedules make them incomparable.
// Qualifiers are then paired best against worst. Top seeds absorb the byes of a non-full
// bracket. Same-group round-one pairings are swapped away when another pairing
// can take the conflict without creating a new one.
func PairForKnockout(qualifiers []models.Qualifier) []KnockoutPairing {
	if len(qualifiers) == 0 {
		return nil
	}

	seeds := make([]models.Qualifier, len(qualifiers))
	copy(seeds, qualifiers)
	sort.SliceStable(seeds, func(i, j int) bool {
		if seeds[i].GroupRank != seeds[j].GroupRank {
			return seeds[i].GroupRank < seeds[j].GroupRank
		}
		return seeds[i].GroupIndex < seeds[j].GroupIndex
	})

	bracketSize := BracketSize(len(seeds))
	half := bracketSize / 2

	pairings := make([]KnockoutPairing, half)
	for i := 0; i < half; i++ {
		p := KnockoutPairing{OrderInRound: i + 1}
		s1 := seeds[i]
		p.Slot1 = &s1
		if opp := bracketSize - 1 - i; opp < len(seeds) {
			s2 := seeds[opp]
			p.Slot2 = &s2
		}
		pairings[i] = p
	}

	avoidSameGroup(pairings)
	return pairings
}

// avoidSameGroup swaps the low-seed slots of conflicting pairings. A swap is
// taken only if it resolves the conflict without introducing one elsewhere.
func avoidSameGroup(pairings []KnockoutPairing) {
	conflict := func(p KnockoutPairing) bool {
		return p.Slot1 != nil && p.Slot2 != nil && p.Slot1.GroupIndex == p.Slot2.GroupIndex
	}

	for i := range pairings {
		if !conflict(pairings[i]) {
			continue
		}
		for j := range pairings {
			if j == i || pairings[j].Slot2 == nil {
				continue
			}
			pairings[i].Slot2, pairings[j].Slot2 = pairings[j].Slot2, pairings[i].Slot2
			if !conflict(pairings[i]) && !conflict(pairings[j]) {
				break
			}
			// Swap back, this partner does not help.
			pairings[i].Slot2, pairings[j].Slot2 = pairings[j].Slot2, pairings[i].Slot2
		}
	}
}
