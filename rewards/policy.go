package rewards

import (
	"errors"
	"fmt"
	"sort"

	"github.com/football-investment/practice-booking-system-sub013/models"
)

var ErrPolicyInvalid = errors.New("reward policy is invalid")

// defaultPolicy applies when a tournament carries no embedded policy.
var defaultPolicy = models.RewardPolicy{
	Name: "standard",
	Placements: []models.PlacementReward{
		{Rank: 1, XP: 100, Credits: 50, BaseSkillDelta: 10},
		{Rank: 2, XP: 75, Credits: 30, BaseSkillDelta: 7},
		{Rank: 3, XP: 50, Credits: 20, BaseSkillDelta: 5},
		{Rank: 4, XP: 25, Credits: 10, BaseSkillDelta: 3},
	},
}

// ResolvedPolicy is a validated policy with its placement table indexed by
// rank, ready for distribution.
type ResolvedPolicy struct {
	Name       string
	Placements []models.PlacementReward
	Reactivity Reactivity

	byRank map[int]models.PlacementReward
	tested []string
}

// TestedSkills returns the skills that earn a delta entry at settlement, in
// configuration order. The returned slice must not be mutated.
func (p *ResolvedPolicy) TestedSkills() []string {
	return p.tested
}

// RewardForRank looks up the reward for a final rank. Ranks outside the
// placement table earn nothing, which is how policies pay only the podium.
func (p *ResolvedPolicy) RewardForRank(rank int) (models.PlacementReward, bool) {
	r, ok := p.byRank[rank]
	return r, ok
}

// Resolve validates a tournament's configured reward policy (or the named
// default when none is embedded) and precomputes the skill reactivity set.
func Resolve(t *models.Tournament) (*ResolvedPolicy, error) {
	policy, err := t.RewardPolicy()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPolicyInvalid, err)
	}
	if policy == nil {
		p := defaultPolicy
		policy = &p
	}

	if len(policy.Placements) == 0 {
		return nil, fmt.Errorf("%w: empty placement table", ErrPolicyInvalid)
	}

	byRank := make(map[int]models.PlacementReward, len(policy.Placements))
	for _, pr := range policy.Placements {
		if pr.Rank < 1 {
			return nil, fmt.Errorf("%w: placement rank %d must be positive", ErrPolicyInvalid, pr.Rank)
		}
		if pr.XP < 0 || pr.Credits < 0 || pr.BaseSkillDelta < 0 {
			return nil, fmt.Errorf("%w: negative reward amounts for rank %d", ErrPolicyInvalid, pr.Rank)
		}
		if _, dup := byRank[pr.Rank]; dup {
			return nil, fmt.Errorf("%w: duplicate placement rank %d", ErrPolicyInvalid, pr.Rank)
		}
		byRank[pr.Rank] = pr
	}

	placements := make([]models.PlacementReward, len(policy.Placements))
	copy(placements, policy.Placements)
	sort.Slice(placements, func(i, j int) bool { return placements[i].Rank < placements[j].Rank })

	return &ResolvedPolicy{
		Name:       policy.Name,
		Placements: placements,
		Reactivity: ComputeReactivity(policy.SkillWeights, policy.TestedSkills),
		byRank:     byRank,
		tested:     policy.TestedSkills,
	}, nil
}
