package brackets

import (
	"fmt"
	"sort"

	"github.com/football-investment/practice-booking-system-sub013/models"
)

// headToHead records who beat whom inside one group, keyed by the pair.
type headToHead map[[2]int]int // {a, b} with a < b -> winner participant ID, 0 for draw

// ComputeStandings builds the final table for one group from its completed
// matches. members must be in seed order; their position is both the final
// tie-break and the stable insertion order.
//
// Tie-break chain: points desc, score differential desc, head-to-head winner
// between the tied pair, seed order. Ties surviving all of that keep stable
// insertion order, which is deterministic but arbitrary.
func ComputeStandings(members []int, matches []models.Match, cfg models.FormatConfig) ([]models.StandingEntry, error) {
	index := make(map[int]int, len(members)) // participant -> seed position
	entries := make([]models.StandingEntry, len(members))
	for i, id := range members {
		index[id] = i
		entries[i] = models.StandingEntry{ParticipantID: id}
	}

	h2h := make(headToHead)

	for i := range matches {
		m := &matches[i]
		if m.Participant1ID == nil || m.Participant2ID == nil {
			return nil, fmt.Errorf("group match %d has unset participants", m.ID)
		}
		result, err := m.Result()
		if err != nil {
			return nil, err
		}
		if result == nil {
			return nil, fmt.Errorf("group match %d has no result", m.ID)
		}
		if result.Kind != models.ResultScore {
			return nil, fmt.Errorf("group match %d: expected score result, got %q", m.ID, result.Kind)
		}

		p1, p2 := *m.Participant1ID, *m.Participant2ID
		i1, ok1 := index[p1]
		i2, ok2 := index[p2]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("group match %d references a participant outside the group", m.ID)
		}

		s1, s2 := result.Score.Participant1, result.Score.Participant2
		e1, e2 := &entries[i1], &entries[i2]

		e1.GamesPlayed++
		e2.GamesPlayed++
		e1.ScoreFor += s1
		e1.ScoreAgainst += s2
		e2.ScoreFor += s2
		e2.ScoreAgainst += s1

		key := pairKey(p1, p2)
		switch {
		case s1 > s2:
			e1.Wins++
			e2.Losses++
			e1.Points += cfg.WinPoints()
			e2.Points += cfg.LossPoints()
			h2h[key] = p1
		case s2 > s1:
			e2.Wins++
			e1.Losses++
			e2.Points += cfg.WinPoints()
			e1.Points += cfg.LossPoints()
			h2h[key] = p2
		default:
			e1.Draws++
			e2.Draws++
			e1.Points += cfg.DrawPoints()
			e2.Points += cfg.DrawPoints()
			h2h[key] = 0
		}
	}

	for i := range entries {
		entries[i].ScoreDifference = entries[i].ScoreFor - entries[i].ScoreAgainst
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.ScoreDifference != b.ScoreDifference {
			return a.ScoreDifference > b.ScoreDifference
		}
		if winner, ok := h2h[pairKey(a.ParticipantID, b.ParticipantID)]; ok && winner != 0 {
			return winner == a.ParticipantID
		}
		return index[a.ParticipantID] < index[b.ParticipantID]
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func pairKey(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}
