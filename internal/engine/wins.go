package engine

import "habitPactAPI/internal/types/challenge"

// TallyWins aggregates historical win counts over completed challenges.
// Strictly greater final progress earns the full point; equal progress
// splits it, so every completed challenge contributes exactly 1.0 in total.
// Failed and otherwise terminal challenges award nothing. The tally is
// recomputed from scratch on every call rather than kept as a counter.
func TallyWins(challenges []challenge.Challenge) map[string]float64 {
	wins := make(map[string]float64)
	for _, c := range challenges {
		if c.Status != challenge.StatusCompleted {
			continue
		}
		switch {
		case c.SenderProgress > c.ReceiverProgress:
			wins[c.SenderID] += 1.0
		case c.ReceiverProgress > c.SenderProgress:
			wins[c.ReceiverID] += 1.0
		default:
			wins[c.SenderID] += 0.5
			wins[c.ReceiverID] += 0.5
		}
	}
	return wins
}
