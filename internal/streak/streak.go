package streak

import (
	"sort"
	"time"

	"habitPactAPI/internal/types/habit"
)

// Result is the outcome of a streak recompute. Best is never below Current
// and never below the previously stored best.
type Result struct {
	Current int `json:"current_streak"`
	Best    int `json:"best_streak"`
}

// Compute walks a habit's log history backwards from the most recent day on
// or before now and counts consecutive completed days.
//
// An explicit missed log breaks the run immediately. A day with no log breaks
// the run only when it sits strictly between two completed days; a day that
// simply has not been marked yet (today, or anything after the last log) does
// not. That asymmetry is what keeps yesterday's streak on screen before the
// user checks in today.
//
// Logs may arrive in any order; future-dated logs are ignored. The engine
// never reads the system clock — now is always caller-supplied.
func Compute(logs []habit.Log, prevBest int, now time.Time) Result {
	today := dayOf(now)

	eligible := make([]habit.Log, 0, len(logs))
	for _, l := range logs {
		if !dayOf(l.Date).After(today) {
			eligible = append(eligible, l)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].Date.Before(eligible[j].Date)
	})

	current := 0
	var lastCounted time.Time
	for i := len(eligible) - 1; i >= 0; i-- {
		l := eligible[i]
		if l.Status == habit.LogMissed {
			break
		}
		day := dayOf(l.Date)
		if current > 0 && lastCounted.Sub(day) > 24*time.Hour {
			// unmarked day strictly between two completed days
			break
		}
		current++
		lastCounted = day
	}

	best := prevBest
	if current > best {
		best = current
	}
	return Result{Current: current, Best: best}
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
