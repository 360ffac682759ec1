package streak

import (
	"testing"
	"time"

	"habitPactAPI/internal/types/habit"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func completed(d int) habit.Log {
	return habit.Log{Date: day(d), Status: habit.LogCompleted}
}

func missed(d int) habit.Log {
	return habit.Log{Date: day(d), Status: habit.LogMissed}
}

func TestEmptyLogsKeepPreviousBest(t *testing.T) {
	r := Compute(nil, 4, day(10))
	if r.Current != 0 {
		t.Errorf("current = %d, want 0", r.Current)
	}
	if r.Best != 4 {
		t.Errorf("best = %d, want 4", r.Best)
	}
}

func TestSingleCompletionToday(t *testing.T) {
	r := Compute([]habit.Log{completed(10)}, 0, day(10))
	if r.Current != 1 || r.Best != 1 {
		t.Errorf("got %+v, want current=1 best=1", r)
	}
}

func TestTodayCompletedYesterdayMissed(t *testing.T) {
	// Today's completion stands alone; yesterday's miss does not extend
	// backward past itself.
	logs := []habit.Log{completed(10), missed(9)}
	r := Compute(logs, 0, day(10))
	if r.Current != 1 {
		t.Errorf("current = %d, want 1", r.Current)
	}
}

func TestMissAfterLastCompletionResets(t *testing.T) {
	logs := []habit.Log{completed(5), completed(6), completed(7), missed(8)}
	for _, now := range []time.Time{day(8), day(9), day(20)} {
		r := Compute(logs, 3, now)
		if r.Current != 0 {
			t.Errorf("now=%v: current = %d, want 0", now, r.Current)
		}
		if r.Best != 3 {
			t.Errorf("now=%v: best = %d, want 3", now, r.Best)
		}
	}
}

func TestUnmarkedTodayDoesNotBreakStreak(t *testing.T) {
	// Streak counted through yesterday survives until today is explicitly
	// marked missed.
	logs := []habit.Log{completed(7), completed(8), completed(9)}
	r := Compute(logs, 0, day(10))
	if r.Current != 3 {
		t.Errorf("current = %d, want 3", r.Current)
	}
}

func TestGapBetweenCompletionsBreaks(t *testing.T) {
	// Day 8 has no log and sits strictly between two completed days.
	logs := []habit.Log{completed(6), completed(7), completed(9), completed(10)}
	r := Compute(logs, 0, day(10))
	if r.Current != 2 {
		t.Errorf("current = %d, want 2", r.Current)
	}
}

func TestFutureLogsIgnored(t *testing.T) {
	logs := []habit.Log{completed(10), completed(11), completed(12)}
	r := Compute(logs, 0, day(10))
	if r.Current != 1 {
		t.Errorf("current = %d, want 1", r.Current)
	}
}

func TestUnsortedInput(t *testing.T) {
	logs := []habit.Log{completed(9), completed(7), completed(8)}
	r := Compute(logs, 0, day(9))
	if r.Current != 3 {
		t.Errorf("current = %d, want 3", r.Current)
	}
}

func TestBestNeverDecreases(t *testing.T) {
	logs := []habit.Log{completed(9), completed(10)}
	r := Compute(logs, 7, day(10))
	if r.Current != 2 {
		t.Errorf("current = %d, want 2", r.Current)
	}
	if r.Best != 7 {
		t.Errorf("best = %d, want 7", r.Best)
	}
	if r.Best < r.Current {
		t.Errorf("best %d < current %d", r.Best, r.Current)
	}
}

func TestLogTimesNormalizedToDays(t *testing.T) {
	// Logs written with wall-clock times still count as whole days.
	logs := []habit.Log{
		{Date: time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC), Status: habit.LogCompleted},
		{Date: time.Date(2026, 3, 10, 6, 15, 0, 0, time.UTC), Status: habit.LogCompleted},
	}
	r := Compute(logs, 0, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	if r.Current != 2 {
		t.Errorf("current = %d, want 2", r.Current)
	}
}
