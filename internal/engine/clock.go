package engine

import "time"

// DayKeyLayout is the canonical calendar-date form used in completion sets
// and photo maps.
const DayKeyLayout = "2006-01-02"

func DateKey(t time.Time) string {
	return t.UTC().Format(DayKeyLayout)
}

func ParseDateKey(s string) (time.Time, error) {
	return time.ParseInLocation(DayKeyLayout, s, time.UTC)
}

// StartOfDay truncates to midnight UTC. All engine date math is day-level.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}
