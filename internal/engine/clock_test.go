package engine

import (
	"testing"
	"time"
)

func TestDateKeyRoundTrip(t *testing.T) {
	d := time.Date(2026, 3, 5, 17, 42, 0, 0, time.UTC)
	key := DateKey(d)
	if key != "2026-03-05" {
		t.Errorf("key = %q", key)
	}
	parsed, err := ParseDateKey(key)
	if err != nil {
		t.Fatalf("ParseDateKey: %v", err)
	}
	if !parsed.Equal(StartOfDay(d)) {
		t.Errorf("parsed = %v, want %v", parsed, StartOfDay(d))
	}
}

func TestDateKeyNormalizesZone(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*3600)
	// 02:00 on the 6th in UTC+5 is still the 5th in UTC.
	d := time.Date(2026, 3, 6, 2, 0, 0, 0, zone)
	if key := DateKey(d); key != "2026-03-05" {
		t.Errorf("key = %q, want 2026-03-05", key)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 3, 5, 0, 1, 0, 0, time.UTC)
	b := time.Date(2026, 3, 5, 23, 59, 0, 0, time.UTC)
	c := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if !SameDay(a, b) {
		t.Error("a and b should share a day")
	}
	if SameDay(b, c) {
		t.Error("b and c should not share a day")
	}
}
