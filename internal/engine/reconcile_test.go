package engine

import (
	"testing"
	"time"

	"habitPactAPI/internal/types/challenge"
)

const (
	senderID   = "user-sender"
	receiverID = "user-receiver"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

// activeChallenge builds an accepted challenge starting March 1st.
func activeChallenge(duration int) *challenge.Challenge {
	start := day(1)
	return &challenge.Challenge{
		ID:         "ch-1",
		SenderID:   senderID,
		ReceiverID: receiverID,
		HabitName:  "morning run",
		Duration:   duration,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, duration),
		Status:     challenge.StatusActive,
	}
}

func markDays(c *challenge.Challenge, userID string, from, to int) {
	for d := from; d <= to; d++ {
		if userID == c.SenderID {
			c.SenderDailyCompletions = append(c.SenderDailyCompletions, DateKey(day(d)))
		} else {
			c.ReceiverDailyCompletions = append(c.ReceiverDailyCompletions, DateKey(day(d)))
		}
	}
}

func TestReconcileStampsWithoutTransition(t *testing.T) {
	c := activeChallenge(7)
	markDays(c, senderID, 1, 1)
	markDays(c, receiverID, 1, 1)

	changed := Reconcile(c, day(2))
	if !changed {
		t.Fatal("expected a change (stamp)")
	}
	if c.Status != challenge.StatusActive {
		t.Errorf("status = %s, want active", c.Status)
	}
	if !c.LastCheckedDate.Equal(day(2)) {
		t.Errorf("lastCheckedDate = %v, want %v", c.LastCheckedDate, day(2))
	}
}

func TestReconcileIdempotentSameDay(t *testing.T) {
	c := activeChallenge(7)
	markDays(c, senderID, 1, 1)
	markDays(c, receiverID, 1, 1)

	Reconcile(c, day(2))
	status, checked := c.Status, c.LastCheckedDate

	changed := Reconcile(c, day(2).Add(6*time.Hour))
	if changed {
		t.Error("second reconcile on the same day reported a change")
	}
	if c.Status != status || !c.LastCheckedDate.Equal(checked) {
		t.Errorf("challenge mutated on second reconcile: status=%s checked=%v", c.Status, c.LastCheckedDate)
	}
}

func TestReconcileFailsOnMissedYesterday(t *testing.T) {
	// duration=7 from day 1; sender completes days 1-4, receiver only 1-2.
	// At day 6, day 5 was not completed by both parties.
	c := activeChallenge(7)
	markDays(c, senderID, 1, 4)
	markDays(c, receiverID, 1, 2)

	changed := Reconcile(c, day(6))
	if !changed {
		t.Fatal("expected a change")
	}
	if c.Status != challenge.StatusFailed {
		t.Errorf("status = %s, want failed", c.Status)
	}
}

func TestReconcileFailsWhenOnlyOnePartyMissed(t *testing.T) {
	c := activeChallenge(7)
	markDays(c, senderID, 1, 2)
	markDays(c, receiverID, 1, 1)

	Reconcile(c, day(3))
	if c.Status != challenge.StatusFailed {
		t.Errorf("status = %s, want failed", c.Status)
	}
}

func TestReconcileCompletesAtEndDate(t *testing.T) {
	c := activeChallenge(7)
	markDays(c, senderID, 1, 7)
	markDays(c, receiverID, 1, 7)

	Reconcile(c, day(8)) // day 8 == endDate
	if c.Status != challenge.StatusCompleted {
		t.Errorf("status = %s, want completed", c.Status)
	}
}

func TestFailureTakesPrecedenceOverCompletion(t *testing.T) {
	// Streak broken AND past the end date on the same evaluation.
	c := activeChallenge(7)
	markDays(c, senderID, 1, 7)
	markDays(c, receiverID, 1, 6)

	Reconcile(c, day(8))
	if c.Status != challenge.StatusFailed {
		t.Errorf("status = %s, want failed (failure checked before completion)", c.Status)
	}
}

func TestReconcileDayBeforeStartIsExempt(t *testing.T) {
	// On the start day itself, yesterday predates the challenge and cannot
	// fail it.
	c := activeChallenge(7)

	Reconcile(c, day(1))
	if c.Status != challenge.StatusActive {
		t.Errorf("status = %s, want active", c.Status)
	}
}

func TestReconcileClockSkewIsNoOp(t *testing.T) {
	c := activeChallenge(7)
	markDays(c, senderID, 1, 3)
	markDays(c, receiverID, 1, 3)
	Reconcile(c, day(4))

	changed := Reconcile(c, day(3))
	if changed {
		t.Error("reconcile with an earlier now reported a change")
	}
	if !c.LastCheckedDate.Equal(day(4)) {
		t.Errorf("lastCheckedDate moved backwards to %v", c.LastCheckedDate)
	}
}

func TestReconcileIgnoresNonActive(t *testing.T) {
	for _, status := range []challenge.Status{
		challenge.StatusPending,
		challenge.StatusCompleted,
		challenge.StatusDeclined,
		challenge.StatusCancelled,
		challenge.StatusFailed,
	} {
		c := activeChallenge(7)
		c.Status = status
		if Reconcile(c, day(20)) {
			t.Errorf("reconcile changed a %s challenge", status)
		}
		if c.Status != status {
			t.Errorf("status mutated from %s to %s", status, c.Status)
		}
	}
}

func TestTerminalStatesStayTerminal(t *testing.T) {
	// Once failed, later reconciles past the end date never flip to
	// completed.
	c := activeChallenge(7)
	Reconcile(c, day(3))
	if c.Status != challenge.StatusFailed {
		t.Fatalf("status = %s, want failed", c.Status)
	}
	Reconcile(c, day(9))
	if c.Status != challenge.StatusFailed {
		t.Errorf("status = %s, want failed to stick", c.Status)
	}
}
