package engine

import (
	"errors"
	"testing"

	"habitPactAPI/internal/types/challenge"
)

func TestRecordCompletionAppendsAndSetsProgress(t *testing.T) {
	c := activeChallenge(10)
	markDays(c, receiverID, 1, 1)

	if err := RecordCompletion(c, senderID, day(1), 10); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if len(c.SenderDailyCompletions) != 1 || c.SenderDailyCompletions[0] != "2026-03-01" {
		t.Errorf("sender completions = %v", c.SenderDailyCompletions)
	}
	if c.SenderProgress != 10 {
		t.Errorf("sender progress = %v, want 10", c.SenderProgress)
	}
	// The other party is untouched.
	if c.ReceiverProgress != 0 || len(c.ReceiverDailyCompletions) != 1 {
		t.Errorf("receiver fields changed: progress=%v completions=%v",
			c.ReceiverProgress, c.ReceiverDailyCompletions)
	}
}

func TestRecordCompletionDuplicateDateIsSetNoOp(t *testing.T) {
	c := activeChallenge(10)
	markDays(c, receiverID, 1, 1)

	if err := RecordCompletion(c, senderID, day(1), 10); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := RecordCompletion(c, senderID, day(1), 10); err != nil {
		t.Fatalf("second record: %v", err)
	}
	if len(c.SenderDailyCompletions) != 1 {
		t.Errorf("completion set grew on duplicate date: %v", c.SenderDailyCompletions)
	}
}

func TestRecordCompletionRejectsOutsider(t *testing.T) {
	c := activeChallenge(10)
	err := RecordCompletion(c, "user-stranger", day(1), 10)
	if !errors.Is(err, ErrUnauthorizedActor) {
		t.Errorf("err = %v, want ErrUnauthorizedActor", err)
	}
	if len(c.SenderDailyCompletions) != 0 && len(c.ReceiverDailyCompletions) != 0 {
		t.Error("completion recorded for an outsider")
	}
}

func TestRecordCompletionRejectsNonActive(t *testing.T) {
	c := activeChallenge(10)
	c.Status = challenge.StatusPending
	err := RecordCompletion(c, senderID, day(1), 10)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
	if c.SenderProgress != 0 {
		t.Error("progress changed despite rejected completion")
	}
}

func TestRecordCompletionReconciles(t *testing.T) {
	// Recording on day 3 when day 2 was missed by the receiver must fail
	// the challenge in the same call.
	c := activeChallenge(10)
	markDays(c, senderID, 1, 2)
	markDays(c, receiverID, 1, 1)

	if err := RecordCompletion(c, senderID, day(3), 30); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if c.Status != challenge.StatusFailed {
		t.Errorf("status = %s, want failed", c.Status)
	}
}
