// Package engine holds the pure decision logic for two-party challenges:
// the lifecycle state machine, the lazy reconcile pass, completion recording
// and win aggregation. It performs no I/O and never reads a system clock;
// every function takes a snapshot plus a caller-supplied reference time, so
// each call is deterministic and idempotent per calendar day.
package engine

import (
	"fmt"
	"time"

	"habitPactAPI/internal/types/challenge"
)

// Reconcile lazily re-evaluates an active challenge's terminal status at
// time now and reports whether anything changed (so the caller knows to
// persist). The rules, in order:
//
//  1. If the challenge is not active, or the check already ran today, or now
//     is earlier than the last check (clock skew), nothing is evaluated.
//  2. If yesterday is on or after the start date and either party is missing
//     yesterday from their completion set, the challenge fails.
//  3. Otherwise, if now has reached the end date, the challenge completes.
//  4. Otherwise only the last-checked stamp advances.
//
// Failure is checked before completion deliberately: a challenge that both
// expired and broke its streak on the same evaluation reports failed.
func Reconcile(c *challenge.Challenge, now time.Time) bool {
	if c.Status != challenge.StatusActive {
		return false
	}

	today := StartOfDay(now)
	if !c.LastCheckedDate.IsZero() {
		if SameDay(c.LastCheckedDate, now) {
			return false
		}
		if today.Before(StartOfDay(c.LastCheckedDate)) {
			// now is behind the last check; nothing new to evaluate
			return false
		}
	}

	yesterday := today.AddDate(0, 0, -1)
	if !yesterday.Before(StartOfDay(c.StartDate)) && !bothCompleted(c, DateKey(yesterday)) {
		c.Status = challenge.StatusFailed
		c.LastCheckedDate = today
		return true
	}

	if !now.Before(c.EndDate) {
		c.Status = challenge.StatusCompleted
		c.LastCheckedDate = today
		return true
	}

	c.LastCheckedDate = today
	return true
}

// RecordCompletion appends date to the actor's completion set and stores the
// caller-computed progress value, then runs Reconcile with date as the
// reference time. Re-marking an already-present date is a no-op on the set
// (it stays duplicate-free) but still refreshes progress and reconciles.
// Only the acting party's fields change.
//
// The challenge is left untouched on error: completions can only be recorded
// by a participant while the challenge is active.
func RecordCompletion(c *challenge.Challenge, actorID string, date time.Time, progress float64) error {
	if !c.IsParticipant(actorID) {
		return fmt.Errorf("%w: user %s is not part of challenge %s", ErrUnauthorizedActor, actorID, c.ID)
	}
	if c.Status != challenge.StatusActive {
		return fmt.Errorf("%w: cannot record a completion while %s", ErrInvalidTransition, c.Status)
	}

	key := DateKey(date)
	if actorID == c.SenderID {
		if !c.HasCompletion(actorID, key) {
			c.SenderDailyCompletions = append(c.SenderDailyCompletions, key)
		}
		c.SenderProgress = progress
	} else {
		if !c.HasCompletion(actorID, key) {
			c.ReceiverDailyCompletions = append(c.ReceiverDailyCompletions, key)
		}
		c.ReceiverProgress = progress
	}

	Reconcile(c, date)
	return nil
}

func bothCompleted(c *challenge.Challenge, dateKey string) bool {
	return c.HasCompletion(c.SenderID, dateKey) && c.HasCompletion(c.ReceiverID, dateKey)
}
