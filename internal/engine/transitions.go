package engine

import (
	"fmt"

	"habitPactAPI/internal/types/challenge"
)

// Accept moves a pending challenge to active. Receiver-only.
func Accept(c *challenge.Challenge, actorID string) error {
	if actorID != c.ReceiverID {
		return fmt.Errorf("%w: only the receiver may accept", ErrUnauthorizedActor)
	}
	if c.Status != challenge.StatusPending {
		return fmt.Errorf("%w: cannot accept a %s challenge", ErrInvalidTransition, c.Status)
	}
	c.Status = challenge.StatusActive
	return nil
}

// Decline moves a pending challenge to declined. Receiver-only.
func Decline(c *challenge.Challenge, actorID string) error {
	if actorID != c.ReceiverID {
		return fmt.Errorf("%w: only the receiver may decline", ErrUnauthorizedActor)
	}
	if c.Status != challenge.StatusPending {
		return fmt.Errorf("%w: cannot decline a %s challenge", ErrInvalidTransition, c.Status)
	}
	c.Status = challenge.StatusDeclined
	return nil
}

// Cancel moves a pending or active challenge to cancelled. Sender-only.
// Cancellation is the soft-delete path: the document survives, only the
// status exits the live set.
func Cancel(c *challenge.Challenge, actorID string) error {
	if actorID != c.SenderID {
		return fmt.Errorf("%w: only the sender may cancel", ErrUnauthorizedActor)
	}
	if c.Status != challenge.StatusPending && c.Status != challenge.StatusActive {
		return fmt.Errorf("%w: cannot cancel a %s challenge", ErrInvalidTransition, c.Status)
	}
	c.Status = challenge.StatusCancelled
	return nil
}
