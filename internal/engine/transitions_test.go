package engine

import (
	"errors"
	"testing"

	"habitPactAPI/internal/types/challenge"
)

func pendingChallenge() *challenge.Challenge {
	c := activeChallenge(7)
	c.Status = challenge.StatusPending
	return c
}

func TestReceiverAccepts(t *testing.T) {
	c := pendingChallenge()
	if err := Accept(c, receiverID); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if c.Status != challenge.StatusActive {
		t.Errorf("status = %s, want active", c.Status)
	}
}

func TestSenderCannotAccept(t *testing.T) {
	c := pendingChallenge()
	err := Accept(c, senderID)
	if !errors.Is(err, ErrUnauthorizedActor) {
		t.Errorf("err = %v, want ErrUnauthorizedActor", err)
	}
	if c.Status != challenge.StatusPending {
		t.Errorf("status = %s, want pending left intact", c.Status)
	}
}

func TestReceiverDeclines(t *testing.T) {
	c := pendingChallenge()
	if err := Decline(c, receiverID); err != nil {
		t.Fatalf("Decline: %v", err)
	}
	if c.Status != challenge.StatusDeclined {
		t.Errorf("status = %s, want declined", c.Status)
	}
}

func TestSenderCancelsPendingAndActive(t *testing.T) {
	for _, status := range []challenge.Status{challenge.StatusPending, challenge.StatusActive} {
		c := pendingChallenge()
		c.Status = status
		if err := Cancel(c, senderID); err != nil {
			t.Fatalf("Cancel from %s: %v", status, err)
		}
		if c.Status != challenge.StatusCancelled {
			t.Errorf("status = %s, want cancelled", c.Status)
		}
	}
}

func TestReceiverCannotCancel(t *testing.T) {
	c := pendingChallenge()
	if err := Cancel(c, receiverID); !errors.Is(err, ErrUnauthorizedActor) {
		t.Errorf("err = %v, want ErrUnauthorizedActor", err)
	}
}

func TestNoTransitionsLeaveTerminalStates(t *testing.T) {
	terminal := []challenge.Status{
		challenge.StatusCompleted,
		challenge.StatusDeclined,
		challenge.StatusCancelled,
		challenge.StatusFailed,
	}
	for _, status := range terminal {
		c := pendingChallenge()
		c.Status = status

		if err := Accept(c, receiverID); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Accept from %s: err = %v, want ErrInvalidTransition", status, err)
		}
		if err := Decline(c, receiverID); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Decline from %s: err = %v, want ErrInvalidTransition", status, err)
		}
		if err := Cancel(c, senderID); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Cancel from %s: err = %v, want ErrInvalidTransition", status, err)
		}
		if c.Status != status {
			t.Errorf("terminal status %s mutated to %s", status, c.Status)
		}
	}
}

func TestAcceptActiveIsInvalid(t *testing.T) {
	c := pendingChallenge()
	c.Status = challenge.StatusActive
	if err := Accept(c, receiverID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}
