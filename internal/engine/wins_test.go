package engine

import (
	"testing"

	"habitPactAPI/internal/types/challenge"
)

func completedChallenge(sender, receiver string, senderProgress, receiverProgress float64) challenge.Challenge {
	return challenge.Challenge{
		SenderID:         sender,
		ReceiverID:       receiver,
		Status:           challenge.StatusCompleted,
		SenderProgress:   senderProgress,
		ReceiverProgress: receiverProgress,
	}
}

func TestTallyWinsStrictWinner(t *testing.T) {
	wins := TallyWins([]challenge.Challenge{
		completedChallenge("alice", "bob", 100, 85),
	})
	if wins["alice"] != 1.0 {
		t.Errorf("alice = %v, want 1.0", wins["alice"])
	}
	if wins["bob"] != 0 {
		t.Errorf("bob = %v, want 0", wins["bob"])
	}
}

func TestTallyWinsTieSplitsCredit(t *testing.T) {
	wins := TallyWins([]challenge.Challenge{
		completedChallenge("alice", "bob", 100, 100),
	})
	if wins["alice"] != 0.5 || wins["bob"] != 0.5 {
		t.Errorf("wins = %v, want 0.5 each", wins)
	}
}

func TestTallyWinsSkipsNonCompleted(t *testing.T) {
	failed := completedChallenge("alice", "bob", 100, 40)
	failed.Status = challenge.StatusFailed
	cancelled := completedChallenge("alice", "bob", 50, 20)
	cancelled.Status = challenge.StatusCancelled

	wins := TallyWins([]challenge.Challenge{failed, cancelled})
	if len(wins) != 0 {
		t.Errorf("wins = %v, want empty", wins)
	}
}

func TestTallyWinsTotalEqualsCompletedCount(t *testing.T) {
	set := []challenge.Challenge{
		completedChallenge("alice", "bob", 100, 85),
		completedChallenge("bob", "carol", 70, 90),
		completedChallenge("alice", "carol", 60, 60),
		completedChallenge("dave", "alice", 0, 0),
	}
	failed := completedChallenge("bob", "dave", 90, 10)
	failed.Status = challenge.StatusFailed
	set = append(set, failed)

	wins := TallyWins(set)
	var total float64
	for _, w := range wins {
		total += w
	}
	if total != 4.0 {
		t.Errorf("total credit = %v, want 4.0 (one point per completed challenge)", total)
	}
}
