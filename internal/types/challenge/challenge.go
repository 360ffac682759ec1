package challenge

import (
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transition leaves this status.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusDeclined, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// Challenge is a two-party habit commitment stored as a single Firestore
// document. Daily completions are kept as sets of YYYY-MM-DD keys, one set
// per party. Daily photos are proof only and never drive any decision.
type Challenge struct {
	ID                       string            `json:"id" firestore:"-"`
	SenderID                 string            `json:"sender_id" firestore:"sender_id"`
	ReceiverID               string            `json:"receiver_id" firestore:"receiver_id"`
	HabitName                string            `json:"habit_name" firestore:"habit_name"`
	Description              string            `json:"description" firestore:"description"`
	Frequency                string            `json:"frequency" firestore:"frequency"`
	Duration                 int               `json:"duration" firestore:"duration"` // days
	StartDate                time.Time         `json:"start_date" firestore:"start_date"`
	EndDate                  time.Time         `json:"end_date" firestore:"end_date"` // start + duration days, fixed at creation
	Status                   Status            `json:"status" firestore:"status"`
	SenderProgress           float64           `json:"sender_progress" firestore:"sender_progress"`
	ReceiverProgress         float64           `json:"receiver_progress" firestore:"receiver_progress"`
	SenderDailyCompletions   []string          `json:"sender_daily_completions" firestore:"sender_daily_completions"`
	ReceiverDailyCompletions []string          `json:"receiver_daily_completions" firestore:"receiver_daily_completions"`
	SenderDailyPhotos        map[string]string `json:"sender_daily_photos,omitempty" firestore:"sender_daily_photos"`
	ReceiverDailyPhotos      map[string]string `json:"receiver_daily_photos,omitempty" firestore:"receiver_daily_photos"`
	LastCheckedDate          time.Time         `json:"last_checked_date" firestore:"last_checked_date"`
	CreatedAt                time.Time         `json:"created_at" firestore:"created_at"`
	UpdatedAt                time.Time         `json:"updated_at" firestore:"updated_at"`
}

func (c *Challenge) IsParticipant(userID string) bool {
	return userID == c.SenderID || userID == c.ReceiverID
}

// CompletionsFor returns the completion set of the given party.
func (c *Challenge) CompletionsFor(userID string) []string {
	if userID == c.SenderID {
		return c.SenderDailyCompletions
	}
	if userID == c.ReceiverID {
		return c.ReceiverDailyCompletions
	}
	return nil
}

// HasCompletion reports whether the party already marked the given date.
func (c *Challenge) HasCompletion(userID, dateKey string) bool {
	for _, d := range c.CompletionsFor(userID) {
		if d == dateKey {
			return true
		}
	}
	return false
}

type CreateChallengeRequest struct {
	ReceiverID  string `json:"receiver_id"`
	HabitName   string `json:"habit_name"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
	Duration    int    `json:"duration"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD
}

// ChallengeListResponse groups a user's challenges the way the client tabs
// them: pending ones split by role, then active, then terminal outcomes.
type ChallengeListResponse struct {
	Sent      []Challenge `json:"sent"`
	Received  []Challenge `json:"received"`
	Active    []Challenge `json:"active"`
	Completed []Challenge `json:"completed"`
	Failed    []Challenge `json:"failed"`
}
