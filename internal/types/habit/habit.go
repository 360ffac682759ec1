package habit

import (
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

type LogStatus string

const (
	LogCompleted LogStatus = "completed"
	LogMissed    LogStatus = "missed"
)

type Habit struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	Frequency     Frequency `json:"frequency" db:"frequency"`
	StartDate     time.Time `json:"start_date" db:"start_date"`
	CurrentStreak int       `json:"current_streak" db:"current_streak"`
	BestStreak    int       `json:"best_streak" db:"best_streak"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Log is one marked day for a habit. A day with no log is "pending": it is
// never stored, only inferred.
type Log struct {
	ID        uuid.UUID `json:"id" db:"id"`
	HabitID   uuid.UUID `json:"habit_id" db:"habit_id"`
	Date      time.Time `json:"date" db:"log_date"`
	Status    LogStatus `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CreateHabitRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Frequency   Frequency `json:"frequency"`
	StartDate   string    `json:"start_date"` // YYYY-MM-DD
}

type LogDayRequest struct {
	Date   string    `json:"date"` // YYYY-MM-DD
	Status LogStatus `json:"status"`
}
