package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeChallengeReceived  NotificationType = "challenge_received"
	TypeChallengeAccepted  NotificationType = "challenge_accepted"
	TypeChallengeDeclined  NotificationType = "challenge_declined"
	TypeChallengeCancelled NotificationType = "challenge_cancelled"
	TypeChallengeCompleted NotificationType = "challenge_completed"
	TypeChallengeFailed    NotificationType = "challenge_failed"
	TypeStreakMilestone    NotificationType = "streak_milestone"
	TypeFriendAdded        NotificationType = "friend_added"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	Data      map[string]any   `json:"data" db:"data"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type CreateNotificationRequest struct {
	UserID  uuid.UUID        `json:"user_id"`
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Data    map[string]any   `json:"data,omitempty"`
}

type DeviceToken struct {
	Token    string `json:"token" db:"token"`
	Platform string `json:"platform" db:"platform"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
