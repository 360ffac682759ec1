package friendship

import (
	"time"

	"github.com/google/uuid"
)

type Friendship struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	FriendID  uuid.UUID `json:"friend_id" db:"friend_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type AddFriendRequest struct {
	FriendID string `json:"friend_id"`
}
