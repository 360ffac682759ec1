package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"habitPactAPI/internal/types/challenge"
	"habitPactAPI/internal/types/notification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PushProvider delivers a notification to a user's registered devices.
// The FCM client satisfies this; tests can inject a mock.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

type NotificationService struct {
	db           *pgxpool.Pool
	pushProvider PushProvider
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) SetPushProvider(p PushProvider) {
	s.pushProvider = p
}

func (s *NotificationService) CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error) {
	n := &notification.Notification{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		Data:      req.Data,
		CreatedAt: time.Now(),
	}

	query := `
	INSERT INTO notifications (id, user_id, type, title, message, data, is_read, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, false, $7)
	`
	if _, err := s.db.Exec(ctx, query, n.ID, n.UserID, n.Type, n.Title, n.Message, n.Data, n.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.push(n)
	return n, nil
}

func (s *NotificationService) GetNotifications(ctx context.Context, clerkID string, limit int) ([]notification.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := `
	SELECT n.id, n.user_id, n.type, n.title, n.message, n.data, n.is_read, n.created_at
	FROM notifications n
	JOIN users u ON u.id = n.user_id
	WHERE u.clerk_id = $1
	ORDER BY n.created_at DESC
	LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, clerkID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []notification.Notification{}
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Data, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, clerkID string) (int, error) {
	query := `
	SELECT COUNT(*)
	FROM notifications n
	JOIN users u ON u.id = n.user_id
	WHERE u.clerk_id = $1 AND n.is_read = false
	`
	var count int
	if err := s.db.QueryRow(ctx, query, clerkID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, clerkID string) error {
	query := `
	UPDATE notifications SET is_read = true
	WHERE user_id = (SELECT id FROM users WHERE clerk_id = $1)
	`
	if _, err := s.db.Exec(ctx, query, clerkID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	query := `
	INSERT INTO device_tokens (user_id, token, platform, created_at)
	SELECT id, $2, $3, $4 FROM users WHERE clerk_id = $1
	ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform
	`
	if _, err := s.db.Exec(ctx, query, clerkID, req.Token, req.Platform, time.Now()); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

// Domain-specific helpers used by the other services.

func (s *NotificationService) NotifyChallengeEvent(ctx context.Context, userID uuid.UUID, typ notification.NotificationType, c *challenge.Challenge, actorName string) error {
	title, message := challengeCopy(typ, c, actorName)
	_, err := s.CreateNotification(ctx, &notification.CreateNotificationRequest{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Data:    map[string]any{"challenge_id": c.ID},
	})
	return err
}

func (s *NotificationService) NotifyStreakMilestone(ctx context.Context, userID uuid.UUID, habitTitle string, days int) error {
	_, err := s.CreateNotification(ctx, &notification.CreateNotificationRequest{
		UserID:  userID,
		Type:    notification.TypeStreakMilestone,
		Title:   "Streak milestone",
		Message: fmt.Sprintf("%d days in a row on %q. Keep going!", days, habitTitle),
		Data:    map[string]any{"days": days},
	})
	return err
}

func (s *NotificationService) NotifyFriendAdded(ctx context.Context, userID uuid.UUID, friendUsername string) error {
	_, err := s.CreateNotification(ctx, &notification.CreateNotificationRequest{
		UserID:  userID,
		Type:    notification.TypeFriendAdded,
		Title:   "New friend",
		Message: fmt.Sprintf("%s added you as a friend", friendUsername),
	})
	return err
}

func challengeCopy(typ notification.NotificationType, c *challenge.Challenge, actorName string) (string, string) {
	switch typ {
	case notification.TypeChallengeReceived:
		return "New challenge", fmt.Sprintf("%s challenged you: %s (%d days)", actorName, c.HabitName, c.Duration)
	case notification.TypeChallengeAccepted:
		return "Challenge accepted", fmt.Sprintf("%s accepted your challenge %q", actorName, c.HabitName)
	case notification.TypeChallengeDeclined:
		return "Challenge declined", fmt.Sprintf("%s declined your challenge %q", actorName, c.HabitName)
	case notification.TypeChallengeCancelled:
		return "Challenge cancelled", fmt.Sprintf("%s cancelled the challenge %q", actorName, c.HabitName)
	case notification.TypeChallengeCompleted:
		return "Challenge completed", fmt.Sprintf("The challenge %q has ended. Check the results!", c.HabitName)
	case notification.TypeChallengeFailed:
		return "Challenge failed", fmt.Sprintf("The streak broke on %q. Better luck next time.", c.HabitName)
	default:
		return "Update", c.HabitName
	}
}

func (s *NotificationService) push(n *notification.Notification) {
	if s.pushProvider == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		tokens, err := s.deviceTokens(ctx, n.UserID)
		if err != nil {
			log.Printf("Failed to load device tokens for %s: %v", n.UserID, err)
			return
		}
		if err := s.pushProvider.SendPush(ctx, tokens, n.Title, n.Message, n.Data); err != nil {
			log.Printf("Failed to push notification %s: %v", n.ID, err)
		}
	}()
}

func (s *NotificationService) deviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `SELECT token, platform FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := []notification.DeviceToken{}
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
