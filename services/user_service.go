package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"habitPactAPI/internal/types/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserService struct {
	db                  *pgxpool.Pool
	notificationService *NotificationService
}

func NewUserService(db *pgxpool.Pool, notificationService *NotificationService) *UserService {
	return &UserService{db: db, notificationService: notificationService}
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	u := &user.User{
		ID:        uuid.New().String(),
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
	INSERT INTO users (id, clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, clerk_id, email, username, first_name, last_name, image_url, email_verified, created_at, updated_at
	`
	err := s.db.QueryRow(ctx, query,
		u.ID, u.ClerkID, u.Email, u.Username, u.FirstName, u.LastName, u.ImageURL, u.CreatedAt, u.UpdatedAt,
	).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.ImageURL, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT id, clerk_id, email, username, first_name, last_name, image_url, email_verified, created_at, updated_at
	FROM users
	WHERE clerk_id = $1
	`
	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.ImageURL, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	u, err := s.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		u.Username = *req.Username
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.ImageURL != nil {
		u.ImageURL = *req.ImageURL
	}
	u.UpdatedAt = time.Now()

	query := `
	UPDATE users SET username = $1, first_name = $2, last_name = $3, image_url = $4, updated_at = $5
	WHERE clerk_id = $6
	`
	if _, err := s.db.Exec(ctx, query, u.Username, u.FirstName, u.LastName, u.ImageURL, u.UpdatedAt, clerkID); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

func (s *UserService) MarkEmailVerified(ctx context.Context, clerkID string) error {
	_, err := s.db.Exec(ctx, `UPDATE users SET email_verified = true, updated_at = $1 WHERE clerk_id = $2`, time.Now(), clerkID)
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return nil
}

func (s *UserService) SearchUsers(ctx context.Context, clerkID, search string) ([]user.Friend, error) {
	query := `
	SELECT id, username, image_url
	FROM users
	WHERE username ILIKE '%' || $1 || '%' AND clerk_id != $2
	ORDER BY username
	LIMIT 20
	`
	rows, err := s.db.Query(ctx, query, search, clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	results := []user.Friend{}
	for rows.Next() {
		var f user.Friend
		if err := rows.Scan(&f.ID, &f.Username, &f.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		results = append(results, f)
	}
	return results, rows.Err()
}

// AddFriend creates a mutual friendship between the caller and friendID.
func (s *UserService) AddFriend(ctx context.Context, clerkID, friendID string) error {
	u, err := s.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}
	if u.ID == friendID {
		return fmt.Errorf("cannot add yourself as a friend")
	}

	friendUUID, err := uuid.Parse(friendID)
	if err != nil {
		return fmt.Errorf("invalid friend id: %w", err)
	}

	query := `
	INSERT INTO friendships (id, user_id, friend_id, created_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id, friend_id) DO NOTHING
	`
	if _, err := s.db.Exec(ctx, query, uuid.New(), u.ID, friendUUID, time.Now()); err != nil {
		return fmt.Errorf("failed to add friend: %w", err)
	}

	if s.notificationService != nil {
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.notificationService.NotifyFriendAdded(bgCtx, friendUUID, u.Username); err != nil {
				log.Printf("Failed to send friend notification: %v", err)
			}
		}()
	}
	return nil
}

func (s *UserService) RemoveFriend(ctx context.Context, clerkID, friendID string) error {
	u, err := s.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}

	query := `
	DELETE FROM friendships
	WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`
	if _, err := s.db.Exec(ctx, query, u.ID, friendID); err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	return nil
}

func (s *UserService) GetFriends(ctx context.Context, clerkID string) ([]user.Friend, error) {
	u, err := s.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT u.id, u.username, u.image_url
	FROM users u
	JOIN friendships f ON (f.friend_id = u.id AND f.user_id = $1)
	              OR (f.user_id = u.id AND f.friend_id = $1)
	ORDER BY u.username
	`
	rows, err := s.db.Query(ctx, query, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	friends := []user.Friend{}
	for rows.Next() {
		var f user.Friend
		if err := rows.Scan(&f.ID, &f.Username, &f.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

// AreFriends reports whether two users share a friendship row in either
// direction. Challenges can only be sent to friends.
func (s *UserService) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	query := `
	SELECT EXISTS(
		SELECT 1 FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	)
	`
	var ok bool
	if err := s.db.QueryRow(ctx, query, userID, otherID).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return ok, nil
}

// InternalIDToUUID parses a stored user id. Challenge documents keep ids as
// plain strings; the relational side wants UUIDs.
func (s *UserService) InternalIDToUUID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id %q: %w", id, err)
	}
	return parsed, nil
}
