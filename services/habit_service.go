package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"habitPactAPI/internal/engine"
	"habitPactAPI/internal/streak"
	"habitPactAPI/internal/types/habit"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HabitService struct {
	db                  *pgxpool.Pool
	notificationService *NotificationService
}

func NewHabitService(db *pgxpool.Pool, notificationService *NotificationService) *HabitService {
	return &HabitService{db: db, notificationService: notificationService}
}

func (s *HabitService) CreateHabit(ctx context.Context, clerkID string, req *habit.CreateHabitRequest) (*habit.Habit, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if req.Title == "" {
		return nil, fmt.Errorf("habit title is required")
	}
	if req.Frequency != habit.FrequencyDaily && req.Frequency != habit.FrequencyWeekly {
		return nil, fmt.Errorf("invalid frequency %q", req.Frequency)
	}

	startDate, err := engine.ParseDateKey(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date %q: %w", req.StartDate, err)
	}

	h := &habit.Habit{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Frequency:   req.Frequency,
		StartDate:   startDate,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	query := `
	INSERT INTO habits (id, user_id, title, description, frequency, start_date, current_streak, best_streak, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, 0, 0, $7, $8)
	`
	if _, err := s.db.Exec(ctx, query,
		h.ID, h.UserID, h.Title, h.Description, h.Frequency, h.StartDate, h.CreatedAt, h.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	return h, nil
}

func (s *HabitService) GetHabits(ctx context.Context, clerkID string) ([]habit.Habit, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, user_id, title, description, frequency, start_date, current_streak, best_streak, created_at, updated_at
	FROM habits
	WHERE user_id = $1
	ORDER BY created_at DESC
	`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	habits := []habit.Habit{}
	for rows.Next() {
		var h habit.Habit
		if err := rows.Scan(
			&h.ID, &h.UserID, &h.Title, &h.Description, &h.Frequency,
			&h.StartDate, &h.CurrentStreak, &h.BestStreak, &h.CreatedAt, &h.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *HabitService) GetHabitLogs(ctx context.Context, clerkID string, habitID uuid.UUID) ([]habit.Log, error) {
	if _, err := s.ownedHabit(ctx, clerkID, habitID); err != nil {
		return nil, err
	}
	return s.loadLogs(ctx, habitID)
}

// LogDay upserts the single log for a habit+date, then recomputes streaks
// from the full log history and persists them onto the habit. Returns the
// habit with fresh streak values.
func (s *HabitService) LogDay(ctx context.Context, clerkID string, habitID uuid.UUID, req *habit.LogDayRequest) (*habit.Habit, error) {
	h, err := s.ownedHabit(ctx, clerkID, habitID)
	if err != nil {
		return nil, err
	}

	if req.Status != habit.LogCompleted && req.Status != habit.LogMissed {
		return nil, fmt.Errorf("invalid log status %q", req.Status)
	}
	date, err := engine.ParseDateKey(req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
	}

	// One log per habit per date; re-marking a day replaces its status.
	upsert := `
	INSERT INTO habit_logs (id, habit_id, log_date, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $5)
	ON CONFLICT (habit_id, log_date)
	DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.Exec(ctx, upsert, uuid.New(), habitID, date, req.Status, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to record habit log: %w", err)
	}

	logs, err := s.loadLogs(ctx, habitID)
	if err != nil {
		return nil, err
	}

	result := streak.Compute(logs, h.BestStreak, time.Now())

	update := `
	UPDATE habits SET current_streak = $1, best_streak = $2, updated_at = $3
	WHERE id = $4
	`
	if _, err := s.db.Exec(ctx, update, result.Current, result.Best, time.Now(), habitID); err != nil {
		return nil, fmt.Errorf("failed to update streaks: %w", err)
	}

	if result.Current > h.CurrentStreak && result.Current > 0 && result.Current%7 == 0 {
		s.notifyStreakMilestone(h, result.Current)
	}

	h.CurrentStreak = result.Current
	h.BestStreak = result.Best
	h.UpdatedAt = time.Now()
	return h, nil
}

// DeleteHabit removes a habit and all of its logs in one transaction.
func (s *HabitService) DeleteHabit(ctx context.Context, clerkID string, habitID uuid.UUID) error {
	if _, err := s.ownedHabit(ctx, clerkID, habitID); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM habit_logs WHERE habit_id = $1`, habitID); err != nil {
		return fmt.Errorf("failed to delete habit logs: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM habits WHERE id = $1`, habitID); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *HabitService) loadLogs(ctx context.Context, habitID uuid.UUID) ([]habit.Log, error) {
	query := `
	SELECT id, habit_id, log_date, status, created_at, updated_at
	FROM habit_logs
	WHERE habit_id = $1
	ORDER BY log_date ASC
	`
	rows, err := s.db.Query(ctx, query, habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load habit logs: %w", err)
	}
	defer rows.Close()

	logs := []habit.Log{}
	for rows.Next() {
		var l habit.Log
		if err := rows.Scan(&l.ID, &l.HabitID, &l.Date, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan habit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ownedHabit loads a habit and enforces that the caller owns it.
func (s *HabitService) ownedHabit(ctx context.Context, clerkID string, habitID uuid.UUID) (*habit.Habit, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, user_id, title, description, frequency, start_date, current_streak, best_streak, created_at, updated_at
	FROM habits
	WHERE id = $1
	`
	var h habit.Habit
	err = s.db.QueryRow(ctx, query, habitID).Scan(
		&h.ID, &h.UserID, &h.Title, &h.Description, &h.Frequency,
		&h.StartDate, &h.CurrentStreak, &h.BestStreak, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("habit %s: %w", habitID, engine.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	if h.UserID != userID {
		return nil, fmt.Errorf("%w: habit %s belongs to another user", engine.ErrUnauthorizedActor, habitID)
	}
	return &h, nil
}

func (s *HabitService) resolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("user not found")
		}
		return uuid.Nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return id, nil
}

func (s *HabitService) notifyStreakMilestone(h *habit.Habit, current int) {
	if s.notificationService == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.notificationService.NotifyStreakMilestone(ctx, h.UserID, h.Title, current); err != nil {
			log.Printf("Failed to send streak milestone notification: %v", err)
		}
	}()
}
