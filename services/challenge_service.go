package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"habitPactAPI/internal/engine"
	"habitPactAPI/internal/types/challenge"
	"habitPactAPI/internal/types/notification"
)

const challengesCollection = "challenges"

// ChallengeService orchestrates the pure challenge engine against Firestore.
// Every mutation runs as a document-level read-modify-write transaction so a
// completion appended by one party can never be lost to a concurrent write by
// the other. The engine itself only ever sees a fresh snapshot plus a
// reference time.
type ChallengeService struct {
	fs                  *firestore.Client
	userService         *UserService
	notificationService *NotificationService
}

func NewChallengeService(fs *firestore.Client, userService *UserService, notificationService *NotificationService) *ChallengeService {
	return &ChallengeService{
		fs:                  fs,
		userService:         userService,
		notificationService: notificationService,
	}
}

func (s *ChallengeService) CreateChallenge(ctx context.Context, clerkID string, req *challenge.CreateChallengeRequest) (*challenge.Challenge, error) {
	sender, err := s.userService.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if req.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", req.Duration)
	}
	if req.ReceiverID == sender.ID {
		return nil, fmt.Errorf("cannot challenge yourself")
	}
	areFriends, err := s.userService.AreFriends(ctx, sender.ID, req.ReceiverID)
	if err != nil {
		return nil, err
	}
	if !areFriends {
		return nil, fmt.Errorf("challenges can only be sent to friends")
	}

	startDate, err := engine.ParseDateKey(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date %q: %w", req.StartDate, err)
	}

	now := time.Now()
	c := &challenge.Challenge{
		SenderID:                 sender.ID,
		ReceiverID:               req.ReceiverID,
		HabitName:                req.HabitName,
		Description:              req.Description,
		Frequency:                req.Frequency,
		Duration:                 req.Duration,
		StartDate:                startDate,
		EndDate:                  startDate.AddDate(0, 0, req.Duration),
		Status:                   challenge.StatusPending,
		SenderDailyCompletions:   []string{},
		ReceiverDailyCompletions: []string{},
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	ref := s.fs.Collection(challengesCollection).NewDoc()
	if _, err := ref.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	c.ID = ref.ID

	s.notifyChallenge(c.ReceiverID, notification.TypeChallengeReceived, c, sender.Username)
	return c, nil
}

// GetChallenges returns the caller's challenges grouped for display. Each
// active challenge is reconciled against the current time on the way out and
// any resulting delta is persisted (reconcile-on-read).
func (s *ChallengeService) GetChallenges(ctx context.Context, clerkID string) (*challenge.ChallengeListResponse, error) {
	u, err := s.userService.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := s.fs.Collection(challengesCollection).WhereEntity(firestore.OrFilter{
		Filters: []firestore.EntityFilter{
			firestore.PropertyFilter{Path: "sender_id", Operator: "==", Value: u.ID},
			firestore.PropertyFilter{Path: "receiver_id", Operator: "==", Value: u.ID},
		},
	})

	iter := query.Documents(ctx)
	defer iter.Stop()

	resp := &challenge.ChallengeListResponse{
		Sent:      []challenge.Challenge{},
		Received:  []challenge.Challenge{},
		Active:    []challenge.Challenge{},
		Completed: []challenge.Challenge{},
		Failed:    []challenge.Challenge{},
	}

	now := time.Now()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate challenges: %w", err)
		}

		var c challenge.Challenge
		if err := doc.DataTo(&c); err != nil {
			return nil, fmt.Errorf("failed to decode challenge %s: %w", doc.Ref.ID, err)
		}
		c.ID = doc.Ref.ID

		if engine.Reconcile(&c, now) {
			s.persistReconcile(ctx, doc.Ref, &c)
		}

		switch {
		case c.Status == challenge.StatusPending && c.SenderID == u.ID:
			resp.Sent = append(resp.Sent, c)
		case c.Status == challenge.StatusPending && c.ReceiverID == u.ID:
			resp.Received = append(resp.Received, c)
		case c.Status == challenge.StatusActive:
			resp.Active = append(resp.Active, c)
		case c.Status == challenge.StatusCompleted:
			resp.Completed = append(resp.Completed, c)
		case c.Status == challenge.StatusFailed:
			resp.Failed = append(resp.Failed, c)
		}
		// declined and cancelled challenges are soft-deleted: kept in the
		// store, hidden from every tab
	}

	return resp, nil
}

func (s *ChallengeService) AcceptChallenge(ctx context.Context, clerkID, challengeID string) (*challenge.Challenge, error) {
	return s.transition(ctx, clerkID, challengeID, notification.TypeChallengeAccepted, engine.Accept)
}

func (s *ChallengeService) DeclineChallenge(ctx context.Context, clerkID, challengeID string) (*challenge.Challenge, error) {
	return s.transition(ctx, clerkID, challengeID, notification.TypeChallengeDeclined, engine.Decline)
}

func (s *ChallengeService) CancelChallenge(ctx context.Context, clerkID, challengeID string) (*challenge.Challenge, error) {
	return s.transition(ctx, clerkID, challengeID, notification.TypeChallengeCancelled, engine.Cancel)
}

// transition applies a role-guarded state change inside a transaction and
// notifies the other party on success. On any engine error the stored
// document is untouched.
func (s *ChallengeService) transition(
	ctx context.Context,
	clerkID, challengeID string,
	notifType notification.NotificationType,
	apply func(*challenge.Challenge, string) error,
) (*challenge.Challenge, error) {
	actor, err := s.userService.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	ref := s.fs.Collection(challengesCollection).Doc(challengeID)
	var c challenge.Challenge

	err = s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("challenge %s: %w", challengeID, engine.ErrNotFound)
			}
			return fmt.Errorf("failed to read challenge: %w", err)
		}
		if err := snap.DataTo(&c); err != nil {
			return fmt.Errorf("failed to decode challenge: %w", err)
		}
		c.ID = challengeID

		if err := apply(&c, actor.ID); err != nil {
			return err
		}

		c.UpdatedAt = time.Now()
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: c.Status},
			{Path: "updated_at", Value: c.UpdatedAt},
		})
	})
	if err != nil {
		return nil, err
	}

	other := c.SenderID
	if actor.ID == c.SenderID {
		other = c.ReceiverID
	}
	s.notifyChallenge(other, notifType, &c, actor.Username)
	return &c, nil
}

// CompleteDay records today's completion for the caller, with optional photo
// proof, and reconciles. Progress follows the caller-side formula:
// distinct completed days times 100/duration.
func (s *ChallengeService) CompleteDay(ctx context.Context, clerkID, challengeID, photoURL string) (*challenge.Challenge, error) {
	actor, err := s.userService.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	ref := s.fs.Collection(challengesCollection).Doc(challengeID)
	var c challenge.Challenge
	var wasActive bool

	now := time.Now()
	err = s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("challenge %s: %w", challengeID, engine.ErrNotFound)
			}
			return fmt.Errorf("failed to read challenge: %w", err)
		}
		if err := snap.DataTo(&c); err != nil {
			return fmt.Errorf("failed to decode challenge: %w", err)
		}
		c.ID = challengeID
		wasActive = c.Status == challenge.StatusActive

		dateKey := engine.DateKey(now)
		count := len(c.CompletionsFor(actor.ID))
		if !c.HasCompletion(actor.ID, dateKey) {
			count++
		}
		progress := float64(count) * (100.0 / float64(c.Duration))

		if err := engine.RecordCompletion(&c, actor.ID, now, progress); err != nil {
			return err
		}

		if photoURL != "" {
			if actor.ID == c.SenderID {
				if c.SenderDailyPhotos == nil {
					c.SenderDailyPhotos = map[string]string{}
				}
				c.SenderDailyPhotos[dateKey] = photoURL
			} else {
				if c.ReceiverDailyPhotos == nil {
					c.ReceiverDailyPhotos = map[string]string{}
				}
				c.ReceiverDailyPhotos[dateKey] = photoURL
			}
		}

		c.UpdatedAt = now
		return tx.Set(ref, &c)
	})
	if err != nil {
		return nil, err
	}

	if wasActive && c.Status.Terminal() {
		s.notifyOutcome(&c)
	}
	return &c, nil
}

// TallyWins recomputes the historical win table from every completed
// challenge. No incremental counters anywhere; the completed set is the
// single source of truth.
func (s *ChallengeService) TallyWins(ctx context.Context) (map[string]float64, error) {
	iter := s.fs.Collection(challengesCollection).
		Where("status", "==", string(challenge.StatusCompleted)).
		Documents(ctx)
	defer iter.Stop()

	completed := []challenge.Challenge{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate completed challenges: %w", err)
		}
		var c challenge.Challenge
		if err := doc.DataTo(&c); err != nil {
			return nil, fmt.Errorf("failed to decode challenge %s: %w", doc.Ref.ID, err)
		}
		c.ID = doc.Ref.ID
		completed = append(completed, c)
	}

	return engine.TallyWins(completed), nil
}

func (s *ChallengeService) WinsForUser(ctx context.Context, clerkID string) (float64, error) {
	u, err := s.userService.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return 0, err
	}
	wins, err := s.TallyWins(ctx)
	if err != nil {
		return 0, err
	}
	return wins[u.ID], nil
}

// SweepActive reconciles every active challenge. The lazy reconcile-on-read
// path covers challenges people actually look at; the sweep catches the ones
// nobody reopens. Returns how many documents changed.
func (s *ChallengeService) SweepActive(ctx context.Context) (int, error) {
	iter := s.fs.Collection(challengesCollection).
		Where("status", "==", string(challenge.StatusActive)).
		Documents(ctx)
	defer iter.Stop()

	now := time.Now()
	changed := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return changed, fmt.Errorf("failed to iterate active challenges: %w", err)
		}

		var c challenge.Challenge
		if err := doc.DataTo(&c); err != nil {
			log.Printf("Sweep: failed to decode challenge %s: %v", doc.Ref.ID, err)
			continue
		}
		c.ID = doc.Ref.ID

		if engine.Reconcile(&c, now) {
			s.persistReconcile(ctx, doc.Ref, &c)
			changed++
			if c.Status.Terminal() {
				s.notifyOutcome(&c)
			}
		}
	}
	return changed, nil
}

// persistReconcile writes only the fields Reconcile may touch, so it can
// never clobber a concurrent completion append.
func (s *ChallengeService) persistReconcile(ctx context.Context, ref *firestore.DocumentRef, c *challenge.Challenge) {
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "status", Value: c.Status},
		{Path: "last_checked_date", Value: c.LastCheckedDate},
		{Path: "updated_at", Value: time.Now()},
	})
	if err != nil {
		log.Printf("Failed to persist reconcile for challenge %s: %v", c.ID, err)
	}
}

// notifyOutcome tells both parties a challenge reached completed or failed.
func (s *ChallengeService) notifyOutcome(c *challenge.Challenge) {
	typ := notification.TypeChallengeCompleted
	if c.Status == challenge.StatusFailed {
		typ = notification.TypeChallengeFailed
	}
	s.notifyChallenge(c.SenderID, typ, c, "")
	s.notifyChallenge(c.ReceiverID, typ, c, "")
}

func (s *ChallengeService) notifyChallenge(userID string, typ notification.NotificationType, c *challenge.Challenge, actorName string) {
	if s.notificationService == nil {
		return
	}
	uid, err := s.userService.InternalIDToUUID(userID)
	if err != nil {
		log.Printf("Skipping notification, bad user id: %v", err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.notificationService.NotifyChallengeEvent(ctx, uid, typ, c, actorName); err != nil {
			log.Printf("Failed to send challenge notification: %v", err)
		}
	}()
}
