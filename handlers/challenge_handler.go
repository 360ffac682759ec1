package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"habitPactAPI/internal/engine"
	"habitPactAPI/internal/types/challenge"
	"habitPactAPI/middleware"
	"habitPactAPI/services"

	"github.com/gorilla/mux"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
	photoService     *services.PhotoService
}

func NewChallengeHandler(challengeService *services.ChallengeService, photoService *services.PhotoService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
		photoService:     photoService,
	}
}

func (h *ChallengeHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req challenge.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.challengeService.CreateChallenge(ctx, clerkID, &req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *ChallengeHandler) GetChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challenges, err := h.challengeService.GetChallenges(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, challenges)
}

func (h *ChallengeHandler) AcceptChallenge(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, h.challengeService.AcceptChallenge)
}

func (h *ChallengeHandler) DeclineChallenge(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, h.challengeService.DeclineChallenge)
}

// CancelChallenge withdraws a challenge the caller sent and drops any photo
// proof already uploaded for it.
func (h *ChallengeHandler) CancelChallenge(w http.ResponseWriter, r *http.Request) {
	challengeID := mux.Vars(r)["id"]
	h.runTransition(w, r, func(ctx context.Context, clerkID, id string) (*challenge.Challenge, error) {
		cancelled, err := h.challengeService.CancelChallenge(ctx, clerkID, id)
		if err != nil {
			return nil, err
		}
		if h.photoService != nil {
			go func() {
				cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), time.Minute)
				defer cleanupCancel()
				if err := h.photoService.DeleteChallengeProofs(cleanupCtx, challengeID); err != nil {
					log.Printf("Failed to clean up photos for challenge %s: %v", challengeID, err)
				}
			}()
		}
		return cancelled, nil
	})
}

func (h *ChallengeHandler) runTransition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, clerkID, challengeID string) (*challenge.Challenge, error),
) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID := mux.Vars(r)["id"]
	updated, err := apply(ctx, clerkID, challengeID)
	if err != nil {
		respondWithError(w, challengeErrorStatus(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// CompleteDay marks today done for the caller. Accepts either a bare POST or
// multipart form data with a "photo" part for proof.
func (h *ChallengeHandler) CompleteDay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID := mux.Vars(r)["id"]

	photoURL := ""
	if h.photoService != nil && strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid multipart body")
			return
		}
		file, header, err := r.FormFile("photo")
		if err == nil {
			defer file.Close()
			url, upErr := h.photoService.UploadChallengeProof(
				ctx, challengeID, clerkID, engine.DateKey(time.Now()),
				file, header.Header.Get("Content-Type"),
			)
			if upErr != nil {
				respondWithError(w, http.StatusInternalServerError, upErr.Error())
				return
			}
			photoURL = url
		}
	}

	updated, err := h.challengeService.CompleteDay(ctx, clerkID, challengeID, photoURL)
	if err != nil {
		respondWithError(w, challengeErrorStatus(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// GetWins returns the full win table recomputed from completed challenges.
func (h *ChallengeHandler) GetWins(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, ok := middleware.GetClerkID(ctx); !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	wins, err := h.challengeService.TallyWins(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, wins)
}

func challengeErrorStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrUnauthorizedActor):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
