package handlers

import (
	"encoding/json"
	"net/http"

	"deckdrill/internal/apperr"
	"deckdrill/internal/models"
	"deckdrill/internal/repository"
	"deckdrill/internal/service"

	"go.uber.org/zap"
)

// StudyHandler exposes the session engine as a JSON API
type StudyHandler struct {
	study      *service.StudyService
	flashcards *repository.FlashcardRepository
	log        *zap.Logger
}

// NewStudyHandler creates the study handler
func NewStudyHandler(study *service.StudyService, flashcards *repository.FlashcardRepository, log *zap.Logger) *StudyHandler {
	return &StudyHandler{study: study, flashcards: flashcards, log: log}
}

type startSessionRequest struct {
	DeckID     string `json:"deckId"`
	Mode       string `json:"mode"`
	Seed       *int64 `json:"seed,omitempty"`
	ForceReset bool   `json:"forceReset,omitempty"`
}

type submitEventRequest struct {
	ClientEventID  string  `json:"clientEventId"`
	ClientSequence int64   `json:"clientSequence"`
	EventType      string  `json:"eventType"`
	TargetTileID   *string `json:"targetTileId,omitempty"`
	TargetIndex    *int    `json:"targetIndex,omitempty"`
}

// StartSession handles POST /api/sessions
func (h *StudyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.log, apperr.Validationf("invalid request body"))
		return
	}
	if req.DeckID == "" {
		respondError(w, h.log, apperr.Validationf("deck id is required"))
		return
	}
	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		respondError(w, h.log, apperr.Validationf("%v", err))
		return
	}

	view, err := h.study.StartSession(ownerID, req.DeckID, mode, req.Seed, req.ForceReset)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// GetSession handles GET /api/sessions/{id}
func (h *StudyHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	view, err := h.study.GetSession(ownerID, r.PathValue("id"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// SubmitEvent handles POST /api/sessions/{id}/events
func (h *StudyHandler) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	var req submitEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.log, apperr.Validationf("invalid request body"))
		return
	}
	eventType, err := models.ParseEventType(req.EventType)
	if err != nil {
		respondError(w, h.log, apperr.Validationf("%v", err))
		return
	}

	cmd := &models.EventCommand{
		ClientEventID:  req.ClientEventID,
		ClientSequence: req.ClientSequence,
		Type:           eventType,
		TargetIndex:    req.TargetIndex,
		TargetTileID:   req.TargetTileID,
	}

	view, err := h.study.SubmitEvent(ownerID, r.PathValue("id"), cmd)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// CompleteSession handles POST /api/sessions/{id}/complete
func (h *StudyHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	view, err := h.study.CompleteSession(ownerID, r.PathValue("id"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// ListDeckFlashcards handles GET /api/decks/{id}/flashcards
func (h *StudyHandler) ListDeckFlashcards(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("id")

	exists, err := h.flashcards.DeckExists(deckID)
	if err != nil {
		respondError(w, h.log, apperr.Internal("failed to check deck", err))
		return
	}
	if !exists {
		respondError(w, h.log, apperr.NotFoundf("deck %s not found", deckID))
		return
	}

	cards, err := h.flashcards.GetActiveFlashcardsByDeck(deckID)
	if err != nil {
		respondError(w, h.log, apperr.Internal("failed to load flashcards", err))
		return
	}
	if cards == nil {
		cards = []models.Flashcard{}
	}
	respondJSON(w, http.StatusOK, cards)
}

// Health handles GET /healthz
func (h *StudyHandler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
