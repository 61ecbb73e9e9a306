// Package chat exposes the conversation engine over HTTP.
package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	model "github.com/arunalab/aruna/backend/internal/model/conversation"
	conversation "github.com/arunalab/aruna/backend/internal/service/conversation"
)

// Handler serves the conversation endpoints.
type Handler struct {
	svc *conversation.Service
}

// New creates the chat handler.
func New(svc *conversation.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the conversation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/start", h.handleStart)
	r.Post("/chat/{sessionID}/message", h.handleMessage)
	r.Get("/chat/{sessionID}/status", h.handleStatus)
	r.Post("/chat/{sessionID}/end", h.handleEnd)
}

type startResponse struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Phase     string `json:"phase"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID   string `json:"userId"`
		Language string `json:"language"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.UserID == "" {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	sessionID, greeting, err := h.svc.StartSession(r.Context(), payload.UserID, payload.Language)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	respondJSON(w, http.StatusCreated, startResponse{
		SessionID: sessionID,
		Message:   greeting,
		Phase:     string(model.PhaseStory),
	})
}

type messageResponse struct {
	Response           string                    `json:"response"`
	Phase              string                    `json:"phase"`
	SessionComplete    bool                      `json:"sessionComplete"`
	Escalation         bool                      `json:"escalation,omitempty"`
	Emotion            *conversation.EmotionMeta `json:"emotion,omitempty"`
	QuestionsCompleted int                       `json:"questionsCompleted"`
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Message string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Message == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.svc.ProcessMessage(r.Context(), sessionID, payload.Message)
	if err != nil {
		if errors.Is(err, conversation.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "session not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{
		Response:           reply.Response,
		Phase:              string(reply.Phase),
		SessionComplete:    reply.SessionComplete,
		Escalation:         reply.Escalation,
		Emotion:            reply.Emotion,
		QuestionsCompleted: reply.QuestionsCompleted,
	})
}

type statusResponse struct {
	Phase              string `json:"phase"`
	Zone               string `json:"zone"`
	QuestionsCompleted int    `json:"questionsCompleted"`
	IsComplete         bool   `json:"isComplete"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	status, err := h.svc.GetStatus(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, conversation.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "session not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to fetch status")
		return
	}

	respondJSON(w, http.StatusOK, statusResponse{
		Phase:              string(status.Phase),
		Zone:               string(status.Zone),
		QuestionsCompleted: status.QuestionsCompleted,
		IsComplete:         status.IsComplete,
	})
}

func (h *Handler) handleEnd(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.svc.EndSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, conversation.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "session not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to end session")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
