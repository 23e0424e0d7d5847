package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatservice "github.com/mindhaven-app/mindhaven/backend/internal/service/chat"
	"github.com/mindhaven-app/mindhaven/backend/pkg/utils"
)

// Handler exposes the chat pipeline over HTTP.
type Handler struct {
	chatSvc *chatservice.Service
}

// New creates the chat handler.
func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/checkin", h.handleCheckIn)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID  string `json:"user_id"`
		Message string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.chatSvc.ProcessTurn(r.Context(), payload.UserID, payload.Message)
	if err != nil {
		if errors.Is(err, chatservice.ErrInvalidInput) {
			utils.RespondError(w, http.StatusBadRequest, "message must be non-empty and at most 2000 characters")
			return
		}
		log.Printf("[chat] unexpected pipeline error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "something went wrong, please try again")
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID  string `json:"user_id"`
		Emotion string `json:"emotion"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sample, err := h.chatSvc.CheckIn(r.Context(), payload.UserID, payload.Emotion)
	switch {
	case errors.Is(err, chatservice.ErrInvalidInput):
		utils.RespondError(w, http.StatusBadRequest, "user_id and a valid emotion are required")
		return
	case errors.Is(err, chatservice.ErrAlreadyCheckedIn):
		utils.RespondError(w, http.StatusConflict, "already checked in today")
		return
	case err != nil:
		log.Printf("[chat] check-in failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to save check-in")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, sample)
}
