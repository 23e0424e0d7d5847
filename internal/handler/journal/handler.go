package journal

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	journalmodel "github.com/mindhaven-app/mindhaven/backend/internal/model/journal"
	"github.com/mindhaven-app/mindhaven/backend/internal/store"
	"github.com/mindhaven-app/mindhaven/backend/pkg/utils"
)

const (
	maxContentLen = 10000
	defaultLimit  = 20
	maxLimit      = 100
)

// Handler exposes journal CRUD scoped to the owning user.
type Handler struct {
	store store.Store
}

// New creates the journal handler.
func New(st store.Store) *Handler {
	return &Handler{store: st}
}

// RegisterRoutes mounts the journal routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/journal", h.handleCreate)
	r.Get("/journal/{userID}", h.handleList)
	r.Delete("/journal/{userID}/{entryID}", h.handleDelete)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID  string `json:"user_id"`
		Content string `json:"content"`
		MoodTag string `json:"mood_tag"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := strings.TrimSpace(payload.Content)
	if payload.UserID == "" || content == "" {
		utils.RespondError(w, http.StatusBadRequest, "user_id and content are required")
		return
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		utils.RespondError(w, http.StatusBadRequest, "content is too long")
		return
	}

	entry, err := h.store.AppendJournalEntry(r.Context(), journalmodel.Entry{
		UserID:  payload.UserID,
		Content: content,
		MoodTag: strings.TrimSpace(payload.MoodTag),
	})
	if err != nil {
		log.Printf("[journal] failed to save entry: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to save journal entry")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			utils.RespondError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = parsed
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	entries, err := h.store.ListJournalEntries(r.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, store.ErrUserRequired) {
			utils.RespondError(w, http.StatusBadRequest, "user id is required")
			return
		}
		log.Printf("[journal] failed to list entries: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to list journal entries")
		return
	}
	if entries == nil {
		entries = []journalmodel.Entry{}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	entryID := chi.URLParam(r, "entryID")

	err := h.store.DeleteJournalEntry(r.Context(), userID, entryID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, "journal entry not found")
		return
	case errors.Is(err, store.ErrUserRequired):
		utils.RespondError(w, http.StatusBadRequest, "user id is required")
		return
	case err != nil:
		log.Printf("[journal] failed to delete entry: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete journal entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
