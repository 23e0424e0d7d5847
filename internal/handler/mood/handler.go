package mood

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	moodservice "github.com/mindhaven-app/mindhaven/backend/internal/service/mood"
	"github.com/mindhaven-app/mindhaven/backend/internal/store"
	"github.com/mindhaven-app/mindhaven/backend/pkg/utils"
)

// Handler serves the mood dashboard data.
type Handler struct {
	moodSvc *moodservice.Service
}

// New creates the mood handler.
func New(moodSvc *moodservice.Service) *Handler {
	return &Handler{moodSvc: moodSvc}
}

// RegisterRoutes mounts the mood routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/mood/{userID}", h.handleReport)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "days must be a number")
			return
		}
		days = parsed
	}

	report, err := h.moodSvc.Report(r.Context(), userID, days)
	if err != nil {
		if errors.Is(err, store.ErrUserRequired) {
			utils.RespondError(w, http.StatusBadRequest, "user id is required")
			return
		}
		log.Printf("[mood] failed to build report: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to fetch mood data")
		return
	}

	utils.RespondJSON(w, http.StatusOK, report)
}
