package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mindhaven-app/mindhaven/backend/internal/analysis/crisis"
	"github.com/mindhaven-app/mindhaven/backend/internal/config"
	chathandler "github.com/mindhaven-app/mindhaven/backend/internal/handler/chat"
	journalhandler "github.com/mindhaven-app/mindhaven/backend/internal/handler/journal"
	moodhandler "github.com/mindhaven-app/mindhaven/backend/internal/handler/mood"
	"github.com/mindhaven-app/mindhaven/backend/internal/handler/stream"
	middlewarepkg "github.com/mindhaven-app/mindhaven/backend/internal/middleware"
	aiservice "github.com/mindhaven-app/mindhaven/backend/internal/service/ai"
	chatservice "github.com/mindhaven-app/mindhaven/backend/internal/service/chat"
	emotionservice "github.com/mindhaven-app/mindhaven/backend/internal/service/emotion"
	moodservice "github.com/mindhaven-app/mindhaven/backend/internal/service/mood"
	"github.com/mindhaven-app/mindhaven/backend/internal/store"
	"github.com/mindhaven-app/mindhaven/backend/pkg/utils"
)

// Deps carries the wired services the router needs.
type Deps struct {
	Store      store.Store
	ChatSvc    *chatservice.Service
	MoodSvc    *moodservice.Service
	AISvc      *aiservice.Service
	Classifier *emotionservice.Service
	Detector   *crisis.Detector
}

// NewRouter wires HTTP routes to core services.
func NewRouter(cfg config.ServerConfig, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarepkg.CORS(cfg.AllowedOrigins))
	r.Use(middlewarepkg.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	chatHandler := chathandler.New(deps.ChatSvc)
	moodHandler := moodhandler.New(deps.MoodSvc)
	journalHandler := journalhandler.New(deps.Store)

	var streamHandler *stream.Handler
	if deps.AISvc != nil {
		streamHandler = stream.New(deps.AISvc, deps.Classifier, deps.Detector, deps.Store)
	}

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		moodHandler.RegisterRoutes(api)
		journalHandler.RegisterRoutes(api)

		api.Get("/chat/stream", func(w http.ResponseWriter, r *http.Request) {
			userID := r.URL.Query().Get("user_id")
			message := r.URL.Query().Get("message")

			if streamHandler == nil || !deps.AISvc.StreamingEnabled() {
				utils.RespondError(w, http.StatusServiceUnavailable, "streaming unavailable")
				return
			}
			if err := chatservice.ValidateMessage(userID, message); err != nil {
				utils.RespondError(w, http.StatusBadRequest, "user_id and message are required, max 2000 characters")
				return
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, userID, message); err != nil {
				log.Printf("[stream] error handling request: %v", err)
				utils.RespondError(w, http.StatusInternalServerError, "streaming failed")
			}
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "mindhaven-api",
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"message": "MindHaven API",
			"health":  "/health",
		})
	})

	return r
}
