package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"

	"github.com/mindhaven-app/mindhaven/backend/internal/analysis/crisis"
	"github.com/mindhaven-app/mindhaven/backend/internal/config"
	"github.com/mindhaven-app/mindhaven/backend/internal/handler"
	aiservice "github.com/mindhaven-app/mindhaven/backend/internal/service/ai"
	chatservice "github.com/mindhaven-app/mindhaven/backend/internal/service/chat"
	emotionservice "github.com/mindhaven-app/mindhaven/backend/internal/service/emotion"
	moodservice "github.com/mindhaven-app/mindhaven/backend/internal/service/mood"
	"github.com/mindhaven-app/mindhaven/backend/internal/store"
	"github.com/mindhaven-app/mindhaven/backend/internal/store/memory"
	"github.com/mindhaven-app/mindhaven/backend/internal/store/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Persistence: Postgres when a DSN is configured, in-memory otherwise.
	var st store.Store
	if cfg.Store.DSN != "" {
		pgStore, err := postgres.Open(cfg.Store.DSN)
		if err != nil {
			log.Fatalf("failed to open postgres store: %v", err)
		}
		st = pgStore
		log.Println("postgres store initialized")
	} else {
		st = memory.New()
		log.Println("DATABASE_URL not set, using in-memory store (data will not survive restarts)")
	}

	// Chat model shared by the generator and the classifier.
	var aiSvc *aiservice.Service
	var classifier *emotionservice.Service
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize chat model: %v", err)
			log.Println("continuing without AI generation, all replies will use the fallback text")
		} else {
			aiSvc, err = aiservice.NewService(ctx, chatModel, aiservice.Config{
				Timeout:   cfg.AI.RequestTimeout,
				Streaming: cfg.AI.StreamResponse,
			})
			if err != nil {
				log.Fatalf("failed to initialize AI service: %v", err)
			}
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("model credentials not configured, skipping AI generation")
	}

	var chatModelForClassifier model.ChatModel
	if aiSvc != nil {
		chatModelForClassifier = aiSvc.GetChatModel()
	}
	classifier, err = emotionservice.NewService(ctx, chatModelForClassifier, emotionservice.Config{
		Enabled: cfg.AI.ClassifierEnabled,
		Timeout: cfg.AI.ClassifierTimeout,
	})
	if err != nil {
		log.Fatalf("failed to initialize emotion classifier: %v", err)
	}
	if classifier.Enabled() {
		log.Println("emotion classifier enabled (model-backed)")
	} else {
		log.Println("emotion classifier running on heuristics only")
	}

	detector := crisis.NewDetector(cfg.Crisis.Threshold)

	var generator chatservice.Generator
	if aiSvc != nil {
		generator = aiSvc
	}
	chatSvc := chatservice.NewService(st, classifier, detector, generator)
	moodSvc := moodservice.NewService(st)

	router := handler.NewRouter(cfg.Server, handler.Deps{
		Store:      st,
		ChatSvc:    chatSvc,
		MoodSvc:    moodSvc,
		AISvc:      aiSvc,
		Classifier: classifier,
		Detector:   detector,
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("MindHaven backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
