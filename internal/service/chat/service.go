// Package chat orchestrates one chat turn: validate, classify, check for
// crisis, generate a reply, persist, respond. Degraded upstreams never fail
// the turn; only invalid input does.
package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mindhaven-app/mindhaven/backend/internal/analysis/crisis"
	chatmodel "github.com/mindhaven-app/mindhaven/backend/internal/model/chat"
	emotionmodel "github.com/mindhaven-app/mindhaven/backend/internal/model/emotion"
	"github.com/mindhaven-app/mindhaven/backend/internal/model/mood"
	emotionservice "github.com/mindhaven-app/mindhaven/backend/internal/service/emotion"
	"github.com/mindhaven-app/mindhaven/backend/internal/store"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrAlreadyCheckedIn = errors.New("already checked in today")
)

// MaxMessageLen is the longest accepted message, in characters.
const MaxMessageLen = 2000

// FallbackReply substitutes for the model's answer when generation is down.
const FallbackReply = "I'm having a little trouble gathering my thoughts right now, but I'm here for you. " +
	"Please try again in a moment."

// persistTimeout bounds the best-effort write phase after the reply exists.
const persistTimeout = 5 * time.Second

// Classifier yields an emotion label and confidence for a message.
type Classifier interface {
	Classify(ctx context.Context, text string) (emotionservice.Result, error)
}

// Generator yields the assistant reply for a message with history context.
type Generator interface {
	GenerateReply(ctx context.Context, history []chatmodel.Turn, userMessage string, crisisDetected bool) (string, error)
}

// Result is the orchestrator's answer for one turn.
type Result struct {
	Reply      string  `json:"reply"`
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	Crisis     bool    `json:"crisis"`
}

// Service sequences the chat pipeline over its collaborators.
type Service struct {
	store      store.Store
	classifier Classifier
	detector   *crisis.Detector
	generator  Generator
	now        func() time.Time
}

// NewService wires the orchestrator. generator may be nil when no model is
// configured; every turn then receives the fallback reply.
func NewService(st store.Store, classifier Classifier, detector *crisis.Detector, generator Generator) *Service {
	return &Service{
		store:      st,
		classifier: classifier,
		detector:   detector,
		generator:  generator,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ProcessTurn runs the full pipeline for one user message.
func (s *Service) ProcessTurn(ctx context.Context, userID, message string) (Result, error) {
	message = strings.TrimSpace(message)
	if err := ValidateMessage(userID, message); err != nil {
		return Result{}, err
	}

	// Classify. A degraded classifier downgrades to neutral/0 instead of
	// aborting the turn.
	label, confidence := s.classify(ctx, message)

	// Crisis evaluation is pure and always runs on the classified result.
	crisisDetected := s.detector.Detect(message, label, confidence)

	// History is context for the generator only; losing it degrades reply
	// quality, not availability.
	history, err := s.store.RecentTurns(ctx, userID, 10)
	if err != nil {
		log.Printf("[chat] failed to load history for user=%s: %v", userID, err)
		history = nil
	}

	reply := s.generate(ctx, history, message, crisisDetected)
	if crisisDetected {
		reply = reply + "\n\n" + crisis.SupportMessage
	}

	s.persistTurn(ctx, userID, message, reply, label, confidence)

	return Result{
		Reply:      reply,
		Emotion:    string(label),
		Confidence: confidence,
		Crisis:     crisisDetected,
	}, nil
}

// ValidateMessage applies the input rules shared by the REST and streaming
// entry points. It runs before any external call.
func ValidateMessage(userID, message string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(message) == "" {
		return ErrInvalidInput
	}
	if utf8.RuneCountInString(message) > MaxMessageLen {
		return ErrInvalidInput
	}
	return nil
}

func (s *Service) classify(ctx context.Context, message string) (emotionmodel.Label, float64) {
	if s.classifier == nil {
		return emotionmodel.Neutral, 0
	}

	result, err := s.classifier.Classify(ctx, message)
	if err != nil {
		log.Printf("[chat] classification unavailable, defaulting to neutral: %v", err)
		return emotionmodel.Neutral, 0
	}
	return result.Label, emotionmodel.ClampConfidence(result.Confidence)
}

func (s *Service) generate(ctx context.Context, history []chatmodel.Turn, message string, crisisDetected bool) string {
	if s.generator == nil {
		return FallbackReply
	}

	reply, err := s.generator.GenerateReply(ctx, history, message, crisisDetected)
	if err != nil {
		log.Printf("[chat] generation unavailable, using fallback reply: %v", err)
		return FallbackReply
	}
	return reply
}

// persistTurn writes both turns and the mood sample. Failures are logged and
// do not block the response. The detached context lets writes finish even if
// the client has already disconnected.
func (s *Service) persistTurn(ctx context.Context, userID, message, reply string, label emotionmodel.Label, confidence float64) {
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if _, err := s.store.AppendChatTurn(persistCtx, chatmodel.Turn{
		UserID:  userID,
		Role:    chatmodel.RoleUser,
		Message: message,
		Emotion: string(label),
	}); err != nil {
		log.Printf("[chat] failed to persist user turn for user=%s: %v", userID, err)
	}

	if _, err := s.store.AppendChatTurn(persistCtx, chatmodel.Turn{
		UserID:  userID,
		Role:    chatmodel.RoleAssistant,
		Message: reply,
	}); err != nil {
		log.Printf("[chat] failed to persist assistant turn for user=%s: %v", userID, err)
	}

	if _, err := s.store.AppendMoodSample(persistCtx, mood.Sample{
		UserID:     userID,
		Emotion:    string(label),
		Confidence: confidence,
	}); err != nil {
		log.Printf("[chat] failed to persist mood sample for user=%s: %v", userID, err)
	}
}

// CheckIn records a self-reported mood, at most once per UTC calendar day.
// The write completes before the call returns so the daily guard holds
// across devices.
func (s *Service) CheckIn(ctx context.Context, userID, rawEmotion string) (mood.Sample, error) {
	if strings.TrimSpace(userID) == "" {
		return mood.Sample{}, ErrInvalidInput
	}

	label, ok := emotionmodel.Parse(rawEmotion)
	if !ok {
		return mood.Sample{}, ErrInvalidInput
	}

	now := s.now()

	// The guard is claimed before the sample write so concurrent same-day
	// calls cannot both persist a sample.
	ok, err := s.store.TryCheckIn(ctx, userID, now)
	if err != nil {
		return mood.Sample{}, err
	}
	if !ok {
		return mood.Sample{}, ErrAlreadyCheckedIn
	}

	sample, err := s.store.AppendMoodSample(ctx, mood.Sample{
		UserID:     userID,
		Emotion:    string(label),
		Confidence: 1.0, // self-reported
		CreatedAt:  now,
	})
	if err != nil {
		return mood.Sample{}, err
	}
	return sample, nil
}
