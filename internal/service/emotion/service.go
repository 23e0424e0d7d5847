package emotion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	analysis "github.com/mindhaven-app/mindhaven/backend/internal/analysis/emotion"
	emotionmodel "github.com/mindhaven-app/mindhaven/backend/internal/model/emotion"
)

// ErrUnavailable signals that the upstream classifier failed or timed out.
// Callers must fall back (neutral, 0) rather than fail the chat turn.
var ErrUnavailable = errors.New("emotion classification unavailable")

// Config controls the classifier service.
type Config struct {
	Enabled bool
	Timeout time.Duration
}

// Result is one classification: a label from the closed seven-value set and
// a confidence in [0,1].
type Result struct {
	Label      emotionmodel.Label
	Confidence float64
}

// Service classifies message emotion with the chat model, falling back to
// the heuristic keyword scorer when no model is configured.
type Service struct {
	enabled    bool
	classifier compose.Runnable[map[string]any, *schema.Message]
	timeout    time.Duration
}

// NewService creates the classifier. chatModel may be nil, in which case the
// service runs on heuristics alone.
func NewService(ctx context.Context, chatModel model.ChatModel, cfg Config) (*Service, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	svc := &Service{
		enabled: cfg.Enabled && chatModel != nil,
		timeout: timeout,
	}

	if !svc.enabled {
		return svc, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(classifierSystemPrompt),
		schema.UserMessage(classifierUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile classifier chain: %w", err)
	}

	svc.classifier = runnable
	return svc, nil
}

// Enabled reports whether the model-backed classifier path is active.
func (s *Service) Enabled() bool {
	return s != nil && s.enabled && s.classifier != nil
}

// Classify returns the dominant emotion for non-empty text. When the model
// path is down it returns ErrUnavailable; when the model is simply not
// configured it answers from the heuristic scorer instead.
func (s *Service) Classify(ctx context.Context, text string) (Result, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{Label: emotionmodel.Neutral}, nil
	}

	if !s.Enabled() {
		return heuristicResult(trimmed), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg, err := s.classifier.Invoke(ctx, map[string]any{"text": trimmed})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return Result{}, fmt.Errorf("%w: empty model reply", ErrUnavailable)
	}

	payload, err := parseClassifierOutput(msg.Content)
	if err != nil {
		log.Printf("[emotion] unparseable classifier reply, using heuristics: %v", err)
		return heuristicResult(trimmed), nil
	}

	label, ok := emotionmodel.Parse(payload.Emotion)
	if !ok {
		log.Printf("[emotion] classifier returned unknown label %q, using heuristics", payload.Emotion)
		return heuristicResult(trimmed), nil
	}

	confidence := emotionmodel.ClampConfidence(payload.Confidence)
	if confidence == 0 {
		confidence = 0.5
	}

	return Result{Label: label, Confidence: confidence}, nil
}

func heuristicResult(text string) Result {
	decision := analysis.Analyze(text)
	return Result{Label: decision.Emotion, Confidence: decision.Confidence}
}

// parseClassifierOutput extracts the JSON object from the model reply, which
// may be wrapped in prose or code fences.
func parseClassifierOutput(content string) (*classifierPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &classifierPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	return payload, nil
}

type classifierPayload struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
}

const classifierSystemPrompt = "You are an emotion classifier for a mental-health support chat. " +
	"Read the user's message and classify its dominant emotion. " +
	"Reply with a single JSON object and nothing else, with fields: " +
	"emotion (exactly one of joy, sadness, anger, fear, surprise, disgust, neutral) and " +
	"confidence (a number between 0 and 1)."

const classifierUserPrompt = "Message:\n{text}\n\nReply with the JSON object only."
