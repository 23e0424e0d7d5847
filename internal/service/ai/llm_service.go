package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/mindhaven-app/mindhaven/backend/internal/model/chat"
)

// ErrUnavailable signals that reply generation failed or timed out. The
// orchestrator substitutes the fallback reply instead of surfacing this to
// the user.
var ErrUnavailable = errors.New("reply generation unavailable")

// historyLimit caps how many prior turns are sent as conversation memory.
const historyLimit = 10

// Config controls the generator service.
type Config struct {
	Timeout   time.Duration
	Streaming bool
}

// Service generates supportive chat replies through the configured model.
type Service struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	cfg     Config
	modelIf model.ChatModel
}

// NewService compiles the generation chain over the supplied chat model.
func NewService(ctx context.Context, chatModel model.ChatModel, cfg Config) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(companionSystemPrompt),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile generation chain: %w", err)
	}

	return &Service{chain: runnable, cfg: cfg, modelIf: chatModel}, nil
}

// StreamingEnabled indicates whether SSE streaming is configured.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.Streaming
}

// GetChatModel returns the underlying chat model so other services can share
// the same credentials and connection.
func (s *Service) GetChatModel() model.ChatModel {
	return s.modelIf
}

// GenerateReply produces one reply for the user's message given recent
// history. When the detector flagged a crisis, the model is nudged to
// respond with extra care.
func (s *Service) GenerateReply(ctx context.Context, history []chat.Turn, userMessage string, crisisDetected bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	response, err := s.chain.Invoke(ctx, buildChainInput(history, userMessage, crisisDetected))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if response == nil || response.Content == "" {
		return "", fmt.Errorf("%w: empty model reply", ErrUnavailable)
	}

	log.Printf("[ai] generated reply, length=%d, crisis=%v", len(response.Content), crisisDetected)
	return response.Content, nil
}

// StreamReply streams reply chunks for the SSE endpoint.
func (s *Service) StreamReply(ctx context.Context, history []chat.Turn, userMessage string, crisisDetected bool) (*schema.StreamReader[*schema.Message], error) {
	if !s.StreamingEnabled() {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	stream, err := s.chain.Stream(ctx, buildChainInput(history, userMessage, crisisDetected))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return stream, nil
}

func buildChainInput(history []chat.Turn, userMessage string, crisisDetected bool) map[string]any {
	query := userMessage
	if crisisDetected {
		query = userMessage + "\n\n[SYSTEM NOTE: The user may be in distress. Respond with extra care, " +
			"validate their feelings, and gently encourage professional support. " +
			"Do NOT be preachy. Be warm and human.]"
	}

	return map[string]any{
		"history": buildHistoryMessages(history),
		"query":   query,
	}
}

func buildHistoryMessages(turns []chat.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}

	startIdx := 0
	if len(turns) > historyLimit {
		startIdx = len(turns) - historyLimit
	}

	history := make([]*schema.Message, 0, len(turns)-startIdx)
	for _, turn := range turns[startIdx:] {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Message))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Message, nil))
		}
	}
	return history
}

const companionSystemPrompt = `You are a warm and supportive companion in a mental-health chat app.

PERSONALITY:
- You are a caring friend, not a robotic assistant or a therapist.
- Talk like a human: casual, warm, and genuine.
- Keep messages short (1-3 sentences) unless the user shares something deeper.
- Avoid canned phrases like "I understand how you feel". Just talk naturally.

SAFETY:
- If the user talks about self-harm or suicide, gently encourage professional help.
- Do not diagnose or give medical advice.
- Do not be toxically positive. It's okay for things to be hard sometimes.

GOAL:
- Help the user feel heard and less alone.
- Validate their feelings naturally, without rushing to solutions.`
