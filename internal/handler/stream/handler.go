// Package stream serves chat replies over Server-Sent Events. It follows the
// same pipeline as the REST endpoint but emits the reply incrementally.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/mindhaven-app/mindhaven/backend/internal/analysis/crisis"
	chatmodel "github.com/mindhaven-app/mindhaven/backend/internal/model/chat"
	emotionmodel "github.com/mindhaven-app/mindhaven/backend/internal/model/emotion"
	moodmodel "github.com/mindhaven-app/mindhaven/backend/internal/model/mood"
	aiservice "github.com/mindhaven-app/mindhaven/backend/internal/service/ai"
	chatservice "github.com/mindhaven-app/mindhaven/backend/internal/service/chat"
	emotionservice "github.com/mindhaven-app/mindhaven/backend/internal/service/emotion"
	"github.com/mindhaven-app/mindhaven/backend/internal/store"
	"github.com/mindhaven-app/mindhaven/backend/pkg/utils"
)

// Event is one streamed frame.
type Event struct {
	Event      string  `json:"event"`
	Content    string  `json:"content,omitempty"`
	Emotion    string  `json:"emotion,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Crisis     bool    `json:"crisis,omitempty"`
	Finished   bool    `json:"finished,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Handler streams the chat pipeline.
type Handler struct {
	aiSvc      *aiservice.Service
	classifier *emotionservice.Service
	detector   *crisis.Detector
	store      store.Store
}

// New creates the stream handler.
func New(aiSvc *aiservice.Service, classifier *emotionservice.Service, detector *crisis.Detector, st store.Store) *Handler {
	return &Handler{aiSvc: aiSvc, classifier: classifier, detector: detector, store: st}
}

// HandleStreamRequest runs one streamed chat turn for userID/message.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, userID, message string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	// Same normalization as the REST path, so both store identical text.
	message = strings.TrimSpace(message)

	utils.SetupSSEHeaders(w)

	label, confidence := emotionmodel.Neutral, 0.0
	if h.classifier != nil {
		if result, err := h.classifier.Classify(ctx, message); err != nil {
			log.Printf("[stream] classification unavailable, defaulting to neutral: %v", err)
		} else {
			label, confidence = result.Label, emotionmodel.ClampConfidence(result.Confidence)
		}
	}

	crisisDetected := h.detector.Detect(message, label, confidence)

	history, err := h.store.RecentTurns(ctx, userID, 10)
	if err != nil {
		log.Printf("[stream] failed to load history for user=%s: %v", userID, err)
		history = nil
	}

	utils.SendSSEChunk(w, flusher, Event{Event: "start"})

	reply := h.streamReply(ctx, w, flusher, history, message, crisisDetected)
	if crisisDetected {
		reply = reply + "\n\n" + crisis.SupportMessage
		utils.SendSSEChunk(w, flusher, Event{Event: "delta", Content: "\n\n" + crisis.SupportMessage})
	}

	utils.SendSSEChunk(w, flusher, Event{Event: "message", Content: reply})
	utils.SendSSEChunk(w, flusher, Event{
		Event:      "emotion",
		Emotion:    string(label),
		Confidence: confidence,
		Crisis:     crisisDetected,
	})

	h.persist(ctx, userID, message, reply, label, confidence)

	utils.SendSSEChunk(w, flusher, Event{Event: "end", Finished: true})
	return nil
}

// streamReply forwards model chunks as delta events and returns the full
// reply, substituting the fallback text when generation is down.
func (h *Handler) streamReply(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, history []chatmodel.Turn, message string, crisisDetected bool) string {
	if h.aiSvc == nil {
		utils.SendSSEChunk(w, flusher, Event{Event: "delta", Content: chatservice.FallbackReply})
		return chatservice.FallbackReply
	}

	stream, err := h.aiSvc.StreamReply(ctx, history, message, crisisDetected)
	if err != nil {
		log.Printf("[stream] generation unavailable, using fallback reply: %v", err)
		utils.SendSSEChunk(w, flusher, Event{Event: "delta", Content: chatservice.FallbackReply})
		return chatservice.FallbackReply
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			log.Printf("[stream] stream interrupted, using fallback reply: %v", recvErr)
			utils.SendSSEChunk(w, flusher, Event{Event: "delta", Content: chatservice.FallbackReply})
			return chatservice.FallbackReply
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" {
			utils.SendSSEChunk(w, flusher, Event{Event: "delta", Content: chunk.Content})
		}
	}

	full, err := schema.ConcatMessages(chunks)
	if err != nil || full.Content == "" {
		log.Printf("[stream] failed to assemble reply, using fallback: %v", err)
		return chatservice.FallbackReply
	}
	return full.Content
}

func (h *Handler) persist(ctx context.Context, userID, message, reply string, label emotionmodel.Label, confidence float64) {
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if _, err := h.store.AppendChatTurn(persistCtx, chatmodel.Turn{
		UserID:  userID,
		Role:    chatmodel.RoleUser,
		Message: message,
		Emotion: string(label),
	}); err != nil {
		log.Printf("[stream] failed to persist user turn: %v", err)
	}
	if _, err := h.store.AppendChatTurn(persistCtx, chatmodel.Turn{
		UserID:  userID,
		Role:    chatmodel.RoleAssistant,
		Message: reply,
	}); err != nil {
		log.Printf("[stream] failed to persist assistant turn: %v", err)
	}
	if _, err := h.store.AppendMoodSample(persistCtx, moodmodel.Sample{
		UserID:     userID,
		Emotion:    string(label),
		Confidence: confidence,
	}); err != nil {
		log.Printf("[stream] failed to persist mood sample: %v", err)
	}
}
