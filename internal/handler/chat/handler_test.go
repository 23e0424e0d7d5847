package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mindhaven-app/mindhaven/backend/internal/analysis/crisis"
	chatmodel "github.com/mindhaven-app/mindhaven/backend/internal/model/chat"
	emotionmodel "github.com/mindhaven-app/mindhaven/backend/internal/model/emotion"
	chatservice "github.com/mindhaven-app/mindhaven/backend/internal/service/chat"
	emotionservice "github.com/mindhaven-app/mindhaven/backend/internal/service/emotion"
	"github.com/mindhaven-app/mindhaven/backend/internal/store/memory"
)

type stubClassifier struct {
	result emotionservice.Result
}

func (s stubClassifier) Classify(_ context.Context, _ string) (emotionservice.Result, error) {
	return s.result, nil
}

type stubGenerator struct {
	reply string
}

func (s stubGenerator) GenerateReply(_ context.Context, _ []chatmodel.Turn, _ string, _ bool) (string, error) {
	return s.reply, nil
}

func setupRouter(reply string) (*chi.Mux, *memory.Store) {
	st := memory.New()
	svc := chatservice.NewService(
		st,
		stubClassifier{result: emotionservice.Result{Label: emotionmodel.Neutral, Confidence: 0.8}},
		crisis.NewDetector(0.85),
		stubGenerator{reply: reply},
	)
	handler := New(svc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, st
}

func postJSON(r http.Handler, path string, body map[string]string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestChatEndToEnd(t *testing.T) {
	r, st := setupRouter("That's good to hear.")

	resp := postJSON(r, "/chat", map[string]string{"user_id": "u1", "message": "I feel okay today"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result chatservice.Result
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Reply != "That's good to hear." {
		t.Fatalf("unexpected reply: %q", result.Reply)
	}
	if result.Emotion != "neutral" || result.Confidence != 0.8 || result.Crisis {
		t.Fatalf("unexpected result: %+v", result)
	}

	turns, _ := st.RecentTurns(context.Background(), "u1", 10)
	if len(turns) != 2 {
		t.Fatalf("expected 2 persisted turns, got %d", len(turns))
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	r, _ := setupRouter("hi")

	resp := postJSON(r, "/chat", map[string]string{"user_id": "u1", "message": "   "})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestChatRejectsOversizedMessage(t *testing.T) {
	r, _ := setupRouter("hi")

	resp := postJSON(r, "/chat", map[string]string{
		"user_id": "u1",
		"message": strings.Repeat("a", chatservice.MaxMessageLen+1),
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestChatRejectsMalformedBody(t *testing.T) {
	r, _ := setupRouter("hi")

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{not json"))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCheckInConflictOnSameDay(t *testing.T) {
	r, _ := setupRouter("hi")

	first := postJSON(r, "/checkin", map[string]string{"user_id": "u1", "emotion": "joy"})
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.Code, first.Body.String())
	}

	second := postJSON(r, "/checkin", map[string]string{"user_id": "u1", "emotion": "sadness"})
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", second.Code)
	}
}

func TestCheckInRejectsUnknownEmotion(t *testing.T) {
	r, _ := setupRouter("hi")

	resp := postJSON(r, "/checkin", map[string]string{"user_id": "u1", "emotion": "meh"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
