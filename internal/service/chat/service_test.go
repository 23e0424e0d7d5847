package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mindhaven-app/mindhaven/backend/internal/analysis/crisis"
	chatmodel "github.com/mindhaven-app/mindhaven/backend/internal/model/chat"
	emotionmodel "github.com/mindhaven-app/mindhaven/backend/internal/model/emotion"
	"github.com/mindhaven-app/mindhaven/backend/internal/model/journal"
	"github.com/mindhaven-app/mindhaven/backend/internal/model/mood"
	emotionservice "github.com/mindhaven-app/mindhaven/backend/internal/service/emotion"
	"github.com/mindhaven-app/mindhaven/backend/internal/store"
	"github.com/mindhaven-app/mindhaven/backend/internal/store/memory"
)

type fakeClassifier struct {
	result emotionservice.Result
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(_ context.Context, _ string) (emotionservice.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeGenerator struct {
	reply string
	err   error
	calls int
}

func (f *fakeGenerator) GenerateReply(_ context.Context, _ []chatmodel.Turn, _ string, _ bool) (string, error) {
	f.calls++
	return f.reply, f.err
}

func newTestService(st store.Store, classifier *fakeClassifier, generator *fakeGenerator) *Service {
	return NewService(st, classifier, crisis.NewDetector(0.85), generator)
}

func TestProcessTurnHappyPath(t *testing.T) {
	st := memory.New()
	classifier := &fakeClassifier{result: emotionservice.Result{Label: emotionmodel.Neutral, Confidence: 0.8}}
	generator := &fakeGenerator{reply: "That's good to hear. What made today okay?"}
	svc := newTestService(st, classifier, generator)

	result, err := svc.ProcessTurn(context.Background(), "u1", "I feel okay today")
	if err != nil {
		t.Fatalf("ProcessTurn err: %v", err)
	}

	if result.Reply != generator.reply {
		t.Fatalf("unexpected reply: %q", result.Reply)
	}
	if result.Emotion != "neutral" || result.Confidence != 0.8 {
		t.Fatalf("unexpected classification: %s/%f", result.Emotion, result.Confidence)
	}
	if result.Crisis {
		t.Fatal("crisis should not be flagged")
	}

	turns, _ := st.RecentTurns(context.Background(), "u1", 10)
	if len(turns) != 2 {
		t.Fatalf("expected 2 persisted turns, got %d", len(turns))
	}
	if turns[0].Role != chatmodel.RoleUser || turns[1].Role != chatmodel.RoleAssistant {
		t.Fatalf("unexpected roles: %s, %s", turns[0].Role, turns[1].Role)
	}
	if turns[0].Emotion != "neutral" {
		t.Fatalf("expected user turn tagged with emotion, got %q", turns[0].Emotion)
	}

	samples, _ := st.ListMoodHistory(context.Background(), "u1", time.Time{})
	if len(samples) != 1 {
		t.Fatalf("expected 1 mood sample, got %d", len(samples))
	}
}

func TestProcessTurnRejectsInvalidInputBeforeExternalCalls(t *testing.T) {
	classifier := &fakeClassifier{}
	generator := &fakeGenerator{reply: "hi"}
	svc := newTestService(memory.New(), classifier, generator)

	cases := []struct {
		name    string
		userID  string
		message string
	}{
		{"empty message", "u1", "   "},
		{"oversized message", "u1", strings.Repeat("a", MaxMessageLen+1)},
		{"missing user", "", "hello"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ProcessTurn(context.Background(), tc.userID, tc.message)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if classifier.calls != 0 || generator.calls != 0 {
		t.Fatalf("external services called on invalid input: classifier=%d generator=%d", classifier.calls, generator.calls)
	}
}

func TestProcessTurnMaxLengthBoundary(t *testing.T) {
	classifier := &fakeClassifier{result: emotionservice.Result{Label: emotionmodel.Neutral, Confidence: 0.5}}
	generator := &fakeGenerator{reply: "ok"}
	svc := newTestService(memory.New(), classifier, generator)

	if _, err := svc.ProcessTurn(context.Background(), "u1", strings.Repeat("a", MaxMessageLen)); err != nil {
		t.Fatalf("message at the limit should pass: %v", err)
	}
}

func TestProcessTurnClassifierDownDefaultsToNeutral(t *testing.T) {
	classifier := &fakeClassifier{err: emotionservice.ErrUnavailable}
	generator := &fakeGenerator{reply: "still here"}
	svc := newTestService(memory.New(), classifier, generator)

	result, err := svc.ProcessTurn(context.Background(), "u1", "hello")
	if err != nil {
		t.Fatalf("ProcessTurn err: %v", err)
	}
	if result.Emotion != "neutral" || result.Confidence != 0 {
		t.Fatalf("expected neutral/0 fallback, got %s/%f", result.Emotion, result.Confidence)
	}
	if result.Reply != "still here" {
		t.Fatal("generator should still run when classifier is down")
	}
}

func TestProcessTurnGeneratorDownUsesFallbackReply(t *testing.T) {
	classifier := &fakeClassifier{result: emotionservice.Result{Label: emotionmodel.Sadness, Confidence: 0.9}}
	generator := &fakeGenerator{err: errors.New("timeout")}
	svc := newTestService(memory.New(), classifier, generator)

	result, err := svc.ProcessTurn(context.Background(), "u1", "rough day")
	if err != nil {
		t.Fatalf("ProcessTurn err: %v", err)
	}
	if !strings.Contains(result.Reply, FallbackReply) {
		t.Fatalf("expected fallback reply, got %q", result.Reply)
	}
	// crisis still computed from the classifier result alone
	if !result.Crisis {
		t.Fatal("expected crisis flag from high-confidence sadness")
	}
}

func TestProcessTurnCrisisAppendsSupportMessage(t *testing.T) {
	classifier := &fakeClassifier{result: emotionservice.Result{Label: emotionmodel.Neutral, Confidence: 0.4}}
	generator := &fakeGenerator{reply: "I'm here with you."}
	svc := newTestService(memory.New(), classifier, generator)

	result, err := svc.ProcessTurn(context.Background(), "u1", "I want to end it")
	if err != nil {
		t.Fatalf("ProcessTurn err: %v", err)
	}
	if !result.Crisis {
		t.Fatal("expected crisis flag from phrase match")
	}
	if !strings.Contains(result.Reply, crisis.SupportMessage) {
		t.Fatal("expected support message appended to reply")
	}
}

type failingStore struct {
	*memory.Store
}

func (f *failingStore) AppendChatTurn(_ context.Context, _ chatmodel.Turn) (chatmodel.Turn, error) {
	return chatmodel.Turn{}, errors.New("storage degraded")
}

func (f *failingStore) AppendMoodSample(_ context.Context, _ mood.Sample) (mood.Sample, error) {
	return mood.Sample{}, errors.New("storage degraded")
}

func (f *failingStore) AppendJournalEntry(_ context.Context, _ journal.Entry) (journal.Entry, error) {
	return journal.Entry{}, errors.New("storage degraded")
}

func TestProcessTurnRespondsDespitePersistenceFailure(t *testing.T) {
	classifier := &fakeClassifier{result: emotionservice.Result{Label: emotionmodel.Joy, Confidence: 0.7}}
	generator := &fakeGenerator{reply: "glad to hear it"}
	svc := newTestService(&failingStore{memory.New()}, classifier, generator)

	result, err := svc.ProcessTurn(context.Background(), "u1", "good news today")
	if err != nil {
		t.Fatalf("expected success despite persistence failure, got %v", err)
	}
	if result.Reply != "glad to hear it" {
		t.Fatalf("unexpected reply: %q", result.Reply)
	}
}

func TestCheckInOncePerDay(t *testing.T) {
	st := memory.New()
	svc := newTestService(st, &fakeClassifier{}, &fakeGenerator{reply: "hi"})

	current := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }

	if _, err := svc.CheckIn(context.Background(), "u1", "joy"); err != nil {
		t.Fatalf("first check-in err: %v", err)
	}

	current = time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	if _, err := svc.CheckIn(context.Background(), "u1", "sadness"); !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("expected ErrAlreadyCheckedIn, got %v", err)
	}

	current = time.Date(2026, 3, 2, 0, 30, 0, 0, time.UTC)
	if _, err := svc.CheckIn(context.Background(), "u1", "sadness"); err != nil {
		t.Fatalf("next-day check-in err: %v", err)
	}

	samples, _ := st.ListMoodHistory(context.Background(), "u1", time.Time{})
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
}

func TestCheckInRejectsUnknownEmotion(t *testing.T) {
	svc := newTestService(memory.New(), &fakeClassifier{}, &fakeGenerator{reply: "hi"})
	if _, err := svc.CheckIn(context.Background(), "u1", "blissful"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
