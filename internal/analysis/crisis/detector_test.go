package crisis

import (
	"testing"

	"github.com/mindhaven-app/mindhaven/backend/internal/model/emotion"
)

func TestDetect(t *testing.T) {
	detector := NewDetector(0.85)

	cases := []struct {
		name       string
		text       string
		label      emotion.Label
		confidence float64
		want       bool
	}{
		{"crisis phrase overrides emotion", "I want to end it", emotion.Joy, 0.1, true},
		{"crisis phrase mixed case", "Sometimes I think about SUICIDE", emotion.Neutral, 0.0, true},
		{"high confidence sadness", "everything is grey", emotion.Sadness, 0.95, true},
		{"low confidence sadness", "everything is grey", emotion.Sadness, 0.10, false},
		{"high confidence fear", "I can't face tomorrow", emotion.Fear, 0.9, true},
		{"high confidence anger", "leave me alone", emotion.Anger, 0.92, true},
		{"high confidence joy is not risk", "best day ever", emotion.Joy, 0.99, false},
		{"at threshold counts", "so tired", emotion.Sadness, 0.85, true},
		{"plain message", "I feel okay today", emotion.Neutral, 0.8, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := detector.Detect(tc.text, tc.label, tc.confidence)
			if got != tc.want {
				t.Fatalf("Detect(%q, %s, %.2f) = %v, want %v", tc.text, tc.label, tc.confidence, got, tc.want)
			}
		})
	}
}

func TestNewDetectorRejectsBadThreshold(t *testing.T) {
	detector := NewDetector(-1)
	if detector.Detect("fine", emotion.Sadness, 0.86) != true {
		t.Fatal("expected default threshold 0.85 to apply")
	}
	if detector.Detect("fine", emotion.Sadness, 0.5) {
		t.Fatal("expected 0.5 below default threshold")
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	detector := NewDetector(0.85)
	for i := 0; i < 3; i++ {
		if !detector.Detect("I want to end it", emotion.Neutral, 0) {
			t.Fatal("detector result changed between identical calls")
		}
	}
}
