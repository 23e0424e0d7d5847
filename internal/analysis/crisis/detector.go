// Package crisis flags messages that may reflect self-harm risk. It combines
// explicit phrase matching with an emotion-confidence threshold. This is a
// safety guardrail, not a clinical tool: a positive flag routes the user
// toward professional help.
package crisis

import (
	"strings"

	"github.com/mindhaven-app/mindhaven/backend/internal/model/emotion"
)

// DefaultThreshold is the confidence above which a strongly negative emotion
// counts as a soft risk signal.
const DefaultThreshold = 0.85

// phrases that flag a message immediately, regardless of the classifier.
// Matched case-insensitively as substrings.
var phrases = []string{
	"suicide",
	"kill myself",
	"want to die",
	"hurt myself",
	"no reason to live",
	"self harm",
	"self-harm",
	"end my life",
	"end it all",
	"want to end it",
	"don't want to live",
	"don't want to be alive",
	"better off dead",
	"can't go on",
	"nothing to live for",
	"take my own life",
	"wish i was dead",
	"not worth living",
}

// negative emotions that can trip the soft-risk rule.
var negative = map[emotion.Label]bool{
	emotion.Sadness: true,
	emotion.Fear:    true,
	emotion.Anger:   true,
}

// SupportMessage is appended to the assistant reply whenever the flag is set.
const SupportMessage = "I hear you, and I care about your safety. What you're feeling right now is real, " +
	"but please know that help is available.\n\n" +
	"Please reach out to a crisis helpline:\n" +
	"India: iCall – 9152987821 | Vandrevala Foundation – 1860-2662-345\n" +
	"USA: 988 Suicide & Crisis Lifeline – 988\n" +
	"International: Befrienders Worldwide – befrienders.org\n\n" +
	"You are not alone. Please talk to someone you trust today."

// Detector evaluates messages against the static rule set. It holds no
// mutable state and is safe for concurrent use.
type Detector struct {
	threshold float64
}

// NewDetector builds a detector with the given soft-risk threshold. Values
// outside (0,1] fall back to the default.
func NewDetector(threshold float64) *Detector {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Detector{threshold: threshold}
}

// Detect reports whether the message indicates crisis risk. True when the
// lower-cased text contains a listed phrase, or when the classified emotion
// is negative with confidence at or above the threshold.
func (d *Detector) Detect(text string, label emotion.Label, confidence float64) bool {
	lowered := strings.ToLower(strings.TrimSpace(text))

	for _, phrase := range phrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}

	if negative[label] && confidence >= d.threshold {
		return true
	}

	return false
}
