package emotion

import (
	"strings"

	model "github.com/mindhaven-app/mindhaven/backend/internal/model/emotion"
)

// Decision is the outcome of the heuristic keyword scorer.
type Decision struct {
	Emotion    model.Label
	Confidence float64
	Score      int
}

var keywordBuckets = map[model.Label][]string{
	model.Joy: {
		"happy", "glad", "great day", "wonderful", "amazing", "grateful", "thankful",
		"excited", "proud of myself", "feeling good", "feel good", "love this", "awesome",
		"better today", "relieved", "hopeful",
	},
	model.Sadness: {
		"sad", "unhappy", "depressed", "miserable", "lonely", "alone", "empty",
		"crying", "cried", "heartbroken", "hopeless", "worthless", "exhausted",
		"tired of everything", "down today", "feel low", "grief", "miss them",
	},
	model.Anger: {
		"angry", "furious", "mad at", "annoyed", "frustrated", "fed up", "hate",
		"pissed", "rage", "sick of", "unfair", "can't stand",
	},
	model.Fear: {
		"scared", "afraid", "anxious", "anxiety", "panic", "terrified", "worried",
		"nervous", "dread", "overwhelmed", "can't breathe", "heart racing",
	},
	model.Surprise: {
		"can't believe", "cannot believe", "shocked", "surprised", "out of nowhere",
		"unexpected", "suddenly", "no way", "wow",
	},
	model.Disgust: {
		"disgusted", "disgusting", "gross", "revolting", "sickening", "repulsed",
		"makes me sick",
	},
}

const exclamationBoost = 1

// Analyze scores a message against the keyword buckets and returns the best
// matching label. A zero score means no bucket matched and the message reads
// as neutral.
func Analyze(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Emotion: model.Neutral}
	}

	scores := make(map[model.Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}

	if scores[model.Joy] > 0 {
		scores[model.Joy] += strings.Count(text, "!") * exclamationBoost
	}

	bestLabel := model.Neutral
	bestScore := 0
	for label, s := range scores {
		if s > bestScore {
			bestScore = s
			bestLabel = label
		}
	}

	if bestScore == 0 {
		return Decision{Emotion: model.Neutral}
	}

	// Keyword hits are weak evidence compared to the model, so confidence
	// grows slowly with the score and stays well below certainty.
	confidence := 0.45 + float64(bestScore)*0.03
	if confidence > 0.75 {
		confidence = 0.75
	}

	return Decision{Emotion: bestLabel, Confidence: confidence, Score: bestScore}
}
