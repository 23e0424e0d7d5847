package emotion

import "strings"

// Label is one of the seven emotion categories the classifier can produce.
type Label string

const (
	Joy      Label = "joy"
	Sadness  Label = "sadness"
	Anger    Label = "anger"
	Fear     Label = "fear"
	Surprise Label = "surprise"
	Disgust  Label = "disgust"
	Neutral  Label = "neutral"
)

// All lists every valid label in a stable order.
var All = []Label{Joy, Sadness, Anger, Fear, Surprise, Disgust, Neutral}

// Parse maps a raw string to a Label, case-insensitively.
func Parse(raw string) (Label, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, label := range All {
		if normalized == string(label) {
			return label, true
		}
	}
	return "", false
}

// ClampConfidence forces a confidence score into [0,1].
func ClampConfidence(val float64) float64 {
	if val < 0 {
		return 0
	}
	if val > 1 {
		return 1
	}
	return val
}
