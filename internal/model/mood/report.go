package mood

import (
	"time"

	"github.com/mindhaven-app/mindhaven/backend/internal/model/emotion"
)

// TimelinePoint is one entry in the mood-over-time series.
type TimelinePoint struct {
	Date       time.Time `json:"date"`
	Emotion    string    `json:"emotion"`
	Confidence float64   `json:"confidence"`
}

// Insight attaches the static lookup data for the user's dominant emotion.
type Insight struct {
	Emotion string `json:"emotion"`
	emotion.Profile
}

// Report aggregates a user's mood history for the dashboard.
type Report struct {
	Distribution map[string]int  `json:"distribution"`
	Timeline     []TimelinePoint `json:"timeline"`
	TotalEntries int             `json:"total_entries"`
	Dominant     *Insight        `json:"dominant,omitempty"`
	Message      string          `json:"message,omitempty"`
}
