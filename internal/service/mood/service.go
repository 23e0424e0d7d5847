// Package mood aggregates stored samples into the dashboard report.
package mood

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mindhaven-app/mindhaven/backend/internal/model/emotion"
	moodmodel "github.com/mindhaven-app/mindhaven/backend/internal/model/mood"
	"github.com/mindhaven-app/mindhaven/backend/internal/store"
)

const (
	defaultDays = 30
	maxDays     = 365
)

// Service computes mood analytics from the persistence gateway.
type Service struct {
	store store.Store
}

// NewService wires the analytics service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Report builds the distribution and timeline for the user's last N days.
// Identical underlying data yields an identical report.
func (s *Service) Report(ctx context.Context, userID string, days int) (moodmodel.Report, error) {
	if strings.TrimSpace(userID) == "" {
		return moodmodel.Report{}, store.ErrUserRequired
	}
	if days < 1 {
		days = defaultDays
	}
	if days > maxDays {
		days = maxDays
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	samples, err := s.store.ListMoodHistory(ctx, userID, since)
	if err != nil {
		return moodmodel.Report{}, fmt.Errorf("failed to load mood history: %w", err)
	}

	if len(samples) == 0 {
		return moodmodel.Report{
			Distribution: map[string]int{},
			Timeline:     []moodmodel.TimelinePoint{},
			TotalEntries: 0,
			Message:      "No mood data yet. Start chatting to track your emotions.",
		}, nil
	}

	distribution := make(map[string]int, len(emotion.All))
	timeline := make([]moodmodel.TimelinePoint, 0, len(samples))
	for _, sample := range samples {
		distribution[sample.Emotion]++
		timeline = append(timeline, moodmodel.TimelinePoint{
			Date:       sample.CreatedAt,
			Emotion:    sample.Emotion,
			Confidence: sample.Confidence,
		})
	}

	return moodmodel.Report{
		Distribution: distribution,
		Timeline:     timeline,
		TotalEntries: len(samples),
		Dominant:     dominantInsight(distribution),
	}, nil
}

// dominantInsight picks the most frequent emotion and attaches its static
// profile. Ties break on the fixed label order so output stays stable.
func dominantInsight(distribution map[string]int) *moodmodel.Insight {
	var best emotion.Label
	bestCount := 0
	for _, label := range emotion.All {
		if count := distribution[string(label)]; count > bestCount {
			best = label
			bestCount = count
		}
	}
	if bestCount == 0 {
		return nil
	}

	return &moodmodel.Insight{
		Emotion: string(best),
		Profile: emotion.ProfileFor(best),
	}
}
