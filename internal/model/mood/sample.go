package mood

import "time"

// Sample records one emotion classification for a user message or check-in.
// Written once, never updated.
type Sample struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(128);not null;index" json:"user_id"`
	Emotion    string    `gorm:"type:varchar(32);not null" json:"emotion"`
	Confidence float64   `gorm:"not null" json:"confidence"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}

func (Sample) TableName() string { return "mood_samples" }

// CheckIn tracks the most recent daily mood check-in per user. This lives
// server-side so the once-per-day rule holds across devices.
type CheckIn struct {
	UserID      string    `gorm:"type:varchar(128);primaryKey" json:"user_id"`
	LastCheckIn time.Time `gorm:"not null" json:"last_check_in"`
}

func (CheckIn) TableName() string { return "mood_check_ins" }
