package journal

import "time"

// Entry is a private free-text journal record. Entries are immutable except
// for deletion by their owner.
type Entry struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(128);not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	MoodTag   string    `gorm:"type:varchar(32)" json:"mood_tag,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Entry) TableName() string { return "journal_entries" }
