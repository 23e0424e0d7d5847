package chat

import "time"

// Role restricts who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is part of the two-value enumeration.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn is one message in a user's conversation. Turns are append-only and
// never mutated after creation.
type Turn struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(128);not null;index" json:"user_id"`
	Role      Role      `gorm:"type:varchar(16);not null" json:"role"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Emotion   string    `gorm:"type:varchar(32)" json:"emotion,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName keeps the table name aligned with the production schema.
func (Turn) TableName() string { return "chat_turns" }
