// Package postgres implements the store on a managed Postgres database via
// GORM. The database enforces row-level security; this layer additionally
// filters every statement by the owning user id so a misconfigured policy
// never leaks rows across users.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mindhaven-app/mindhaven/backend/internal/model/chat"
	"github.com/mindhaven-app/mindhaven/backend/internal/model/emotion"
	"github.com/mindhaven-app/mindhaven/backend/internal/model/journal"
	"github.com/mindhaven-app/mindhaven/backend/internal/model/mood"
	"github.com/mindhaven-app/mindhaven/backend/internal/store"
)

// Store wraps a GORM connection pool.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.AutoMigrate(&chat.Turn{}, &mood.Sample{}, &journal.Entry{}, &mood.CheckIn{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// AppendChatTurn inserts one immutable turn.
func (s *Store) AppendChatTurn(ctx context.Context, turn chat.Turn) (chat.Turn, error) {
	if turn.UserID == "" {
		return chat.Turn{}, store.ErrUserRequired
	}

	turn.ID = uuid.NewString()
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(&turn).Error; err != nil {
		return chat.Turn{}, fmt.Errorf("failed to append chat turn: %w", err)
	}
	return turn, nil
}

// RecentTurns fetches the newest turns and reverses them so the caller gets
// conversation order.
func (s *Store) RecentTurns(ctx context.Context, userID string, limit int) ([]chat.Turn, error) {
	if userID == "" {
		return nil, store.ErrUserRequired
	}
	if limit < 1 {
		limit = 1
	}

	var turns []chat.Turn
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&turns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent turns: %w", err)
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// AppendMoodSample inserts one clamped sample.
func (s *Store) AppendMoodSample(ctx context.Context, sample mood.Sample) (mood.Sample, error) {
	if sample.UserID == "" {
		return mood.Sample{}, store.ErrUserRequired
	}

	sample.ID = uuid.NewString()
	sample.Confidence = emotion.ClampConfidence(sample.Confidence)
	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(&sample).Error; err != nil {
		return mood.Sample{}, fmt.Errorf("failed to append mood sample: %w", err)
	}
	return sample, nil
}

// ListMoodHistory returns samples at or after since, ascending.
func (s *Store) ListMoodHistory(ctx context.Context, userID string, since time.Time) ([]mood.Sample, error) {
	if userID == "" {
		return nil, store.ErrUserRequired
	}

	var samples []mood.Sample
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at ASC").
		Find(&samples).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load mood history: %w", err)
	}
	return samples, nil
}

// AppendJournalEntry inserts one entry.
func (s *Store) AppendJournalEntry(ctx context.Context, entry journal.Entry) (journal.Entry, error) {
	if entry.UserID == "" {
		return journal.Entry{}, store.ErrUserRequired
	}

	entry.ID = uuid.NewString()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return journal.Entry{}, fmt.Errorf("failed to append journal entry: %w", err)
	}
	return entry, nil
}

// ListJournalEntries returns the user's entries, newest first.
func (s *Store) ListJournalEntries(ctx context.Context, userID string, limit int) ([]journal.Entry, error) {
	if userID == "" {
		return nil, store.ErrUserRequired
	}
	if limit < 1 {
		limit = 1
	}

	var entries []journal.Entry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	return entries, nil
}

// DeleteJournalEntry deletes the entry only when the caller owns it.
func (s *Store) DeleteJournalEntry(ctx context.Context, userID, entryID string) error {
	if userID == "" {
		return store.ErrUserRequired
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, entryID).
		Delete(&journal.Entry{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete journal entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// TryCheckIn upserts the user's check-in row, but only updates it when the
// stored timestamp falls on a different UTC day. The day guard lives in the
// conflict clause so concurrent same-day calls race inside the database
// instead of in application code; the loser sees zero affected rows.
func (s *Store) TryCheckIn(ctx context.Context, userID string, at time.Time) (bool, error) {
	if userID == "" {
		return false, store.ErrUserRequired
	}

	row := mood.CheckIn{UserID: userID, LastCheckIn: at}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_check_in"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{
					SQL:  "date(mood_check_ins.last_check_in AT TIME ZONE 'UTC') <> date(? AT TIME ZONE 'UTC')",
					Vars: []interface{}{at},
				},
			}},
		}).
		Create(&row)
	if result.Error != nil {
		return false, fmt.Errorf("failed to record check-in: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
