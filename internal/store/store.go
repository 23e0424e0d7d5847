// Package store defines the persistence gateway. Every operation is scoped
// to an owning user id; implementations must reject cross-user access at
// this boundary rather than trusting callers.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/mindhaven-app/mindhaven/backend/internal/model/chat"
	"github.com/mindhaven-app/mindhaven/backend/internal/model/journal"
	"github.com/mindhaven-app/mindhaven/backend/internal/model/mood"
)

var (
	// ErrNotFound covers both missing rows and rows owned by someone else,
	// so ownership probing leaks nothing.
	ErrNotFound = errors.New("record not found")

	// ErrUserRequired is returned when an operation lacks an owning user id.
	ErrUserRequired = errors.New("user id is required")
)

// Store is the persistence gateway for chat turns, mood samples, journal
// entries and check-in state.
type Store interface {
	// AppendChatTurn persists one turn and returns it with identity and
	// timestamp filled in.
	AppendChatTurn(ctx context.Context, turn chat.Turn) (chat.Turn, error)

	// RecentTurns returns up to limit of the user's most recent turns,
	// ordered oldest to newest, for conversation memory.
	RecentTurns(ctx context.Context, userID string, limit int) ([]chat.Turn, error)

	// AppendMoodSample persists one classified emotion. Confidence is
	// clamped to [0,1] before writing.
	AppendMoodSample(ctx context.Context, sample mood.Sample) (mood.Sample, error)

	// ListMoodHistory returns the user's samples at or after since,
	// ordered by creation time ascending.
	ListMoodHistory(ctx context.Context, userID string, since time.Time) ([]mood.Sample, error)

	// AppendJournalEntry persists a journal entry for its owner.
	AppendJournalEntry(ctx context.Context, entry journal.Entry) (journal.Entry, error)

	// ListJournalEntries returns up to limit of the user's entries, newest
	// first.
	ListJournalEntries(ctx context.Context, userID string, limit int) ([]journal.Entry, error)

	// DeleteJournalEntry removes an entry if and only if it belongs to the
	// caller. A foreign or missing entry yields ErrNotFound.
	DeleteJournalEntry(ctx context.Context, userID, entryID string) error

	// TryCheckIn records at as the user's latest daily check-in unless one
	// already exists for the same UTC calendar day. It returns false when
	// the day is taken. The check and the write are atomic, so concurrent
	// same-day calls cannot both succeed.
	TryCheckIn(ctx context.Context, userID string, at time.Time) (bool, error)
}
