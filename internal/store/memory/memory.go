// Package memory implements the store in process memory. It backs tests and
// lets the server run without a DATABASE_URL during early iterations.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mindhaven-app/mindhaven/backend/internal/model/chat"
	"github.com/mindhaven-app/mindhaven/backend/internal/model/emotion"
	"github.com/mindhaven-app/mindhaven/backend/internal/model/journal"
	"github.com/mindhaven-app/mindhaven/backend/internal/model/mood"
	"github.com/mindhaven-app/mindhaven/backend/internal/store"
)

// Store keeps all records in per-user maps guarded by a single RWMutex.
type Store struct {
	mu       sync.RWMutex
	turns    map[string][]chat.Turn
	samples  map[string][]mood.Sample
	entries  map[string][]journal.Entry
	checkIns map[string]time.Time
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		turns:    make(map[string][]chat.Turn),
		samples:  make(map[string][]mood.Sample),
		entries:  make(map[string][]journal.Entry),
		checkIns: make(map[string]time.Time),
	}
}

// AppendChatTurn appends a turn to the user's history.
func (s *Store) AppendChatTurn(_ context.Context, turn chat.Turn) (chat.Turn, error) {
	if turn.UserID == "" {
		return chat.Turn{}, store.ErrUserRequired
	}

	turn.ID = uuid.NewString()
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.turns[turn.UserID] = append(s.turns[turn.UserID], turn)
	s.mu.Unlock()

	return turn, nil
}

// RecentTurns returns the tail of the user's history, oldest first.
func (s *Store) RecentTurns(_ context.Context, userID string, limit int) ([]chat.Turn, error) {
	if userID == "" {
		return nil, store.ErrUserRequired
	}
	if limit < 1 {
		limit = 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[userID]
	start := len(turns) - limit
	if start < 0 {
		start = 0
	}

	copied := make([]chat.Turn, len(turns)-start)
	copy(copied, turns[start:])
	return copied, nil
}

// AppendMoodSample appends a sample with confidence clamped to [0,1].
func (s *Store) AppendMoodSample(_ context.Context, sample mood.Sample) (mood.Sample, error) {
	if sample.UserID == "" {
		return mood.Sample{}, store.ErrUserRequired
	}

	sample.ID = uuid.NewString()
	sample.Confidence = emotion.ClampConfidence(sample.Confidence)
	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.samples[sample.UserID] = append(s.samples[sample.UserID], sample)
	s.mu.Unlock()

	return sample, nil
}

// ListMoodHistory returns the user's samples at or after since, ascending.
func (s *Store) ListMoodHistory(_ context.Context, userID string, since time.Time) ([]mood.Sample, error) {
	if userID == "" {
		return nil, store.ErrUserRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []mood.Sample
	for _, sample := range s.samples[userID] {
		if !sample.CreatedAt.Before(since) {
			result = append(result, sample)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// AppendJournalEntry appends a journal entry.
func (s *Store) AppendJournalEntry(_ context.Context, entry journal.Entry) (journal.Entry, error) {
	if entry.UserID == "" {
		return journal.Entry{}, store.ErrUserRequired
	}

	entry.ID = uuid.NewString()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.entries[entry.UserID] = append(s.entries[entry.UserID], entry)
	s.mu.Unlock()

	return entry, nil
}

// ListJournalEntries returns the user's entries, newest first.
func (s *Store) ListJournalEntries(_ context.Context, userID string, limit int) ([]journal.Entry, error) {
	if userID == "" {
		return nil, store.ErrUserRequired
	}
	if limit < 1 {
		limit = 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.entries[userID]
	count := len(entries)
	if count > limit {
		count = limit
	}

	// Appends happen in creation order, so the newest entries are at the tail.
	copied := make([]journal.Entry, 0, count)
	for i := len(entries) - 1; i >= 0 && len(copied) < count; i-- {
		copied = append(copied, entries[i])
	}
	return copied, nil
}

// DeleteJournalEntry removes the entry when it belongs to the caller.
func (s *Store) DeleteJournalEntry(_ context.Context, userID, entryID string) error {
	if userID == "" {
		return store.ErrUserRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.entries[userID]
	for i, entry := range entries {
		if entry.ID == entryID {
			s.entries[userID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// TryCheckIn records the check-in unless one is already stored for the same
// UTC day. The comparison and the write share the lock.
func (s *Store) TryCheckIn(_ context.Context, userID string, at time.Time) (bool, error) {
	if userID == "" {
		return false, store.ErrUserRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.checkIns[userID]; ok && sameUTCDay(last, at) {
		return false, nil
	}
	s.checkIns[userID] = at
	return true, nil
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
