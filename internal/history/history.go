// Package history keeps the newest-first log of completed calculations and
// persists it to a key-value store.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/mathnote/internal/kvstore"
)

// StorageKey is the key the serialized history is stored under.
const StorageKey = "calculationHistory"

// Entry is one completed calculation.
type Entry struct {
	Expression string    `json:"expression"`
	Result     string    `json:"result"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store is the in-memory history mirrored to a kvstore.Store on every
// mutation.
type Store struct {
	kv     kvstore.Store
	logger *slog.Logger

	// writeMu orders persisted snapshots to match the order of mutations.
	writeMu sync.Mutex
	mu      sync.RWMutex
	entries []Entry
}

// New returns an empty Store persisting to kv. Call Load to restore
// previously saved entries.
func New(kv kvstore.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{kv: kv, logger: logger}
}

// Load replaces the in-memory history with the persisted one. Entries that
// cannot be decoded are dropped; an unreadable document yields an empty
// history. Only storage read failures are returned.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.kv.Get(ctx, StorageKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		s.set(nil)
		return nil
	}
	if err != nil {
		s.set(nil)
		return fmt.Errorf("history: load: %w", err)
	}
	s.set(Decode(data, s.logger))
	return nil
}

// Decode parses a serialized history, skipping malformed entries.
func Decode(data []byte, logger *slog.Logger) []Entry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("discarding unreadable history", "error", err)
		return nil
	}
	out := make([]Entry, 0, len(raw))
	for i, r := range raw {
		var e Entry
		if err := json.Unmarshal(r, &e); err != nil {
			logger.Warn("discarding history entry", "index", i, "error", err)
			continue
		}
		if e.Timestamp.IsZero() {
			logger.Warn("discarding history entry without timestamp", "index", i)
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *Store) set(entries []Entry) {
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

// Append inserts e at the front and persists the history. The in-memory
// history keeps the entry even when persisting fails.
func (s *Store) Append(ctx context.Context, e Entry) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	s.entries = append([]Entry{e}, s.entries...)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	return s.persist(ctx, snapshot)
}

// Clear removes every entry and persists the empty history.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
	return s.persist(ctx, []Entry{})
}

// Entries returns the history, newest first.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Latest returns the newest entry.
func (s *Store) Latest() (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[0], true
}

// Export serializes the history in its storage format.
func (s *Store) Export() ([]byte, error) {
	return json.MarshalIndent(s.Entries(), "", "  ")
}

func (s *Store) snapshotLocked() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) persist(ctx context.Context, entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("history: encode: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, data); err != nil {
		s.logger.ErrorContext(ctx, "persist history", "error", err)
		return fmt.Errorf("history: persist: %w", err)
	}
	return nil
}
