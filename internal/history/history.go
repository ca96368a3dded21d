// Package history keeps a short, deduplicated log of route searches.
package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmcdole/flightdeck/internal/domain"
	"github.com/mmcdole/flightdeck/internal/persist"
)

// MaxEntries is the length of the log
const MaxEntries = 20

// Place is anything that can be shown as a search endpoint
type Place interface {
	HistoryLabel() string
}

// Text is a Place given as a plain label
type Text string

func (t Text) HistoryLabel() string { return string(t) }

// Store is the persisted search history, newest first
type Store struct {
	slot   *persist.Slot
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries []domain.SearchHistoryEntry
	touched bool
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now for entry timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an empty history backed by kv
func New(kv domain.KeyValueStore, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		slot:   persist.NewSlot(kv, domain.KeySearchHistory, logger),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate loads the persisted log unless it was already changed in memory
func (s *Store) Hydrate(ctx context.Context) error {
	var loaded []domain.SearchHistoryEntry
	if !s.slot.Load(ctx, &loaded) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.touched {
		return nil
	}
	if len(loaded) > MaxEntries {
		loaded = loaded[:MaxEntries]
	}
	s.entries = loaded
	return nil
}

// Record prepends a search, replacing any earlier entry for the same
// departure/arrival pair whatever its date.
func (s *Store) Record(departure, arrival Place, date string) domain.SearchHistoryEntry {
	entry := domain.SearchHistoryEntry{
		ID:        uuid.NewString(),
		Departure: departure.HistoryLabel(),
		Arrival:   arrival.HistoryLabel(),
		Date:      date,
		Timestamp: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.SearchHistoryEntry, 0, MaxEntries)
	next = append(next, entry)
	for _, e := range s.entries {
		if e.SameRoute(entry.Departure, entry.Arrival) {
			continue
		}
		if len(next) == MaxEntries {
			break
		}
		next = append(next, e)
	}
	s.entries = next
	s.touched = true
	s.slot.Save(s.entries)
	return entry
}

// List returns the log, newest first
func (s *Store) List() []domain.SearchHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SearchHistoryEntry(nil), s.entries...)
}

// Clear empties the log and persists the empty list
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = []domain.SearchHistoryEntry{}
	s.touched = true
	s.slot.Save(s.entries)
}

// Degraded reports whether the store fell back to memory-only mode
func (s *Store) Degraded() bool {
	return s.slot.Degraded()
}

// Close drains pending writes
func (s *Store) Close(ctx context.Context) error {
	return s.slot.Close(ctx)
}
