// Package selection owns the comparison basket and the saved-flights list.
package selection

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/flightdeck/internal/domain"
	"github.com/mmcdole/flightdeck/internal/persist"
)

// MaxSelected is the capacity of the comparison basket
const MaxSelected = 2

// Snapshot is an immutable copy of the store's state
type Snapshot struct {
	Selected []domain.FlightOffer
	Saved    []domain.FlightOffer
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Selected: append([]domain.FlightOffer(nil), s.Selected...),
		Saved:    append([]domain.FlightOffer(nil), s.Saved...),
	}
}

// Store is the single owner of selection and saved state.
// Construct one per process and pass it to whatever needs it.
type Store struct {
	logger *slog.Logger

	selectedSlot *persist.Slot
	savedSlot    *persist.Slot

	mu    sync.Mutex
	state Snapshot
	// touched records keys mutated before hydration finished
	touched  map[string]bool
	hydrated bool

	listenersMu sync.Mutex
	listeners   map[int]func(Snapshot)
	nextID      int
}

// New creates an empty store backed by kv. Call Hydrate to load saved state.
func New(kv domain.KeyValueStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger:       logger,
		selectedSlot: persist.NewSlot(kv, domain.KeySelectedFlights, logger),
		savedSlot:    persist.NewSlot(kv, domain.KeySavedFlights, logger),
		touched:      make(map[string]bool),
		listeners:    make(map[int]func(Snapshot)),
	}
}

// Hydrate loads both keys concurrently. A key mutated before its value
// arrives keeps the in-memory state. Only the first call loads.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	done := s.hydrated
	s.hydrated = true
	s.mu.Unlock()
	if done {
		return nil
	}

	var selected, saved []domain.FlightOffer
	var selectedOK, savedOK bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		selectedOK = s.selectedSlot.Load(gctx, &selected)
		return nil
	})
	g.Go(func() error {
		savedOK = s.savedSlot.Load(gctx, &saved)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	if selectedOK && !s.touched[domain.KeySelectedFlights] {
		s.state.Selected = capSelection(dedupe(selected))
	}
	if savedOK && !s.touched[domain.KeySavedFlights] {
		s.state.Saved = dedupe(saved)
	}
	s.touched = nil
	snap := s.state.clone()
	s.mu.Unlock()

	s.logger.Debug("Selection hydrated",
		"selected", len(snap.Selected), "saved", len(snap.Saved))
	s.notify(snap)
	return nil
}

// Dispatch applies an action, persists the keys it changed, and notifies
// subscribers.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	next, changed := a.reduce(s.state)
	if changed == 0 {
		s.mu.Unlock()
		return
	}
	s.state = next
	if changed&changedSelected != 0 {
		s.markTouched(domain.KeySelectedFlights)
		s.selectedSlot.Save(next.Selected)
	}
	if changed&changedSaved != 0 {
		s.markTouched(domain.KeySavedFlights)
		s.savedSlot.Save(next.Saved)
	}
	snap := next.clone()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Store) markTouched(key string) {
	if s.touched != nil {
		s.touched[key] = true
	}
}

// Toggle adds or removes flight from the comparison basket
func (s *Store) Toggle(flight domain.FlightOffer) { s.Dispatch(Toggle{Flight: flight}) }

// Clear empties the comparison basket
func (s *Store) Clear() { s.Dispatch(ClearSelection{}) }

// Save adds flight to the saved list unless it is already there
func (s *Store) Save(flight domain.FlightOffer) { s.Dispatch(Save{Flight: flight}) }

// RemoveSaved drops a saved flight by ID
func (s *Store) RemoveSaved(id string) { s.Dispatch(RemoveSaved{ID: id}) }

// Subscribe registers fn to receive a snapshot after every change.
// The returned func unregisters it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

func (s *Store) notify(snap Snapshot) {
	s.listenersMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(snap.clone())
	}
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Selected returns the comparison basket, oldest first
func (s *Store) Selected() []domain.FlightOffer {
	return s.Snapshot().Selected
}

// Saved returns saved flights in insertion order
func (s *Store) Saved() []domain.FlightOffer {
	return s.Snapshot().Saved
}

// IsSelected reports whether id is in the comparison basket
func (s *Store) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ContainsFlight(s.state.Selected, id)
}

// IsSaved reports whether id is saved
func (s *Store) IsSaved(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ContainsFlight(s.state.Saved, id)
}

// Degraded reports whether either key fell back to memory-only mode
func (s *Store) Degraded() bool {
	return s.selectedSlot.Degraded() || s.savedSlot.Degraded()
}

// Close drains pending writes for both keys
func (s *Store) Close(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.selectedSlot.Close(gctx) })
	g.Go(func() error { return s.savedSlot.Close(gctx) })
	return g.Wait()
}

// dedupe keeps the first occurrence of each ID
func dedupe(flights []domain.FlightOffer) []domain.FlightOffer {
	seen := make(map[string]bool, len(flights))
	out := make([]domain.FlightOffer, 0, len(flights))
	for _, f := range flights {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		out = append(out, f)
	}
	return out
}

// capSelection keeps the newest MaxSelected entries
func capSelection(flights []domain.FlightOffer) []domain.FlightOffer {
	if len(flights) > MaxSelected {
		return flights[len(flights)-MaxSelected:]
	}
	return flights
}
