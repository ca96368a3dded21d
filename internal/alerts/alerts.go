// Package alerts keeps the user's target-price watches.
package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmcdole/flightdeck/internal/domain"
	"github.com/mmcdole/flightdeck/internal/persist"
)

// Store is the persisted registry of price alerts
type Store struct {
	slot   *persist.Slot
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	alerts   []domain.PriceAlert
	hydrated bool
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now for CreatedAt stamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an empty store backed by kv
func New(kv domain.KeyValueStore, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		slot:   persist.NewSlot(kv, domain.KeyPriceAlerts, logger),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate loads persisted alerts. Alerts created before it returns are kept
// after the loaded ones. Only the first call loads; later calls are no-ops.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	done := s.hydrated
	s.hydrated = true
	s.mu.Unlock()
	if done {
		return nil
	}

	var loaded []domain.PriceAlert
	if !s.slot.Load(ctx, &loaded) {
		return nil
	}

	s.mu.Lock()
	if len(s.alerts) > 0 {
		loaded = append(loaded, s.alerts...)
		s.slot.Save(loaded)
	}
	s.alerts = loaded
	s.mu.Unlock()
	return nil
}

// Create registers a watch on flight. targetPrice must be finite and > 0.
func (s *Store) Create(flight domain.FlightOffer, targetPrice float64) (domain.PriceAlert, error) {
	if math.IsNaN(targetPrice) || math.IsInf(targetPrice, 0) || targetPrice <= 0 {
		return domain.PriceAlert{}, fmt.Errorf("target price must be a positive number: %w", domain.ErrValidation)
	}

	alert := domain.PriceAlert{
		ID:           uuid.NewString(),
		FlightID:     flight.ID,
		Flight:       flight,
		TargetPrice:  targetPrice,
		CurrentPrice: flight.Price,
		CreatedAt:    s.now(),
	}

	s.mu.Lock()
	s.alerts = append(s.cloneLocked(), alert)
	s.slot.Save(s.alerts)
	s.mu.Unlock()

	s.logger.Info("Price alert created",
		"flightID", flight.ID, "target", targetPrice)
	return alert, nil
}

// List returns every alert in creation order
func (s *Store) List() []domain.PriceAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneLocked()
}

// Remove deletes the alert with id. It reports whether one was removed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.PriceAlert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if a.ID != id {
			next = append(next, a)
		}
	}
	if len(next) == len(s.alerts) {
		return false
	}
	s.alerts = next
	s.slot.Save(s.alerts)
	return true
}

// Check returns the alerts on flightID that currentPrice satisfies.
// It does not change any alert, so repeated calls return the same set.
func (s *Store) Check(flightID string, currentPrice float64) []domain.PriceAlert {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []domain.PriceAlert
	for _, a := range s.alerts {
		if a.Matches(flightID, currentPrice) {
			matched = append(matched, a)
		}
	}
	return matched
}

// CheckAll runs Check for every flight in a result list
func (s *Store) CheckAll(flights []domain.FlightOffer) []domain.PriceAlert {
	var matched []domain.PriceAlert
	for _, f := range flights {
		matched = append(matched, s.Check(f.ID, f.Price)...)
	}
	return matched
}

// MarkNotified flags an alert so Check stops returning it.
// It reports false when id is unknown or already notified.
func (s *Store) MarkNotified(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.alerts {
		if a.ID != id {
			continue
		}
		if a.Notified {
			return false
		}
		next := s.cloneLocked()
		next[i].Notified = true
		s.alerts = next
		s.slot.Save(s.alerts)
		return true
	}
	return false
}

// Degraded reports whether the store fell back to memory-only mode
func (s *Store) Degraded() bool {
	return s.slot.Degraded()
}

// Close drains pending writes
func (s *Store) Close(ctx context.Context) error {
	return s.slot.Close(ctx)
}

func (s *Store) cloneLocked() []domain.PriceAlert {
	return append([]domain.PriceAlert(nil), s.alerts...)
}
