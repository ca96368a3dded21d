package alerts

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mmcdole/flightdeck/internal/adapter"
	"github.com/mmcdole/flightdeck/internal/domain"
	"github.com/mmcdole/flightdeck/internal/store"
)

type countingStore struct {
	*store.BoltStore
	sets int
}

func (c *countingStore) Set(ctx context.Context, key, value string) error {
	c.sets++
	return c.BoltStore.Set(ctx, key, value)
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s := New(store.NewMemoryStore(), adapter.NullLogger())
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestCreateRejectsInvalidTargets(t *testing.T) {
	ctx := context.Background()
	kv := &countingStore{BoltStore: store.NewMemoryStore()}
	s := New(kv, adapter.NullLogger())

	for _, target := range []float64{0, -5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := s.Create(domain.FlightOffer{ID: "f1", Price: 300}, target); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("target %v: expected ErrValidation, got %v", target, err)
		}
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if kv.sets != 0 {
		t.Fatalf("expected no persistence for rejected alerts, got %d writes", kv.sets)
	}
	if len(s.List()) != 0 {
		t.Fatalf("expected no alerts")
	}
}

func TestCreate(t *testing.T) {
	created := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	s := New(store.NewMemoryStore(), adapter.NullLogger(), WithClock(func() time.Time { return created }))
	defer s.Close(context.Background())

	a, err := s.Create(domain.FlightOffer{ID: "f1", Price: 300}, 250)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ID == "" || a.FlightID != "f1" || a.CurrentPrice != 300 || a.Notified {
		t.Fatalf("unexpected alert: %+v", a)
	}
	if !a.CreatedAt.Equal(created) {
		t.Fatalf("unexpected CreatedAt %v", a.CreatedAt)
	}
}

func TestCheckIsPure(t *testing.T) {
	s := newStore(t)
	if _, err := s.Create(domain.FlightOffer{ID: "f1", Price: 300}, 250); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(domain.FlightOffer{ID: "f2", Price: 300}, 250); err != nil {
		t.Fatalf("create: %v", err)
	}

	if got := s.Check("f1", 260); len(got) != 0 {
		t.Fatalf("price above target must not match")
	}
	first := s.Check("f1", 250)
	second := s.Check("f1", 250)
	if len(first) != 1 || len(second) != 1 || first[0].ID != second[0].ID {
		t.Fatalf("expected the same single match twice, got %v / %v", first, second)
	}
	if first[0].Notified {
		t.Fatalf("check must not mark alerts notified")
	}
}

func TestMarkNotified(t *testing.T) {
	s := newStore(t)
	a, _ := s.Create(domain.FlightOffer{ID: "f1", Price: 300}, 250)

	if !s.MarkNotified(a.ID) {
		t.Fatalf("expected mark to succeed")
	}
	if s.MarkNotified(a.ID) {
		t.Fatalf("expected second mark to report false")
	}
	if got := s.Check("f1", 100); len(got) != 0 {
		t.Fatalf("notified alert must not match")
	}
}

func TestCheckAll(t *testing.T) {
	s := newStore(t)
	s.Create(domain.FlightOffer{ID: "f1", Price: 300}, 250)
	s.Create(domain.FlightOffer{ID: "f2", Price: 300}, 250)

	got := s.CheckAll([]domain.FlightOffer{
		{ID: "f1", Price: 200},
		{ID: "f2", Price: 400},
		{ID: "f3", Price: 1},
	})
	if len(got) != 1 || got[0].FlightID != "f1" {
		t.Fatalf("unexpected matches: %+v", got)
	}
}

func TestRemove(t *testing.T) {
	s := newStore(t)
	a, _ := s.Create(domain.FlightOffer{ID: "f1"}, 100)
	if s.Remove("missing") {
		t.Fatalf("removing unknown id should report false")
	}
	if !s.Remove(a.ID) {
		t.Fatalf("expected removal")
	}
	if len(s.List()) != 0 {
		t.Fatalf("expected empty list")
	}
}

func TestPersistAndHydrate(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	s := New(kv, adapter.NullLogger())
	a, _ := s.Create(domain.FlightOffer{ID: "f1", Price: 300}, 250)
	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded := New(kv, adapter.NullLogger())
	defer reloaded.Close(ctx)
	if err := reloaded.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	list := reloaded.List()
	if len(list) != 1 || list[0].ID != a.ID || list[0].TargetPrice != 250 {
		t.Fatalf("unexpected hydrated alerts: %+v", list)
	}
}

func TestHydrateTwiceKeepsSingleCopy(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	s := New(kv, adapter.NullLogger())
	s.Create(domain.FlightOffer{ID: "f1", Price: 300}, 250)
	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded := New(kv, adapter.NullLogger())
	defer reloaded.Close(ctx)
	if err := reloaded.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	reloaded.Create(domain.FlightOffer{ID: "f2", Price: 500}, 400)
	if err := reloaded.Hydrate(ctx); err != nil {
		t.Fatalf("second hydrate: %v", err)
	}

	list := reloaded.List()
	if len(list) != 2 || list[0].FlightID != "f1" || list[1].FlightID != "f2" {
		t.Fatalf("expected f1 then f2 once each, got %+v", list)
	}
}
