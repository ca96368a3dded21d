package history

import (
	"context"
	"fmt"
	"testing"

	"github.com/mmcdole/flightdeck/internal/adapter"
	"github.com/mmcdole/flightdeck/internal/domain"
	"github.com/mmcdole/flightdeck/internal/store"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s := New(store.NewMemoryStore(), adapter.NullLogger())
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestRecordDedupesByRoute(t *testing.T) {
	s := newStore(t)
	s.Record(Text("SFO"), Text("JFK"), "2026-06-01")
	s.Record(Text("LAX"), Text("SEA"), "2026-06-02")
	s.Record(Text("SFO"), Text("JFK"), "2026-07-15")

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list))
	}
	if list[0].Departure != "SFO" || list[0].Date != "2026-07-15" {
		t.Fatalf("expected newest SFO entry first, got %+v", list[0])
	}
	if list[1].Departure != "LAX" {
		t.Fatalf("expected LAX second, got %+v", list[1])
	}
}

func TestRecordKeepsReversedPair(t *testing.T) {
	s := newStore(t)
	s.Record(Text("SFO"), Text("JFK"), "2026-06-01")
	s.Record(Text("JFK"), Text("SFO"), "2026-06-01")
	if len(s.List()) != 2 {
		t.Fatalf("reversed route is a different pair")
	}
}

func TestRecordCapsLength(t *testing.T) {
	s := newStore(t)
	for i := 0; i < 30; i++ {
		s.Record(Text(fmt.Sprintf("A%02d", i)), Text("JFK"), "2026-06-01")
	}
	list := s.List()
	if len(list) != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, len(list))
	}
	if list[0].Departure != "A29" || list[MaxEntries-1].Departure != "A10" {
		t.Fatalf("unexpected window: first=%s last=%s", list[0].Departure, list[MaxEntries-1].Departure)
	}
}

func TestRecordUsesAirportName(t *testing.T) {
	s := newStore(t)
	e := s.Record(
		domain.Airport{ID: "SFO", Name: "San Francisco International Airport"},
		domain.Airport{ID: "XYZ"},
		"2026-06-01",
	)
	if e.Departure != "San Francisco International Airport" || e.Arrival != "XYZ" {
		t.Fatalf("unexpected labels: %+v", e)
	}
}

func TestClearPersists(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	s := New(kv, adapter.NullLogger())
	s.Record(Text("SFO"), Text("JFK"), "2026-06-01")
	s.Clear()
	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	v, ok, err := kv.Get(ctx, domain.KeySearchHistory)
	if err != nil || !ok || v != "[]" {
		t.Fatalf("expected persisted empty list, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestHydrate(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	s := New(kv, adapter.NullLogger())
	s.Record(Text("SFO"), Text("JFK"), "2026-06-01")
	s.Close(ctx)

	reloaded := New(kv, adapter.NullLogger())
	defer reloaded.Close(ctx)
	if err := reloaded.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if list := reloaded.List(); len(list) != 1 || list[0].Arrival != "JFK" {
		t.Fatalf("unexpected hydrated history: %+v", list)
	}
}
