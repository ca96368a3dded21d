package cache

import (
	"testing"
	"time"

	"github.com/mmcdole/flightdeck/internal/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestKeyString(t *testing.T) {
	k := Key{Departure: "sfo", Arrival: "JFK", Date: "2026-06-10"}
	if got := k.String(); got != "SFO-JFK-2026-06-10-1" {
		t.Fatalf("unexpected key %q", got)
	}
	k.Page = 3
	if got := k.String(); got != "SFO-JFK-2026-06-10-3" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestGetWithinTTL(t *testing.T) {
	clock := newClock()
	c := New(WithClock(clock.Now))
	key := Key{Departure: "SFO", Arrival: "JFK", Date: "2026-06-10", Page: 1}
	payload := []domain.FlightOffer{{ID: "a", Price: 100}}

	c.Set(key, payload)
	clock.Advance(4*time.Minute + 59*time.Second)

	got, ok := c.Get(key)
	if !ok {
		t.Fatalf("expected hit within TTL")
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	c := New(WithClock(newClock().Now))
	key := Key{Departure: "SFO", Arrival: "JFK", Date: "2026-06-10", Page: 1}
	c.Set(key, []domain.FlightOffer{{ID: "a", Price: 100, Extensions: []string{"Wi-Fi"}}})

	got, _ := c.Get(key)
	got[0].Price = 1
	got[0].Extensions[0] = "changed"

	again, ok := c.Get(key)
	if !ok {
		t.Fatalf("expected hit")
	}
	if again[0].Price != 100 || again[0].Extensions[0] != "Wi-Fi" {
		t.Fatalf("cached payload mutated through Get result: %+v", again[0])
	}
}

func TestExpiredEntryIsRemoved(t *testing.T) {
	clock := newClock()
	c := New(WithClock(clock.Now))
	key := Key{Departure: "SFO", Arrival: "JFK", Date: "2026-06-10", Page: 1}

	c.Set(key, []domain.FlightOffer{{ID: "a"}})
	clock.Advance(DefaultTTL)

	if _, ok := c.Get(key); ok {
		t.Fatalf("expected miss at TTL")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry to be purged, len=%d", c.Len())
	}
	if _, ok := c.Get(key); ok {
		t.Fatalf("expected repeated miss")
	}
}

func TestSetRefreshesTimestamp(t *testing.T) {
	clock := newClock()
	c := New(WithClock(clock.Now))
	key := Key{Departure: "SFO", Arrival: "JFK", Date: "2026-06-10", Page: 1}

	c.Set(key, []domain.FlightOffer{{ID: "old"}})
	clock.Advance(4 * time.Minute)
	c.Set(key, []domain.FlightOffer{{ID: "new"}})
	clock.Advance(4 * time.Minute)

	got, ok := c.Get(key)
	if !ok || got[0].ID != "new" {
		t.Fatalf("expected refreshed entry, got %+v ok=%v", got, ok)
	}
}

func TestClear(t *testing.T) {
	c := New()
	c.Set(Key{Departure: "A", Arrival: "B", Date: "2026-01-01"}, nil)
	c.Set(Key{Departure: "C", Arrival: "D", Date: "2026-01-01"}, nil)
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after clear")
	}
}

func TestMaxEntriesEvictsOldest(t *testing.T) {
	clock := newClock()
	c := New(WithClock(clock.Now), WithMaxEntries(2))

	first := Key{Departure: "A", Arrival: "B", Date: "2026-01-01"}
	second := Key{Departure: "C", Arrival: "D", Date: "2026-01-01"}
	third := Key{Departure: "E", Arrival: "F", Date: "2026-01-01"}

	c.Set(first, nil)
	clock.Advance(time.Second)
	c.Set(second, nil)
	clock.Advance(time.Second)
	c.Set(third, nil)

	if c.Len() != 2 {
		t.Fatalf("expected bound of 2, got %d", c.Len())
	}
	if _, ok := c.Get(first); ok {
		t.Fatalf("expected oldest entry evicted")
	}
	if _, ok := c.Get(third); !ok {
		t.Fatalf("expected newest entry kept")
	}
}

func TestMaxEntriesPrefersExpired(t *testing.T) {
	clock := newClock()
	c := New(WithClock(clock.Now), WithMaxEntries(2), WithTTL(time.Minute))

	stale := Key{Departure: "A", Arrival: "B", Date: "2026-01-01"}
	fresh := Key{Departure: "C", Arrival: "D", Date: "2026-01-01"}
	c.Set(stale, nil)
	clock.Advance(2 * time.Minute)
	c.Set(fresh, nil)
	c.Set(Key{Departure: "E", Arrival: "F", Date: "2026-01-01"}, nil)

	if _, ok := c.Get(fresh); !ok {
		t.Fatalf("expected fresh entry to survive eviction")
	}
}
