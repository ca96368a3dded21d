// Package cache holds recently fetched search result pages in memory.
package cache

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/flightdeck/internal/domain"
)

// DefaultTTL is how long a result page stays valid
const DefaultTTL = 5 * time.Minute

// Key identifies one result page
type Key struct {
	Departure string
	Arrival   string
	Date      string
	Page      int
}

// KeyFor builds the cache key for a search request
func KeyFor(req domain.SearchRequest) Key {
	return Key{
		Departure: req.Departure,
		Arrival:   req.Arrival,
		Date:      req.Date,
		Page:      req.Page,
	}
}

// String renders DEP-ARR-DATE-PAGE; page defaults to 1
func (k Key) String() string {
	page := k.Page
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("%s-%s-%s-%d",
		strings.ToUpper(k.Departure), strings.ToUpper(k.Arrival), k.Date, page)
}

type entry struct {
	payload   []domain.FlightOffer
	writtenAt time.Time
}

// ResultCache is a TTL cache of search result pages.
//
// Expiry is lazy: an entry is only dropped when it is read after its TTL.
// Without a bound, entries that are never read again stay in memory until
// Clear, so WithMaxEntries caps the map. When a Set would exceed the cap,
// expired entries are purged first and then the oldest write is evicted.
type ResultCache struct {
	mu         sync.Mutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// Option configures a ResultCache
type Option func(*ResultCache)

// WithTTL overrides the validity window
func WithTTL(ttl time.Duration) Option {
	return func(c *ResultCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now (tests)
func WithClock(now func() time.Time) Option {
	return func(c *ResultCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMaxEntries bounds the number of stored pages. n <= 0 means unbounded.
func WithMaxEntries(n int) Option {
	return func(c *ResultCache) {
		c.maxEntries = n
	}
}

// New creates an empty cache
func New(opts ...Option) *ResultCache {
	c := &ResultCache{
		entries: make(map[string]entry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the payload for key if it is still valid.
// An expired entry is removed.
func (c *ResultCache) Get(key Key) ([]domain.FlightOffer, bool) {
	k := key.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.writtenAt) >= c.ttl {
		delete(c.entries, k)
		return nil, false
	}
	return cloneFlights(e.payload), true
}

// Set stores payload under key with a fresh timestamp
func (c *ResultCache) Set(key Key, payload []domain.FlightOffer) {
	k := key.String()
	stored := cloneFlights(payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[k]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.makeRoom(now)
	}
	c.entries[k] = entry{payload: stored, writtenAt: now}
}

// Clear drops every entry
func (c *ResultCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired or not
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// makeRoom must be called with mu held
func (c *ResultCache) makeRoom(now time.Time) {
	for k, e := range c.entries {
		if now.Sub(e.writtenAt) >= c.ttl {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}

	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.writtenAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.writtenAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}

// cloneFlights copies offers so callers never share backing arrays with the cache
func cloneFlights(flights []domain.FlightOffer) []domain.FlightOffer {
	out := slices.Clone(flights)
	if out == nil {
		out = []domain.FlightOffer{}
	}
	for i := range out {
		out[i].Extensions = slices.Clone(out[i].Extensions)
	}
	return out
}
