// Package persist mirrors in-memory state into one key of a durable store.
package persist

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/flightdeck/internal/domain"
)

const writeTimeout = 5 * time.Second

// Slot owns one persisted key. Save never blocks on I/O: snapshots are
// queued and written by a single goroutine in the order they were issued.
// After the first store failure the slot stops touching the store and the
// owner keeps running from memory.
type Slot struct {
	kv     domain.KeyValueStore
	key    string
	logger *slog.Logger

	mu       sync.Mutex
	queue    []op
	degraded bool
	closed   bool

	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// op is either a value write or a flush barrier
type op struct {
	value   string
	barrier chan struct{}
}

// NewSlot starts the writer goroutine for key. Call Close to stop it.
func NewSlot(kv domain.KeyValueStore, key string, logger *slog.Logger) *Slot {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Slot{
		kv:     kv,
		key:    key,
		logger: logger.With("key", key),
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Key returns the persisted key this slot owns
func (s *Slot) Key() string {
	return s.key
}

// Load decodes the stored JSON into dst. It reports false when the key is
// absent, unreadable, or corrupt; dst is left untouched in that case.
func (s *Slot) Load(ctx context.Context, dst any) bool {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.degrade("hydrate", err)
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("Discarding unreadable persisted value", "error", err)
		return false
	}
	return true
}

// Save serializes v now and queues it for writing
func (s *Slot) Save(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Failed to encode state", "error", err)
		return
	}

	s.mu.Lock()
	if s.closed || s.degraded {
		s.mu.Unlock()
		return
	}
	// Only the newest pending snapshot matters; replace a queued one in place
	if n := len(s.queue); n > 0 && s.queue[n-1].barrier == nil {
		s.queue[n-1].value = string(data)
	} else {
		s.queue = append(s.queue, op{value: string(data)})
	}
	s.mu.Unlock()

	s.signal()
}

// Degraded reports whether the slot has fallen back to memory-only mode
func (s *Slot) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Flush waits until every snapshot queued before the call has been handled
func (s *Slot) Flush(ctx context.Context) error {
	barrier := make(chan struct{})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.queue = append(s.queue, op{barrier: barrier})
	s.mu.Unlock()
	s.signal()

	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending writes and stops the writer
func (s *Slot) Close(ctx context.Context) error {
	err := s.Flush(ctx)

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.closeOnce.Do(func() { close(s.stop) })

	select {
	case <-s.done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

func (s *Slot) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Slot) run() {
	defer close(s.done)
	for {
		select {
		case <-s.wake:
			s.drain()
		case <-s.stop:
			s.drain()
			return
		}
	}
}

func (s *Slot) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		next := s.queue[0]
		s.queue = s.queue[1:]
		degraded := s.degraded
		s.mu.Unlock()

		if next.barrier != nil {
			close(next.barrier)
			continue
		}
		if degraded {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := s.kv.Set(ctx, s.key, next.value)
		cancel()
		if err != nil {
			s.degrade("write", err)
		}
	}
}

func (s *Slot) degrade(op string, err error) {
	s.mu.Lock()
	already := s.degraded
	s.degraded = true
	s.mu.Unlock()

	if !already {
		s.logger.Error("Durable store failed, continuing in memory",
			"op", op, "error", err)
	}
}
