package store

import (
	"context"
	"testing"

	"github.com/mmcdole/flightdeck/internal/domain"
)

func exerciseStore(t *testing.T, s domain.KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, domain.KeySavedFlights); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, domain.KeySavedFlights, `[{"id":"a"}]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, domain.KeySavedFlights, `[{"id":"b"}]`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := s.Get(ctx, domain.KeySavedFlights)
	if err != nil || !ok {
		t.Fatalf("get after set: ok=%v err=%v", ok, err)
	}
	if v != `[{"id":"b"}]` {
		t.Fatalf("expected overwritten value, got %q", v)
	}
	if err := s.Remove(ctx, domain.KeySavedFlights); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, domain.KeySavedFlights); ok {
		t.Fatalf("expected key gone after remove")
	}
	if err := s.Remove(ctx, "missing"); err != nil {
		t.Fatalf("removing a missing key should be a no-op: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestBoltStore(t *testing.T) {
	s, err := NewBoltStore(t.TempDir())
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewBoltStore(dir)
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	if err := s.Set(ctx, domain.KeySearchHistory, `[]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewBoltStore(dir)
	if err != nil {
		t.Fatalf("reopen bolt: %v", err)
	}
	defer reopened.Close()
	v, ok, err := reopened.Get(ctx, domain.KeySearchHistory)
	if err != nil || !ok || v != `[]` {
		t.Fatalf("expected persisted value, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(t.TempDir())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("redis", t.TempDir()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestCanceledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Set(ctx, "k", "v"); err == nil {
		t.Fatalf("expected canceled context to fail set")
	}
}
