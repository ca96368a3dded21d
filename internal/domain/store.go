package domain

import "context"

// Persisted keys. Values are JSON arrays.
const (
	KeySelectedFlights = "@selectedFlights"
	KeySavedFlights    = "@saved_flights"
	KeyPriceAlerts     = "@price_alerts"
	KeySearchHistory   = "@search_history"
)

// KeyValueStore is the durable string store backing all persisted state.
// Get reports ok=false for an absent key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}
