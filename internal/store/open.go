package store

import (
	"fmt"
	"strings"

	"github.com/mmcdole/flightdeck/internal/domain"
)

// Storage drivers
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open returns the key-value store for the configured driver.
func Open(driver, dir string) (domain.KeyValueStore, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverBolt:
		return NewBoltStore(dir)
	case DriverSQLite:
		return OpenSQLite(dir)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", driver)
	}
}
