package domain

import "time"

// SearchHistoryEntry records one past route search
type SearchHistoryEntry struct {
	ID        string    `json:"id"`
	Departure string    `json:"departure"` // Display label
	Arrival   string    `json:"arrival"`   // Display label
	Date      string    `json:"date"`      // YYYY-MM-DD
	Timestamp time.Time `json:"timestamp"`
}

// SameRoute reports whether two entries share the (departure, arrival) pair
func (e SearchHistoryEntry) SameRoute(departure, arrival string) bool {
	return e.Departure == departure && e.Arrival == arrival
}
