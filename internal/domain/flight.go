package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// StatusDirect is the status string for a nonstop itinerary
const StatusDirect = "Direct"

// FlightOffer is one normalized itinerary option from a search provider.
// Values are treated as immutable once built by a provider adapter.
type FlightOffer struct {
	ID       string  `json:"id"`       // Unique within one result batch
	Title    string  `json:"title"`    // Carrier name
	Route    string  `json:"route"`    // "SFO → JFK"
	Duration string  `json:"duration"` // Provider display text, e.g. "5 hr 30 min"
	Price    float64 `json:"price"`    // Non-negative
	Status   string  `json:"status"`   // "Direct" or "<n> Stop"

	// Optional descriptive fields (empty when the provider omits them)
	FlightNumber string   `json:"flight_number"`
	Aircraft     string   `json:"aircraft"`
	Seat         string   `json:"seat"`
	Legroom      string   `json:"legroom"`
	AirlineLogo  string   `json:"airlineLogo"`
	Extensions   []string `json:"extensions,omitempty"`
}

// StopsStatus returns the status string for a stop count
func StopsStatus(stops int) string {
	if stops <= 0 {
		return StatusDirect
	}
	return fmt.Sprintf("%d Stop", stops)
}

// Stops parses the stop count out of Status.
// "Direct" is 0; "2 Stop" and "2 Stops" are 2. ok is false when unparsable.
func (f FlightOffer) Stops() (int, bool) {
	status := strings.TrimSpace(f.Status)
	if status == StatusDirect {
		return 0, true
	}
	fields := strings.Fields(status)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// IsDirect reports whether the offer is nonstop
func (f FlightOffer) IsDirect() bool {
	return f.Status == StatusDirect
}

// FormattedPrice returns the price as shown in lists, e.g. "$420"
func (f FlightOffer) FormattedPrice() string {
	if f.Price == float64(int64(f.Price)) {
		return fmt.Sprintf("$%d", int64(f.Price))
	}
	return fmt.Sprintf("$%.2f", f.Price)
}

// ContainsFlight reports whether flights holds an offer with the given ID
func ContainsFlight(flights []FlightOffer, id string) bool {
	for _, f := range flights {
		if f.ID == id {
			return true
		}
	}
	return false
}
