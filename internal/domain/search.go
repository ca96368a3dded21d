package domain

import (
	"context"
	"time"
)

// DateLayout is the ISO date format used by providers and cache keys
const DateLayout = "2006-01-02"

// SearchRequest identifies one page of results for a route and date
type SearchRequest struct {
	Departure string // IATA code
	Arrival   string // IATA code
	Date      string // YYYY-MM-DD
	Page      int    // 1-based
}

// Normalized fills defaults: today's date and page 1
func (r SearchRequest) Normalized(now time.Time) SearchRequest {
	if r.Date == "" {
		r.Date = now.Format(DateLayout)
	}
	if r.Page < 1 {
		r.Page = 1
	}
	return r
}

// FlightSearchProvider is the remote flight search backend.
// It returns an empty slice, not an error, when no itineraries are found.
type FlightSearchProvider interface {
	Search(ctx context.Context, req SearchRequest) ([]FlightOffer, error)
}

// Comparer produces a text comparison of two flights.
// It never fails; a fallback explanation is returned instead.
type Comparer interface {
	Compare(ctx context.Context, a, b FlightOffer) string
}

// NotificationSink shows transient user feedback (toasts, status lines)
type NotificationSink interface {
	ShowError(message string)
	ShowSuccess(message string)
}
