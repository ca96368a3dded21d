package search

import (
	"context"
	"errors"
	"sync"

	"github.com/mmcdole/flightdeck/internal/domain"
)

// ErrSuperseded is returned when a response arrives for a search context
// that has since been replaced. The feed is left unchanged.
var ErrSuperseded = errors.New("search superseded by a newer request")

// Feed is the accumulated result list for one screen. Every Load starts a
// new generation; responses from older generations are discarded.
type Feed struct {
	svc *Service

	mu      sync.Mutex
	gen     uint64
	req     domain.SearchRequest
	flights []domain.FlightOffer
	hasMore bool
}

// NewFeed creates an empty feed
func NewFeed(svc *Service) *Feed {
	return &Feed{svc: svc}
}

// Load starts a new search context at page 1
func (f *Feed) Load(ctx context.Context, req domain.SearchRequest) (Result, error) {
	req.Page = 1

	f.mu.Lock()
	f.gen++
	gen := f.gen
	f.mu.Unlock()

	res, err := f.svc.Search(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return Result{}, ErrSuperseded
	}
	if err != nil {
		return res, err
	}
	f.req = res.Request
	f.flights = append([]domain.FlightOffer(nil), res.Flights...)
	f.hasMore = len(res.Flights) > 0
	return res, nil
}

// LoadMore fetches the next page and appends it. An empty page ends the
// feed. It is a no-op when nothing more is available.
func (f *Feed) LoadMore(ctx context.Context) (Result, error) {
	f.mu.Lock()
	if !f.hasMore || f.req.Departure == "" {
		f.mu.Unlock()
		return Result{}, nil
	}
	gen := f.gen
	prevPage := f.req.Page
	next := f.req
	next.Page++
	f.mu.Unlock()

	res, err := f.svc.Search(ctx, next)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen || f.req.Page != prevPage {
		return Result{}, ErrSuperseded
	}
	if err != nil {
		return res, err
	}
	f.req.Page = next.Page
	if len(res.Flights) == 0 {
		f.hasMore = false
		return res, nil
	}
	f.flights = append(f.flights, res.Flights...)
	return res, nil
}

// Flights returns the accumulated results
func (f *Feed) Flights() []domain.FlightOffer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.FlightOffer(nil), f.flights...)
}

// HasMore reports whether LoadMore may return more results
func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

// Request returns the request of the last page loaded
func (f *Feed) Request() domain.SearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.req
}
