// Package search runs flight searches through the result cache.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/flightdeck/internal/cache"
	"github.com/mmcdole/flightdeck/internal/domain"
	"github.com/mmcdole/flightdeck/internal/history"
)

// HistoryRecorder is the part of the history store the service writes to
type HistoryRecorder interface {
	Record(departure, arrival history.Place, date string) domain.SearchHistoryEntry
}

// Result is one page of search results
type Result struct {
	Request   domain.SearchRequest
	Flights   []domain.FlightOffer
	FromCache bool
}

// Service looks up result pages, calling the provider only on cache miss
type Service struct {
	provider domain.FlightSearchProvider
	cache    *cache.ResultCache
	history  HistoryRecorder
	logger   *slog.Logger

	now   func() time.Time
	place func(code string) history.Place
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now for the default search date
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPlaceLookup maps an airport code to the label recorded in history
func WithPlaceLookup(fn func(code string) history.Place) Option {
	return func(s *Service) {
		if fn != nil {
			s.place = fn
		}
	}
}

// NewService creates a search service. history may be nil.
func NewService(provider domain.FlightSearchProvider, results *cache.ResultCache, recorder HistoryRecorder, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if results == nil {
		results = cache.New()
	}
	s := &Service{
		provider: provider,
		cache:    results,
		history:  recorder,
		logger:   logger,
		now:      time.Now,
		place:    func(code string) history.Place { return history.Text(code) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Normalize validates a request and fills its defaults
func (s *Service) Normalize(req domain.SearchRequest) (domain.SearchRequest, error) {
	req.Departure = strings.ToUpper(strings.TrimSpace(req.Departure))
	req.Arrival = strings.ToUpper(strings.TrimSpace(req.Arrival))
	req.Date = strings.TrimSpace(req.Date)
	if req.Departure == "" || req.Arrival == "" {
		return req, fmt.Errorf("departure and arrival are required: %w", domain.ErrValidation)
	}
	req = req.Normalized(s.now())
	if _, err := time.Parse(domain.DateLayout, req.Date); err != nil {
		return req, fmt.Errorf("date %q is not YYYY-MM-DD: %w", req.Date, domain.ErrValidation)
	}
	return req, nil
}

// Search returns one page of results. Provider failures are returned
// wrapped in domain.ErrTransport and are not retried here.
func (s *Service) Search(ctx context.Context, req domain.SearchRequest) (Result, error) {
	req, err := s.Normalize(req)
	if err != nil {
		return Result{}, err
	}

	key := cache.KeyFor(req)
	if flights, ok := s.cache.Get(key); ok {
		s.logger.Debug("Search cache hit", "key", key.String())
		return Result{Request: req, Flights: flights, FromCache: true}, nil
	}

	flights, err := s.provider.Search(ctx, req)
	if err != nil {
		s.logger.Warn("Flight search failed", "key", key.String(), "error", err)
		if !errors.Is(err, domain.ErrTransport) {
			err = fmt.Errorf("%w: %w", domain.ErrTransport, err)
		}
		return Result{Request: req}, err
	}
	if flights == nil {
		flights = []domain.FlightOffer{}
	}

	s.cache.Set(key, flights)
	if s.history != nil && req.Page == 1 {
		s.history.Record(s.place(req.Departure), s.place(req.Arrival), req.Date)
	}

	s.logger.Info("Flight search complete",
		"route", req.Departure+"-"+req.Arrival, "page", req.Page, "count", len(flights))
	return Result{Request: req, Flights: flights}, nil
}

// ClearCache drops every cached page
func (s *Service) ClearCache() {
	s.cache.Clear()
}
