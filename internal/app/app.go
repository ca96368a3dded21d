// Package app wires configuration, storage and services together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/flightdeck/internal/adapter"
	"github.com/mmcdole/flightdeck/internal/adapter/openai"
	"github.com/mmcdole/flightdeck/internal/adapter/rapidapi"
	"github.com/mmcdole/flightdeck/internal/airport"
	"github.com/mmcdole/flightdeck/internal/alerts"
	"github.com/mmcdole/flightdeck/internal/cache"
	"github.com/mmcdole/flightdeck/internal/compare"
	"github.com/mmcdole/flightdeck/internal/domain"
	"github.com/mmcdole/flightdeck/internal/history"
	"github.com/mmcdole/flightdeck/internal/query"
	"github.com/mmcdole/flightdeck/internal/search"
	"github.com/mmcdole/flightdeck/internal/selection"
	"github.com/mmcdole/flightdeck/internal/store"
)

// App holds the long-lived services shared by every front end
type App struct {
	Config *adapter.Config
	Logger *slog.Logger

	Selection *selection.Store
	Alerts    *alerts.Store
	History   *history.Store
	Airports  *airport.Catalog
	Search    *search.Service
	Compare   *compare.Service

	// Pipeline defaults from config
	DefaultSort  query.SortKey
	DefaultGroup query.GroupKey

	kv domain.KeyValueStore
}

type options struct {
	kv       domain.KeyValueStore
	provider domain.FlightSearchProvider
	comparer domain.Comparer
}

// Option overrides a collaborator (tests, alternate back ends)
type Option func(*options)

// WithStore uses kv instead of opening the configured store
func WithStore(kv domain.KeyValueStore) Option {
	return func(o *options) { o.kv = kv }
}

// WithProvider replaces the RapidAPI client
func WithProvider(p domain.FlightSearchProvider) Option {
	return func(o *options) { o.provider = p }
}

// WithComparer replaces the OpenAI comparer
func WithComparer(c domain.Comparer) Option {
	return func(o *options) { o.comparer = c }
}

// New builds the application. Stores start empty; call Hydrate.
func New(cfg *adapter.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	sortKey, err := query.ParseSortKey(cfg.UI.DefaultSort)
	if err != nil {
		return nil, fmt.Errorf("ui.default_sort: %w", err)
	}
	groupKey, err := query.ParseGroupKey(cfg.UI.DefaultGroup)
	if err != nil {
		return nil, fmt.Errorf("ui.default_group: %w", err)
	}

	kv := o.kv
	if kv == nil {
		path, err := adapter.ExpandPath(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		kv, err = store.Open(cfg.Storage.Driver, path)
		if err != nil {
			// The app stays usable without durable state
			logger.Error("Failed to open store, using memory", "driver", cfg.Storage.Driver, "error", err)
			kv = store.NewMemoryStore()
		}
	}

	provider := o.provider
	if provider == nil {
		provider = rapidapi.NewClient(rapidapi.Config{
			BaseURL: cfg.Provider.BaseURL,
			Host:    cfg.Provider.Host,
			APIKey:  cfg.Provider.APIKey,
			Timeout: cfg.Provider.Timeout,
			Retries: cfg.Provider.Retries,
			Backoff: cfg.Provider.Backoff,
		}, nil, logger)
	}
	comparer := o.comparer
	if comparer == nil {
		comparer = openai.NewComparer(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, nil, logger)
	}

	airports := airport.Default()
	sel := selection.New(kv, logger)
	hist := history.New(kv, logger)
	results := cache.New(
		cache.WithTTL(cfg.Cache.TTL),
		cache.WithMaxEntries(cfg.Cache.MaxEntries),
	)

	return &App{
		Config:       cfg,
		Logger:       logger,
		Selection:    sel,
		Alerts:       alerts.New(kv, logger),
		History:      hist,
		Airports:     airports,
		Search:       search.NewService(provider, results, hist, logger, search.WithPlaceLookup(airports.Place)),
		Compare:      compare.NewService(sel, comparer, logger),
		DefaultSort:  sortKey,
		DefaultGroup: groupKey,
		kv:           kv,
	}, nil
}

// Hydrate loads every persisted store concurrently
func (a *App) Hydrate(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Selection.Hydrate(gctx) })
	g.Go(func() error { return a.Alerts.Hydrate(gctx) })
	g.Go(func() error { return a.History.Hydrate(gctx) })
	return g.Wait()
}

// Degraded reports whether any store fell back to memory-only mode
func (a *App) Degraded() bool {
	return a.Selection.Degraded() || a.Alerts.Degraded() || a.History.Degraded()
}

// QueryConfig returns a pipeline config seeded with the configured defaults
func (a *App) QueryConfig() query.Config {
	return query.Config{Sort: a.DefaultSort, Group: a.DefaultGroup}
}

// Close drains pending writes and closes the store
func (a *App) Close(ctx context.Context) error {
	errs := []error{
		a.Selection.Close(ctx),
		a.Alerts.Close(ctx),
		a.History.Close(ctx),
	}
	errs = append(errs, a.kv.Close())
	return errors.Join(errs...)
}
