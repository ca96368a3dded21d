// Package rapidapi searches flights through the google-flights2 RapidAPI service.
package rapidapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/flightdeck/internal/domain"
)

const (
	DefaultBaseURL = "https://google-flights2.p.rapidapi.com"
	DefaultHost    = "google-flights2.p.rapidapi.com"
	searchPath     = "/api/v1/searchFlights"
)

var (
	// ErrAuthRequired indicates a missing or rejected API key
	ErrAuthRequired = errors.New("rapidapi key missing or rejected")

	// ErrRateLimited indicates the API answered 429
	ErrRateLimited = errors.New("rapidapi rate limit exceeded")

	errTransient = errors.New("transient failure")
)

// Client implements domain.FlightSearchProvider
type Client struct {
	baseURL string
	host    string
	apiKey  string
	retries int
	backoff time.Duration
	http    *http.Client
	logger  *slog.Logger
}

var _ domain.FlightSearchProvider = (*Client)(nil)

// Config configures a Client
type Config struct {
	BaseURL string
	Host    string
	APIKey  string
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

// NewClient creates a search client. A nil httpClient gets one with the
// configured timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 400 * time.Millisecond
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		host:    cfg.Host,
		apiKey:  cfg.APIKey,
		retries: cfg.Retries,
		backoff: cfg.Backoff,
		http:    httpClient,
		logger:  logger,
	}
}

// Search fetches one page of itineraries. A response without itineraries
// yields an empty list; transport failures wrap domain.ErrTransport.
func (c *Client) Search(ctx context.Context, req domain.SearchRequest) ([]domain.FlightOffer, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: %w: set FLIGHTDECK_PROVIDER_API_KEY or run setup", domain.ErrTransport, ErrAuthRequired)
	}

	body, err := c.fetchWithRetry(ctx, c.searchURL(req))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}

	flights, err := ParseFlights(body, req.Page)
	if err != nil {
		c.logger.Warn("Unusable search response", "route", req.Departure+"-"+req.Arrival, "page", req.Page, "error", err)
		return []domain.FlightOffer{}, nil
	}
	return flights, nil
}

func (c *Client) searchURL(req domain.SearchRequest) string {
	page := req.Page
	if page < 1 {
		page = 1
	}
	v := url.Values{}
	v.Set("departure_id", req.Departure)
	v.Set("arrival_id", req.Arrival)
	v.Set("outbound_date", req.Date)
	v.Set("travel_class", "ECONOMY")
	v.Set("adults", "1")
	v.Set("show_hidden", "0")
	v.Set("currency", "USD")
	v.Set("language_code", "en-US")
	v.Set("country_code", "US")
	v.Set("search_type", "best")
	v.Set("page", strconv.Itoa(page))
	return c.baseURL + searchPath + "?" + v.Encode()
}

func (c *Client) fetchWithRetry(ctx context.Context, endpoint string) ([]byte, error) {
	attempts := c.retries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		body, err := c.fetchOnce(ctx, endpoint)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !isRetryable(err) || attempt == attempts-1 {
			break
		}
		c.logger.Debug("Retrying search request", "attempt", attempt+1, "error", err)
		select {
		case <-time.After(c.retryDelay(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)

	resp, err := c.http.Do(req)
	if err != nil {
		if isNetworkTransient(err) {
			return nil, fmt.Errorf("%w: %v", errTransient, err)
		}
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		msg := strings.TrimSpace(string(body))
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("%w: %s: %s", ErrAuthRequired, resp.Status, msg)
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, fmt.Errorf("%w: %s: %s", ErrRateLimited, resp.Status, msg)
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: %s: %s", errTransient, resp.Status, msg)
		default:
			return nil, fmt.Errorf("search request failed: %s: %s", resp.Status, msg)
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	return body, nil
}

func isRetryable(err error) bool {
	return errors.Is(err, errTransient) || errors.Is(err, ErrRateLimited)
}

func isNetworkTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, io.EOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (c *Client) retryDelay(attempt int) time.Duration {
	shift := attempt
	if shift > 5 {
		shift = 5
	}
	return c.backoff * time.Duration(1<<shift)
}
