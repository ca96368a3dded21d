package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mmcdole/flightdeck/internal/adapter"
	"github.com/mmcdole/flightdeck/internal/domain"
)

func TestCompare(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("missing bearer token")
		}
		var req struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != DefaultModel || req.Temperature != 0.7 || len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected request: %+v", req)
		}
		if !strings.Contains(req.Messages[0].Content, `"flight_number": "UA 1"`) {
			t.Errorf("prompt missing flight A: %s", req.Messages[0].Content)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"gpt-4.1-mini","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Take flight A."}}]}`))
	}))
	defer srv.Close()

	c := NewComparer(srv.URL, "k", "", srv.Client(), adapter.NullLogger())
	got := c.Compare(context.Background(),
		domain.FlightOffer{ID: "a", FlightNumber: "UA 1"},
		domain.FlightOffer{ID: "b", FlightNumber: "DL 2"})
	if got != "Take flight A." {
		t.Fatalf("unexpected comparison %q", got)
	}
}

func TestCompareFallbacks(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"no choices": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[]}`))
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{`))
		},
	}
	for name, handler := range cases {
		srv := httptest.NewServer(handler)
		c := NewComparer(srv.URL, "k", "", srv.Client(), adapter.NullLogger())
		got := c.Compare(context.Background(), domain.FlightOffer{ID: "a"}, domain.FlightOffer{ID: "b"})
		srv.Close()
		if got != FallbackMessage {
			t.Fatalf("%s: expected fallback, got %q", name, got)
		}
	}
}

func TestCompareDoesNotRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewComparer(srv.URL+"/", "k", "", srv.Client(), adapter.NullLogger())
	if got := c.Compare(context.Background(), domain.FlightOffer{ID: "a"}, domain.FlightOffer{ID: "b"}); got != FallbackMessage {
		t.Fatalf("expected fallback, got %q", got)
	}
	if calls != 1 {
		t.Fatalf("expected a single request, got %d", calls)
	}
}

func TestCompareWithoutKey(t *testing.T) {
	c := NewComparer("http://127.0.0.1:0", "", "", nil, adapter.NullLogger())
	if got := c.Compare(context.Background(), domain.FlightOffer{}, domain.FlightOffer{}); got != FallbackMessage {
		t.Fatalf("expected fallback, got %q", got)
	}
}
