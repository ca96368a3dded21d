package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mmcdole/flightdeck/internal/adapter"
)

const searchBody = `{
  "status": true,
  "data": {"itineraries": {"topFlights": [
    {"price": 420, "stops": 0, "duration": {"text": "5 hr 30 min"},
     "flights": [{"airline": "United", "flight_number": "UA 123",
       "departure_airport": {"airport_code": "SFO"}, "arrival_airport": {"airport_code": "JFK"}}]},
    {"price": 180, "stops": 1, "duration": {"text": "8 hr"},
     "flights": [{"airline": "Delta", "departure_airport": {"airport_code": "SFO"}, "arrival_airport": {"airport_code": "ATL"}},
                 {"airline": "Delta", "departure_airport": {"airport_code": "ATL"}, "arrival_airport": {"airport_code": "JFK"}}]}
  ]}}
}`

func testConfig(t *testing.T, url string) *adapter.Config {
	t.Helper()
	cfg := adapter.DefaultConfig()
	cfg.Provider.BaseURL = url
	cfg.Provider.APIKey = "k"
	cfg.Storage.Driver = "memory"
	return cfg
}

func searchServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchBody))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunSearchJSON(t *testing.T) {
	srv := searchServer(t)
	var out bytes.Buffer
	err := runSearch(testConfig(t, srv.URL), adapter.NullLogger(),
		[]string{"--from", "sfo", "--to", "Kennedy", "--date", "2026-06-10", "--sort", "price-asc", "--json"}, &out)
	if err != nil {
		t.Fatalf("runSearch: %v", err)
	}

	var doc searchOutput
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if doc.Departure != "SFO" || doc.Arrival != "JFK" || doc.Page != 1 {
		t.Errorf("request = %+v", doc)
	}
	if len(doc.Groups) != 1 || len(doc.Groups[0].Flights) != 2 {
		t.Fatalf("groups = %+v", doc.Groups)
	}
	if got := doc.Groups[0].Flights[0].Title; got != "Delta" {
		t.Errorf("first flight = %s, want cheapest (Delta)", got)
	}
}

func TestRunSearchFilters(t *testing.T) {
	srv := searchServer(t)
	var out bytes.Buffer
	err := runSearch(testConfig(t, srv.URL), adapter.NullLogger(),
		[]string{"--from", "SFO", "--to", "JFK", "--date", "2026-06-10", "--direct", "--group", "price-bracket"}, &out)
	if err != nil {
		t.Fatalf("runSearch: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "United") || strings.Contains(text, "Delta") {
		t.Errorf("direct filter not applied:\n%s", text)
	}
	if !strings.Contains(text, "$200-$500 (1)") {
		t.Errorf("missing price bracket header:\n%s", text)
	}
}

func TestRunSearchRejectsBadInput(t *testing.T) {
	srv := searchServer(t)
	cfg := testConfig(t, srv.URL)

	cases := [][]string{
		{"--from", "SFO", "--to", "Boston"},
		{"--from", "SFO", "--to", "JFK", "--sort", "cheapest"},
		{"--from", "SFO", "--to", "JFK", "--date", "June 10"},
	}
	for _, args := range cases {
		if err := runSearch(cfg, adapter.NullLogger(), args, &bytes.Buffer{}); err == nil {
			t.Errorf("runSearch(%v) succeeded, want error", args)
		}
	}
}

func TestRunSearchRequiresKey(t *testing.T) {
	cfg := adapter.DefaultConfig()
	cfg.Storage.Driver = "memory"
	err := runSearch(cfg, adapter.NullLogger(), []string{"--from", "SFO", "--to", "JFK"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "setup") {
		t.Errorf("err = %v, want setup hint", err)
	}
}
