// Package airport holds the selectable airports and fuzzy lookup over them.
package airport

import (
	"fmt"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/flightdeck/internal/domain"
	"github.com/mmcdole/flightdeck/internal/history"
)

var defaultAirports = []domain.Airport{
	{ID: "ATL", Name: "Hartsfield–Jackson Atlanta International Airport"},
	{ID: "LAX", Name: "Los Angeles International Airport"},
	{ID: "ORD", Name: "O'Hare International Airport"},
	{ID: "DFW", Name: "Dallas/Fort Worth International Airport"},
	{ID: "DEN", Name: "Denver International Airport"},
	{ID: "JFK", Name: "John F. Kennedy International Airport"},
	{ID: "SFO", Name: "San Francisco International Airport"},
	{ID: "SEA", Name: "Seattle–Tacoma International Airport"},
	{ID: "LAS", Name: "Harry Reid International Airport"},
	{ID: "MIA", Name: "Miami International Airport"},
}

// Match is a picker result with the matched character positions of its
// display string, for highlighting.
type Match struct {
	Airport        domain.Airport
	MatchedIndexes []int
}

// Catalog implements sahilm/fuzzy.Source over "Name (CODE)" strings
type Catalog struct {
	airports []domain.Airport
	lower    []string
}

// String returns the lowercase display string at index i (fuzzy.Source)
func (c *Catalog) String(i int) string { return c.lower[i] }

// Len returns the number of airports (fuzzy.Source)
func (c *Catalog) Len() int { return len(c.airports) }

// Default returns the built-in catalog
func Default() *Catalog {
	return NewCatalog(defaultAirports)
}

// NewCatalog indexes airports for lookup
func NewCatalog(airports []domain.Airport) *Catalog {
	c := &Catalog{
		airports: append([]domain.Airport(nil), airports...),
		lower:    make([]string, len(airports)),
	}
	for i, a := range airports {
		c.lower[i] = strings.ToLower(a.Display())
	}
	return c
}

// All returns every airport in catalog order
func (c *Catalog) All() []domain.Airport {
	return append([]domain.Airport(nil), c.airports...)
}

// Search returns picker matches, best first. An empty query returns the
// whole catalog.
func (c *Catalog) Search(query string) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]Match, len(c.airports))
		for i, a := range c.airports {
			out[i] = Match{Airport: a}
		}
		return out
	}

	results := fuzzy.FindFrom(query, c)
	out := make([]Match, len(results))
	for i, r := range results {
		out[i] = Match{Airport: c.airports[r.Index], MatchedIndexes: r.MatchedIndexes}
	}
	return out
}

// Lookup returns the airport with an exact code
func (c *Catalog) Lookup(code string) (domain.Airport, bool) {
	code = strings.TrimSpace(code)
	for _, a := range c.airports {
		if strings.EqualFold(a.ID, code) {
			return a, true
		}
	}
	return domain.Airport{}, false
}

// Place returns the history label source for code: the catalog airport when
// known, otherwise the code itself.
func (c *Catalog) Place(code string) history.Place {
	if a, ok := c.Lookup(code); ok {
		return a
	}
	return history.Text(code)
}

// Resolve turns free text into an airport: an exact code first, otherwise
// the closest name.
func (c *Catalog) Resolve(input string) (domain.Airport, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return domain.Airport{}, fmt.Errorf("airport is required: %w", domain.ErrValidation)
	}
	if a, ok := c.Lookup(input); ok {
		return a, nil
	}

	query := strings.ToLower(input)
	ranks := lfuzzy.RankFindFold(query, c.lower)
	if len(ranks) == 0 {
		return domain.Airport{}, fmt.Errorf("no airport matches %q: %w", input, domain.ErrValidation)
	}

	best, bestScore := -1, 0
	for _, r := range ranks {
		score := matchScore(c.lower[r.OriginalIndex], query)
		if best < 0 || score < bestScore {
			best, bestScore = r.OriginalIndex, score
		}
	}
	return c.airports[best], nil
}

// matchScore ranks a candidate, lower is better
func matchScore(candidate, query string) int {
	if candidate == query {
		return 0
	}
	if strings.HasPrefix(candidate, query) {
		return 10
	}
	if strings.Contains(candidate, query) {
		return 50
	}
	return 100 + lfuzzy.LevenshteinDistance(query, candidate)
}
