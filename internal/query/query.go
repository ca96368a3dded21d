// Package query derives filtered, sorted and grouped views of search results.
package query

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/mmcdole/flightdeck/internal/domain"
)

// SortKey selects the result ordering
type SortKey string

const (
	SortNone      SortKey = ""
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortStopsAsc  SortKey = "stops-asc"
)

var sortCycle = []SortKey{SortNone, SortPriceAsc, SortPriceDesc, SortStopsAsc}

// ParseSortKey validates a sort key from config or flags
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(sortCycle, k) {
		return k, nil
	}
	return SortNone, fmt.Errorf("unknown sort %q: %w", s, domain.ErrValidation)
}

// Next returns the following key in UI cycle order
func (k SortKey) Next() SortKey {
	i := slices.Index(sortCycle, k)
	return sortCycle[(i+1)%len(sortCycle)]
}

// Label is the short name shown in the UI
func (k SortKey) Label() string {
	if k == SortNone {
		return "best"
	}
	return string(k)
}

// GroupKey selects how results are bucketed
type GroupKey string

const (
	GroupNone         GroupKey = "none"
	GroupRoute        GroupKey = "route"
	GroupPriceBracket GroupKey = "price-bracket"
)

var groupCycle = []GroupKey{GroupNone, GroupRoute, GroupPriceBracket}

// ParseGroupKey validates a group key; empty means none
func ParseGroupKey(s string) (GroupKey, error) {
	k := GroupKey(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return GroupNone, nil
	}
	if slices.Contains(groupCycle, k) {
		return k, nil
	}
	return GroupNone, fmt.Errorf("unknown grouping %q: %w", s, domain.ErrValidation)
}

// Next returns the following key in UI cycle order
func (k GroupKey) Next() GroupKey {
	i := slices.Index(groupCycle, k)
	return groupCycle[(i+1)%len(groupCycle)]
}

// Price bracket labels
const (
	BracketUnder200 = "Under $200"
	Bracket200to500 = "$200-$500"
	Bracket500to1k  = "$500-$1000"
	BracketOver1k   = "Over $1000"
)

// AllFlightsLabel names the single group produced by GroupNone
const AllFlightsLabel = "All flights"

// Config drives one pipeline run
type Config struct {
	MaxPrice   *float64 // nil means no cap
	DirectOnly bool
	Airlines   []string // empty means any carrier
	Sort       SortKey
	Group      GroupKey
}

// Group is one labeled bucket of results
type Group struct {
	Label   string
	Flights []domain.FlightOffer
}

// Apply runs filter, sort and group in that order
func Apply(flights []domain.FlightOffer, cfg Config) []Group {
	return GroupBy(Sort(Filter(flights, cfg), cfg.Sort), cfg.Group)
}

// Filter keeps offers that pass every configured predicate
func Filter(flights []domain.FlightOffer, cfg Config) []domain.FlightOffer {
	out := make([]domain.FlightOffer, 0, len(flights))
	for _, f := range flights {
		if cfg.MaxPrice != nil && f.Price > *cfg.MaxPrice {
			continue
		}
		if cfg.DirectOnly && !f.IsDirect() {
			continue
		}
		if len(cfg.Airlines) > 0 && !slices.Contains(cfg.Airlines, f.Title) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// unknownStops sorts offers with an unreadable status after all others
const unknownStops = math.MaxInt

func stopsOf(f domain.FlightOffer) int {
	if n, ok := f.Stops(); ok {
		return n
	}
	return unknownStops
}

// Sort returns a stably sorted copy. SortNone keeps provider order.
func Sort(flights []domain.FlightOffer, key SortKey) []domain.FlightOffer {
	out := slices.Clone(flights)
	switch key {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b domain.FlightOffer) int {
			return compareFloat(a.Price, b.Price)
		})
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b domain.FlightOffer) int {
			return compareFloat(b.Price, a.Price)
		})
	case SortStopsAsc:
		slices.SortStableFunc(out, func(a, b domain.FlightOffer) int {
			sa, sb := stopsOf(a), stopsOf(b)
			switch {
			case sa < sb:
				return -1
			case sa > sb:
				return 1
			}
			return 0
		})
	}
	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// PriceBracket returns the bracket label for a price
func PriceBracket(price float64) string {
	switch {
	case price < 200:
		return BracketUnder200
	case price < 500:
		return Bracket200to500
	case price < 1000:
		return Bracket500to1k
	default:
		return BracketOver1k
	}
}

// GroupBy buckets flights, emitting groups in first-occurrence order
func GroupBy(flights []domain.FlightOffer, key GroupKey) []Group {
	var label func(domain.FlightOffer) string
	switch key {
	case GroupRoute:
		label = func(f domain.FlightOffer) string { return f.Route }
	case GroupPriceBracket:
		label = func(f domain.FlightOffer) string { return PriceBracket(f.Price) }
	default:
		return []Group{{Label: AllFlightsLabel, Flights: slices.Clone(flights)}}
	}

	var groups []Group
	index := make(map[string]int)
	for _, f := range flights {
		l := label(f)
		i, ok := index[l]
		if !ok {
			i = len(groups)
			index[l] = i
			groups = append(groups, Group{Label: l})
		}
		groups[i].Flights = append(groups[i].Flights, f)
	}
	return groups
}

// Airlines lists distinct carrier titles in first-seen order
func Airlines(flights []domain.FlightOffer) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range flights {
		if f.Title == "" || seen[f.Title] {
			continue
		}
		seen[f.Title] = true
		out = append(out, f.Title)
	}
	return out
}

// Flatten concatenates grouped flights back into display order
func Flatten(groups []Group) []domain.FlightOffer {
	var out []domain.FlightOffer
	for _, g := range groups {
		out = append(out, g.Flights...)
	}
	return out
}
