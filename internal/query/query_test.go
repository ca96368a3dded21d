package query

import (
	"errors"
	"testing"

	"github.com/mmcdole/flightdeck/internal/domain"
)

func offer(id string, price float64, status, title, route string) domain.FlightOffer {
	return domain.FlightOffer{ID: id, Price: price, Status: status, Title: title, Route: route}
}

func idsOf(flights []domain.FlightOffer) string {
	s := ""
	for _, f := range flights {
		s += f.ID
	}
	return s
}

func TestFilterMaxPrice(t *testing.T) {
	max := 500.0
	got := Filter([]domain.FlightOffer{{ID: "a", Price: 100}, {ID: "b", Price: 600}}, Config{MaxPrice: &max})
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected only the $100 offer, got %+v", got)
	}
}

func TestFilterMaxPriceInclusive(t *testing.T) {
	max := 500.0
	got := Filter([]domain.FlightOffer{{ID: "a", Price: 500}}, Config{MaxPrice: &max})
	if len(got) != 1 {
		t.Fatalf("price equal to cap must pass")
	}
}

func TestFilterDirectAndAirlines(t *testing.T) {
	flights := []domain.FlightOffer{
		offer("a", 100, "Direct", "United", "SFO → JFK"),
		offer("b", 100, "1 Stop", "United", "SFO → JFK"),
		offer("c", 100, "Direct", "Delta", "SFO → JFK"),
	}
	got := Filter(flights, Config{DirectOnly: true, Airlines: []string{"United"}})
	if idsOf(got) != "a" {
		t.Fatalf("unexpected filter result %q", idsOf(got))
	}
}

func TestSortPrice(t *testing.T) {
	flights := []domain.FlightOffer{
		{ID: "a", Price: 300},
		{ID: "b", Price: 100},
		{ID: "c", Price: 300},
		{ID: "d", Price: 200},
	}
	if got := idsOf(Sort(flights, SortPriceAsc)); got != "bdac" {
		t.Fatalf("price-asc: got %q", got)
	}
	if got := idsOf(Sort(flights, SortPriceDesc)); got != "acdb" {
		t.Fatalf("price-desc: got %q", got)
	}
	if got := idsOf(Sort(flights, SortNone)); got != "abcd" {
		t.Fatalf("no sort must keep provider order, got %q", got)
	}
	if idsOf(flights) != "abcd" {
		t.Fatalf("sort mutated its input")
	}
}

func TestSortStopsUnparsableLast(t *testing.T) {
	flights := []domain.FlightOffer{
		{ID: "a", Status: "???"},
		{ID: "b", Status: "2 Stops"},
		{ID: "c", Status: "Direct"},
		{ID: "d", Status: "1 Stop"},
		{ID: "e", Status: "Direct"},
	}
	if got := idsOf(Sort(flights, SortStopsAsc)); got != "cedba" {
		t.Fatalf("stops-asc: got %q", got)
	}
}

func TestGroupPriceBracket(t *testing.T) {
	flights := []domain.FlightOffer{
		{ID: "a", Price: 999},
		{ID: "b", Price: 150},
		{ID: "c", Price: 1500},
		{ID: "d", Price: 200},
		{ID: "e", Price: 500},
		{ID: "f", Price: 700},
	}
	groups := GroupBy(flights, GroupPriceBracket)

	want := []struct {
		label string
		ids   string
	}{
		{Bracket500to1k, "aef"},
		{BracketUnder200, "b"},
		{BracketOver1k, "c"},
		{Bracket200to500, "d"},
	}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(groups))
	}
	for i, w := range want {
		if groups[i].Label != w.label || idsOf(groups[i].Flights) != w.ids {
			t.Fatalf("group %d: got %s/%s, want %s/%s",
				i, groups[i].Label, idsOf(groups[i].Flights), w.label, w.ids)
		}
	}
}

func TestGroupRoute(t *testing.T) {
	flights := []domain.FlightOffer{
		offer("a", 1, "", "", "SFO → JFK"),
		offer("b", 1, "", "", "LAX → JFK"),
		offer("c", 1, "", "", "SFO → JFK"),
	}
	groups := GroupBy(flights, GroupRoute)
	if len(groups) != 2 || groups[0].Label != "SFO → JFK" || idsOf(groups[0].Flights) != "ac" {
		t.Fatalf("unexpected route groups: %+v", groups)
	}
}

func TestGroupNoneAlwaysOneGroup(t *testing.T) {
	groups := GroupBy(nil, GroupNone)
	if len(groups) != 1 || groups[0].Label != AllFlightsLabel || len(groups[0].Flights) != 0 {
		t.Fatalf("unexpected groups for empty input: %+v", groups)
	}
}

func TestApply(t *testing.T) {
	max := 1000.0
	flights := []domain.FlightOffer{
		offer("a", 1200, "Direct", "United", "SFO → JFK"),
		offer("b", 450, "1 Stop", "United", "SFO → JFK"),
		offer("c", 150, "Direct", "Delta", "SFO → JFK"),
		offer("d", 250, "Direct", "Alaska", "SFO → JFK"),
	}
	groups := Apply(flights, Config{MaxPrice: &max, DirectOnly: true, Sort: SortPriceDesc, Group: GroupPriceBracket})
	if len(groups) != 2 || groups[0].Label != Bracket200to500 || groups[1].Label != BracketUnder200 {
		t.Fatalf("unexpected groups: %+v", groups)
	}
	if got := idsOf(Flatten(groups)); got != "dc" {
		t.Fatalf("unexpected order %q", got)
	}
}

func TestParseKeys(t *testing.T) {
	if k, err := ParseSortKey("PRICE-ASC"); err != nil || k != SortPriceAsc {
		t.Fatalf("expected price-asc, got %q err=%v", k, err)
	}
	if _, err := ParseSortKey("cheapest"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if k, err := ParseGroupKey(""); err != nil || k != GroupNone {
		t.Fatalf("empty group should be none, got %q err=%v", k, err)
	}
	if _, err := ParseGroupKey("carrier"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNextCycles(t *testing.T) {
	if SortStopsAsc.Next() != SortNone {
		t.Fatalf("sort cycle should wrap")
	}
	if GroupNone.Next() != GroupRoute || GroupPriceBracket.Next() != GroupNone {
		t.Fatalf("unexpected group cycle")
	}
}

func TestAirlines(t *testing.T) {
	got := Airlines([]domain.FlightOffer{{Title: "United"}, {Title: "Delta"}, {Title: "United"}, {}})
	if len(got) != 2 || got[0] != "United" || got[1] != "Delta" {
		t.Fatalf("unexpected airlines: %v", got)
	}
}
