package compare

import (
	"context"
	"testing"

	"github.com/mmcdole/flightdeck/internal/adapter"
	"github.com/mmcdole/flightdeck/internal/domain"
)

type staticSelection []domain.FlightOffer

func (s staticSelection) Selected() []domain.FlightOffer { return s }

type fakeComparer struct {
	calls int
}

func (c *fakeComparer) Compare(ctx context.Context, a, b domain.FlightOffer) string {
	c.calls++
	return a.ID + " vs " + b.ID
}

func TestRows(t *testing.T) {
	a := &domain.FlightOffer{
		Title: "United", FlightNumber: "UA 123", Route: "SFO → JFK",
		Duration: "5 hr 30 min", Price: 420, Status: "Direct", Aircraft: "Boeing 777",
	}
	rows := Rows(a, nil)
	if len(rows) != 9 {
		t.Fatalf("expected 9 rows, got %d", len(rows))
	}

	byLabel := make(map[string]Row)
	for _, r := range rows {
		byLabel[r.Label] = r
	}
	if byLabel["Price"].A != "$420" {
		t.Fatalf("unexpected price cell %q", byLabel["Price"].A)
	}
	if byLabel["Stops"].A != "Direct" {
		t.Fatalf("unexpected stops cell %q", byLabel["Stops"].A)
	}
	if byLabel["Seat"].A != NotAvailable {
		t.Fatalf("empty field should render N/A, got %q", byLabel["Seat"].A)
	}
	for _, r := range rows {
		if r.B != NotAvailable {
			t.Fatalf("missing flight should render N/A, got %q for %s", r.B, r.Label)
		}
	}
}

func TestCompareSelectedNeedsTwo(t *testing.T) {
	c := &fakeComparer{}
	svc := NewService(staticSelection{{ID: "a"}}, c, adapter.NullLogger())
	if got := svc.CompareSelected(context.Background()); got != NeedTwoMessage {
		t.Fatalf("unexpected message %q", got)
	}
	if c.calls != 0 {
		t.Fatalf("comparer must not be called with one flight")
	}
}

func TestCompareSelected(t *testing.T) {
	c := &fakeComparer{}
	selected := staticSelection{{ID: "a", Title: "United"}, {ID: "b", Title: "Delta"}}
	svc := NewService(selected, c, adapter.NullLogger())
	if got := svc.CompareSelected(context.Background()); got != "a vs b" {
		t.Fatalf("unexpected comparison %q", got)
	}
	if rows := svc.Table(); rows[0].A != "United" || rows[0].B != "Delta" {
		t.Fatalf("unexpected airline row: %+v", rows[0])
	}
}

func TestCompareUsesGivenFlights(t *testing.T) {
	c := &fakeComparer{}
	svc := NewService(staticSelection{{ID: "x"}, {ID: "y"}}, c, adapter.NullLogger())
	if got := svc.Compare(context.Background(), []domain.FlightOffer{{ID: "a"}, {ID: "b"}}); got != "a vs b" {
		t.Fatalf("unexpected comparison %q", got)
	}
	if got := svc.Compare(context.Background(), []domain.FlightOffer{{ID: "a"}}); got != NeedTwoMessage {
		t.Fatalf("unexpected message %q", got)
	}
	if c.calls != 1 {
		t.Fatalf("expected one comparer call, got %d", c.calls)
	}
}
