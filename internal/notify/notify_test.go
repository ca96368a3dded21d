package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mmcdole/flightdeck/internal/domain"
)

type recordingSink struct {
	errors, successes []string
}

func (r *recordingSink) ShowError(m string)   { r.errors = append(r.errors, m) }
func (r *recordingSink) ShowSuccess(m string) { r.successes = append(r.successes, m) }

func TestTerminal(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTerminal(&buf)
	sink.ShowError("search failed")
	sink.ShowSuccess("saved")

	out := buf.String()
	if !strings.Contains(out, "search failed") || !strings.Contains(out, "saved") {
		t.Fatalf("unexpected output %q", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected one line per message, got %q", out)
	}
}

func TestMultiAndAlerts(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	alert := domain.PriceAlert{
		FlightID:    "f1",
		Flight:      domain.FlightOffer{Title: "United", Route: "SFO → JFK"},
		TargetPrice: 300,
	}
	Alerts(Multi{a, b}, []domain.PriceAlert{alert}, map[string]float64{"f1": 250})

	want := "Price alert: United SFO → JFK is now $250 (target $300)"
	if len(a.successes) != 1 || a.successes[0] != want || len(b.successes) != 1 {
		t.Fatalf("unexpected messages %v / %v", a.successes, b.successes)
	}
}
