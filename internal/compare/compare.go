// Package compare builds the side-by-side view of two selected flights.
package compare

import (
	"context"
	"log/slog"

	"github.com/mmcdole/flightdeck/internal/domain"
)

// NotAvailable fills cells with no value
const NotAvailable = "N/A"

// NeedTwoMessage is shown when fewer than two flights are selected
const NeedTwoMessage = "Please select two flights to compare."

// Row is one metric across both flights
type Row struct {
	Label string
	A     string
	B     string
}

type metric struct {
	label string
	value func(domain.FlightOffer) string
}

var metrics = []metric{
	{"Airline", func(f domain.FlightOffer) string { return f.Title }},
	{"Flight #", func(f domain.FlightOffer) string { return f.FlightNumber }},
	{"Route", func(f domain.FlightOffer) string { return f.Route }},
	{"Duration", func(f domain.FlightOffer) string { return f.Duration }},
	{"Price", func(f domain.FlightOffer) string { return f.FormattedPrice() }},
	{"Stops", func(f domain.FlightOffer) string { return f.Status }},
	{"Aircraft", func(f domain.FlightOffer) string { return f.Aircraft }},
	{"Seat", func(f domain.FlightOffer) string { return f.Seat }},
	{"Legroom", func(f domain.FlightOffer) string { return f.Legroom }},
}

// Rows returns the metric grid. A nil flight shows N/A in its column.
func Rows(a, b *domain.FlightOffer) []Row {
	rows := make([]Row, len(metrics))
	for i, m := range metrics {
		rows[i] = Row{Label: m.label, A: cell(a, m), B: cell(b, m)}
	}
	return rows
}

func cell(f *domain.FlightOffer, m metric) string {
	if f == nil {
		return NotAvailable
	}
	if v := m.value(*f); v != "" {
		return v
	}
	return NotAvailable
}

// SelectionSource exposes the current comparison basket
type SelectionSource interface {
	Selected() []domain.FlightOffer
}

// Service compares the flights in the current selection
type Service struct {
	selection SelectionSource
	comparer  domain.Comparer
	logger    *slog.Logger
}

// NewService creates a comparison service
func NewService(selection SelectionSource, comparer domain.Comparer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		selection: selection,
		comparer:  comparer,
		logger:    logger,
	}
}

// Table returns the metric grid for the current selection
func (s *Service) Table() []Row {
	a, b := pair(s.selection.Selected())
	return Rows(a, b)
}

// CompareSelected returns the AI summary for the current selection
func (s *Service) CompareSelected(ctx context.Context) string {
	return s.Compare(ctx, s.selection.Selected())
}

// Compare returns the AI summary for the first two of flights
func (s *Service) Compare(ctx context.Context, flights []domain.FlightOffer) string {
	if len(flights) < 2 {
		return NeedTwoMessage
	}
	s.logger.Debug("Comparing flights", "a", flights[0].ID, "b", flights[1].ID)
	return s.comparer.Compare(ctx, flights[0], flights[1])
}

func pair(flights []domain.FlightOffer) (*domain.FlightOffer, *domain.FlightOffer) {
	var a, b *domain.FlightOffer
	if len(flights) > 0 {
		a = &flights[0]
	}
	if len(flights) > 1 {
		b = &flights[1]
	}
	return a, b
}
