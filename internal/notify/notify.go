// Package notify delivers short user-facing messages outside the TUI.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/flightdeck/internal/domain"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ed8796")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6da95")).Bold(true)
)

// Terminal writes styled one-line messages to w (usually stderr)
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

var _ domain.NotificationSink = (*Terminal)(nil)

// NewTerminal creates a terminal sink
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) ShowError(message string) {
	t.write(errorStyle.Render("✗ ") + message)
}

func (t *Terminal) ShowSuccess(message string) {
	t.write(successStyle.Render("✓ ") + message)
}

func (t *Terminal) write(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, line)
}

// Log records messages in the structured log
type Log struct {
	logger *slog.Logger
}

var _ domain.NotificationSink = (*Log)(nil)

// NewLog creates a log sink
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) ShowError(message string)   { l.logger.Warn("notify", "message", message) }
func (l *Log) ShowSuccess(message string) { l.logger.Info("notify", "message", message) }

// Multi fans messages out to several sinks
type Multi []domain.NotificationSink

func (m Multi) ShowError(message string) {
	for _, s := range m {
		s.ShowError(message)
	}
}

func (m Multi) ShowSuccess(message string) {
	for _, s := range m {
		s.ShowSuccess(message)
	}
}

// AlertMessage describes a matched price alert
func AlertMessage(a domain.PriceAlert, current float64) string {
	f := domain.FlightOffer{Price: current}
	target := domain.FlightOffer{Price: a.TargetPrice}
	return fmt.Sprintf("Price alert: %s %s is now %s (target %s)",
		a.Flight.Title, a.Flight.Route, f.FormattedPrice(), target.FormattedPrice())
}

// Alerts reports every matched alert on sink
func Alerts(sink domain.NotificationSink, matched []domain.PriceAlert, prices map[string]float64) {
	for _, a := range matched {
		sink.ShowSuccess(AlertMessage(a, prices[a.FlightID]))
	}
}
