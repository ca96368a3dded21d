package tui

import (
	"github.com/mmcdole/flightdeck/internal/search"
	"github.com/mmcdole/flightdeck/internal/selection"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// HydratedMsg signals that persisted state has been loaded
type HydratedMsg struct {
	Err error
}

// ResultsLoadedMsg signals that a page of search results arrived
type ResultsLoadedMsg struct {
	Result search.Result
	More   bool // true for a LoadMore page
}

// SupersededMsg signals that a response was discarded for a newer search
type SupersededMsg struct{}

// ComparisonMsg carries the AI comparison text
type ComparisonMsg struct {
	Text string
	// IDs of the flights compared, to drop text for a changed selection
	A, B string
}

// SelectionChangedMsg carries the latest selection snapshot
type SelectionChangedMsg struct {
	Snapshot selection.Snapshot
}

// NotificationMsg is a transient status line message
type NotificationMsg struct {
	Text  string
	IsErr bool
}

// ClearStatusMsg clears the status line if it still shows the message with Seq
type ClearStatusMsg struct {
	Seq int
}
