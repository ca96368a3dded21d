package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/flightdeck/internal/app"
	"github.com/mmcdole/flightdeck/internal/compare"
	"github.com/mmcdole/flightdeck/internal/domain"
	"github.com/mmcdole/flightdeck/internal/search"
	"github.com/mmcdole/flightdeck/internal/selection"
)

// Command factories for async operations

// HydrateCmd loads persisted selection, alerts and history
func HydrateCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return HydratedMsg{Err: a.Hydrate(ctx)}
	}
}

// SearchCmd loads the first page of a route search
func SearchCmd(feed *search.Feed, req domain.SearchRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		result, err := feed.Load(ctx, req)
		return searchResultMsg(result, err, false)
	}
}

// LoadMoreCmd fetches the next page of the current search
func LoadMoreCmd(feed *search.Feed) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		result, err := feed.LoadMore(ctx)
		return searchResultMsg(result, err, true)
	}
}

func searchResultMsg(result search.Result, err error, more bool) tea.Msg {
	if errors.Is(err, search.ErrSuperseded) {
		return SupersededMsg{}
	}
	if err != nil {
		return ErrMsg{Err: err, Context: "searching flights"}
	}
	return ResultsLoadedMsg{Result: result, More: more}
}

// CompareCmd asks the comparer about the flights selected in snap
func CompareCmd(svc *compare.Service, snap selection.Snapshot) tea.Cmd {
	flights := append([]domain.FlightOffer(nil), snap.Selected...)
	return func() tea.Msg {
		// Comparer enforces its own HTTP timeout; this bounds the whole call
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()

		msg := ComparisonMsg{Text: svc.Compare(ctx, flights)}
		if len(flights) == selection.MaxSelected {
			msg.A, msg.B = flights[0].ID, flights[1].ID
		}
		return msg
	}
}

// ClearStatusCmd clears the status line after a delay
func ClearStatusCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}

// listenNotificationsCmd returns a command that reads the next toast from the sink channel
func listenNotificationsCmd(ch <-chan NotificationMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// listenSelectionCmd waits for a selection change signal and reads the latest snapshot
func listenSelectionCmd(store *selection.Store, changed <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changed; !ok {
			return nil
		}
		return SelectionChangedMsg{Snapshot: store.Snapshot()}
	}
}
