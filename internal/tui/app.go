package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/flightdeck/internal/app"
	"github.com/mmcdole/flightdeck/internal/domain"
	"github.com/mmcdole/flightdeck/internal/notify"
	"github.com/mmcdole/flightdeck/internal/query"
	"github.com/mmcdole/flightdeck/internal/search"
	"github.com/mmcdole/flightdeck/internal/selection"
	"github.com/mmcdole/flightdeck/internal/tui/components"
	"github.com/mmcdole/flightdeck/internal/tui/styles"
)

// View is the screen currently shown
type View int

const (
	ViewResults View = iota
	ViewCompare
	ViewSaved
	ViewHistory
	ViewHelp
	viewCount
)

// promptKind identifies what the input modal is collecting
type promptKind int

const (
	promptNone promptKind = iota
	promptFrom
	promptTo
	promptDate
	promptAlert
	promptMaxPrice
	promptAirline
)

const (
	maxSuggestions = 5
	statusTimeout  = 4 * time.Second

	// Header and footer lines around the body
	ChromeHeight = 4
)

// Model is the main Bubble Tea model for the application
type Model struct {
	App    *app.App
	Feed   *search.Feed
	Logger *slog.Logger

	Screen   View
	prevView View
	Ready    bool
	Width    int
	Height   int

	// Route entry and other prompts
	Input       components.InputModal
	prompt      promptKind
	pending     domain.SearchRequest
	alertFlight domain.FlightOffer

	// Results, derived through the query pipeline
	Query   query.Config
	groups  []query.Group
	flights []domain.FlightOffer
	cursor  [viewCount]int

	snap       selection.Snapshot
	comparison string
	comparing  bool
	Loading    bool
	hydrated   bool

	StatusMsg   string
	StatusIsErr bool
	statusSeq   int

	sink          domain.NotificationSink
	notifications chan NotificationMsg
	selChanged    chan struct{}
	unsubscribe   func()
}

// NewModel creates a new application model
func NewModel(a *app.App) Model {
	notifications := make(chan NotificationMsg, 16)
	selChanged := make(chan struct{}, 1)

	unsubscribe := a.Selection.Subscribe(func(selection.Snapshot) {
		select {
		case selChanged <- struct{}{}:
		default: // A pending signal already covers this change
		}
	})

	return Model{
		App:           a,
		Feed:          search.NewFeed(a.Search),
		Logger:        a.Logger,
		Screen:        ViewResults,
		Input:         components.NewInputModal(),
		Query:         a.QueryConfig(),
		groups:        query.Apply(nil, a.QueryConfig()),
		sink:          notify.Multi{NewChannelSink(notifications), notify.NewLog(a.Logger)},
		notifications: notifications,
		selChanged:    selChanged,
		unsubscribe:   unsubscribe,
	}
}

// Close detaches the model from the selection store
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		HydrateCmd(m.App),
		listenNotificationsCmd(m.notifications),
		listenSelectionCmd(m.App.Selection, m.selChanged),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case HydratedMsg:
		m.hydrated = true
		m.snap = m.App.Selection.Snapshot()
		if msg.Err != nil {
			m.Logger.Error("Failed to hydrate state", "error", msg.Err)
			return m.setStatus("Failed to load saved state: "+msg.Err.Error(), true)
		}
		if m.App.Degraded() {
			return m.setStatus("Storage unavailable, changes are kept in memory only", true)
		}
		return m, nil

	case ResultsLoadedMsg:
		m.Loading = false
		if !msg.More {
			m.cursor[ViewResults] = 0
		}
		m.rebuild()
		m.checkAlerts(msg.Result.Flights)

		status := fmt.Sprintf("%d flights", len(m.Feed.Flights()))
		if msg.More && len(msg.Result.Flights) == 0 {
			status = "No more flights"
		} else if msg.Result.FromCache {
			status += " (cached)"
		}
		return m.setStatus(status, false)

	case SupersededMsg:
		// A newer search owns the screen and the loading state
		return m, nil

	case ErrMsg:
		m.Loading = false
		m.Logger.Error("Operation failed", "context", msg.Context, "error", msg.Err)
		return m.setStatus(errorText(msg), true)

	case ComparisonMsg:
		m.comparing = false
		if len(m.snap.Selected) == selection.MaxSelected &&
			(msg.A != m.snap.Selected[0].ID || msg.B != m.snap.Selected[1].ID) {
			// Selection changed while the comparer was working
			return m, nil
		}
		m.comparison = msg.Text
		return m, nil

	case SelectionChangedMsg:
		if !sameSelection(m.snap.Selected, msg.Snapshot.Selected) {
			m.comparison = ""
		}
		m.snap = msg.Snapshot
		m.clampCursor(ViewSaved, len(m.snap.Saved))
		return m, listenSelectionCmd(m.App.Selection, m.selChanged)

	case NotificationMsg:
		next, cmd := m.setStatus(msg.Text, msg.IsErr)
		return next, tea.Batch(cmd, listenNotificationsCmd(m.notifications))

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.StatusMsg = ""
			m.StatusIsErr = false
		}
		return m, nil
	}

	return m, nil
}

// handleKeyMsg routes key presses to the prompt or the current view
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Input.IsVisible() {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Help):
		if m.Screen == ViewHelp {
			m.Screen = m.prevView
		} else {
			m.prevView = m.Screen
			m.Screen = ViewHelp
		}
		return m, nil
	case key.Matches(msg, Keys.Escape):
		if m.Screen == ViewHelp {
			m.Screen = m.prevView
		} else {
			m.Screen = ViewResults
		}
		return m, nil
	case key.Matches(msg, Keys.NewSearch):
		m.startRoutePrompt()
		return m, nil
	case key.Matches(msg, Keys.Results):
		m.Screen = ViewResults
		return m, nil
	case key.Matches(msg, Keys.Compare):
		if m.Screen == ViewCompare {
			return m.requestComparison()
		}
		m.Screen = ViewCompare
		return m, nil
	case key.Matches(msg, Keys.Saved):
		m.Screen = ViewSaved
		return m, nil
	case key.Matches(msg, Keys.History):
		m.Screen = ViewHistory
		return m, nil
	case key.Matches(msg, Keys.Up):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, Keys.Down):
		m.moveCursor(1)
		return m, nil
	case key.Matches(msg, Keys.Home):
		m.cursor[m.Screen] = 0
		return m, nil
	case key.Matches(msg, Keys.End):
		m.cursor[m.Screen] = m.listLen() - 1
		m.clampCursor(m.Screen, m.listLen())
		return m, nil
	}

	switch m.Screen {
	case ViewResults:
		return m.handleResultsKey(msg)
	case ViewCompare:
		return m.handleCompareKey(msg)
	case ViewSaved:
		return m.handleSavedKey(msg)
	case ViewHistory:
		return m.handleHistoryKey(msg)
	}
	return m, nil
}

func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Toggle):
		if f, ok := m.currentFlight(); ok {
			m.App.Selection.Toggle(f)
		}
	case key.Matches(msg, Keys.Save):
		if f, ok := m.currentFlight(); ok {
			if m.App.Selection.IsSaved(f.ID) {
				return m.setStatus("Already saved", false)
			}
			m.App.Selection.Save(f)
			return m.setStatus("Saved "+f.Title+" "+f.Route, false)
		}
	case key.Matches(msg, Keys.Alert):
		if f, ok := m.currentFlight(); ok {
			m.alertFlight = f
			m.prompt = promptAlert
			m.Input.Show(fmt.Sprintf("Alert when %s %s drops to", f.Title, f.Route), "target price in USD")
		}
	case key.Matches(msg, Keys.Sort):
		m.Query.Sort = m.Query.Sort.Next()
		m.rebuild()
		return m.setStatus("Sort: "+m.Query.Sort.Label(), false)
	case key.Matches(msg, Keys.Group):
		m.Query.Group = m.Query.Group.Next()
		m.rebuild()
		return m.setStatus("Group: "+string(m.Query.Group), false)
	case key.Matches(msg, Keys.DirectOnly):
		m.Query.DirectOnly = !m.Query.DirectOnly
		m.rebuild()
	case key.Matches(msg, Keys.MaxPrice):
		m.prompt = promptMaxPrice
		m.Input.Show("Maximum price", "blank for no limit")
	case key.Matches(msg, Keys.Airline):
		m.prompt = promptAirline
		m.Input.Show("Airlines", "comma separated, blank for any")
		m.Input.SetHint(styles.DimStyle.Render(strings.Join(query.Airlines(m.Feed.Flights()), ", ")))
	case key.Matches(msg, Keys.LoadMore):
		if m.Loading || !m.Feed.HasMore() || len(m.Feed.Flights()) == 0 {
			return m, nil
		}
		m.Loading = true
		return m, LoadMoreCmd(m.Feed)
	}
	return m, nil
}

func (m Model) handleCompareKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Enter):
		return m.requestComparison()
	case key.Matches(msg, Keys.Delete), key.Matches(msg, Keys.ClearAll):
		m.App.Selection.Clear()
	}
	return m, nil
}

func (m Model) handleSavedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	saved := m.snap.Saved
	i := m.cursor[ViewSaved]
	if i >= len(saved) {
		return m, nil
	}
	switch {
	case key.Matches(msg, Keys.Enter), key.Matches(msg, Keys.Toggle):
		m.App.Selection.Toggle(saved[i])
	case key.Matches(msg, Keys.Delete):
		m.App.Selection.RemoveSaved(saved[i].ID)
	}
	return m, nil
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.App.History.List()
	switch {
	case key.Matches(msg, Keys.ClearAll):
		m.App.History.Clear()
		m.cursor[ViewHistory] = 0
		return m.setStatus("History cleared", false)
	case key.Matches(msg, Keys.Enter):
		i := m.cursor[ViewHistory]
		if i >= len(entries) {
			return m, nil
		}
		e := entries[i]
		dep, err := m.App.Airports.Resolve(e.Departure)
		if err != nil {
			return m.setStatus("Unknown airport: "+e.Departure, true)
		}
		arr, err := m.App.Airports.Resolve(e.Arrival)
		if err != nil {
			return m.setStatus("Unknown airport: "+e.Arrival, true)
		}
		return m.startSearch(domain.SearchRequest{Departure: dep.ID, Arrival: arr.ID, Date: e.Date})
	}
	return m, nil
}

// handlePromptKey feeds the input modal and acts on submission
func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var submitted bool
	m.Input, cmd, submitted = m.Input.Update(msg)
	if !m.Input.IsVisible() {
		m.prompt = promptNone
		return m, cmd
	}
	if !submitted {
		if m.prompt == promptFrom || m.prompt == promptTo {
			m.Input.SetHint(m.suggestions(m.Input.Value()))
		}
		return m, cmd
	}

	value := strings.TrimSpace(m.Input.Value())
	switch m.prompt {
	case promptFrom, promptTo:
		a, err := m.App.Airports.Resolve(value)
		if err != nil {
			m.Input.SetHint(styles.ErrorStyle.Render("No airport matches " + strconv.Quote(value)))
			return m, nil
		}
		if m.prompt == promptFrom {
			m.pending.Departure = a.ID
			m.prompt = promptTo
			m.Input.Show("To airport (from "+a.ID+")", "code or name")
			m.Input.SetHint(m.suggestions(""))
			return m, nil
		}
		m.pending.Arrival = a.ID
		m.prompt = promptDate
		m.Input.Show(fmt.Sprintf("Date for %s → %s", m.pending.Departure, m.pending.Arrival), "YYYY-MM-DD, blank for today")
		return m, nil

	case promptDate:
		req := m.pending
		req.Date = value
		if _, err := m.App.Search.Normalize(req); err != nil {
			m.Input.SetHint(styles.ErrorStyle.Render("Enter a date as YYYY-MM-DD"))
			return m, nil
		}
		m.closePrompt()
		return m.startSearch(req)

	case promptAlert:
		target, err := strconv.ParseFloat(strings.TrimPrefix(value, "$"), 64)
		if err != nil {
			m.Input.SetHint(styles.ErrorStyle.Render("Enter a price, e.g. 350"))
			return m, nil
		}
		alert, err := m.App.Alerts.Create(m.alertFlight, target)
		if err != nil {
			m.Input.SetHint(styles.ErrorStyle.Render("Target price must be greater than zero"))
			return m, nil
		}
		m.closePrompt()
		price := domain.FlightOffer{Price: alert.TargetPrice}
		return m.setStatus("Alert set at "+price.FormattedPrice(), false)

	case promptMaxPrice:
		if value == "" {
			m.Query.MaxPrice = nil
		} else {
			p, err := strconv.ParseFloat(strings.TrimPrefix(value, "$"), 64)
			if err != nil || !(p >= 0) {
				m.Input.SetHint(styles.ErrorStyle.Render("Enter a price, e.g. 500"))
				return m, nil
			}
			m.Query.MaxPrice = &p
		}
		m.closePrompt()
		m.rebuild()
		return m, nil

	case promptAirline:
		m.Query.Airlines = splitList(value)
		m.closePrompt()
		m.rebuild()
		return m, nil
	}

	m.closePrompt()
	return m, nil
}

func (m *Model) startRoutePrompt() {
	m.pending = domain.SearchRequest{}
	m.prompt = promptFrom
	m.Input.Show("From airport", "code or name")
	m.Input.SetHint(m.suggestions(""))
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.Input.Hide()
}

// startSearch begins a fresh feed load and switches to results
func (m Model) startSearch(req domain.SearchRequest) (tea.Model, tea.Cmd) {
	m.Screen = ViewResults
	m.Loading = true
	m.StatusMsg = fmt.Sprintf("Searching %s → %s...", req.Departure, req.Arrival)
	m.StatusIsErr = false
	return m, SearchCmd(m.Feed, req)
}

func (m Model) requestComparison() (tea.Model, tea.Cmd) {
	m.Screen = ViewCompare
	if m.comparing {
		return m, nil
	}
	if len(m.snap.Selected) < selection.MaxSelected {
		m.comparison = ""
		return m.setStatus("Select two flights with space to compare", true)
	}
	m.comparing = true
	m.comparison = ""
	return m, CompareCmd(m.App.Compare, m.snap)
}

// rebuild re-runs the query pipeline over the feed's flights
func (m *Model) rebuild() {
	m.groups = query.Apply(m.Feed.Flights(), m.Query)
	m.flights = query.Flatten(m.groups)
	m.clampCursor(ViewResults, len(m.flights))
}

// checkAlerts reports matched alerts once, then marks them notified
func (m Model) checkAlerts(flights []domain.FlightOffer) {
	matched := m.App.Alerts.CheckAll(flights)
	if len(matched) == 0 {
		return
	}
	prices := make(map[string]float64, len(flights))
	for _, f := range flights {
		prices[f.ID] = f.Price
	}
	notify.Alerts(m.sink, matched, prices)
	for _, a := range matched {
		m.App.Alerts.MarkNotified(a.ID)
	}
}

func (m Model) setStatus(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.statusSeq++
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return m, ClearStatusCmd(m.statusSeq, statusTimeout)
}

func (m Model) currentFlight() (domain.FlightOffer, bool) {
	i := m.cursor[ViewResults]
	if i < 0 || i >= len(m.flights) {
		return domain.FlightOffer{}, false
	}
	return m.flights[i], true
}

func (m Model) listLen() int {
	switch m.Screen {
	case ViewResults:
		return len(m.flights)
	case ViewSaved:
		return len(m.snap.Saved)
	case ViewHistory:
		return len(m.App.History.List())
	}
	return 0
}

func (m *Model) moveCursor(delta int) {
	m.cursor[m.Screen] += delta
	m.clampCursor(m.Screen, m.listLen())
}

func (m *Model) clampCursor(v View, n int) {
	if m.cursor[v] >= n {
		m.cursor[v] = n - 1
	}
	if m.cursor[v] < 0 {
		m.cursor[v] = 0
	}
}

// suggestions renders the top airport matches for a partial entry
func (m Model) suggestions(input string) string {
	matches := m.App.Airports.Search(input)
	if len(matches) == 0 {
		return styles.DimStyle.Render("No matching airports")
	}
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	lines := make([]string, len(matches))
	for i, match := range matches {
		lines[i] = styles.Highlight(match.Airport.Display(), match.MatchedIndexes)
	}
	return strings.Join(lines, "\n")
}

func sameSelection(a, b []domain.FlightOffer) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func errorText(msg ErrMsg) string {
	switch {
	case errors.Is(msg.Err, domain.ErrValidation):
		return "Invalid search: " + msg.Err.Error()
	case errors.Is(msg.Err, domain.ErrTransport):
		return "Failed to fetch flights. Please try again."
	}
	return msg.Error()
}
