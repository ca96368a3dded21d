package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/flightdeck/internal/compare"
	"github.com/mmcdole/flightdeck/internal/domain"
	"github.com/mmcdole/flightdeck/internal/query"
	"github.com/mmcdole/flightdeck/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	bodyHeight := m.Height - ChromeHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	if m.Input.IsVisible() {
		body = lipgloss.Place(m.Width, bodyHeight, lipgloss.Center, lipgloss.Center, m.Input.View())
	} else {
		body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(m.renderBody(bodyHeight))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		"",
		body,
		"",
		m.renderFooter(),
	)
}

func (m Model) renderBody(height int) string {
	switch m.Screen {
	case ViewCompare:
		return m.renderCompare()
	case ViewSaved:
		return m.renderSaved(height)
	case ViewHistory:
		return m.renderHistory(height)
	case ViewHelp:
		return renderHelp()
	}
	return m.renderResults(height)
}

// renderHeader shows the title, current route and pipeline settings
func (m Model) renderHeader() string {
	parts := []string{styles.TitleStyle.Render(" ✈ flightdeck")}

	if req := m.Feed.Request(); req.Departure != "" {
		parts = append(parts, styles.AccentStyle.Render(fmt.Sprintf("%s → %s", req.Departure, req.Arrival)),
			styles.SubtitleStyle.Render(req.Date))
	}

	parts = append(parts, styles.DimBadgeStyle.Render("sort: "+m.Query.Sort.Label()))
	if m.Query.Group != query.GroupNone {
		parts = append(parts, styles.DimBadgeStyle.Render("group: "+string(m.Query.Group)))
	}
	if m.Query.DirectOnly {
		parts = append(parts, styles.BadgeStyle.Render("direct"))
	}
	if m.Query.MaxPrice != nil {
		p := domain.FlightOffer{Price: *m.Query.MaxPrice}
		parts = append(parts, styles.BadgeStyle.Render("≤ "+p.FormattedPrice()))
	}
	if len(m.Query.Airlines) > 0 {
		parts = append(parts, styles.BadgeStyle.Render(strings.Join(m.Query.Airlines, ", ")))
	}
	if n := len(m.snap.Selected); n > 0 {
		parts = append(parts, styles.AccentStyle.Render(fmt.Sprintf("%s %d/2", styles.SelectedChar, n)))
	}

	return strings.Join(parts, " ")
}

// renderFooter shows the status message or key hints
func (m Model) renderFooter() string {
	if m.Loading {
		return styles.DimStyle.Render(" " + statusOr(m.StatusMsg, "Loading..."))
	}
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			return " " + styles.ErrorStyle.Render(m.StatusMsg)
		}
		return " " + styles.SuccessStyle.Render(m.StatusMsg)
	}

	var bindings []key.Binding
	switch m.Screen {
	case ViewResults:
		bindings = []key.Binding{Keys.NewSearch, Keys.Toggle, Keys.Save, Keys.Alert, Keys.Sort, Keys.Group, Keys.LoadMore, Keys.Compare}
	case ViewCompare:
		bindings = []key.Binding{Keys.Enter, Keys.Delete, Keys.Results}
	case ViewSaved:
		bindings = []key.Binding{Keys.Toggle, Keys.Delete, Keys.Results}
	case ViewHistory:
		bindings = []key.Binding{Keys.Enter, Keys.ClearAll, Keys.Results}
	}
	bindings = append(bindings, Keys.Help, Keys.Quit)
	return " " + renderBindings(bindings)
}

func statusOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func renderBindings(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

// renderResults lists the grouped flights with the cursor kept in view
func (m Model) renderResults(height int) string {
	if m.Feed.Request().Departure == "" {
		return styles.DimStyle.Render("  Press / to search for flights")
	}
	if len(m.flights) == 0 {
		if m.Loading {
			return ""
		}
		return styles.DimStyle.Render("  No flights found")
	}

	var lines []string
	cursorLine := 0
	i := 0
	for _, g := range m.groups {
		if len(g.Flights) == 0 {
			continue
		}
		lines = append(lines, styles.GroupHeaderStyle.UnsetMarginTop().Render(
			fmt.Sprintf(" %s (%d)", g.Label, len(g.Flights))))
		for _, f := range g.Flights {
			if i == m.cursor[ViewResults] {
				cursorLine = len(lines)
			}
			lines = append(lines, m.renderFlightRow(f, i == m.cursor[ViewResults]))
			i++
		}
	}
	if m.Feed.HasMore() {
		lines = append(lines, styles.DimStyle.Render("  n: load more"))
	}

	return strings.Join(window(lines, cursorLine, height), "\n")
}

// renderFlightRow renders one flight with its selection and saved markers
func (m Model) renderFlightRow(f domain.FlightOffer, selected bool) string {
	mark := " "
	if m.isSelected(f.ID) {
		mark = styles.SelectedChar
	}
	saved := " "
	if m.isSaved(f.ID) {
		saved = styles.SavedChar
	}

	width := m.Width
	titleWidth := 22
	routeWidth := 14
	durationWidth := 14
	statusWidth := 9
	priceWidth := 10

	skyBlue := styles.SkyBlue
	amber := styles.Amber
	green := styles.Green
	parts := []styles.RowPart{
		{Text: mark + " ", Foreground: &skyBlue},
		{Text: saved + " ", Foreground: &amber},
		{Text: styles.Pad(styles.Truncate(f.Title, titleWidth), titleWidth+1)},
		{Text: styles.Pad(f.Route, routeWidth+1)},
		{Text: styles.Pad(styles.Truncate(f.Duration, durationWidth), durationWidth+1)},
		{Text: styles.Pad(f.Status, statusWidth+1)},
		{Text: styles.Pad(f.FormattedPrice(), priceWidth), Foreground: &green},
	}
	return styles.RenderListRow(parts, selected, width)
}

// renderCompare shows the metric table and the AI comparison text
func (m Model) renderCompare() string {
	rows := m.App.Compare.Table()

	const cellWidth = 28
	var b strings.Builder
	b.WriteString(styles.TableLabelStyle.Render("") +
		styles.TableHeaderStyle.Render(styles.Pad("Flight A", cellWidth)) +
		styles.TableHeaderStyle.Render(styles.Pad("Flight B", cellWidth)) + "\n")
	for _, r := range rows {
		b.WriteString(styles.TableLabelStyle.Render(r.Label) +
			styles.Pad(styles.Truncate(r.A, cellWidth-2), cellWidth) +
			styles.Pad(styles.Truncate(r.B, cellWidth-2), cellWidth) + "\n")
	}
	b.WriteString("\n")

	switch {
	case len(m.snap.Selected) < 2:
		b.WriteString(styles.DimStyle.Render(compare.NeedTwoMessage))
	case m.comparing:
		b.WriteString(styles.DimStyle.Render("Comparing flights..."))
	case m.comparison != "":
		b.WriteString(wrapParagraphs(m.comparison, max(m.Width-6, 20)))
	default:
		b.WriteString(styles.DimStyle.Render("Press enter for an AI comparison"))
	}

	return styles.PanelStyle.Render(b.String())
}

// renderSaved lists saved flights
func (m Model) renderSaved(height int) string {
	if !m.hydrated {
		return styles.DimStyle.Render("  Loading saved flights...")
	}
	if len(m.snap.Saved) == 0 {
		return styles.DimStyle.Render("  No saved flights. Press s on a result to save it.")
	}
	lines := []string{styles.GroupHeaderStyle.UnsetMarginTop().Render(fmt.Sprintf(" Saved (%d)", len(m.snap.Saved)))}
	for i, f := range m.snap.Saved {
		lines = append(lines, m.renderFlightRow(f, i == m.cursor[ViewSaved]))
	}
	return strings.Join(window(lines, m.cursor[ViewSaved]+1, height), "\n")
}

// renderHistory lists recent searches
func (m Model) renderHistory(height int) string {
	entries := m.App.History.List()
	if len(entries) == 0 {
		return styles.DimStyle.Render("  No recent searches")
	}
	lines := []string{styles.GroupHeaderStyle.UnsetMarginTop().Render(" Recent searches")}
	for i, e := range entries {
		parts := []styles.RowPart{
			{Text: styles.Pad(styles.Truncate(e.Departure, 36), 37)},
			{Text: "→ "},
			{Text: styles.Pad(styles.Truncate(e.Arrival, 36), 37)},
			{Text: e.Date},
		}
		lines = append(lines, styles.RenderListRow(parts, i == m.cursor[ViewHistory], m.Width))
	}
	return strings.Join(window(lines, m.cursor[ViewHistory]+1, height), "\n")
}

func renderHelp() string {
	sections := []struct {
		title    string
		bindings []key.Binding
	}{
		{"Navigation", []key.Binding{Keys.Up, Keys.Down, Keys.Home, Keys.End, Keys.Enter, Keys.Escape}},
		{"Views", []key.Binding{Keys.Results, Keys.Compare, Keys.Saved, Keys.History, Keys.Help}},
		{"Results", []key.Binding{Keys.NewSearch, Keys.Toggle, Keys.Save, Keys.Alert, Keys.Sort, Keys.Group,
			Keys.DirectOnly, Keys.MaxPrice, Keys.Airline, Keys.LoadMore}},
		{"Lists", []key.Binding{Keys.Delete, Keys.ClearAll, Keys.Quit}},
	}

	var b strings.Builder
	for _, s := range sections {
		b.WriteString(styles.TitleStyle.Render(s.title) + "\n")
		for _, kb := range s.bindings {
			h := kb.Help()
			b.WriteString("  " + styles.HelpKeyStyle.Render(styles.Pad(h.Key, 10)) + styles.HelpDescStyle.Render(h.Desc) + "\n")
		}
		b.WriteString("\n")
	}
	return styles.PanelStyle.Render(b.String())
}

func (m Model) isSelected(id string) bool {
	return domain.ContainsFlight(m.snap.Selected, id)
}

func (m Model) isSaved(id string) bool {
	return domain.ContainsFlight(m.snap.Saved, id)
}

// window returns at most height lines keeping focus visible
func window(lines []string, focus, height int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	start := focus - height/2
	if start < 0 {
		start = 0
	}
	if start+height > len(lines) {
		start = len(lines) - height
	}
	return lines[start : start+height]
}

// wrapParagraphs word-wraps each line of text to width
func wrapParagraphs(text string, width int) string {
	paragraphs := strings.Split(text, "\n")
	for i, p := range paragraphs {
		paragraphs[i] = wordWrap(p, width)
	}
	return strings.Join(paragraphs, "\n")
}

// wordWrap wraps text to the specified width
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lineLen := 0

	for _, word := range strings.Fields(text) {
		wordLen := lipgloss.Width(word)

		if lineLen+wordLen+1 > width && lineLen > 0 {
			result.WriteString("\n")
			lineLen = 0
		}

		if lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}

		result.WriteString(word)
		lineLen += wordLen
	}

	return result.String()
}
