package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/flightdeck/internal/adapter"
	"github.com/mmcdole/flightdeck/internal/app"
	"github.com/mmcdole/flightdeck/internal/domain"
	"github.com/mmcdole/flightdeck/internal/notify"
	"github.com/mmcdole/flightdeck/internal/query"
	"github.com/mmcdole/flightdeck/internal/tui"
	"github.com/mmcdole/flightdeck/internal/tui/styles"
)

// Version is set at build time via -ldflags
var Version = "dev"

// shutdownTimeout bounds the final flush of pending writes
const shutdownTimeout = 5 * time.Second

func main() {
	// Handle version flag
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("flightdeck %s\n", Version)
		return
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  flightdeck             launch the interactive browser")
	fmt.Fprintln(os.Stderr, "  flightdeck search ...  run one search and print the results")
	fmt.Fprintln(os.Stderr, "  flightdeck setup       configure API keys")
	fmt.Fprintln(os.Stderr)
	flag.PrintDefaults()
}

func run(args []string) error {
	// Load configuration
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		defer closer.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting flightdeck", "version", Version)

	if len(args) > 0 {
		switch args[0] {
		case "setup":
			return runSetupFlow(cfg)
		case "search":
			return runSearch(cfg, logger, args[1:], os.Stdout)
		default:
			usage()
			return fmt.Errorf("unknown command %q", args[0])
		}
	}

	// Check if configured
	if !cfg.IsConfigured() {
		if err := runSetupFlow(cfg); err != nil {
			return err
		}
	}

	return runTUI(cfg, logger)
}

func runTUI(cfg *adapter.Config, logger *slog.Logger) error {
	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer closeApp(a, logger)

	model := tui.NewModel(a)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

func closeApp(a *app.App, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		logger.Error("Failed to flush state", "error", err)
	}
}

// stringList is a repeatable string flag
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// searchOutput is the --json document
type searchOutput struct {
	Departure string        `json:"departure"`
	Arrival   string        `json:"arrival"`
	Date      string        `json:"date"`
	Page      int           `json:"page"`
	FromCache bool          `json:"fromCache"`
	Groups    []groupOutput `json:"groups"`
}

type groupOutput struct {
	Label   string               `json:"label"`
	Flights []domain.FlightOffer `json:"flights"`
}

// runSearch performs one search, prints it and reports matched price alerts
func runSearch(cfg *adapter.Config, logger *slog.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	from := fs.String("from", "", "departure airport code or name")
	to := fs.String("to", "", "arrival airport code or name")
	date := fs.String("date", "", "departure date, YYYY-MM-DD (default today)")
	page := fs.Int("page", 1, "result page")
	maxPrice := fs.Float64("max-price", 0, "hide flights above this price (0 for no limit)")
	direct := fs.Bool("direct", false, "only nonstop flights")
	sortKey := fs.String("sort", cfg.UI.DefaultSort, "price-asc, price-desc or stops-asc")
	groupKey := fs.String("group", cfg.UI.DefaultGroup, "none, route or price-bracket")
	asJSON := fs.Bool("json", false, "print JSON")
	var airlines stringList
	fs.Var(&airlines, "airline", "only this carrier (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !cfg.IsConfigured() {
		return errors.New("no RapidAPI key configured, run flightdeck setup")
	}

	qc := query.Config{DirectOnly: *direct, Airlines: airlines}
	var err error
	if qc.Sort, err = query.ParseSortKey(*sortKey); err != nil {
		return err
	}
	if qc.Group, err = query.ParseGroupKey(*groupKey); err != nil {
		return err
	}
	if *maxPrice > 0 {
		qc.MaxPrice = maxPrice
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer closeApp(a, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := a.Hydrate(ctx); err != nil {
		logger.Warn("Failed to load saved state", "error", err)
	}

	dep, err := a.Airports.Resolve(*from)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	arr, err := a.Airports.Resolve(*to)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	res, err := a.Search.Search(ctx, domain.SearchRequest{
		Departure: dep.ID,
		Arrival:   arr.ID,
		Date:      *date,
		Page:      *page,
	})
	if err != nil {
		return err
	}

	groups := query.Apply(res.Flights, qc)
	if *asJSON {
		err = writeJSON(out, res.Request, res.FromCache, groups)
	} else {
		writeText(out, res.Request, res.FromCache, groups)
	}
	if err != nil {
		return err
	}

	reportAlerts(a, res.Flights, notify.Multi{notify.NewTerminal(os.Stderr), notify.NewLog(logger)})
	return nil
}

func writeJSON(out io.Writer, req domain.SearchRequest, fromCache bool, groups []query.Group) error {
	doc := searchOutput{
		Departure: req.Departure,
		Arrival:   req.Arrival,
		Date:      req.Date,
		Page:      req.Page,
		FromCache: fromCache,
		Groups:    make([]groupOutput, len(groups)),
	}
	for i, g := range groups {
		doc.Groups[i] = groupOutput{Label: g.Label, Flights: g.Flights}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func writeText(out io.Writer, req domain.SearchRequest, fromCache bool, groups []query.Group) {
	header := fmt.Sprintf("%s → %s on %s (page %d)", req.Departure, req.Arrival, req.Date, req.Page)
	if fromCache {
		header += " [cached]"
	}
	fmt.Fprintln(out, styles.TitleStyle.Render(header))

	total := 0
	for _, g := range groups {
		if len(g.Flights) == 0 {
			continue
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, styles.GroupHeaderStyle.UnsetMarginTop().Render(fmt.Sprintf("%s (%d)", g.Label, len(g.Flights))))
		for _, f := range g.Flights {
			fmt.Fprintf(out, "  %s %s %s %s %s\n",
				styles.Pad(styles.Truncate(f.Title, 22), 22),
				styles.Pad(f.Route, 14),
				styles.Pad(styles.Truncate(f.Duration, 14), 14),
				styles.Pad(f.Status, 9),
				styles.PriceStyle.Render(f.FormattedPrice()))
			total++
		}
	}
	if total == 0 {
		fmt.Fprintln(out, styles.DimStyle.Render("No flights found"))
	}
}

// reportAlerts notifies matched alerts once and marks them notified
func reportAlerts(a *app.App, flights []domain.FlightOffer, sink domain.NotificationSink) {
	matched := a.Alerts.CheckAll(flights)
	if len(matched) == 0 {
		return
	}
	prices := make(map[string]float64, len(flights))
	for _, f := range flights {
		prices[f.ID] = f.Price
	}
	notify.Alerts(sink, matched, prices)
	for _, al := range matched {
		a.Alerts.MarkNotified(al.ID)
	}
}

// runSetupFlow prompts for API keys and writes the config file
func runSetupFlow(cfg *adapter.Config) error {
	fmt.Println()
	fmt.Println("Welcome to flightdeck!")
	fmt.Println()

	for {
		key, err := readSecret("RapidAPI key (google-flights2): ")
		if err != nil {
			return err
		}
		if key == "" {
			fmt.Println("The RapidAPI key cannot be empty. Please try again.")
			continue
		}
		cfg.Provider.APIKey = key
		break
	}

	aiKey, err := readSecret("OpenAI API key (optional, enables comparisons): ")
	if err != nil {
		return err
	}
	if aiKey != "" {
		cfg.AI.APIKey = aiKey
	}

	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved to", adapter.ConfigFilePath())
	fmt.Println()
	return nil
}

// readSecret reads a line without echo
func readSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println() // Add newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
