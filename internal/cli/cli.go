package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/pso2-quests/internal/config"
	"github.com/pfrederiksen/pso2-quests/internal/logger"
	"github.com/pfrederiksen/pso2-quests/internal/notifier"
	"github.com/pfrederiksen/pso2-quests/internal/reminder"
	"github.com/pfrederiksen/pso2-quests/internal/scraper"
	"github.com/pfrederiksen/pso2-quests/internal/service"
	"github.com/pfrederiksen/pso2-quests/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

// ExitError is the process exit code when a command fails
const ExitError = 1

// discordSendInterval paces channel posts to stay under Discord's global rate limit
const discordSendInterval = 250 * time.Millisecond

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
	flagDryRun    bool
	flagFormat    string
	flagSort      string
	flagURL       string
	flagAnchor    string
	flagVerbose   bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pso2-quests",
		Short: "Scrape the PSO2 urgent quest calendar and send reminders",
		Long: `A service that scrapes the PSO2 urgent quest schedule and sends a reminder
shortly before each urgent quest begins.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: DEBUG, INFO, WARN or ERROR")
	cmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: json or console")

	cmd.AddCommand(newRunCmd(), newScrapeCmd(), newParseCmd())
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scraper and reminder workers until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runService,
	}
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print reminders instead of sending them")
	return cmd
}

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape the urgent quest calendar once and print the quests",
		Args:  cobra.NoArgs,
		RunE:  runScrape,
	}
	addOutputFlags(cmd)
	cmd.Flags().StringVar(&flagURL, "url", "", "Listing page URL (overrides config)")
	return cmd
}

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Decode the quest calendar from a saved article page",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	addOutputFlags(cmd)
	cmd.Flags().StringVar(&flagURL, "url", "", "Article URL used when the page has no og:url")
	cmd.Flags().StringVar(&flagAnchor, "anchor", "", "Date supplying the year, as YYYY-MM-DD (default today)")
	return cmd
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json or ics")
	cmd.Flags().StringVar(&flagSort, "sort", string(SortByTime), "Sort order: time, name or stored")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Show quest IDs and sources")
}

// loadConfig reads the config file, applies flag overrides and environment
// credentials, then installs the configured logger
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.LogFormat = strings.ToLower(flagLogFormat)
	}
	if err := cfg.LoadEnv(os.Getenv); err != nil {
		return nil, err
	}

	logger.SetDefault(logger.NewWithFormat(
		logger.ParseLevel(cfg.LogLevel),
		logger.Format(cfg.LogFormat),
		cmd.ErrOrStderr(),
	))
	return cfg, nil
}

// newScraper builds a scraper from the config
func newScraper(cfg *config.Config, opts ...scraper.Option) (*scraper.Scraper, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}
	policy, err := scraper.ParseYearPolicy(cfg.YearPolicy)
	if err != nil {
		return nil, err
	}

	base := []scraper.Option{
		scraper.WithURL(cfg.ListingURL),
		scraper.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		scraper.WithLocation(loc),
		scraper.WithYearPolicy(policy),
	}
	return scraper.New(append(base, opts...)...), nil
}

// newNotifier builds the notifier selected in the config
func newNotifier(cfg *config.Config) (notifier.Notifier, error) {
	creds := cfg.Credentials
	switch cfg.Notifier {
	case config.NotifierDiscord:
		dir, err := notifier.NewDiscordDirectory(creds.DiscordToken)
		if err != nil {
			return nil, err
		}
		limiter := rate.NewLimiter(rate.Every(discordSendInterval), 1)
		return notifier.NewBroadcaster(dir, cfg.Channel, limiter), nil
	case config.NotifierTelegram:
		return notifier.NewTelegramNotifier(creds.TelegramToken, creds.TelegramChats, cfg.TelegramAPIURL)
	case config.NotifierTwitter:
		return notifier.NewTwitterNotifier(creds.Twitter)
	case config.NotifierDryRun:
		return notifier.NewDryRunNotifier(), nil
	default:
		return nil, fmt.Errorf("unknown notifier: %s", cfg.Notifier)
	}
}

// runService starts both workers and blocks until the command context is cancelled
func runService(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if flagDryRun {
		cfg.Notifier = config.NotifierDryRun
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	scrapeSchedule, err := config.ParseSchedule(cfg.ScrapeSchedule)
	if err != nil {
		return err
	}
	checkSchedule, err := config.ParseSchedule(cfg.CheckSchedule)
	if err != nil {
		return err
	}

	sc, err := newScraper(cfg)
	if err != nil {
		return err
	}
	n, err := newNotifier(cfg)
	if err != nil {
		return fmt.Errorf("initializing %s notifier: %w", cfg.Notifier, err)
	}

	st := store.New()
	svc := service.New(sc, st, reminder.New(st, n, cfg.ReminderWindow()), scrapeSchedule, checkSchedule)

	logger.Info("Configured service", logger.Fields{
		"listing_url":     cfg.ListingURL,
		"notifier":        cfg.Notifier,
		"channel":         cfg.Channel,
		"scrape_schedule": cfg.ScrapeSchedule,
		"check_schedule":  cfg.CheckSchedule,
		"year_policy":     cfg.YearPolicy,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := svc.Run(ctx); err != nil {
		return err
	}

	logger.Info("Final metrics", logger.Fields{"metrics": logger.GetMetricsSnapshot()})
	return nil
}

// runScrape performs one scrape cycle and prints the result
func runScrape(cmd *cobra.Command, args []string) error {
	format, order, err := outputOptions()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if flagURL != "" {
		cfg.ListingURL = flagURL
	}
	if err := cfg.ValidateSettings(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	sc, err := newScraper(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result := &OutputResult{
		FetchedAt: time.Now().UTC(),
		Source:    cfg.ListingURL,
		Quests:    sc.FetchQuests(ctx),
	}
	return writeResult(cmd, cfg, result, format, order)
}

// runParse decodes a saved article page
func runParse(cmd *cobra.Command, args []string) error {
	format, order, err := outputOptions()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateSettings(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("loading timezone: %w", err)
	}
	anchor, err := parseAnchor(flagAnchor, loc, time.Now)
	if err != nil {
		return err
	}

	sc, err := newScraper(cfg, scraper.WithClock(func() time.Time { return anchor }))
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening article: %w", err)
	}
	defer f.Close()

	quests, err := sc.ParseArticle(f, flagURL)
	if err != nil {
		return err
	}

	result := &OutputResult{
		FetchedAt: time.Now().UTC(),
		Source:    args[0],
		Quests:    quests,
	}
	return writeResult(cmd, cfg, result, format, order)
}

// parseAnchor reads a YYYY-MM-DD date as midnight in loc, the zone calendar
// dates are decoded in. An empty value means now.
func parseAnchor(value string, loc *time.Location, now func() time.Time) (time.Time, error) {
	if value == "" {
		return now(), nil
	}
	anchor, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --anchor %q: %w", value, err)
	}
	return anchor, nil
}

func outputOptions() (OutputFormat, SortOrder, error) {
	format := OutputFormat(strings.ToLower(flagFormat))
	switch format {
	case FormatText, FormatJSON, FormatICS:
	default:
		return "", "", fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'ics')", flagFormat)
	}

	order := SortOrder(strings.ToLower(flagSort))
	switch order {
	case SortByTime, SortByName, SortStored:
	default:
		return "", "", fmt.Errorf("invalid sort order: %s (must be 'time', 'name' or 'stored')", flagSort)
	}
	return format, order, nil
}

func writeResult(cmd *cobra.Command, cfg *config.Config, result *OutputResult, format OutputFormat, order SortOrder) error {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return err
	}
	sortQuests(result.Quests, order)
	result.QuestCount = len(result.Quests)

	if err := WriteOutput(cmd.OutOrStdout(), result, format, loc, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// Execute runs the CLI with ctx and args, normally os.Args[1:].
// Errors are returned so the caller decides the exit code.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
