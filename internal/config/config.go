package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/pso2-quests/internal/notifier"
	"github.com/pfrederiksen/pso2-quests/internal/scraper"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Notifier kinds accepted in the notifier field
const (
	NotifierDiscord  = "discord"
	NotifierTelegram = "telegram"
	NotifierTwitter  = "twitter"
	NotifierDryRun   = "dry-run"
)

const (
	// DefaultScrapeSchedule re-scrapes every 60*24*24 seconds
	DefaultScrapeSchedule = "@every 9h36m"
	DefaultCheckSchedule  = "@every 1m"
	DefaultReminderMins   = 15
	DefaultHTTPTimeout    = 30 * time.Second
)

// ErrMissingCredential is returned by Validate when the selected notifier has no credentials
var ErrMissingCredential = errors.New("missing credential")

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Config is the runtime configuration for the quest reminder service
type Config struct {
	// ScrapeSchedule and CheckSchedule accept a cron expression, a
	// descriptor such as "@every 1m", or a plain duration.
	ScrapeSchedule string `yaml:"scrape_schedule"`
	CheckSchedule  string `yaml:"check_schedule"`

	// ReminderMinutes is how long before a quest starts the reminder goes out
	ReminderMinutes int `yaml:"reminder_minutes"`

	Channel     string        `yaml:"channel"`
	ListingURL  string        `yaml:"listing_url"`
	Timezone    string        `yaml:"timezone"`
	YearPolicy  string        `yaml:"year_policy"`
	Notifier    string        `yaml:"notifier"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// TelegramAPIURL overrides the Bot API endpoint
	TelegramAPIURL string `yaml:"telegram_api_url"`

	Credentials Credentials `yaml:"-"`
}

// Credentials are read from the environment only
type Credentials struct {
	DiscordToken  string
	TelegramToken string
	TelegramChats []int64
	Twitter       notifier.TwitterCredentials
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		ScrapeSchedule:  DefaultScrapeSchedule,
		CheckSchedule:   DefaultCheckSchedule,
		ReminderMinutes: DefaultReminderMins,
		Channel:         notifier.DefaultChannel,
		ListingURL:      scraper.UrgentQuestsURL,
		Timezone:        scraper.SourceTimezone,
		YearPolicy:      string(scraper.YearCurrent),
		Notifier:        NotifierDiscord,
		HTTPTimeout:     DefaultHTTPTimeout,
		LogLevel:        "INFO",
		LogFormat:       "json",
	}
}

// Normalize fills zero values with defaults
func (c *Config) Normalize() {
	d := DefaultConfig()
	if strings.TrimSpace(c.ScrapeSchedule) == "" {
		c.ScrapeSchedule = d.ScrapeSchedule
	}
	if strings.TrimSpace(c.CheckSchedule) == "" {
		c.CheckSchedule = d.CheckSchedule
	}
	if c.ReminderMinutes <= 0 {
		c.ReminderMinutes = d.ReminderMinutes
	}
	if c.Channel == "" {
		c.Channel = d.Channel
	}
	if c.ListingURL == "" {
		c.ListingURL = d.ListingURL
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.YearPolicy == "" {
		c.YearPolicy = d.YearPolicy
	}
	c.Notifier = strings.ToLower(strings.TrimSpace(c.Notifier))
	if c.Notifier == "" {
		c.Notifier = d.Notifier
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = d.HTTPTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = d.LogFormat
	}
}

// Load reads a YAML config file. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// LoadEnv reads notifier credentials using getenv, normally os.Getenv
func (c *Config) LoadEnv(getenv func(string) string) error {
	c.Credentials.DiscordToken = getenv("DISCORD_TOKEN")
	c.Credentials.TelegramToken = getenv("TELEGRAM_BOT_TOKEN")
	c.Credentials.Twitter = notifier.TwitterCredentials{
		APIKey:       getenv("TWITTER_API_KEY"),
		APISecret:    getenv("TWITTER_API_SECRET"),
		AccessToken:  getenv("TWITTER_ACCESS_TOKEN"),
		AccessSecret: getenv("TWITTER_ACCESS_SECRET"),
	}

	chats, err := ParseChatIDs(getenv("TELEGRAM_CHAT_IDS"))
	if err != nil {
		return err
	}
	c.Credentials.TelegramChats = chats
	return nil
}

// ParseChatIDs parses a comma-separated list of Telegram chat IDs
func ParseChatIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Validate checks the settings and the credentials the selected notifier needs
func (c *Config) Validate() error {
	if err := c.ValidateSettings(); err != nil {
		return err
	}
	return c.validateCredentials()
}

// ValidateSettings checks everything except notifier credentials
func (c *Config) ValidateSettings() error {
	if _, err := ParseSchedule(c.ScrapeSchedule); err != nil {
		return fmt.Errorf("scrape_schedule: %w", err)
	}
	if _, err := ParseSchedule(c.CheckSchedule); err != nil {
		return fmt.Errorf("check_schedule: %w", err)
	}
	if _, err := scraper.ParseYearPolicy(c.YearPolicy); err != nil {
		return fmt.Errorf("year_policy: %w", err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("log_format: unknown format %q", c.LogFormat)
	}
	if c.ReminderMinutes <= 0 {
		return fmt.Errorf("reminder_minutes: must be positive, got %d", c.ReminderMinutes)
	}
	return nil
}

func (c *Config) validateCredentials() error {
	switch c.Notifier {
	case NotifierDiscord:
		if c.Credentials.DiscordToken == "" {
			return fmt.Errorf("%w: DISCORD_TOKEN is required for the discord notifier", ErrMissingCredential)
		}
	case NotifierTelegram:
		if c.Credentials.TelegramToken == "" || len(c.Credentials.TelegramChats) == 0 {
			return fmt.Errorf("%w: TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_IDS are required for the telegram notifier", ErrMissingCredential)
		}
	case NotifierTwitter:
		if !c.Credentials.Twitter.Complete() {
			return fmt.Errorf("%w: TWITTER_API_KEY, TWITTER_API_SECRET, TWITTER_ACCESS_TOKEN and TWITTER_ACCESS_SECRET are required for the twitter notifier", ErrMissingCredential)
		}
	case NotifierDryRun:
	default:
		return fmt.Errorf("notifier: unknown kind %q", c.Notifier)
	}
	return nil
}

// ReminderWindow returns the reminder lead time
func (c *Config) ReminderWindow() time.Duration {
	return time.Duration(c.ReminderMinutes) * time.Minute
}

// ParseSchedule accepts a 5-field cron expression, a descriptor such as
// "@every 1m" or "@daily", or a plain duration like "10m".
func ParseSchedule(s string) (cron.Schedule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty schedule")
	}

	if d, err := time.ParseDuration(s); err == nil {
		if d < time.Second {
			return nil, fmt.Errorf("interval %s is shorter than one second", d)
		}
		return cron.Every(d), nil
	}

	sched, err := scheduleParser.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", s, err)
	}
	return sched, nil
}
