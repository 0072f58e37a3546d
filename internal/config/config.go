package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"LevelSentinel/internal/clock"
	"LevelSentinel/internal/levels"
	"LevelSentinel/internal/model"
	"LevelSentinel/internal/tracker"
)

// Toggle enables the open and/or high-low levels of one timeframe.
// Unset fields default to enabled.
type Toggle struct {
	Open    *bool `yaml:"open"`
	HighLow *bool `yaml:"high_low"`
}

// Session is a recurring intraday window in the reference time zone.
type Session struct {
	Name    string `yaml:"name"`
	Tag     string `yaml:"tag"`
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
	Enabled *bool  `yaml:"enabled"`
}

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		Symbol   string `yaml:"symbol"`
		Interval string `yaml:"interval"`
		Limit    int    `yaml:"limit"`
	} `yaml:"data_source"`
	Schedule struct {
		PollCron    string `yaml:"poll_cron"`
		SummaryCron string `yaml:"summary_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Levels struct {
		Timezone     string `yaml:"timezone"`
		WarmupBars   *int   `yaml:"warmup_bars"`
		Daily        Toggle `yaml:"daily"`
		Weekly       Toggle `yaml:"weekly"`
		Monthly      Toggle `yaml:"monthly"`
		Yearly       Toggle `yaml:"yearly"`
		WeekdayRange struct {
			Enabled *bool  `yaml:"enabled"`
			Weekday string `yaml:"weekday"`
		} `yaml:"weekday_range"`
	} `yaml:"levels"`
	Sessions []Session `yaml:"sessions"`
	Proxy    string    `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("VSTRADER_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("VSTRADER_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("BAR_INTERVAL"); v != "" {
		cfg.DataSource.Interval = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("POLL_CRON"); v != "" {
		cfg.Schedule.PollCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LEVELS_TIMEZONE"); v != "" {
		cfg.Levels.Timezone = v
	}

	// Defaults. The default sessions assume a near-24h instrument; cash
	// indices like SPX500 only trade inside the New York window.
	if cfg.DataSource.Symbol == "" {
		cfg.DataSource.Symbol = "ES"
	}
	if cfg.DataSource.Interval == "" {
		cfg.DataSource.Interval = "15m"
	}
	if cfg.DataSource.Limit == 0 {
		cfg.DataSource.Limit = 500
	}
	if cfg.Schedule.PollCron == "" {
		cfg.Schedule.PollCron = "30 */15 * * * *"
	}
	if cfg.Schedule.SummaryCron == "" {
		cfg.Schedule.SummaryCron = "0 0 7 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/level_sentinel.db"
	}
	if cfg.Levels.Timezone == "" {
		cfg.Levels.Timezone = "UTC"
	}
	if cfg.Levels.WeekdayRange.Weekday == "" {
		cfg.Levels.WeekdayRange.Weekday = "monday"
	}
	if len(cfg.Sessions) == 0 {
		cfg.Sessions = []Session{
			{Name: "London", Tag: "Lon", Start: "08:00", End: "16:00"},
			{Name: "New York", Tag: "NY", Start: "13:00", End: "21:00"},
			{Name: "Asia", Tag: "Asia", Start: "00:00", End: "08:00"},
		}
	}

	return cfg, nil
}

// Validate checks that required fields are set and that the level settings
// form a usable levels.Config.
func (c *Config) Validate() error {
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.DataSource.Symbol == "" {
		return fmt.Errorf("data_source.symbol is required")
	}
	if d, err := time.ParseDuration(c.DataSource.Interval); err != nil || d <= 0 || d >= 24*time.Hour {
		return fmt.Errorf("data_source.interval %q must be an intraday duration like 5m or 1h", c.DataSource.Interval)
	}
	if c.DataSource.Limit <= 0 {
		return fmt.Errorf("data_source.limit must be positive")
	}
	lc, err := c.LevelsConfig()
	if err != nil {
		return err
	}
	return lc.Validate()
}

// BarInterval returns the primary bar duration.
func (c *Config) BarInterval() time.Duration {
	d, _ := time.ParseDuration(c.DataSource.Interval)
	return d
}

// LevelsConfig converts the level and session settings into a levels.Config.
func (c *Config) LevelsConfig() (levels.Config, error) {
	loc, err := time.LoadLocation(c.Levels.Timezone)
	if err != nil {
		return levels.Config{}, fmt.Errorf("levels.timezone: %w", err)
	}
	wd, err := parseWeekday(c.Levels.WeekdayRange.Weekday)
	if err != nil {
		return levels.Config{}, err
	}
	lc := levels.Config{
		Location:   loc,
		WarmupBars: levels.DefaultWarmupBars,
		Timeframes: map[model.Timeframe]levels.Toggle{
			model.Daily:   c.Levels.Daily.toggle(),
			model.Weekly:  c.Levels.Weekly.toggle(),
			model.Monthly: c.Levels.Monthly.toggle(),
			model.Yearly:  c.Levels.Yearly.toggle(),
		},
		WeekdayRange: on(c.Levels.WeekdayRange.Enabled),
		RangeWeekday: wd,
	}
	if c.Levels.WarmupBars != nil {
		lc.WarmupBars = *c.Levels.WarmupBars
	}
	for _, s := range c.Sessions {
		if !on(s.Enabled) {
			continue
		}
		start, err := clock.ParseTimeOfDay(s.Start)
		if err != nil {
			return levels.Config{}, fmt.Errorf("session %s start: %w", s.Name, err)
		}
		end, err := clock.ParseTimeOfDay(s.End)
		if err != nil {
			return levels.Config{}, fmt.Errorf("session %s end: %w", s.Name, err)
		}
		lc.Sessions = append(lc.Sessions, levels.SessionConfig{
			Name:   s.Name,
			Tag:    s.Tag,
			Window: tracker.Window{Start: start, End: end},
		})
	}
	return lc, nil
}

func (t Toggle) toggle() levels.Toggle {
	return levels.Toggle{Open: on(t.Open), HighLow: on(t.HighLow)}
}

func on(b *bool) bool { return b == nil || *b }

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if v := strings.ToLower(s); v == name || v == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("levels.weekday_range.weekday: unknown weekday %q", s)
}
