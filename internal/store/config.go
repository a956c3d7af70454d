package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Scraper ScraperConfig `yaml:"scraper"`
	Cache   CacheConfig   `yaml:"cache"`
	Ranking RankingConfig `yaml:"ranking"`
	History HistoryConfig `yaml:"history"`
	Tracing TracingConfig `yaml:"tracing"`
}

type ScraperConfig struct {
	BaseURL                  string `yaml:"base_url"`
	SquadsURL                string `yaml:"squads_url"`
	Platform                 string `yaml:"platform"`
	UserAgent                string `yaml:"user_agent"`
	NavigationTimeoutSeconds int    `yaml:"navigation_timeout_seconds"`
	ElementTimeoutSeconds    int    `yaml:"element_timeout_seconds"`
	MaxConcurrency           int    `yaml:"max_concurrency"`
	RateLimit                struct {
		Burst          int `yaml:"burst"`
		IntervalMillis int `yaml:"interval_millis"`
	} `yaml:"rate_limit"`
	Retry struct {
		MaxRetries           int `yaml:"max_retries"`
		InitialBackoffMillis int `yaml:"initial_backoff_millis"`
		MaxBackoffMillis     int `yaml:"max_backoff_millis"`
	} `yaml:"retry"`
	Selectors Selectors `yaml:"selectors"`
}

// Selectors are the CSS queries used to read marketplace pages.
type Selectors struct {
	SquadLink        string `yaml:"squad_link"`
	SquadName        string `yaml:"squad_name"`
	SquadHrefPattern string `yaml:"squad_href_pattern"`
	PlayerCard       string `yaml:"player_card"`
	PlayerCardLink   string `yaml:"player_card_link"` // printf pattern, %d is the card position
	PlayerName       string `yaml:"player_name"`
	PlayerNameAttr   string `yaml:"player_name_attr"`
	SalesTable       string `yaml:"sales_table"`
}

type CacheConfig struct {
	Dir                string `yaml:"dir"`
	SquadFile          string `yaml:"squad_file"`
	PlayerStatsFile    string `yaml:"player_stats_file"`
	SquadExpiryMinutes int    `yaml:"squad_expiry_minutes"`
}

type RankingConfig struct {
	TopN              int   `yaml:"top_n"`
	LowValueThreshold int64 `yaml:"low_value_threshold"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// TracingConfig controls span export. Output is "stderr", "stdout" or a
// file path that spans are appended to.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Output      string  `yaml:"output"`
	SampleRatio float64 `yaml:"sample_ratio"`
	Pretty      bool    `yaml:"pretty"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		SquadLink:        "a.squad-box.text-ellipsis.xs-column",
		SquadName:        "div.squads-header.bold",
		SquadHrefPattern: "/26/totw",
		PlayerCard:       "div[id^='cardlid']",
		PlayerCardLink:   "div#cardlid%d a",
		PlayerName:       "div.playercard-26.playercard-m.pointer-events-none",
		PlayerNameAttr:   "title",
		SalesTable:       "table",
	}
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	s := &c.Scraper
	if s.BaseURL == "" {
		s.BaseURL = "https://www.futbin.com"
	}
	if s.SquadsURL == "" {
		s.SquadsURL = s.BaseURL + "/squads"
	}
	if s.Platform == "" {
		s.Platform = "pc"
	}
	if s.UserAgent == "" {
		s.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if s.NavigationTimeoutSeconds == 0 {
		s.NavigationTimeoutSeconds = 60
	}
	if s.ElementTimeoutSeconds == 0 {
		s.ElementTimeoutSeconds = 30
	}
	if s.MaxConcurrency == 0 {
		s.MaxConcurrency = 11
	}
	if s.RateLimit.Burst == 0 {
		s.RateLimit.Burst = 4
	}
	if s.RateLimit.IntervalMillis == 0 {
		s.RateLimit.IntervalMillis = 250
	}
	// -1 disables retries
	if s.Retry.MaxRetries == 0 {
		s.Retry.MaxRetries = 2
	}
	if s.Retry.InitialBackoffMillis == 0 {
		s.Retry.InitialBackoffMillis = 500
	}
	if s.Retry.MaxBackoffMillis == 0 {
		s.Retry.MaxBackoffMillis = 5000
	}
	fillSelectors(&s.Selectors, DefaultSelectors())

	if c.Cache.Dir == "" {
		c.Cache.Dir = "."
	}
	if c.Cache.SquadFile == "" {
		c.Cache.SquadFile = "squads.json"
	}
	if c.Cache.PlayerStatsFile == "" {
		c.Cache.PlayerStatsFile = "players_24h_stats.json"
	}
	if c.Cache.SquadExpiryMinutes == 0 {
		c.Cache.SquadExpiryMinutes = 30
	}

	if c.Ranking.TopN == 0 {
		c.Ranking.TopN = 5
	}
	if c.Ranking.LowValueThreshold == 0 {
		c.Ranking.LowValueThreshold = 100_000
	}

	if c.History.Path == "" {
		c.History.Path = "history.db"
	}

	if c.Tracing.Output == "" {
		c.Tracing.Output = "stderr"
	}
	if c.Tracing.SampleRatio == 0 {
		c.Tracing.SampleRatio = 1
	}
}

func fillSelectors(dst *Selectors, def Selectors) {
	pairs := []struct {
		v   *string
		def string
	}{
		{&dst.SquadLink, def.SquadLink},
		{&dst.SquadName, def.SquadName},
		{&dst.SquadHrefPattern, def.SquadHrefPattern},
		{&dst.PlayerCard, def.PlayerCard},
		{&dst.PlayerCardLink, def.PlayerCardLink},
		{&dst.PlayerName, def.PlayerName},
		{&dst.PlayerNameAttr, def.PlayerNameAttr},
		{&dst.SalesTable, def.SalesTable},
	}
	for _, p := range pairs {
		if strings.TrimSpace(*p.v) == "" {
			*p.v = p.def
		}
	}
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Scraper.BaseURL, "http://") && !strings.HasPrefix(c.Scraper.BaseURL, "https://") {
		return fmt.Errorf("invalid scraper.base_url '%s': must be an http(s) URL", c.Scraper.BaseURL)
	}
	if c.Scraper.MaxConcurrency < 1 {
		return fmt.Errorf("scraper.max_concurrency must be at least 1, got %d", c.Scraper.MaxConcurrency)
	}
	if c.Scraper.Retry.MaxRetries < -1 {
		return fmt.Errorf("scraper.retry.max_retries must be -1 or more, got %d", c.Scraper.Retry.MaxRetries)
	}
	if c.Cache.SquadExpiryMinutes < 0 {
		return fmt.Errorf("cache.squad_expiry_minutes cannot be negative, got %d", c.Cache.SquadExpiryMinutes)
	}
	if c.Cache.SquadFile == c.Cache.PlayerStatsFile {
		return errors.New("cache.squad_file and cache.player_stats_file must differ")
	}
	if !strings.Contains(c.Scraper.Selectors.PlayerCardLink, "%d") {
		return fmt.Errorf("scraper.selectors.player_card_link must contain %%d, got '%s'", c.Scraper.Selectors.PlayerCardLink)
	}
	if c.Ranking.TopN < 1 {
		return fmt.Errorf("ranking.top_n must be at least 1, got %d", c.Ranking.TopN)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within [0, 1], got %v", c.Tracing.SampleRatio)
	}
	return nil
}

func (c *Config) SquadWindow() time.Duration {
	return time.Duration(c.Cache.SquadExpiryMinutes) * time.Minute
}

func (s ScraperConfig) NavigationTimeout() time.Duration {
	return time.Duration(s.NavigationTimeoutSeconds) * time.Second
}

func (s ScraperConfig) ElementTimeout() time.Duration {
	return time.Duration(s.ElementTimeoutSeconds) * time.Second
}

// LoadConfig reads path, fills defaults and validates. A missing file
// yields the defaults.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
