package infra

import (
	"fmt"
	"os"

	"maker_go/internal/domain"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds every application setting. Credentials can be overridden
// through environment variables after the file is loaded.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		Bitfinex struct {
			RestURL   string `yaml:"rest_url"`
			WSURL     string `yaml:"ws_url"`
			APIKey    string `yaml:"api_key"`
			APISecret string `yaml:"api_secret"`
		} `yaml:"bitfinex"`
	} `yaml:"api"`

	Maker struct {
		Symbol           string          `yaml:"symbol"`
		Levels           int             `yaml:"levels"`
		SpreadPct        decimal.Decimal `yaml:"spread_pct"`
		Size             decimal.Decimal `yaml:"size"`
		SideFilter       string          `yaml:"side_filter"` // "", "buy", "sell"
		PostOnly         bool            `yaml:"post_only"`
		SweepIntervalSec int             `yaml:"sweep_interval_sec"`
		SettleDelayMS    int             `yaml:"settle_delay_ms"`
		SweepStatusEvery int             `yaml:"sweep_status_every"`
	} `yaml:"maker"`

	Journal struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"journal"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Maker.SweepIntervalSec == 0 {
		cfg.Maker.SweepIntervalSec = 30
	}
	if cfg.Maker.SettleDelayMS == 0 {
		cfg.Maker.SettleDelayMS = 1000
	}
	if cfg.Maker.SweepStatusEvery == 0 {
		cfg.Maker.SweepStatusEvery = 10
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.API.Bitfinex.RestURL == "" || (!hasPrefix(c.API.Bitfinex.RestURL, "http://") && !hasPrefix(c.API.Bitfinex.RestURL, "https://")) {
		return fmt.Errorf("invalid Bitfinex REST URL: %s", c.API.Bitfinex.RestURL)
	}
	if c.API.Bitfinex.WSURL == "" || (!hasPrefix(c.API.Bitfinex.WSURL, "ws://") && !hasPrefix(c.API.Bitfinex.WSURL, "wss://")) {
		return fmt.Errorf("invalid Bitfinex WS URL: %s", c.API.Bitfinex.WSURL)
	}
	if c.Maker.Symbol == "" {
		return fmt.Errorf("maker symbol is required")
	}
	if c.Maker.Levels < 1 {
		return fmt.Errorf("maker levels must be at least 1")
	}
	if !c.Maker.SpreadPct.IsPositive() {
		return fmt.Errorf("maker spread_pct must be positive")
	}
	if !c.Maker.Size.IsPositive() {
		return fmt.Errorf("maker size must be positive")
	}
	switch domain.SideFilter(c.Maker.SideFilter) {
	case domain.FilterNone, domain.FilterBuyOnly, domain.FilterSellOnly:
	default:
		return fmt.Errorf("maker side_filter must be empty, %q or %q", domain.FilterBuyOnly, domain.FilterSellOnly)
	}
	if c.Maker.SweepIntervalSec <= 0 {
		return fmt.Errorf("sweep interval must be positive")
	}
	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv applies environment variables over file values.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("MAKER_BFX_API_KEY"); key != "" {
		cfg.API.Bitfinex.APIKey = key
	}
	if secret := os.Getenv("MAKER_BFX_API_SECRET"); secret != "" {
		cfg.API.Bitfinex.APISecret = secret
	}
}
