// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	apperrors "github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Engine  EngineConfig              `mapstructure:"engine"`
	Data    DataConfig                `mapstructure:"data"`
	UI      UIConfig                  `mapstructure:"ui"`
	Anchors map[string][]AnchorConfig `mapstructure:"anchors"`
}

// EngineConfig holds tunables for the signal generation and backtest engine.
type EngineConfig struct {
	BaseUnit             int     `mapstructure:"base_unit"`
	RecentWindow         int     `mapstructure:"recent_window"`
	MajorWindow          int     `mapstructure:"major_window"`
	RecentPivotCap       int     `mapstructure:"recent_pivot_cap"`
	MinRatioCandles      int     `mapstructure:"min_ratio_candles"`
	MinPeriodCandles     int     `mapstructure:"min_period_candles"`
	MinConfluenceCandles int     `mapstructure:"min_confluence_candles"`
	MinPeriodSamples     int     `mapstructure:"min_period_samples"`
	ConfluenceWeight     float64 `mapstructure:"confluence_weight"`
	HitMarginPercent     float64 `mapstructure:"hit_margin_percent"`
	HitToleranceDays     int     `mapstructure:"hit_tolerance_days"`
	HitLookbackDays      int     `mapstructure:"hit_lookback_days"`
}

// DataConfig holds data provider configuration.
type DataConfig struct {
	ExchangeURL      string        `mapstructure:"exchange_url"`
	Timeframe        string        `mapstructure:"timeframe"`
	FetchDays        int           `mapstructure:"fetch_days"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	LunarCSVPath     string        `mapstructure:"lunar_csv_path"`
	SolarForecastURL string        `mapstructure:"solar_forecast_url"`
	KpThreshold      float64       `mapstructure:"kp_threshold"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	NoColor    bool   `mapstructure:"no_color"`
	DateFormat string `mapstructure:"date_format"`
}

// AnchorConfig is a hardcoded major pivot for a well-known symbol, used by the
// period backtest before falling back to detector-derived pivots.
type AnchorConfig struct {
	Date  string  `mapstructure:"date"` // YYYY-MM-DD
	Price float64 `mapstructure:"price"`
	Kind  string  `mapstructure:"kind"` // MAJOR_HIGH or MAJOR_LOW
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/fibtime"
	}
	return filepath.Join(home, ".config", "fibtime")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template
			return createTemplateConfig(configDir)
		}
		return err
	}

	return v.Unmarshal(target)
}

// applyDefaults fills zero-valued fields with engine defaults so that a
// partial config file still yields a working setup.
func applyDefaults(cfg *Config) {
	if cfg.Engine.BaseUnit == 0 {
		cfg.Engine.BaseUnit = 100
	}
	if cfg.Engine.RecentWindow == 0 {
		cfg.Engine.RecentWindow = 2
	}
	if cfg.Engine.MajorWindow == 0 {
		cfg.Engine.MajorWindow = 26
	}
	if cfg.Engine.RecentPivotCap == 0 {
		cfg.Engine.RecentPivotCap = 8
	}
	if cfg.Engine.MinRatioCandles == 0 {
		cfg.Engine.MinRatioCandles = 100
	}
	if cfg.Engine.MinPeriodCandles == 0 {
		cfg.Engine.MinPeriodCandles = 400
	}
	if cfg.Engine.MinConfluenceCandles == 0 {
		cfg.Engine.MinConfluenceCandles = 100
	}
	if cfg.Engine.MinPeriodSamples == 0 {
		cfg.Engine.MinPeriodSamples = 5
	}
	if cfg.Engine.ConfluenceWeight == 0 {
		cfg.Engine.ConfluenceWeight = 0.3
	}
	if cfg.Engine.HitMarginPercent == 0 {
		cfg.Engine.HitMarginPercent = 2.0
	}
	if cfg.Engine.HitToleranceDays == 0 {
		cfg.Engine.HitToleranceDays = 3
	}
	if cfg.Engine.HitLookbackDays == 0 {
		cfg.Engine.HitLookbackDays = 730
	}
	if cfg.Data.ExchangeURL == "" {
		cfg.Data.ExchangeURL = "https://api.binance.com"
	}
	if cfg.Data.Timeframe == "" {
		cfg.Data.Timeframe = "1d"
	}
	if cfg.Data.FetchDays == 0 {
		cfg.Data.FetchDays = 1000
	}
	if cfg.Data.CacheTTL == 0 {
		cfg.Data.CacheTTL = 15 * time.Minute
	}
	if cfg.Data.KpThreshold == 0 {
		cfg.Data.KpThreshold = 5.0
	}
	if cfg.UI.DateFormat == "" {
		cfg.UI.DateFormat = "2006-01-02"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FIBTIME_EXCHANGE_URL"); v != "" {
		cfg.Data.ExchangeURL = v
	}
	if v := os.Getenv("FIBTIME_SOLAR_URL"); v != "" {
		cfg.Data.SolarForecastURL = v
	}
	if v := os.Getenv("FIBTIME_LUNAR_CSV"); v != "" {
		cfg.Data.LunarCSVPath = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine.BaseUnit <= 0 {
		return apperrors.NewValidationError("engine.base_unit", c.Engine.BaseUnit, "must be positive")
	}
	if c.Engine.RecentWindow <= 0 || c.Engine.MajorWindow <= 0 {
		return apperrors.NewValidationError("engine.recent_window", c.Engine.RecentWindow, "pivot windows must be positive")
	}
	if c.Engine.RecentWindow >= c.Engine.MajorWindow {
		return apperrors.NewValidationError("engine.recent_window", c.Engine.RecentWindow, "must be smaller than major_window")
	}
	if c.Engine.ConfluenceWeight <= 0 || c.Engine.ConfluenceWeight > 1 {
		return apperrors.NewValidationError("engine.confluence_weight", c.Engine.ConfluenceWeight, "must be in (0, 1]")
	}
	if c.Engine.HitMarginPercent <= 0 {
		return apperrors.NewValidationError("engine.hit_margin_percent", c.Engine.HitMarginPercent, "must be positive")
	}
	if c.Engine.HitToleranceDays < 1 {
		return apperrors.NewValidationError("engine.hit_tolerance_days", c.Engine.HitToleranceDays, "must be at least 1")
	}
	if c.Data.KpThreshold < 0 || c.Data.KpThreshold > 9 {
		return apperrors.NewValidationError("data.kp_threshold", c.Data.KpThreshold, "must be between 0 and 9")
	}
	for symbol, anchors := range c.Anchors {
		for _, a := range anchors {
			if _, err := time.Parse("2006-01-02", a.Date); err != nil {
				return apperrors.NewValidationError("anchors."+symbol, a.Date, "invalid date")
			}
			if a.Kind != "MAJOR_HIGH" && a.Kind != "MAJOR_LOW" {
				return apperrors.NewValidationError("anchors."+symbol, a.Kind, "invalid kind")
			}
		}
	}
	return nil
}
