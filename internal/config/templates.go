package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Fibonacci Time Trader Configuration

[engine]
# Base unit in days for ratio projections (date = pivot + round(base_unit * ratio))
base_unit = 100
# Look-around window for recent pivots (candles on each side)
recent_window = 2
# Look-around window for major pivots on the weekly series
major_window = 26
# Keep only the N most recent fine-grained pivots for forward projections
recent_pivot_cap = 8
# Minimum candles required per backtest family
min_ratio_candles = 100
min_period_candles = 400
min_confluence_candles = 100
# Minimum samples before a period bucket is reported
min_period_samples = 5
# Per-factor weight when scoring a confluence window
confluence_weight = 0.3
# Hit test defaults
hit_margin_percent = 2.0
hit_tolerance_days = 3
hit_lookback_days = 730

[data]
# Public klines endpoint base URL
exchange_url = "https://api.binance.com"
# Candle timeframe for the primary series
timeframe = "1d"
# How many daily candles to fetch
fetch_days = 1000
# In-memory snapshot TTL
cache_ttl = "15m"
# Optional: path to a CSV of lunar events (date,kind)
lunar_csv_path = ""
# Optional: plain-text geomagnetic forecast URL
solar_forecast_url = ""
# Planetary K-index at or above which a day counts as high activity
kp_threshold = 5.0

[ui]
# Disable colored output
no_color = false
# Date format
date_format = "2006-01-02"

# Hardcoded major pivots for well-known symbols. The period backtest uses
# these before falling back to detector-derived pivots.
[[anchors.BTCUSDT]]
date = "2017-12-17"
price = 19891.0
kind = "MAJOR_HIGH"

[[anchors.BTCUSDT]]
date = "2018-12-15"
price = 3122.0
kind = "MAJOR_LOW"

[[anchors.BTCUSDT]]
date = "2021-11-10"
price = 69000.0
kind = "MAJOR_HIGH"

[[anchors.BTCUSDT]]
date = "2022-11-21"
price = 15476.0
kind = "MAJOR_LOW"
`

// createTemplateConfig writes the default config file and returns an error
// prompting the user to review it.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
