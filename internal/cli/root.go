// Package cli provides the command-line interface for the application.
package cli

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/config"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/engine"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/logging"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/provider"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-01-01"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   store.DataStore
	Candles provider.CandleProvider
	Solar   provider.SolarProvider
	Lunar   provider.LunarProvider
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	colorDisabled = cfg.UI.NoColor
	if cfg.UI.DateFormat != "" {
		dateFormat = cfg.UI.DateFormat
	}

	exchange := provider.NewExchangeClient(cfg.Data.ExchangeURL, cfg.Data.Timeframe, logger)
	app.Candles = exchange

	dbPath := config.DefaultConfigDir() + "/fibtime.db"
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, candle caching disabled")
	} else {
		app.Store = dataStore
		app.Candles = provider.NewCandleCache(exchange, dataStore, cfg.Data.Timeframe, cfg.Data.CacheTTL, logger)
		logger.Debug().Msg("SQLite store initialized")
	}

	app.Solar = provider.NewSolarClient(cfg.Data.SolarForecastURL, cfg.Data.KpThreshold, logger)
	app.Lunar = provider.NewLunarCSV(cfg.Data.LunarCSVPath, logger)

	rootCmd := &cobra.Command{
		Use:   "fibtime",
		Short: "Fibonacci time analysis and backtesting CLI",
		Long: `fibtime projects future turning-point dates from historical price pivots
using Fibonacci time ratios and anniversary cycles, detects dates where
several projections coincide, and backtests every signal family against
price history.

Use 'fibtime help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// The value is consumed by ConfigDirFromArgs before cobra runs; the
	// flag is declared here so it parses cleanly and shows in help.
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/fibtime)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newBacktestCmd(app))
	rootCmd.AddCommand(newHitsCmd(app))
	rootCmd.AddCommand(newDataCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("fibtime v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Engine Configuration")
	output.Printf("  Base Unit:        %d days\n", cfg.Engine.BaseUnit)
	output.Printf("  Recent Window:    %d candles\n", cfg.Engine.RecentWindow)
	output.Printf("  Major Window:     %d weeks\n", cfg.Engine.MajorWindow)
	output.Printf("  Recent Pivot Cap: %d\n", cfg.Engine.RecentPivotCap)
	output.Printf("  Hit Margin:       %.1f%%\n", cfg.Engine.HitMarginPercent)
	output.Printf("  Hit Tolerance:    ±%d days\n", cfg.Engine.HitToleranceDays)
	output.Println()

	output.Bold("Data Configuration")
	output.Printf("  Exchange URL:     %s\n", cfg.Data.ExchangeURL)
	output.Printf("  Timeframe:        %s\n", cfg.Data.Timeframe)
	output.Printf("  Fetch Days:       %d\n", cfg.Data.FetchDays)
	output.Printf("  Cache TTL:        %s\n", cfg.Data.CacheTTL)
	output.Printf("  Kp Threshold:     %.1f\n", cfg.Data.KpThreshold)
	output.Printf("  Lunar CSV:        %s\n", cfg.Data.LunarCSVPath)
	output.Println()

	output.Bold("Anchors")
	for symbol, anchors := range cfg.Anchors {
		output.Printf("  %s: %d major pivots\n", symbol, len(anchors))
	}

	return nil
}

// engineConfig translates the file-level configuration into the engine's
// runtime configuration, parsing anchor pivots along the way.
func engineConfig(cfg *config.Config) engine.Config {
	ec := engine.DefaultConfig()

	ec.BaseUnit = cfg.Engine.BaseUnit
	ec.RecentWindow = cfg.Engine.RecentWindow
	ec.MajorWindow = cfg.Engine.MajorWindow
	ec.RecentPivotCap = cfg.Engine.RecentPivotCap
	ec.MinRatioCandles = cfg.Engine.MinRatioCandles
	ec.MinPeriodCandles = cfg.Engine.MinPeriodCandles
	ec.MinConfluenceCandles = cfg.Engine.MinConfluenceCandles
	ec.MinPeriodSamples = cfg.Engine.MinPeriodSamples
	ec.ConfluenceWeight = cfg.Engine.ConfluenceWeight
	ec.HitLookbackDays = cfg.Engine.HitLookbackDays

	if len(cfg.Anchors) > 0 {
		ec.Anchors = make(map[string][]models.PricePivot, len(cfg.Anchors))
		for symbol, anchors := range cfg.Anchors {
			for _, a := range anchors {
				date, err := time.Parse("2006-01-02", a.Date)
				if err != nil {
					continue
				}
				ec.Anchors[symbol] = append(ec.Anchors[symbol], models.PricePivot{
					Date:     date.UTC(),
					Price:    a.Price,
					Kind:     models.PivotKind(a.Kind),
					Strength: ec.MajorStrength,
				})
			}
		}
	}

	return ec
}

// ConfigDirFromArgs extracts the --config value from raw arguments. The
// config file must be loaded before the command tree is built, so the flag
// is resolved by hand ahead of cobra's own parse.
func ConfigDirFromArgs(args []string) string {
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
			return ""
		case strings.HasPrefix(args[i], "--config="):
			return strings.TrimPrefix(args[i], "--config=")
		}
	}
	return ""
}

// analyzer builds the engine facade from the current configuration.
func (a *App) analyzer() *engine.Analyzer {
	return engine.NewAnalyzer(engineConfig(a.Config), a.Logger)
}

// loadCandles fetches daily history for a symbol through the cache.
func (a *App) loadCandles(ctx context.Context, symbol string) ([]models.Candle, error) {
	return a.Candles.Candles(ctx, symbol, a.Config.Data.FetchDays)
}

// loadSolar fetches the solar forecast. Failures degrade to zero signals.
func (a *App) loadSolar(ctx context.Context) []models.SolarDay {
	days, err := a.Solar.StormDays(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("solar forecast unavailable")
		return nil
	}
	return days
}

// loadLunar loads the lunar calendar. Failures degrade to zero signals.
func (a *App) loadLunar(ctx context.Context) []models.LunarEvent {
	events, err := a.Lunar.Events(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("lunar calendar unavailable")
		return nil
	}
	return events
}
