package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/logging"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/provider"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/pkg/utils"
)

func newDataCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Manage cached market data",
	}

	cmd.AddCommand(newDataFetchCmd(app))
	cmd.AddCommand(newDataFreshnessCmd(app))

	return cmd
}

func newDataFetchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch SYMBOL",
		Short: "Fetch and cache daily history for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])

			days, _ := cmd.Flags().GetInt("days")
			if days <= 0 {
				days = app.Config.Data.FetchDays
			}

			start := time.Now()
			candles, err := app.Candles.Candles(cmd.Context(), symbol, days)
			logging.LogFetch(app.Logger, "exchange", symbol, len(candles), time.Since(start), err)
			if err != nil {
				output.Error("Fetch failed for %s: %v", symbol, err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":  symbol,
					"candles": len(candles),
				})
			}

			output.Success("Fetched %d candles for %s", len(candles), symbol)
			if len(candles) > 0 {
				last := candles[len(candles)-1]
				output.Dim("Range: %s to %s",
					FormatDate(candles[0].Timestamp),
					FormatDate(last.Timestamp))
				output.Dim("Last close: %s  Volume: %s",
					utils.FormatCompact(last.Close), utils.FormatCompact(last.Volume))
			}
			return nil
		},
	}

	cmd.Flags().Int("days", 0, "days of history to fetch (default from config)")
	return cmd
}

func newDataFreshnessCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "freshness SYMBOL",
		Short: "Show cache freshness for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])

			cache, ok := app.Candles.(*provider.CandleCache)
			if !ok {
				output.Warning("Candle caching is disabled.")
				return nil
			}

			lastSync := cache.Freshness(symbol)
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":    symbol,
					"last_sync": lastSync,
				})
			}

			if lastSync.IsZero() {
				output.Dim("%s has never been synced.", symbol)
				return nil
			}
			output.Printf("%s last synced %s (%s ago)\n",
				symbol, lastSync.Format(time.RFC3339), time.Since(lastSync).Round(time.Second))
			return nil
		},
	}
}
