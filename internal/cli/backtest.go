package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/engine"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/logging"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

func newBacktestCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Score signal families against historical price action",
	}

	cmd.AddCommand(newBacktestRatiosCmd(app))
	cmd.AddCommand(newBacktestPeriodsCmd(app))
	cmd.AddCommand(newBacktestConfluenceCmd(app))

	return cmd
}

func newBacktestRatiosCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ratios SYMBOL",
		Short: "Backtest every catalog ratio as a forward time offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])

			candles, err := app.loadCandles(cmd.Context(), symbol)
			if err != nil {
				output.Error("Failed to load candles for %s: %v", symbol, err)
				return err
			}

			perf := app.analyzer().BacktestRatios(symbol, candles)
			logging.LogBacktest(app.Logger, symbol, "ratios", len(candles), len(perf))

			if output.IsJSON() {
				return output.JSON(perf)
			}
			if len(perf) == 0 {
				output.Warning("Not enough history for %s (%d candles).", symbol, len(candles))
				return nil
			}

			ratios := make([]float64, 0, len(perf))
			for r := range perf {
				ratios = append(ratios, r)
			}
			sort.Float64s(ratios)

			output.Bold("%s - ratio performance over %d candles", symbol, len(candles))
			table := NewTable(output, "RATIO", "SAMPLES", "AVG", "MAX", "MIN", "STDDEV", "SUCCESS")
			for _, r := range ratios {
				stat := perf[r]
				table.AddRow(
					FormatRatio(r),
					fmt.Sprintf("%d", stat.SampleSize),
					output.FormatPercent(stat.AverageChange),
					output.FormatPercent(stat.MaxChange),
					output.FormatPercent(stat.MinChange),
					fmt.Sprintf("%.2f", stat.StdDevChange),
					fmt.Sprintf("%.1f%%", stat.SuccessRate),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newBacktestPeriodsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "periods SYMBOL",
		Short: "Backtest anniversary periods from major pivots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])

			candles, err := app.loadCandles(cmd.Context(), symbol)
			if err != nil {
				output.Error("Failed to load candles for %s: %v", symbol, err)
				return err
			}

			perf := app.analyzer().BacktestPeriods(symbol, candles)
			logging.LogBacktest(app.Logger, symbol, "periods", len(candles), len(perf))

			if output.IsJSON() {
				return output.JSON(perf)
			}
			if len(perf) == 0 {
				output.Warning("No period bucket reached the sample minimum for %s (%d candles).", symbol, len(candles))
				return nil
			}

			periods := make([]int, 0, len(perf))
			for p := range perf {
				periods = append(periods, p)
			}
			sort.Ints(periods)

			output.Bold("%s - anniversary performance over %d candles", symbol, len(candles))
			table := NewTable(output, "PERIOD", "SAMPLES", "AVG", "MAX", "MIN", "STDDEV", "SUCCESS")
			for _, p := range periods {
				stat := perf[p]
				table.AddRow(
					FormatPeriod(p),
					fmt.Sprintf("%d", stat.SampleSize),
					output.FormatPercent(stat.AverageChange),
					output.FormatPercent(stat.MaxChange),
					output.FormatPercent(stat.MinChange),
					fmt.Sprintf("%.2f", stat.StdDevChange),
					fmt.Sprintf("%.1f%%", stat.SuccessRate),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newBacktestConfluenceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "confluence SYMBOL",
		Short: "Replay historical confluence windows over fixed horizons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])
			ctx := cmd.Context()

			candles, err := app.loadCandles(ctx, symbol)
			if err != nil {
				output.Error("Failed to load candles for %s: %v", symbol, err)
				return err
			}

			report := app.analyzer().BacktestConfluence(symbol, candles,
				app.loadSolar(ctx), app.loadLunar(ctx))
			logging.LogBacktest(app.Logger, symbol, "confluence", len(candles), len(report.Horizons))

			if output.IsJSON() {
				return output.JSON(report)
			}
			if len(report.Horizons) == 0 {
				output.Warning("Not enough history for %s (%d candles).", symbol, len(candles))
				return nil
			}

			output.Bold("%s - confluence window outcomes", symbol)
			table := NewTable(output, "HORIZON", "SAMPLES", "AVG", "SUCCESS")
			for _, h := range engine.Horizons {
				stat, ok := report.Horizons[h]
				if !ok {
					continue
				}
				table.AddRow(
					fmt.Sprintf("%dd", h),
					fmt.Sprintf("%d", stat.SampleSize),
					output.FormatPercent(stat.AverageChange),
					fmt.Sprintf("%.1f%%", stat.SuccessRate),
				)
			}
			table.Render()
			output.Println()

			printOutcome(output, "Best window", report.Best)
			printOutcome(output, "Worst window", report.Worst)
			output.Printf("Max drawdown: %.2f%%   Sharpe: %.2f\n", report.MaxDrawdown, report.Sharpe)
			return nil
		},
	}
}

func printOutcome(output *Output, label string, outcome *models.WindowOutcome) {
	if outcome == nil {
		return
	}
	output.Printf("%s: %s (%s) - %s\n",
		label,
		FormatDate(outcome.Window.Date),
		FormatFactors(outcome.Window.FactorLabels()),
		output.FormatPercent(outcome.Return))
}
