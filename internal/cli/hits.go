package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

func newHitsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hits",
		Short: "Test historical projections against actual price moves",
		Long: `Hits scans the candles around every historically projected date and reports
whether price actually moved by the margin threshold within the tolerance
window.`,
	}

	cmd.PersistentFlags().Float64("margin", 0, "move percent that counts as a hit (default from config)")
	cmd.PersistentFlags().Int("tolerance", 0, "scan radius in days around each projection (default from config)")

	cmd.AddCommand(newHitsRatiosCmd(app))
	cmd.AddCommand(newHitsPeriodsCmd(app))

	return cmd
}

func (a *App) hitParams(cmd *cobra.Command) (float64, int) {
	margin, _ := cmd.Flags().GetFloat64("margin")
	if margin <= 0 {
		margin = a.Config.Engine.HitMarginPercent
	}
	tolerance, _ := cmd.Flags().GetInt("tolerance")
	if tolerance <= 0 {
		tolerance = a.Config.Engine.HitToleranceDays
	}
	return margin, tolerance
}

func newHitsRatiosCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ratios SYMBOL",
		Short: "Hit-test every pivot and ratio projection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runHits(cmd, args[0], true)
		},
	}
}

func newHitsPeriodsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "periods SYMBOL",
		Short: "Hit-test every pivot and anniversary projection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runHits(cmd, args[0], false)
		},
	}
}

func (a *App) runHits(cmd *cobra.Command, rawSymbol string, ratios bool) error {
	output := NewOutput(cmd)
	symbol := strings.ToUpper(rawSymbol)
	margin, tolerance := a.hitParams(cmd)

	candles, err := a.loadCandles(cmd.Context(), symbol)
	if err != nil {
		output.Error("Failed to load candles for %s: %v", symbol, err)
		return err
	}

	analyzer := a.analyzer()
	var results []models.HitResult
	if ratios {
		results = analyzer.TestRatioHits(candles, margin, tolerance)
	} else {
		results = analyzer.TestPeriodHits(candles, margin, tolerance)
	}

	if output.IsJSON() {
		return output.JSON(results)
	}
	if len(results) == 0 {
		output.Dim("No verifiable projections for %s.", symbol)
		return nil
	}

	hits := 0
	for _, r := range results {
		if r.IsHit {
			hits++
		}
	}

	output.Bold("%s - %d tested, %d hits (margin %.1f%%, tolerance ±%dd)",
		symbol, len(results), hits, margin, tolerance)
	table := NewTable(output, "PIVOT", "SOURCE", "PROJECTED", "MOVED", "MOVE", "DIR", "RESULT")
	for _, r := range results {
		source := "ratio " + FormatRatio(r.Ratio)
		if r.Period > 0 {
			source = FormatPeriod(r.Period)
		}
		table.AddRow(
			FormatDate(r.PivotDate),
			source,
			FormatDate(r.ProjectedDate),
			fmt.Sprintf("%+dd", r.DaysFromProjection),
			output.FormatPercent(r.MovePercent),
			output.FormatDirection(r.Direction),
			output.FormatHitMark(r.IsHit),
		)
	}
	table.Render()

	output.Printf("Hit rate: %.1f%%\n", float64(hits)/float64(len(results))*100)
	return nil
}
