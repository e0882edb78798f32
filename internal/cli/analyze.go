package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/logging"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Project upcoming turning-point dates for a symbol",
		Long: `Analyze detects recent and major price pivots, projects forward dates from
each pivot through the ratio and anniversary catalogs, and reports the dates
where several projections coincide.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])
			ctx := cmd.Context()

			candles, err := app.loadCandles(ctx, symbol)
			if err != nil {
				output.Error("Failed to load candles for %s: %v", symbol, err)
				return err
			}

			result := app.analyzer().Analyze(symbol, candles,
				app.loadSolar(ctx), app.loadLunar(ctx))
			logging.LogAnalysis(app.Logger, symbol,
				len(result.Pivots), len(result.Projections), len(result.Windows))

			if output.IsJSON() {
				return output.JSON(result)
			}

			if len(result.Pivots) == 0 {
				output.Warning("Not enough history for %s to detect pivots.", symbol)
				return nil
			}

			output.Bold("%s - pivots", symbol)
			pivotTable := NewTable(output, "DATE", "KIND", "PRICE", "STRENGTH")
			for _, p := range result.Pivots {
				pivotTable.AddRow(
					FormatDate(p.Date),
					output.FormatPivotKind(p.Kind),
					fmt.Sprintf("%.2f", p.Price),
					fmt.Sprintf("%.2f", p.Strength),
				)
			}
			pivotTable.Render()
			output.Println()

			output.Bold("Upcoming projections")
			projTable := NewTable(output, "DATE", "SOURCE", "OFFSET", "BIAS", "INTENSITY")
			for _, p := range result.Projections {
				source := "ratio " + FormatRatio(p.Ratio)
				if p.Period > 0 {
					source = FormatPeriod(p.Period) + " anniversary"
				}
				projTable.AddRow(
					FormatDate(p.Date),
					source,
					fmt.Sprintf("%.1fd", p.ExactOffset),
					output.FormatBias(p.Bias),
					IntensityBar(p.Intensity),
				)
			}
			projTable.Render()
			output.Println()

			if len(result.Windows) == 0 {
				output.Dim("No confluence windows in the projection horizon.")
			} else {
				output.Bold("Vortex windows")
				winTable := NewTable(output, "DATE", "INTENSITY", "FACTORS")
				for _, w := range result.Windows {
					winTable.AddRow(
						FormatDate(w.Date),
						IntensityBar(w.Intensity),
						FormatFactors(w.FactorLabels()),
					)
				}
				winTable.Render()
			}
			output.Println()

			output.Printf("Compression: %.2f   Confidence: %.2f\n",
				result.CompressionScore, result.ConfidenceScore)
			return nil
		},
	}
}
