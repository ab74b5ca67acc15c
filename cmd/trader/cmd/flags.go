package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/advisor/config"
)

// addBacktestFlags registers the settings shared by run, quick and batch.
// Only flags given on the command line override the config file.
func addBacktestFlags(c *cobra.Command) {
	f := c.Flags()
	f.Float64("capital", 0, "initial capital (default 100000)")
	f.Float64("commission", 0, "commission rate per trade, 0.001 = 0.1% (default 0.001)")
	f.Float64("position-size", 0, "fraction of cash committed per BUY, 0-1 (default 1.0)")
	f.Int("min-confidence", 0, "minimum confidence, 1-10, required to trade (default 5)")
	f.StringP("output-dir", "o", "", "results directory (default ./backtest_results)")
	f.String("provider", "", "price data provider: csv or polygon (default csv)")
	f.String("data", "", "CSV price file; {symbol} is replaced by the symbol (default ./data/{symbol}.csv)")
	f.String("oracle", "", "decision oracle: ema-cross, recorded, gemini or hold (default ema-cross)")
	f.String("recommendations", "", "CSV of recorded recommendations for --oracle recorded")
	f.String("model", "", "model name for --oracle gemini")
	f.String("journal", "", "SQLite run journal to append to")
}

func applyBacktestFlags(c *cobra.Command, cfg *config.Config) {
	f := c.Flags()
	if f.Changed("capital") {
		cfg.Backtest.InitialCapital, _ = f.GetFloat64("capital")
	}
	if f.Changed("commission") {
		cfg.Backtest.CommissionRate, _ = f.GetFloat64("commission")
	}
	if f.Changed("position-size") {
		cfg.Backtest.PositionSize, _ = f.GetFloat64("position-size")
	}
	if f.Changed("min-confidence") {
		cfg.Backtest.MinConfidence, _ = f.GetInt("min-confidence")
	}
	if f.Changed("output-dir") {
		cfg.Output.Dir, _ = f.GetString("output-dir")
	}
	if f.Changed("provider") {
		cfg.Data.Provider, _ = f.GetString("provider")
	}
	if f.Changed("data") {
		cfg.Data.Path, _ = f.GetString("data")
	}
	if f.Changed("oracle") {
		cfg.Oracle.Kind, _ = f.GetString("oracle")
	}
	if f.Changed("recommendations") {
		cfg.Oracle.Recommendations, _ = f.GetString("recommendations")
	}
	if f.Changed("model") {
		cfg.Oracle.Model, _ = f.GetString("model")
	}
	if f.Changed("journal") {
		cfg.Output.Journal, _ = f.GetString("journal")
	}
	if debug {
		cfg.Output.Debug = true
	}
}
