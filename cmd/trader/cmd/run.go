package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest for one symbol",
	Long: `Run a single backtest over [start, end] and save the results.

Settings come from --config when given; flags override the file.

Examples:
  trader run --symbol AAPL --start 2024-01-01 --end 2024-06-30
  trader run --symbol MSFT --start 2023-01-01 --end 2023-12-31 --oracle recorded --recommendations msft.csv
  trader run --config backtest.yaml --capital 50000 --journal runs.sqlite`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("symbol", "s", "", "stock symbol, e.g. AAPL")
	runCmd.Flags().String("start", "", "start date, YYYY-MM-DD")
	runCmd.Flags().String("end", "", "end date, YYYY-MM-DD")
	addBacktestFlags(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("symbol") {
		cfg.Backtest.Symbol, _ = f.GetString("symbol")
	}
	if f.Changed("start") {
		cfg.Backtest.StartDate, _ = f.GetString("start")
	}
	if f.Changed("end") {
		cfg.Backtest.EndDate, _ = f.GetString("end")
	}
	applyBacktestFlags(cmd, cfg)
	cfg.Backtest.Symbol = strings.ToUpper(strings.TrimSpace(cfg.Backtest.Symbol))

	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	res, err := executeRun(cmd.Context(), cmd.OutOrStdout(), cfg, log)
	if err != nil {
		log.Error("backtest failed", zap.String("symbol", cfg.Backtest.Symbol), zap.Error(err))
		return err
	}
	if !res.Metadata.Complete {
		log.Warn("backtest interrupted, partial results saved",
			zap.String("run_id", res.RunID()),
			zap.Int("processed", res.Metadata.BarsProcessed),
			zap.Int("total", res.Metadata.BarsTotal),
		)
	}
	return nil
}
