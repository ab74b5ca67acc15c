package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/advisor/config"
	"github.com/rustyeddy/advisor/internal/logger"
	"github.com/rustyeddy/advisor/pkg/errors"
)

var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "Backtest recommendation-driven stock trading over historical prices",
	Long: `Trader replays daily price history for a stock, asks a decision oracle
for a BUY, SELL or HOLD recommendation each day, and simulates the
resulting trades against a cash ledger.

It provides tools for:
  - Running single, quick and batch backtests
  - Rule-based, recorded and model-driven decision oracles
  - CSV and polygon.io price data
  - Per-run result directories and an optional SQLite run journal

Complete documentation is available at https://github.com/rustyeddy/advisor`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	cfgFile    string
	debug      bool
	noProgress bool
)

// Execute runs the CLI. Interrupts cancel the run in progress, which still
// writes its partial results.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// ExitCode maps an error to the process exit status: 2 for configuration
// problems, 3 for missing or insufficient data, 1 for anything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.HasCodeInChain(err, errors.ErrCodeConfiguration),
		errors.HasCodeInChain(err, errors.ErrCodeInvalidParameter):
		return 2
	case errors.HasCodeInChain(err, errors.ErrCodeDataUnavailable),
		errors.HasCodeInChain(err, errors.ErrCodeInvalidRange),
		errors.HasCodeInChain(err, errors.ErrCodeDataParseFailed):
		return 3
	default:
		return 1
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "hide the per-day progress bar")

	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return errors.Wrap(errors.ErrCodeInvalidParameter, err.Error(), err)
	})
}

// loadConfig reads --config when given, otherwise starts from defaults.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgFile)
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.NewLogger(debug || cfg.Output.Debug)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, "create logger", err)
	}
	return log, nil
}
