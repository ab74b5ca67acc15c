package cmd

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/advisor/config"
	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/pkg/errors"
)

var quickCmd = &cobra.Command{
	Use:   "quick SYMBOL DAYS [CAPITAL]",
	Short: "Backtest the last DAYS days up to today",
	Long: `Quick runs a backtest over [today - DAYS, today] with default settings.

Examples:
  trader quick AAPL 90
  trader quick TSLA 365 25000`,
	Args: quickArgs,
	RunE: runQuick,
}

func init() {
	rootCmd.AddCommand(quickCmd)
	addBacktestFlags(quickCmd)
}

func quickArgs(cmd *cobra.Command, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "quick takes SYMBOL DAYS [CAPITAL], got %d argument(s)", len(args))
	}
	return nil
}

// quickConfig fills symbol, range and capital from positional arguments.
func quickConfig(cfg *config.Config, args []string, today time.Time) error {
	days, err := strconv.Atoi(args[1])
	if err != nil || days <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "DAYS must be a positive whole number, got %q", args[1])
	}
	if len(args) == 3 {
		capital, err := strconv.ParseFloat(args[2], 64)
		if err != nil || capital <= 0 {
			return errors.Newf(errors.ErrCodeInvalidParameter, "CAPITAL must be a positive number, got %q", args[2])
		}
		cfg.Backtest.InitialCapital = capital
	}

	end := market.TruncateDay(today)
	cfg.Backtest.Symbol = strings.ToUpper(strings.TrimSpace(args[0]))
	cfg.Backtest.StartDate = market.FormatDate(end.AddDate(0, 0, -days))
	cfg.Backtest.EndDate = market.FormatDate(end)
	return nil
}

func runQuick(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyBacktestFlags(cmd, cfg)
	if err := quickConfig(cfg, args, time.Now()); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	if _, err := executeRun(cmd.Context(), cmd.OutOrStdout(), cfg, log); err != nil {
		log.Error("quick backtest failed", zap.String("symbol", cfg.Backtest.Symbol), zap.Error(err))
		return err
	}
	return nil
}
