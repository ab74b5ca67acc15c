package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/advisor/backtest"
	"github.com/rustyeddy/advisor/config"
	"github.com/rustyeddy/advisor/oracle"
	"github.com/rustyeddy/advisor/pkg/errors"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Backtest several symbols concurrently",
	Long: `Batch runs one isolated backtest per symbol over the same date range.

Runs share nothing but the oracle rate limit and, for model-driven
oracles, one serialized client. A failed symbol does not stop the others.

Example:
  trader batch --symbols AAPL,MSFT,GOOG --start 2024-01-01 --end 2024-06-30 --parallel 3`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringSlice("symbols", nil, "comma separated symbols (required)")
	batchCmd.Flags().String("start", "", "start date, YYYY-MM-DD")
	batchCmd.Flags().String("end", "", "end date, YYYY-MM-DD")
	batchCmd.Flags().IntP("parallel", "p", 2, "runs in flight at once")
	addBacktestFlags(batchCmd)
	batchCmd.MarkFlagRequired("symbols")
}

func runBatch(cmd *cobra.Command, args []string) error {
	base, err := loadConfig()
	if err != nil {
		return err
	}
	f := cmd.Flags()
	symbols, _ := f.GetStringSlice("symbols")
	parallel, _ := f.GetInt("parallel")
	if f.Changed("start") {
		base.Backtest.StartDate, _ = f.GetString("start")
	}
	if f.Changed("end") {
		base.Backtest.EndDate, _ = f.GetString("end")
	}
	applyBacktestFlags(cmd, base)

	configs, err := batchConfigs(base, symbols)
	if err != nil {
		return err
	}

	log, err := newLogger(base)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	acfg, err := base.AdapterConfig()
	if err != nil {
		return err
	}

	var shared oracle.Oracle
	if base.Oracle.Kind == "gemini" {
		if shared, err = buildOracle(ctx, base, ""); err != nil {
			return err
		}
	}

	engines := make([]*backtest.Engine, len(configs))
	for i, cfg := range configs {
		o := shared
		if o == nil {
			if o, err = buildOracle(ctx, cfg, cfg.Backtest.Symbol); err != nil {
				return fmt.Errorf("%s: %w", cfg.Backtest.Symbol, err)
			}
		}
		if engines[i], err = newEngine(cfg, o, acfg, log); err != nil {
			return fmt.Errorf("%s: %w", cfg.Backtest.Symbol, err)
		}
	}

	log.Info("batch started", zap.Strings("symbols", symbols), zap.Int("parallel", parallel))
	results := backtest.RunBatch(ctx, engines, parallel)

	out := cmd.OutOrStdout()
	var failed []string
	for i, br := range results {
		if br.Err != nil {
			failed = append(failed, br.Params.Symbol)
			log.Error("batch run failed", zap.String("symbol", br.Params.Symbol), zap.Error(br.Err))
			continue
		}
		if err := saveResult(out, configs[i], br.Result, log); err != nil {
			return err
		}
	}

	printBatchTable(out, results)

	if len(failed) == len(results) {
		return results[0].Err
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d runs failed: %s", len(failed), len(results), strings.Join(failed, ", "))
	}
	return nil
}

// batchConfigs validates one config per symbol; the first invalid one aborts.
func batchConfigs(base *config.Config, symbols []string) ([]*config.Config, error) {
	seen := map[string]bool{}
	var out []*config.Config
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true

		cfg := *base
		cfg.Backtest.Symbol = s
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		out = append(out, &cfg)
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "at least one symbol is required")
	}
	return out, nil
}

func printBatchTable(w io.Writer, results []backtest.BatchResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "SYMBOL\tRETURN\tSHARPE\tMAX DD\tTRADES\tRATING")
	for _, br := range results {
		if br.Err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\tFAILED: %s\n", br.Params.Symbol, errors.UserMessage(br.Err))
			continue
		}
		m := br.Result.Metrics
		fmt.Fprintf(tw, "%s\t%+.2f%%\t%.2f\t%.2f%%\t%d\t%s\n",
			br.Params.Symbol, m.TotalReturnPct*100, m.SharpeRatio, m.MaxDrawdownPct*100,
			m.TotalTrades, backtest.Rating(m.TotalReturnPct))
	}
	tw.Flush()
}
