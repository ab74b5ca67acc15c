package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/rustyeddy/advisor/backtest"
	"github.com/rustyeddy/advisor/config"
	"github.com/rustyeddy/advisor/internal/logger"
	"github.com/rustyeddy/advisor/journal"
	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/market/data"
	"github.com/rustyeddy/advisor/oracle"
	"github.com/rustyeddy/advisor/pkg/errors"
)

func buildProvider(cfg *config.Config) (data.Provider, error) {
	switch cfg.Data.Provider {
	case "polygon":
		p, err := data.NewPolygonProvider(os.Getenv(cfg.Data.APIKeyEnv))
		if err != nil {
			return nil, err
		}
		return p, nil
	case "csv", "":
		return data.NewCSVProvider(cfg.Data.Path), nil
	default:
		return nil, errors.Newf(errors.ErrCodeConfiguration, "unknown data provider %q (supported: csv, polygon)", cfg.Data.Provider)
	}
}

// buildOracle creates the backend named by the config. symbol fills a
// {symbol} placeholder in the recommendations path.
func buildOracle(ctx context.Context, cfg *config.Config, symbol string) (oracle.Oracle, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Oracle.Kind)) {
	case "hold":
		return oracle.Func(func(ctx context.Context, q oracle.Query) (oracle.Recommendation, error) {
			return oracle.HoldFor(q.AsOf, "hold"), nil
		}), nil

	case "ema-cross", "emacross":
		e := oracle.NewEMACross(cfg.Oracle.FastEMA, cfg.Oracle.SlowEMA)
		e.Trend = cfg.Oracle.TrendSMA
		return e, nil

	case "recorded":
		return oracle.LoadRecorded(strings.ReplaceAll(cfg.Oracle.Recommendations, "{symbol}", symbol))

	case "gemini":
		g, err := oracle.NewGenAI(ctx, os.Getenv(cfg.Oracle.APIKeyEnv), cfg.Oracle.Model)
		if err != nil {
			return nil, err
		}
		return oracle.NewSynchronized(g), nil

	default:
		return nil, errors.Newf(errors.ErrCodeConfiguration,
			"unknown oracle %q (supported: ema-cross, recorded, gemini, hold)", cfg.Oracle.Kind)
	}
}

func newEngine(cfg *config.Config, o oracle.Oracle, acfg oracle.AdapterConfig, log *logger.Logger) (*backtest.Engine, error) {
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}
	window := data.NewWindow(provider, log)
	window.MinTradingDays = cfg.Data.MinTradingDays

	return backtest.New(params, window, oracle.NewAdapter(o, acfg, log), log)
}

// progress draws a per-day bar on w. The bar is created on the first day,
// once the number of bars is known.
func progress(w io.Writer, symbol string) func(backtest.Progress) {
	var bar *progressbar.ProgressBar
	return func(p backtest.Progress) {
		if bar == nil {
			bar = progressbar.NewOptions(p.Total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription(symbol),
				progressbar.OptionShowCount(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionClearOnFinish(),
				progressbar.OptionThrottle(100*time.Millisecond),
			)
		}
		bar.Describe(fmt.Sprintf("%s %s %.2f", symbol, market.FormatDate(p.Date), p.TotalValue))
		_ = bar.Set(p.Index + 1)
		if p.Index+1 == p.Total {
			_ = bar.Finish()
		}
	}
}

// executeRun runs one validated configuration, prints the summary to out and
// persists the results.
func executeRun(ctx context.Context, out io.Writer, cfg *config.Config, log *logger.Logger) (*backtest.Result, error) {
	acfg, err := cfg.AdapterConfig()
	if err != nil {
		return nil, err
	}
	o, err := buildOracle(ctx, cfg, strings.ToUpper(cfg.Backtest.Symbol))
	if err != nil {
		return nil, err
	}
	engine, err := newEngine(cfg, o, acfg, log)
	if err != nil {
		return nil, err
	}
	if !noProgress {
		engine.OnDay = progress(os.Stderr, engine.Params().Symbol)
	}

	res, err := engine.Run(ctx)
	if err != nil {
		return nil, err
	}

	backtest.PrintSummary(out, res)
	if err := saveResult(out, cfg, res, log); err != nil {
		return res, err
	}
	return res, nil
}

func saveResult(out io.Writer, cfg *config.Config, res *backtest.Result, log *logger.Logger) error {
	dir, err := journal.WriteResults(cfg.Output.Dir, res, cfg, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nResults saved to: %s\n", dir)

	if cfg.Output.Journal == "" {
		return nil
	}
	j, err := journal.NewSQLite(cfg.Output.Journal)
	if err != nil {
		return fmt.Errorf("open journal %s: %w", cfg.Output.Journal, err)
	}
	defer j.Close()
	if err := journal.Record(j, res, dir); err != nil {
		return fmt.Errorf("journal run %s: %w", res.RunID(), err)
	}
	log.Info("run journaled", zap.String("run_id", res.RunID()), zap.String("journal", cfg.Output.Journal))
	return nil
}
