package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rustyeddy/advisor/backtest"
	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/performance"
	"github.com/rustyeddy/advisor/pkg/errors"
)

const (
	ResultsFile   = "results.json"
	ConfigFile    = "config.json"
	EquityFile    = "portfolio_value.csv"
	SummaryFile   = "summary.org"
	timestampForm = "20060102_150405"
)

// RunDirName is <timestamp>_<SYMBOL>_<start>_<end>.
func RunDirName(now time.Time, p backtest.Params) string {
	return fmt.Sprintf("%s_%s_%s_%s", now.Format(timestampForm), p.Symbol,
		market.FormatDate(p.Start), market.FormatDate(p.End))
}

// TradesFileName is trades_<SYMBOL>_<timestamp>.csv.
func TradesFileName(now time.Time, symbol string) string {
	return fmt.Sprintf("trades_%s_%s.csv", symbol, now.Format(timestampForm))
}

type resultsDocument struct {
	RunID    string                 `json:"run_id"`
	Config   backtest.Params        `json:"config"`
	Metrics  performance.Metrics    `json:"metrics"`
	Metadata backtest.Metadata      `json:"metadata"`
	Rating   string                 `json:"rating"`
	TradeLog []backtest.Event       `json:"trade_log"`
	Equity   []backtest.EquityPoint `json:"equity_curve"`
}

// WriteResults creates a fresh run directory under root and writes every
// artifact of res into it. cfg is saved as config.json when non-nil.
// It returns the directory path.
func WriteResults(root string, res *backtest.Result, cfg any, now time.Time) (string, error) {
	dir := filepath.Join(root, RunDirName(now, res.Params))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(errors.ErrCodeOutputFailed, err, "create results directory %s", dir)
	}

	doc := resultsDocument{
		RunID:    res.RunID(),
		Config:   res.Params,
		Metrics:  res.Metrics,
		Metadata: res.Metadata,
		Rating:   backtest.Rating(res.Metrics.TotalReturnPct),
		TradeLog: res.TradeLog(),
		Equity:   res.EquityCurve(),
	}
	if err := writeJSON(filepath.Join(dir, ResultsFile), doc); err != nil {
		return dir, err
	}
	if cfg != nil {
		if err := writeJSON(filepath.Join(dir, ConfigFile), cfg); err != nil {
			return dir, err
		}
	}

	j, err := NewCSV(filepath.Join(dir, TradesFileName(now, res.Params.Symbol)), filepath.Join(dir, EquityFile))
	if err != nil {
		return dir, errors.Wrap(errors.ErrCodeOutputFailed, "open csv journal", err)
	}
	if err := Record(j, res, dir); err != nil {
		j.Close()
		return dir, errors.Wrap(errors.ErrCodeOutputFailed, "write csv journal", err)
	}
	if err := j.Close(); err != nil {
		return dir, errors.Wrap(errors.ErrCodeOutputFailed, "close csv journal", err)
	}

	var buf bytes.Buffer
	if err := WriteSummaryOrg(&buf, NewRunSummary(res, dir)); err != nil {
		return dir, errors.Wrap(errors.ErrCodeOutputFailed, "render summary", err)
	}
	if err := os.WriteFile(filepath.Join(dir, SummaryFile), buf.Bytes(), 0644); err != nil {
		return dir, errors.Wrap(errors.ErrCodeOutputFailed, "write summary", err)
	}
	return dir, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(errors.ErrCodeOutputFailed, err, "encode %s", filepath.Base(path))
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return errors.Wrapf(errors.ErrCodeOutputFailed, err, "write %s", filepath.Base(path))
	}
	return nil
}
