package data

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/advisor/internal/logger"
	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/pkg/errors"
)

// DefaultMinTradingDays is the shortest window a backtest will accept.
const DefaultMinTradingDays = 5

// Window is the historical data window handed to the engine.
type Window struct {
	Provider       Provider
	MinTradingDays int
	Log            *logger.Logger
}

// NewWindow wraps p with the default minimum trading-day count.
func NewWindow(p Provider, log *logger.Logger) *Window {
	return &Window{Provider: p, MinTradingDays: DefaultMinTradingDays, Log: log}
}

// Fetch returns ascending, de-duplicated trading-day bars for symbol within [start, end].
//
// It fails with ErrCodeDataUnavailable when nothing usable comes back and with
// ErrCodeInvalidRange when fewer than MinTradingDays bars remain.
func (w *Window) Fetch(ctx context.Context, symbol string, start, end time.Time) (market.Bars, error) {
	log := w.Log.Named("data")

	raw, err := w.Provider.Fetch(ctx, symbol, start, end)
	if err != nil {
		if errors.GetCode(err).IsFatal() {
			return nil, err
		}
		return nil, errors.Wrapf(errors.ErrCodeDataUnavailable, err,
			"could not load price data for %s", symbol)
	}

	bars, stats := market.Normalize(raw, start, end)
	log.Debug("price window loaded",
		zap.String("symbol", symbol),
		zap.Int("raw", stats.Input),
		zap.Int("kept", len(bars)),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("non_trading", stats.NonTrading),
		zap.Int("invalid", stats.Invalid),
		zap.Int("out_of_range", stats.OutOfRange),
	)

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataUnavailable,
			"no price data available for %s between %s and %s",
			symbol, market.FormatDate(start), market.FormatDate(end))
	}

	minDays := w.MinTradingDays
	if minDays <= 0 {
		minDays = DefaultMinTradingDays
	}
	if len(bars) < minDays {
		return nil, errors.Newf(errors.ErrCodeInvalidRange,
			"range %s to %s has %d trading days for %s, need at least %d",
			market.FormatDate(start), market.FormatDate(end), len(bars), symbol, minDays)
	}

	return bars, nil
}
