// Package backtest replays an oracle's daily recommendations against
// historical prices and reports how the resulting portfolio performed.
//
// A run is strictly sequential: for each trading day, ascending, the engine
// asks the oracle for a recommendation using only the history up to that day,
// turns it into at most one order at the day's close, applies it to the
// ledger and records the marked portfolio value.
package backtest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/advisor/internal/logger"
	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/market/data"
	"github.com/rustyeddy/advisor/oracle"
	"github.com/rustyeddy/advisor/performance"
	"github.com/rustyeddy/advisor/pkg/errors"
	"github.com/rustyeddy/advisor/pkg/id"
	"github.com/rustyeddy/advisor/sim"
)

// Progress is reported after every processed day.
type Progress struct {
	Index      int
	Total      int
	Date       time.Time
	State      oracle.DayState
	TotalValue float64
}

// Engine owns everything one run needs. Build a new Engine per run.
type Engine struct {
	params Params
	data   *data.Window
	oracle *oracle.Adapter
	log    *logger.Logger

	// OnDay, when set, is called synchronously after each day.
	OnDay func(Progress)

	now func() time.Time
	// decide replaces the policy simulator when set.
	decide decideFunc
}

type decideFunc func(rec oracle.Recommendation, snap sim.Snapshot, bar market.PriceBar) sim.Decision

// New validates params and wires an engine. Errors carry ErrCodeConfiguration.
func New(params Params, window *data.Window, adapter *oracle.Adapter, log *logger.Logger) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if window == nil {
		return nil, errors.New(errors.ErrCodeConfiguration, "a data window is required")
	}
	if adapter == nil {
		return nil, errors.New(errors.ErrCodeConfiguration, "an oracle is required")
	}
	params.Start = market.TruncateDay(params.Start)
	params.End = market.TruncateDay(params.End)
	return &Engine{
		params: params,
		data:   window,
		oracle: adapter,
		log:    log.Named("backtest").With(zap.String("symbol", params.Symbol)),
		now:    time.Now,
	}, nil
}

func (e *Engine) Params() Params { return e.params }

// Run executes the backtest. Data and configuration problems are returned as
// errors before any day is processed. Cancelling ctx stops the run at the next
// day boundary and returns the partial result with Metadata.Complete false and
// a nil error.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		Params: e.params,
		Metadata: Metadata{
			RunID:     id.New(),
			StartedAt: e.now().UTC(),
		},
	}
	log := e.log.With(zap.String("run_id", res.Metadata.RunID))

	bars, err := e.data.Fetch(ctx, e.params.Symbol, e.params.Start, e.params.End)
	if err != nil {
		if ctx.Err() != nil {
			log.Info("run cancelled while loading data")
			return e.finish(res, nil), nil
		}
		return nil, fmt.Errorf("backtest %s: %w", e.params.Symbol, err)
	}
	res.Metadata.BarsTotal = len(bars)

	log.Info("backtest started",
		zap.String("start", market.FormatDate(e.params.Start)),
		zap.String("end", market.FormatDate(e.params.End)),
		zap.Int("bars", len(bars)),
		zap.Float64("capital", e.params.InitialCapital),
		zap.String("oracle", e.params.Oracle),
	)

	ledger := sim.NewLedger(e.params.InitialCapital)
	decide := e.decide
	if decide == nil {
		decide = sim.NewSimulator(e.params.Policy).Decide
	}
	res.curve = make([]EquityPoint, 0, len(bars))

	// oracle calls are bounded by their own timeout, not by run cancellation
	oracleCtx := context.WithoutCancel(ctx)

	for i, bar := range bars {
		if ctx.Err() != nil {
			log.Info("run cancelled", zap.Int("processed", i), zap.Int("total", len(bars)))
			break
		}

		decision := e.oracle.Resolve(oracleCtx, oracle.Query{
			Symbol:  e.params.Symbol,
			AsOf:    bar.Date,
			History: bars.Through(bar.Date),
		})
		res.Metadata.OracleCalls += decision.Attempts
		rec := decision.Recommendation

		if decision.State == oracle.Degraded {
			res.Metadata.DegradedDays++
			res.log = append(res.log, Event{
				Date:       bar.Date,
				Kind:       EventDegraded,
				Action:     rec.Action,
				Confidence: rec.Confidence,
				Detail:     errors.UserMessage(decision.Err),
			})
		}

		e.step(res, log, ledger, decide, rec, bar)

		snap := ledger.MarkToMarket(bar.Close)
		res.curve = append(res.curve, EquityPoint{
			Date:          bar.Date,
			Cash:          snap.Cash,
			PositionValue: snap.PositionValue,
			TotalValue:    snap.TotalValue,
		})
		res.Metadata.BarsProcessed++

		log.Debug("day processed",
			zap.String("date", market.FormatDate(bar.Date)),
			zap.Stringer("state", decision.State),
			zap.Stringer("action", rec.Action),
			zap.Int("confidence", rec.Confidence),
			zap.Float64("total_value", snap.TotalValue),
		)
		if e.OnDay != nil {
			e.OnDay(Progress{Index: i, Total: len(bars), Date: bar.Date, State: decision.State, TotalValue: snap.TotalValue})
		}
	}

	res.Metadata.Complete = res.Metadata.BarsProcessed == len(bars)
	return e.finish(res, bars[:res.Metadata.BarsProcessed]), nil
}

// step turns one recommendation into at most one fill.
func (e *Engine) step(res *Result, log *logger.Logger, ledger *sim.Ledger, decide decideFunc, rec oracle.Recommendation, bar market.PriceBar) {
	d := decide(rec, ledger.MarkToMarket(bar.Close), bar)

	switch {
	case d.Skip != nil:
		res.Metadata.SkippedOrders++
		res.log = append(res.log, Event{
			Date:       bar.Date,
			Kind:       EventSkipped,
			Action:     rec.Action,
			Confidence: rec.Confidence,
			Reason:     d.Skip.Reason,
			Detail:     d.Skip.Detail,
		})

	case d.Order != nil:
		fill, err := ledger.Apply(*d.Order)
		if err != nil {
			log.Warn("order rejected by ledger",
				zap.String("date", market.FormatDate(bar.Date)),
				zap.Stringer("order", d.Order),
				zap.Error(err),
			)
			res.Metadata.SkippedOrders++
			res.log = append(res.log, Event{
				Date:       bar.Date,
				Kind:       EventSkipped,
				Action:     rec.Action,
				Confidence: rec.Confidence,
				Reason:     sim.SkipLedgerRejected,
				Detail:     errors.UserMessage(err),
			})
			return
		}
		log.Info("order executed",
			zap.String("date", market.FormatDate(bar.Date)),
			zap.Stringer("side", fill.Order.Side),
			zap.Float64("quantity", fill.Order.Quantity),
			zap.Float64("price", fill.Order.Price),
			zap.Float64("cash", fill.CashAfter),
		)
		res.log = append(res.log, Event{
			Date:       bar.Date,
			Kind:       EventExecuted,
			Action:     rec.Action,
			Confidence: rec.Confidence,
			Fill:       &fill,
		})
	}
}

func (e *Engine) finish(res *Result, processed market.Bars) *Result {
	var trades []performance.TradeResult
	for _, f := range res.Fills() {
		trades = append(trades, performance.TradeResult{
			Closing:    f.Closing,
			NetPnL:     f.NetPnL,
			Commission: f.Order.Commission,
		})
	}
	res.Metrics = performance.Analyze(e.params.InitialCapital, res.curve, trades)
	if len(processed) > 0 {
		res.Metrics.BuyAndHoldReturnPct = performance.BuyAndHold(processed[0].Close, processed[len(processed)-1].Close)
	}
	res.Metadata.FinishedAt = e.now().UTC()

	e.log.Info("backtest finished",
		zap.String("run_id", res.Metadata.RunID),
		zap.Bool("complete", res.Metadata.Complete),
		zap.Int("bars", res.Metadata.BarsProcessed),
		zap.Int("degraded_days", res.Metadata.DegradedDays),
		zap.Float64("final_value", res.Metrics.FinalValue),
		zap.Float64("total_return_pct", res.Metrics.TotalReturnPct),
	)
	return res
}
