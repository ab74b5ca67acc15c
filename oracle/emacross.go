package oracle

import (
	"context"
	"fmt"
	"math"

	"github.com/moznion/go-optional"

	"github.com/rustyeddy/advisor/indicators"
	"github.com/rustyeddy/advisor/market"
)

// Price target multipliers applied to the latest close.
const (
	TargetBuyMultiplier  = 1.10
	TargetSellMultiplier = 0.90
	TargetHoldMultiplier = 1.05
)

// Confidence bands.
const (
	ConfidenceHigh   = 8
	ConfidenceMedium = 5
	ConfidenceLow    = 3
)

// EMACross is a rule-based oracle: BUY on a bullish fast/slow EMA cross,
// SELL on a bearish one, HOLD otherwise. It only reads q.History.
type EMACross struct {
	Fast int
	Slow int
	// StrongSpread is the fast/slow spread, as a fraction of the close, at
	// which a cross is reported with high confidence.
	StrongSpread float64
	// Trend, when positive, is the period of an SMA trend filter. A cross
	// against the trend is reported with low confidence.
	Trend int
}

func NewEMACross(fast, slow int) *EMACross {
	if fast <= 0 {
		fast = 10
	}
	if slow <= fast {
		slow = fast * 3
	}
	return &EMACross{Fast: fast, Slow: slow, StrongSpread: 0.01}
}

func (e *EMACross) Name() string { return fmt.Sprintf("EMA-Cross(%d,%d)", e.Fast, e.Slow) }

func (e *EMACross) Evaluate(ctx context.Context, q Query) (Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return Recommendation{}, err
	}

	closes := q.History.Through(q.AsOf).Closes()
	if len(closes) < e.Slow+1 {
		rec := HoldFor(q.AsOf, fmt.Sprintf("warming up: %d of %d closes", len(closes), e.Slow+1))
		rec.Confidence = ConfidenceLow
		return rec, nil
	}

	fast, err := indicators.EMASeries(closes, e.Fast)
	if err != nil {
		return Recommendation{}, err
	}
	slow, err := indicators.EMASeries(closes, e.Slow)
	if err != nil {
		return Recommendation{}, err
	}

	diff := fast[len(fast)-1] - slow[len(slow)-1]
	lastDiff := fast[len(fast)-2] - slow[len(slow)-2]
	last := closes[len(closes)-1]

	rec := Recommendation{AsOf: market.TruncateDay(q.AsOf)}
	switch {
	case diff > 0 && lastDiff <= 0:
		rec.Action = Buy
		rec.TargetPrice = optional.Some(last * TargetBuyMultiplier)
		rec.Rationale = "bullish EMA cross"
	case diff < 0 && lastDiff >= 0:
		rec.Action = Sell
		rec.TargetPrice = optional.Some(last * TargetSellMultiplier)
		rec.Rationale = "bearish EMA cross"
	default:
		rec.Action = Hold
		rec.Confidence = ConfidenceLow
		rec.TargetPrice = optional.Some(last * TargetHoldMultiplier)
		rec.Rationale = "no cross"
		return rec, nil
	}

	if e.Trend > 0 && len(closes) >= e.Trend {
		sma, err := indicators.MA(closes, e.Trend)
		if err != nil {
			return Recommendation{}, err
		}
		if (rec.Action == Buy && last < sma) || (rec.Action == Sell && last > sma) {
			rec.Confidence = ConfidenceLow
			rec.Rationale += fmt.Sprintf(" against SMA(%d) trend", e.Trend)
			return rec, nil
		}
	}

	rec.Confidence = ConfidenceMedium
	if math.Abs(diff)/last >= e.StrongSpread {
		rec.Confidence = ConfidenceHigh
	}
	return rec, nil
}
