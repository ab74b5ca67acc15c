// Package performance computes run metrics from an equity curve and the
// closed trades of a backtest. Every function here is pure.
package performance

import (
	"math"
	"time"

	"github.com/rustyeddy/advisor/market"
)

// TradingDaysPerYear annualizes the Sharpe ratio.
const TradingDaysPerYear = 252

// EquityPoint is the portfolio marked at one trading day's close.
type EquityPoint struct {
	Date          time.Time `json:"date"`
	Cash          float64   `json:"cash"`
	PositionValue float64   `json:"position_value"`
	TotalValue    float64   `json:"total_value"`
}

// TradeResult is the part of an executed order the analyzer needs.
type TradeResult struct {
	Closing    bool
	NetPnL     float64
	Commission float64
}

// Metrics are reported as fractions: 0.1 means 10%.
type Metrics struct {
	InitialCapital float64 `json:"initial_capital"`
	FinalValue     float64 `json:"final_value"`
	TotalReturn    float64 `json:"total_return"`
	TotalReturnPct float64 `json:"total_return_pct"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	CAGR           float64 `json:"cagr"`

	TotalTrades   int     `json:"total_trades"`
	ClosedTrades  int     `json:"closed_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	NoTrades      bool    `json:"no_trades"`
	AvgWin        float64 `json:"avg_win"`
	AvgLoss       float64 `json:"avg_loss"`
	// ProfitFactor is gross wins over gross losses; 0 when there were no losses.
	ProfitFactor    float64 `json:"profit_factor"`
	TotalCommission float64 `json:"total_commission"`

	TradingDays         int     `json:"trading_days"`
	CalendarDays        int     `json:"calendar_days"`
	BuyAndHoldReturnPct float64 `json:"buy_and_hold_return_pct"`
}

// Analyze derives Metrics. An empty curve yields zero returns.
func Analyze(initialCapital float64, curve []EquityPoint, trades []TradeResult) Metrics {
	m := Metrics{
		InitialCapital: initialCapital,
		FinalValue:     initialCapital,
		TradingDays:    len(curve),
	}

	values := make([]float64, len(curve))
	for i, p := range curve {
		values[i] = p.TotalValue
	}

	if len(curve) > 0 {
		m.FinalValue = values[len(values)-1]
		m.CalendarDays = market.CalendarDays(curve[0].Date, curve[len(curve)-1].Date)
	}
	m.TotalReturn = m.FinalValue - initialCapital
	if initialCapital > 0 {
		m.TotalReturnPct = m.TotalReturn / initialCapital
	}

	m.SharpeRatio = Sharpe(DailyReturns(values))
	m.MaxDrawdownPct = MaxDrawdown(values)
	m.CAGR = CAGR(initialCapital, m.FinalValue, m.CalendarDays)

	tradeStats(&m, trades)
	return m
}

// DailyReturns returns v[i]/v[i-1]-1 for i >= 1. Steps from a non-positive
// value are reported as 0.
func DailyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] > 0 {
			out[i-1] = values[i]/values[i-1] - 1
		}
	}
	return out
}

// Sharpe is mean/stdev*sqrt(252) with the sample standard deviation. It is 0
// with fewer than two returns or no volatility.
func Sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	ss := 0.0
	for _, r := range returns {
		ss += (r - mean) * (r - mean)
	}
	stdev := math.Sqrt(ss / float64(len(returns)-1))
	if stdev == 0 || math.IsNaN(stdev) {
		return 0
	}
	return mean / stdev * math.Sqrt(TradingDaysPerYear)
}

// MaxDrawdown is the largest peak-to-trough decline as a positive fraction
// of the running peak.
func MaxDrawdown(values []float64) float64 {
	peak := math.Inf(-1)
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// CAGR annualizes over calendar days. It is 0 when no calendar time passed.
func CAGR(initial, final float64, calendarDays int) float64 {
	if calendarDays <= 0 || initial <= 0 {
		return 0
	}
	if final <= 0 {
		return -1
	}
	return math.Pow(final/initial, 365/float64(calendarDays)) - 1
}

// BuyAndHold is the return of holding from the first close to the last.
func BuyAndHold(firstClose, lastClose float64) float64 {
	if firstClose <= 0 {
		return 0
	}
	return lastClose/firstClose - 1
}

func tradeStats(m *Metrics, trades []TradeResult) {
	var grossWin, grossLoss float64
	for _, t := range trades {
		m.TotalTrades++
		m.TotalCommission += t.Commission
		if !t.Closing {
			continue
		}
		m.ClosedTrades++
		switch {
		case t.NetPnL > 0:
			m.WinningTrades++
			grossWin += t.NetPnL
		case t.NetPnL < 0:
			m.LosingTrades++
			grossLoss += -t.NetPnL
		}
	}

	if m.ClosedTrades == 0 {
		m.NoTrades = true
		return
	}
	m.WinRate = float64(m.WinningTrades) / float64(m.ClosedTrades)
	if m.WinningTrades > 0 {
		m.AvgWin = grossWin / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = -grossLoss / float64(m.LosingTrades)
	}
	if grossLoss > 0 {
		m.ProfitFactor = grossWin / grossLoss
	}
}
