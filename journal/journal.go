// Package journal persists backtest runs: a per-run results directory with
// JSON, CSV and Org files, and an optional SQLite journal across runs.
package journal

import (
	"fmt"
	"time"

	"github.com/rustyeddy/advisor/backtest"
)

// RunRecord is one row of the runs table.
type RunRecord struct {
	RunID   string
	Created time.Time

	Symbol string
	Oracle string
	Start  time.Time
	End    time.Time

	InitialCapital float64
	FinalValue     float64
	TotalReturnPct float64
	SharpeRatio    float64
	MaxDrawdownPct float64
	WinRate        float64
	ProfitFactor   float64

	Trades       int
	ClosedTrades int
	Wins         int
	Losses       int
	DegradedDays int
	Complete     bool

	ResultsDir string
}

// TradeRecord is one executed order.
type TradeRecord struct {
	TradeID     string
	RunID       string
	Symbol      string
	Date        time.Time
	Side        string
	Quantity    float64
	Price       float64
	Commission  float64
	RealizedPnL float64
	NetPnL      float64
	Confidence  int
}

// EquitySnapshot is one point of the equity curve.
type EquitySnapshot struct {
	RunID         string
	Date          time.Time
	Cash          float64
	PositionValue float64
	TotalValue    float64
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Record writes a whole result to j.
func Record(j Journal, res *backtest.Result, resultsDir string) error {
	if err := j.RecordRun(NewRunRecord(res, resultsDir)); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	for _, t := range TradeRecords(res) {
		if err := j.RecordTrade(t); err != nil {
			return fmt.Errorf("record trade %s: %w", t.TradeID, err)
		}
	}
	for _, e := range EquitySnapshots(res) {
		if err := j.RecordEquity(e); err != nil {
			return fmt.Errorf("record equity %s: %w", e.Date.Format("2006-01-02"), err)
		}
	}
	return nil
}

func NewRunRecord(res *backtest.Result, resultsDir string) RunRecord {
	m := res.Metrics
	return RunRecord{
		RunID:          res.RunID(),
		Created:        res.Metadata.StartedAt,
		Symbol:         res.Params.Symbol,
		Oracle:         res.Params.Oracle,
		Start:          res.Params.Start,
		End:            res.Params.End,
		InitialCapital: m.InitialCapital,
		FinalValue:     m.FinalValue,
		TotalReturnPct: m.TotalReturnPct,
		SharpeRatio:    m.SharpeRatio,
		MaxDrawdownPct: m.MaxDrawdownPct,
		WinRate:        m.WinRate,
		ProfitFactor:   m.ProfitFactor,
		Trades:         m.TotalTrades,
		ClosedTrades:   m.ClosedTrades,
		Wins:           m.WinningTrades,
		Losses:         m.LosingTrades,
		DegradedDays:   res.Metadata.DegradedDays,
		Complete:       res.Metadata.Complete,
		ResultsDir:     resultsDir,
	}
}

// TradeRecords numbers the run's fills in order.
func TradeRecords(res *backtest.Result) []TradeRecord {
	fills := res.Fills()
	out := make([]TradeRecord, len(fills))
	for i, f := range fills {
		out[i] = TradeRecord{
			TradeID:     fmt.Sprintf("%s-%03d", res.RunID(), i+1),
			RunID:       res.RunID(),
			Symbol:      res.Params.Symbol,
			Date:        f.Order.Date,
			Side:        f.Order.Side.String(),
			Quantity:    f.Order.Quantity,
			Price:       f.Order.Price,
			Commission:  f.Order.Commission,
			RealizedPnL: f.RealizedPnL,
			NetPnL:      f.NetPnL,
			Confidence:  f.Order.Confidence,
		}
	}
	return out
}

func EquitySnapshots(res *backtest.Result) []EquitySnapshot {
	curve := res.EquityCurve()
	out := make([]EquitySnapshot, len(curve))
	for i, p := range curve {
		out[i] = EquitySnapshot{
			RunID:         res.RunID(),
			Date:          p.Date,
			Cash:          p.Cash,
			PositionValue: p.PositionValue,
			TotalValue:    p.TotalValue,
		}
	}
	return out
}
