package backtest

import (
	"time"

	"github.com/rustyeddy/advisor/oracle"
	"github.com/rustyeddy/advisor/performance"
	"github.com/rustyeddy/advisor/sim"
)

// EquityPoint is one entry of the equity curve: the portfolio marked at a
// trading day's close, after that day's order (if any) was applied.
type EquityPoint = performance.EquityPoint

type EventKind string

const (
	EventExecuted EventKind = "EXECUTED"
	EventSkipped  EventKind = "SKIPPED"
	EventDegraded EventKind = "DEGRADED"
)

// Event is one trade-log entry. Fill is set for EXECUTED, Reason for SKIPPED.
type Event struct {
	Date       time.Time      `json:"date"`
	Kind       EventKind      `json:"kind"`
	Action     oracle.Action  `json:"action"`
	Confidence int            `json:"confidence"`
	Reason     sim.SkipReason `json:"reason,omitempty"`
	Fill       *sim.Fill      `json:"fill,omitempty"`
	Detail     string         `json:"detail,omitempty"`
}

// Metadata describes how the run went, as opposed to how it performed.
type Metadata struct {
	RunID         string    `json:"run_id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	BarsTotal     int       `json:"bars_total"`
	BarsProcessed int       `json:"bars_processed"`
	DegradedDays  int       `json:"degraded_days"`
	SkippedOrders int       `json:"skipped_orders"`
	OracleCalls   int       `json:"oracle_calls"`
	// Complete is false when the run was cancelled before the last bar.
	Complete bool `json:"complete"`
}

// Result is immutable once returned; accessors hand out copies.
type Result struct {
	Params   Params              `json:"config"`
	Metrics  performance.Metrics `json:"metrics"`
	Metadata Metadata            `json:"metadata"`

	curve []EquityPoint
	log   []Event
}

func (r *Result) RunID() string { return r.Metadata.RunID }

func (r *Result) EquityCurve() []EquityPoint {
	out := make([]EquityPoint, len(r.curve))
	copy(out, r.curve)
	return out
}

func (r *Result) TradeLog() []Event {
	out := make([]Event, len(r.log))
	for i, ev := range r.log {
		out[i] = ev
		if ev.Fill != nil {
			f := *ev.Fill
			out[i].Fill = &f
		}
	}
	return out
}

// Fills returns every executed order in date order.
func (r *Result) Fills() []sim.Fill {
	var out []sim.Fill
	for _, ev := range r.log {
		if ev.Kind == EventExecuted && ev.Fill != nil {
			out = append(out, *ev.Fill)
		}
	}
	return out
}

// Skips returns the SKIPPED events.
func (r *Result) Skips() []Event {
	var out []Event
	for _, ev := range r.log {
		if ev.Kind == EventSkipped {
			out = append(out, ev)
		}
	}
	return out
}
