package sim

import (
	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/oracle"
	"github.com/rustyeddy/advisor/risk"
)

// SkipReason says why a recommendation produced no order.
type SkipReason string

const (
	SkipLowConfidence     SkipReason = "low_confidence"
	SkipAlreadyLong       SkipReason = "already_long"
	SkipInsufficientFunds SkipReason = "insufficient_funds"
	SkipNoPosition        SkipReason = "no_position"
	SkipLedgerRejected    SkipReason = "ledger_rejected"
)

type Skip struct {
	Reason SkipReason
	Action oracle.Action
	Detail string
}

// Decision holds at most one of Order or Skip. Both nil means nothing to do
// and nothing worth logging (a HOLD).
type Decision struct {
	Order *Order
	Skip  *Skip
}

// Simulator maps a recommendation and the current ledger state to an order.
// It never mutates the ledger.
type Simulator struct {
	Policy risk.Policy
}

func NewSimulator(p risk.Policy) *Simulator {
	return &Simulator{Policy: p}
}

// Decide executes at the bar's close. Confidence is a binary gate.
func (s *Simulator) Decide(rec oracle.Recommendation, snap Snapshot, bar market.PriceBar) Decision {
	if rec.Confidence < s.Policy.MinConfidence {
		if rec.Action == oracle.Hold {
			return Decision{}
		}
		return skip(SkipLowConfidence, rec.Action, "")
	}

	price := bar.Close
	switch rec.Action {
	case oracle.Buy:
		if !snap.Position.Flat() {
			return skip(SkipAlreadyLong, rec.Action, "")
		}
		size := risk.Calculate(risk.Inputs{
			Cash:           snap.Cash,
			Fraction:       s.Policy.PositionSize,
			Price:          price,
			CommissionRate: s.Policy.CommissionRate,
		})
		if size.Shares <= 0 {
			return skip(SkipInsufficientFunds, rec.Action, "")
		}
		return Decision{Order: &Order{
			Date:       bar.Date,
			Side:       Buy,
			Quantity:   size.Shares,
			Price:      price,
			Commission: size.Commission,
			Confidence: rec.Confidence,
		}}

	case oracle.Sell:
		if snap.Position.Flat() {
			return skip(SkipNoPosition, rec.Action, "")
		}
		qty := snap.Position.Quantity
		return Decision{Order: &Order{
			Date:       bar.Date,
			Side:       Sell,
			Quantity:   qty,
			Price:      price,
			Commission: risk.Commission(qty*price, s.Policy.CommissionRate),
			Confidence: rec.Confidence,
		}}

	default:
		return Decision{}
	}
}

func skip(reason SkipReason, a oracle.Action, detail string) Decision {
	return Decision{Skip: &Skip{Reason: reason, Action: a, Detail: detail}}
}
