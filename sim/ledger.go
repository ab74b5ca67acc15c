package sim

import (
	"github.com/rustyeddy/advisor/pkg/errors"
	"github.com/rustyeddy/advisor/risk"
)

// Snapshot is a read-only view of the ledger marked at a price.
type Snapshot struct {
	Cash          float64  `json:"cash"`
	Position      Position `json:"position"`
	Price         float64  `json:"price"`
	PositionValue float64  `json:"position_value"`
	TotalValue    float64  `json:"total_value"`
	Realized      float64  `json:"realized"`
}

// Ledger tracks cash, the single long position and realized P&L.
// It is owned by one run and is not safe for concurrent use.
type Ledger struct {
	cash       float64
	pos        Position
	realized   float64
	commission float64
}

func NewLedger(initialCash float64) *Ledger {
	return &Ledger{cash: initialCash}
}

func (l *Ledger) Cash() float64           { return l.cash }
func (l *Ledger) Position() Position      { return l.pos }
func (l *Ledger) Realized() float64       { return l.realized }
func (l *Ledger) CommissionPaid() float64 { return l.commission }

// MarkToMarket values the ledger at price without changing it.
func (l *Ledger) MarkToMarket(price float64) Snapshot {
	pv := l.pos.MarketValue(price)
	return Snapshot{
		Cash:          l.cash,
		Position:      l.pos,
		Price:         price,
		PositionValue: pv,
		TotalValue:    l.cash + pv,
		Realized:      l.realized,
	}
}

// Apply executes o. A SELL larger than the holding is clamped to it. On error
// the ledger is unchanged.
func (l *Ledger) Apply(o Order) (Fill, error) {
	switch o.Side {
	case Buy:
		return l.buy(o)
	case Sell:
		return l.sell(o)
	default:
		return Fill{}, errors.Newf(errors.ErrCodeInvalidOrder, "unknown side %s", o.Side)
	}
}

func (l *Ledger) buy(o Order) (Fill, error) {
	d := risk.CheckBuy(l.cash, o.Quantity, o.Price, o.Commission)
	if !d.Allowed {
		code := errors.ErrCodeInvalidOrder
		for _, v := range d.Violations {
			if v.Code == "INSUFFICIENT_FUNDS" {
				code = errors.ErrCodeInsufficientFunds
			}
		}
		return Fill{}, errors.Newf(code, "reject %s: %s", o, d)
	}

	l.cash = d.CashAfter
	l.pos = l.pos.add(o.Quantity, o.Price, o.Commission)
	l.commission += o.Commission
	return Fill{Order: o, CashAfter: l.cash}, nil
}

func (l *Ledger) sell(o Order) (Fill, error) {
	d := risk.CheckSell(l.pos.Quantity, o.Quantity, o.Price)
	if !d.Allowed {
		return Fill{}, errors.Newf(errors.ErrCodeInvalidOrder, "reject %s: %s", o, d)
	}

	if o.Quantity > l.pos.Quantity {
		// keep the commission rate the caller used
		o.Commission = o.Commission * l.pos.Quantity / o.Quantity
		o.Quantity = l.pos.Quantity
	}

	costBasis := o.Quantity * l.pos.AverageCost
	proceeds := o.Notional() - o.Commission
	realized := proceeds - costBasis

	var entryCommission float64
	l.pos, entryCommission = l.pos.reduce(o.Quantity)
	l.cash += proceeds
	l.realized += realized
	l.commission += o.Commission

	return Fill{
		Order:       o,
		RealizedPnL: realized,
		NetPnL:      realized - entryCommission,
		Closing:     true,
		CashAfter:   l.cash,
	}, nil
}
