// Package sim holds the single-asset portfolio ledger and the execution
// simulator that turns recommendations into orders.
package sim

import (
	"fmt"
	"time"
)

type Side uint8

const (
	Buy Side = iota + 1
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return fmt.Sprintf("Side(%d)", uint8(s))
	}
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Order is a fill request at a known price. Orders are executed at the
// day's close, so Price is always a bar close.
type Order struct {
	Date       time.Time `json:"date"`
	Side       Side      `json:"side"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	Commission float64   `json:"commission"`
	Confidence int       `json:"confidence"`
}

func (o Order) Notional() float64 { return o.Quantity * o.Price }

func (o Order) String() string {
	return fmt.Sprintf("%s %s %.0f @ %.4f (commission %.2f)",
		o.Date.Format("2006-01-02"), o.Side, o.Quantity, o.Price, o.Commission)
}

// Fill is the ledger's record of an applied order.
type Fill struct {
	Order Order `json:"order"`
	// RealizedPnL is proceeds net of exit commission less cost basis.
	RealizedPnL float64 `json:"realized_pnl"`
	// NetPnL additionally deducts the entry commission attributed to the
	// closed quantity. Zero for entries.
	NetPnL    float64 `json:"net_pnl"`
	Closing   bool    `json:"closing"`
	CashAfter float64 `json:"cash_after"`
}
