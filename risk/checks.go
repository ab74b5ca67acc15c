package risk

import (
	"fmt"
)

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed    bool
	Violations []Violation

	CashAfter float64
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Codes reports the violation codes in order.
func (d Decision) Codes() []string {
	out := make([]string, len(d.Violations))
	for i, v := range d.Violations {
		out[i] = v.Code
	}
	return out
}

func (d Decision) String() string {
	if d.Allowed {
		return "allowed"
	}
	s := ""
	for i, v := range d.Violations {
		if i > 0 {
			s += "; "
		}
		s += v.Code + ": " + v.Msg
	}
	return s
}

// CheckBuy re-validates a purchase against cash independently of how the
// quantity was sized. Cash may never go negative.
func CheckBuy(cash, shares, price, commission float64) Decision {
	d := Decision{Allowed: true, CashAfter: cash}

	if price <= 0 {
		d.add("NO_PRICE", fmt.Sprintf("price must be positive, got %.4f", price))
		return d
	}
	if shares <= 0 {
		d.add("NO_UNITS", "shares must be positive")
		return d
	}
	if commission < 0 {
		d.add("NEGATIVE_COMMISSION", fmt.Sprintf("commission %.4f", commission))
		return d
	}

	cost := shares*price + commission
	if cost > cash {
		d.add("INSUFFICIENT_FUNDS", fmt.Sprintf("cost %.2f exceeds cash %.2f", cost, cash))
		return d
	}
	d.CashAfter = cash - cost
	return d
}

// CheckSell validates a sale against current holdings.
func CheckSell(held, shares, price float64) Decision {
	d := Decision{Allowed: true}

	if price <= 0 {
		d.add("NO_PRICE", fmt.Sprintf("price must be positive, got %.4f", price))
	}
	if shares <= 0 {
		d.add("NO_UNITS", "shares must be positive")
	}
	if held <= 0 {
		d.add("NO_POSITION", "nothing to sell")
	}
	return d
}
