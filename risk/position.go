package risk

import "math"

// Inputs describes a long entry sized from available cash.
type Inputs struct {
	Cash           float64
	Fraction       float64 // share of cash to deploy, (0, 1]
	Price          float64
	CommissionRate float64 // 0.001 = 0.1% of notional
}

type Result struct {
	Shares     float64
	Notional   float64
	Commission float64
}

// Cost is what the entry takes out of cash.
func (r Result) Cost() float64 { return r.Notional + r.Commission }

// Calculate returns the largest whole-share quantity whose notional plus
// commission fits inside Cash*Fraction and never exceeds Cash.
func Calculate(in Inputs) Result {
	if in.Cash <= 0 || in.Price <= 0 || in.Fraction <= 0 || in.CommissionRate < 0 {
		return Result{}
	}
	fraction := math.Min(in.Fraction, 1)

	budget := in.Cash * fraction
	shares := math.Floor(budget / (in.Price * (1 + in.CommissionRate)))
	for shares > 0 {
		notional := shares * in.Price
		commission := Commission(notional, in.CommissionRate)
		if notional+commission <= in.Cash {
			return Result{Shares: shares, Notional: notional, Commission: commission}
		}
		shares--
	}
	return Result{}
}

// Commission charged on a notional amount.
func Commission(notional, rate float64) float64 {
	return notional * rate
}
