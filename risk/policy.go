package risk

import "fmt"

// Policy is the execution policy applied to every recommendation.
type Policy struct {
	// MinConfidence is the binary gate: lower confidence never trades.
	MinConfidence int
	// PositionSize is the fraction of cash deployed on entry, (0, 1].
	PositionSize float64
	// CommissionRate is charged on notional for both entries and exits.
	CommissionRate float64
}

func DefaultPolicy() Policy {
	return Policy{
		MinConfidence:  5,
		PositionSize:   1.0,
		CommissionRate: 0.001,
	}
}

func (p Policy) Validate() error {
	if p.MinConfidence < 1 || p.MinConfidence > 10 {
		return fmt.Errorf("min confidence %d outside 1-10", p.MinConfidence)
	}
	if p.PositionSize <= 0 || p.PositionSize > 1 {
		return fmt.Errorf("position size %.4f outside (0, 1]", p.PositionSize)
	}
	if p.CommissionRate < 0 || p.CommissionRate >= 1 {
		return fmt.Errorf("commission rate %.4f outside [0, 1)", p.CommissionRate)
	}
	return nil
}
