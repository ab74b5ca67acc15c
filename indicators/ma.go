package indicators

import (
	"fmt"
)

func checkPeriod(closes []float64, period int) error {
	if period <= 0 {
		return fmt.Errorf("period must be positive, got %d", period)
	}
	if len(closes) < period {
		return fmt.Errorf("not enough closes: need %d, got %d", period, len(closes))
	}
	return nil
}

// MA calculates the Simple Moving Average of the last period closes.
func MA(closes []float64, period int) (float64, error) {
	if err := checkPeriod(closes, period); err != nil {
		return 0, err
	}
	v, _ := Feed(NewMA(period), closes[len(closes)-period:])
	return v, nil
}

// EMASeries returns the EMA after each close from index period-1 onward,
// seeded with the SMA of the first period closes.
func EMASeries(closes []float64, period int) ([]float64, error) {
	if err := checkPeriod(closes, period); err != nil {
		return nil, err
	}
	return Series(NewEMA(period), closes), nil
}
