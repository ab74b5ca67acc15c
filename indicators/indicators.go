// Package indicators provides technical analysis indicators over daily closes.
package indicators

// Indicator computes a single streaming value from closing prices.
// It is deterministic and only ever sees the values it has been fed, which
// makes it safe to drive from a point-in-time history.
type Indicator interface {
	// Name returns a stable identifier like "EMA(20)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next close.
	Update(close float64)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current value, or 0 before warmup completes.
	Value() float64
}

// Feed runs every close through ind and returns the final value.
func Feed(ind Indicator, closes []float64) (float64, bool) {
	ind.Reset()
	for _, c := range closes {
		ind.Update(c)
	}
	return ind.Value(), ind.Ready()
}

// Series feeds every close through ind and collects Value() once it is Ready.
func Series(ind Indicator, closes []float64) []float64 {
	ind.Reset()
	out := make([]float64, 0, len(closes))
	for _, c := range closes {
		ind.Update(c)
		if ind.Ready() {
			out = append(out, ind.Value())
		}
	}
	return out
}
