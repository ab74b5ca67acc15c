package market

import (
	"fmt"
	"sort"
	"time"
)

// PriceBar is one trading day's OHLCV record for a symbol.
// Date is always midnight UTC of the trading day.
type PriceBar struct {
	Date   time.Time `json:"date" yaml:"date"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`
}

func (b PriceBar) String() string {
	return fmt.Sprintf("%s O:%.4f H:%.4f L:%.4f C:%.4f V:%.0f",
		FormatDate(b.Date), b.Open, b.High, b.Low, b.Close, b.Volume)
}

// Valid reports whether the bar can be traded on.
func (b PriceBar) Valid() bool {
	return !b.Date.IsZero() && b.Close > 0
}

// Bars is an ordered series of daily bars.
type Bars []PriceBar

// NormalizeStats counts what Normalize dropped.
type NormalizeStats struct {
	Input      int
	Duplicates int
	NonTrading int
	Invalid    int
	OutOfRange int
}

// Dropped is the total number of input bars that were removed.
func (s NormalizeStats) Dropped() int {
	return s.Duplicates + s.NonTrading + s.Invalid + s.OutOfRange
}

// Normalize returns a new series sorted ascending by date, clipped to [from, to]
// (zero bounds are open), restricted to trading days, with one bar per date.
// When a date appears twice the first occurrence wins.
func Normalize(in []PriceBar, from, to time.Time) (Bars, NormalizeStats) {
	stats := NormalizeStats{Input: len(in)}

	from = TruncateDay(from)
	to = TruncateDay(to)

	seen := make(map[time.Time]struct{}, len(in))
	out := make(Bars, 0, len(in))
	for _, b := range in {
		b.Date = TruncateDay(b.Date)

		if !b.Valid() {
			stats.Invalid++
			continue
		}
		if !IsTradingDay(b.Date) {
			stats.NonTrading++
			continue
		}
		if (!from.IsZero() && b.Date.Before(from)) || (!to.IsZero() && b.Date.After(to)) {
			stats.OutOfRange++
			continue
		}
		if _, dup := seen[b.Date]; dup {
			stats.Duplicates++
			continue
		}
		seen[b.Date] = struct{}{}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, stats
}

// Through returns a copy of the bars dated on or before asOf. The copy never
// shares a backing array with bs, so callers cannot reach later bars through it.
func (bs Bars) Through(asOf time.Time) Bars {
	asOf = TruncateDay(asOf)
	n := sort.Search(len(bs), func(i int) bool { return bs[i].Date.After(asOf) })
	out := make(Bars, n)
	copy(out, bs[:n])
	return out
}

// Last returns the most recent bar.
func (bs Bars) Last() (PriceBar, bool) {
	if len(bs) == 0 {
		return PriceBar{}, false
	}
	return bs[len(bs)-1], true
}

// Closes returns the close prices in order.
func (bs Bars) Closes() []float64 {
	out := make([]float64, len(bs))
	for i, b := range bs {
		out[i] = b.Close
	}
	return out
}

// Ascending reports whether dates are strictly increasing.
func (bs Bars) Ascending() bool {
	for i := 1; i < len(bs); i++ {
		if !bs[i].Date.After(bs[i-1].Date) {
			return false
		}
	}
	return true
}
