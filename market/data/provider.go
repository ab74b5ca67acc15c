// Package data supplies daily price bars for a symbol and date range.
//
// Raw backends implement Provider. Window wraps a backend and enforces the
// invariants the engine depends on: ascending order, one bar per trading day,
// a non-empty result and a minimum number of trading days.
package data

import (
	"context"
	"time"

	"github.com/rustyeddy/advisor/market"
)

// Provider returns raw daily bars for symbol within [start, end].
// Implementations may return unsorted or duplicated rows; Window cleans them up.
type Provider interface {
	Fetch(ctx context.Context, symbol string, start, end time.Time) ([]market.PriceBar, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, symbol string, start, end time.Time) ([]market.PriceBar, error)

func (f ProviderFunc) Fetch(ctx context.Context, symbol string, start, end time.Time) ([]market.PriceBar, error) {
	return f(ctx, symbol, start, end)
}

// MemoryProvider serves fixed bars per symbol. Symbol lookup is exact.
type MemoryProvider struct {
	Bars map[string][]market.PriceBar
}

// NewMemoryProvider returns a provider serving bars for a single symbol.
func NewMemoryProvider(symbol string, bars []market.PriceBar) *MemoryProvider {
	return &MemoryProvider{Bars: map[string][]market.PriceBar{symbol: bars}}
}

func (p *MemoryProvider) Fetch(ctx context.Context, symbol string, start, end time.Time) ([]market.PriceBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src := p.Bars[symbol]
	out := make([]market.PriceBar, len(src))
	copy(out, src)
	return out, nil
}
