package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/advisor/backtest"
	"github.com/rustyeddy/advisor/internal/logger"
	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/market/data"
	"github.com/rustyeddy/advisor/oracle"
	"github.com/rustyeddy/advisor/risk"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// roundTrip runs five bars: buy at 100 on the first, sell at 110 on the fourth.
func roundTrip(t *testing.T) *backtest.Result {
	t.Helper()

	closes := []float64{100, 100, 110, 110, 110}
	var bars []market.PriceBar
	d := start
	for _, c := range closes {
		for !market.IsTradingDay(d) {
			d = d.AddDate(0, 0, 1)
		}
		bars = append(bars, market.PriceBar{Date: d, Open: c, High: c, Low: c, Close: c, Volume: 1000})
		d = d.AddDate(0, 0, 1)
	}

	params := backtest.Params{
		Symbol:         "TEST",
		Start:          start,
		End:            start.AddDate(0, 1, 0),
		InitialCapital: 10000,
		Policy:         risk.Policy{MinConfidence: 5, PositionSize: 1, CommissionRate: 0.001},
		Oracle:         "stub",
	}
	stub := oracle.NewStub(oracle.Hold, 5).At(0, oracle.Buy, 8).At(3, oracle.Sell, 7)
	adapter := oracle.NewAdapter(stub, oracle.AdapterConfig{Timeout: time.Second}, logger.NewNop())

	e, err := backtest.New(params, data.NewWindow(data.NewMemoryProvider("TEST", bars), nil), adapter, logger.NewNop())
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Fills(), 2)
	return res
}
