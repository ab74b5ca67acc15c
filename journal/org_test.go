package journal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	trade := TradeRecord{
		TradeID:     "01J0000000000000000000ABCD-002",
		RunID:       "01J0000000000000000000ABCD",
		Symbol:      "AAPL",
		Date:        start.AddDate(0, 0, 14),
		Side:        "SELL",
		Quantity:    99,
		Price:       110,
		Commission:  10.89,
		RealizedPnL: 990,
		NetPnL:      980.1,
		Confidence:  7,
	}

	result := FormatTradeOrg(trade)

	assert.Contains(t, result, "** 2024-01-15 SELL AAPL (ABCD-002)")
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":TRADE_ID: 01J0000000000000000000ABCD-002")
	assert.Contains(t, result, ":QUANTITY: 99")
	assert.Contains(t, result, ":PRICE: 110.00")
	assert.Contains(t, result, ":REALIZED_PNL: 990.00")
	assert.Contains(t, result, ":NET_PNL: 980.10")
	assert.Contains(t, result, ":CONFIDENCE: 7")
	assert.Contains(t, result, ":END:")
}

func TestFormatTradeOrgShortID(t *testing.T) {
	t.Parallel()

	result := FormatTradeOrg(TradeRecord{TradeID: "short", Symbol: "X", Date: start, Side: "BUY"})
	assert.Contains(t, result, "(short)")
}

func TestFormatTradesOrg(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FormatTradesOrg(nil))

	out := FormatTradesOrg([]TradeRecord{
		{TradeID: "T1", Symbol: "X", Date: start, Side: "BUY"},
		{TradeID: "T2", Symbol: "X", Date: start, Side: "SELL"},
	})
	assert.Contains(t, out, ":TRADE_ID: T1")
	assert.Contains(t, out, ":TRADE_ID: T2")
}

func TestWriteSummaryOrg(t *testing.T) {
	t.Parallel()

	res := roundTrip(t)

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryOrg(&buf, NewRunSummary(res, "/tmp/run")))
	out := buf.String()

	assert.Contains(t, out, "* BACKTEST: TEST 2024-01-01 to 2024-02-01")
	assert.Contains(t, out, ":RUN_ID:      "+res.RunID())
	assert.Contains(t, out, ":ORACLE:      stub")
	assert.Contains(t, out, ":START_BAL:   10000.00")
	assert.Contains(t, out, ":WINS:        1")
	assert.Contains(t, out, ":PROFIT_FAC:  (no losses)")
	assert.Contains(t, out, ":COMPLETE:    true")
	assert.Contains(t, out, "** Trades")
	assert.Contains(t, out, "| 2024-01-01 | BUY | 99 | 100.00 |")
	assert.NotContains(t, out, "** Observations")
}

func TestFormatRunOrgNotesAndEmptyTrades(t *testing.T) {
	t.Parallel()

	out := FormatRunOrg(RunRecord{RunID: "R1", Symbol: "AAA", Start: start, End: start.AddDate(0, 1, 0), Oracle: "hold"}, nil)
	assert.Contains(t, out, ":RUN_ID:      R1")
	assert.Contains(t, out, ":RATING:      SLIGHT LOSS")
	assert.NotContains(t, out, "** Trades")
}
