package journal

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/rustyeddy/advisor/backtest"
	"github.com/rustyeddy/advisor/market"
)

// RunSummary is the data behind summary.org.
type RunSummary struct {
	Run      RunRecord
	Rating   string
	CAGR     float64
	BuyHold  float64
	AvgWin   float64
	AvgLoss  float64
	Fees     float64
	Skipped  int
	Calls    int
	Bars     int
	Trades   []TradeRecord
	Notes    []string
	Finished time.Time
}

func NewRunSummary(res *backtest.Result, resultsDir string) RunSummary {
	m := res.Metrics
	s := RunSummary{
		Run:      NewRunRecord(res, resultsDir),
		Rating:   backtest.Rating(m.TotalReturnPct),
		CAGR:     m.CAGR,
		BuyHold:  m.BuyAndHoldReturnPct,
		AvgWin:   m.AvgWin,
		AvgLoss:  m.AvgLoss,
		Fees:     m.TotalCommission,
		Skipped:  res.Metadata.SkippedOrders,
		Calls:    res.Metadata.OracleCalls,
		Bars:     res.Metadata.BarsProcessed,
		Trades:   TradeRecords(res),
		Finished: res.Metadata.FinishedAt,
	}
	if !res.Metadata.Complete {
		s.Notes = append(s.Notes, fmt.Sprintf("run cancelled after %d of %d bars", res.Metadata.BarsProcessed, res.Metadata.BarsTotal))
	}
	if res.Metadata.DegradedDays > 0 {
		s.Notes = append(s.Notes, fmt.Sprintf("%d day(s) degraded to HOLD after oracle failures", res.Metadata.DegradedDays))
	}
	if m.NoTrades {
		s.Notes = append(s.Notes, "no closed trades, win rate undefined")
	}
	return s
}

var summaryOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"date":   market.FormatDate,
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var summaryOrg = template.Must(template.New("summary").Funcs(summaryOrgFuncs).Parse(SummaryOrgTemplate))

func WriteSummaryOrg(w io.Writer, s RunSummary) error {
	return summaryOrg.Execute(w, s)
}

const SummaryOrgTemplate = `* BACKTEST: {{.Run.Symbol}} {{date .Run.Start}} to {{date .Run.End}}
:PROPERTIES:
:RUN_ID:      {{.Run.RunID}}
:ORACLE:      {{if .Run.Oracle}}{{.Run.Oracle}}{{else}}(oracle?){{end}}
:SYMBOL:      {{.Run.Symbol}}
:START_DATE:  {{date .Run.Start}}
:END_DATE:    {{date .Run.End}}
:START_BAL:   {{printf "%.2f" .Run.InitialCapital}}
:END_BAL:     {{printf "%.2f" .Run.FinalValue}}
:RETURN_PCT:  {{printf "%.2f" (mul100 .Run.TotalReturnPct)}}
:MAX_DD_PCT:  {{printf "%.2f" (mul100 .Run.MaxDrawdownPct)}}
:SHARPE:      {{printf "%.2f" .Run.SharpeRatio}}
:TRADES:      {{.Run.Trades}}
:WINS:        {{.Run.Wins}}
:LOSSES:      {{.Run.Losses}}
:WIN_RATE:    {{printf "%.2f" (mul100 .Run.WinRate)}}
:PROFIT_FAC:  {{if ne .Run.ProfitFactor 0.0}}{{printf "%.2f" .Run.ProfitFactor}}{{else}}(no losses){{end}}
:RATING:      {{.Rating}}
:COMPLETE:    {{.Run.Complete}}
:CREATED:     [{{(orTime .Run.Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Final Value:      *{{printf "%.2f" .Run.FinalValue}}*
- Return:           *{{printf "%+.2f" (mul100 .Run.TotalReturnPct)}}%*
- Buy and Hold:     *{{printf "%+.2f" (mul100 .BuyHold)}}%*
- CAGR:             *{{printf "%+.2f" (mul100 .CAGR)}}%*
- Sharpe Ratio:     *{{printf "%.2f" .Run.SharpeRatio}}*
- Max Drawdown:     *{{printf "%.2f" (mul100 .Run.MaxDrawdownPct)}}%*
- Commission Paid:  *{{printf "%.2f" .Fees}}*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Run.Wins}} |
| Losses  | {{.Run.Losses}} |
| Closed  | {{.Run.ClosedTrades}} |
| Orders  | {{.Run.Trades}} |
| Skipped | {{.Skipped}} |

** Run
| Bars processed | {{.Bars}} |
| Oracle calls   | {{.Calls}} |
| Degraded days  | {{.Run.DegradedDays}} |

{{- if .Trades }}

** Trades
| Date | Side | Quantity | Price | Commission | Realized | Confidence |
|------+------+----------+-------+------------+----------+------------|
{{- range .Trades }}
| {{date .Date}} | {{.Side}} | {{printf "%.0f" .Quantity}} | {{printf "%.2f" .Price}} | {{printf "%.2f" .Commission}} | {{printf "%.2f" .RealizedPnL}} | {{.Confidence}} |
{{- end }}
{{- end }}

{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`

// FormatRunOrg renders a journaled run with its trades.
func FormatRunOrg(r RunRecord, trades []TradeRecord) string {
	var buf bytes.Buffer
	s := RunSummary{Run: r, Rating: backtest.Rating(r.TotalReturnPct), Trades: trades}
	if err := WriteSummaryOrg(&buf, s); err != nil {
		return fmt.Sprintf("# render %s: %v\n", r.RunID, err)
	}
	return buf.String()
}

// FormatTradeOrg renders a TradeRecord as an Org-mode block with its facts in
// a PROPERTIES drawer.
func FormatTradeOrg(t TradeRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** %s %s %s (%s)\n", market.FormatDate(t.Date), t.Side, t.Symbol, shortID(t.TradeID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":TRADE_ID: %s\n", t.TradeID)
	fmt.Fprintf(&b, ":RUN_ID: %s\n", t.RunID)
	fmt.Fprintf(&b, ":SYMBOL: %s\n", t.Symbol)
	fmt.Fprintf(&b, ":SIDE: %s\n", t.Side)
	fmt.Fprintf(&b, ":QUANTITY: %.0f\n", t.Quantity)
	fmt.Fprintf(&b, ":PRICE: %.2f\n", t.Price)
	fmt.Fprintf(&b, ":COMMISSION: %.2f\n", t.Commission)
	fmt.Fprintf(&b, ":REALIZED_PNL: %.2f\n", t.RealizedPnL)
	fmt.Fprintf(&b, ":NET_PNL: %.2f\n", t.NetPnL)
	fmt.Fprintf(&b, ":CONFIDENCE: %d\n", t.Confidence)
	b.WriteString(":END:\n")
	return b.String()
}

func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
