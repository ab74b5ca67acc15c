package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/advisor/market"
)

// Rating buckets a total return (as a fraction) for the summary.
func Rating(totalReturnPct float64) string {
	switch {
	case totalReturnPct > 0.20:
		return "EXCELLENT"
	case totalReturnPct > 0.10:
		return "GOOD"
	case totalReturnPct > 0:
		return "POSITIVE"
	case totalReturnPct > -0.10:
		return "SLIGHT LOSS"
	default:
		return "POOR"
	}
}

func PrintSummary(w io.Writer, r *Result) {
	p := r.Params
	m := r.Metrics
	md := r.Metadata

	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Run ID:         %s\n", md.RunID)
	fmt.Fprintf(w, "Started:        %s\n", md.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Symbol:         %s\n", p.Symbol)
	if p.Oracle != "" {
		fmt.Fprintf(w, "Oracle:         %s\n", p.Oracle)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Period:         %s to %s\n", market.FormatDate(p.Start), market.FormatDate(p.End))
	fmt.Fprintf(w, "Capital:        %.2f\n", p.InitialCapital)
	fmt.Fprintf(w, "Commission:     %.2f%%\n", p.Policy.CommissionRate*100)
	fmt.Fprintf(w, "Position Size:  %.0f%%\n", p.Policy.PositionSize*100)
	fmt.Fprintf(w, "Min Confidence: %d/10\n", p.Policy.MinConfidence)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Final Value:    %.2f\n", m.FinalValue)
	fmt.Fprintf(w, "Total Return:   %.2f\n", m.TotalReturn)
	fmt.Fprintf(w, "Return:         %+.2f%%\n", m.TotalReturnPct*100)
	fmt.Fprintf(w, "Buy and Hold:   %+.2f%%\n", m.BuyAndHoldReturnPct*100)
	fmt.Fprintf(w, "CAGR:           %+.2f%%\n", m.CAGR*100)
	fmt.Fprintf(w, "Sharpe Ratio:   %.2f\n", m.SharpeRatio)
	fmt.Fprintf(w, "Max Drawdown:   %.2f%%\n", m.MaxDrawdownPct*100)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:         %d\n", m.TotalTrades)
	fmt.Fprintf(w, "Closed:         %d\n", m.ClosedTrades)
	fmt.Fprintf(w, "Wins:           %d\n", m.WinningTrades)
	fmt.Fprintf(w, "Losses:         %d\n", m.LosingTrades)
	if m.NoTrades {
		fmt.Fprintln(w, "Win Rate:       n/a (no closed trades)")
	} else {
		fmt.Fprintf(w, "Win Rate:       %.2f%%\n", m.WinRate*100)
	}
	if m.AvgWin > 0 {
		fmt.Fprintf(w, "Average Win:    %.2f\n", m.AvgWin)
	}
	if m.AvgLoss < 0 {
		fmt.Fprintf(w, "Average Loss:   %.2f\n", m.AvgLoss)
	}
	if m.ProfitFactor > 0 {
		fmt.Fprintf(w, "Profit Factor:  %.2f\n", m.ProfitFactor)
	}
	fmt.Fprintf(w, "Commission:     %.2f\n", m.TotalCommission)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Days:           %d of %d\n", md.BarsProcessed, md.BarsTotal)
	fmt.Fprintf(w, "Degraded Days:  %d\n", md.DegradedDays)
	fmt.Fprintf(w, "Skipped Orders: %d\n", md.SkippedOrders)
	if !md.Complete {
		fmt.Fprintln(w, "Status:         INCOMPLETE (cancelled)")
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Rating:         %s\n", Rating(m.TotalReturnPct))
	fmt.Fprintln(w)
}
