package journal

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rustyeddy/advisor/market"
)

var (
	TradeColumns  = []string{"date", "side", "quantity", "price", "commission", "realized_pnl", "confidence"}
	EquityColumns = []string{"date", "cash", "position_value", "total_value"}
)

// CSVJournal writes trades and the equity curve to two CSV files.
// Runs are not recorded; the results directory holds one run.
type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := tw.Write(TradeColumns); err != nil {
		return nil, err
	}
	if err := ew.Write(EquityColumns); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{tw, ew, tf, ef}, nil
}

func (j *CSVJournal) RecordRun(RunRecord) error { return nil }

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		market.FormatDate(t.Date),
		t.Side,
		strconv.FormatFloat(t.Quantity, 'f', -1, 64),
		f(t.Price),
		f(t.Commission),
		f(t.RealizedPnL),
		strconv.Itoa(t.Confidence),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	err := j.equity.Write([]string{
		market.FormatDate(e.Date),
		f(e.Cash),
		f(e.PositionValue),
		f(e.TotalValue),
	})
	if err != nil {
		return err
	}

	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	if err := j.ef.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
