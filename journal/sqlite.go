package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO runs
		(run_id, created, symbol, oracle, start_date, end_date, initial_capital, final_value,
		 total_return_pct, sharpe_ratio, max_drawdown_pct, win_rate, profit_factor,
		 trades, closed_trades, wins, losses, degraded_days, complete, results_dir)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Symbol, r.Oracle, r.Start, r.End, r.InitialCapital, r.FinalValue,
		r.TotalReturnPct, r.SharpeRatio, r.MaxDrawdownPct, r.WinRate, r.ProfitFactor,
		r.Trades, r.ClosedTrades, r.Wins, r.Losses, r.DegradedDays, r.Complete, r.ResultsDir,
	)
	return err
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, symbol, date, side, quantity, price, commission, realized_pnl, net_pnl, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.RunID, t.Symbol, t.Date, t.Side, t.Quantity,
		t.Price, t.Commission, t.RealizedPnL, t.NetPnL, t.Confidence,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, date, cash, position_value, total_value)
		VALUES (?, ?, ?, ?, ?)`,
		e.RunID, e.Date, e.Cash, e.PositionValue, e.TotalValue,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
