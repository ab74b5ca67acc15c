package journal

import (
	"database/sql"
	"fmt"
)

const runColumns = `run_id, created, symbol, oracle, start_date, end_date, initial_capital, final_value,
	total_return_pct, sharpe_ratio, max_drawdown_pct, win_rate, profit_factor,
	trades, closed_trades, wins, losses, degraded_days, complete, results_dir`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRecord, error) {
	var r RunRecord
	err := s.Scan(
		&r.RunID, &r.Created, &r.Symbol, &r.Oracle, &r.Start, &r.End, &r.InitialCapital, &r.FinalValue,
		&r.TotalReturnPct, &r.SharpeRatio, &r.MaxDrawdownPct, &r.WinRate, &r.ProfitFactor,
		&r.Trades, &r.ClosedTrades, &r.Wins, &r.Losses, &r.DegradedDays, &r.Complete, &r.ResultsDir,
	)
	return r, err
}

// GetRun returns a single run by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	row := j.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return r, nil
}

// ListRuns returns runs newest first. limit <= 0 means all.
func (j *SQLite) ListRuns(limit int) ([]RunRecord, error) {
	q := `SELECT ` + runColumns + ` FROM runs ORDER BY created DESC, run_id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTradesByRunID returns a run's trades in date order.
func (j *SQLite) ListTradesByRunID(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, run_id, symbol, date, side, quantity, price, commission, realized_pnl, net_pnl, confidence
		FROM trades
		WHERE run_id = ?
		ORDER BY date ASC, trade_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.TradeID,
			&rec.RunID,
			&rec.Symbol,
			&rec.Date,
			&rec.Side,
			&rec.Quantity,
			&rec.Price,
			&rec.Commission,
			&rec.RealizedPnL,
			&rec.NetPnL,
			&rec.Confidence,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityByRunID returns a run's equity curve in date order.
func (j *SQLite) ListEquityByRunID(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, date, cash, position_value, total_value
		FROM equity
		WHERE run_id = ?
		ORDER BY date ASC;`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Date, &e.Cash, &e.PositionValue, &e.TotalValue); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
