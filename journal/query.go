package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const dayColumns = `date, run_id, initial_balance, final_balance, total_return_pct, tp_sl_percent, leverage, position_allocation, achieved_target, num_trades, tests`

const tradeColumns = `trade_id, symbol, type, entry_price, exit_price, size, leverage, pnl, entry_time, exit_time, balance_after, reason`

type scanner interface {
	Scan(dest ...any) error
}

func scanDay(s scanner) (DayRecord, error) {
	var (
		rec DayRecord
		pct sql.NullFloat64
		lev sql.NullInt64
	)
	err := s.Scan(
		&rec.Date,
		&rec.RunID,
		&rec.InitialBalance,
		&rec.FinalBalance,
		&rec.TotalReturnPct,
		&pct,
		&lev,
		&rec.PositionAllocation,
		&rec.AchievedTarget,
		&rec.NumTrades,
		&rec.Tests,
	)
	if err != nil {
		return DayRecord{}, err
	}
	if pct.Valid {
		v := pct.Float64
		rec.TPSLPercent = &v
	}
	if lev.Valid {
		v := int(lev.Int64)
		rec.Leverage = &v
	}
	return rec, nil
}

func scanTrades(rows *sql.Rows) ([]TradeRecord, error) {
	defer rows.Close()

	out := []TradeRecord{}
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.TradeID,
			&rec.Symbol,
			&rec.Type,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.Size,
			&rec.Leverage,
			&rec.PnL,
			&rec.EntryTime,
			&rec.ExitTime,
			&rec.BalanceAfter,
			&rec.Reason,
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

// GetDay returns a stored day together with its trades.
func (j *SQLite) GetDay(date string) (DayRecord, error) {
	row := j.db.QueryRow(`SELECT `+dayColumns+` FROM days WHERE date = ?`, date)
	rec, err := scanDay(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DayRecord{}, fmt.Errorf("day %q not found", date)
		}
		return DayRecord{}, err
	}

	rec.Trades, err = j.ListTrades(date)
	if err != nil {
		return DayRecord{}, err
	}
	return rec, nil
}

// ListDays returns the days in [from, to] ordered by date, without trades.
// Empty bounds are open.
func (j *SQLite) ListDays(from, to string) ([]DayRecord, error) {
	if to == "" {
		to = "9999-12-31"
	}
	rows, err := j.db.Query(`
		SELECT `+dayColumns+`
		FROM days
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DayRecord
	for rows.Next() {
		rec, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTrades returns a day's trades in close order.
func (j *SQLite) ListTrades(date string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE date = ?
		ORDER BY exit_time ASC, trade_id ASC`, date)
	if err != nil {
		return nil, err
	}
	return scanTrades(rows)
}

// ListTradesClosedBetween returns trades whose exit time is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time ASC, trade_id ASC`, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, err
	}
	return scanTrades(rows)
}

// GetTrade returns one trade by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	rows, err := j.db.Query(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)
	if err != nil {
		return TradeRecord{}, err
	}
	recs, err := scanTrades(rows)
	if err != nil {
		return TradeRecord{}, err
	}
	if len(recs) == 0 {
		return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
	}
	return recs[0], nil
}
