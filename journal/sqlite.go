package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/tpsl/pkg/id"
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
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// RecordDay stores a day and its trades, replacing anything already stored
// for that date.
func (j *SQLite) RecordDay(d DayRecord) (err error) {
	if d.Date == "" {
		return fmt.Errorf("sqlite journal: day record has no date")
	}

	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM trades WHERE date = ?`, d.Date); err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO days
		(date, run_id, initial_balance, final_balance, total_return_pct, tp_sl_percent, leverage, position_allocation, achieved_target, num_trades, tests)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Date, d.RunID, d.InitialBalance, d.FinalBalance, d.TotalReturnPct,
		nullFloat(d.TPSLPercent), nullInt(d.Leverage), d.PositionAllocation,
		d.AchievedTarget, d.NumTrades, d.Tests,
	)
	if err != nil {
		return err
	}

	for _, t := range d.Trades {
		if t.TradeID == "" {
			t.TradeID = id.New()
		}
		_, err = tx.Exec(`
			INSERT INTO trades
			(trade_id, date, symbol, type, entry_price, exit_price, size, leverage, pnl, entry_time, exit_time, balance_after, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.TradeID, d.Date, t.Symbol, t.Type, t.EntryPrice, t.ExitPrice, t.Size,
			t.Leverage, t.PnL, t.EntryTime, t.ExitTime, t.BalanceAfter, t.Reason,
		)
		if err != nil {
			return fmt.Errorf("insert trade %s: %w", t.TradeID, err)
		}
	}

	return tx.Commit()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
