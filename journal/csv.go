package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

var (
	dayHeader   = []string{"date", "initial_balance", "final_balance", "total_return_pct", "tp_sl_percent", "leverage", "position_allocation", "achieved_target", "num_trades", "tests"}
	tradeHeader = []string{"date", "trade_id", "symbol", "type", "entry_price", "exit_price", "size", "leverage", "pnl", "entry_time", "exit_time", "balance_after", "reason"}
)

// CSVJournal writes one row per day and one row per trade to two files.
type CSVJournal struct {
	days   *csv.Writer
	trades *csv.Writer
	df, tf *os.File
}

func NewCSV(daysPath, tradesPath string) (*CSVJournal, error) {
	df, err := os.Create(daysPath)
	if err != nil {
		return nil, err
	}
	tf, err := os.Create(tradesPath)
	if err != nil {
		_ = df.Close()
		return nil, err
	}

	dw := csv.NewWriter(df)
	tw := csv.NewWriter(tf)

	if err := dw.Write(dayHeader); err != nil {
		return nil, err
	}
	if err := tw.Write(tradeHeader); err != nil {
		return nil, err
	}

	dw.Flush()
	if err := dw.Error(); err != nil {
		return nil, err
	}
	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{days: dw, trades: tw, df: df, tf: tf}, nil
}

func (j *CSVJournal) RecordDay(d DayRecord) error {
	pct, lev := "", ""
	if d.TPSLPercent != nil {
		pct = f(*d.TPSLPercent)
	}
	if d.Leverage != nil {
		lev = strconv.Itoa(*d.Leverage)
	}

	err := j.days.Write([]string{
		d.Date,
		f(d.InitialBalance),
		f(d.FinalBalance),
		f(d.TotalReturnPct),
		pct,
		lev,
		f(d.PositionAllocation),
		strconv.FormatBool(d.AchievedTarget),
		strconv.Itoa(d.NumTrades),
		strconv.Itoa(d.Tests),
	})
	if err != nil {
		return err
	}

	for _, t := range d.Trades {
		err := j.trades.Write([]string{
			d.Date,
			t.TradeID,
			t.Symbol,
			t.Type,
			f(t.EntryPrice),
			f(t.ExitPrice),
			f(t.Size),
			strconv.Itoa(t.Leverage),
			f(t.PnL),
			t.OpenTime().Format(time.RFC3339),
			t.CloseTime().Format(time.RFC3339),
			f(t.BalanceAfter),
			t.Reason,
		})
		if err != nil {
			return err
		}
	}

	j.days.Flush()
	if err := j.days.Error(); err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) Close() error {
	j.days.Flush()
	if err := j.days.Error(); err != nil {
		return err
	}
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}

	if err := j.df.Close(); err != nil {
		return err
	}
	return j.tf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
