// journal/journal.go
package journal

import "time"

// TradeRecord is one closed trade as persisted. Times are unix milliseconds,
// the same unit as the bar files' open_time column.
type TradeRecord struct {
	TradeID      string  `json:"trade_id,omitempty"`
	Symbol       string  `json:"symbol"`
	Type         string  `json:"type"`
	EntryPrice   float64 `json:"entry_price"`
	ExitPrice    float64 `json:"exit_price"`
	Size         float64 `json:"size"`
	Leverage     int     `json:"leverage,omitempty"`
	PnL          float64 `json:"pnl"`
	EntryTime    int64   `json:"entry_time"`
	ExitTime     int64   `json:"exit_time"`
	BalanceAfter float64 `json:"balance_after"`
	Reason       string  `json:"reason,omitempty"`
}

func (t TradeRecord) OpenTime() time.Time  { return time.UnixMilli(t.EntryTime).UTC() }
func (t TradeRecord) CloseTime() time.Time { return time.UnixMilli(t.ExitTime).UTC() }

// DayRecord is the flat per-day result. The JSON field names are a stable
// contract for tooling that reads results files.
type DayRecord struct {
	RunID string `json:"-"`
	Date  string `json:"-"`

	FinalBalance       float64       `json:"final_balance"`
	InitialBalance     float64       `json:"initial_balance"`
	TotalReturnPct     float64       `json:"total_return_pct"`
	TPSLPercent        *float64      `json:"tp_sl_percent"`
	Leverage           *int          `json:"leverage"`
	PositionAllocation float64       `json:"position_allocation"`
	AchievedTarget     bool          `json:"achieved_target"`
	NumTrades          int           `json:"num_trades"`
	Tests              int           `json:"tests,omitempty"`
	Trades             []TradeRecord `json:"trades"`
}

// HasParams reports whether the search found parameters for the day.
func (d DayRecord) HasParams() bool {
	return d.TPSLPercent != nil && d.Leverage != nil
}

type Journal interface {
	RecordDay(DayRecord) error
	Close() error
}
