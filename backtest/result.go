package backtest

import (
	"time"

	"github.com/rustyeddy/tpsl/journal"
	"github.com/rustyeddy/tpsl/market"
	"github.com/rustyeddy/tpsl/sim"
)

// DayResult is the best outcome the optimizer found for one day.
type DayResult struct {
	Date           time.Time
	InitialBalance float64
	FinalBalance   float64

	// Params is nil when no combination beat the starting balance.
	Params   *Params
	Trades   []sim.ClosedTrade
	Achieved bool

	// Tested is the number of simulations run, refinement included.
	Tested int
}

// ReturnPct is the day's return in percent.
func (r DayResult) ReturnPct() float64 {
	if r.InitialBalance == 0 {
		return 0
	}
	return (r.FinalBalance/r.InitialBalance - 1) * 100
}

// NewDayRecord flattens a DayResult into the persisted record. When no
// parameters were found the policy's default allocation is reported.
func NewDayRecord(r DayResult, policy SearchPolicy) journal.DayRecord {
	rec := journal.DayRecord{
		Date:               r.Date.Format(market.DateLayout),
		FinalBalance:       r.FinalBalance,
		InitialBalance:     r.InitialBalance,
		TotalReturnPct:     r.ReturnPct(),
		PositionAllocation: policy.DefaultAllocation,
		AchievedTarget:     r.Achieved,
		NumTrades:          len(r.Trades),
		Tests:              r.Tested,
		Trades:             make([]journal.TradeRecord, 0, len(r.Trades)),
	}
	if r.Params != nil {
		pct := r.Params.Percent
		lev := r.Params.Leverage
		rec.TPSLPercent = &pct
		rec.Leverage = &lev
		rec.PositionAllocation = r.Params.Allocation
	}
	for _, ct := range r.Trades {
		rec.Trades = append(rec.Trades, NewTradeRecord(ct))
	}
	return rec
}

func NewTradeRecord(ct sim.ClosedTrade) journal.TradeRecord {
	return journal.TradeRecord{
		TradeID:      ct.ID,
		Symbol:       ct.Instrument,
		Type:         ct.Side.String(),
		EntryPrice:   ct.EntryPrice,
		ExitPrice:    ct.ExitPrice,
		Size:         ct.Size,
		Leverage:     ct.Leverage,
		PnL:          ct.PnL,
		EntryTime:    ct.EntryTime.UnixMilli(),
		ExitTime:     ct.ExitTime.UnixMilli(),
		BalanceAfter: ct.BalanceAfter,
		Reason:       string(ct.Reason),
	}
}
