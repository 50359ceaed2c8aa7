package sim

import "time"

// Side: +1 long, -1 short
type Side int8

const (
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	switch s {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	}
	return "NONE"
}

// Params are the per-day strategy settings the ledger applies to every entry.
type Params struct {
	Percent    float64 // take-profit / stop-loss distance, in percent
	Leverage   int
	Allocation float64 // fraction of balance committed per position
}

// Position is a live position. Size is the committed (unleveraged) notional
// and never changes after entry.
type Position struct {
	Instrument string
	Side       Side
	EntryPrice float64
	Size       float64
	Leverage   int
	TakeProfit float64
	StopLoss   float64
	EntryTime  time.Time
}

// Levels returns take-profit and stop-loss prices for an entry at price.
// For a short the take-profit sits below the entry and the stop above it.
func Levels(side Side, price, pct float64) (tp, sl float64) {
	up := price * (1 + pct/100.0)
	down := price * (1 - pct/100.0)
	if side == Short {
		return down, up
	}
	return up, down
}
