package sim

import "time"

type Reason string

const (
	ReasonTakeProfit Reason = "TakeProfit"
	ReasonStopLoss   Reason = "StopLoss"
	ReasonEndOfDay   Reason = "EndOfDay"
)

// ClosedTrade is the immutable record of a finished position.
type ClosedTrade struct {
	ID           string
	Instrument   string
	Side         Side
	EntryPrice   float64
	ExitPrice    float64
	Size         float64
	Leverage     int
	PnL          float64
	EntryTime    time.Time
	ExitTime     time.Time
	BalanceAfter float64
	Reason       Reason
}
