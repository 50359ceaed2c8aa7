package sim

import (
	"slices"
	"time"

	"github.com/rustyeddy/tpsl/pkg/id"
)

// MinPositionSize is the smallest notional the ledger will commit.
const MinPositionSize = 1.0

// CloseListener is notified after the ledger closes a position.
type CloseListener interface {
	OnTradeClosed(ct ClosedTrade)
}

// Mark is the last known price of an instrument, used to close positions
// that are still live when the day ends.
type Mark struct {
	Instrument string
	Price      float64
	Time       time.Time
}

// Ledger owns the account balance and the live positions, at most one per
// instrument. It is not safe for concurrent use; every simulation gets its
// own Ledger.
type Ledger struct {
	params  Params
	initial float64
	balance float64

	live   map[string]*Position
	trades []ClosedTrade

	listener CloseListener
}

func NewLedger(balance float64, p Params) *Ledger {
	return &Ledger{
		params:  p,
		initial: balance,
		balance: balance,
		live:    make(map[string]*Position),
	}
}

func (l *Ledger) SetCloseListener(cl CloseListener) { l.listener = cl }

func (l *Ledger) Params() Params { return l.params }
func (l *Ledger) InitialBalance() float64 { return l.initial }
func (l *Ledger) Balance() float64 { return l.balance }
func (l *Ledger) Trades() []ClosedTrade { return l.trades }
func (l *Ledger) OpenPositions() int { return len(l.live) }

// Live returns the live position for instrument, if any.
func (l *Ledger) Live(instrument string) (Position, bool) {
	p, ok := l.live[instrument]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Locked is the sum of the sizes of all live positions.
func (l *Ledger) Locked() float64 {
	var sum float64
	for _, p := range l.live {
		sum += p.Size
	}
	return sum
}

// Available is the balance not committed to live positions, never negative.
func (l *Ledger) Available() float64 {
	return max(0, l.balance-l.Locked())
}

// Open enters a new position at price. It declines, returning false, when the
// instrument already has a live position or the size would fall below
// MinPositionSize.
func (l *Ledger) Open(instrument string, side Side, price float64, t time.Time) bool {
	if _, ok := l.live[instrument]; ok {
		return false
	}
	size := l.balance * l.params.Allocation
	if size < MinPositionSize {
		return false
	}

	tp, sl := Levels(side, price, l.params.Percent)
	l.live[instrument] = &Position{
		Instrument: instrument,
		Side:       side,
		EntryPrice: price,
		Size:       size,
		Leverage:   l.params.Leverage,
		TakeProfit: tp,
		StopLoss:   sl,
		EntryTime:  t,
	}
	return true
}

// ProcessBar checks the instrument's live positions against one bar's range
// and closes any that triggered. Decisions are collected before any position
// is removed.
func (l *Ledger) ProcessBar(instrument string, high, low float64, t time.Time) []ClosedTrade {
	type exit struct {
		inst   string
		price  float64
		reason Reason
	}

	var exits []exit
	for inst, p := range l.live {
		if inst != instrument {
			continue
		}
		if px, reason, hit := checkExit(p, high, low); hit {
			exits = append(exits, exit{inst, px, reason})
		}
	}

	var closed []ClosedTrade
	for _, e := range exits {
		closed = append(closed, l.close(e.inst, e.price, t, e.reason))
	}
	return closed
}

// CloseAll closes every live position at its instrument's mark. Marks are
// applied in the order given; a position without a mark closes flat at its
// entry price.
func (l *Ledger) CloseAll(marks []Mark) []ClosedTrade {
	var closed []ClosedTrade
	for _, m := range marks {
		if _, ok := l.live[m.Instrument]; !ok {
			continue
		}
		closed = append(closed, l.close(m.Instrument, m.Price, m.Time, ReasonEndOfDay))
	}

	rest := make([]string, 0, len(l.live))
	for inst := range l.live {
		rest = append(rest, inst)
	}
	slices.Sort(rest)
	for _, inst := range rest {
		p := l.live[inst]
		closed = append(closed, l.close(inst, p.EntryPrice, p.EntryTime, ReasonEndOfDay))
	}
	return closed
}

func (l *Ledger) close(instrument string, price float64, t time.Time, reason Reason) ClosedTrade {
	p := l.live[instrument]
	delete(l.live, instrument)

	if t.Before(p.EntryTime) {
		t = p.EntryTime
	}

	pnl := RealizedPL(*p, price)
	l.balance += pnl

	ct := ClosedTrade{
		ID:           id.At(t),
		Instrument:   p.Instrument,
		Side:         p.Side,
		EntryPrice:   p.EntryPrice,
		ExitPrice:    price,
		Size:         p.Size,
		Leverage:     p.Leverage,
		PnL:          pnl,
		EntryTime:    p.EntryTime,
		ExitTime:     t,
		BalanceAfter: l.balance,
		Reason:       reason,
	}
	l.trades = append(l.trades, ct)

	if l.listener != nil {
		l.listener.OnTradeClosed(ct)
	}
	return ct
}
