package backtest

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/tpsl/market"
	"github.com/rustyeddy/tpsl/sim"
)

const (
	DefaultInitialBalance = 10_000.0

	// DefaultMinEntryBalance is the available balance required before the
	// simulator will consider a new entry.
	DefaultMinEntryBalance = 50.0
)

var (
	ErrBadBar    = errors.New("backtest: bad bar data")
	ErrBadParams = errors.New("backtest: bad parameters")
)

// Params are the strategy parameters held fixed for one simulated day.
type Params = sim.Params

// SimResult is the outcome of one simulated day.
type SimResult struct {
	FinalBalance float64
	Trades       []sim.ClosedTrade
}

// DaySimulator runs one day under one parameter set.
type DaySimulator interface {
	Run(day *market.Day, p Params) (SimResult, error)
	StartingBalance() float64
}

// Simulator replays a day minute by minute across every instrument.
type Simulator struct {
	InitialBalance  float64
	MinEntryBalance float64
	Oracle          Oracle
	Logger          *zap.Logger
}

func NewSimulator(initial float64) *Simulator {
	return &Simulator{
		InitialBalance:  initial,
		MinEntryBalance: DefaultMinEntryBalance,
		Oracle:          Oracle{Lookahead: DefaultLookahead},
	}
}

func (s *Simulator) StartingBalance() float64 { return s.InitialBalance }

// Run simulates one day. A day without data returns the starting balance and
// no trades.
//
// At every timestamp, triggers are resolved for every instrument that has a
// bar before any new entry is considered. Entries are taken at the bar close
// when the oracle finds a direction and the available balance is at least
// MinEntryBalance. Positions still open after the last bar close at their
// instrument's last close.
func (s *Simulator) Run(day *market.Day, p Params) (SimResult, error) {
	if err := validateParams(p); err != nil {
		return SimResult{}, err
	}
	if day.Empty() {
		return SimResult{FinalBalance: s.InitialBalance}, nil
	}
	for _, name := range day.Instruments {
		if err := day.Series[name].Validate(); err != nil {
			return SimResult{}, fmt.Errorf("%w: %v", ErrBadBar, err)
		}
	}

	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}

	ledger := sim.NewLedger(s.InitialBalance, p)
	for _, t := range day.Timeline() {
		bars := day.Snapshot(t)

		for _, c := range bars {
			ledger.ProcessBar(c.Instrument, c.High, c.Low, t)
		}

		for _, c := range bars {
			if _, live := ledger.Live(c.Instrument); live {
				continue
			}
			if ledger.Available() < s.MinEntryBalance {
				continue
			}
			side, ok := s.Oracle.Decide(day.Series[c.Instrument], c.Index, p.Percent)
			if !ok {
				continue
			}
			ledger.Open(c.Instrument, side, c.Close, t)
		}
	}

	marks := make([]sim.Mark, 0, len(day.Instruments))
	for _, name := range day.Instruments {
		last, ok := day.Series[name].Last()
		if !ok {
			continue
		}
		marks = append(marks, sim.Mark{Instrument: name, Price: last.Close, Time: last.Time})
	}
	ledger.CloseAll(marks)

	log.Debug("simulated day",
		zap.String("date", day.Date.Format(market.DateLayout)),
		zap.Float64("pct", p.Percent),
		zap.Int("leverage", p.Leverage),
		zap.Float64("allocation", p.Allocation),
		zap.Int("trades", len(ledger.Trades())),
		zap.Float64("balance", ledger.Balance()),
	)

	return SimResult{
		FinalBalance: ledger.Balance(),
		Trades:       ledger.Trades(),
	}, nil
}

func validateParams(p Params) error {
	switch {
	case p.Percent <= 0 || p.Percent >= 100:
		return fmt.Errorf("%w: percent %v must be in (0, 100)", ErrBadParams, p.Percent)
	case p.Leverage <= 0:
		return fmt.Errorf("%w: leverage %d must be positive", ErrBadParams, p.Leverage)
	case p.Allocation <= 0 || p.Allocation > 1:
		return fmt.Errorf("%w: allocation %v must be in (0, 1]", ErrBadParams, p.Allocation)
	}
	return nil
}
