package backtest

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/tpsl/market"
)

// Optimizer searches the policy grid for the parameters that finish a day
// with the highest balance. The search is greedy: it stops as soon as the
// target is reached, prunes leverage levels that fall far behind and is
// bounded by the policy's test budget, so the result is a good combination,
// not necessarily the best one.
type Optimizer struct {
	Policy SearchPolicy
	Sim    DaySimulator
	Logger *zap.Logger
}

func NewOptimizer(policy SearchPolicy, s DaySimulator, log *zap.Logger) *Optimizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Optimizer{Policy: policy, Sim: s, Logger: log}
}

func (o *Optimizer) log() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Optimize runs the search for one day.
func (o *Optimizer) Optimize(day *market.Day, target float64) DayResult {
	initial := o.Sim.StartingBalance()
	best := DayResult{
		InitialBalance: initial,
		FinalBalance:   initial,
	}
	if day != nil {
		best.Date = day.Date
	}

	sweep := o.Policy.sweepAllocations()
	tested := 0

levels:
	for _, lev := range o.Policy.leveragesDesc() {
		if tested >= o.Policy.MaxTests {
			break
		}

		before := best.FinalBalance
		levelBest := initial

		for _, pct := range o.Policy.Percents {
			for _, alloc := range sweep {
				if tested >= o.Policy.MaxTests {
					break levels
				}
				tested++

				p := Params{Percent: pct, Leverage: lev, Allocation: alloc}
				res, err := o.try(day, p)
				if err != nil {
					o.log().Warn("skipping combination", zap.Any("params", p), zap.Error(err))
					continue
				}

				if res.FinalBalance > best.FinalBalance {
					best.FinalBalance = res.FinalBalance
					best.Params = &p
					best.Trades = res.Trades
					best.Achieved = res.FinalBalance >= target
					if best.Achieved {
						best.Tested = tested
						o.log().Info("target reached",
							zap.Int("tests", tested),
							zap.Float64("balance", best.FinalBalance))
						return best
					}
				}
				if res.FinalBalance > levelBest {
					levelBest = res.FinalBalance
				}
			}
		}

		if levelBest < before*o.Policy.PruneRatio {
			o.log().Debug("pruning lower leverages",
				zap.Int("leverage", lev),
				zap.Float64("level_best", levelBest),
				zap.Float64("best", before))
			break
		}
	}

	if best.Params != nil {
		winner := *best.Params
		for _, alloc := range o.Policy.allocationsDesc() {
			if alloc == winner.Allocation {
				continue
			}
			tested++

			p := Params{Percent: winner.Percent, Leverage: winner.Leverage, Allocation: alloc}
			res, err := o.try(day, p)
			if err != nil {
				o.log().Warn("skipping refinement", zap.Any("params", p), zap.Error(err))
				continue
			}
			if res.FinalBalance > best.FinalBalance {
				best.FinalBalance = res.FinalBalance
				best.Params = &p
				best.Trades = res.Trades
				best.Achieved = res.FinalBalance >= target
				if best.Achieved {
					break
				}
			}
		}
	}

	best.Tested = tested
	o.log().Info("search complete",
		zap.Int("tests", tested),
		zap.Float64("balance", best.FinalBalance),
		zap.Bool("achieved", best.Achieved))
	return best
}

// try runs one simulation, turning a panic into an error so a single bad
// combination cannot abort the search.
func (o *Optimizer) try(day *market.Day, p Params) (res SimResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("simulation panicked: %v", r)
		}
	}()
	return o.Sim.Run(day, p)
}
