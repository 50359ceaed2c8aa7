package backtest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tpsl/market"
	"github.com/rustyeddy/tpsl/sim"
)

// fakeSim scores parameter sets with a function and records every call.
type fakeSim struct {
	initial float64
	score   func(p Params) (float64, error)
	calls   []Params
}

func (f *fakeSim) StartingBalance() float64 { return f.initial }

func (f *fakeSim) Run(_ *market.Day, p Params) (SimResult, error) {
	f.calls = append(f.calls, p)
	bal, err := f.score(p)
	if err != nil {
		return SimResult{}, err
	}
	var trades []sim.ClosedTrade
	if bal != f.initial {
		trades = []sim.ClosedTrade{{Instrument: "BTCUSDT", PnL: bal - f.initial, BalanceAfter: bal}}
	}
	return SimResult{FinalBalance: bal, Trades: trades}, nil
}

func testPolicy() SearchPolicy {
	return SearchPolicy{
		Leverages:         []int{2, 10, 5},
		Percents:          []float64{1, 2},
		Allocations:       []float64{0.5, 0.99, 0.9},
		TopAllocations:    2,
		MaxTests:          100,
		PruneRatio:        0.5,
		DefaultAllocation: 0.9,
	}
}

func newTestOptimizer(policy SearchPolicy, score func(Params) (float64, error)) (*Optimizer, *fakeSim) {
	fs := &fakeSim{initial: 10_000, score: score}
	return NewOptimizer(policy, fs, nil), fs
}

func TestOptimizerSweepOrder(t *testing.T) {
	t.Parallel()

	o, fs := newTestOptimizer(testPolicy(), func(Params) (float64, error) { return 10_000, nil })
	res := o.Optimize(mkDay(), 1_000_000)

	want := []Params{
		{Percent: 1, Leverage: 10, Allocation: 0.99},
		{Percent: 1, Leverage: 10, Allocation: 0.9},
		{Percent: 2, Leverage: 10, Allocation: 0.99},
		{Percent: 2, Leverage: 10, Allocation: 0.9},
		{Percent: 1, Leverage: 5, Allocation: 0.99},
		{Percent: 1, Leverage: 5, Allocation: 0.9},
		{Percent: 2, Leverage: 5, Allocation: 0.99},
		{Percent: 2, Leverage: 5, Allocation: 0.9},
		{Percent: 1, Leverage: 2, Allocation: 0.99},
		{Percent: 1, Leverage: 2, Allocation: 0.9},
		{Percent: 2, Leverage: 2, Allocation: 0.99},
		{Percent: 2, Leverage: 2, Allocation: 0.9},
	}
	assert.Equal(t, want, fs.calls)

	assert.Nil(t, res.Params)
	assert.Empty(t, res.Trades)
	assert.False(t, res.Achieved)
	assert.Equal(t, 10_000.0, res.FinalBalance)
	assert.Equal(t, 12, res.Tested)
}

func TestOptimizerStopsAtTarget(t *testing.T) {
	t.Parallel()

	o, fs := newTestOptimizer(testPolicy(), func(p Params) (float64, error) {
		if p.Leverage == 10 && p.Percent == 2 && p.Allocation == 0.99 {
			return 2_000_000, nil
		}
		return 11_000, nil
	})
	res := o.Optimize(mkDay(), 1_000_000)

	require.NotNil(t, res.Params)
	assert.Equal(t, Params{Percent: 2, Leverage: 10, Allocation: 0.99}, *res.Params)
	assert.True(t, res.Achieved)
	assert.Equal(t, 3, res.Tested)
	assert.Len(t, fs.calls, 3)
	assert.Len(t, res.Trades, 1)
}

func TestOptimizerBudget(t *testing.T) {
	t.Parallel()

	policy := testPolicy()
	policy.MaxTests = 5
	o, fs := newTestOptimizer(policy, func(Params) (float64, error) { return 10_000, nil })

	res := o.Optimize(mkDay(), 1_000_000)
	assert.Len(t, fs.calls, 5)
	assert.Equal(t, 5, res.Tested)
}

func TestOptimizerPrunesLowerLeverages(t *testing.T) {
	t.Parallel()

	o, fs := newTestOptimizer(testPolicy(), func(p Params) (float64, error) {
		switch {
		case p.Leverage == 10 && p.Percent == 1 && p.Allocation == 0.99:
			return 25_000, nil
		case p.Leverage == 5:
			return 4_000, nil
		}
		return 10_000, nil
	})
	res := o.Optimize(mkDay(), 1_000_000)

	for _, p := range fs.calls {
		assert.NotEqual(t, 2, p.Leverage, "leverage 2 should have been pruned")
	}
	// 4 at 10x, 4 at 5x, then 2 refinement runs.
	assert.Len(t, fs.calls, 10)
	assert.Equal(t, 10, res.Tested)
	assert.Equal(t, 25_000.0, res.FinalBalance)
}

func TestOptimizerNoPruneWhenLevelHoldsUp(t *testing.T) {
	t.Parallel()

	o, fs := newTestOptimizer(testPolicy(), func(p Params) (float64, error) {
		if p.Leverage == 10 && p.Percent == 1 && p.Allocation == 0.99 {
			return 15_000, nil
		}
		return 10_000, nil
	})
	o.Optimize(mkDay(), 1_000_000)

	var sawTwo bool
	for _, p := range fs.calls {
		if p.Leverage == 2 {
			sawTwo = true
		}
	}
	assert.True(t, sawTwo)
}

func TestOptimizerRefinesAllocation(t *testing.T) {
	t.Parallel()

	o, fs := newTestOptimizer(testPolicy(), func(p Params) (float64, error) {
		if p.Leverage == 10 && p.Percent == 1 {
			switch p.Allocation {
			case 0.99:
				return 15_000, nil
			case 0.5:
				return 16_000, nil
			}
		}
		return 10_000, nil
	})
	res := o.Optimize(mkDay(), 1_000_000)

	require.NotNil(t, res.Params)
	assert.Equal(t, Params{Percent: 1, Leverage: 10, Allocation: 0.5}, *res.Params)
	assert.Equal(t, 16_000.0, res.FinalBalance)
	assert.Equal(t, 14, res.Tested)

	refine := fs.calls[12:]
	assert.Equal(t, []Params{
		{Percent: 1, Leverage: 10, Allocation: 0.9},
		{Percent: 1, Leverage: 10, Allocation: 0.5},
	}, refine)
}

func TestOptimizerRefinementIgnoresBudget(t *testing.T) {
	t.Parallel()

	policy := testPolicy()
	policy.MaxTests = 1
	o, fs := newTestOptimizer(policy, func(p Params) (float64, error) {
		return 10_000 + 1000*p.Allocation, nil
	})
	res := o.Optimize(mkDay(), 1_000_000)

	assert.Len(t, fs.calls, 3)
	assert.Equal(t, 3, res.Tested)
	require.NotNil(t, res.Params)
	assert.Equal(t, 0.99, res.Params.Allocation)
}

func TestOptimizerSkipsFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	o, fs := newTestOptimizer(testPolicy(), func(p Params) (float64, error) {
		switch {
		case p.Allocation == 0.99:
			panic("bad combination")
		case p.Percent == 1:
			return 0, boom
		case p.Leverage == 5 && p.Allocation == 0.9:
			return 12_000, nil
		}
		return 10_000, nil
	})

	var res DayResult
	require.NotPanics(t, func() { res = o.Optimize(mkDay(), 1_000_000) })

	require.NotNil(t, res.Params)
	assert.Equal(t, Params{Percent: 2, Leverage: 5, Allocation: 0.9}, *res.Params)
	assert.Equal(t, 12_000.0, res.FinalBalance)
	assert.Equal(t, len(fs.calls), res.Tested)
}

func TestOptimizerTargetIsInclusive(t *testing.T) {
	t.Parallel()

	o, fs := newTestOptimizer(testPolicy(), func(p Params) (float64, error) {
		if p.Leverage == 10 && p.Percent == 1 {
			switch p.Allocation {
			case 0.99:
				return 15_000, nil
			case 0.9:
				return 20_000, nil
			}
		}
		return 10_000, nil
	})
	res := o.Optimize(mkDay(), 20_000)

	assert.True(t, res.Achieved)
	require.NotNil(t, res.Params)
	assert.Equal(t, 0.9, res.Params.Allocation)
	assert.Equal(t, 2, res.Tested)
	assert.Len(t, fs.calls, 2)
}
