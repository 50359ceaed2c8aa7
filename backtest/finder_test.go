package backtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tpsl/market"
)

type fakeProvider struct {
	days  map[string]*market.Day
	err   error
	loads int
}

func (f *fakeProvider) LoadDay(ctx context.Context, date time.Time) (*market.Day, error) {
	f.loads++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.days[date.Format(market.DateLayout)]
	if !ok {
		return market.NewDay(date), nil
	}
	return d, nil
}

func newTestFinder(p *fakeProvider, score func(Params) (float64, error)) (*Finder, *fakeSim) {
	o, fs := newTestOptimizer(testPolicy(), score)
	return &Finder{Provider: p, Optimizer: o}, fs
}

func TestFinderEmptyDay(t *testing.T) {
	t.Parallel()

	f, fs := newTestFinder(&fakeProvider{}, func(Params) (float64, error) { return 20_000, nil })
	res, err := f.FindOptimalStrategy(context.Background(), day0, 1_000_000)
	require.NoError(t, err)

	assert.Equal(t, day0, res.Date)
	assert.Nil(t, res.Params)
	assert.Equal(t, 10_000.0, res.FinalBalance)
	assert.Equal(t, 10_000.0, res.InitialBalance)
	assert.Empty(t, fs.calls)
}

func TestFinderProviderError(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{err: errors.New("disk on fire")}
	f, fs := newTestFinder(p, func(Params) (float64, error) { return 20_000, nil })

	res, err := f.FindOptimalStrategy(context.Background(), day0, 1_000_000)
	require.NoError(t, err)
	assert.Nil(t, res.Params)
	assert.Equal(t, 10_000.0, res.FinalBalance)
	assert.Empty(t, fs.calls)
}

func TestFinderCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f, _ := newTestFinder(&fakeProvider{}, func(Params) (float64, error) { return 20_000, nil })
	_, err := f.FindOptimalStrategy(ctx, day0, 1_000_000)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFinderOptimizesLoadedDay(t *testing.T) {
	t.Parallel()

	day := mkDay(mkSeries(t, "BTCUSDT", flat(100), flat(100)))
	p := &fakeProvider{days: map[string]*market.Day{"2025-12-01": day}}
	f, fs := newTestFinder(p, func(q Params) (float64, error) {
		if q.Leverage == 10 && q.Percent == 2 && q.Allocation == 0.9 {
			return 13_000, nil
		}
		return 10_000, nil
	})

	res, err := f.FindOptimalStrategy(context.Background(), day0, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, 1, p.loads)
	assert.NotEmpty(t, fs.calls)
	assert.Equal(t, day0, res.Date)
	require.NotNil(t, res.Params)
	assert.Equal(t, 13_000.0, res.FinalBalance)
}
