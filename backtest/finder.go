package backtest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tpsl/market"
)

// BarProvider loads every instrument's minute bars for one calendar day.
// Instruments without data are left out of the returned Day.
type BarProvider interface {
	LoadDay(ctx context.Context, date time.Time) (*market.Day, error)
}

// Finder loads a day once and runs the optimizer over it.
type Finder struct {
	Provider  BarProvider
	Optimizer *Optimizer
	Logger    *zap.Logger
}

// FindOptimalStrategy returns the best parameters found for date. A day that
// cannot be loaded is reported as a day without trades; only cancellation is
// returned as an error.
func (f *Finder) FindOptimalStrategy(ctx context.Context, date time.Time, target float64) (DayResult, error) {
	log := f.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("date", date.Format(market.DateLayout)))

	day, err := f.Provider.LoadDay(ctx, date)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return DayResult{}, ctxErr
		}
		log.Error("load day", zap.Error(err))
		day = nil
	}
	if day.Empty() {
		log.Info("no bar data")
		initial := f.Optimizer.Sim.StartingBalance()
		return DayResult{Date: date, InitialBalance: initial, FinalBalance: initial}, nil
	}

	res := f.Optimizer.Optimize(day, target)
	res.Date = date
	return res, nil
}
