package backtest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tpsl/journal"
	"github.com/rustyeddy/tpsl/market"
	"github.com/rustyeddy/tpsl/pkg/id"
)

// Runner drives the daily search over a range of dates and records each
// day's result.
type Runner struct {
	Finder  *Finder
	Journal journal.Journal
	Policy  SearchPolicy
	Logger  *zap.Logger

	// OnDay, if set, is called with each record after it is journaled.
	OnDay func(journal.DayRecord)
}

// Run searches every calendar date in [from, to] and returns the records in
// date order. Cancellation is checked between days; the records completed so
// far are returned with the context's error.
func (r *Runner) Run(ctx context.Context, from, to time.Time, target float64) ([]journal.DayRecord, error) {
	if r.Finder == nil {
		return nil, fmt.Errorf("backtest: Finder is required")
	}
	if to.Before(from) {
		return nil, fmt.Errorf("backtest: range end %s is before start %s",
			to.Format(market.DateLayout), from.Format(market.DateLayout))
	}

	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	runID := id.New()
	log = log.With(zap.String("run_id", runID))

	dates := market.Dates(from, to)
	log.Info("run started",
		zap.String("from", from.Format(market.DateLayout)),
		zap.String("to", to.Format(market.DateLayout)),
		zap.Int("days", len(dates)),
		zap.Float64("target", target))

	var out []journal.DayRecord
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		res, err := r.Finder.FindOptimalStrategy(ctx, date, target)
		if err != nil {
			return out, err
		}

		rec := NewDayRecord(res, r.Policy)
		rec.RunID = runID
		if r.Journal != nil {
			if err := r.Journal.RecordDay(rec); err != nil {
				return out, fmt.Errorf("record %s: %w", rec.Date, err)
			}
		}
		out = append(out, rec)

		log.Info("day complete",
			zap.String("date", rec.Date),
			zap.Float64("final_balance", rec.FinalBalance),
			zap.Bool("achieved", rec.AchievedTarget),
			zap.Int("trades", rec.NumTrades))

		if r.OnDay != nil {
			r.OnDay(rec)
		}
	}
	return out, nil
}
