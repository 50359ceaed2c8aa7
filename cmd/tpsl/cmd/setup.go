package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tpsl/backtest"
	"github.com/rustyeddy/tpsl/config"
	"github.com/rustyeddy/tpsl/journal"
	"github.com/rustyeddy/tpsl/market"
	"github.com/rustyeddy/tpsl/market/data"
)

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newFinder(cfg *config.Config, log *zap.Logger) *backtest.Finder {
	s := cfg.Simulator()
	s.Logger = log
	return &backtest.Finder{
		Provider:  data.NewDir(cfg.Market.DataDir, cfg.Market.Instruments, log),
		Optimizer: backtest.NewOptimizer(cfg.Policy(), s, log),
		Logger:    log,
	}
}

// openJournal fans records out to the results file and the configured backend.
func openJournal(cfg *config.Config) (journal.Journal, error) {
	var js journal.Multi
	fail := func(err error) (journal.Journal, error) {
		_ = js.Close()
		return nil, err
	}

	if cfg.Journal.ResultsFile != "" {
		j, err := journal.NewJSON(cfg.Journal.ResultsFile)
		if err != nil {
			return fail(fmt.Errorf("open results file: %w", err))
		}
		js = append(js, j)
	}

	switch cfg.Journal.Type {
	case "csv":
		j, err := journal.NewCSV(cfg.Journal.DaysFile, cfg.Journal.TradesFile)
		if err != nil {
			return fail(fmt.Errorf("open csv journal: %w", err))
		}
		js = append(js, j)
	case "sqlite":
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return fail(fmt.Errorf("open sqlite journal: %w", err))
		}
		js = append(js, j)
	case "postgres":
		j, err := journal.NewPostgres(cfg.Journal.DSN)
		if err != nil {
			return fail(fmt.Errorf("open postgres journal: %w", err))
		}
		js = append(js, j)
	}

	if len(js) == 0 {
		return journal.Discard{}, nil
	}
	return js, nil
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := market.ParseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("from: %w", err)
	}
	if to == "" {
		return start, start, nil
	}
	end, err := market.ParseDate(to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("to: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("to %s is before from %s", to, from)
	}
	return start, end, nil
}

// dayBounds returns [start, end) for a calendar day in UTC.
func dayBounds(day string) (time.Time, time.Time, error) {
	start, err := market.ParseDate(day)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 0, 1), nil
}
