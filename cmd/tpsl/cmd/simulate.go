package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tpsl/backtest"
	"github.com/rustyeddy/tpsl/market"
	"github.com/rustyeddy/tpsl/market/data"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <YYYY-MM-DD>",
	Short: "Simulate one day with fixed parameters",
	Long: `Replay one day with an explicit TP/SL percentage, leverage and
allocation instead of searching for them.

Example:
  tpsl simulate 2025-12-01 --pct 2 --leverage 10 --alloc 0.9`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

var (
	simPercent    float64
	simLeverage   int
	simAllocation float64
	simTrades     int
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().Float64Var(&simPercent, "pct", 1, "take-profit/stop-loss distance in percent")
	simulateCmd.Flags().IntVar(&simLeverage, "leverage", 10, "leverage")
	simulateCmd.Flags().Float64Var(&simAllocation, "alloc", 0.9, "fraction of available balance per entry")
	simulateCmd.Flags().IntVarP(&simTrades, "trades", "n", 10, "number of trades to list")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	date, err := market.ParseDate(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	day, err := data.NewDir(cfg.Market.DataDir, cfg.Market.Instruments, log).LoadDay(ctx, date)
	if err != nil {
		return err
	}

	s := cfg.Simulator()
	s.Logger = log
	p := backtest.Params{Percent: simPercent, Leverage: simLeverage, Allocation: simAllocation}
	res, err := s.Run(day, p)
	if err != nil {
		return err
	}

	target := cfg.Account.TargetBalance
	rec := backtest.NewDayRecord(backtest.DayResult{
		Date:           date,
		InitialBalance: s.StartingBalance(),
		FinalBalance:   res.FinalBalance,
		Params:         &p,
		Trades:         res.Trades,
		Achieved:       res.FinalBalance >= target,
		Tested:         1,
	}, cfg.Policy())

	out := cmd.OutOrStdout()
	backtest.PrintDay(out, rec, target)
	backtest.PrintTrades(out, rec.Trades, simTrades)
	return nil
}
