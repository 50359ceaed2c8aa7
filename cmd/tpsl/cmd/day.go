package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tpsl/backtest"
	"github.com/rustyeddy/tpsl/market"
)

var dayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "Search a single day without journaling",
	Long: `Run the parameter search for one day and print the result with its
first trades. Nothing is recorded.

Example:
  tpsl day 2025-12-01 --trades 5`,
	Args: cobra.ExactArgs(1),
	RunE: runDay,
}

var (
	dayTarget float64
	dayTrades int
)

func init() {
	rootCmd.AddCommand(dayCmd)

	dayCmd.Flags().Float64Var(&dayTarget, "target", 0, "target balance (default account.target_balance)")
	dayCmd.Flags().IntVarP(&dayTrades, "trades", "n", 5, "number of trades to list")
}

func runDay(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	date, err := market.ParseDate(args[0])
	if err != nil {
		return err
	}
	target := cfg.Account.TargetBalance
	if dayTarget > 0 {
		target = dayTarget
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Testing %s across %d instruments...\n", args[0], len(cfg.Market.Instruments))

	res, err := newFinder(cfg, log).FindOptimalStrategy(ctx, date, target)
	if err != nil {
		return err
	}
	rec := backtest.NewDayRecord(res, cfg.Policy())
	backtest.PrintDay(out, rec, target)
	backtest.PrintTrades(out, rec.Trades, dayTrades)
	return nil
}
