package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tpsl/backtest"
	"github.com/rustyeddy/tpsl/journal"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search every day in a date range",
	Long: `Run the parameter search for each calendar day between --from and
--to, print each day's result and record it to the results file and the
configured journal.

Example:
  tpsl run --from 2025-12-01 --to 2025-12-31 --target 1000000`,
	RunE: runRun,
}

var (
	runFrom    string
	runTo      string
	runTarget  float64
	runSummary bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFrom, "from", "2025-12-01", "first date (YYYY-MM-DD)")
	runCmd.Flags().StringVar(&runTo, "to", "2025-12-31", "last date (YYYY-MM-DD)")
	runCmd.Flags().Float64Var(&runTarget, "target", 0, "target balance (default account.target_balance)")
	runCmd.Flags().BoolVar(&runSummary, "summary", false, "print the results analysis after the run")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	from, to, err := parseRange(runFrom, runTo)
	if err != nil {
		return err
	}
	target := cfg.Account.TargetBalance
	if runTarget > 0 {
		target = runTarget
	}

	j, err := openJournal(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	r := &backtest.Runner{
		Finder:  newFinder(cfg, log),
		Journal: j,
		Policy:  cfg.Policy(),
		Logger:  log,
		OnDay: func(d journal.DayRecord) {
			backtest.PrintDay(out, d, target)
		},
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	recs, runErr := r.Run(ctx, from, to, target)
	if err := j.Close(); err != nil {
		log.Error("close journal", zap.Error(err))
		runErr = errors.Join(runErr, err)
	}

	backtest.PrintRun(out, recs, target)
	if runSummary {
		backtest.PrintSummary(out, backtest.Summarize(recs, 5), target)
	}
	if cfg.Journal.ResultsFile != "" {
		fmt.Fprintf(out, "✓ Results saved to %s\n", cfg.Journal.ResultsFile)
	}
	return runErr
}
