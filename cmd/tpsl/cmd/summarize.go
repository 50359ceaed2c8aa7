package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tpsl/backtest"
	"github.com/rustyeddy/tpsl/journal"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Analyze a results file or journal",
	Long: `Print return and balance statistics, the best and worst days and the
most common parameters of a finished run.

Examples:
  tpsl summarize --results results.json
  tpsl summarize --db tpsl.db --from 2025-12-01 --to 2025-12-31`,
	Args: cobra.NoArgs,
	RunE: runSummarize,
}

var (
	sumResults string
	sumDB      string
	sumFrom    string
	sumTo      string
	sumTop     int
)

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringVarP(&sumResults, "results", "r", "", "results file (default journal.results_file)")
	summarizeCmd.Flags().StringVar(&sumDB, "db", "", "read days from a SQLite journal instead")
	summarizeCmd.Flags().StringVar(&sumFrom, "from", "", "first date when reading a journal")
	summarizeCmd.Flags().StringVar(&sumTo, "to", "", "last date when reading a journal")
	summarizeCmd.Flags().IntVarP(&sumTop, "top", "n", 5, "number of best and worst days")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var recs []journal.DayRecord
	if sumDB != "" {
		j, err := journal.NewSQLite(sumDB)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer j.Close()

		if recs, err = j.ListDays(sumFrom, sumTo); err != nil {
			return fmt.Errorf("list days: %w", err)
		}
	} else {
		path := sumResults
		if path == "" {
			path = cfg.Journal.ResultsFile
		}
		days, err := journal.ReadJSON(path)
		if err != nil {
			return fmt.Errorf("read results: %w", err)
		}
		for _, date := range slices.Sorted(maps.Keys(days)) {
			recs = append(recs, days[date])
		}
	}

	backtest.PrintSummary(cmd.OutOrStdout(), backtest.Summarize(recs, sumTop), cfg.Account.TargetBalance)
	return nil
}
