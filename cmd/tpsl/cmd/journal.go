package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tpsl/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the results journal",
	Long: `Query and display day and trade records from the SQLite journal.

Subcommands:
  day    - Show a day's search result and its trades
  list   - List recorded days
  trades - List trades closed on a specific day
  trade  - Get details of a specific trade by ID

Examples:
  tpsl journal day 2025-12-01
  tpsl journal list --from 2025-12-01 --to 2025-12-07
  tpsl journal trade <trade-id>`,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "Show a recorded day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded days",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <YYYY-MM-DD>",
	Short: "List trades closed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var (
	journalDBPath string
	journalFrom   string
	journalTo     string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalDayCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalTradeCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (default journal.db_path)")
	journalListCmd.Flags().StringVar(&journalFrom, "from", "", "first date")
	journalListCmd.Flags().StringVar(&journalTo, "to", "", "last date")
}

func openSQLite() (*journal.SQLite, error) {
	path := journalDBPath
	if path == "" {
		cfg, _, err := setup()
		if err != nil {
			return nil, err
		}
		path = cfg.Journal.DBPath
	}
	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetDay(args[0])
	if err != nil {
		return fmt.Errorf("get day: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatDayOrg(rec))
	return nil
}

func runJournalList(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListDays(journalFrom, journalTo)
	if err != nil {
		return fmt.Errorf("list days: %w", err)
	}

	out := cmd.OutOrStdout()
	for i, rec := range recs {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprint(out, journal.FormatDayOrg(rec))
	}
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	start, end, err := dayBounds(args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListTradesClosedBetween(start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
	return nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(rec))
	return nil
}
