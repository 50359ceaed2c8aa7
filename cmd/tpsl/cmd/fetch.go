package cmd

import (
	"fmt"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tpsl/market/data"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download minute bars from Binance",
	Long: `Download one-minute USDⓈ-M futures bars for every configured
instrument into market.data_dir.

By default bars are read from the klines REST API and written as CSV.
With --dump the daily zip archives from data.binance.vision are
downloaded instead and extracted on first use.

Examples:
  tpsl fetch --from 2025-12-01 --to 2025-12-31 --compress
  tpsl fetch --from 2025-12-01 --to 2025-12-31 --dump`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

var (
	fetchFrom      string
	fetchTo        string
	fetchDump      bool
	fetchCompress  bool
	fetchOverwrite bool
	fetchWorkers   int
	fetchNoVerify  bool
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "first date (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "last date (default --from)")
	fetchCmd.Flags().BoolVar(&fetchDump, "dump", false, "download daily archives instead of using the API")
	fetchCmd.Flags().BoolVar(&fetchCompress, "compress", false, "write .csv.xz files")
	fetchCmd.Flags().BoolVar(&fetchOverwrite, "overwrite", false, "refetch days that already have a file")
	fetchCmd.Flags().IntVarP(&fetchWorkers, "workers", "w", 4, "concurrent downloads")
	fetchCmd.Flags().BoolVar(&fetchNoVerify, "no-verify", false, "skip archive checksum verification")
	_ = fetchCmd.MarkFlagRequired("from")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	from, to, err := parseRange(fetchFrom, fetchTo)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	dir := data.NewDir(cfg.Market.DataDir, cfg.Market.Instruments, log)
	out := cmd.OutOrStdout()

	if fetchDump {
		d := data.NewDownloader(dir, log)
		d.Workers = fetchWorkers
		d.Verify = !fetchNoVerify
		st := d.Download(ctx, from, to)
		fmt.Fprintf(out, "✓ Downloaded %d archives (%d missing, %d failed)\n", st.OK, st.Missing, st.Failed)
		if st.Failed > 0 {
			return fmt.Errorf("%d downloads failed", st.Failed)
		}
		return ctx.Err()
	}

	futures.UseTestnet = cfg.Binance.Testnet
	f := &data.Fetcher{
		Source:    data.NewBinanceSource(cfg.Binance.APIKey, cfg.Binance.APISecret, cfg.Binance.RequestsPerSecond, cfg.Binance.Burst),
		Dir:       dir,
		Compress:  fetchCompress,
		Overwrite: fetchOverwrite,
		Workers:   fetchWorkers,
		Logger:    log,
	}
	if err := f.FetchRange(ctx, from, to); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Fetched %s to %s into %s\n", from.Format("2006-01-02"), to.Format("2006-01-02"), cfg.Market.DataDir)
	return nil
}
