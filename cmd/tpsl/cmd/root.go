package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tpsl/config"
)

var rootCmd = &cobra.Command{
	Use:   "tpsl",
	Short: "Minute-bar TP/SL futures backtester",
	Long: `tpsl replays a day of one-minute futures bars and searches for the
take-profit/stop-loss percentage, leverage and allocation that finish the
day with the highest balance.

Entries are chosen by looking ahead at later bars of the same day. Results
measure what a parameter set could have earned in hindsight and are not a
live trading signal.

It provides tools for:
  - Running the daily parameter search over a range of dates
  - Simulating a single day with fixed parameters
  - Summarizing results files
  - Downloading minute bars from Binance
  - Querying the results journal`,
	SilenceUsage: true,
}

var (
	cfgFile  string
	logLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level")
}

// setup loads the configuration and builds the logger every command shares.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log, nil
}

func newLogger(c config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if c.Level != "" {
		lvl, err := zap.ParseAtomicLevel(c.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = lvl
	}
	return zc.Build()
}
