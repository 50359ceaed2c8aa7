package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tpsl/backtest"
	"github.com/rustyeddy/tpsl/market"
)

// Config represents the complete backtest configuration
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Market  MarketConfig  `json:"market" yaml:"market"`
	Search  SearchConfig  `json:"search" yaml:"search"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Binance BinanceConfig `json:"binance" yaml:"binance"`
}

// AccountConfig contains the simulated account
type AccountConfig struct {
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
	TargetBalance  float64 `json:"target_balance" yaml:"target_balance"`
}

// MarketConfig says where bars live and which instruments to trade
type MarketConfig struct {
	DataDir     string   `json:"data_dir" yaml:"data_dir"`
	Instruments []string `json:"instruments" yaml:"instruments"`
	Interval    string   `json:"interval" yaml:"interval"`
}

// SearchConfig is the parameter grid and search limits
type SearchConfig struct {
	Leverages         []int     `json:"leverages" yaml:"leverages"`
	Percents          []float64 `json:"percents" yaml:"percents"`
	Allocations       []float64 `json:"allocations" yaml:"allocations"`
	TopAllocations    int       `json:"top_allocations" yaml:"top_allocations"`
	MaxTests          int       `json:"max_tests" yaml:"max_tests"`
	PruneRatio        float64   `json:"prune_ratio" yaml:"prune_ratio"`
	DefaultAllocation float64   `json:"default_allocation" yaml:"default_allocation"`
	Lookahead         int       `json:"lookahead" yaml:"lookahead"`
	MinEntryBalance   float64   `json:"min_entry_balance" yaml:"min_entry_balance"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type        string `json:"type" yaml:"type"` // "none", "csv", "sqlite" or "postgres"
	ResultsFile string `json:"results_file,omitempty" yaml:"results_file,omitempty"`
	DaysFile    string `json:"days_file,omitempty" yaml:"days_file,omitempty"`
	TradesFile  string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	DSN         string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	// Development switches to the human readable console encoder.
	Development bool `json:"development" yaml:"development"`
}

// BinanceConfig is used only for fetching bars
type BinanceConfig struct {
	APIKey            string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APISecret         string  `json:"api_secret,omitempty" yaml:"api_secret,omitempty"`
	Testnet           bool    `json:"testnet" yaml:"testnet"`
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load reads path when it is set, otherwise starts from Default, then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	// Determine format by extension
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Env names of the variables ApplyEnv reads.
const (
	EnvDataDir   = "TPSL_DATA_DIR"
	EnvDBPath    = "TPSL_DB_PATH"
	EnvPGDSN     = "TPSL_PG_DSN"
	EnvLogLevel  = "TPSL_LOG_LEVEL"
	EnvAPIKey    = "BINANCE_API_KEY"
	EnvAPISecret = "BINANCE_API_SECRET"
)

// ApplyEnv loads .env when present and lets environment variables override
// file values. Variables already set in the process win over .env.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.Market.DataDir, EnvDataDir)
	set(&c.Journal.DBPath, EnvDBPath)
	set(&c.Journal.DSN, EnvPGDSN)
	set(&c.Log.Level, EnvLogLevel)
	set(&c.Binance.APIKey, EnvAPIKey)
	set(&c.Binance.APISecret, EnvAPISecret)
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.InitialBalance <= 0 {
		return fmt.Errorf("account.initial_balance must be positive")
	}
	if c.Account.TargetBalance <= 0 {
		return fmt.Errorf("account.target_balance must be positive")
	}
	if c.Market.DataDir == "" {
		return fmt.Errorf("market.data_dir is required")
	}
	if len(c.Market.Instruments) == 0 {
		return fmt.Errorf("market.instruments is required")
	}
	// Validate that every instrument can be resolved
	for _, inst := range c.Market.Instruments {
		if _, ok := market.Lookup(inst); !ok {
			return fmt.Errorf("unknown instrument: %s", inst)
		}
	}
	// Bars are replayed one minute at a time.
	if d, err := market.IntervalToDuration(c.Market.Interval); err != nil || d != time.Minute {
		return fmt.Errorf("market.interval must be 1m")
	}
	if err := c.Policy().Validate(); err != nil {
		return err
	}
	if c.Search.Lookahead <= 0 {
		return fmt.Errorf("search.lookahead must be positive")
	}
	if c.Search.MinEntryBalance < 0 {
		return fmt.Errorf("search.min_entry_balance must not be negative")
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.DaysFile == "" || c.Journal.TradesFile == "" {
			return fmt.Errorf("journal days_file and trades_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "postgres":
		if c.Journal.DSN == "" {
			return fmt.Errorf("journal dsn required for postgres type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv', 'sqlite' or 'postgres'")
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	if c.Binance.RequestsPerSecond <= 0 {
		return fmt.Errorf("binance.requests_per_second must be positive")
	}
	return nil
}

// Policy converts the search section.
func (c *Config) Policy() backtest.SearchPolicy {
	return backtest.SearchPolicy{
		Leverages:         c.Search.Leverages,
		Percents:          c.Search.Percents,
		Allocations:       c.Search.Allocations,
		TopAllocations:    c.Search.TopAllocations,
		MaxTests:          c.Search.MaxTests,
		PruneRatio:        c.Search.PruneRatio,
		DefaultAllocation: c.Search.DefaultAllocation,
	}
}

// Simulator builds a day simulator from the account and search sections.
func (c *Config) Simulator() *backtest.Simulator {
	s := backtest.NewSimulator(c.Account.InitialBalance)
	s.MinEntryBalance = c.Search.MinEntryBalance
	s.Oracle = backtest.Oracle{Lookahead: c.Search.Lookahead}
	return s
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	p := backtest.DefaultPolicy()
	return &Config{
		Account: AccountConfig{
			InitialBalance: backtest.DefaultInitialBalance,
			TargetBalance:  1_000_000,
		},
		Market: MarketConfig{
			DataDir:     "./data",
			Instruments: append([]string(nil), market.DefaultInstruments...),
			Interval:    "1m",
		},
		Search: SearchConfig{
			Leverages:         p.Leverages,
			Percents:          p.Percents,
			Allocations:       p.Allocations,
			TopAllocations:    p.TopAllocations,
			MaxTests:          p.MaxTests,
			PruneRatio:        p.PruneRatio,
			DefaultAllocation: p.DefaultAllocation,
			Lookahead:         backtest.DefaultLookahead,
			MinEntryBalance:   backtest.DefaultMinEntryBalance,
		},
		Journal: JournalConfig{
			Type:        "sqlite",
			ResultsFile: "./results.json",
			DBPath:      "./tpsl.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Binance: BinanceConfig{
			RequestsPerSecond: 10,
			Burst:             20,
		},
	}
}
