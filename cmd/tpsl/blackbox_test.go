//go:build blackbox

package main_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/tpsl/config"
	"github.com/rustyeddy/tpsl/journal"
	"github.com/rustyeddy/tpsl/market"
	"github.com/rustyeddy/tpsl/market/data"
)

var tpslBin string

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "tpsl-blackbox-*")
	if err != nil {
		panic(err)
	}

	tpslBin = filepath.Join(tmp, "tpsl")

	// Build the binary once for all tests.
	cmd := exec.Command("go", "build", "-o", tpslBin, ".")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic(err)
	}

	code := m.Run()
	os.RemoveAll(tmp)
	os.Exit(code)
}

func run(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command(tpslBin, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("command failed: %v\nargs: %v\noutput:\n%s", err, args, string(out))
	}
	return string(out)
}

// writeDay stores a day of bars that rises then falls, as compressed CSV.
func writeDay(t *testing.T, d *data.Dir, inst, date string, base float64) {
	t.Helper()

	day, err := market.ParseDate(date)
	if err != nil {
		t.Fatal(err)
	}
	candles := make([]market.Candle, 240)
	p := base
	for i := range candles {
		step := 1.004
		if i >= 120 {
			step = 0.996
		}
		next := p * step
		candles[i] = market.Candle{
			Open:  p,
			High:  max(p, next) * 1.001,
			Low:   min(p, next) * 0.999,
			Close: next,
			Time:  day.Add(time.Duration(i) * time.Minute),
		}
		p = next
	}
	if err := data.WriteFile(d.Path(inst, day, ".csv.xz"), candles); err != nil {
		t.Fatal(err)
	}
}

func TestRunAndQueryJournal(t *testing.T) {
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Market.DataDir = filepath.Join(dir, "data")
	cfg.Market.Instruments = []string{"BTCUSDT", "ETHUSDT"}
	cfg.Search.MaxTests = 20
	cfg.Journal.DBPath = filepath.Join(dir, "tpsl.db")
	cfg.Journal.ResultsFile = filepath.Join(dir, "results.json")
	cfg.Log.Level = "warn"
	cfgPath := filepath.Join(dir, "tpsl.yaml")
	if err := cfg.SaveToFile(cfgPath); err != nil {
		t.Fatal(err)
	}

	d := data.NewDir(cfg.Market.DataDir, cfg.Market.Instruments, nil)
	writeDay(t, d, "BTCUSDT", "2025-12-01", 90000)
	writeDay(t, d, "ETHUSDT", "2025-12-01", 3000)
	writeDay(t, d, "BTCUSDT", "2025-12-02", 91000)

	out := run(t, dir, "run", "--config", cfgPath, "--from", "2025-12-01", "--to", "2025-12-03")
	if !strings.Contains(out, "SUMMARY") {
		t.Fatalf("expected SUMMARY in output, got:\n%s", out)
	}

	days, err := journal.ReadJSON(cfg.Journal.ResultsFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	if days["2025-12-01"].NumTrades == 0 {
		t.Fatalf("expected trades on 2025-12-01")
	}
	if days["2025-12-03"].NumTrades != 0 || days["2025-12-03"].HasParams() {
		t.Fatalf("expected an empty result for a day without data, got %+v", days["2025-12-03"])
	}

	out = run(t, dir, "journal", "list", "--db", cfg.Journal.DBPath)
	for _, date := range []string{"2025-12-01", "2025-12-02", "2025-12-03"} {
		if !strings.Contains(out, "* Day: "+date) {
			t.Fatalf("expected %s in journal list, got:\n%s", date, out)
		}
	}

	out = run(t, dir, "summarize", "--config", cfgPath)
	if !strings.Contains(out, "Total Days Analyzed: 3") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
}
