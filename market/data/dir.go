package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"
	"go.uber.org/zap"

	"github.com/rustyeddy/tpsl/market"
)

var ErrNoData = errors.New("data: no bar data")

// Extensions are tried in this order when looking for a day file.
var Extensions = []string{".csv", ".csv.xz", ".zip"}

// Dir serves minute bars from a directory laid out as
// <root>/<base>/<SYMBOL>-1m-<YYYY-MM-DD>.<ext>.
type Dir struct {
	Root        string
	Instruments []string

	// CacheDir receives extracted zip archives. Defaults to <Root>/.cache.
	CacheDir string
	Logger   *zap.Logger
}

func NewDir(root string, instruments []string, log *zap.Logger) *Dir {
	if len(instruments) == 0 {
		instruments = market.DefaultInstruments
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dir{Root: root, Instruments: instruments, Logger: log}
}

// FileName is the dump file name for one instrument and day, without extension.
func FileName(instrument string, date time.Time) string {
	return fmt.Sprintf("%s-1m-%s", strings.ToUpper(instrument), date.UTC().Format(market.DateLayout))
}

// Path returns where the day file with extension ext lives.
func (d *Dir) Path(instrument string, date time.Time, ext string) string {
	sub := strings.ToLower(instrument)
	if meta, ok := market.Lookup(instrument); ok {
		sub = meta.DataDir
	}
	return filepath.Join(d.Root, sub, FileName(instrument, date)+ext)
}

// LoadDay reads every configured instrument for date. Instruments without a
// file are left out; a day with no files at all is an empty Day, not an error.
func (d *Dir) LoadDay(ctx context.Context, date time.Time) (*market.Day, error) {
	day := market.NewDay(date)
	for _, inst := range d.Instruments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candles, err := d.LoadSeries(inst, date)
		if errors.Is(err, ErrNoData) {
			d.log().Debug("no data", zap.String("instrument", inst), zap.String("date", date.Format(market.DateLayout)))
			continue
		}
		if err != nil {
			return nil, err
		}

		s, err := market.NewSeries(inst, candles)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", inst, date.Format(market.DateLayout), err)
		}
		if gap := s.MissingMinutes(); gap > 0 {
			d.log().Warn("missing minutes",
				zap.String("instrument", inst),
				zap.String("date", date.Format(market.DateLayout)),
				zap.Int("missing", gap))
		}
		day.Add(s)
	}
	return day, nil
}

// LoadSeries reads one instrument's bars for date, returning ErrNoData when no
// file exists.
func (d *Dir) LoadSeries(instrument string, date time.Time) ([]market.Candle, error) {
	for _, ext := range Extensions {
		path := d.Path(instrument, date, ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		candles, err := d.readFile(path, instrument)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(candles) == 0 {
			return nil, ErrNoData
		}
		return candles, nil
	}
	return nil, ErrNoData
}

func (d *Dir) readFile(path, instrument string) ([]market.Candle, error) {
	if strings.HasSuffix(path, ".zip") {
		csvPath, err := d.extract(path)
		if err != nil {
			return nil, err
		}
		path = csvPath
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		r = xr
	}
	return ReadCSV(r, instrument)
}

// extract unpacks a dump archive into the cache once and returns the CSV
// inside it.
func (d *Dir) extract(zipPath string) (string, error) {
	cache := d.CacheDir
	if cache == "" {
		cache = filepath.Join(d.Root, ".cache")
	}
	base := strings.TrimSuffix(filepath.Base(zipPath), ".zip")
	dest := filepath.Join(cache, base)
	want := filepath.Join(dest, base+".csv")

	if _, err := os.Stat(want); err == nil {
		return want, nil
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", err
	}
	if err := unzip.Extract(zipPath, dest); err != nil {
		return "", fmt.Errorf("unzip %s: %w", zipPath, err)
	}

	if _, err := os.Stat(want); err == nil {
		return want, nil
	}
	matches, _ := filepath.Glob(filepath.Join(dest, "*.csv"))
	if len(matches) == 0 {
		return "", fmt.Errorf("%s: archive holds no csv", zipPath)
	}
	return matches[0], nil
}

func (d *Dir) log() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}
