package data

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/rustyeddy/tpsl/market"
)

// maxKlines is the page size the futures klines endpoint accepts.
const maxKlines = 1500

// KlineSource returns one-minute candles opened in [start, end).
type KlineSource interface {
	Klines(ctx context.Context, symbol string, start, end time.Time) ([]market.Candle, error)
}

// BinanceSource reads USDⓈ-M futures klines through the REST API.
type BinanceSource struct {
	client  *futures.Client
	limiter *rate.Limiter

	Retries int
	Backoff time.Duration
}

// NewBinanceSource builds a rate limited client. Kline data is public, so the
// key and secret may be empty.
func NewBinanceSource(apiKey, secretKey string, rps float64, burst int) *BinanceSource {
	client := futures.NewClient(apiKey, secretKey)
	client.HTTPClient = &http.Client{Timeout: 10 * time.Second}

	return &BinanceSource{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		Retries: 3,
		Backoff: 100 * time.Millisecond,
	}
}

func (b *BinanceSource) Klines(ctx context.Context, symbol string, start, end time.Time) ([]market.Candle, error) {
	var out []market.Candle
	from := start.UnixMilli()
	until := end.UnixMilli() - 1

	for from <= until {
		page, err := b.page(ctx, symbol, from, until)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		for _, k := range page {
			c, err := klineCandle(k)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", symbol, err)
			}
			c.Instrument = symbol
			out = append(out, c)
		}
		from = page[len(page)-1].OpenTime + time.Minute.Milliseconds()
	}
	return out, nil
}

// page fetches one page with exponential backoff between retries.
func (b *BinanceSource) page(ctx context.Context, symbol string, from, until int64) ([]*futures.Kline, error) {
	var err error
	for attempt := 0; attempt <= b.Retries; attempt++ {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var klines []*futures.Kline
		klines, err = b.client.NewKlinesService().
			Symbol(symbol).
			Interval("1m").
			StartTime(from).
			EndTime(until).
			Limit(maxKlines).
			Do(ctx)
		if err == nil {
			return klines, nil
		}

		wait := time.Duration(math.Pow(2, float64(attempt))) * b.Backoff
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("klines %s: %w", symbol, err)
}

func klineCandle(k *futures.Kline) (market.Candle, error) {
	var px [5]float64
	for i, s := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return market.Candle{}, fmt.Errorf("kline %d: %q: %w", k.OpenTime, s, err)
		}
		px[i] = v
	}
	return market.Candle{
		Open:   px[0],
		High:   px[1],
		Low:    px[2],
		Close:  px[3],
		Volume: px[4],
		Time:   time.UnixMilli(k.OpenTime).UTC(),
	}, nil
}

// Fetcher downloads days of bars and stores them in a Dir.
type Fetcher struct {
	Source KlineSource
	Dir    *Dir

	// Compress writes .csv.xz instead of .csv.
	Compress bool
	// Overwrite refetches days that already have a file.
	Overwrite bool
	Workers   int
	Logger    *zap.Logger
}

// FetchDay stores one day for every instrument of the Dir. Instruments are
// fetched concurrently, bounded by Workers.
func (f *Fetcher) FetchDay(ctx context.Context, date time.Time) error {
	log := f.Logger
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	ext := ".csv"
	if f.Compress {
		ext = ".csv.xz"
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, f.Workers))

	for _, inst := range f.Dir.Instruments {
		inst := inst
		path := f.Dir.Path(inst, start, ext)
		if !f.Overwrite && exists(path) {
			log.Debug("have file", zap.String("path", path))
			continue
		}

		g.Go(func() error {
			candles, err := f.Source.Klines(ctx, inst, start, end)
			if err != nil {
				return fmt.Errorf("fetch %s %s: %w", inst, start.Format(market.DateLayout), err)
			}
			if len(candles) == 0 {
				log.Warn("no klines", zap.String("instrument", inst), zap.String("date", start.Format(market.DateLayout)))
				return nil
			}
			if err := WriteFile(path, candles); err != nil {
				return err
			}
			log.Info("fetched",
				zap.String("instrument", inst),
				zap.String("date", start.Format(market.DateLayout)),
				zap.Int("bars", len(candles)),
				zap.String("path", path))
			return nil
		})
	}
	return g.Wait()
}

// FetchRange fetches every day in [from, to].
func (f *Fetcher) FetchRange(ctx context.Context, from, to time.Time) error {
	var errs []error
	for _, d := range market.Dates(from, to) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f.FetchDay(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Size() > 0
}
