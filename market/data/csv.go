package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tpsl/market"
)

// Header is the column layout of Binance kline dumps. Only the first seven
// columns are read; the rest are written back as zeros.
var Header = []string{
	"open_time", "open", "high", "low", "close", "volume", "close_time",
	"quote_volume", "count", "taker_buy_volume", "taker_buy_quote_volume", "ignore",
}

// ReadCSV parses Binance kline rows for one instrument. A header row is
// optional. Rows with a missing or unparseable price are rejected, so a bad
// file fails as a whole instead of silently dropping minutes.
func ReadCSV(r io.Reader, instrument string) ([]market.Candle, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var out []market.Candle
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if line == 1 && isHeader(rec) {
			continue
		}
		if len(rec) < 5 {
			return nil, fmt.Errorf("%s line %d: want at least 5 columns, got %d", instrument, line, len(rec))
		}

		c, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", instrument, line, err)
		}
		c.Instrument = instrument
		out = append(out, c)
	}
	return out, nil
}

func isHeader(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	_, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
	return err != nil
}

func parseRow(rec []string) (market.Candle, error) {
	ms, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("open_time %q: %w", rec[0], err)
	}

	var px [4]float64
	for i := range px {
		s := strings.TrimSpace(rec[i+1])
		if s == "" {
			return market.Candle{}, fmt.Errorf("%s is blank", Header[i+1])
		}
		if px[i], err = strconv.ParseFloat(s, 64); err != nil {
			return market.Candle{}, fmt.Errorf("%s %q: %w", Header[i+1], s, err)
		}
	}

	var vol float64
	if len(rec) > 5 {
		vol, _ = strconv.ParseFloat(strings.TrimSpace(rec[5]), 64)
	}

	return market.Candle{
		Open:   px[0],
		High:   px[1],
		Low:    px[2],
		Close:  px[3],
		Volume: vol,
		Time:   openTime(ms),
	}, nil
}

// openTime accepts millisecond and microsecond epochs; newer Binance dumps
// switched to microseconds.
func openTime(v int64) time.Time {
	if v > 1e15 {
		return time.UnixMicro(v).UTC()
	}
	return time.UnixMilli(v).UTC()
}

// WriteCSV writes candles in the Binance kline layout with a header row.
func WriteCSV(w io.Writer, candles []market.Candle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, c := range candles {
		open := c.Time.UnixMilli()
		err := cw.Write([]string{
			strconv.FormatInt(open, 10),
			ff(c.Open),
			ff(c.High),
			ff(c.Low),
			ff(c.Close),
			ff(c.Volume),
			strconv.FormatInt(open+time.Minute.Milliseconds()-1, 10),
			"0", "0", "0", "0", "0",
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ff(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
