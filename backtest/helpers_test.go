package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tpsl/market"
)

var day0 = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

// hlc is one bar's high, low and close; open is taken as the close.
type hlc struct{ h, l, c float64 }

func mkSeries(t *testing.T, inst string, bars ...hlc) *market.Series {
	t.Helper()
	candles := make([]market.Candle, len(bars))
	for i, b := range bars {
		candles[i] = market.Candle{
			Open:  b.c,
			High:  b.h,
			Low:   b.l,
			Close: b.c,
			Time:  day0.Add(time.Duration(i) * time.Minute),
		}
	}
	s, err := market.NewSeries(inst, candles)
	require.NoError(t, err)
	return s
}

func mkDay(series ...*market.Series) *market.Day {
	d := market.NewDay(day0)
	for _, s := range series {
		d.Add(s)
	}
	return d
}

func flat(p float64) hlc { return hlc{p, p, p} }
