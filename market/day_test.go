package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSeries(t *testing.T, name string, candles ...Candle) *Series {
	t.Helper()
	s, err := NewSeries(name, candles)
	require.NoError(t, err)
	return s
}

func TestDayTimelineMergesAndDedups(t *testing.T) {
	t.Parallel()

	d := NewDay(t0)
	d.Add(mustSeries(t, "BTCUSDT", bar(0, 1, 1, 1, 1), bar(2, 1, 1, 1, 1)))
	d.Add(mustSeries(t, "ETHUSDT", bar(1, 1, 1, 1, 1), bar(2, 1, 1, 1, 1), bar(4, 1, 1, 1, 1)))
	d.Add(mustSeries(t, "BNBUSDT"))

	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, d.Instruments)
	assert.Equal(t, 5, d.Bars())

	tl := d.Timeline()
	want := []time.Time{
		t0,
		t0.Add(time.Minute),
		t0.Add(2 * time.Minute),
		t0.Add(4 * time.Minute),
	}
	assert.Equal(t, want, tl)
}

func TestDaySnapshot(t *testing.T) {
	t.Parallel()

	d := NewDay(t0)
	d.Add(mustSeries(t, "BTCUSDT", bar(0, 1, 1, 1, 1), bar(2, 2, 2, 2, 2)))
	d.Add(mustSeries(t, "ETHUSDT", bar(1, 3, 3, 3, 3), bar(2, 4, 4, 4, 4)))

	snap := d.Snapshot(t0.Add(2 * time.Minute))
	require.Len(t, snap, 2)
	assert.Equal(t, "BTCUSDT", snap[0].Instrument)
	assert.Equal(t, 1, snap[0].Index)
	assert.Equal(t, "ETHUSDT", snap[1].Instrument)
	assert.Equal(t, 1, snap[1].Index)

	snap = d.Snapshot(t0.Add(time.Minute))
	require.Len(t, snap, 1)
	assert.Equal(t, "ETHUSDT", snap[0].Instrument)
}

func TestEmptyDay(t *testing.T) {
	t.Parallel()

	var d *Day
	assert.True(t, d.Empty())
	assert.Nil(t, d.Timeline())
	assert.True(t, NewDay(t0).Empty())
}

func TestDates(t *testing.T) {
	t.Parallel()

	from, err := ParseDate("2025-12-30")
	require.NoError(t, err)
	to, err := ParseDate("2026-01-02")
	require.NoError(t, err)

	ds := Dates(from, to)
	require.Len(t, ds, 4)
	assert.Equal(t, "2025-12-30", ds[0].Format(DateLayout))
	assert.Equal(t, "2026-01-02", ds[3].Format(DateLayout))

	assert.Empty(t, Dates(to, from))

	_, err = ParseDate("12/01/2025")
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	meta, ok := Lookup("btcusdt")
	assert.True(t, ok)
	assert.Equal(t, "btc", meta.DataDir)

	meta, ok = Lookup("SOLUSDT")
	assert.True(t, ok)
	assert.Equal(t, "SOL", meta.BaseCurrency)
	assert.Equal(t, "sol", meta.DataDir)

	_, ok = Lookup("EUR_USD")
	assert.False(t, ok)
}
