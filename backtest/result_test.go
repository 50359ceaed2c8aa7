package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tpsl/sim"
)

func TestNewDayRecord(t *testing.T) {
	t.Parallel()

	exit := day0.Add(3 * time.Minute)
	r := DayResult{
		Date:           day0,
		InitialBalance: 10_000,
		FinalBalance:   12_000,
		Params:         &Params{Percent: 3, Leverage: 20, Allocation: 0.95},
		Trades: []sim.ClosedTrade{{
			ID:           "01ABC",
			Instrument:   "BNBUSDT",
			Side:         sim.Short,
			EntryPrice:   600,
			ExitPrice:    582,
			Size:         9500,
			Leverage:     20,
			PnL:          5700,
			EntryTime:    day0,
			ExitTime:     exit,
			BalanceAfter: 15_700,
			Reason:       sim.ReasonTakeProfit,
		}},
		Tested: 7,
	}

	d := NewDayRecord(r, DefaultPolicy())
	assert.Equal(t, "2025-12-01", d.Date)
	assert.InDelta(t, 20, d.TotalReturnPct, 1e-9)
	require.True(t, d.HasParams())
	assert.Equal(t, 3.0, *d.TPSLPercent)
	assert.Equal(t, 20, *d.Leverage)
	assert.Equal(t, 0.95, d.PositionAllocation)
	assert.Equal(t, 1, d.NumTrades)
	assert.Equal(t, 7, d.Tests)

	tr := d.Trades[0]
	assert.Equal(t, "SHORT", tr.Type)
	assert.Equal(t, "BNBUSDT", tr.Symbol)
	assert.Equal(t, "TakeProfit", tr.Reason)
	assert.Equal(t, day0.UnixMilli(), tr.EntryTime)
	assert.Equal(t, exit, tr.CloseTime())
}

func TestNewDayRecordNoParams(t *testing.T) {
	t.Parallel()

	d := NewDayRecord(DayResult{Date: day0, InitialBalance: 10_000, FinalBalance: 10_000}, DefaultPolicy())
	assert.False(t, d.HasParams())
	assert.Nil(t, d.TPSLPercent)
	assert.Equal(t, 0.9, d.PositionAllocation)
	assert.NotNil(t, d.Trades)
	assert.Zero(t, d.TotalReturnPct)
}
