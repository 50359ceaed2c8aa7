package market

import (
	"fmt"
	"math"
	"time"
)

// Candle is one OHLC minute bar for a single instrument.
type Candle struct {
	Instrument string
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64
	Time       time.Time

	// Index is the position of the candle within its Series.
	Index int
}

// Validate rejects bars the simulator cannot reason about.
func (c Candle) Validate() error {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("%s %s: bad price %v", c.Instrument, c.Time.Format(time.RFC3339), v)
		}
	}
	if c.High < c.Low {
		return fmt.Errorf("%s %s: high %v below low %v", c.Instrument, c.Time.Format(time.RFC3339), c.High, c.Low)
	}
	if c.Time.IsZero() {
		return fmt.Errorf("%s: candle %d has no time", c.Instrument, c.Index)
	}
	return nil
}
