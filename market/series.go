package market

import (
	"fmt"
	"time"
)

// Series holds one instrument's minute bars for a day, in time order.
type Series struct {
	Instrument string
	Candles    []Candle

	index map[int64]int
}

// NewSeries builds a Series, assigning Candle.Index and checking that bars are
// valid and strictly increasing in time.
func NewSeries(instrument string, candles []Candle) (*Series, error) {
	s := &Series{
		Instrument: instrument,
		Candles:    make([]Candle, len(candles)),
		index:      make(map[int64]int, len(candles)),
	}

	var prev time.Time
	for i, c := range candles {
		c.Instrument = instrument
		c.Index = i
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if i > 0 && !c.Time.After(prev) {
			return nil, fmt.Errorf("%s: candle %d at %s is not after %s",
				instrument, i, c.Time.Format(time.RFC3339), prev.Format(time.RFC3339))
		}
		prev = c.Time
		s.Candles[i] = c
		s.index[c.Time.UnixMilli()] = i
	}
	return s, nil
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Candles)
}

func (s *Series) At(i int) Candle { return s.Candles[i] }

// IndexAt returns the index of the candle opened exactly at t.
func (s *Series) IndexAt(t time.Time) (int, bool) {
	if s == nil {
		return 0, false
	}
	i, ok := s.index[t.UnixMilli()]
	return i, ok
}

// Last returns the final candle of the series.
func (s *Series) Last() (Candle, bool) {
	if s.Len() == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}

// MissingMinutes counts the one-minute slots between the first and last bar
// that have no candle.
func (s *Series) MissingMinutes() int {
	if s.Len() < 2 {
		return 0
	}
	first := s.Candles[0].Time
	last := s.Candles[len(s.Candles)-1].Time
	span := int(last.Sub(first)/time.Minute) + 1
	return span - len(s.Candles)
}

// Validate re-checks a series that may not have been built by NewSeries.
func (s *Series) Validate() error {
	if s == nil {
		return fmt.Errorf("nil series")
	}
	if len(s.index) != len(s.Candles) {
		return fmt.Errorf("%s: series index not built", s.Instrument)
	}
	for i, c := range s.Candles {
		if err := c.Validate(); err != nil {
			return err
		}
		if c.Index != i {
			return fmt.Errorf("%s: candle %d carries index %d", s.Instrument, i, c.Index)
		}
	}
	return nil
}
