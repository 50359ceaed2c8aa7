package market

import (
	"slices"
	"time"
)

// Day is the set of series available for one calendar day. Instruments with
// no data are absent; series do not have to share a timeline.
type Day struct {
	Date        time.Time
	Instruments []string
	Series      map[string]*Series
}

func NewDay(date time.Time) *Day {
	return &Day{
		Date:   date,
		Series: make(map[string]*Series),
	}
}

// Add registers a series. Empty series are ignored so callers can pass
// whatever the loader returned.
func (d *Day) Add(s *Series) {
	if s.Len() == 0 {
		return
	}
	if _, ok := d.Series[s.Instrument]; !ok {
		d.Instruments = append(d.Instruments, s.Instrument)
	}
	d.Series[s.Instrument] = s
}

func (d *Day) Empty() bool {
	return d == nil || len(d.Series) == 0
}

// Timeline merges every series' timestamps into one sorted list without
// duplicates.
func (d *Day) Timeline() []time.Time {
	if d.Empty() {
		return nil
	}
	seen := make(map[int64]struct{})
	var ms []int64
	for _, name := range d.Instruments {
		for _, c := range d.Series[name].Candles {
			k := c.Time.UnixMilli()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			ms = append(ms, k)
		}
	}
	slices.Sort(ms)

	out := make([]time.Time, len(ms))
	for i, k := range ms {
		out[i] = time.UnixMilli(k).UTC()
	}
	return out
}

// Snapshot returns the candles that opened exactly at t, in instrument order.
func (d *Day) Snapshot(t time.Time) []Candle {
	var out []Candle
	for _, name := range d.Instruments {
		s := d.Series[name]
		if i, ok := s.IndexAt(t); ok {
			out = append(out, s.At(i))
		}
	}
	return out
}

// Bars returns the total number of candles across all series.
func (d *Day) Bars() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, s := range d.Series {
		n += s.Len()
	}
	return n
}
