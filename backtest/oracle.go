package backtest

import (
	"github.com/rustyeddy/tpsl/market"
	"github.com/rustyeddy/tpsl/sim"
)

// DefaultLookahead is the number of future bars the Oracle inspects.
const DefaultLookahead = 200

// Oracle picks an entry direction by looking at bars that come after the
// decision point. It answers "would a long or a short opened at this close
// have reached its take-profit before its stop-loss?".
//
// This is look-ahead labelling for comparing parameter sets on history. It
// uses information that does not exist at decision time and must never be
// used as a live trading signal.
type Oracle struct {
	Lookahead int
}

// hits records the first window offset at which each level was reached, or
// -1 if it was not reached.
type hits struct {
	tp, sl int
}

// favorable reports whether take-profit comes strictly before stop-loss.
func (h hits) favorable() bool {
	return h.tp >= 0 && (h.sl < 0 || h.tp < h.sl)
}

// Decide returns the favorable direction for an entry at series bar idx, or
// false when neither direction reaches take-profit first inside the window.
// When both do, the one whose take-profit is reached earlier wins; on an equal
// offset the short side is returned.
func (o Oracle) Decide(s *market.Series, idx int, pct float64) (sim.Side, bool) {
	n := s.Len()
	if idx < 0 || idx >= n-1 {
		return 0, false
	}

	window := o.Lookahead
	if window <= 0 {
		window = DefaultLookahead
	}
	window = min(window, n-idx-1)

	price := s.At(idx).Close
	longTP, longSL := sim.Levels(sim.Long, price, pct)
	shortTP, shortSL := sim.Levels(sim.Short, price, pct)

	long := hits{tp: -1, sl: -1}
	short := hits{tp: -1, sl: -1}

	for k := 0; k < window; k++ {
		c := s.At(idx + 1 + k)

		if long.tp < 0 && c.High >= longTP {
			long.tp = k
		}
		if long.sl < 0 && c.Low <= longSL {
			long.sl = k
		}
		if short.tp < 0 && c.Low <= shortTP {
			short.tp = k
		}
		if short.sl < 0 && c.High >= shortSL {
			short.sl = k
		}

		if long.tp >= 0 && long.sl >= 0 && short.tp >= 0 && short.sl >= 0 {
			break
		}
	}

	longOK := long.favorable()
	shortOK := short.favorable()

	switch {
	case longOK && shortOK:
		if long.tp < short.tp {
			return sim.Long, true
		}
		return sim.Short, true
	case longOK:
		return sim.Long, true
	case shortOK:
		return sim.Short, true
	}
	return 0, false
}
