package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/tpsl/sim"
)

func TestOracleDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		bars      []hlc
		idx       int
		lookahead int
		wantSide  sim.Side
		wantOK    bool
	}{
		{
			name:     "long take-profit first",
			bars:     []hlc{flat(100), {102.5, 99.5, 102}},
			wantSide: sim.Long,
			wantOK:   true,
		},
		{
			name:     "short take-profit first",
			bars:     []hlc{flat(100), {100.5, 97.5, 98}},
			wantSide: sim.Short,
			wantOK:   true,
		},
		{
			name: "both levels in one bar favors neither",
			bars: []hlc{flat(100), {103, 97, 100}},
		},
		{
			name:     "long stopped before its take-profit",
			bars:     []hlc{flat(100), {100.5, 97.9, 98.5}, {102.5, 99, 102}},
			wantSide: sim.Short,
			wantOK:   true,
		},
		{
			name: "nothing reached",
			bars: []hlc{flat(100), flat(100.5), flat(99.5)},
		},
		{
			name: "last bar has no future",
			bars: []hlc{flat(100), flat(100)},
			idx:  1,
		},
		{
			name: "out of range",
			bars: []hlc{flat(100), flat(100)},
			idx:  -1,
		},
		{
			name:      "outside the window",
			bars:      []hlc{flat(100), flat(100), flat(100), {102.5, 100, 102}},
			lookahead: 2,
		},
		{
			name:      "inside the window",
			bars:      []hlc{flat(100), flat(100), {102.5, 100, 102}},
			lookahead: 2,
			wantSide:  sim.Long,
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := mkSeries(t, "BTCUSDT", tt.bars...)
			side, ok := Oracle{Lookahead: tt.lookahead}.Decide(s, tt.idx, 2)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantSide, side)
		})
	}
}

func TestOracleDeterministic(t *testing.T) {
	t.Parallel()

	s := mkSeries(t, "ETHUSDT", flat(50), hlc{50.2, 49, 49.5}, hlc{51.5, 49.5, 51})
	o := Oracle{}
	first, ok1 := o.Decide(s, 0, 2)
	second, ok2 := o.Decide(s, 0, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, ok1, ok2)
}
