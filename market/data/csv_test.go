package data

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tpsl/market"
)

var day0 = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

func TestReadCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{
			name: "with header",
			in: "open_time,open,high,low,close,volume,close_time\n" +
				"1764547200000,100,101,99,100.5,12,1764547259999\n" +
				"1764547260000,100.5,102,100,101,3,1764547319999\n",
			want: 2,
		},
		{
			name: "no header",
			in:   "1764547200000,100,101,99,100.5,12,1764547259999\n",
			want: 1,
		},
		{
			name: "microsecond epoch",
			in:   "1764547200000000,100,101,99,100.5,12,1764547259999999\n",
			want: 1,
		},
		{
			name:    "blank close",
			in:      "1764547200000,100,101,99,,12,1764547259999\n",
			wantErr: true,
		},
		{
			name:    "junk high",
			in:      "1764547200000,100,abc,99,100,12,1764547259999\n",
			wantErr: true,
		},
		{
			name:    "short row",
			in:      "1764547200000,100,101\n",
			wantErr: true,
		},
		{
			name: "empty",
			in:   "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ReadCSV(strings.NewReader(tt.in), "BTCUSDT")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, tt.want)
			if tt.want > 0 {
				assert.Equal(t, day0, got[0].Time)
				assert.Equal(t, "BTCUSDT", got[0].Instrument)
				assert.Equal(t, 101.0, got[0].High)
				assert.Equal(t, 100.5, got[0].Close)
			}
		})
	}
}

func TestWriteCSVReadBack(t *testing.T) {
	t.Parallel()

	in := []market.Candle{
		{Open: 100, High: 101.25, Low: 99.5, Close: 100.75, Volume: 3.5, Time: day0},
		{Open: 100.75, High: 102, Low: 100, Close: 101, Volume: 1, Time: day0.Add(time.Minute)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, in))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(Header, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1764547200000,100,101.25,99.5,100.75,3.5,1764547259999,"))

	out, err := ReadCSV(&buf, "ETHUSDT")
	require.NoError(t, err)
	require.Len(t, out, 2)
	for i := range in {
		assert.Equal(t, in[i].Time, out[i].Time)
		assert.Equal(t, in[i].Close, out[i].Close)
		assert.Equal(t, in[i].Volume, out[i].Volume)
	}
}
