// market/instruments.go
package market

import "strings"

type InstrumentMeta struct {
	Name          string
	BaseCurrency  string
	QuoteCurrency string

	// DataDir is the per-instrument directory under the bar data root.
	DataDir string
}

var Instruments = map[string]InstrumentMeta{
	"BTCUSDT": {
		Name:          "BTCUSDT",
		BaseCurrency:  "BTC",
		QuoteCurrency: "USDT",
		DataDir:       "btc",
	},
	"ETHUSDT": {
		Name:          "ETHUSDT",
		BaseCurrency:  "ETH",
		QuoteCurrency: "USDT",
		DataDir:       "eth",
	},
	"BNBUSDT": {
		Name:          "BNBUSDT",
		BaseCurrency:  "BNB",
		QuoteCurrency: "USDT",
		DataDir:       "bnb",
	},
}

// DefaultInstruments is the order instruments are visited within a minute.
var DefaultInstruments = []string{"BTCUSDT", "ETHUSDT", "BNBUSDT"}

// Lookup returns metadata for name. Unknown USDT pairs get a derived entry so
// new symbols can be simulated without touching this table.
func Lookup(name string) (InstrumentMeta, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if meta, ok := Instruments[name]; ok {
		return meta, true
	}
	base, ok := strings.CutSuffix(name, "USDT")
	if !ok || base == "" {
		return InstrumentMeta{}, false
	}
	return InstrumentMeta{
		Name:          name,
		BaseCurrency:  base,
		QuoteCurrency: "USDT",
		DataDir:       strings.ToLower(base),
	}, true
}
