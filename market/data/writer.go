package data

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/rustyeddy/tpsl/market"
)

// WriteFile writes candles to path, xz-compressing when the name ends in .xz.
// The file is written under a temporary name and renamed into place.
func WriteFile(path string, candles []market.Candle) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if strings.HasSuffix(path, ".xz") {
		err = writeXZ(f, candles)
	} else {
		err = WriteCSV(f, candles)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func writeXZ(f *os.File, candles []market.Candle) error {
	xw, err := xz.NewWriter(f)
	if err != nil {
		return fmt.Errorf("xz: %w", err)
	}
	if err := WriteCSV(xw, candles); err != nil {
		_ = xw.Close()
		return err
	}
	return xw.Close()
}
