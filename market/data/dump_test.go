package data

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"https://data.binance.vision/data/futures/um/daily/klines/BTCUSDT/1m/BTCUSDT-1m-2025-12-01.zip",
		DumpURL(DumpBaseURL, "btcusdt", day0))
}

func TestDownloaderDownload(t *testing.T) {
	t.Parallel()

	archive := filepath.Join(t.TempDir(), "BTCUSDT-1m-2025-12-01.zip")
	writeZip(t, archive, sampleCandles(100, 4))
	body, err := os.ReadFile(archive)
	require.NoError(t, err)
	sum := sha256.Sum256(body)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/BTCUSDT-1m-2025-12-01.zip"):
			_, _ = w.Write(body)
		case strings.HasSuffix(r.URL.Path, "/BTCUSDT-1m-2025-12-01.zip.CHECKSUM"):
			fmt.Fprintf(w, "%s  BTCUSDT-1m-2025-12-01.zip\n", hex.EncodeToString(sum[:]))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	dir := NewDir(t.TempDir(), []string{"BTCUSDT", "ETHUSDT"}, nil)
	d := NewDownloader(dir, nil)
	d.BaseURL = srv.URL
	d.Sleep = 0

	stats := d.Download(context.Background(), day0, day0)
	assert.Equal(t, DumpStats{OK: 1, Missing: 1}, stats)

	day, err := dir.LoadDay(context.Background(), day0)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTCUSDT"}, day.Instruments)
	assert.Equal(t, 4, day.Series["BTCUSDT"].Len())

	// present archives are not fetched again
	stats = d.Download(context.Background(), day0, day0)
	assert.Equal(t, 1, stats.OK)
}

func TestDownloaderChecksumMismatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".CHECKSUM") {
			fmt.Fprintln(w, "deadbeef  x.zip")
			return
		}
		_, _ = w.Write([]byte("not really a zip"))
	}))
	t.Cleanup(srv.Close)

	dir := NewDir(t.TempDir(), []string{"BTCUSDT"}, nil)
	d := NewDownloader(dir, nil)
	d.BaseURL = srv.URL
	d.Sleep = 0

	stats := d.Download(context.Background(), day0, day0)
	assert.Equal(t, 1, stats.Failed)
	assert.NoFileExists(t, dir.Path("BTCUSDT", day0, ".zip"))
}
