package data

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tpsl/market"
)

// DumpBaseURL serves daily USDⓈ-M futures kline archives.
const DumpBaseURL = "https://data.binance.vision/data/futures/um/daily/klines"

type job struct {
	url string
	dst string
}

// DumpStats counts the outcome of a download run.
type DumpStats struct {
	OK      int
	Missing int
	Failed  int
}

// Downloader pulls the public daily archives into a Dir as .zip files, which
// Dir extracts on first read.
type Downloader struct {
	BaseURL string
	Dir     *Dir
	Client  *http.Client
	Workers int

	// Sleep is a polite delay before each request.
	Sleep time.Duration
	// Verify checks each archive against its published .CHECKSUM file.
	Verify bool
	Logger *zap.Logger
}

func NewDownloader(dir *Dir, log *zap.Logger) *Downloader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Downloader{
		BaseURL: DumpBaseURL,
		Dir:     dir,
		Client:  &http.Client{Timeout: 45 * time.Second},
		Workers: 4,
		Sleep:   50 * time.Millisecond,
		Verify:  true,
		Logger:  log,
	}
}

// DumpURL is the archive URL for one instrument and day.
func DumpURL(base, symbol string, date time.Time) string {
	symbol = strings.ToUpper(symbol)
	return fmt.Sprintf("%s/%s/1m/%s.zip", strings.TrimRight(base, "/"), symbol, FileName(symbol, date))
}

// Download fetches every instrument for every day in [from, to]. Archives
// already on disk are kept. A missing archive is counted, not failed.
func (d *Downloader) Download(ctx context.Context, from, to time.Time) DumpStats {
	var jobs []job
	for _, date := range market.Dates(from, to) {
		for _, inst := range d.Dir.Instruments {
			jobs = append(jobs, job{
				url: DumpURL(d.BaseURL, inst, date),
				dst: d.Dir.Path(inst, date, ".zip"),
			})
		}
	}

	jobCh := make(chan job)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var stats DumpStats

	count := func(n *int) {
		mu.Lock()
		*n++
		mu.Unlock()
	}

	for i := 0; i < max(1, d.Workers); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				if d.Sleep > 0 {
					time.Sleep(d.Sleep)
				}

				downloaded, status, err := d.downloadIfMissing(ctx, j.url, j.dst)
				if err != nil {
					count(&stats.Failed)
					d.log().Warn("download failed", zap.String("url", j.url), zap.Error(err))
					continue
				}
				if status == http.StatusNotFound {
					count(&stats.Missing)
					d.log().Info("not published", zap.String("url", j.url))
					continue
				}

				if d.Verify && downloaded {
					if err := d.verify(ctx, j.url, j.dst); err != nil {
						_ = os.Remove(j.dst)
						count(&stats.Failed)
						d.log().Warn("checksum", zap.String("url", j.url), zap.Error(err))
						continue
					}
				}
				count(&stats.OK)
				d.log().Debug("have archive", zap.String("path", j.dst), zap.Bool("downloaded", downloaded))
			}
		}()
	}

	for _, j := range jobs {
		select {
		case jobCh <- j:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobCh)
	wg.Wait()

	return stats
}

func (d *Downloader) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "tpsl-downloader/1.0")
	return d.Client.Do(req)
}

func (d *Downloader) downloadIfMissing(ctx context.Context, url, dst string) (downloaded bool, status int, err error) {
	if st, err := os.Stat(dst); err == nil && st.Size() > 0 {
		return false, http.StatusOK, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, 0, err
	}

	resp, err := d.get(ctx, url)
	if err != nil {
		return false, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, http.StatusNotFound, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, resp.StatusCode, fmt.Errorf("http status %d", resp.StatusCode)
	}

	tmp := dst + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return false, resp.StatusCode, err
	}
	_, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(tmp)
		return false, resp.StatusCode, copyErr
	}
	if closeErr != nil {
		_ = os.Remove(tmp)
		return false, resp.StatusCode, closeErr
	}
	if err := os.Rename(tmp, dst); err != nil {
		return false, resp.StatusCode, err
	}
	return true, resp.StatusCode, nil
}

// verify compares the archive's sha256 with the "<hex>  <name>" line
// published next to it.
func (d *Downloader) verify(ctx context.Context, url, path string) error {
	resp, err := d.get(ctx, url+".CHECKSUM")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("checksum: http status %d", resp.StatusCode)
	}

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return fmt.Errorf("checksum: empty")
	}

	got, err := sha256File(path)
	if err != nil {
		return err
	}
	if !strings.EqualFold(fields[0], got) {
		return fmt.Errorf("checksum mismatch: want %s got %s", fields[0], got)
	}
	return nil
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (d *Downloader) log() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}
