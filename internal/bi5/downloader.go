package bi5

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/mayeranalytics/go-bi5/internal/misc"
)

// DefaultDatafeedURL is the Dukascopy tick datafeed root.
const DefaultDatafeedURL = "https://datafeed.dukascopy.com/datafeed"

const retryCount = 5

// FilePath returns the local path of one datafeed hour below folder. The
// layout mirrors the datafeed exactly, month directory zero based, so
// downloaded trees carry their period start in the path.
func FilePath(folder, symbol string, t time.Time) string {
	t = misc.ToHourUTC(t)
	return filepath.Join(
		folder,
		symbol,
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%02d", int(t.Month())-1),
		fmt.Sprintf("%02d", t.Day()),
		fmt.Sprintf("%02dh_ticks.bi5", t.Hour()),
	)
}

// Downloader mirrors datafeed hours into a local tree.
type Downloader struct {
	folder  string
	baseURL string
	client  *resty.Client
}

func NewDownloader(folder string) *Downloader {
	client := resty.New().
		SetTimeout(5 * time.Minute).
		SetRetryCount(retryCount).
		SetRetryWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			code := r.StatusCode()
			return code != http.StatusOK && code != http.StatusNotFound
		})

	return &Downloader{
		folder:  folder,
		baseURL: DefaultDatafeedURL,
		client:  client,
	}
}

// WithBaseURL overrides the datafeed root, mainly for tests.
func (d *Downloader) WithBaseURL(baseURL string) *Downloader {
	d.baseURL = baseURL
	return d
}

// Download fetches the hour of t for symbol, unless a previous attempt left
// a file or one of the `.empty`/`.notFound` markers behind. A missing hour
// (404) records a `.notFound` marker, an empty body is renamed to `.empty`;
// either way the hour is not retried on the next run.
func (d Downloader) Download(symbol string, t time.Time) error {
	dayHour := misc.ToHourUTC(t)
	target := FilePath(d.folder, symbol, dayHour)
	if d.isDownloaded(target) {
		return nil
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create folder ["+dir+"]")
	}

	year, month, day := dayHour.Date()
	link := fmt.Sprintf("%s/%s/%04d/%02d/%02d/%02dh_ticks.bi5",
		d.baseURL, symbol, year, int(month)-1, day, dayHour.Hour())

	slog.Debug("downloading tick data", "url", link, "target", target)
	resp, err := d.client.R().SetOutput(target).Get(link)
	if err != nil {
		return errors.Wrap(err, "download ["+d.symbolAndTime(symbol, dayHour)+"]")
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		fi, serr := os.Stat(target)
		if serr != nil {
			return errors.Wrap(serr, "stat ["+target+"]")
		}
		if fi.Size() == 0 {
			if rerr := os.Rename(target, target+".empty"); rerr != nil {
				return errors.Wrap(rerr, "mark tick data ["+d.symbolAndTime(symbol, dayHour)+"] empty")
			}
		}
		return nil

	case http.StatusNotFound:
		_ = os.Remove(target)
		if cerr := d.createFile(target + ".notFound"); cerr != nil {
			return errors.Wrap(cerr, "mark tick data ["+d.symbolAndTime(symbol, dayHour)+"] not found")
		}
		return nil

	default:
		_ = os.Remove(target)
		return errors.Errorf("download [%s] failed: %s", d.symbolAndTime(symbol, dayHour), resp.Status())
	}
}

func (d Downloader) isDownloaded(target string) bool {
	return misc.IsFileExists(target) ||
		misc.IsFileExists(target+".empty") ||
		misc.IsFileExists(target+".notFound")
}

func (d Downloader) symbolAndTime(symbol string, dayHour time.Time) string {
	return symbol + ": " + dayHour.Format("2006-01-02:15H")
}

func (d Downloader) createFile(path string) error {
	f, err := os.Create(path)
	if err == nil {
		defer f.Close()
	}
	return err
}
