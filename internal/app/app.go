package app

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/mayeranalytics/go-bi5/api/tickdata"
	"github.com/mayeranalytics/go-bi5/api/tickdata/stream"
	"github.com/mayeranalytics/go-bi5/internal/bi5"
	"github.com/mayeranalytics/go-bi5/internal/export/csv"
	"github.com/mayeranalytics/go-bi5/internal/misc"
)

const (
	dateTimeFormat = "2006-01-02T15:04:05"
	dateFormat     = "2006-01-02"
)

// ArgsList holds the raw command line values.
type ArgsList struct {
	Path     string
	Date     string
	Sep      string
	Csv      string
	Header   bool
	SkipBad  bool
	Download string
	Folder   string
	Start    string
	End      string
	Verbose  bool
}

// AppOption is the validated configuration.
type AppOption struct {
	Path     string
	BaseTime time.Time
	Sep      string
	CsvPath  string
	Header   bool
	Policy   stream.ErrorPolicy

	Download string
	Folder   string
	Start    time.Time
	End      time.Time
}

// ParseOption validates the command line values.
func ParseOption(args ArgsList) (*AppOption, error) {
	opt := AppOption{
		Sep:      args.Sep,
		CsvPath:  args.Csv,
		Header:   args.Header,
		Download: args.Download,
	}
	if args.SkipBad {
		opt.Policy = stream.SkipOnError
	}

	if args.Download != "" {
		var err error
		if opt.Folder = args.Folder; opt.Folder == "" {
			return nil, errors.New("download requires a destination folder")
		}
		if opt.Start, err = time.Parse(dateFormat, args.Start); err != nil {
			return nil, errors.Wrap(err, "invalid start parameter")
		}
		if opt.End, err = time.Parse(dateFormat, args.End); err != nil {
			return nil, errors.Wrap(err, "invalid end parameter")
		}
		if opt.End.Before(opt.Start) {
			return nil, errors.New("end parameter is before start")
		}
		return &opt, nil
	}

	if args.Path == "" {
		return nil, errors.New("missing file or directory argument")
	}
	opt.Path = args.Path

	if args.Date != "" {
		baseTime, err := time.Parse(dateTimeFormat, args.Date)
		if err != nil {
			return nil, errors.Wrap(err, "invalid date parameter")
		}
		opt.BaseTime = baseTime
	}

	return &opt, nil
}

// App dumps or downloads tick data.
type App struct {
	option AppOption
}

func NewApp(option *AppOption) *App {
	return &App{option: *option}
}

func (a App) Execute() error {
	if a.option.Download != "" {
		return a.download()
	}
	if a.option.CsvPath != "" {
		return a.dumpCsv()
	}
	return a.dumpText(os.Stdout)
}

// download mirrors every hour between Start and End (inclusive days) into
// the destination folder.
func (a App) download() error {
	d := bi5.NewDownloader(a.option.Folder)

	from := misc.ToHourUTC(a.option.Start)
	to := misc.ToHourUTC(a.option.End).Add(23 * time.Hour)
	var failed int
	for t := from; !t.After(to); t = t.Add(time.Hour) {
		if err := d.Download(a.option.Download, t); err != nil {
			failed++
			slog.Warn("download failed", "symbol", a.option.Download, "hour", t, "error", err)
		}
	}

	if failed != 0 {
		return errors.Errorf("%d of %d hours failed to download", failed, int(to.Sub(from).Hours())+1)
	}
	return nil
}

func (a App) iter() (*stream.Iterator, error) {
	s := stream.New(a.option.Path, a.option.BaseTime).
		WithErrorPolicy(a.option.Policy)
	return s.Iter()
}

// dumpText writes the sequence as separated columns, one tick per line.
// Ticks whose file has no period start are printed with the raw
// millisecond offset, everything else with the absolute time.
func (a App) dumpText(out io.Writer) error {
	it, err := a.iter()
	if err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	defer w.Flush()

	sep := a.option.Sep
	if a.option.Header {
		fmt.Fprintf(w, "t%sbid%sask%sbidsize%sasksize\n", sep, sep, sep, sep)
	}
	return it.EachTick(func(t time.Time, tick *tickdata.Tick) bool {
		tt := tickdata.TimestampedTick{Time: t, Tick: *tick}
		if t.IsZero() {
			fmt.Fprintf(w, "%d%s%d%s%d%s%v%s%v\n",
				tick.TimeMs, sep, tick.Bid, sep, tick.Ask, sep, tick.BidSize, sep, tick.AskSize)
		} else {
			fmt.Fprintf(w, "%s%s%d%s%d%s%v%s%v\n",
				tt.UTC().Format("2006-01-02 15:04:05.000"), sep, tick.Bid, sep, tick.Ask, sep, tick.BidSize, sep, tick.AskSize)
		}
		return true
	})
}

func (a App) dumpCsv() error {
	it, err := a.iter()
	if err != nil {
		return err
	}

	dump := csv.New(a.option.CsvPath, a.option.Header)
	iterErr := it.EachTick(func(t time.Time, tick *tickdata.Tick) bool {
		dump.Write(tickdata.TimestampedTick{Time: t, Tick: *tick})
		return true
	})
	if err = dump.Finish(); err != nil {
		return err
	}
	return iterErr
}
