package csv

import (
	"bufio"
	"encoding/csv"
	"log/slog"
	"os"
	"strconv"

	"github.com/mayeranalytics/go-bi5/api/tickdata"
)

var csvHeader = []string{"time", "ask", "bid", "ask_size", "bid_size"}

// Dump writes a tick stream to one CSV file. Ticks are handed to a worker
// goroutine so the producer is not blocked on disk flushes.
type Dump struct {
	path      string
	header    bool
	tickCount int64
	err       error
	chClose   chan struct{}
	chTicks   chan tickdata.TimestampedTick
}

// New starts a CSV dump into path.
func New(path string, header bool) *Dump {
	d := &Dump{
		path:    path,
		header:  header,
		chClose: make(chan struct{}, 1),
		chTicks: make(chan tickdata.TimestampedTick, 1024),
	}

	go d.worker()

	return d
}

// Write queues one tick.
func (d *Dump) Write(t tickdata.TimestampedTick) {
	d.chTicks <- t
	d.tickCount++
}

// Finish completes the file and returns the first write error, if any.
func (d *Dump) Finish() error {
	close(d.chTicks)
	<-d.chClose
	return d.err
}

// worker goroutine which flushes ticks to disk.
func (d *Dump) worker() {
	f, err := os.OpenFile(d.path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0o666)
	if err != nil {
		d.err = err
		// Drain so Write never blocks forever.
		for range d.chTicks {
		}
		close(d.chClose)
		return
	}

	defer func() {
		_ = f.Close()
		close(d.chClose)
		slog.Info("saved ticks", "count", d.tickCount, "path", d.path)
	}()

	csvw := csv.NewWriter(bufio.NewWriter(f))
	defer csvw.Flush()

	if d.header {
		_ = csvw.Write(csvHeader)
	}

	for tick := range d.chTicks {
		if werr := csvw.Write(toRow(tick)); werr != nil && d.err == nil {
			d.err = werr
			slog.Error("write csv failed", slog.Any("error", werr), slog.String("path", d.path))
		}
	}
}

func toRow(t tickdata.TimestampedTick) []string {
	return []string{
		t.UTC().Format("2006-01-02 15:04:05.000"),
		strconv.FormatUint(uint64(t.Tick.Ask), 10),
		strconv.FormatUint(uint64(t.Tick.Bid), 10),
		strconv.FormatFloat(float64(t.Tick.AskSize), 'g', -1, 32),
		strconv.FormatFloat(float64(t.Tick.BidSize), 'g', -1, 32),
	}
}
