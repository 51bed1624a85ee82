// Package stream walks bi5 tick data in file-period order, for a single
// file or a whole directory tree laid out as YEAR/MONTH/DAY/HHh_ticks.bi5.
package stream

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mayeranalytics/go-bi5/api/tickdata"
	"github.com/mayeranalytics/go-bi5/internal/bi5"
	"github.com/mayeranalytics/go-bi5/internal/pathtime"
	"github.com/pkg/errors"
)

// ErrorPolicy controls what a directory traversal does when opening the
// next file fails mid-stream. Errors at Iter time are always returned to
// the caller, whatever the policy.
type ErrorPolicy int

const (
	// StopOnError ends the traversal early, treating the failed file as
	// the end of the data.
	StopOnError ErrorPolicy = iota
	// SkipOnError passes over the failed file and continues with the next.
	SkipOnError
	// PropagateError surfaces the failure from Next.
	PropagateError
)

// Stream represents a bi5 file or a directory tree of bi5 files. It holds
// only the path and base time; nothing is read until Iter.
type Stream struct {
	path     string
	baseTime time.Time
	policy   ErrorPolicy
}

// New creates a Stream for path. baseTime tags every tick of a single-file
// stream; pass the zero time when unknown. For a directory it is ignored,
// each file's period start being inferred from its path.
func New(path string, baseTime time.Time) *Stream {
	return &Stream{path: path, baseTime: baseTime}
}

// WithErrorPolicy sets the mid-stream failure behaviour. Default is
// StopOnError.
func (s *Stream) WithErrorPolicy(p ErrorPolicy) *Stream {
	s.policy = p
	return s
}

// IsFile reports whether the stream's path is a regular file.
func (s Stream) IsFile() bool {
	fi, err := os.Stat(s.path)
	return err == nil && fi.Mode().IsRegular()
}

type fileEntry struct {
	path string
	time time.Time
}

// Iterator yields ticks in file-period order. It is a single-pass cursor:
// once exhausted it stays exhausted, and re-iteration needs a fresh Iter
// call. At most one file's decompressed payload is held at a time.
type Iterator struct {
	policy  ErrorPolicy
	pending []fileEntry // qualifying files not yet opened, ordered by time

	buf      []byte // payload of the active file
	off      int
	baseTime time.Time

	curr     *tickdata.Tick
	currTime time.Time
	done     bool
}

// Iter begins iteration. A single file is decompressed eagerly, so a
// corrupt or truncated file fails here rather than mid-stream. A directory
// is walked once, collecting regular files with a path-resolvable period
// start; everything else is silently skipped. The first qualifying file is
// opened eagerly as well, and its failure is returned here.
func (s Stream) Iter() (*Iterator, error) {
	fi, err := os.Stat(s.path)
	if err != nil {
		return nil, errors.Wrap(err, "stat ["+s.path+"]")
	}

	it := &Iterator{policy: s.policy}
	switch {
	case fi.Mode().IsRegular():
		buf, err := bi5.DecompressFile(s.path)
		if err != nil {
			return nil, err
		}
		it.buf = buf
		it.baseTime = s.baseTime

	case fi.IsDir():
		entries, err := collect(s.path)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			it.done = true
			return it, nil
		}
		it.pending = entries
		if err = it.openNext(); err != nil {
			return nil, err
		}

	default:
		return nil, errors.Errorf("[%s] must be a file or directory", s.path)
	}
	return it, nil
}

// Ticks drains a fresh iterator into memory. Mostly a convenience for small
// sources and tests; large trees should pull from Iter instead.
func (s Stream) Ticks() ([]tickdata.TimestampedTick, error) {
	it, err := s.Iter()
	if err != nil {
		return nil, err
	}

	var ticks []tickdata.TimestampedTick
	err = it.EachTick(func(t time.Time, tick *tickdata.Tick) bool {
		ticks = append(ticks, tickdata.TimestampedTick{Time: t, Tick: *tick})
		return true
	})
	return ticks, err
}

// collect walks root depth-first and returns the qualifying entries sorted
// by period start. Ties sort by path so traversal order is deterministic.
func collect(root string) ([]fileEntry, error) {
	var entries []fileEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if t, ok := pathtime.Resolve(path); ok {
			entries = append(entries, fileEntry{path: path, time: t})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walk ["+root+"]")
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].time.Equal(entries[j].time) {
			return entries[i].path < entries[j].path
		}
		return entries[i].time.Before(entries[j].time)
	})
	return entries, nil
}

// openNext replaces the active frame with the next pending file. The
// previous payload is released either way.
func (it *Iterator) openNext() error {
	next := it.pending[0]
	it.pending = it.pending[1:]
	it.buf = nil
	it.off = 0

	buf, err := bi5.DecompressFile(next.path)
	if err != nil {
		return err
	}
	it.buf = buf
	it.baseTime = next.time
	return nil
}

// Next advances to the next tick, available through Current and Time when
// it returns true. Once false the iterator is permanently exhausted; err is
// non-nil only under PropagateError.
func (it *Iterator) Next() (bool, error) {
	if it.done {
		return false, nil
	}

	for {
		if it.off+bi5.TickBytes <= len(it.buf) {
			tick, err := bi5.DecodeTick(it.buf[it.off:])
			if err != nil {
				it.complete()
				return false, err
			}
			it.off += bi5.TickBytes
			it.curr = &tick
			it.currTime = it.baseTime
			return true, nil
		}

		// Active frame exhausted; chain to the next file.
		if len(it.pending) == 0 {
			it.complete()
			return false, nil
		}
		if err := it.openNext(); err != nil {
			switch it.policy {
			case SkipOnError:
				continue
			case PropagateError:
				it.complete()
				return false, err
			default:
				it.complete()
				return false, nil
			}
		}
	}
}

// Current returns the tick produced by the last successful Next.
func (it *Iterator) Current() *tickdata.Tick {
	return it.curr
}

// Time returns the period start of the file owning the current tick.
func (it *Iterator) Time() time.Time {
	return it.currTime
}

// IsCompleted reports whether the iterator is exhausted.
func (it *Iterator) IsCompleted() bool {
	return it.done
}

// EachTick pulls the remaining ticks, calling fn with each tick and its
// file's period start until fn returns false or the stream ends. The
// returned error is the traversal failure under PropagateError, nil
// otherwise.
func (it *Iterator) EachTick(fn func(t time.Time, tick *tickdata.Tick) bool) error {
	for {
		ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if !fn(it.currTime, it.curr) {
			return nil
		}
	}
}

func (it *Iterator) complete() {
	it.done = true
	it.buf = nil
	it.pending = nil
	it.curr = nil
}
