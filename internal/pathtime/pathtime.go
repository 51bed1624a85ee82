// Package pathtime infers a bi5 file's period-start time from the datafeed
// directory convention.
package pathtime

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Resolve reads the trailing four path segments of a regular file as
// YEAR/MONTH/DAY/HHxxxx, where MONTH is zero based (the datafeed layout;
// stored 0 is January) and only the first two characters of the filename
// carry the hour. It returns false when the path is not a regular file, any
// segment fails to parse, or the combination is not a valid date and time.
// A false result is a normal outcome, not an error.
func Resolve(path string) (time.Time, bool) {
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return time.Time{}, false
	}

	name := filepath.Base(path)
	if len(name) < 2 {
		return time.Time{}, false
	}
	hour, ok := parseSegment(name[:2])
	if !ok || hour > 23 {
		return time.Time{}, false
	}

	rest := filepath.Dir(path)
	day, ok := parseSegment(filepath.Base(rest))
	if !ok {
		return time.Time{}, false
	}
	rest = filepath.Dir(rest)
	month, ok := parseSegment(filepath.Base(rest))
	if !ok || month > 11 {
		return time.Time{}, false
	}
	rest = filepath.Dir(rest)
	year, ok := parseSegment(filepath.Base(rest))
	if !ok {
		return time.Time{}, false
	}

	// time.Date normalizes out-of-range components, so a round-trip
	// mismatch means the combination was not a real date.
	t := time.Date(year, time.Month(month+1), day, hour, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month+1) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func parseSegment(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
