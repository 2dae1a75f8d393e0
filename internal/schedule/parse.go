package schedule

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var errEmptyDate = errors.New("empty date value")

// Layouts that carry a time of day. Offsets in the value win over the
// display location; the result is converted into it afterwards.
var timedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"20060102T150405Z",
	"20060102T150405",
}

var dateLayouts = []string{
	"2006-01-02",
	"20060102",
}

// clockPattern spots a time-of-day in free-form input handed to dateparse,
// e.g. "March 6, 2024 2:00 PM" or "20240306T1400". Runs of ten or more
// digits are unix timestamps or yyyymmddhhmm[ss] and always carry a time.
var clockPattern = regexp.MustCompile(`\d{1,2}:\d{2}|T\d{4}|^\d{10,}$`)

// ParseDate parses a loosely-typed date or date-time string from the store.
// timed reports whether the value carried a time of day; date-only values
// come back as midnight in loc.
func ParseDate(raw string, loc *time.Location) (t time.Time, timed bool, err error) {
	if loc == nil {
		loc = time.Local
	}
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, false, errEmptyDate
	}

	for _, layout := range dateLayouts {
		if d, perr := time.ParseInLocation(layout, v, loc); perr == nil {
			return d, false, nil
		}
	}
	for _, layout := range timedLayouts {
		if d, perr := time.ParseInLocation(layout, v, loc); perr == nil {
			return d.In(loc), true, nil
		}
	}

	d, err := dateparse.ParseIn(v, loc)
	if err != nil {
		return time.Time{}, false, err
	}
	if !clockPattern.MatchString(v) {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc), false, nil
	}
	return d.In(loc), true, nil
}
