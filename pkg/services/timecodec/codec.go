package timecodec

import (
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/problem-report/pkg/models/domain"
)

const (
	DefaultFromClock = "00:00"
	DefaultToClock   = "23:59"
)

var layouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// Codec converts calendar dates entered by a user into epoch milliseconds.
// Values are interpreted in the codec's location, the host zone by default.
type Codec struct {
	loc *time.Location
}

func New(loc *time.Location) *Codec {
	if loc == nil {
		loc = time.Local
	}
	return &Codec{loc: loc}
}

// LoadLocation resolves a zone name, treating "" and "Local" as the host zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", name, err)
	}
	return loc, nil
}

func (c *Codec) Location() *time.Location {
	return c.loc
}

func (c *Codec) ToEpochMillis(value string) (int64, error) {
	value = strings.TrimSpace(value)
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, value, c.loc)
		if err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrInvalidTimeFormat, value)
}

// Combine joins a date and an optional HH:MM clock before converting. A date
// that already carries a clock keeps it and clock is ignored.
func (c *Codec) Combine(date, clock string) (int64, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if clock == "" || hasClock(date) {
		return c.ToEpochMillis(date)
	}
	return c.ToEpochMillis(date + " " + clock)
}

// Window resolves the from/to pair of params. A missing clock defaults to the
// start of the from day and the last minute of the to day. from > to is passed
// through unchanged.
func (c *Codec) Window(params domain.ReportParams) (domain.TimeWindow, error) {
	fromClock := params.FromTime
	if fromClock == "" && !hasClock(params.FromDate) {
		fromClock = DefaultFromClock
	}
	toClock := params.ToTime
	if toClock == "" && !hasClock(params.ToDate) {
		toClock = DefaultToClock
	}

	from, err := c.Combine(params.FromDate, fromClock)
	if err != nil {
		return domain.TimeWindow{}, err
	}
	to, err := c.Combine(params.ToDate, toClock)
	if err != nil {
		return domain.TimeWindow{}, err
	}
	return domain.TimeWindow{From: from, To: to, Location: c.loc.String()}, nil
}

func hasClock(value string) bool {
	return strings.ContainsAny(strings.TrimSpace(value), " T:")
}
