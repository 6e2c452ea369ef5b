// Package timegrid generates regular, gap-free grids of period boundaries
// and the date arithmetic behind them.
package timegrid

import (
	"fmt"
	"time"

	"github.com/huangsam/queuetrace/schema"
)

// InvalidRangeError reports a grid request whose start is after its end.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s",
		e.Start.Format(time.DateOnly), e.End.Format(time.DateOnly))
}

// dateLayouts are the accepted layouts for free-text date parsing, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
}

// Normalize strips the time-of-day from a datetime, leaving midnight in the
// same location.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDate parses a free-text date string.
func ParseDate(text string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", text)
}

// FirstOf returns the first day of the period containing t for the given
// frequency. Weeks start on Monday.
func FirstOf(t time.Time, freq schema.Frequency) time.Time {
	t = Normalize(t)
	switch freq {
	case schema.WeekFreq:
		// time.Weekday puts Sunday at 0; shift so Monday is the week start.
		offset := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -offset)
	case schema.MonthFreq:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case schema.QuarterFreq:
		qm := time.Month((int(t.Month())-1)/3*3 + 1)
		return time.Date(t.Year(), qm, 1, 0, 0, 0, 0, t.Location())
	case schema.YearFreq:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	default: // day
		return t
	}
}

// EndOf returns the last day of the period containing t for the given
// frequency.
func EndOf(t time.Time, freq schema.Frequency) time.Time {
	if freq == schema.DayFreq {
		return Normalize(t)
	}
	return Next(FirstOf(t, freq), freq).AddDate(0, 0, -1)
}

// Next advances a period-start date by exactly one period. Inputs are
// expected to be grid-aligned (see FirstOf) so monthly and yearly steps
// cannot drift.
func Next(t time.Time, freq schema.Frequency) time.Time {
	switch freq {
	case schema.WeekFreq:
		return t.AddDate(0, 0, 7)
	case schema.MonthFreq:
		return t.AddDate(0, 1, 0)
	case schema.QuarterFreq:
		return t.AddDate(0, 3, 0)
	case schema.YearFreq:
		return t.AddDate(1, 0, 0)
	default: // day
		return t.AddDate(0, 0, 1)
	}
}

// Range produces every grid point for the periods covering [start, end]
// inclusive at the given frequency. Points are period starts: a daily grid
// holds every calendar day, a monthly grid every first-of-month, and so on.
// A reversed range yields an InvalidRangeError.
func Range(start, end time.Time, freq schema.Frequency) ([]time.Time, error) {
	startDay, endDay := Normalize(start), Normalize(end)
	if startDay.After(endDay) {
		return nil, &InvalidRangeError{Start: start, End: end}
	}

	var grid []time.Time
	for p := FirstOf(startDay, freq); !p.After(endDay); p = Next(p, freq) {
		grid = append(grid, p)
	}
	return grid, nil
}

// RangeOrEmpty behaves like Range but maps a reversed range to an empty grid
// instead of an error. Flow extraction uses this: real event logs may span
// zero days and must not fail.
func RangeOrEmpty(start, end time.Time, freq schema.Frequency) []time.Time {
	grid, err := Range(start, end, freq)
	if err != nil {
		return nil
	}
	return grid
}

// DayRange returns a daily grid spanning numDays days counted forward (or
// backward if negative) from the anchor date. With inclusive set, the anchor
// day itself is part of the range.
func DayRange(numDays int, anchor time.Time, inclusive bool) ([]time.Time, error) {
	if numDays == 0 {
		return nil, fmt.Errorf("day range must span at least one day")
	}

	shift := 1
	if numDays < 0 {
		shift = -1
	}

	anchor = Normalize(anchor)
	swing := anchor.AddDate(0, 0, numDays-shift)
	if !inclusive {
		anchor = anchor.AddDate(0, 0, shift)
		swing = swing.AddDate(0, 0, shift)
	}
	if anchor.After(swing) {
		anchor, swing = swing, anchor
	}
	return Range(anchor, swing, schema.DayFreq)
}

// Prorate returns the fraction of t's period that has elapsed through t,
// counting whole days. The last day of a month prorates to 1.
func Prorate(t time.Time, freq schema.Frequency) float64 {
	first, end := FirstOf(t, freq), EndOf(t, freq)
	total := end.Sub(first).Hours()/24 + 1
	elapsed := Normalize(t).Sub(first).Hours()/24 + 1
	return elapsed / total
}
