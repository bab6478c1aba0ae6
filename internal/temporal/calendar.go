package temporal

import (
	"fmt"
	"strings"
	"time"
)

// Date arithmetic in this file runs on naive values: midnight (or a wall
// clock time) in UTC, standing for a calendar date with no zone. Results are
// moved into the reference zone with Localize once all arithmetic is done.

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday resolves a full English weekday name, case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	if wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return wd, nil
	}
	return time.Sunday, fmt.Errorf("%w: %q", ErrUnknownWeekday, s)
}

// Ordinal is the position of a weekday within a month. Last is -1.
type Ordinal int

const (
	Last   Ordinal = -1
	First  Ordinal = 1
	Second Ordinal = 2
	Third  Ordinal = 3
	Fourth Ordinal = 4
)

var ordinalNames = map[string]Ordinal{
	"first":  First,
	"second": Second,
	"third":  Third,
	"fourth": Fourth,
	"last":   Last,
}

func ParseOrdinal(s string) (Ordinal, error) {
	if o, ok := ordinalNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return o, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOrdinal, s)
}

// MonthSpec names the month an ordinal weekday is looked up in. The zero
// value (Any) accepts whatever month the search is in, which is how
// "of every month" is read.
type MonthSpec struct {
	Month time.Month
}

// Any reports whether the spec accepts every month.
func (s MonthSpec) Any() bool {
	return s.Month == 0
}

func (s MonthSpec) Matches(m time.Month) bool {
	return s.Any() || s.Month == m
}

// ParseMonth accepts a full English month name or the literal "month".
func ParseMonth(s string) (MonthSpec, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "month" {
		return MonthSpec{}, nil
	}
	for m := time.January; m <= time.December; m++ {
		if strings.ToLower(m.String()) == name {
			return MonthSpec{Month: m}, nil
		}
	}
	return MonthSpec{}, fmt.Errorf("%w: %q", ErrUnknownMonth, s)
}

// Naive drops the zone of t, keeping its wall clock.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// Localize reinterprets the wall clock of a naive value in loc.
func Localize(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// dateOf truncates t to its calendar date as a naive midnight.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NextWeekday walks forward from the date of from, one day at a time, until
// the weekday matches. from itself is returned when it already matches.
func NextWeekday(from time.Time, wd time.Weekday) time.Time {
	d := dateOf(from)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// NextMonthStart adds 32 days to the first of t's month and resets the day
// to 1. The coarse skip always lands in the following month.
func NextMonthStart(t time.Time) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	skip := first.AddDate(0, 0, 32)
	return time.Date(skip.Year(), skip.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// maxMonthScan bounds the month search: up to a year to reach a named month,
// then another year if the weekday walk runs off the end of that month.
const maxMonthScan = 26

// NthWeekdayOfMonth finds the anchor date for "the <ord> <wd> of <month>",
// searching from the date of from:
//
//   - months are skipped with NextMonthStart until one matches spec; the
//     search starts at from itself, not at the first of its month
//   - within the month, days are walked forward to the first wd; if that walk
//     leaves the month, the month search resumes from there
//   - Last steps forward by weeks while the next step stays inside the month
//   - other ordinals step forward ord-1 weeks and fail with
//     ErrOrdinalOutOfMonth when a step leaves the month
func NthWeekdayOfMonth(from time.Time, ord Ordinal, wd time.Weekday, spec MonthSpec) (time.Time, error) {
	if !ord.valid() {
		return time.Time{}, fmt.Errorf("%w: %d", ErrUnknownOrdinal, ord)
	}

	d := dateOf(from)
	for i := 0; i < maxMonthScan; i++ {
		if !spec.Matches(d.Month()) {
			d = NextMonthStart(d)
			continue
		}

		target := d.Month()
		for d.Weekday() != wd && d.Month() == target {
			d = d.AddDate(0, 0, 1)
		}
		if d.Month() != target {
			// Walked onto the first of the next month.
			continue
		}
		return stepOrdinal(d, ord)
	}
	return time.Time{}, fmt.Errorf("%w: no %s found", ErrUnknownMonth, wd)
}

func stepOrdinal(d time.Time, ord Ordinal) (time.Time, error) {
	boundary := NextMonthStart(d)

	if ord == Last {
		for d.AddDate(0, 0, 7).Before(boundary) {
			d = d.AddDate(0, 0, 7)
		}
		return d, nil
	}

	for n := 1; n < int(ord); n++ {
		d = d.AddDate(0, 0, 7)
		if !d.Before(boundary) {
			return time.Time{}, fmt.Errorf("%w: %s %s", ErrOrdinalOutOfMonth, ord, d.Weekday())
		}
	}
	return d, nil
}

func (o Ordinal) valid() bool {
	return o == Last || (o >= First && o <= Fourth)
}

func (o Ordinal) String() string {
	for name, v := range ordinalNames {
		if v == o {
			return name
		}
	}
	return fmt.Sprintf("Ordinal(%d)", int(o))
}

// ShiftEnd returns start moved by the wall-clock distance between from and
// to. The result precedes start when to is earlier in the day than from.
func ShiftEnd(start time.Time, from, to TimeOfDay) time.Time {
	return start.Add(to.Sub(from))
}
