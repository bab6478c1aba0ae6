package temporal

import (
	"errors"
	"fmt"
	"time"
)

// Occurrence is one concrete (summary, start, end) produced from a request.
type Occurrence struct {
	Summary   string
	Start     time.Time
	End       time.Time
	Recurring bool
	Rule      string
}

// EmitFunc receives occurrences while they are being generated. Returning
// an error stops resolution; the error is passed through unchanged.
type EmitFunc func(Occurrence) error

// Resolver turns a RawMatch into absolute occurrences in a single
// reference zone.
type Resolver struct {
	loc *time.Location
	now func() time.Time
}

// NewResolver builds a Resolver for loc. now defaults to time.Now.
func NewResolver(loc *time.Location, now func() time.Time) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{loc: loc, now: now}
}

// today is the current date in the reference zone, as a naive midnight.
func (r *Resolver) today() time.Time {
	return dateOf(r.now().In(r.loc))
}

// Resolve expands m and hands each occurrence to emit as soon as it is
// computed. Recurring kinds are materialized eagerly:
//
//   - EveryWeekday emits from the first matching weekday while the start is
//     before that date + 6 days, so at most one week is covered
//   - EveryNthWeekdayOfMonth emits the anchor and every following week whose
//     end still falls in the anchor's month
//
// Errors from the date arithmetic are returned before anything is emitted.
func (r *Resolver) Resolve(m RawMatch, emit EmitFunc) error {
	today := r.today()
	rec := m.Recurrence

	switch rec.Kind {
	case None:
		return r.emitOnce(m, today.AddDate(0, 0, 1), emit)

	case OnWeekday, EveryWeekday:
		wd, err := ParseWeekday(rec.Weekday)
		if err != nil {
			return err
		}
		first := NextWeekday(today, wd)
		if rec.Kind == OnWeekday {
			return r.emitOnce(m, first, emit)
		}

		ruleText := weeklyRule(wd)
		start := m.Start.On(first)
		horizon := start.AddDate(0, 0, 6)
		for ; start.Before(horizon); start = start.AddDate(0, 0, 7) {
			if err := emit(r.occurrence(m, start, true, ruleText)); err != nil {
				return err
			}
		}
		return nil

	case OnNthWeekdayOfMonth, EveryNthWeekdayOfMonth:
		wd, err := ParseWeekday(rec.Weekday)
		if err != nil {
			return err
		}
		ord, err := ParseOrdinal(rec.Ordinal)
		if err != nil {
			return err
		}
		spec, err := ParseMonth(rec.Month)
		if err != nil {
			return err
		}
		anchor, err := NthWeekdayOfMonth(today, ord, wd, spec)
		if err != nil {
			return err
		}
		if rec.Kind == OnNthWeekdayOfMonth {
			return r.emitOnce(m, anchor, emit)
		}

		ruleText := monthlyRule(ord, wd, spec)
		target := anchor.Month()
		emitted := 0
		start := m.Start.On(anchor)
		for ShiftEnd(start, m.Start, m.End).Month() == target {
			if err := emit(r.occurrence(m, start, true, ruleText)); err != nil {
				return err
			}
			emitted++
			start = start.AddDate(0, 0, 7)
		}
		if emitted == 0 {
			return fmt.Errorf("%w: %s", ErrNothingScheduled, rec.Kind)
		}
		return nil
	}

	return fmt.Errorf("%w: unsupported recurrence %s", ErrNoMatch, rec.Kind)
}

// ResolveAll collects every occurrence of m.
func (r *Resolver) ResolveAll(m RawMatch) ([]Occurrence, error) {
	var out []Occurrence
	err := r.Resolve(m, func(o Occurrence) error {
		out = append(out, o)
		return nil
	})
	return out, err
}

func (r *Resolver) emitOnce(m RawMatch, date time.Time, emit EmitFunc) error {
	return emit(r.occurrence(m, m.Start.On(date), false, ""))
}

// occurrence localizes a naive start (and its shifted end) to the reference
// zone.
func (r *Resolver) occurrence(m RawMatch, start time.Time, recurring bool, ruleText string) Occurrence {
	end := ShiftEnd(start, m.Start, m.End)
	return Occurrence{
		Summary:   m.Summary,
		Start:     Localize(start, r.loc),
		End:       Localize(end, r.loc),
		Recurring: recurring,
		Rule:      ruleText,
	}
}

// IsExtractionError reports whether err means the text could not be turned
// into an event, as opposed to a failure of whatever consumed the
// occurrences.
func IsExtractionError(err error) bool {
	for _, target := range []error{
		ErrNoMatch, ErrInvalidClock, ErrUnknownWeekday, ErrUnknownMonth,
		ErrUnknownOrdinal, ErrOrdinalOutOfMonth, ErrNothingScheduled, ErrNotUnderstood,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
