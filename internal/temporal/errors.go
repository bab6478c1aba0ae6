package temporal

import "errors"

var (
	// ErrNoMatch means none of the ordered rules recognized the text.
	ErrNoMatch = errors.New("temporal: no rule matched")

	ErrInvalidClock      = errors.New("temporal: invalid 12-hour clock value")
	ErrUnknownWeekday    = errors.New("temporal: unknown weekday")
	ErrUnknownMonth      = errors.New("temporal: unknown month")
	ErrUnknownOrdinal    = errors.New("temporal: unknown ordinal")
	ErrOrdinalOutOfMonth = errors.New("temporal: ordinal falls outside the month")

	// ErrNothingScheduled means a recurring rule produced no occurrence.
	ErrNothingScheduled = errors.New("temporal: rule produced no occurrence")

	// ErrNotUnderstood is returned by the free parser when it finds no date.
	ErrNotUnderstood = errors.New("temporal: could not understand")
)
