package temporal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout12h is the 12-hour clock layout used in every user-visible reply.
const Layout12h = "03:04 PM"

var clockPattern = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*([ap]m)$`)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int // 0-23
	Minute int // 0-59
}

// ParseTimeOfDay parses a 12-hour clock value such as "1:00 PM", "09:30am"
// or "12:15 Am". The hour must be 1-12.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	hour %= 12
	if strings.EqualFold(m[3], "pm") {
		hour += 12
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// Format renders the value as "03:04 PM".
func (t TimeOfDay) Format() string {
	return time.Date(2000, time.January, 1, t.Hour, t.Minute, 0, 0, time.UTC).Format(Layout12h)
}

func (t TimeOfDay) String() string {
	return t.Format()
}

// Sub returns t - u. The result is negative when t is earlier in the day.
func (t TimeOfDay) Sub(u TimeOfDay) time.Duration {
	return time.Duration(t.Hour-u.Hour)*time.Hour + time.Duration(t.Minute-u.Minute)*time.Minute
}

// On combines the date part of d with t, in d's location.
func (t TimeOfDay) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour, t.Minute, 0, 0, d.Location())
}
