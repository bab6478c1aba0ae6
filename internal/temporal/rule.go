package temporal

import (
	"time"

	"github.com/teambition/rrule-go"
)

var rruleWeekdays = [...]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// weeklyRule describes "every <wd>", e.g. FREQ=WEEKLY;BYDAY=MO.
func weeklyRule(wd time.Weekday) string {
	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rruleWeekdays[wd]},
	}
	return opt.RRuleString()
}

// monthlyRule describes "the <ord> <wd> of every <month>", e.g.
// FREQ=MONTHLY;BYDAY=-1FR, or FREQ=YEARLY;BYMONTH=10;BYDAY=+2TU for a
// named month.
func monthlyRule(ord Ordinal, wd time.Weekday, spec MonthSpec) string {
	opt := rrule.ROption{
		Freq:      rrule.MONTHLY,
		Byweekday: []rrule.Weekday{rruleWeekdays[wd].Nth(int(ord))},
	}
	if !spec.Any() {
		opt.Freq = rrule.YEARLY
		opt.Bymonth = []int{int(spec.Month)}
	}
	return opt.RRuleString()
}

// CheckRule returns an error when s does not parse as an RRULE value.
func CheckRule(s string) error {
	_, err := rrule.StrToROption(s)
	return err
}
