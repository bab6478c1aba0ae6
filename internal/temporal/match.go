package temporal

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind tags how a match repeats.
type Kind int

const (
	None Kind = iota
	OnWeekday
	EveryWeekday
	OnNthWeekdayOfMonth
	EveryNthWeekdayOfMonth
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case OnWeekday:
		return "on_weekday"
	case EveryWeekday:
		return "every_weekday"
	case OnNthWeekdayOfMonth:
		return "on_nth_weekday_of_month"
	case EveryNthWeekdayOfMonth:
		return "every_nth_weekday_of_month"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Recurring reports whether the kind materializes more than one occurrence.
func (k Kind) Recurring() bool {
	return k == EveryWeekday || k == EveryNthWeekdayOfMonth
}

// Recurrence is the day qualifier captured by a rule. Names are kept as
// written (lowercased); the resolver validates them.
type Recurrence struct {
	Kind    Kind
	Weekday string
	Ordinal string
	Month   string
}

// RawMatch is the unresolved result of a successful rule.
type RawMatch struct {
	Summary    string
	Start      TimeOfDay
	End        TimeOfDay
	Recurrence Recurrence
}

const (
	weekdayAlt = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`
	monthAlt   = `january|february|march|april|may|june|july|august|september|october|november|december|month`

	// verb, summary, start, end
	rulePrefix = `(?i)(?P<verb>schedule|create)(?P<summary>.*?)from\s*(?P<start>\d+:\d+\s*[ap]m)\s*to\s*(?P<end>\d+:\d+\s*[ap]m)\s*`
)

type rule struct {
	name string
	re   *regexp.Regexp
	kind func(every bool) Kind
}

func newRule(name, suffix string, kind func(every bool) Kind) rule {
	return rule{name: name, re: regexp.MustCompile(rulePrefix + suffix), kind: kind}
}

func fixed(k Kind) func(bool) Kind {
	return func(bool) Kind { return k }
}

func monthly(every bool) Kind {
	if every {
		return EveryNthWeekdayOfMonth
	}
	return OnNthWeekdayOfMonth
}

// rules are tried in this order; the first one that matches with a
// non-empty summary wins.
var rules = []rule{
	newRule("tomorrow", `tomorrow`, fixed(None)),
	newRule("on-weekday", `on\s+(?P<day>`+weekdayAlt+`)\b`, fixed(OnWeekday)),
	newRule("every-weekday", `every\s+(?P<day>`+weekdayAlt+`)\b`, fixed(EveryWeekday)),
	// The word after "the" carries no ordinal here. It is read as a weekday
	// with an implied "first"; anything else fails in the resolver.
	newRule("on-the-day-of-month", `on\s+the\s+(?P<day>\w+)\s+of\s+(?P<every>every\s+)?(?P<month>`+monthAlt+`)\b`, monthly),
	newRule("on-the-nth-weekday-of-month", `on\s+the\s+(?P<ordinal>last|first|second|third|fourth)\s+(?P<day>`+weekdayAlt+`)\s+of\s+(?P<every>every\s+)?(?P<month>`+monthAlt+`)\b`, monthly),
}

// Match runs the ordered rules against text. It returns ErrNoMatch when no
// rule applies, and ErrInvalidClock when a rule matched but one of its
// times is not a valid 12-hour clock value.
func Match(text string) (RawMatch, error) {
	for _, r := range rules {
		groups := r.re.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		get := func(name string) string {
			if i := r.re.SubexpIndex(name); i >= 0 {
				return groups[i]
			}
			return ""
		}

		summary := strings.TrimSpace(get("summary"))
		if summary == "" {
			continue
		}

		start, err := ParseTimeOfDay(get("start"))
		if err != nil {
			return RawMatch{}, fmt.Errorf("rule %s: start: %w", r.name, err)
		}
		end, err := ParseTimeOfDay(get("end"))
		if err != nil {
			return RawMatch{}, fmt.Errorf("rule %s: end: %w", r.name, err)
		}

		rec := Recurrence{
			Kind:    r.kind(get("every") != ""),
			Weekday: strings.ToLower(get("day")),
			Ordinal: strings.ToLower(get("ordinal")),
			Month:   strings.ToLower(get("month")),
		}
		if rec.Ordinal == "" && (rec.Kind == OnNthWeekdayOfMonth || rec.Kind == EveryNthWeekdayOfMonth) {
			rec.Ordinal = First.String()
		}

		return RawMatch{
			Summary:    summary,
			Start:      start,
			End:        end,
			Recurrence: rec,
		}, nil
	}
	return RawMatch{}, ErrNoMatch
}
