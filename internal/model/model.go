package model

import "time"

// Event is a single concrete calendar entry owned by the event store.
// Recurring rules are materialized eagerly, so every occurrence of a rule
// is its own Event with Recurring set.
type Event struct {
	// UID is the stable identifier written to the ICS schema. The flat
	// schema does not carry it.
	UID string

	Summary string

	// Start / End are localized to the reference zone. End may precede
	// Start when the request named an end time earlier than its start time.
	Start time.Time
	End   time.Time

	// Recurring marks occurrences materialized from an "every ..." rule.
	Recurring bool

	// Rule is the RRULE text of the request the occurrence came from, for
	// display only. Empty for one-shot events.
	Rule string
}

// Duration returns End - Start; negative for inverted requests.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Within reports whether the event lies fully inside [start, end].
func (e Event) Within(start, end time.Time) bool {
	return !e.Start.Before(start) && !e.End.After(end)
}
