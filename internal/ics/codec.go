package ics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	appLog "chatcal/internal/log"
	"chatcal/internal/model"
	"chatcal/internal/temporal"
)

const (
	productID = "-//chatcal//chatcal//EN"

	// Non-standard properties carrying the fields VEVENT has no slot for.
	propRecurring ical.ComponentProperty = "X-CHATCAL-RECURRING"
	propRule      ical.ComponentProperty = "X-CHATCAL-RULE"
)

// Codec reads and writes the event store as a single VCALENDAR with one
// VEVENT per event. Times are written in UTC and read back into Location.
type Codec struct {
	Location *time.Location
}

// Encode serializes events in order.
func (c Codec) Encode(w io.Writer, events []model.Event) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	stamp := time.Now().UTC()
	for _, ev := range events {
		uid := ev.UID
		if uid == "" {
			uid = uuid.NewString()
		}

		ve := cal.AddEvent(uid)
		ve.SetDtStampTime(stamp)
		// Written raw: the summary never spans lines once CR/LF are folded.
		ve.SetProperty(ical.ComponentPropertySummary, singleLine(ev.Summary))
		ve.SetStartAt(ev.Start)
		ve.SetEndAt(ev.End)
		ve.SetProperty(propRecurring, strings.ToUpper(fmt.Sprint(ev.Recurring)))
		if ev.Rule != "" {
			ve.SetProperty(propRule, ev.Rule)
		}
	}

	return cal.SerializeTo(w)
}

// Decode parses an ICS payload. An empty payload is an empty store.
//
//   - VEVENTs without a usable DTSTART are logged and skipped; the rest are
//     still returned.
//   - A missing DTEND defaults to DTSTART + 1 day.
//   - A missing UID is replaced with a fresh one.
//   - An X-CHATCAL-RULE that does not parse as RRULE is dropped.
func (c Codec) Decode(r io.Reader) ([]model.Event, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, err
	}

	events := make([]model.Event, 0)
	for i, ve := range cal.Events() {
		ev, perr := c.decodeVEvent(ve)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent skipped", perr, "index", i)
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("ics decode completed", "event_count", len(events))
	return events, nil
}

func (c Codec) decodeVEvent(ve *ical.VEvent) (model.Event, error) {
	var out model.Event

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil && p.Value != "" {
		out.UID = p.Value
	} else {
		out.UID = uuid.NewString()
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}

	if ve.GetProperty(ical.ComponentPropertyDtStart) == nil {
		return out, errors.New("missing DTSTART")
	}
	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("DTSTART: %w", err)
	}

	end := start.AddDate(0, 0, 1)
	if ve.GetProperty(ical.ComponentPropertyDtEnd) != nil {
		end, err = ve.GetEndAt()
		if err != nil {
			return out, fmt.Errorf("DTEND: %w", err)
		}
	}

	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	out.Start = start.In(loc)
	out.End = end.In(loc)

	if p := ve.GetProperty(propRecurring); p != nil {
		out.Recurring = strings.EqualFold(strings.TrimSpace(p.Value), "TRUE")
	}

	if p := ve.GetProperty(propRule); p != nil && p.Value != "" {
		if err := temporal.CheckRule(p.Value); err != nil {
			appLog.Error("ics rule dropped", err, "uid", out.UID, "rule", p.Value)
		} else {
			out.Rule = p.Value
		}
	}

	return out, nil
}

func singleLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(s)
}
