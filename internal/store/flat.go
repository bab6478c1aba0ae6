package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	appLog "chatcal/internal/log"
	"chatcal/internal/model"
)

// FlatLayout is the timestamp layout of the flat schema, in the reference
// zone's wall clock.
const FlatLayout = "2006-01-02 15:04:05"

const flatFields = 4

// FlatCodec stores one event per line:
//
//	name|start|end|True
//
// Summaries containing '|' or quotes are quoted csv-style and read back
// intact. UID and Rule are not part of the schema.
type FlatCodec struct {
	Location *time.Location
}

func (c FlatCodec) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c FlatCodec) Encode(w io.Writer, events []model.Event) error {
	cw := csv.NewWriter(w)
	cw.Comma = '|'

	for _, ev := range events {
		rec := []string{
			ev.Summary,
			ev.Start.In(c.loc()).Format(FlatLayout),
			ev.End.In(c.loc()).Format(FlatLayout),
			formatFlatBool(ev.Recurring),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode reads every line, skipping (and logging) lines with the wrong
// field count, an unparseable timestamp or a recurring flag other than
// True/False.
func (c FlatCodec) Decode(r io.Reader) ([]model.Event, error) {
	cr := csv.NewReader(r)
	cr.Comma = '|'
	cr.FieldsPerRecord = flatFields
	cr.LazyQuotes = true

	events := make([]model.Event, 0)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, err
			}
			appLog.Error("flat record skipped", err, "line", perr.StartLine)
			continue
		}

		line, _ := cr.FieldPos(0)
		ev, err := c.decodeRecord(rec)
		if err != nil {
			appLog.Error("flat record skipped", err, "line", line)
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("flat decode completed", "event_count", len(events))
	return events, nil
}

func (c FlatCodec) decodeRecord(rec []string) (model.Event, error) {
	start, err := time.ParseInLocation(FlatLayout, strings.TrimSpace(rec[1]), c.loc())
	if err != nil {
		return model.Event{}, fmt.Errorf("start: %w", err)
	}
	end, err := time.ParseInLocation(FlatLayout, strings.TrimSpace(rec[2]), c.loc())
	if err != nil {
		return model.Event{}, fmt.Errorf("end: %w", err)
	}
	recurring, err := parseFlatBool(rec[3])
	if err != nil {
		return model.Event{}, err
	}
	return model.Event{
		Summary:   rec[0],
		Start:     start,
		End:       end,
		Recurring: recurring,
	}, nil
}

func formatFlatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func parseFlatBool(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "True":
		return true, nil
	case "False":
		return false, nil
	default:
		return false, fmt.Errorf("recurring: want True or False, got %q", s)
	}
}
