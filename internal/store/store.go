package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatcal/internal/config"
	"chatcal/internal/ics"
	appLog "chatcal/internal/log"
	"chatcal/internal/model"
	"chatcal/internal/temporal"
)

// NoEventsMessage is the List result for an empty window.
const NoEventsMessage = "There are no events presently."

// ErrNotEmpty is returned by Restore when events are already loaded.
var ErrNotEmpty = errors.New("store: restore into a non-empty store")

// Codec converts the full event sequence to and from its file form.
type Codec interface {
	Encode(w io.Writer, events []model.Event) error
	Decode(r io.Reader) ([]model.Event, error)
}

// CodecFor returns the codec for a config store_format value.
func CodecFor(format string, loc *time.Location) (Codec, error) {
	switch format {
	case config.FormatICS, "":
		return ics.Codec{Location: loc}, nil
	case config.FormatFlat:
		return FlatCodec{Location: loc}, nil
	default:
		return nil, fmt.Errorf("store: unknown format %q", format)
	}
}

// Store owns every Event for the process lifetime. It is not safe for
// concurrent use; callers serialize access.
type Store struct {
	path   string
	codec  Codec
	loc    *time.Location
	events []model.Event
}

// New returns an empty store backed by path. Nothing is read until Restore.
func New(path string, codec Codec, loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{path: path, codec: codec, loc: loc}
}

// Open builds a store from the config and restores it from disk.
func Open(cfg *config.Config) (*Store, error) {
	codec, err := CodecFor(cfg.StoreFormat, cfg.Location())
	if err != nil {
		return nil, err
	}
	s := New(cfg.StorePath, codec, cfg.Location())
	if err := s.Restore(); err != nil {
		return nil, err
	}
	return s, nil
}

// Create appends one event and rewrites the backing file.
func (s *Store) Create(summary string, start, end time.Time, recurring bool) (model.Event, error) {
	return s.Add(model.Event{
		Summary:   summary,
		Start:     start,
		End:       end,
		Recurring: recurring,
	})
}

// AddOccurrence stores a resolved occurrence.
func (s *Store) AddOccurrence(o temporal.Occurrence) (model.Event, error) {
	return s.Add(model.Event{
		Summary:   o.Summary,
		Start:     o.Start,
		End:       o.End,
		Recurring: o.Recurring,
		Rule:      o.Rule,
	})
}

// Add appends ev, assigning a UID when it has none, and rewrites the
// backing file. When the rewrite fails the append is undone and the error
// returned, so the store never reports an event it could not persist.
func (s *Store) Add(ev model.Event) (model.Event, error) {
	if ev.UID == "" {
		ev.UID = uuid.NewString()
	}

	s.events = append(s.events, ev)
	if err := s.persist(); err != nil {
		s.events = s.events[:len(s.events)-1]
		appLog.Error("store persist failed", err, "path", s.path, "summary", ev.Summary)
		return model.Event{}, fmt.Errorf("store: persist: %w", err)
	}

	appLog.Info("event created",
		"uid", ev.UID,
		"summary", ev.Summary,
		"start", ev.Start.Format(time.RFC3339),
		"end", ev.End.Format(time.RFC3339),
		"recurring", ev.Recurring,
	)
	return ev, nil
}

// Import adds every event in turn and stops at the first persist failure.
// It returns how many were added.
func (s *Store) Import(events []model.Event) (int, error) {
	for i, ev := range events {
		if _, err := s.Add(ev); err != nil {
			return i, err
		}
	}
	return len(events), nil
}

// Events returns the events lying fully inside [windowStart, windowEnd],
// in insertion order.
func (s *Store) Events(windowStart, windowEnd time.Time) []model.Event {
	out := make([]model.Event, 0)
	for _, ev := range s.events {
		if ev.Within(windowStart, windowEnd) {
			out = append(out, ev)
		}
	}
	return out
}

// List renders Events(windowStart, windowEnd) as
// "<summary> (<start> - <end>)" joined by ", ", or NoEventsMessage.
func (s *Store) List(windowStart, windowEnd time.Time) string {
	events := s.Events(windowStart, windowEnd)
	if len(events) == 0 {
		return NoEventsMessage
	}

	parts := make([]string, 0, len(events))
	for _, ev := range events {
		parts = append(parts, fmt.Sprintf("%s (%s - %s)",
			ev.Summary,
			ev.Start.In(s.loc).Format(temporal.Layout12h),
			ev.End.In(s.loc).Format(temporal.Layout12h),
		))
	}
	return strings.Join(parts, ", ")
}

// All returns a copy of every event in insertion order.
func (s *Store) All() []model.Event {
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Store) Len() int {
	return len(s.events)
}

// Restore loads the backing file into an empty store. A missing file is an
// empty store. Records the codec cannot read are logged and skipped by the
// codec; Restore itself only fails on I/O errors or an unreadable file.
func (s *Store) Restore() error {
	if len(s.events) > 0 {
		return ErrNotEmpty
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			appLog.Info("store file not found; starting empty", "path", s.path)
			return nil
		}
		return err
	}
	defer f.Close()

	events, err := s.codec.Decode(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("store: restore %s: %w", s.path, err)
	}
	for i := range events {
		if events[i].UID == "" {
			events[i].UID = uuid.NewString()
		}
	}
	s.events = events

	appLog.Info("store restored", "path", s.path, "event_count", len(events))
	return nil
}

// persist rewrites the whole backing file. The write truncates in place:
// a crash mid-write can leave a partial file.
func (s *Store) persist() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	if err := s.codec.Encode(w, s.events); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
