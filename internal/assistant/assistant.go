package assistant

import (
	"fmt"
	"strings"
	"sync"
	"time"

	appLog "chatcal/internal/log"
	"chatcal/internal/model"
	"chatcal/internal/store"
	"chatcal/internal/temporal"
)

// User-visible replies.
const (
	ReplyNotUnderstoodEvent   = "I'm sorry, I couldn't understand the event details. Please try again."
	ReplyNotUnderstoodRequest = "I'm sorry, I didn't understand your request. Please try again."
)

// Intent is what a request asks for.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentCreate
	IntentList
)

func (i Intent) String() string {
	switch i {
	case IntentCreate:
		return "create"
	case IntentList:
		return "list"
	default:
		return "unknown"
	}
}

// DetectIntent picks the intent by keyword, case-insensitively. Create wins
// when both kinds of keyword are present.
func DetectIntent(text string) Intent {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "schedule") || strings.Contains(lower, "create"):
		return IntentCreate
	case strings.Contains(lower, "list") || strings.Contains(lower, "show"):
		return IntentList
	default:
		return IntentUnknown
	}
}

// Assistant answers one utterance at a time against a single store.
type Assistant struct {
	mu        sync.Mutex
	store     *store.Store
	extractor *temporal.Extractor
	loc       *time.Location
	now       func() time.Time
}

// New wires an assistant. now defaults to time.Now.
func New(s *store.Store, loc *time.Location, now func() time.Time) *Assistant {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Assistant{
		store:     s,
		extractor: temporal.NewExtractor(loc, now),
		loc:       loc,
		now:       now,
	}
}

// Process handles one request and returns the reply. The error is non-nil
// only when an event could not be persisted; the reply is then empty.
func (a *Assistant) Process(text string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	intent := DetectIntent(text)
	appLog.Debug("request received", "intent", intent.String())

	switch intent {
	case IntentCreate:
		return a.create(text)
	case IntentList:
		start, end := a.today()
		return a.store.List(start, end), nil
	default:
		return ReplyNotUnderstoodRequest, nil
	}
}

func (a *Assistant) create(text string) (string, error) {
	var first *model.Event
	count := 0

	err := a.extractor.Extract(text, func(o temporal.Occurrence) error {
		ev, err := a.store.AddOccurrence(o)
		if err != nil {
			return err
		}
		if first == nil {
			first = &ev
		}
		count++
		return nil
	})
	if err != nil {
		if temporal.IsExtractionError(err) {
			appLog.Info("could not extract event", "reason", err.Error())
			return ReplyNotUnderstoodEvent, nil
		}
		return "", err
	}
	if first == nil {
		return ReplyNotUnderstoodEvent, nil
	}

	appLog.Info("request scheduled", "summary", first.Summary, "occurrences", count)
	return ScheduledReply(*first, a.loc), nil
}

// ScheduledReply is the confirmation for a created event.
func ScheduledReply(ev model.Event, loc *time.Location) string {
	return fmt.Sprintf("Event '%s' has been scheduled from %s to %s.",
		ev.Summary,
		ev.Start.In(loc).Format(temporal.Layout12h),
		ev.End.In(loc).Format(temporal.Layout12h),
	)
}

// Agenda is the list reply for the current day.
func (a *Assistant) Agenda() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	start, end := a.today()
	return a.store.List(start, end)
}

// Import stores events fetched from elsewhere, such as a remote feed.
func (a *Assistant) Import(events []model.Event) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Import(events)
}

// Events returns stored events fully inside [start, end].
func (a *Assistant) Events(start, end time.Time) []model.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Events(start, end)
}

// Location is the reference zone.
func (a *Assistant) Location() *time.Location {
	return a.loc
}

// Now is the assistant's clock in the reference zone.
func (a *Assistant) Now() time.Time {
	return a.now().In(a.loc)
}

// today is midnight through the last microsecond of the current day.
func (a *Assistant) today() (time.Time, time.Time) {
	n := a.Now()
	start := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, a.loc)
	end := start.AddDate(0, 0, 1).Add(-time.Microsecond)
	return start, end
}
