package assistant

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatcal/internal/ics"
	"chatcal/internal/model"
	"chatcal/internal/store"
)

// Sunday.
func fixedNow() time.Time {
	return time.Date(2026, time.October, 18, 10, 0, 0, 0, time.UTC)
}

func newAssistant(t *testing.T) (*Assistant, *store.Store) {
	t.Helper()
	s := store.New(filepath.Join(t.TempDir(), "events.ics"), ics.Codec{Location: time.UTC}, time.UTC)
	return New(s, time.UTC, fixedNow), s
}

func TestDetectIntent(t *testing.T) {
	cases := []struct {
		text string
		want Intent
	}{
		{"schedule lunch", IntentCreate},
		{"Please CREATE an event", IntentCreate},
		{"list my events", IntentList},
		{"Show me today", IntentList},
		{"schedule and list", IntentCreate},
		{"hello there", IntentUnknown},
		{"", IntentUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectIntent(tc.text), tc.text)
	}
}

func TestProcessCreateTomorrow(t *testing.T) {
	a, s := newAssistant(t)

	reply, err := a.Process("schedule lunch from 1:00 PM to 2:00 PM tomorrow")
	require.NoError(t, err)
	assert.Equal(t, "Event 'lunch' has been scheduled from 01:00 PM to 02:00 PM.", reply)
	require.Equal(t, 1, s.Len())

	ev := s.All()[0]
	assert.Equal(t, time.Date(2026, time.October, 19, 13, 0, 0, 0, time.UTC), ev.Start)
	assert.False(t, ev.Recurring)

	// Tomorrow's event is outside today's window.
	reply, err = a.Process("list events")
	require.NoError(t, err)
	assert.Equal(t, store.NoEventsMessage, reply)
}

func TestProcessListToday(t *testing.T) {
	a, _ := newAssistant(t)

	reply, err := a.Process("show events")
	require.NoError(t, err)
	assert.Equal(t, "There are no events presently.", reply)

	_, err = a.Process("create dentist appointment at 5pm")
	require.NoError(t, err)

	reply, err = a.Process("show events")
	require.NoError(t, err)
	assert.Equal(t, "Event (05:00 PM - 05:00 PM)", reply)
	assert.Equal(t, reply, a.Agenda())
}

func TestProcessWeeklyCreatesOneWeek(t *testing.T) {
	a, s := newAssistant(t)

	reply, err := a.Process("schedule standup from 9:00 AM to 9:30 AM every Monday")
	require.NoError(t, err)
	assert.Equal(t, "Event 'standup' has been scheduled from 09:00 AM to 09:30 AM.", reply)
	require.Equal(t, 1, s.Len())

	ev := s.All()[0]
	assert.True(t, ev.Recurring)
	assert.Equal(t, time.Monday, ev.Start.Weekday())
	assert.NotEmpty(t, ev.Rule)
}

func TestProcessUnknownRequestLeavesStoreAlone(t *testing.T) {
	a, s := newAssistant(t)

	reply, err := a.Process("what's the weather")
	require.NoError(t, err)
	assert.Equal(t, ReplyNotUnderstoodRequest, reply)
	assert.Zero(t, s.Len())
}

func TestProcessUnparseableEvent(t *testing.T) {
	a, s := newAssistant(t)

	reply, err := a.Process("create something nice")
	require.NoError(t, err)
	assert.Equal(t, ReplyNotUnderstoodEvent, reply)
	assert.Zero(t, s.Len())

	reply, err = a.Process("schedule lunch from 13:00 PM to 2:00 PM tomorrow")
	require.NoError(t, err)
	assert.Equal(t, ReplyNotUnderstoodEvent, reply)
	assert.Zero(t, s.Len())
}

func TestProcessPersistFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.ics")
	require.NoError(t, os.Mkdir(path, 0o700))
	s := store.New(path, ics.Codec{Location: time.UTC}, time.UTC)
	a := New(s, time.UTC, fixedNow)

	reply, err := a.Process("schedule lunch from 1:00 PM to 2:00 PM tomorrow")
	assert.Error(t, err)
	assert.Empty(t, reply)
	assert.Zero(t, s.Len())
}

func TestEventsWindow(t *testing.T) {
	a, _ := newAssistant(t)
	_, err := a.Process("schedule lunch from 1:00 PM to 2:00 PM tomorrow")
	require.NoError(t, err)

	day := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	assert.Len(t, a.Events(day, day.AddDate(0, 0, 1)), 1)
	assert.Empty(t, a.Events(day.AddDate(0, 0, 1), day.AddDate(0, 0, 2)))
}

func TestImport(t *testing.T) {
	a, s := newAssistant(t)
	n, err := a.Import([]model.Event{{
		Summary: "review",
		Start:   time.Date(2026, time.October, 18, 15, 0, 0, 0, time.UTC),
		End:     time.Date(2026, time.October, 18, 16, 0, 0, 0, time.UTC),
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "review (03:00 PM - 04:00 PM)", a.Agenda())
}
