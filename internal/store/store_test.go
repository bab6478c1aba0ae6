package store

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatcal/internal/config"
	"chatcal/internal/model"
	"chatcal/internal/temporal"
)

func at(d, h, m int) time.Time {
	return time.Date(2026, time.October, d, h, m, 0, 0, time.UTC)
}

func newStore(t *testing.T, format string) *Store {
	t.Helper()
	codec, err := CodecFor(format, time.UTC)
	require.NoError(t, err)
	return New(filepath.Join(t.TempDir(), "events."+format), codec, time.UTC)
}

type tuple struct {
	Summary   string
	Start     time.Time
	End       time.Time
	Recurring bool
}

func tuples(events []model.Event) []tuple {
	out := make([]tuple, 0, len(events))
	for _, ev := range events {
		out = append(out, tuple{ev.Summary, ev.Start.UTC(), ev.End.UTC(), ev.Recurring})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].Summary < out[j].Summary
	})
	return out
}

func TestListEmpty(t *testing.T) {
	s := newStore(t, config.FormatICS)
	assert.Equal(t, "There are no events presently.", s.List(at(18, 0, 0), at(19, 0, 0)))
}

func TestCreateThenList(t *testing.T) {
	for _, format := range []string{config.FormatICS, config.FormatFlat} {
		t.Run(format, func(t *testing.T) {
			s := newStore(t, format)

			ev, err := s.Create("lunch", at(19, 13, 0), at(19, 14, 0), false)
			require.NoError(t, err)
			assert.NotEmpty(t, ev.UID)

			_, err = s.Create("standup", at(19, 9, 0), at(19, 9, 30), true)
			require.NoError(t, err)

			got := s.List(at(19, 0, 0), at(19, 23, 59))
			assert.Equal(t, "lunch (01:00 PM - 02:00 PM), standup (09:00 AM - 09:30 AM)", got)

			_, err = os.Stat(s.path)
			assert.NoError(t, err)
		})
	}
}

func TestEventsRequiresFullContainment(t *testing.T) {
	s := newStore(t, config.FormatICS)
	_, err := s.Create("inside", at(19, 9, 0), at(19, 10, 0), false)
	require.NoError(t, err)
	_, err = s.Create("overhang", at(19, 23, 0), at(20, 1, 0), false)
	require.NoError(t, err)
	_, err = s.Create("edges", at(19, 0, 0), at(19, 23, 59), false)
	require.NoError(t, err)

	got := s.Events(at(19, 0, 0), at(19, 23, 59))
	require.Len(t, got, 2)
	assert.Equal(t, "inside", got[0].Summary)
	assert.Equal(t, "edges", got[1].Summary)
}

func TestPersistRestoreRoundTrip(t *testing.T) {
	for _, format := range []string{config.FormatICS, config.FormatFlat} {
		t.Run(format, func(t *testing.T) {
			s := newStore(t, format)
			inputs := []model.Event{
				{Summary: "lunch", Start: at(19, 13, 0), End: at(19, 14, 0)},
				{Summary: "standup | daily", Start: at(19, 9, 0), End: at(19, 9, 30), Recurring: true},
				{Summary: "night shift", Start: at(20, 17, 0), End: at(20, 9, 0)},
				{Summary: `say "hi"`, Start: at(21, 8, 0), End: at(21, 8, 0)},
			}
			for _, ev := range inputs {
				_, err := s.Add(ev)
				require.NoError(t, err)
			}

			restored := New(s.path, s.codec, time.UTC)
			require.NoError(t, restored.Restore())
			assert.Equal(t, tuples(s.All()), tuples(restored.All()))
			for _, ev := range restored.All() {
				assert.NotEmpty(t, ev.UID)
			}
		})
	}
}

func TestRestoreMissingFileIsEmpty(t *testing.T) {
	s := newStore(t, config.FormatFlat)
	require.NoError(t, s.Restore())
	assert.Zero(t, s.Len())
}

func TestRestoreRefusesNonEmptyStore(t *testing.T) {
	s := newStore(t, config.FormatICS)
	_, err := s.Create("lunch", at(19, 13, 0), at(19, 14, 0), false)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Restore(), ErrNotEmpty)
	assert.Equal(t, 1, s.Len())
}

func TestRestoreSkipsMalformedFlatRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.txt")
	body := "lunch|2026-10-19 13:00:00|2026-10-19 14:00:00|False\n" +
		"too|few|fields\n" +
		"bad date|2026-13-45 99:00:00|2026-10-19 14:00:00|False\n" +
		"bad flag|2026-10-19 13:00:00|2026-10-19 14:00:00|maybe\n" +
		"gym|2026-10-19 18:00:00|2026-10-19 19:00:00|True\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	s := New(path, FlatCodec{Location: time.UTC}, time.UTC)
	require.NoError(t, s.Restore())

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "lunch", all[0].Summary)
	assert.Equal(t, "gym", all[1].Summary)
	assert.True(t, all[1].Recurring)
}

func TestCreatePersistFailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	// The backing path is a directory, so every rewrite fails.
	path := filepath.Join(dir, "events.ics")
	require.NoError(t, os.Mkdir(path, 0o700))

	s := New(path, FlatCodec{}, time.UTC)
	_, err := s.Create("lunch", at(19, 13, 0), at(19, 14, 0), false)
	assert.Error(t, err)
	assert.Zero(t, s.Len())
}

func TestAddOccurrenceKeepsRule(t *testing.T) {
	s := newStore(t, config.FormatICS)
	ev, err := s.AddOccurrence(temporal.Occurrence{
		Summary:   "standup",
		Start:     at(19, 9, 0),
		End:       at(19, 9, 30),
		Recurring: true,
		Rule:      "FREQ=WEEKLY;BYDAY=MO",
	})
	require.NoError(t, err)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=MO", ev.Rule)

	restored := New(s.path, s.codec, time.UTC)
	require.NoError(t, restored.Restore())
	require.Equal(t, 1, restored.Len())
	assert.Equal(t, ev, restored.All()[0])
}

func TestOpenFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.StorePath = filepath.Join(t.TempDir(), "data", "events.txt")
	cfg.StoreFormat = config.FormatFlat

	s, err := Open(cfg)
	require.NoError(t, err)
	_, err = s.Create("lunch", at(19, 13, 0), at(19, 14, 0), false)
	require.NoError(t, err)

	again, err := Open(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Len())
}

func TestCodecForUnknown(t *testing.T) {
	_, err := CodecFor("sqlite", time.UTC)
	assert.Error(t, err)
}

func TestImportStopsAtFirstFailure(t *testing.T) {
	s := newStore(t, config.FormatFlat)
	n, err := s.Import([]model.Event{
		{Summary: "a", Start: at(19, 9, 0), End: at(19, 10, 0)},
		{Summary: "b", Start: at(19, 11, 0), End: at(19, 12, 0)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, s.Len())

	path := filepath.Join(t.TempDir(), "dir")
	require.NoError(t, os.Mkdir(path, 0o700))
	broken := New(path, FlatCodec{}, time.UTC)
	n, err = broken.Import([]model.Event{{Summary: "a", Start: at(19, 9, 0), End: at(19, 10, 0)}})
	assert.Error(t, err)
	assert.Zero(t, n)
}
