package temporal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRules(t *testing.T) {
	cases := []struct {
		name string
		text string
		want RawMatch
	}{
		{
			name: "tomorrow",
			text: "schedule lunch from 1:00 PM to 2:00 PM tomorrow",
			want: RawMatch{Summary: "lunch", Start: TimeOfDay{13, 0}, End: TimeOfDay{14, 0},
				Recurrence: Recurrence{Kind: None}},
		},
		{
			name: "on weekday",
			text: "Schedule Team Sync from 9:00 am to 9:30 am on Tuesday",
			want: RawMatch{Summary: "Team Sync", Start: TimeOfDay{9, 0}, End: TimeOfDay{9, 30},
				Recurrence: Recurrence{Kind: OnWeekday, Weekday: "tuesday"}},
		},
		{
			name: "every weekday",
			text: "please CREATE gym from 6:00PM to 7:00PM every Monday",
			want: RawMatch{Summary: "gym", Start: TimeOfDay{18, 0}, End: TimeOfDay{19, 0},
				Recurrence: Recurrence{Kind: EveryWeekday, Weekday: "monday"}},
		},
		{
			name: "last weekday of every month",
			text: "schedule standup from 9:00 AM to 9:30 AM on the last Friday of every month",
			want: RawMatch{Summary: "standup", Start: TimeOfDay{9, 0}, End: TimeOfDay{9, 30},
				Recurrence: Recurrence{Kind: EveryNthWeekdayOfMonth, Weekday: "friday", Ordinal: "last", Month: "month"}},
		},
		{
			name: "nth weekday of named month",
			text: "schedule review from 2:00 PM to 3:00 PM on the second Tuesday of October",
			want: RawMatch{Summary: "review", Start: TimeOfDay{14, 0}, End: TimeOfDay{15, 0},
				Recurrence: Recurrence{Kind: OnNthWeekdayOfMonth, Weekday: "tuesday", Ordinal: "second", Month: "october"}},
		},
		{
			name: "weekday without ordinal",
			text: "schedule brunch from 11:00 AM to 12:30 PM on the Sunday of every month",
			want: RawMatch{Summary: "brunch", Start: TimeOfDay{11, 0}, End: TimeOfDay{12, 30},
				Recurrence: Recurrence{Kind: EveryNthWeekdayOfMonth, Weekday: "sunday", Ordinal: "first", Month: "month"}},
		},
		{
			name: "summary containing from",
			text: "schedule pickup from school from 3:00 PM to 4:00 PM tomorrow",
			want: RawMatch{Summary: "pickup from school", Start: TimeOfDay{15, 0}, End: TimeOfDay{16, 0},
				Recurrence: Recurrence{Kind: None}},
		},
		{
			name: "end before start",
			text: "schedule night shift from 10:00 PM to 6:00 AM on Friday",
			want: RawMatch{Summary: "night shift", Start: TimeOfDay{22, 0}, End: TimeOfDay{6, 0},
				Recurrence: Recurrence{Kind: OnWeekday, Weekday: "friday"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Match(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMatchNoRule(t *testing.T) {
	for _, text := range []string{
		"schedule lunch at noon",
		"schedule from 1:00 PM to 2:00 PM tomorrow",
		"book lunch from 1:00 PM to 2:00 PM tomorrow",
		"schedule lunch from 1:00 PM to 2:00 PM every Mondays",
	} {
		t.Run(text, func(t *testing.T) {
			_, err := Match(text)
			assert.ErrorIs(t, err, ErrNoMatch)
		})
	}
}

func TestMatchInvalidClockAborts(t *testing.T) {
	_, err := Match("schedule lunch from 13:00 PM to 2:00 PM tomorrow")
	assert.ErrorIs(t, err, ErrInvalidClock)
	assert.NotErrorIs(t, err, ErrNoMatch)
}

func TestMatchDayOfMonthWordIsKept(t *testing.T) {
	got, err := Match("schedule rent from 9:00 AM to 9:15 AM on the 15th of every month")
	require.NoError(t, err)
	assert.Equal(t, EveryNthWeekdayOfMonth, got.Recurrence.Kind)
	assert.Equal(t, "15th", got.Recurrence.Weekday)
}

func TestKindRecurring(t *testing.T) {
	assert.False(t, None.Recurring())
	assert.False(t, OnWeekday.Recurring())
	assert.True(t, EveryWeekday.Recurring())
	assert.False(t, OnNthWeekdayOfMonth.Recurring())
	assert.True(t, EveryNthWeekdayOfMonth.Recurring())
	assert.Equal(t, "every_weekday", EveryWeekday.String())
}
