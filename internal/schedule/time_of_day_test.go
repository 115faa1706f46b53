package schedule

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	testCases := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{input: "08:00", want: NewTimeOfDay(8, 0, 0)},
		{input: "9:05", want: NewTimeOfDay(9, 5, 0)},
		{input: "23:59:59", want: NewTimeOfDay(23, 59, 59)},
		{input: " 07:30 ", want: NewTimeOfDay(7, 30, 0)},
		{input: "24:00", wantErr: true},
		{input: "12:60", wantErr: true},
		{input: "12", wantErr: true},
		{input: "ab:cd", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "08:05", NewTimeOfDay(8, 5, 0).String())
	assert.Equal(t, "00:00", TimeOfDay(0).String())
	assert.Equal(t, "23:10:07", NewTimeOfDay(23, 10, 7).String())
}

func TestTimeOfDayFolding(t *testing.T) {
	assert.Equal(t, NewTimeOfDay(0, 15, 0), TimeOfDayFromDuration(24*time.Hour+15*time.Minute))
	assert.Equal(t, NewTimeOfDay(1, 0, 0), NewTimeOfDay(25, 0, 0))

	clock := time.Date(2026, time.October, 17, 14, 30, 12, 0, time.UTC)
	assert.Equal(t, NewTimeOfDay(14, 30, 12), TimeOfDayFromTime(clock))
}

func TestTimeOfDayJSON(t *testing.T) {
	b, err := json.Marshal(NewTimeOfDay(6, 45, 0))
	require.NoError(t, err)
	assert.JSONEq(t, `"06:45"`, string(b))

	var parsed TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"17:20"`), &parsed))
	assert.Equal(t, NewTimeOfDay(17, 20, 0), parsed)

	assert.Error(t, json.Unmarshal([]byte(`"25:00"`), &parsed))
}

func TestDuration(t *testing.T) {
	testCases := []struct {
		name       string
		start, end TimeOfDay
		want       time.Duration
	}{
		{name: "SameHour", start: NewTimeOfDay(8, 0, 0), end: NewTimeOfDay(8, 45, 0), want: 45 * time.Minute},
		{name: "MidnightRollover", start: NewTimeOfDay(23, 50, 0), end: NewTimeOfDay(0, 10, 0), want: 20 * time.Minute},
		{name: "Zero", start: NewTimeOfDay(9, 0, 0), end: NewTimeOfDay(9, 0, 0), want: 0},
		{name: "Seconds", start: NewTimeOfDay(10, 0, 30), end: NewTimeOfDay(10, 1, 0), want: 30 * time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Duration(tc.start, tc.end))
		})
	}
}
