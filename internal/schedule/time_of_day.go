package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// ErrInvalidTimeOfDay is returned when a clock string cannot be parsed.
var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// TimeOfDay is a wall-clock time expressed as seconds since midnight.
// It is stored as an integer column, the same way GTFS stop times are.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay, folding values past midnight back into the day.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return foldDay(hour*3600 + minute*60 + second)
}

// TimeOfDayFromTime extracts the clock part of t in t's own location.
func TimeOfDayFromTime(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
}

// TimeOfDayFromDuration converts an offset from midnight (e.g. a GTFS stop time, which may
// exceed 24h for trips running past midnight) into a TimeOfDay.
func TimeOfDayFromDuration(d time.Duration) TimeOfDay {
	return foldDay(int(d / time.Second))
}

// ParseTimeOfDay accepts "H:MM", "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}

	limits := []int{23, 59, 59}
	values := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > limits[i] {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
		values[i] = v
	}
	return NewTimeOfDay(values[0], values[1], values[2]), nil
}

func foldDay(seconds int) TimeOfDay {
	seconds %= secondsPerDay
	if seconds < 0 {
		seconds += secondsPerDay
	}
	return TimeOfDay(seconds)
}

func (t TimeOfDay) Hour() int   { return int(t) / 3600 }
func (t TimeOfDay) Minute() int { return int(t) % 3600 / 60 }
func (t TimeOfDay) Second() int { return int(t) % 60 }

// String renders HH:MM, or HH:MM:SS when seconds are set.
func (t TimeOfDay) String() string {
	if t.Second() != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
	}
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Duration returns the time elapsed from start to end. When end is earlier than start the
// trip is assumed to cross midnight once, so a run longer than 24h cannot be told apart
// from a same-day run that ends before it began.
func Duration(start, end TimeOfDay) time.Duration {
	diff := int(end) - int(start)
	if diff < 0 {
		diff += secondsPerDay
	}
	return time.Duration(diff) * time.Second
}
