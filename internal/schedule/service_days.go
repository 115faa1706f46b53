package schedule

import "time"

// AllDays is the packed value for a schedule that runs every day of the week.
const AllDays = 127

// ServiceDays holds one flag per weekday, Monday first.
type ServiceDays [7]bool

// ParseServiceDays decodes a packed 7-bit value (bit 0 = Monday ... bit 6 = Sunday).
// Bits above bit 6 are ignored; use ValidServiceDays to reject them upstream.
func ParseServiceDays(packed int) ServiceDays {
	var days ServiceDays
	for i := range days {
		days[i] = packed%2 == 1
		packed /= 2
	}
	return days
}

// ValidServiceDays reports whether packed fits in seven bits.
func ValidServiceDays(packed int) bool {
	return packed >= 0 && packed <= AllDays
}

// Pack is the inverse of ParseServiceDays.
func (d ServiceDays) Pack() int {
	packed := 0
	for i := len(d) - 1; i >= 0; i-- {
		packed *= 2
		if d[i] {
			packed++
		}
	}
	return packed
}

// On reports whether the schedule runs on the given weekday.
func (d ServiceDays) On(day time.Weekday) bool {
	// time.Weekday starts at Sunday = 0
	return d[(int(day)+6)%7]
}

// Any reports whether at least one day is set.
func (d ServiceDays) Any() bool {
	for _, on := range d {
		if on {
			return true
		}
	}
	return false
}
