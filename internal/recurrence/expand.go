// Package recurrence materializes a recurring booking request into a
// bounded sequence of weekly instances. Expansion is purely structural:
// each instance must still be admitted independently by the caller.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/booking-engine/internal/interval"
)

// ErrRecurrenceDisallowed indicates the effective rule forbids recurring
// bookings for the target space.
var ErrRecurrenceDisallowed = errors.New("recurrence: recurring bookings are not allowed")

// ErrTooManyWeeks indicates the requested series exceeds the rule's
// maximum recurring weeks.
var ErrTooManyWeeks = errors.New("recurrence: series exceeds the allowed number of weeks")

// ErrInvalidWeeks indicates the requested week count is not positive.
var ErrInvalidWeeks = errors.New("recurrence: week count must be at least 1")

// Allowance carries the recurrence constraints of the effective rule.
type Allowance struct {
	Allowed  bool
	MaxWeeks int
}

// weekStride is the distance between consecutive instances. Shifting by a
// fixed duration rather than calendar days keeps every instance on the
// same UTC weekday and time of day.
const weekStride = 7 * 24 * time.Hour

// Expand materializes weeks instances of the base interval, one per week,
// preserving the base's day-of-week and time-of-day. The series is rejected
// outright when the allowance forbids recurrence or when weeks exceeds the
// allowed maximum; Expand never truncates silently.
func Expand(base interval.Interval, weeks int, allowance Allowance) ([]interval.Interval, error) {
	if weeks < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWeeks, weeks)
	}
	if !allowance.Allowed {
		return nil, ErrRecurrenceDisallowed
	}
	if allowance.MaxWeeks > 0 && weeks > allowance.MaxWeeks {
		return nil, fmt.Errorf("%w: requested %d, allowed %d", ErrTooManyWeeks, weeks, allowance.MaxWeeks)
	}

	instances := make([]interval.Interval, weeks)
	for week := 0; week < weeks; week++ {
		instances[week] = base.Shift(time.Duration(week) * weekStride)
	}
	return instances, nil
}
