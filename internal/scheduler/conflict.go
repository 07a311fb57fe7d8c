// Package scheduler performs capacity-aware overlap detection for a single
// space. It is pure: callers supply the candidate interval and the space's
// active bookings, and receive the set of blocking bookings when admitting
// the candidate would exceed capacity.
package scheduler

import (
	"github.com/example/booking-engine/internal/interval"
)

// Booking is the slice of a persisted booking that conflict detection needs.
type Booking struct {
	ID       string
	UserID   string
	Interval interval.Interval
}

// Conflict reports that a candidate interval cannot be admitted and names
// the active bookings occupying the space.
type Conflict struct {
	Capacity    int
	Overlapping int
	Blocking    []Booking
}

// DetectCapacityConflict counts existing bookings overlapping the candidate
// interval. When admitting one more would exceed the space's capacity, it
// returns a Conflict listing every overlapping booking; otherwise nil.
// Capacity 1 degenerates to plain mutual exclusion.
func DetectCapacityConflict(capacity int, candidate interval.Interval, existing []Booking) *Conflict {
	if capacity < 1 {
		capacity = 1
	}

	blocking := make([]Booking, 0)
	for _, booking := range existing {
		if booking.Interval.Overlaps(candidate) {
			blocking = append(blocking, booking)
		}
	}

	if len(blocking)+1 <= capacity {
		return nil
	}

	return &Conflict{
		Capacity:    capacity,
		Overlapping: len(blocking),
		Blocking:    blocking,
	}
}

// BlockingIDs returns the identifiers of the bookings occupying the space,
// in the order they were supplied.
func (c *Conflict) BlockingIDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, len(c.Blocking))
	for i, booking := range c.Blocking {
		ids[i] = booking.ID
	}
	return ids
}
