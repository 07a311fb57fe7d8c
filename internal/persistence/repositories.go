package persistence

import (
	"context"
	"time"
)

// SpaceRepository exposes space inventory reads and the seeding writes the
// surrounding administration layer performs.
type SpaceRepository interface {
	CreateSpace(ctx context.Context, space Space) error
	UpdateSpace(ctx context.Context, space Space) error
	GetSpace(ctx context.Context, id string) (Space, error)
	ListSpaces(ctx context.Context, tenantID string) ([]Space, error)
}

// BookingRuleRepository stores booking policies.
type BookingRuleRepository interface {
	CreateRule(ctx context.Context, rule BookingRule) error
	UpdateRule(ctx context.Context, rule BookingRule) error
	GetRule(ctx context.Context, id string) (BookingRule, error)
	ListActiveRules(ctx context.Context, tenantID string) ([]BookingRule, error)
}

// BookingFilter narrows booking queries. Zero-valued fields are ignored.
type BookingFilter struct {
	TenantID string
	SpaceID  string
	UserID   string
	OfficeID string
	Statuses []string

	// OverlapStart and OverlapEnd, when both set, select bookings whose
	// half-open interval overlaps [OverlapStart, OverlapEnd).
	OverlapStart *time.Time
	OverlapEnd   *time.Time

	// StartsFrom selects bookings starting at or after the instant.
	StartsFrom *time.Time
	// StartedBefore selects bookings starting strictly before the instant.
	StartedBefore *time.Time
	// EndedBy selects bookings ending at or before the instant.
	EndedBy *time.Time
}

// BookingRepository stores reservations. CreateBooking re-validates the
// capacity constraint inside its transaction and returns ErrDuplicate when
// the insert would exceed the space's capacity, so a missed in-process lock
// surfaces as a storage conflict instead of silent corruption.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	UpdateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
}

// CheckInEventRepository stores check-in records. CreateEvent returns
// ErrDuplicate for a second event on the same (booking, calendar date).
type CheckInEventRepository interface {
	CreateEvent(ctx context.Context, event CheckInEvent) error
	ListEventsForBooking(ctx context.Context, bookingID string) ([]CheckInEvent, error)
}
