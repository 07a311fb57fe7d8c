package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/booking-engine/internal/persistence"
)

// BookingLifecycleStore captures the persistence interactions the check-in
// lifecycle needs.
type BookingLifecycleStore interface {
	GetBooking(ctx context.Context, id string) (Booking, error)
	UpdateBooking(ctx context.Context, booking Booking) (Booking, error)
	// ListReservedStartedBefore returns reserved bookings whose start is
	// strictly before the cutoff.
	ListReservedStartedBefore(ctx context.Context, cutoff time.Time) ([]Booking, error)
	// ListCheckedInEndedBefore returns checked-in bookings whose end is at
	// or before the cutoff.
	ListCheckedInEndedBefore(ctx context.Context, cutoff time.Time) ([]Booking, error)
}

// CheckInEventStore persists check-in records.
type CheckInEventStore interface {
	CreateEvent(ctx context.Context, event CheckInEvent) (CheckInEvent, error)
	ListEventsForBooking(ctx context.Context, bookingID string) ([]CheckInEvent, error)
}

// checkInDateLayout is the UTC calendar date key of a check-in event.
const checkInDateLayout = "2006-01-02"

// CheckInService drives a booking through its post-admission lifecycle:
// reserved to checked-in or no-show, then completed or cancelled.
type CheckInService struct {
	bookings    BookingLifecycleStore
	events      CheckInEventStore
	grace       time.Duration
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewCheckInService wires dependencies for lifecycle operations. The grace
// duration bounds the check-in window around a booking's start; when not
// positive, 15 minutes is used.
func NewCheckInService(bookings BookingLifecycleStore, events CheckInEventStore, grace time.Duration, idGenerator func() string, now func() time.Time) *CheckInService {
	return NewCheckInServiceWithLogger(bookings, events, grace, idGenerator, now, nil)
}

// NewCheckInServiceWithLogger wires dependencies and a base logger.
func NewCheckInServiceWithLogger(bookings BookingLifecycleStore, events CheckInEventStore, grace time.Duration, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CheckInService {
	if grace <= 0 {
		grace = 15 * time.Minute
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CheckInService{
		bookings:    bookings,
		events:      events,
		grace:       grace,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CheckIn records an arrival for the booking. A reserved booking may check
// in within the grace window around its start and transitions to
// checked-in. A checked-in booking may record further arrivals on later
// calendar dates while it is still running. A second event on the same
// date, or any attempt after a terminal state, is rejected rather than
// absorbed.
func (s *CheckInService) CheckIn(ctx context.Context, bookingID string, method CheckInMethod, principal Principal) (CheckInEvent, error) {
	if s == nil {
		return CheckInEvent{}, fmt.Errorf("CheckInService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "checkin", "check_in", "booking_id", bookingID)

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return CheckInEvent{}, mapRepoError(err)
	}
	if booking.UserID != principal.UserID && !principal.IsAdmin {
		return CheckInEvent{}, ErrUnauthorized
	}

	at := s.now().UTC()

	switch booking.Status {
	case StatusReserved:
		if at.Before(booking.Start.Add(-s.grace)) || at.After(booking.Start.Add(s.grace)) {
			return CheckInEvent{}, ErrOutsideGraceWindow
		}
	case StatusCheckedIn:
		if !at.Before(booking.End) {
			return CheckInEvent{}, ErrBookingClosed
		}
	default:
		return CheckInEvent{}, ErrBookingClosed
	}

	var processedBy *string
	if principal.UserID != "" && principal.UserID != booking.UserID {
		actor := principal.UserID
		processedBy = &actor
	}

	event := CheckInEvent{
		ID:                s.idGenerator(),
		BookingID:         booking.ID,
		Timestamp:         at,
		CheckInDate:       at.Format(checkInDateLayout),
		Method:            method,
		ProcessedByUserID: processedBy,
	}

	created, err := s.events.CreateEvent(ctx, event)
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return CheckInEvent{}, ErrAlreadyCheckedIn
		}
		return CheckInEvent{}, err
	}

	if booking.Status == StatusReserved {
		booking.Status = StatusCheckedIn
		booking.UpdatedAt = at
		if _, err := s.bookings.UpdateBooking(ctx, booking); err != nil {
			return CheckInEvent{}, err
		}
	}

	logger.Info("booking checked in", "method", string(method), "check_in_date", created.CheckInDate)
	return created, nil
}

// Cancel moves a reserved or checked-in booking to cancelled. Only the
// booking's owner or an administrator may cancel, and only before the
// booking's end.
func (s *CheckInService) Cancel(ctx context.Context, bookingID string, principal Principal) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("CheckInService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "checkin", "cancel", "booking_id", bookingID)

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return Booking{}, mapRepoError(err)
	}
	if booking.UserID != principal.UserID && !principal.IsAdmin {
		return Booking{}, ErrUnauthorized
	}

	at := s.now().UTC()
	if booking.Status.Terminal() || !at.Before(booking.End) {
		return Booking{}, ErrBookingClosed
	}

	booking.Status = StatusCancelled
	booking.UpdatedAt = at

	updated, err := s.bookings.UpdateBooking(ctx, booking)
	if err != nil {
		return Booking{}, mapRepoError(err)
	}

	logger.Info("booking cancelled")
	return updated, nil
}

// SweepNoShows transitions reserved bookings whose grace window elapsed
// without a check-in to no-show. Permanent bookings are exempt from the
// sweep; they still count toward capacity. Returns the number of bookings
// transitioned.
func (s *CheckInService) SweepNoShows(ctx context.Context) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("CheckInService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "checkin", "sweep_no_shows")

	at := s.now().UTC()
	overdue, err := s.bookings.ListReservedStartedBefore(ctx, at.Add(-s.grace))
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, booking := range overdue {
		if booking.IsPermanent {
			continue
		}
		booking.Status = StatusNoShow
		booking.UpdatedAt = at
		if _, err := s.bookings.UpdateBooking(ctx, booking); err != nil {
			return swept, err
		}
		swept++
	}

	if swept > 0 {
		logger.Info("no-show sweep finished", "transitioned", swept)
	}
	return swept, nil
}

// CompleteElapsed transitions checked-in bookings whose end has passed to
// completed. Returns the number of bookings transitioned.
func (s *CheckInService) CompleteElapsed(ctx context.Context) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("CheckInService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "checkin", "complete_elapsed")

	at := s.now().UTC()
	elapsed, err := s.bookings.ListCheckedInEndedBefore(ctx, at)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, booking := range elapsed {
		booking.Status = StatusCompleted
		booking.UpdatedAt = at
		if _, err := s.bookings.UpdateBooking(ctx, booking); err != nil {
			return completed, err
		}
		completed++
	}

	if completed > 0 {
		logger.Info("completion sweep finished", "transitioned", completed)
	}
	return completed, nil
}
