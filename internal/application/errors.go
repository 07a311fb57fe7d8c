package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/booking-engine/internal/quota"
)

var (
	// ErrUnauthorized is returned when the acting principal may not perform
	// the operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyCheckedIn is returned for a second check-in on the same
	// booking and calendar date. Duplicate submissions are rejected, not
	// absorbed, so callers can tell a retry from a genuine duplicate.
	ErrAlreadyCheckedIn = errors.New("application: booking already checked in for this date")
	// ErrBookingClosed is returned when a lifecycle action targets a
	// booking in a terminal state or past its end.
	ErrBookingClosed = errors.New("application: booking is closed")
	// ErrOutsideGraceWindow is returned when a check-in arrives outside the
	// configured window around the booking start.
	ErrOutsideGraceWindow = errors.New("application: check-in outside the grace window")
	// ErrAdmissionFailed is returned after transient storage failures
	// exhaust their retry budget. It is deliberately distinct from the
	// user-facing rejection reasons.
	ErrAdmissionFailed = errors.New("application: admission failed")
)

// ValidationError captures field level validation issues that callers can
// surface to users. Structural rule violations are terminal and never
// retried.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(v.FieldErrors))
	for field, msg := range v.FieldErrors {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

func validationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.add(field, message)
	return v
}

// ConflictError reports a capacity violation on a space, naming the active
// bookings that block the candidate interval.
type ConflictError struct {
	SpaceID            string
	Capacity           int
	BlockingBookingIDs []string
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	if c == nil {
		return "booking conflict"
	}
	if len(c.BlockingBookingIDs) == 0 {
		return fmt.Sprintf("space %s is fully booked for the requested period", c.SpaceID)
	}
	return fmt.Sprintf("space %s is fully booked for the requested period (blocked by %s)",
		c.SpaceID, strings.Join(c.BlockingBookingIDs, ", "))
}

// QuotaExceededError reports that admitting the booking would break a
// per-user cap.
type QuotaExceededError struct {
	Scope quota.Scope
	Limit int
	Count int
}

// Error implements the error interface.
func (q *QuotaExceededError) Error() string {
	if q == nil {
		return "booking quota exceeded"
	}
	return fmt.Sprintf("booking quota exceeded: %d per %s (currently %d)", q.Limit, q.Scope, q.Count)
}

// ErrorKind maps sentinel and typed errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyCheckedIn):
		return "already_checked_in"
	case errors.Is(err, ErrOutsideGraceWindow):
		return "outside_grace_window"
	case errors.Is(err, ErrBookingClosed):
		return "booking_closed"
	case errors.Is(err, ErrAdmissionFailed):
		return "admission_failed"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	var cErr *ConflictError
	if errors.As(err, &cErr) {
		return "conflict"
	}
	var qErr *QuotaExceededError
	if errors.As(err, &qErr) {
		return "quota_exceeded"
	}

	return "unexpected"
}
