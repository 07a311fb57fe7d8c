// Package testfixtures provides deterministic builders for the booking
// domain's test data.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/booking-engine/internal/application"
	"github.com/example/booking-engine/internal/rules"
)

var (
	spaceCounter   uint64
	ruleCounter    uint64
	bookingCounter uint64
)

var referenceTime = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It falls on a Monday so weekday rules behave predictably.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Space fixtures -----------------------------

// SpaceOption configures the generated space.
type SpaceOption func(*application.Space)

// NewSpace returns a deterministic active desk with optional overrides.
func NewSpace(opts ...SpaceOption) application.Space {
	idx := atomic.AddUint64(&spaceCounter, 1)
	created := referenceTime.Add(-time.Duration(idx) * time.Hour)
	space := application.Space{
		ID:        fmt.Sprintf("space-%03d", idx),
		TenantID:  "tenant-1",
		OfficeID:  "office-1",
		Name:      fmt.Sprintf("Desk %03d", idx),
		Type:      application.SpaceTypeDesk,
		Capacity:  1,
		IsActive:  true,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&space)
	}
	return space
}

// WithSpaceID overrides the generated identifier.
func WithSpaceID(id string) SpaceOption {
	return func(s *application.Space) { s.ID = id }
}

// WithSpaceTenant overrides the tenant.
func WithSpaceTenant(tenantID string) SpaceOption {
	return func(s *application.Space) { s.TenantID = tenantID }
}

// WithSpaceOffice overrides the office.
func WithSpaceOffice(officeID string) SpaceOption {
	return func(s *application.Space) { s.OfficeID = officeID }
}

// WithSpaceType overrides the space type.
func WithSpaceType(spaceType application.SpaceType) SpaceOption {
	return func(s *application.Space) { s.Type = spaceType }
}

// WithSpaceCapacity overrides the capacity.
func WithSpaceCapacity(capacity int) SpaceOption {
	return func(s *application.Space) { s.Capacity = capacity }
}

// WithSpaceApproval marks the space as requiring approval.
func WithSpaceApproval() SpaceOption {
	return func(s *application.Space) { s.RequiresApproval = true }
}

// WithInactiveSpace marks the space as decommissioned.
func WithInactiveSpace() SpaceOption {
	return func(s *application.Space) { s.IsActive = false }
}

// ----------------------------- Rule fixtures ------------------------------

// RuleOption configures the generated rule.
type RuleOption func(*rules.Rule)

// NewRule returns a deterministic active office-wide rule with optional
// overrides.
func NewRule(opts ...RuleOption) rules.Rule {
	idx := atomic.AddUint64(&ruleCounter, 1)
	rule := rules.Rule{
		ID:             fmt.Sprintf("rule-%03d", idx),
		TenantID:       "tenant-1",
		Scope:          rules.Scope{Kind: rules.ScopeOffice, OfficeID: "office-1"},
		AllowRecurring: true,
		Active:         true,
		CreatedAt:      referenceTime.Add(-24*time.Hour + time.Duration(idx)*time.Minute),
	}
	for _, opt := range opts {
		opt(&rule)
	}
	return rule
}

// WithRuleScope overrides the rule's target.
func WithRuleScope(scope rules.Scope) RuleOption {
	return func(r *rules.Rule) { r.Scope = scope }
}

// WithRulePriority overrides the tie-break priority.
func WithRulePriority(priority int) RuleOption {
	return func(r *rules.Rule) { r.Priority = priority }
}

// WithRuleDurationBounds sets the minimum and maximum duration. A zero value
// leaves the bound unset.
func WithRuleDurationBounds(min, max time.Duration) RuleOption {
	return func(r *rules.Rule) {
		if min > 0 {
			r.MinDuration = &min
		}
		if max > 0 {
			r.MaxDuration = &max
		}
	}
}

// WithRuleAdvanceBounds sets the minimum and maximum lead time. A zero value
// leaves the bound unset.
func WithRuleAdvanceBounds(min, max time.Duration) RuleOption {
	return func(r *rules.Rule) {
		if min > 0 {
			r.MinAdvance = &min
		}
		if max > 0 {
			r.MaxAdvance = &max
		}
	}
}

// WithRuleAllowedDays restricts the weekdays a booking may start on.
func WithRuleAllowedDays(days ...time.Weekday) RuleOption {
	return func(r *rules.Rule) { r.AllowedDays = days }
}

// WithRuleTimeOfDay bounds booking hours in minutes from midnight UTC.
func WithRuleTimeOfDay(startMinute, endMinute int) RuleOption {
	return func(r *rules.Rule) {
		r.AllowedStartMinute = &startMinute
		r.AllowedEndMinute = &endMinute
	}
}

// WithRuleApproval marks governed bookings as needing approval, optionally
// exempting the given roles.
func WithRuleApproval(autoApproveRoles ...string) RuleOption {
	return func(r *rules.Rule) {
		r.RequiresApproval = true
		r.AutoApproveRoles = autoApproveRoles
	}
}

// WithRuleRecurrence configures series admission.
func WithRuleRecurrence(allowed bool, maxWeeks int) RuleOption {
	return func(r *rules.Rule) {
		r.AllowRecurring = allowed
		r.MaxRecurringWeeks = maxWeeks
	}
}

// WithRuleQuotas sets per-user caps. A zero value leaves the cap unset.
func WithRuleQuotas(perDay, perWeek int) RuleOption {
	return func(r *rules.Rule) {
		if perDay > 0 {
			r.MaxPerUserPerDay = &perDay
		}
		if perWeek > 0 {
			r.MaxPerUserPerWeek = &perWeek
		}
	}
}

// WithInactiveRule deactivates the rule.
func WithInactiveRule() RuleOption {
	return func(r *rules.Rule) { r.Active = false }
}

// WithRuleCreatedAt overrides the creation timestamp.
func WithRuleCreatedAt(t time.Time) RuleOption {
	return func(r *rules.Rule) { r.CreatedAt = t }
}

// ---------------------------- Booking fixtures ----------------------------

// BookingOption configures the generated booking.
type BookingOption func(*application.Booking)

// NewBooking returns a deterministic reserved one-hour booking anchored at
// ReferenceTime, with optional overrides.
func NewBooking(opts ...BookingOption) application.Booking {
	idx := atomic.AddUint64(&bookingCounter, 1)
	booking := application.Booking{
		ID:             fmt.Sprintf("booking-%03d", idx),
		TenantID:       "tenant-1",
		SpaceID:        "space-001",
		UserID:         "alice",
		Start:          referenceTime,
		End:            referenceTime.Add(time.Hour),
		Status:         application.StatusReserved,
		BookedByUserID: "alice",
		BookedAt:       referenceTime.Add(-24 * time.Hour),
		CreatedAt:      referenceTime.Add(-24 * time.Hour),
		UpdatedAt:      referenceTime.Add(-24 * time.Hour),
	}
	for _, opt := range opts {
		opt(&booking)
	}
	return booking
}

// WithBookingID overrides the generated identifier.
func WithBookingID(id string) BookingOption {
	return func(b *application.Booking) { b.ID = id }
}

// WithBookingSpace overrides the space.
func WithBookingSpace(spaceID string) BookingOption {
	return func(b *application.Booking) { b.SpaceID = spaceID }
}

// WithBookingUser sets both the owner and the booker.
func WithBookingUser(userID string) BookingOption {
	return func(b *application.Booking) {
		b.UserID = userID
		b.BookedByUserID = userID
	}
}

// WithBookingInterval overrides the reserved window.
func WithBookingInterval(start, end time.Time) BookingOption {
	return func(b *application.Booking) {
		b.Start = start
		b.End = end
	}
}

// WithBookingStatus overrides the lifecycle state.
func WithBookingStatus(status application.BookingStatus) BookingOption {
	return func(b *application.Booking) { b.Status = status }
}

// WithPermanentBooking exempts the booking from the no-show sweep.
func WithPermanentBooking() BookingOption {
	return func(b *application.Booking) { b.IsPermanent = true }
}
