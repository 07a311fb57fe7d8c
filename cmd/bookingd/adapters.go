package main

import (
	"context"
	"time"

	"github.com/example/booking-engine/internal/application"
	"github.com/example/booking-engine/internal/interval"
	"github.com/example/booking-engine/internal/persistence"
	"github.com/example/booking-engine/internal/rules"
)

var activeStatuses = []string{
	string(application.StatusReserved),
	string(application.StatusCheckedIn),
}

// spaceCatalogAdapter exposes the space table as the catalog the admission
// service consumes.
type spaceCatalogAdapter struct {
	repo persistence.SpaceRepository
}

func newSpaceCatalogAdapter(repo persistence.SpaceRepository) *spaceCatalogAdapter {
	return &spaceCatalogAdapter{repo: repo}
}

func (a *spaceCatalogAdapter) GetSpace(ctx context.Context, id string) (application.Space, error) {
	stored, err := a.repo.GetSpace(ctx, id)
	if err != nil {
		return application.Space{}, err
	}
	return toApplicationSpace(stored), nil
}

// ruleSourceAdapter converts stored rule rows into domain rules.
type ruleSourceAdapter struct {
	repo persistence.BookingRuleRepository
}

func newRuleSourceAdapter(repo persistence.BookingRuleRepository) *ruleSourceAdapter {
	return &ruleSourceAdapter{repo: repo}
}

func (a *ruleSourceAdapter) ActiveRules(ctx context.Context, tenantID string) ([]rules.Rule, error) {
	stored, err := a.repo.ListActiveRules(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	converted := make([]rules.Rule, 0, len(stored))
	for _, row := range stored {
		converted = append(converted, toDomainRule(row))
	}
	return converted, nil
}

// bookingStoreAdapter backs both the admission store and the lifecycle
// store with the booking table.
type bookingStoreAdapter struct {
	repo persistence.BookingRepository
}

func newBookingStoreAdapter(repo persistence.BookingRepository) *bookingStoreAdapter {
	return &bookingStoreAdapter{repo: repo}
}

func (a *bookingStoreAdapter) CreateBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	if err := a.repo.CreateBooking(ctx, toPersistenceBooking(booking)); err != nil {
		return application.Booking{}, err
	}
	stored, err := a.repo.GetBooking(ctx, booking.ID)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingStoreAdapter) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	stored, err := a.repo.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingStoreAdapter) UpdateBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	if err := a.repo.UpdateBooking(ctx, toPersistenceBooking(booking)); err != nil {
		return application.Booking{}, err
	}
	stored, err := a.repo.GetBooking(ctx, booking.ID)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingStoreAdapter) ListActiveForSpace(ctx context.Context, spaceID string, within interval.Interval) ([]application.Booking, error) {
	start := within.Start
	end := within.End
	stored, err := a.repo.ListBookings(ctx, persistence.BookingFilter{
		SpaceID:      spaceID,
		Statuses:     activeStatuses,
		OverlapStart: &start,
		OverlapEnd:   &end,
	})
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(stored), nil
}

func (a *bookingStoreAdapter) ListActiveForUser(ctx context.Context, tenantID, userID string, from, to time.Time) ([]application.Booking, error) {
	stored, err := a.repo.ListBookings(ctx, persistence.BookingFilter{
		TenantID:      tenantID,
		UserID:        userID,
		Statuses:      activeStatuses,
		StartsFrom:    &from,
		StartedBefore: &to,
	})
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(stored), nil
}

func (a *bookingStoreAdapter) ListReservedStartedBefore(ctx context.Context, cutoff time.Time) ([]application.Booking, error) {
	stored, err := a.repo.ListBookings(ctx, persistence.BookingFilter{
		Statuses:      []string{string(application.StatusReserved)},
		StartedBefore: &cutoff,
	})
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(stored), nil
}

func (a *bookingStoreAdapter) ListCheckedInEndedBefore(ctx context.Context, cutoff time.Time) ([]application.Booking, error) {
	stored, err := a.repo.ListBookings(ctx, persistence.BookingFilter{
		Statuses: []string{string(application.StatusCheckedIn)},
		EndedBy:  &cutoff,
	})
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(stored), nil
}

// checkInEventStoreAdapter backs the check-in event store with the event
// table.
type checkInEventStoreAdapter struct {
	repo persistence.CheckInEventRepository
}

func newCheckInEventStoreAdapter(repo persistence.CheckInEventRepository) *checkInEventStoreAdapter {
	return &checkInEventStoreAdapter{repo: repo}
}

func (a *checkInEventStoreAdapter) CreateEvent(ctx context.Context, event application.CheckInEvent) (application.CheckInEvent, error) {
	err := a.repo.CreateEvent(ctx, persistence.CheckInEvent{
		ID:                event.ID,
		BookingID:         event.BookingID,
		Timestamp:         event.Timestamp,
		CheckInDate:       event.CheckInDate,
		Method:            string(event.Method),
		ProcessedByUserID: event.ProcessedByUserID,
	})
	if err != nil {
		return application.CheckInEvent{}, err
	}
	return event, nil
}

func (a *checkInEventStoreAdapter) ListEventsForBooking(ctx context.Context, bookingID string) ([]application.CheckInEvent, error) {
	stored, err := a.repo.ListEventsForBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	events := make([]application.CheckInEvent, 0, len(stored))
	for _, row := range stored {
		events = append(events, application.CheckInEvent{
			ID:                row.ID,
			BookingID:         row.BookingID,
			Timestamp:         row.Timestamp,
			CheckInDate:       row.CheckInDate,
			Method:            application.CheckInMethod(row.Method),
			ProcessedByUserID: row.ProcessedByUserID,
		})
	}
	return events, nil
}

func toApplicationSpace(stored persistence.Space) application.Space {
	return application.Space{
		ID:               stored.ID,
		TenantID:         stored.TenantID,
		OfficeID:         stored.OfficeID,
		Name:             stored.Name,
		Type:             application.SpaceType(stored.Type),
		Capacity:         stored.Capacity,
		Floor:            stored.Floor,
		Zone:             stored.Zone,
		RequiresApproval: stored.RequiresApproval,
		IsActive:         stored.IsActive,
		CreatedAt:        stored.CreatedAt,
		UpdatedAt:        stored.UpdatedAt,
	}
}

func toDomainRule(stored persistence.BookingRule) rules.Rule {
	rule := rules.Rule{
		ID:                 stored.ID,
		TenantID:           stored.TenantID,
		MinDuration:        minutesToDuration(stored.MinDurationMinutes),
		MaxDuration:        minutesToDuration(stored.MaxDurationMinutes),
		MinAdvance:         minutesToDuration(stored.MinAdvanceMinutes),
		MaxAdvance:         minutesToDuration(stored.MaxAdvanceMinutes),
		AllowedStartMinute: stored.AllowedStartMinute,
		AllowedEndMinute:   stored.AllowedEndMinute,
		AllowRecurring:     stored.AllowRecurring,
		MaxRecurringWeeks:  stored.MaxRecurringWeeks,
		RequiresApproval:   stored.RequiresApproval,
		AutoApproveRoles:   stored.AutoApproveRoles,
		MaxPerUserPerDay:   stored.MaxPerUserPerDay,
		MaxPerUserPerWeek:  stored.MaxPerUserPerWeek,
		Priority:           stored.Priority,
		Active:             stored.Active,
		CreatedAt:          stored.CreatedAt,
	}
	switch {
	case stored.ScopeSpaceID != nil:
		rule.Scope = rules.Scope{Kind: rules.ScopeSpace, SpaceID: *stored.ScopeSpaceID}
	case stored.ScopeSpaceType != nil:
		rule.Scope = rules.Scope{Kind: rules.ScopeSpaceType, SpaceType: *stored.ScopeSpaceType}
	case stored.ScopeOfficeID != nil:
		rule.Scope = rules.Scope{Kind: rules.ScopeOffice, OfficeID: *stored.ScopeOfficeID}
	}
	for _, day := range stored.AllowedDays {
		if day >= 0 && day <= 6 {
			rule.AllowedDays = append(rule.AllowedDays, time.Weekday(day))
		}
	}
	return rule
}

func minutesToDuration(minutes *int) *time.Duration {
	if minutes == nil {
		return nil
	}
	d := time.Duration(*minutes) * time.Minute
	return &d
}

func toPersistenceBooking(booking application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:              booking.ID,
		TenantID:        booking.TenantID,
		SpaceID:         booking.SpaceID,
		UserID:          booking.UserID,
		Start:           booking.Start,
		End:             booking.End,
		Status:          string(booking.Status),
		IsPermanent:     booking.IsPermanent,
		ApprovalPending: booking.ApprovalPending,
		ApprovedBy:      booking.ApprovedBy,
		ApprovedAt:      booking.ApprovedAt,
		BookedByUserID:  booking.BookedByUserID,
		BookedAt:        booking.BookedAt,
		CreatedAt:       booking.CreatedAt,
		UpdatedAt:       booking.UpdatedAt,
	}
}

func toApplicationBooking(stored persistence.Booking) application.Booking {
	return application.Booking{
		ID:              stored.ID,
		TenantID:        stored.TenantID,
		SpaceID:         stored.SpaceID,
		UserID:          stored.UserID,
		Start:           stored.Start,
		End:             stored.End,
		Status:          application.BookingStatus(stored.Status),
		IsPermanent:     stored.IsPermanent,
		ApprovalPending: stored.ApprovalPending,
		ApprovedBy:      stored.ApprovedBy,
		ApprovedAt:      stored.ApprovedAt,
		BookedByUserID:  stored.BookedByUserID,
		BookedAt:        stored.BookedAt,
		CreatedAt:       stored.CreatedAt,
		UpdatedAt:       stored.UpdatedAt,
	}
}

func toApplicationBookings(stored []persistence.Booking) []application.Booking {
	bookings := make([]application.Booking, 0, len(stored))
	for _, row := range stored {
		bookings = append(bookings, toApplicationBooking(row))
	}
	return bookings
}
