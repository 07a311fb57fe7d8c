package persistence

import "time"

// Space is a bookable physical resource as stored.
type Space struct {
	ID               string
	TenantID         string
	OfficeID         string
	Name             string
	Type             string
	Capacity         int
	Floor            string
	Zone             string
	RequiresApproval bool
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BookingRule is a booking policy row. Exactly one of ScopeOfficeID,
// ScopeSpaceType and ScopeSpaceID is non-nil.
type BookingRule struct {
	ID       string
	TenantID string

	ScopeOfficeID  *string
	ScopeSpaceType *string
	ScopeSpaceID   *string

	MinDurationMinutes *int
	MaxDurationMinutes *int
	MinAdvanceMinutes  *int
	MaxAdvanceMinutes  *int

	// AllowedDays holds weekday numbers 0 (Sunday) through 6 (Saturday).
	AllowedDays        []int
	AllowedStartMinute *int
	AllowedEndMinute   *int

	AllowRecurring    bool
	MaxRecurringWeeks int

	RequiresApproval bool
	AutoApproveRoles []string

	MaxPerUserPerDay  *int
	MaxPerUserPerWeek *int

	Priority  int
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Booking is a reservation row. Start and End are stored in UTC.
type Booking struct {
	ID              string
	TenantID        string
	SpaceID         string
	UserID          string
	Start           time.Time
	End             time.Time
	Status          string
	IsPermanent     bool
	ApprovalPending bool
	ApprovedBy      *string
	ApprovedAt      *time.Time
	BookedByUserID  string
	BookedAt        time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CheckInEvent records a confirmed arrival for a booking. CheckInDate is
// the UTC calendar date of Timestamp; at most one event exists per
// (BookingID, CheckInDate).
type CheckInEvent struct {
	ID                string
	BookingID         string
	Timestamp         time.Time
	CheckInDate       string
	Method            string
	ProcessedByUserID *string
	CreatedAt         time.Time
}
