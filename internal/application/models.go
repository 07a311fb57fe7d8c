package application

import (
	"time"
)

// Principal represents the requesting user as reported by the surrounding
// identity layer. The engine treats tenant and role as trusted inputs.
type Principal struct {
	UserID   string
	TenantID string
	Role     string
	IsAdmin  bool
}

// SpaceType classifies a bookable resource.
type SpaceType string

const (
	SpaceTypeDesk           SpaceType = "desk"
	SpaceTypeHotDesk        SpaceType = "hot_desk"
	SpaceTypeOffice         SpaceType = "office"
	SpaceTypeCubicle        SpaceType = "cubicle"
	SpaceTypeRoom           SpaceType = "room"
	SpaceTypeConferenceRoom SpaceType = "conference_room"
	SpaceTypeHuddleRoom     SpaceType = "huddle_room"
	SpaceTypePhoneBooth     SpaceType = "phone_booth"
	SpaceTypeTrainingRoom   SpaceType = "training_room"
	SpaceTypeBreakRoom      SpaceType = "break_room"
	SpaceTypeParkingSpot    SpaceType = "parking_spot"
)

// Space is a shared bookable physical resource with finite capacity.
type Space struct {
	ID               string
	TenantID         string
	OfficeID         string
	Name             string
	Type             SpaceType
	Capacity         int
	Floor            string
	Zone             string
	RequiresApproval bool
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	// StatusReserved is the initial state of an admitted booking.
	StatusReserved BookingStatus = "reserved"
	// StatusCheckedIn means the user confirmed arrival.
	StatusCheckedIn BookingStatus = "checked_in"
	// StatusNoShow means the grace window elapsed without a check-in.
	StatusNoShow BookingStatus = "no_show"
	// StatusCompleted means the booking ended after a check-in.
	StatusCompleted BookingStatus = "completed"
	// StatusCancelled means the owner or an administrator cancelled it.
	StatusCancelled BookingStatus = "cancelled"
)

// Active reports whether the status counts toward capacity and quotas.
func (s BookingStatus) Active() bool {
	return s == StatusReserved || s == StatusCheckedIn
}

// Terminal reports whether no further transition is possible.
func (s BookingStatus) Terminal() bool {
	return s == StatusNoShow || s == StatusCompleted || s == StatusCancelled
}

// Booking is an admitted reservation of a space over [Start, End).
type Booking struct {
	ID       string
	TenantID string
	SpaceID  string
	UserID   string
	Start    time.Time
	End      time.Time
	Status   BookingStatus

	// IsPermanent exempts the booking from the no-show sweep. It does not
	// exempt it from capacity conflicts.
	IsPermanent bool

	ApprovalPending bool
	ApprovedBy      *string
	ApprovedAt      *time.Time

	BookedByUserID string
	BookedAt       time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CheckInMethod records how a check-in was submitted.
type CheckInMethod string

const (
	CheckInMethodWeb    CheckInMethod = "web"
	CheckInMethodKiosk  CheckInMethod = "kiosk"
	CheckInMethodMobile CheckInMethod = "mobile"
)

// CheckInEvent records a confirmed arrival. At most one exists per booking
// and UTC calendar date.
type CheckInEvent struct {
	ID                string
	BookingID         string
	Timestamp         time.Time
	CheckInDate       string
	Method            CheckInMethod
	ProcessedByUserID *string
}

// Outcome is the admission decision for one request or series instance.
type Outcome string

const (
	// OutcomeApproved means the booking was created ready to use.
	OutcomeApproved Outcome = "approved"
	// OutcomePending means the booking was created awaiting approval.
	OutcomePending Outcome = "pending"
	// OutcomeRejected means nothing was persisted; Reason explains why.
	OutcomeRejected Outcome = "rejected"
)

// Decision is the structured result of one admission request.
type Decision struct {
	Outcome   Outcome
	BookingID string
	// Reason carries the typed rejection (*ValidationError, *ConflictError
	// or *QuotaExceededError) when Outcome is rejected.
	Reason error
}

// AdmissionRequest asks for a single reservation of a space.
type AdmissionRequest struct {
	Principal   Principal
	SpaceID     string
	Start       time.Time
	End         time.Time
	IsPermanent bool
}

// RecurringRequest asks for a weekly series anchored at FirstStart.
type RecurringRequest struct {
	Principal   Principal
	SpaceID     string
	FirstStart  time.Time
	Duration    time.Duration
	Weeks       int
	IsPermanent bool
}

// InstanceOutcome pairs one series instance with its independent decision.
type InstanceOutcome struct {
	Start    time.Time
	Decision Decision
}

// SeriesResult is the ordered outcome list of a recurring request. Partial
// acceptance is the caller's call: rejected instances are recorded, never
// swallowed, and never abort the rest of the series.
type SeriesResult struct {
	Instances []InstanceOutcome
}

// ApprovedCount returns how many instances were admitted (approved or
// pending).
func (r SeriesResult) ApprovedCount() int {
	n := 0
	for _, inst := range r.Instances {
		if inst.Decision.Outcome != OutcomeRejected {
			n++
		}
	}
	return n
}
