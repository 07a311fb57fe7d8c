package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/booking-engine/internal/interval"
	"github.com/example/booking-engine/internal/persistence"
	"github.com/example/booking-engine/internal/quota"
	"github.com/example/booking-engine/internal/recurrence"
	"github.com/example/booking-engine/internal/rules"
	"github.com/example/booking-engine/internal/scheduler"
)

// SpaceCatalog exposes space inventory lookups.
type SpaceCatalog interface {
	GetSpace(ctx context.Context, id string) (Space, error)
}

// RuleSource exposes the tenant's active booking rules.
type RuleSource interface {
	ActiveRules(ctx context.Context, tenantID string) ([]rules.Rule, error)
}

// BookingStore captures the persistence interactions admission needs.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	// ListActiveForSpace returns the space's bookings in {reserved,
	// checked_in} whose interval overlaps the given one.
	ListActiveForSpace(ctx context.Context, spaceID string, within interval.Interval) ([]Booking, error)
	// ListActiveForUser returns the user's active bookings starting in
	// [from, to).
	ListActiveForUser(ctx context.Context, tenantID, userID string, from, to time.Time) ([]Booking, error)
}

// RetryPolicy bounds retries of transient storage failures during the
// locked admission section.
type RetryPolicy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Factor       float64
}

// DefaultRetryPolicy mirrors the storage layer's defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Factor:       2.0,
	}
}

// systemApprover marks bookings approved automatically by the engine.
const systemApprover = "system"

// AdmissionService is the decision maker for booking requests. One request
// yields one Approved, Pending or Rejected decision; rejected requests
// persist nothing.
type AdmissionService struct {
	spaces      SpaceCatalog
	ruleSource  RuleSource
	bookings    BookingStore
	cache       *ruleCache
	locks       *spaceLocks
	retry       RetryPolicy
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAdmissionService wires dependencies for admission decisions.
func NewAdmissionService(spaces SpaceCatalog, ruleSource RuleSource, bookings BookingStore, idGenerator func() string, now func() time.Time) *AdmissionService {
	return NewAdmissionServiceWithLogger(spaces, ruleSource, bookings, idGenerator, now, nil)
}

// NewAdmissionServiceWithLogger wires dependencies and a base logger.
func NewAdmissionServiceWithLogger(spaces SpaceCatalog, ruleSource RuleSource, bookings BookingStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AdmissionService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AdmissionService{
		spaces:      spaces,
		ruleSource:  ruleSource,
		bookings:    bookings,
		cache:       newRuleCache(0, 0),
		locks:       newSpaceLocks(),
		retry:       DefaultRetryPolicy(),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// SetRetryPolicy overrides the transient-failure retry bounds.
func (s *AdmissionService) SetRetryPolicy(policy RetryPolicy) {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	if policy.InitialDelay <= 0 {
		policy.InitialDelay = time.Millisecond
	}
	if policy.Factor < 1 {
		policy.Factor = 1
	}
	s.retry = policy
}

// ConfigureRuleCache replaces the rule cache with one of the given size and
// TTL. Non-positive values fall back to the defaults.
func (s *AdmissionService) ConfigureRuleCache(size int, ttl time.Duration) {
	s.cache = newRuleCache(size, ttl)
}

// Decide evaluates a single reservation request. Structural violations,
// conflicts and quota hits come back as a rejected Decision with a typed
// Reason; the returned error is reserved for infrastructure failures.
func (s *AdmissionService) Decide(ctx context.Context, req AdmissionRequest) (Decision, error) {
	if s == nil {
		return Decision{}, fmt.Errorf("AdmissionService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "admission", "decide",
		"space_id", req.SpaceID, "user_id", req.Principal.UserID)

	space, err := s.spaces.GetSpace(ctx, req.SpaceID)
	if err != nil {
		return Decision{}, mapRepoError(err)
	}
	if space.TenantID != req.Principal.TenantID {
		return Decision{}, ErrUnauthorized
	}
	if !space.IsActive {
		return rejected(validationError("space", "space is not accepting bookings")), nil
	}

	iv, err := interval.New(req.Start, req.End)
	if err != nil {
		return rejected(validationError("interval", "end must be after start")), nil
	}

	rule, err := s.effectiveRule(ctx, space)
	if err != nil {
		return Decision{}, err
	}

	if vErr := validateAgainstRule(rule, iv, s.now()); vErr != nil {
		logger.Info("request rejected by rule", "rule_id", rule.ID, "error_kind", ErrorKind(vErr))
		return rejected(vErr), nil
	}

	unlock := s.locks.acquire(space.ID)
	defer unlock()

	decision, err := s.admitLocked(ctx, space, rule, req, iv)
	if err != nil {
		logger.Error("admission failed", "error", err, "error_kind", ErrorKind(err))
		return Decision{}, err
	}

	if decision.Outcome == OutcomeRejected {
		logger.Info("request rejected", "error_kind", ErrorKind(decision.Reason))
	} else {
		logger.Info("booking admitted", "booking_id", decision.BookingID, "outcome", string(decision.Outcome))
	}
	return decision, nil
}

// DecideRecurring expands a weekly series and admits each instance
// independently and sequentially, so later instances observe bookings
// created by earlier ones. A rejected instance never aborts the series.
func (s *AdmissionService) DecideRecurring(ctx context.Context, req RecurringRequest) (SeriesResult, error) {
	if s == nil {
		return SeriesResult{}, fmt.Errorf("AdmissionService is nil")
	}

	space, err := s.spaces.GetSpace(ctx, req.SpaceID)
	if err != nil {
		return SeriesResult{}, mapRepoError(err)
	}
	if space.TenantID != req.Principal.TenantID {
		return SeriesResult{}, ErrUnauthorized
	}

	base, err := interval.New(req.FirstStart, req.FirstStart.Add(req.Duration))
	if err != nil {
		return SeriesResult{}, validationError("interval", "end must be after start")
	}

	rule, err := s.effectiveRule(ctx, space)
	if err != nil {
		return SeriesResult{}, err
	}

	instances, err := recurrence.Expand(base, req.Weeks, recurrence.Allowance{
		Allowed:  rule.AllowRecurring,
		MaxWeeks: rule.MaxRecurringWeeks,
	})
	if err != nil {
		switch {
		case errors.Is(err, recurrence.ErrRecurrenceDisallowed):
			return SeriesResult{}, validationError("recurrence", "recurring bookings are not allowed for this space")
		case errors.Is(err, recurrence.ErrTooManyWeeks), errors.Is(err, recurrence.ErrInvalidWeeks):
			return SeriesResult{}, validationError("weeks", err.Error())
		default:
			return SeriesResult{}, err
		}
	}

	result := SeriesResult{Instances: make([]InstanceOutcome, 0, len(instances))}
	for _, inst := range instances {
		decision, err := s.Decide(ctx, AdmissionRequest{
			Principal:   req.Principal,
			SpaceID:     req.SpaceID,
			Start:       inst.Start,
			End:         inst.End,
			IsPermanent: req.IsPermanent,
		})
		if err != nil {
			return SeriesResult{}, err
		}
		result.Instances = append(result.Instances, InstanceOutcome{Start: inst.Start, Decision: decision})
	}

	return result, nil
}

func (s *AdmissionService) effectiveRule(ctx context.Context, space Space) (rules.Rule, error) {
	target := rules.Target{
		TenantID:         space.TenantID,
		SpaceID:          space.ID,
		SpaceType:        string(space.Type),
		OfficeID:         space.OfficeID,
		RequiresApproval: space.RequiresApproval,
	}

	if cached, ok := s.cache.Get(space.TenantID); ok {
		return rules.Resolve(target, cached), nil
	}

	ruleSet, err := s.ruleSource.ActiveRules(ctx, space.TenantID)
	if err != nil {
		return rules.Rule{}, err
	}
	s.cache.Store(space.TenantID, ruleSet)

	return rules.Resolve(target, ruleSet), nil
}

// admitLocked runs the conflict check, quota check and persistence as one
// unit under the space's lock, retrying transient storage failures with
// exponential backoff.
func (s *AdmissionService) admitLocked(ctx context.Context, space Space, rule rules.Rule, req AdmissionRequest, iv interval.Interval) (Decision, error) {
	var lastErr error
	delay := s.retry.InitialDelay

	for attempt := 0; attempt <= s.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Decision{}, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * s.retry.Factor)
			if s.retry.MaxDelay > 0 && delay > s.retry.MaxDelay {
				delay = s.retry.MaxDelay
			}
		}

		decision, err := s.attemptAdmission(ctx, space, rule, req, iv)
		if err == nil {
			return decision, nil
		}
		if !isTransient(err) {
			return Decision{}, err
		}
		lastErr = err
	}

	return Decision{}, fmt.Errorf("%w after %d attempts: %v", ErrAdmissionFailed, s.retry.MaxRetries+1, lastErr)
}

func (s *AdmissionService) attemptAdmission(ctx context.Context, space Space, rule rules.Rule, req AdmissionRequest, iv interval.Interval) (Decision, error) {
	existing, err := s.bookings.ListActiveForSpace(ctx, space.ID, iv)
	if err != nil {
		return Decision{}, err
	}

	if conflict := scheduler.DetectCapacityConflict(space.Capacity, iv, toSchedulerBookings(existing)); conflict != nil {
		return rejected(&ConflictError{
			SpaceID:            space.ID,
			Capacity:           conflict.Capacity,
			BlockingBookingIDs: conflict.BlockingIDs(),
		}), nil
	}

	limits := quota.Limits{PerDay: rule.MaxPerUserPerDay, PerWeek: rule.MaxPerUserPerWeek}
	if limits.PerDay != nil || limits.PerWeek != nil {
		weekFrom, weekTo := isoWeekRange(iv.Start)
		mine, err := s.bookings.ListActiveForUser(ctx, req.Principal.TenantID, req.Principal.UserID, weekFrom, weekTo)
		if err != nil {
			return Decision{}, err
		}
		starts := make([]time.Time, len(mine))
		for i, booking := range mine {
			starts[i] = booking.Start
		}
		if exceeded := quota.Check(limits, iv.Start, starts); exceeded != nil {
			return rejected(&QuotaExceededError{
				Scope: exceeded.Scope,
				Limit: exceeded.Limit,
				Count: exceeded.Count,
			}), nil
		}
	}

	now := s.now().UTC()
	booking := Booking{
		ID:             s.idGenerator(),
		TenantID:       space.TenantID,
		SpaceID:        space.ID,
		UserID:         req.Principal.UserID,
		Start:          iv.Start,
		End:            iv.End,
		Status:         StatusReserved,
		IsPermanent:    req.IsPermanent,
		BookedByUserID: req.Principal.UserID,
		BookedAt:       now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	outcome := OutcomePending
	if !rule.RequiresApproval || rule.AutoApproves(req.Principal.Role) {
		outcome = OutcomeApproved
		approver := systemApprover
		approvedAt := now
		booking.ApprovedBy = &approver
		booking.ApprovedAt = &approvedAt
	} else {
		booking.ApprovalPending = true
	}

	persisted, err := s.bookings.CreateBooking(ctx, booking)
	if err != nil {
		// The storage layer re-checks the overlap constraint inside its
		// transaction; a violation there means another writer slipped past
		// the in-process lock and is reported as the same conflict.
		if errors.Is(err, persistence.ErrDuplicate) {
			return rejected(&ConflictError{SpaceID: space.ID, Capacity: space.Capacity}), nil
		}
		return Decision{}, err
	}

	return Decision{Outcome: outcome, BookingID: persisted.ID}, nil
}

func rejected(reason error) Decision {
	return Decision{Outcome: OutcomeRejected, Reason: reason}
}

func isTransient(err error) bool {
	return errors.Is(err, persistence.ErrBusy)
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func toSchedulerBookings(bookings []Booking) []scheduler.Booking {
	out := make([]scheduler.Booking, 0, len(bookings))
	for _, booking := range bookings {
		iv, err := interval.New(booking.Start, booking.End)
		if err != nil {
			continue
		}
		out = append(out, scheduler.Booking{ID: booking.ID, UserID: booking.UserID, Interval: iv})
	}
	return out
}

// validateAgainstRule checks the request shape against the effective rule.
// Violations are evaluated in a fixed order and the first one found is
// reported, keeping rejections deterministic.
func validateAgainstRule(rule rules.Rule, iv interval.Interval, now time.Time) *ValidationError {
	duration := iv.Duration()
	if rule.MinDuration != nil && duration < *rule.MinDuration {
		return validationError("duration", fmt.Sprintf("booking must last at least %s", *rule.MinDuration))
	}
	if rule.MaxDuration != nil && duration > *rule.MaxDuration {
		return validationError("duration", fmt.Sprintf("booking may last at most %s", *rule.MaxDuration))
	}

	lead := iv.Start.Sub(now.UTC())
	if rule.MinAdvance != nil && lead < *rule.MinAdvance {
		return validationError("advance", fmt.Sprintf("booking must be made at least %s in advance", *rule.MinAdvance))
	}
	if rule.MaxAdvance != nil && lead > *rule.MaxAdvance {
		return validationError("advance", fmt.Sprintf("booking may start at most %s ahead", *rule.MaxAdvance))
	}

	if !rule.DayAllowed(iv.Start.Weekday()) {
		return validationError("day_of_week", fmt.Sprintf("bookings are not allowed on %s", iv.Start.Weekday()))
	}

	if rule.AllowedStartMinute != nil || rule.AllowedEndMinute != nil {
		startMinute := iv.Start.Hour()*60 + iv.Start.Minute()
		endMinute := iv.End.Hour()*60 + iv.End.Minute()
		if endMinute == 0 {
			endMinute = 24 * 60
		}
		if rule.AllowedStartMinute != nil && startMinute < *rule.AllowedStartMinute {
			return validationError("time_of_day", "booking starts before the allowed window")
		}
		if rule.AllowedEndMinute != nil && endMinute > *rule.AllowedEndMinute {
			return validationError("time_of_day", "booking ends after the allowed window")
		}
	}

	return nil
}

// isoWeekRange returns the UTC Monday midnight opening the ISO week
// containing t and the Monday midnight one week later.
func isoWeekRange(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	// In Go, Monday == 1 and Sunday == 0.
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 7)
}
