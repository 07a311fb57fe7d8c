package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/booking-engine/internal/application"
	"github.com/example/booking-engine/internal/persistence"
	"github.com/example/booking-engine/internal/persistence/sqlite"
	"github.com/example/booking-engine/internal/rules"
	"github.com/example/booking-engine/internal/testfixtures"
)

func TestToDomainRule_ScopeAndUnits(t *testing.T) {
	spaceID := "space-1"
	minDuration := 30
	startMinute := 9 * 60

	stored := persistence.BookingRule{
		ID:                 "rule-1",
		TenantID:           "tenant-1",
		ScopeSpaceID:       &spaceID,
		MinDurationMinutes: &minDuration,
		AllowedDays:        []int{1, 5},
		AllowedStartMinute: &startMinute,
		AllowRecurring:     true,
		MaxRecurringWeeks:  8,
		Active:             true,
	}

	rule := toDomainRule(stored)

	if rule.Scope.Kind != rules.ScopeSpace || rule.Scope.SpaceID != "space-1" {
		t.Errorf("unexpected scope: %#v", rule.Scope)
	}
	if rule.MinDuration == nil || *rule.MinDuration != 30*time.Minute {
		t.Errorf("expected minutes converted to duration, got %v", rule.MinDuration)
	}
	if rule.MaxDuration != nil {
		t.Errorf("expected nil max duration, got %v", *rule.MaxDuration)
	}
	if len(rule.AllowedDays) != 2 || rule.AllowedDays[0] != time.Monday || rule.AllowedDays[1] != time.Friday {
		t.Errorf("unexpected allowed days: %v", rule.AllowedDays)
	}
	if rule.AllowedStartMinute == nil || *rule.AllowedStartMinute != 540 {
		t.Errorf("expected start minute 540, got %v", rule.AllowedStartMinute)
	}
}

func TestAdapters_AdmissionAgainstRealStorage(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()

	spaces := sqlite.NewSpaceRepository(pool)
	if err := spaces.CreateSpace(ctx, persistence.Space{
		ID:       "space-1",
		TenantID: "tenant-1",
		OfficeID: "office-1",
		Name:     "Desk 1",
		Type:     "desk",
		Capacity: 1,
		IsActive: true,
	}); err != nil {
		t.Fatalf("CreateSpace failed: %v", err)
	}

	officeID := "office-1"
	ruleRepo := sqlite.NewBookingRuleRepository(pool)
	if err := ruleRepo.CreateRule(ctx, persistence.BookingRule{
		ID:             "rule-1",
		TenantID:       "tenant-1",
		ScopeOfficeID:  &officeID,
		AllowRecurring: true,
		Active:         true,
	}); err != nil {
		t.Fatalf("CreateRule failed: %v", err)
	}

	clock := testfixtures.NewClock(time.Time{})
	service := application.NewAdmissionService(
		newSpaceCatalogAdapter(spaces),
		newRuleSourceAdapter(ruleRepo),
		newBookingStoreAdapter(sqlite.NewBookingRepository(pool)),
		testfixtures.NewIDGenerator("booking").NextFunc(),
		clock.NowFunc(),
	)

	start := clock.Now().Add(2 * time.Hour)
	request := application.AdmissionRequest{
		Principal: application.Principal{UserID: "alice", TenantID: "tenant-1"},
		SpaceID:   "space-1",
		Start:     start,
		End:       start.Add(time.Hour),
	}

	decision, err := service.Decide(ctx, request)
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if decision.Outcome != application.OutcomeApproved {
		t.Fatalf("expected approved decision, got %s (%v)", decision.Outcome, decision.Reason)
	}

	// The same slot again must be refused by the conflict check backed by
	// the real repository.
	request.Principal.UserID = "bob"
	decision, err = service.Decide(ctx, request)
	if err != nil {
		t.Fatalf("second Decide failed: %v", err)
	}
	if decision.Outcome != application.OutcomeRejected {
		t.Fatalf("expected rejected decision, got %s", decision.Outcome)
	}
	var conflict *application.ConflictError
	if !errors.As(decision.Reason, &conflict) {
		t.Fatalf("expected ConflictError reason, got %v", decision.Reason)
	}
}

func TestBookingStoreAdapter_LifecycleQueries(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()

	spaces := sqlite.NewSpaceRepository(pool)
	if err := spaces.CreateSpace(ctx, persistence.Space{
		ID:       "space-1",
		TenantID: "tenant-1",
		OfficeID: "office-1",
		Name:     "Desk 1",
		Type:     "desk",
		Capacity: 4,
		IsActive: true,
	}); err != nil {
		t.Fatalf("CreateSpace failed: %v", err)
	}

	store := newBookingStoreAdapter(sqlite.NewBookingRepository(pool))
	base := testfixtures.ReferenceTime()

	reserved := testfixtures.NewBooking(
		testfixtures.WithBookingSpace("space-1"),
		testfixtures.WithBookingInterval(base, base.Add(time.Hour)),
	)
	checkedIn := testfixtures.NewBooking(
		testfixtures.WithBookingSpace("space-1"),
		testfixtures.WithBookingUser("bob"),
		testfixtures.WithBookingInterval(base.Add(time.Hour), base.Add(2*time.Hour)),
		testfixtures.WithBookingStatus(application.StatusCheckedIn),
	)
	for _, booking := range []application.Booking{reserved, checkedIn} {
		if _, err := store.CreateBooking(ctx, booking); err != nil {
			t.Fatalf("CreateBooking %s failed: %v", booking.ID, err)
		}
	}

	stale, err := store.ListReservedStartedBefore(ctx, base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("ListReservedStartedBefore failed: %v", err)
	}
	if len(stale) != 1 || stale[0].ID != reserved.ID {
		t.Fatalf("expected only the reserved booking, got %#v", stale)
	}

	elapsed, err := store.ListCheckedInEndedBefore(ctx, base.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("ListCheckedInEndedBefore failed: %v", err)
	}
	if len(elapsed) != 1 || elapsed[0].ID != checkedIn.ID {
		t.Fatalf("expected only the checked-in booking, got %#v", elapsed)
	}
}

func openTestPool(t *testing.T) *sqlite.ConnectionPool {
	t.Helper()

	pool, err := sqlite.Open(filepath.Join(t.TempDir(), "booking.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = pool.Close()
	})
	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return pool
}
