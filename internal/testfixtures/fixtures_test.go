package testfixtures

import (
	"testing"
	"time"

	"github.com/example/booking-engine/internal/application"
	"github.com/example/booking-engine/internal/rules"
)

func TestNewSpaceAppliesOptions(t *testing.T) {
	space := NewSpace(
		WithSpaceID("space-x"),
		WithSpaceType(application.SpaceTypeConferenceRoom),
		WithSpaceCapacity(6),
		WithSpaceApproval(),
	)

	if space.ID != "space-x" {
		t.Errorf("expected overridden ID, got %q", space.ID)
	}
	if space.Type != application.SpaceTypeConferenceRoom || space.Capacity != 6 {
		t.Errorf("unexpected space shape: %#v", space)
	}
	if !space.RequiresApproval || !space.IsActive {
		t.Errorf("expected approval-required active space, got %#v", space)
	}
}

func TestNewSpaceGeneratesUniqueIDs(t *testing.T) {
	first := NewSpace()
	second := NewSpace()
	if first.ID == second.ID {
		t.Fatalf("expected distinct IDs, both were %q", first.ID)
	}
}

func TestNewRuleAppliesOptions(t *testing.T) {
	rule := NewRule(
		WithRuleScope(rules.Scope{Kind: rules.ScopeSpace, SpaceID: "space-1"}),
		WithRuleDurationBounds(30*time.Minute, 4*time.Hour),
		WithRuleQuotas(2, 0),
	)

	if rule.Scope.Kind != rules.ScopeSpace || rule.Scope.SpaceID != "space-1" {
		t.Errorf("unexpected scope: %#v", rule.Scope)
	}
	if rule.MinDuration == nil || *rule.MinDuration != 30*time.Minute {
		t.Errorf("expected min duration 30m, got %v", rule.MinDuration)
	}
	if rule.MaxPerUserPerDay == nil || *rule.MaxPerUserPerDay != 2 {
		t.Errorf("expected daily cap 2, got %v", rule.MaxPerUserPerDay)
	}
	if rule.MaxPerUserPerWeek != nil {
		t.Errorf("expected unset weekly cap, got %v", *rule.MaxPerUserPerWeek)
	}
}

func TestNewBookingDefaults(t *testing.T) {
	booking := NewBooking()

	if booking.Status != application.StatusReserved {
		t.Errorf("expected reserved status, got %q", booking.Status)
	}
	if !booking.End.Equal(booking.Start.Add(time.Hour)) {
		t.Errorf("expected one hour duration, got %v to %v", booking.Start, booking.End)
	}
	if booking.UserID != booking.BookedByUserID {
		t.Errorf("expected self-booked default, got %q vs %q", booking.UserID, booking.BookedByUserID)
	}
}
