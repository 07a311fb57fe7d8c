package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/example/booking-engine/internal/persistence"
)

func TestCheckInEventRepository_CreateAndList(t *testing.T) {
	pool := newTestPool(t)
	bookings := NewBookingRepository(pool)
	events := NewCheckInEventRepository(pool)
	ctx := context.Background()

	seedSpace(t, pool, "space-1", 1)
	booking := testBooking(t, "bk-1", "space-1", "alice", "2026-03-02T09:00:00Z", "2026-03-04T17:00:00Z")
	if err := bookings.CreateBooking(ctx, booking); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	processedBy := "frontdesk"
	day1 := persistence.CheckInEvent{
		ID:          "ev-1",
		BookingID:   "bk-1",
		Timestamp:   testTime(t, "2026-03-02T09:05:00Z"),
		CheckInDate: "2026-03-02",
		Method:      "kiosk",
	}
	day2 := persistence.CheckInEvent{
		ID:                "ev-2",
		BookingID:         "bk-1",
		Timestamp:         testTime(t, "2026-03-03T08:58:00Z"),
		CheckInDate:       "2026-03-03",
		Method:            "web",
		ProcessedByUserID: &processedBy,
	}
	if err := events.CreateEvent(ctx, day1); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if err := events.CreateEvent(ctx, day2); err != nil {
		t.Fatalf("second CreateEvent failed: %v", err)
	}

	listed, err := events.ListEventsForBooking(ctx, "bk-1")
	if err != nil {
		t.Fatalf("ListEventsForBooking failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 events, got %d", len(listed))
	}
	if listed[0].ID != "ev-1" || listed[1].ID != "ev-2" {
		t.Fatalf("expected arrival order, got %s, %s", listed[0].ID, listed[1].ID)
	}
	if listed[0].ProcessedByUserID != nil {
		t.Errorf("expected self check-in to have nil processor, got %v", *listed[0].ProcessedByUserID)
	}
	if listed[1].ProcessedByUserID == nil || *listed[1].ProcessedByUserID != "frontdesk" {
		t.Errorf("expected processed_by_user_id to round-trip, got %#v", listed[1].ProcessedByUserID)
	}
}

func TestCheckInEventRepository_DuplicateDate(t *testing.T) {
	pool := newTestPool(t)
	bookings := NewBookingRepository(pool)
	events := NewCheckInEventRepository(pool)
	ctx := context.Background()

	seedSpace(t, pool, "space-1", 1)
	booking := testBooking(t, "bk-1", "space-1", "alice", "2026-03-02T09:00:00Z", "2026-03-02T17:00:00Z")
	if err := bookings.CreateBooking(ctx, booking); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	first := persistence.CheckInEvent{
		ID:          "ev-1",
		BookingID:   "bk-1",
		Timestamp:   testTime(t, "2026-03-02T09:05:00Z"),
		CheckInDate: "2026-03-02",
		Method:      "mobile",
	}
	if err := events.CreateEvent(ctx, first); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	repeat := first
	repeat.ID = "ev-2"
	repeat.Timestamp = testTime(t, "2026-03-02T09:30:00Z")
	if err := events.CreateEvent(ctx, repeat); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for same booking and date, got %v", err)
	}
}

func TestCheckInEventRepository_UnknownBooking(t *testing.T) {
	pool := newTestPool(t)
	events := NewCheckInEventRepository(pool)

	event := persistence.CheckInEvent{
		ID:          "ev-1",
		BookingID:   "missing",
		Timestamp:   testTime(t, "2026-03-02T09:05:00Z"),
		CheckInDate: "2026-03-02",
		Method:      "web",
	}
	if err := events.CreateEvent(context.Background(), event); !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
}
