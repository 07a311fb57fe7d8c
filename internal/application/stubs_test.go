package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/booking-engine/internal/interval"
	"github.com/example/booking-engine/internal/persistence"
	"github.com/example/booking-engine/internal/rules"
)

// testRefTime is a Monday, keeping weekday rules predictable.
var testRefTime = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu      sync.Mutex
	current time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{current: start}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *fakeClock) set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.mu.Unlock()
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	counter := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		counter++
		return fmt.Sprintf("%s-%d", prefix, counter)
	}
}

func testSpace(id string) Space {
	return Space{
		ID:        id,
		TenantID:  "tenant-1",
		OfficeID:  "office-1",
		Name:      "Desk " + id,
		Type:      SpaceTypeDesk,
		Capacity:  1,
		IsActive:  true,
		CreatedAt: testRefTime.Add(-48 * time.Hour),
		UpdatedAt: testRefTime.Add(-48 * time.Hour),
	}
}

func testRule() rules.Rule {
	return rules.Rule{
		ID:             "rule-1",
		TenantID:       "tenant-1",
		Scope:          rules.Scope{Kind: rules.ScopeOffice, OfficeID: "office-1"},
		AllowRecurring: true,
		Active:         true,
		CreatedAt:      testRefTime.Add(-24 * time.Hour),
	}
}

func testBookingAt(id, spaceID, userID string, start time.Time, duration time.Duration) Booking {
	return Booking{
		ID:             id,
		TenantID:       "tenant-1",
		SpaceID:        spaceID,
		UserID:         userID,
		Start:          start.UTC(),
		End:            start.Add(duration).UTC(),
		Status:         StatusReserved,
		BookedByUserID: userID,
		BookedAt:       start.Add(-24 * time.Hour).UTC(),
		CreatedAt:      start.Add(-24 * time.Hour).UTC(),
		UpdatedAt:      start.Add(-24 * time.Hour).UTC(),
	}
}

func intRef(v int) *int {
	return &v
}

func durationRef(d time.Duration) *time.Duration {
	return &d
}

type stubSpaceCatalog struct {
	spaces map[string]Space
}

func newStubSpaceCatalog(spaces ...Space) *stubSpaceCatalog {
	catalog := &stubSpaceCatalog{spaces: make(map[string]Space, len(spaces))}
	for _, space := range spaces {
		catalog.spaces[space.ID] = space
	}
	return catalog
}

func (c *stubSpaceCatalog) GetSpace(_ context.Context, id string) (Space, error) {
	space, ok := c.spaces[id]
	if !ok {
		return Space{}, persistence.ErrNotFound
	}
	return space, nil
}

type stubRuleSource struct {
	mu    sync.Mutex
	rules []rules.Rule
	err   error
	calls int
}

func (s *stubRuleSource) ActiveRules(_ context.Context, _ string) ([]rules.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.rules, nil
}

func (s *stubRuleSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// memoryBookingStore is an in-memory BookingStore and BookingLifecycleStore.
// createErrs is consumed one entry per CreateBooking call, letting tests
// inject transient failures.
type memoryBookingStore struct {
	mu          sync.Mutex
	bookings    map[string]Booking
	createErrs  []error
	createCalls int
}

func newMemoryBookingStore(seed ...Booking) *memoryBookingStore {
	store := &memoryBookingStore{bookings: make(map[string]Booking, len(seed))}
	for _, booking := range seed {
		store.bookings[booking.ID] = booking
	}
	return store
}

func (s *memoryBookingStore) CreateBooking(_ context.Context, booking Booking) (Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		if err != nil {
			return Booking{}, err
		}
	}
	if _, exists := s.bookings[booking.ID]; exists {
		return Booking{}, persistence.ErrDuplicate
	}
	s.bookings[booking.ID] = booking
	return booking, nil
}

func (s *memoryBookingStore) GetBooking(_ context.Context, id string) (Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok {
		return Booking{}, persistence.ErrNotFound
	}
	return booking, nil
}

func (s *memoryBookingStore) UpdateBooking(_ context.Context, booking Booking) (Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[booking.ID]; !ok {
		return Booking{}, persistence.ErrNotFound
	}
	s.bookings[booking.ID] = booking
	return booking, nil
}

func (s *memoryBookingStore) ListActiveForSpace(_ context.Context, spaceID string, within interval.Interval) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []Booking
	for _, booking := range s.bookings {
		if booking.SpaceID != spaceID || !booking.Status.Active() {
			continue
		}
		if booking.Start.Before(within.End) && within.Start.Before(booking.End) {
			matched = append(matched, booking)
		}
	}
	return matched, nil
}

func (s *memoryBookingStore) ListActiveForUser(_ context.Context, tenantID, userID string, from, to time.Time) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []Booking
	for _, booking := range s.bookings {
		if booking.TenantID != tenantID || booking.UserID != userID || !booking.Status.Active() {
			continue
		}
		if !booking.Start.Before(from) && booking.Start.Before(to) {
			matched = append(matched, booking)
		}
	}
	return matched, nil
}

func (s *memoryBookingStore) ListReservedStartedBefore(_ context.Context, cutoff time.Time) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []Booking
	for _, booking := range s.bookings {
		if booking.Status == StatusReserved && booking.Start.Before(cutoff) {
			matched = append(matched, booking)
		}
	}
	return matched, nil
}

func (s *memoryBookingStore) ListCheckedInEndedBefore(_ context.Context, cutoff time.Time) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []Booking
	for _, booking := range s.bookings {
		if booking.Status == StatusCheckedIn && !booking.End.After(cutoff) {
			matched = append(matched, booking)
		}
	}
	return matched, nil
}

func (s *memoryBookingStore) failNextCreates(errs ...error) {
	s.mu.Lock()
	s.createErrs = append(s.createErrs, errs...)
	s.mu.Unlock()
}

func (s *memoryBookingStore) byStatus(status BookingStatus) []Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []Booking
	for _, booking := range s.bookings {
		if booking.Status == status {
			matched = append(matched, booking)
		}
	}
	return matched
}

func (s *memoryBookingStore) get(id string) (Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	return booking, ok
}

// memoryEventStore is an in-memory CheckInEventStore enforcing the one
// event per booking and calendar date constraint.
type memoryEventStore struct {
	mu     sync.Mutex
	events map[string]CheckInEvent
}

func newMemoryEventStore() *memoryEventStore {
	return &memoryEventStore{events: make(map[string]CheckInEvent)}
}

func eventKey(bookingID, date string) string {
	return fmt.Sprintf("%s|%s", bookingID, date)
}

func (s *memoryEventStore) CreateEvent(_ context.Context, event CheckInEvent) (CheckInEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := eventKey(event.BookingID, event.CheckInDate)
	if _, exists := s.events[key]; exists {
		return CheckInEvent{}, persistence.ErrDuplicate
	}
	s.events[key] = event
	return event, nil
}

func (s *memoryEventStore) ListEventsForBooking(_ context.Context, bookingID string) ([]CheckInEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []CheckInEvent
	for _, event := range s.events {
		if event.BookingID == bookingID {
			matched = append(matched, event)
		}
	}
	return matched, nil
}
