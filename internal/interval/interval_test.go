package interval

import (
	"errors"
	"testing"
	"time"
)

func mustInterval(t *testing.T, start, end string) Interval {
	t.Helper()
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		t.Fatalf("parse end: %v", err)
	}
	iv, err := New(s, e)
	if err != nil {
		t.Fatalf("New(%s, %s): %v", start, end, err)
	}
	return iv
}

func TestNew(t *testing.T) {
	t.Run("rejects end before start", func(t *testing.T) {
		start := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
		_, err := New(start, start.Add(-time.Hour))
		if !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange, got %v", err)
		}
	})

	t.Run("rejects zero-length range", func(t *testing.T) {
		start := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
		_, err := New(start, start)
		if !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange, got %v", err)
		}
	})

	t.Run("normalizes bounds to UTC", func(t *testing.T) {
		loc := time.FixedZone("JST", 9*60*60)
		start := time.Date(2024, 1, 10, 18, 0, 0, 0, loc)
		iv, err := New(start, start.Add(time.Hour))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if iv.Start.Location() != time.UTC || iv.End.Location() != time.UTC {
			t.Fatalf("bounds not normalized to UTC: %v", iv)
		}
		if got := iv.Start.Hour(); got != 9 {
			t.Fatalf("expected UTC hour 9, got %d", got)
		}
	})
}

func TestOverlaps(t *testing.T) {
	base := mustInterval(t, "2024-01-10T09:00:00Z", "2024-01-10T10:30:00Z")

	cases := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"identical", mustInterval(t, "2024-01-10T09:00:00Z", "2024-01-10T10:30:00Z"), true},
		{"partial overlap at tail", mustInterval(t, "2024-01-10T10:00:00Z", "2024-01-10T11:00:00Z"), true},
		{"fully contained", mustInterval(t, "2024-01-10T09:30:00Z", "2024-01-10T10:00:00Z"), true},
		{"containing", mustInterval(t, "2024-01-10T08:00:00Z", "2024-01-10T12:00:00Z"), true},
		{"adjacent before", mustInterval(t, "2024-01-10T08:00:00Z", "2024-01-10T09:00:00Z"), false},
		{"adjacent after", mustInterval(t, "2024-01-10T10:30:00Z", "2024-01-10T11:30:00Z"), false},
		{"disjoint", mustInterval(t, "2024-01-11T09:00:00Z", "2024-01-11T10:00:00Z"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := base.Overlaps(tc.other); got != tc.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", base, tc.other, got, tc.want)
			}
			if got := tc.other.Overlaps(base); got != tc.want {
				t.Fatalf("Overlaps is not symmetric for %v and %v", base, tc.other)
			}
		})
	}

	t.Run("zero-length never overlaps", func(t *testing.T) {
		point := Interval{Start: base.Start, End: base.Start}
		if point.Overlaps(base) || base.Overlaps(point) {
			t.Fatal("zero-length interval must not overlap anything")
		}
		if point.Overlaps(point) {
			t.Fatal("zero-length interval must not overlap itself")
		}
	})
}

func TestContains(t *testing.T) {
	iv := mustInterval(t, "2024-01-10T09:00:00Z", "2024-01-10T10:00:00Z")

	if !iv.Contains(iv.Start) {
		t.Fatal("start bound should be inclusive")
	}
	if iv.Contains(iv.End) {
		t.Fatal("end bound should be exclusive")
	}
	if !iv.Contains(iv.Start.Add(30 * time.Minute)) {
		t.Fatal("midpoint should be contained")
	}
}

func TestShift(t *testing.T) {
	iv := mustInterval(t, "2024-01-10T09:00:00Z", "2024-01-10T10:00:00Z")
	shifted := iv.Shift(7 * 24 * time.Hour)

	if shifted.Duration() != iv.Duration() {
		t.Fatalf("shift changed duration: %v != %v", shifted.Duration(), iv.Duration())
	}
	if shifted.Start.Weekday() != iv.Start.Weekday() {
		t.Fatalf("weekly shift changed weekday: %v != %v", shifted.Start.Weekday(), iv.Start.Weekday())
	}
}
