package interval

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange indicates the end of an interval does not come after its start.
var ErrInvalidRange = errors.New("interval: end must be after start")

// Interval represents a half-open time range [Start, End) normalized to UTC.
type Interval struct {
	Start time.Time
	End   time.Time
}

// New constructs an interval from the supplied bounds. Both bounds are
// normalized to UTC. Ranges with end <= start, including zero-length
// ranges, are rejected.
func New(start, end time.Time) (Interval, error) {
	start = start.UTC()
	end = end.UTC()
	if !end.After(start) {
		return Interval{}, fmt.Errorf("%w: [%s, %s)", ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{Start: start, End: end}, nil
}

// Duration returns the length of the interval.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// IsZero reports whether the interval carries no bounds at all.
func (iv Interval) IsZero() bool {
	return iv.Start.IsZero() && iv.End.IsZero()
}

// Overlaps reports whether two half-open intervals share at least one
// instant. Zero-length ranges never overlap anything, themselves included.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Contains reports whether the instant t falls inside the interval.
// The start bound is inclusive, the end bound exclusive.
func (iv Interval) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Shift returns the interval translated by d, preserving its duration.
func (iv Interval) Shift(d time.Duration) Interval {
	return Interval{Start: iv.Start.Add(d), End: iv.End.Add(d)}
}

// String renders the interval in RFC3339 for logs and error messages.
func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
}
