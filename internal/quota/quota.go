// Package quota enforces per-user booking count caps per calendar day and
// per ISO week. All date arithmetic is in UTC.
package quota

import "time"

// Scope identifies which cap was evaluated.
type Scope string

const (
	// ScopeDay is the per-calendar-day cap.
	ScopeDay Scope = "day"
	// ScopeWeek is the per-ISO-week cap.
	ScopeWeek Scope = "week"
)

// Limits carries the effective rule's caps. Nil means unlimited.
type Limits struct {
	PerDay  *int
	PerWeek *int
}

// Exceeded reports which cap an additional booking would break.
type Exceeded struct {
	Scope Scope
	Limit int
	Count int
}

// Check counts the user's existing active booking starts sharing the
// candidate's UTC calendar day and ISO week. If admitting one more booking
// would exceed a configured cap, the broken cap is returned; the daily cap
// is evaluated first. A nil result means both caps hold.
func Check(limits Limits, candidateStart time.Time, existingStarts []time.Time) *Exceeded {
	if limits.PerDay == nil && limits.PerWeek == nil {
		return nil
	}

	candidateStart = candidateStart.UTC()

	if limits.PerDay != nil {
		count := 0
		for _, start := range existingStarts {
			if sameDay(candidateStart, start.UTC()) {
				count++
			}
		}
		if count+1 > *limits.PerDay {
			return &Exceeded{Scope: ScopeDay, Limit: *limits.PerDay, Count: count}
		}
	}

	if limits.PerWeek != nil {
		count := 0
		for _, start := range existingStarts {
			if sameISOWeek(candidateStart, start.UTC()) {
				count++
			}
		}
		if count+1 > *limits.PerWeek {
			return &Exceeded{Scope: ScopeWeek, Limit: *limits.PerWeek, Count: count}
		}
	}

	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameISOWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}
