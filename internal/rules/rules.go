// Package rules selects the effective booking rule governing a space.
//
// Rule scope is a tagged variant with an explicit specificity rank rather
// than a hierarchy: a space-specific rule beats a space-type rule, which
// beats an office-wide rule. Exactly one rule governs any decision; rules
// are never merged.
package rules

import (
	"sort"
	"time"
)

// ScopeKind identifies which slice of the space inventory a rule applies to.
type ScopeKind int

const (
	// ScopeOffice applies the rule to every space in an office.
	ScopeOffice ScopeKind = iota + 1
	// ScopeSpaceType applies the rule to every space of a given type.
	ScopeSpaceType
	// ScopeSpace applies the rule to a single space.
	ScopeSpace
)

// Scope binds a rule to its target. Exactly one target field is set,
// matching Kind.
type Scope struct {
	Kind      ScopeKind
	OfficeID  string
	SpaceType string
	SpaceID   string
}

// specificity ranks scopes so that narrower targets win.
func (s Scope) specificity() int {
	return int(s.Kind)
}

// Rule is a booking policy. Nil pointer fields mean the constraint is not
// imposed.
type Rule struct {
	ID       string
	TenantID string
	Scope    Scope

	MinDuration *time.Duration
	MaxDuration *time.Duration
	MinAdvance  *time.Duration
	MaxAdvance  *time.Duration

	// AllowedDays restricts the weekday of a booking's start. Empty means
	// every day is allowed.
	AllowedDays []time.Weekday

	// AllowedStartMinute and AllowedEndMinute bound the time of day, in
	// minutes from midnight UTC. Both nil means the whole day is allowed.
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
}

// DayAllowed reports whether the rule permits bookings starting on day.
func (r Rule) DayAllowed(day time.Weekday) bool {
	if len(r.AllowedDays) == 0 {
		return true
	}
	for _, allowed := range r.AllowedDays {
		if allowed == day {
			return true
		}
	}
	return false
}

// AutoApproves reports whether the requester's role bypasses manual approval.
func (r Rule) AutoApproves(role string) bool {
	for _, allowed := range r.AutoApproveRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Target describes the space a request is addressed to, reduced to the
// attributes rule matching needs.
type Target struct {
	TenantID         string
	SpaceID          string
	SpaceType        string
	OfficeID         string
	RequiresApproval bool
}

func (r Rule) matches(target Target) bool {
	if !r.Active || r.TenantID != target.TenantID {
		return false
	}
	switch r.Scope.Kind {
	case ScopeSpace:
		return r.Scope.SpaceID == target.SpaceID
	case ScopeSpaceType:
		return r.Scope.SpaceType == target.SpaceType
	case ScopeOffice:
		return r.Scope.OfficeID == target.OfficeID
	default:
		return false
	}
}

// Resolve returns the single effective rule for the target. Candidates are
// filtered to active rules of the same tenant whose scope matches, then
// ranked by specificity, numeric priority descending, creation time
// ascending, and finally ID for full determinism. When nothing matches, a
// permissive default applies whose approval requirement mirrors the space's
// own flag.
func Resolve(target Target, candidates []Rule) Rule {
	matched := make([]Rule, 0, len(candidates))
	for _, rule := range candidates {
		if rule.matches(target) {
			matched = append(matched, rule)
		}
	}
	if len(matched) == 0 {
		return DefaultRule(target)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if sa, sb := a.Scope.specificity(), b.Scope.specificity(); sa != sb {
			return sa > sb
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	return matched[0]
}

// DefaultRule is the synthetic rule applied when no configured rule matches:
// no constraints, recurrence allowed up to a year, approval required only
// when the space itself demands it.
func DefaultRule(target Target) Rule {
	return Rule{
		ID:                "",
		TenantID:          target.TenantID,
		AllowRecurring:    true,
		MaxRecurringWeeks: 52,
		RequiresApproval:  target.RequiresApproval,
		Active:            true,
	}
}

// IsDefault reports whether the rule is the synthetic fallback rather than
// a configured one.
func (r Rule) IsDefault() bool {
	return r.ID == ""
}
