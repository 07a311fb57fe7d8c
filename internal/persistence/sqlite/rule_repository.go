package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/booking-engine/internal/persistence"
)

// BookingRuleRepository implements persistence.BookingRuleRepository on SQLite.
type BookingRuleRepository struct {
	pool *ConnectionPool
}

// NewBookingRuleRepository binds the repository to the pool.
func NewBookingRuleRepository(pool *ConnectionPool) *BookingRuleRepository {
	return &BookingRuleRepository{pool: pool}
}

const ruleColumns = `id, tenant_id, scope_office_id, scope_space_type, scope_space_id,
	min_duration_minutes, max_duration_minutes, min_advance_minutes, max_advance_minutes,
	allowed_days, allowed_start_minute, allowed_end_minute,
	allow_recurring, max_recurring_weeks, requires_approval, auto_approve_roles,
	max_per_user_per_day, max_per_user_per_week, priority, active, created_at, updated_at`

// CreateRule inserts a rule row. The schema enforces that exactly one
// scope column is set.
func (r *BookingRuleRepository) CreateRule(ctx context.Context, rule persistence.BookingRule) error {
	if rule.ID == "" {
		return persistence.ErrConstraintViolation
	}
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	if rule.UpdatedAt.IsZero() {
		rule.UpdatedAt = now
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO booking_rules (`+ruleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID,
		rule.TenantID,
		nullString(rule.ScopeOfficeID),
		nullString(rule.ScopeSpaceType),
		nullString(rule.ScopeSpaceID),
		nullInt(rule.MinDurationMinutes),
		nullInt(rule.MaxDurationMinutes),
		nullInt(rule.MinAdvanceMinutes),
		nullInt(rule.MaxAdvanceMinutes),
		encodeInts(rule.AllowedDays),
		nullInt(rule.AllowedStartMinute),
		nullInt(rule.AllowedEndMinute),
		encodeBool(rule.AllowRecurring),
		rule.MaxRecurringWeeks,
		encodeBool(rule.RequiresApproval),
		encodeStrings(rule.AutoApproveRoles),
		nullInt(rule.MaxPerUserPerDay),
		nullInt(rule.MaxPerUserPerWeek),
		rule.Priority,
		encodeBool(rule.Active),
		encodeTime(rule.CreatedAt),
		encodeTime(rule.UpdatedAt),
	)
	return mapError(err)
}

// UpdateRule rewrites the mutable columns of an existing rule.
func (r *BookingRuleRepository) UpdateRule(ctx context.Context, rule persistence.BookingRule) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE booking_rules
		SET scope_office_id = ?, scope_space_type = ?, scope_space_id = ?,
		    min_duration_minutes = ?, max_duration_minutes = ?,
		    min_advance_minutes = ?, max_advance_minutes = ?,
		    allowed_days = ?, allowed_start_minute = ?, allowed_end_minute = ?,
		    allow_recurring = ?, max_recurring_weeks = ?, requires_approval = ?,
		    auto_approve_roles = ?, max_per_user_per_day = ?, max_per_user_per_week = ?,
		    priority = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		nullString(rule.ScopeOfficeID),
		nullString(rule.ScopeSpaceType),
		nullString(rule.ScopeSpaceID),
		nullInt(rule.MinDurationMinutes),
		nullInt(rule.MaxDurationMinutes),
		nullInt(rule.MinAdvanceMinutes),
		nullInt(rule.MaxAdvanceMinutes),
		encodeInts(rule.AllowedDays),
		nullInt(rule.AllowedStartMinute),
		nullInt(rule.AllowedEndMinute),
		encodeBool(rule.AllowRecurring),
		rule.MaxRecurringWeeks,
		encodeBool(rule.RequiresApproval),
		encodeStrings(rule.AutoApproveRoles),
		nullInt(rule.MaxPerUserPerDay),
		nullInt(rule.MaxPerUserPerWeek),
		rule.Priority,
		encodeBool(rule.Active),
		encodeTime(time.Now().UTC()),
		rule.ID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetRule retrieves a rule by ID.
func (r *BookingRuleRepository) GetRule(ctx context.Context, id string) (persistence.BookingRule, error) {
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM booking_rules WHERE id = ?`, id)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.BookingRule{}, persistence.ErrNotFound
	}
	return rule, err
}

// ListActiveRules returns the tenant's active rules ordered by creation.
func (r *BookingRuleRepository) ListActiveRules(ctx context.Context, tenantID string) ([]persistence.BookingRule, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT `+ruleColumns+` FROM booking_rules
		WHERE tenant_id = ? AND active = 1
		ORDER BY created_at, id`, tenantID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var ruleSet []persistence.BookingRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		ruleSet = append(ruleSet, rule)
	}
	return ruleSet, mapError(rows.Err())
}

func scanRule(row rowScanner) (persistence.BookingRule, error) {
	var (
		rule                     persistence.BookingRule
		scopeOffice, scopeType   sql.NullString
		scopeSpace               sql.NullString
		minDur, maxDur           sql.NullInt64
		minAdv, maxAdv           sql.NullInt64
		allowedDays              string
		allowedStart, allowedEnd sql.NullInt64
		allowRecurring           int
		requiresApproval         int
		roles                    string
		maxPerDay, maxPerWeek    sql.NullInt64
		active                   int
		createdAt, updatedAt     string
	)
	err := row.Scan(
		&rule.ID,
		&rule.TenantID,
		&scopeOffice,
		&scopeType,
		&scopeSpace,
		&minDur,
		&maxDur,
		&minAdv,
		&maxAdv,
		&allowedDays,
		&allowedStart,
		&allowedEnd,
		&allowRecurring,
		&rule.MaxRecurringWeeks,
		&requiresApproval,
		&roles,
		&maxPerDay,
		&maxPerWeek,
		&rule.Priority,
		&active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.BookingRule{}, err
	}

	rule.ScopeOfficeID = stringPtr(scopeOffice)
	rule.ScopeSpaceType = stringPtr(scopeType)
	rule.ScopeSpaceID = stringPtr(scopeSpace)
	rule.MinDurationMinutes = intPtr(minDur)
	rule.MaxDurationMinutes = intPtr(maxDur)
	rule.MinAdvanceMinutes = intPtr(minAdv)
	rule.MaxAdvanceMinutes = intPtr(maxAdv)
	rule.AllowedStartMinute = intPtr(allowedStart)
	rule.AllowedEndMinute = intPtr(allowedEnd)
	rule.MaxPerUserPerDay = intPtr(maxPerDay)
	rule.MaxPerUserPerWeek = intPtr(maxPerWeek)
	rule.AllowRecurring = allowRecurring != 0
	rule.RequiresApproval = requiresApproval != 0
	rule.Active = active != 0
	rule.AutoApproveRoles = decodeStrings(roles)

	if rule.AllowedDays, err = decodeInts(allowedDays); err != nil {
		return persistence.BookingRule{}, err
	}
	if rule.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.BookingRule{}, err
	}
	if rule.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.BookingRule{}, err
	}
	return rule, nil
}
