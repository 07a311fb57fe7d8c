package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations holds the ordered schema steps. PRAGMA user_version tracks
// how many have been applied, so Migrate is idempotent and only runs the
// tail it has not seen.
var migrations = []string{
	`CREATE TABLE spaces (
		id                TEXT PRIMARY KEY,
		tenant_id         TEXT NOT NULL,
		office_id         TEXT NOT NULL,
		name              TEXT NOT NULL,
		type              TEXT NOT NULL,
		capacity          INTEGER NOT NULL CHECK (capacity >= 1),
		floor             TEXT NOT NULL DEFAULT '',
		zone              TEXT NOT NULL DEFAULT '',
		requires_approval INTEGER NOT NULL DEFAULT 0,
		is_active         INTEGER NOT NULL DEFAULT 1,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	);
	CREATE INDEX ix_spaces_tenant ON spaces (tenant_id);`,

	`CREATE TABLE booking_rules (
		id                   TEXT PRIMARY KEY,
		tenant_id            TEXT NOT NULL,
		scope_office_id      TEXT,
		scope_space_type     TEXT,
		scope_space_id       TEXT,
		min_duration_minutes INTEGER,
		max_duration_minutes INTEGER,
		min_advance_minutes  INTEGER,
		max_advance_minutes  INTEGER,
		allowed_days         TEXT NOT NULL DEFAULT '',
		allowed_start_minute INTEGER,
		allowed_end_minute   INTEGER,
		allow_recurring      INTEGER NOT NULL DEFAULT 0,
		max_recurring_weeks  INTEGER NOT NULL DEFAULT 0,
		requires_approval    INTEGER NOT NULL DEFAULT 0,
		auto_approve_roles   TEXT NOT NULL DEFAULT '',
		max_per_user_per_day  INTEGER,
		max_per_user_per_week INTEGER,
		priority             INTEGER NOT NULL DEFAULT 0,
		active               INTEGER NOT NULL DEFAULT 1,
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL,
		CHECK (
			(scope_office_id IS NOT NULL) + (scope_space_type IS NOT NULL) + (scope_space_id IS NOT NULL) = 1
		)
	);
	CREATE INDEX ix_booking_rules_tenant_active ON booking_rules (tenant_id, active);`,

	`CREATE TABLE bookings (
		id               TEXT PRIMARY KEY,
		tenant_id        TEXT NOT NULL,
		space_id         TEXT NOT NULL REFERENCES spaces (id),
		user_id          TEXT NOT NULL,
		start_datetime   TEXT NOT NULL,
		end_datetime     TEXT NOT NULL,
		status           TEXT NOT NULL CHECK (status IN ('reserved', 'checked_in', 'no_show', 'completed', 'cancelled')),
		is_permanent     INTEGER NOT NULL DEFAULT 0,
		approval_pending INTEGER NOT NULL DEFAULT 0,
		approved_by      TEXT,
		approved_at      TEXT,
		booked_by_user_id TEXT NOT NULL,
		booked_at        TEXT NOT NULL,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL,
		CHECK (end_datetime > start_datetime)
	);
	CREATE INDEX ix_bookings_space_time ON bookings (space_id, start_datetime, end_datetime);
	CREATE INDEX ix_bookings_user ON bookings (tenant_id, user_id, start_datetime);
	CREATE INDEX ix_bookings_status ON bookings (status, start_datetime);
	CREATE UNIQUE INDEX ux_bookings_active_slot ON bookings (space_id, start_datetime, end_datetime, user_id)
		WHERE status IN ('reserved', 'checked_in');`,

	`CREATE TABLE check_in_events (
		id                   TEXT PRIMARY KEY,
		booking_id           TEXT NOT NULL REFERENCES bookings (id),
		timestamp            TEXT NOT NULL,
		check_in_date        TEXT NOT NULL,
		method               TEXT NOT NULL,
		processed_by_user_id TEXT,
		created_at           TEXT NOT NULL
	);
	CREATE UNIQUE INDEX ux_check_in_events_booking_date ON check_in_events (booking_id, check_in_date);`,
}

// Migrate applies any schema steps the database has not seen yet.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	var version int
	if err := cp.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", mapError(err))
	}
	if version >= len(migrations) {
		return nil
	}

	for i := version; i < len(migrations); i++ {
		step := migrations[i]
		next := i + 1
		err := cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.Exec(step); err != nil {
				return mapError(err)
			}
			if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", next)); err != nil {
				return mapError(err)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("apply migration %d: %w", next, err)
		}
	}
	return nil
}
