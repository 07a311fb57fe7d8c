package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/booking-engine/internal/persistence"
)

// CheckInEventRepository implements persistence.CheckInEventRepository on
// SQLite. The unique index on (booking_id, check_in_date) turns a repeated
// check-in for the same calendar date into ErrDuplicate.
type CheckInEventRepository struct {
	pool *ConnectionPool
}

// NewCheckInEventRepository binds the repository to the pool.
func NewCheckInEventRepository(pool *ConnectionPool) *CheckInEventRepository {
	return &CheckInEventRepository{pool: pool}
}

const checkInColumns = `id, booking_id, timestamp, check_in_date, method, processed_by_user_id, created_at`

// CreateEvent inserts a check-in record.
func (r *CheckInEventRepository) CreateEvent(ctx context.Context, event persistence.CheckInEvent) error {
	if event.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO check_in_events (`+checkInColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.BookingID,
		encodeTime(event.Timestamp),
		event.CheckInDate,
		event.Method,
		nullString(event.ProcessedByUserID),
		encodeTime(event.CreatedAt),
	)
	return mapError(err)
}

// ListEventsForBooking returns the booking's events in arrival order.
func (r *CheckInEventRepository) ListEventsForBooking(ctx context.Context, bookingID string) ([]persistence.CheckInEvent, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT `+checkInColumns+` FROM check_in_events
		WHERE booking_id = ?
		ORDER BY timestamp, id`, bookingID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var events []persistence.CheckInEvent
	for rows.Next() {
		var (
			event       persistence.CheckInEvent
			timestamp   string
			processedBy sql.NullString
			createdAt   string
		)
		if err := rows.Scan(
			&event.ID,
			&event.BookingID,
			&timestamp,
			&event.CheckInDate,
			&event.Method,
			&processedBy,
			&createdAt,
		); err != nil {
			return nil, err
		}
		event.ProcessedByUserID = stringPtr(processedBy)
		if event.Timestamp, err = decodeTime(timestamp); err != nil {
			return nil, err
		}
		if event.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, mapError(rows.Err())
}
